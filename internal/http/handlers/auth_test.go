package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nextera/workforce-api/internal/auth"
	"github.com/nextera/workforce-api/internal/domain/user"
	"github.com/nextera/workforce-api/internal/http/handlers"
	"github.com/nextera/workforce-api/internal/security"
)

// Make sure Gin does not spam the console during the test

func init() {
	gin.SetMode(gin.TestMode)
}

// Fake store implementation of the handlers.UserStore interface

type fakeUserStore struct {
	getFn    func(ctx context.Context, email string) (user.User, error)
	insertFn func(ctx context.Context, u user.User) error
	updateFn func(ctx context.Context, email string, changes user.Changes) error
	deleteFn func(ctx context.Context, email string) error
}

func (f *fakeUserStore) GetByEmail(ctx context.Context, email string) (user.User, error) {
	if f.getFn != nil {
		return f.getFn(ctx, email)
	}

	return user.User{}, user.ErrNotFound
}

func (f *fakeUserStore) Insert(ctx context.Context, u user.User) error {
	if f.insertFn != nil {
		return f.insertFn(ctx, u)
	}

	return nil
}

func (f *fakeUserStore) UpdateFields(ctx context.Context, email string, changes user.Changes) error {
	if f.updateFn != nil {
		return f.updateFn(ctx, email, changes)
	}

	return nil
}

func (f *fakeUserStore) DeleteByEmail(ctx context.Context, email string) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, email)
	}

	return nil
}

// small helper function which returns the gin engine to mount one handler per test

func setupRouter(method, path string, h gin.HandlerFunc) *gin.Engine {
	r := gin.New()

	r.Handle(method, path, h)

	return r
}

func newJWTManager(t *testing.T) *auth.Manager {
	t.Helper()

	m, err := auth.NewManager("test-secret-key", "HS256", 30*time.Minute)

	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	return m
}

func mustHash(t *testing.T, plain string) string {
	t.Helper()

	hash, err := security.HashPassword(plain)

	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}

	return hash
}

// Register tests

func TestRegisterHandler(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		storeSetup     func(*fakeUserStore)
		wantStatusCode int
	}{
		{
			name: "success",
			body: `{"email":"a@x.com","password":"pw1","full_name":"Alice"}`,
			storeSetup: func(f *fakeUserStore) {
				f.getFn = func(ctx context.Context, email string) (user.User, error) {
					return user.User{}, user.ErrNotFound
				}
				f.insertFn = func(ctx context.Context, u user.User) error {
					if u.Email != "a@x.com" {
						return errors.New("wrong email inserted")
					}
					if u.Role != "employee" {
						return errors.New("role not defaulted to employee")
					}
					if u.HashedPassword == "pw1" || u.HashedPassword == "" {
						return errors.New("password stored in plaintext")
					}
					return nil
				}
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name: "duplicate_account",
			body: `{"email":"a@x.com","password":"pw1","full_name":"Alice"}`,
			storeSetup: func(f *fakeUserStore) {
				f.getFn = func(ctx context.Context, email string) (user.User, error) {
					return user.User{Email: email}, nil
				}
			},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "duplicate_account_lost_insert_race",
			body: `{"email":"a@x.com","password":"pw1","full_name":"Alice"}`,
			storeSetup: func(f *fakeUserStore) {
				f.getFn = func(ctx context.Context, email string) (user.User, error) {
					return user.User{}, user.ErrNotFound
				}
				f.insertFn = func(ctx context.Context, u user.User) error {
					return user.ErrEmailTaken
				}
			},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "validation_error",
			body: `{"email":"not-an-email","password":"pw1","full_name":"Alice"}`,
			storeSetup: func(f *fakeUserStore) {
				// the store should not be touched on invalid input
				f.getFn = func(ctx context.Context, email string) (user.User, error) {
					t.Errorf("store called on invalid payload")
					return user.User{}, user.ErrNotFound
				}
			},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "store_error",
			body: `{"email":"a@x.com","password":"pw1","full_name":"Alice"}`,
			storeSetup: func(f *fakeUserStore) {
				f.getFn = func(ctx context.Context, email string) (user.User, error) {
					return user.User{}, user.ErrNotFound
				}
				f.insertFn = func(ctx context.Context, u user.User) error {
					return errors.New("db error")
				}
			},
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			store := &fakeUserStore{}

			if tt.storeSetup != nil {
				tt.storeSetup(store)
			}

			h := handlers.NewAuthHandler(store, newJWTManager(t))

			r := setupRouter(http.MethodPost, "/auth/register", h.Register)

			req := httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}

// Login tests

func loginForm(username, password string) *strings.Reader {
	return strings.NewReader("username=" + username + "&password=" + password)
}

func TestLoginHandler_Success(t *testing.T) {
	hash := mustHash(t, "pw1")

	store := &fakeUserStore{
		getFn: func(ctx context.Context, email string) (user.User, error) {
			if email != "a@x.com" {
				return user.User{}, user.ErrNotFound
			}
			return user.User{Email: email, HashedPassword: hash, FullName: "Alice", Role: "employee"}, nil
		},
	}

	jwtManager := newJWTManager(t)

	h := handlers.NewAuthHandler(store, jwtManager)
	r := setupRouter(http.MethodPost, "/auth/login", h.Login)

	req := httptest.NewRequest(http.MethodPost, "/auth/login", loginForm("a@x.com", "pw1"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want %d, body=%s", w.Code, http.StatusOK, w.Body.String())
	}

	var resp struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}

	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v body=%s", err, w.Body.String())
	}

	if resp.TokenType != "bearer" {
		t.Fatalf("got token_type %q, want bearer", resp.TokenType)
	}

	claims, err := jwtManager.ParseAndValidate(resp.AccessToken)

	if err != nil {
		t.Fatalf("issued token did not validate: %v", err)
	}

	if claims.Subject != "a@x.com" {
		t.Fatalf("token subject %q, want a@x.com", claims.Subject)
	}

	untilExpiry := time.Until(claims.ExpiresAt.Time)

	if untilExpiry < 29*time.Minute || untilExpiry > 31*time.Minute {
		t.Fatalf("token expiry %v from now, want ~30m", untilExpiry)
	}
}

func TestLoginHandler_InvalidCredentialsAreIndistinguishable(t *testing.T) {
	hash := mustHash(t, "pw1")

	store := &fakeUserStore{
		getFn: func(ctx context.Context, email string) (user.User, error) {
			if email == "a@x.com" {
				return user.User{Email: email, HashedPassword: hash}, nil
			}
			return user.User{}, user.ErrNotFound
		},
	}

	h := handlers.NewAuthHandler(store, newJWTManager(t))
	r := setupRouter(http.MethodPost, "/auth/login", h.Login)

	do := func(username, password string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/auth/login", loginForm(username, password))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		return w
	}

	wrongPassword := do("a@x.com", "nope")
	unknownEmail := do("ghost@x.com", "pw1")

	if wrongPassword.Code != http.StatusBadRequest {
		t.Fatalf("wrong password got status %d, want %d", wrongPassword.Code, http.StatusBadRequest)
	}

	if unknownEmail.Code != http.StatusBadRequest {
		t.Fatalf("unknown email got status %d, want %d", unknownEmail.Code, http.StatusBadRequest)
	}

	// the two failure bodies must be byte-identical so callers cannot
	// enumerate accounts
	if wrongPassword.Body.String() != unknownEmail.Body.String() {
		t.Fatalf("failure bodies differ:\n%s\n%s", wrongPassword.Body.String(), unknownEmail.Body.String())
	}
}

func TestLoginHandler_MissingFormFields(t *testing.T) {
	h := handlers.NewAuthHandler(&fakeUserStore{}, newJWTManager(t))
	r := setupRouter(http.MethodPost, "/auth/login", h.Login)

	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader("username=a@x.com"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want %d, body=%s", w.Code, http.StatusBadRequest, w.Body.String())
	}
}
