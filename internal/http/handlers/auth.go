package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nextera/workforce-api/internal/auth"
	"github.com/nextera/workforce-api/internal/config"
	"github.com/nextera/workforce-api/internal/domain/user"
	"github.com/nextera/workforce-api/internal/security"
)

// UserStore is the persistence surface the auth handlers need. The Mongo repo
// and the in-memory repo both satisfy it.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (user.User, error)
	Insert(ctx context.Context, u user.User) error
	UpdateFields(ctx context.Context, email string, changes user.Changes) error
	DeleteByEmail(ctx context.Context, email string) error
}

type AuthHandler struct {
	users UserStore
	jwt   *auth.Manager
}

func NewAuthHandler(users UserStore, jwtManager *auth.Manager) *AuthHandler {
	return &AuthHandler{
		users: users,
		jwt:   jwtManager,
	}
}

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	FullName string `json:"full_name" binding:"required"`
}

// LoginRequest is form-encoded (OAuth2 password-grant shape): the account
// email travels in the username field.
type LoginRequest struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
}

func (h *AuthHandler) Register(ctx *gin.Context) {
	var req RegisterRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	_, err := h.users.GetByEmail(cctx, req.Email)

	if err == nil {
		RespondBadRequest(ctx, "duplicate_account", "Email already registered", nil)
		return
	}

	if !errors.Is(err, user.ErrNotFound) {
		RespondInternal(ctx, "Could not create user")
		return
	}

	hash, err := security.HashPassword(req.Password)

	if err != nil {
		RespondInternal(ctx, "Could not create user")
		return
	}

	u := user.User{
		Email:          req.Email,
		HashedPassword: hash,
		FullName:       req.FullName,
		Role:           user.DefaultRole,
	}

	err = h.users.Insert(cctx, u)

	if err != nil {
		// the unique index can still reject a concurrent registration
		// that slipped past the lookup above
		if errors.Is(err, user.ErrEmailTaken) {
			RespondBadRequest(ctx, "duplicate_account", "Email already registered", nil)
			return
		}

		RespondInternal(ctx, "Could not create user")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "User created successfully"})
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req LoginRequest

	if err := ctx.ShouldBind(&req); err != nil {
		RespondBadRequest(ctx, "invalid_request", "Invalid login form", gin.H{"reason": err.Error()})
		return
	}

	// short timeout for DB lookup
	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	foundUser, err := h.users.GetByEmail(cctx, req.Username)

	// Unknown email and wrong password answer identically so callers cannot
	// probe which accounts exist.
	if err != nil {
		RespondBadRequest(ctx, "invalid_credentials", "Incorrect email or password", nil)
		return
	}

	err = security.CheckPassword(foundUser.HashedPassword, req.Password)

	if err != nil {
		RespondBadRequest(ctx, "invalid_credentials", "Incorrect email or password", nil)
		return
	}

	accessToken, err := h.jwt.IssueAccessToken(foundUser.Email)

	if err != nil {
		RespondInternal(ctx, "Could not generate access token")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"access_token": accessToken,
		"token_type":   "bearer",
	})
}
