package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Manager issues signed access tokens. Tokens carry the account email as the
// subject plus issued-at and expiry timestamps; nothing in this service ever
// validates them on inbound requests (profile routes re-prove identity via
// password), but ParseAndValidate exists for tooling and tests.
type Manager struct {
	secret     []byte
	method     jwt.SigningMethod
	defaultTTL time.Duration
}

func NewManager(secret, algorithm string, defaultTTL time.Duration) (*Manager, error) {
	if secret == "" {
		return nil, errors.New("signing secret must not be empty")
	}

	method := jwt.GetSigningMethod(algorithm)

	if method == nil {
		return nil, fmt.Errorf("unknown signing algorithm %q", algorithm)
	}

	_, ok := method.(*jwt.SigningMethodHMAC)

	if !ok {
		return nil, fmt.Errorf("signing algorithm %q is not in the HMAC family", algorithm)
	}

	if defaultTTL <= 0 {
		return nil, errors.New("default token TTL must be positive")
	}

	return &Manager{
		secret:     []byte(secret),
		method:     method,
		defaultTTL: defaultTTL,
	}, nil
}

// IssueAccessToken signs a token for the subject using the configured
// default expiry.
func (m *Manager) IssueAccessToken(subject string) (string, error) {
	return m.IssueAccessTokenWithTTL(subject, m.defaultTTL)
}

func (m *Manager) IssueAccessTokenWithTTL(subject string, ttl time.Duration) (string, error) {
	now := time.Now().UTC()

	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}

	token := jwt.NewWithClaims(m.method, claims)

	return token.SignedString(m.secret)
}

func (m *Manager) ParseAndValidate(tokenStr string) (*jwt.RegisteredClaims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		// Enforce HMAC

		_, ok := t.Method.(*jwt.SigningMethodHMAC)

		if !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	})

	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)

	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}

	return claims, nil
}
