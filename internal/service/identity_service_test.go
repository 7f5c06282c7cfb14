package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/studymate-api/internal/models"
	appErrors "github.com/noah-isme/studymate-api/pkg/errors"
)

func signIdentityToken(t *testing.T, secret string, claims models.IdentityClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestIdentityServiceValidateToken(t *testing.T) {
	svc := NewIdentityService(IdentityConfig{Secret: "secret", Issuer: "studymate"}, nil)
	token := signIdentityToken(t, "secret", models.IdentityClaims{
		Email: "ada@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			Issuer:    "studymate",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	identity, err := svc.Resolve("Bearer "+token, "")
	require.NoError(t, err)
	assert.Equal(t, "user-1", identity.UserID)
	assert.Equal(t, "ada@example.com", identity.Email)
}

func TestIdentityServiceRejectsBadTokens(t *testing.T) {
	svc := NewIdentityService(IdentityConfig{Secret: "secret"}, nil)

	expired := signIdentityToken(t, "secret", models.IdentityClaims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "user-1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
	}})
	_, err := svc.Resolve("Bearer "+expired, "")
	assert.True(t, appErrors.Is(err, appErrors.ErrUnauthorized))

	wrongKey := signIdentityToken(t, "other", models.IdentityClaims{RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1"}})
	_, err = svc.Resolve("Bearer "+wrongKey, "")
	assert.True(t, appErrors.Is(err, appErrors.ErrUnauthorized))

	noSubject := signIdentityToken(t, "secret", models.IdentityClaims{})
	_, err = svc.Resolve("Bearer "+noSubject, "")
	assert.True(t, appErrors.Is(err, appErrors.ErrUnauthorized))

	_, err = svc.Resolve("Token abc", "user-1")
	assert.True(t, appErrors.Is(err, appErrors.ErrUnauthorized))
}

func TestIdentityServiceHeaderFallback(t *testing.T) {
	svc := NewIdentityService(IdentityConfig{}, nil)
	assert.False(t, svc.RequiresToken())

	identity, err := svc.Resolve("", " user-9 ")
	require.NoError(t, err)
	assert.Equal(t, "user-9", identity.UserID)

	_, err = svc.Resolve("", "")
	assert.True(t, appErrors.Is(err, appErrors.ErrUnauthorized))
}
