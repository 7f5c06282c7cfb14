package service

import (
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/noah-isme/studymate-api/internal/models"
	appErrors "github.com/noah-isme/studymate-api/pkg/errors"
)

// IdentityConfig configures token verification.
type IdentityConfig struct {
	Secret string
	Issuer string
}

// IdentityService resolves the caller from a bearer token or, when no
// secret is configured, from a trusted user id header.
type IdentityService struct {
	config IdentityConfig
	logger *zap.Logger
}

// NewIdentityService constructs the service.
func NewIdentityService(cfg IdentityConfig, logger *zap.Logger) *IdentityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IdentityService{config: cfg, logger: logger}
}

// RequiresToken reports whether bearer tokens are enforced.
func (s *IdentityService) RequiresToken() bool {
	return s.config.Secret != ""
}

// ValidateToken parses an HS256 token and returns the caller.
func (s *IdentityService) ValidateToken(tokenString string) (*models.Identity, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if s.config.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.config.Issuer))
	}
	token, err := jwt.ParseWithClaims(tokenString, &models.IdentityClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.Secret), nil
	}, opts...)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}

	claims, ok := token.Claims.(*models.IdentityClaims)
	if !ok || !token.Valid || strings.TrimSpace(claims.Subject) == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}
	return &models.Identity{UserID: claims.Subject, Email: claims.Email, Name: claims.Name}, nil
}

// Resolve picks the caller from the Authorization header value or the user
// id header value.
func (s *IdentityService) Resolve(authorization, userIDHeader string) (*models.Identity, error) {
	if s.RequiresToken() {
		parts := strings.SplitN(authorization, " ", 2)
		if authorization == "" {
			return nil, appErrors.ErrUnauthorized
		}
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid authorization header")
		}
		return s.ValidateToken(strings.TrimSpace(parts[1]))
	}

	userID := strings.TrimSpace(userIDHeader)
	if userID == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "missing user id")
	}
	return &models.Identity{UserID: userID}, nil
}
