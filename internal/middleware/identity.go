package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/studymate-api/internal/models"
	"github.com/noah-isme/studymate-api/pkg/logger"
	"github.com/noah-isme/studymate-api/pkg/response"
)

// ContextIdentityKey is the gin context key storing the resolved caller.
const ContextIdentityKey = "currentIdentity"

// UserIDHeader carries the caller id when token verification is disabled.
const UserIDHeader = "X-User-ID"

type identityResolver interface {
	Resolve(authorization, userIDHeader string) (*models.Identity, error)
}

// Identity rejects requests without a resolvable caller.
func Identity(resolver identityResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, err := resolver.Resolve(c.GetHeader("Authorization"), c.GetHeader(UserIDHeader))
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}
		c.Set(ContextIdentityKey, identity)
		c.Set(logger.ContextUserIDKey, identity.UserID)
		c.Next()
	}
}

// IdentityFrom returns the caller stored by Identity.
func IdentityFrom(c *gin.Context) *models.Identity {
	value, exists := c.Get(ContextIdentityKey)
	if !exists {
		return nil
	}
	identity, _ := value.(*models.Identity)
	return identity
}
