package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/recipelab/backend/internal/service"
)

// Context keys set by the auth middleware.
const (
	ContextUID         = "uid"
	ContextDisplayName = "display_name"
)

// RequireAuth rejects requests without a valid bearer token and stores the
// caller identity on the context.
func RequireAuth(verifier service.IdentityVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := resolveIdentity(c, verifier)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			c.Abort()
			return
		}
		c.Set(ContextUID, identity.UID)
		c.Set(ContextDisplayName, identity.DisplayName)
		c.Next()
	}
}

// OptionalAuth resolves the caller identity when a valid token is present
// and lets the request through either way.
func OptionalAuth(verifier service.IdentityVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if identity, ok := resolveIdentity(c, verifier); ok {
			c.Set(ContextUID, identity.UID)
			c.Set(ContextDisplayName, identity.DisplayName)
		}
		c.Next()
	}
}

func resolveIdentity(c *gin.Context, verifier service.IdentityVerifier) (*service.Identity, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return nil, false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return nil, false
	}
	identity, err := verifier.Verify(parts[1])
	if err != nil {
		return nil, false
	}
	return identity, true
}
