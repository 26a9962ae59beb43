package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"edutrack/internal/user"
)

const principalKey = "principal"

// PrincipalResolver loads the live account behind a token subject, so a
// deleted account or a changed role takes effect immediately rather
// than at token expiry.
type PrincipalResolver interface {
	ResolvePrincipal(ctx context.Context, id string) (user.Principal, error)
}

// Bearer enforces bearer JWT tokens signed with HS256 and attaches the
// resolved principal to the request context.
func Bearer(signingKey, issuer string, resolver PrincipalResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		authz := c.GetHeader("Authorization")
		if authz == "" || !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		tokenStr := strings.TrimSpace(authz[len("bearer "):])
		claims, err := Parse(tokenStr, signingKey, issuer)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		principal, err := resolver.ResolvePrincipal(c.Request.Context(), claims.UserID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Set(principalKey, principal)
		c.Next()
	}
}

// CurrentPrincipal returns the identity attached by Bearer.
func CurrentPrincipal(c *gin.Context) (user.Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return user.Principal{}, false
	}
	p, ok := v.(user.Principal)
	return p, ok
}
