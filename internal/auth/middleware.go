package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const contextKeyIdentity = "identity"

// IdentityFromContext returns the identity set by RequireSession.
func IdentityFromContext(c *gin.Context) (Identity, bool) {
	v, ok := c.Get(contextKeyIdentity)
	if !ok {
		return Identity{}, false
	}
	id, ok := v.(Identity)
	return id, ok
}

// OwnerFromContext returns the caller's owner id, "" if not set.
func OwnerFromContext(c *gin.Context) string {
	id, ok := IdentityFromContext(c)
	if !ok {
		return ""
	}
	return id.Owner()
}

// RequireSession returns a middleware that checks the bearer token and sets
// the caller's identity in context. If missing or invalid, responds with 401.
func RequireSession(issuer *Issuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := bearer(c.GetHeader("Authorization"))
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
			return
		}
		id, err := issuer.Parse(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
			return
		}
		c.Set(contextKeyIdentity, id)
		c.Next()
	}
}

func bearer(header string) (string, bool) {
	data := strings.Fields(header)
	if len(data) != 2 || !strings.EqualFold(data[0], "Bearer") {
		return "", false
	}
	return data[1], true
}
