package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nostrmarket/agora/ports"
)

// RequireSession rejects requests when the session store is empty. The
// store is read fresh on every request so a logout issued elsewhere is
// observed immediately.
func RequireSession(store ports.SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, err := store.Load(c.Request.Context())
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Session store unavailable"})
			return
		}
		if session == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Not logged in"})
			return
		}

		c.Set("userPublicKey", session.PublicKey)
		c.Next()
	}
}
