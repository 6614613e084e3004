package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"gambleio-server/internal/models"
	"gambleio-server/internal/services"
)

const (
	ContextUsername  = "username"
	ContextSessionID = "session_id"
	ContextToken     = "token"
	ContextRole      = "role"
)

// BearerToken extracts the token from the Authorization header, falling back
// to the token query parameter for websocket upgrades.
func BearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			return "", false
		}
		return parts[1], true
	}

	token := c.Query("token")
	return token, token != ""
}

func AuthMiddleware(tokens *services.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := BearerToken(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
			c.Abort()
			return
		}

		username, sessionID, err := tokens.Validate(c.Request.Context(), tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
			c.Abort()
			return
		}

		c.Set(ContextUsername, username)
		c.Set(ContextSessionID, sessionID)
		c.Set(ContextToken, tokenString)

		c.Next()
	}
}

// OptionalAuth identifies the caller when a valid token is present and lets
// anonymous requests through otherwise.
func OptionalAuth(tokens *services.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenString, ok := BearerToken(c); ok {
			if username, sessionID, err := tokens.Validate(c.Request.Context(), tokenString); err == nil {
				c.Set(ContextUsername, username)
				c.Set(ContextSessionID, sessionID)
				c.Set(ContextToken, tokenString)
			}
		}
		c.Next()
	}
}

// RequireRole loads the authenticated user and rejects roles that fail allowed.
// Must run after AuthMiddleware.
func RequireRole(store services.UserStore, allowed func(models.Role) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		username := c.GetString(ContextUsername)
		if username == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
			c.Abort()
			return
		}

		user, err := store.GetUser(c.Request.Context(), username)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
			c.Abort()
			return
		}
		if !allowed(user.Role) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
			c.Abort()
			return
		}

		c.Set(ContextRole, user.Role)
		c.Next()
	}
}
