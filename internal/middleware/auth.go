package middleware

import (
	"net/http"
	"strings"
	"time"

	"scrumboard-api/internal/auth"
	"scrumboard-api/internal/cache"
	"scrumboard-api/internal/database"
	"scrumboard-api/internal/models"

	"github.com/gin-gonic/gin"
)

const actorKey = "actor"

// userCache shortcuts the per-request user row fetch. Handlers that
// mutate a user must call InvalidateUser so role/status changes are
// never masked by a stale entry.
var userCache = cache.New[string, models.User]()

// InvalidateUser drops a cached user row after a mutation.
func InvalidateUser(userID string) {
	userCache.Delete(userID)
}

// JWTAuthMiddleware validates the bearer token and resolves the acting
// user from the store. The token only identifies; role and status come
// from the current row, so a locked or still-pending account is cut
// off even with a valid token.
func JWTAuthMiddleware(cacheTTL time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		tokenString := ""
		if authHeader != "" {
			// Extract token from "Bearer <token>"
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = parts[1]
			}
		}
		// Fallback for WebSocket/browser where custom headers cannot be set: allow token in query param
		if tokenString == "" {
			tokenString = c.Query("token")
		}
		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Authorization token is required",
			})
			c.Abort()
			return
		}

		claims, err := auth.ValidateToken(tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid or expired token",
			})
			c.Abort()
			return
		}

		actor, ok := userCache.Get(claims.UserID)
		if !ok {
			if err := database.GetDB().Where("id = ?", claims.UserID).First(&actor).Error; err != nil {
				c.JSON(http.StatusUnauthorized, gin.H{
					"error": "Account no longer exists",
				})
				c.Abort()
				return
			}
			userCache.Set(claims.UserID, actor, cacheTTL)
		}

		c.Set(actorKey, actor)
		c.Set("user_id", actor.ID)
		c.Set("username", actor.Username)

		c.Next()
	}
}

// Actor returns the authenticated user resolved by JWTAuthMiddleware.
func Actor(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get(actorKey)
	if !ok {
		return nil, false
	}
	u, ok := v.(models.User)
	if !ok {
		return nil, false
	}
	return &u, true
}
