package auth

import (
	"context"
	"net/http"
	"strings"

	"licensetracker/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const userKey = "currentUser"

// UserStore looks up authenticated users; satisfied by repository.UserRepository
type UserStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// Middleware authenticates requests from their Bearer token and stores the
// resolved user in the Gin context
func Middleware(tokens *Tokens, users UserStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			abort(c, http.StatusUnauthorized, "MISSING_TOKEN", "Authentication token not provided")
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			abort(c, http.StatusUnauthorized, "INVALID_AUTH_HEADER", "Expected a Bearer token")
			return
		}

		userID, err := tokens.Validate(parts[1])
		if err != nil {
			abort(c, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid or expired token")
			return
		}

		user, err := users.GetByID(c.Request.Context(), userID)
		if err != nil {
			abort(c, http.StatusUnauthorized, "INVALID_TOKEN", "Unknown user")
			return
		}

		c.Set(userKey, user)
		c.Next()
	}
}

// AdminOnly rejects requests whose authenticated user is not an admin.
// Must run after Middleware.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok || user.Role != models.RoleAdmin {
			abort(c, http.StatusForbidden, "FORBIDDEN", "Administrator access required")
			return
		}
		c.Next()
	}
}

// CurrentUser returns the user resolved by Middleware
func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get(userKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok
}

func abort(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}
