package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tutorlab/tutoring-service/internal/models"
	"github.com/tutorlab/tutoring-service/internal/services"
)

const principalKey = "principal"

// AuthMiddleware validates the bearer token and loads the calling account
// into the request context.
type AuthMiddleware struct {
	auth services.AuthService
}

func NewAuthMiddleware(auth services.AuthService) *AuthMiddleware {
	return &AuthMiddleware{auth: auth}
}

func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Message: "Not authenticated",
			})
			return
		}

		user, err := m.auth.VerifyToken(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Message: "Could not validate credentials",
			})
			return
		}

		c.Set(principalKey, user)
		c.Set("user_id", user.ID)
		c.Next()
	}
}

// RequireSuper rejects non-superuser callers before the handler runs. The
// services enforce the same rule; this keeps admin route groups obvious.
func (m *AuthMiddleware) RequireSuper() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil || !user.IsSuper {
			c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{
				Message: "Access denied",
			})
			return
		}
		c.Next()
	}
}

// CurrentUser returns the authenticated account, or nil outside RequireAuth.
func CurrentUser(c *gin.Context) *models.User {
	if v, ok := c.Get(principalKey); ok {
		if user, ok := v.(*models.User); ok {
			return user
		}
	}
	return nil
}
