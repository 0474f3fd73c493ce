package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/review-bot-api/internal/models"
	"github.com/noah-isme/review-bot-api/internal/service"
	appErrors "github.com/noah-isme/review-bot-api/pkg/errors"
	"github.com/noah-isme/review-bot-api/pkg/response"
)

// ContextAdminKey is the gin context key storing admin JWT claims.
const ContextAdminKey = "currentAdmin"

// JWT protects admin panel routes by requiring a valid access token.
func JWT(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "invalid authorization header"))
			c.Abort()
			return
		}

		claims, err := authService.ValidateToken(parts[1])
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Set(ContextAdminKey, claims)
		c.Next()
	}
}

// AdminFromContext extracts the claims stored by JWT. The boolean is
// false on routes that skipped the middleware.
func AdminFromContext(c *gin.Context) (*models.AdminClaims, bool) {
	value, ok := c.Get(ContextAdminKey)
	if !ok {
		return nil, false
	}
	claims, ok := value.(*models.AdminClaims)
	return claims, ok
}
