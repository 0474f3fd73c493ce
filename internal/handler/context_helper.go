package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/review-bot-api/internal/middleware"
	"github.com/noah-isme/review-bot-api/internal/models"
)

func adminFromContext(c *gin.Context) (*models.AdminClaims, bool) {
	value, exists := c.Get(middleware.ContextAdminKey)
	if !exists {
		return nil, false
	}
	claims, ok := value.(*models.AdminClaims)
	if !ok {
		return nil, false
	}
	return claims, true
}
