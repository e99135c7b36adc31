package middlewares

import (
	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/pc-cafe/models"
	"github.com/yeremiapane/pc-cafe/utils"
)

// AdminOnly must run after AuthMiddleware.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get(RoleKey)
		if !exists {
			utils.AbortWithAppError(c, utils.Unauthenticated("unauthorized"))
			return
		}

		if role != models.RoleAdmin {
			utils.AbortWithAppError(c, utils.Forbidden("admin access required"))
			return
		}

		c.Next()
	}
}
