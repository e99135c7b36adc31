package middlewares

import (
	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/pc-cafe/models"
	"github.com/yeremiapane/pc-cafe/utils"
)

// WebSocketAuthMiddleware accepts the token from ?token= since browsers
// cannot set headers on a websocket handshake. Admins only.
func WebSocketAuthMiddleware(tokens *utils.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			token, _ = bearerToken(c.GetHeader("Authorization"))
		}
		if token == "" {
			utils.AbortWithAppError(c, utils.Unauthenticated("token missing"))
			return
		}

		claims, err := tokens.ParseToken(token)
		if err != nil {
			utils.AbortWithAppError(c, utils.Forbidden("invalid or expired token"))
			return
		}
		if claims.Role != models.RoleAdmin {
			utils.AbortWithAppError(c, utils.Forbidden("admin access required"))
			return
		}

		setClaims(c, claims)
		c.Next()
	}
}
