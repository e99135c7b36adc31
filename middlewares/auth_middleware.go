package middlewares

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/pc-cafe/utils"
)

// Context keys set by AuthMiddleware.
const (
	ClaimsKey = "claims"
	UserIDKey = "userID"
	RoleKey   = "role"
)

// AuthMiddleware requires a Bearer token. A missing token is 401, a token
// that fails verification is 403.
func AuthMiddleware(tokens *utils.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		tokenString, ok := bearerToken(authHeader)
		if !ok {
			utils.AbortWithAppError(c, utils.Unauthenticated("authorization header missing"))
			return
		}

		claims, err := tokens.ParseToken(tokenString)
		if err != nil {
			utils.AbortWithAppError(c, utils.Forbidden("invalid or expired token"))
			return
		}

		setClaims(c, claims)
		c.Next()
	}
}

// CurrentClaims returns the claims stored by the auth middlewares.
func CurrentClaims(c *gin.Context) (*utils.CustomClaims, bool) {
	v, exists := c.Get(ClaimsKey)
	if !exists {
		return nil, false
	}
	claims, ok := v.(*utils.CustomClaims)
	return claims, ok
}

func setClaims(c *gin.Context, claims *utils.CustomClaims) {
	c.Set(ClaimsKey, claims)
	c.Set(UserIDKey, claims.UserID)
	c.Set(RoleKey, claims.Role)
}

func bearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}
