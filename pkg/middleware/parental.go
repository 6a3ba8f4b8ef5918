package middleware

import (
	"strings"

	"magic-encyclopedia/backend/pkg/errors"
	"magic-encyclopedia/backend/pkg/jwt"
	"magic-encyclopedia/backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

// ParentalAuthMiddleware guards parental-portal routes. A valid token from a
// prior PIN unlock must be presented as a bearer credential.
func ParentalAuthMiddleware(jwtService *jwt.Service, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Error(errors.NewUnauthorizedError("PARENTAL_LOCKED", "Parental portal is locked"))
			c.Abort()
			return
		}

		token := strings.TrimPrefix(header, "Bearer ")
		if token == header {
			c.Error(errors.NewUnauthorizedError("PARENTAL_LOCKED", "Malformed authorization header"))
			c.Abort()
			return
		}

		claims, err := jwtService.ValidateToken(token)
		if err != nil {
			log.Warn("Parental token rejected", "reason", err.Error())
			c.Error(errors.NewUnauthorizedError("PARENTAL_LOCKED", "Parental session expired or invalid"))
			c.Abort()
			return
		}

		c.Set("parentalRole", claims.Role)
		c.Next()
	}
}
