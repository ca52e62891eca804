package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/velo-register/internal/presentation/http/dto/response"
	"github.com/sangkips/velo-register/pkg/utils"
)

// CredentialRegistrar validates an operator's bearer token and keeps it for
// calls to the back office
type CredentialRegistrar interface {
	Put(raw string) (*utils.OperatorClaims, error)
}

// AuthMiddleware authenticates the operator with the back-office issued JWT.
// Every request refreshes the stored credential, so a token renewed by the
// register is picked up by the next back-office call.
func AuthMiddleware(credentials CredentialRegistrar) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, "Authorization header is required")
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			response.Unauthorized(c, "Invalid authorization header format")
			c.Abort()
			return
		}

		claims, err := credentials.Put(parts[1])
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Set("operator_id", claims.UserID)
		c.Set("operator_username", claims.Username)

		c.Next()
	}
}
