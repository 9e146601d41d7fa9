package middleware

import (
	"strings"

	"skillbridge_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// SessionVerifier resolves a bearer token to a user ID.
type SessionVerifier interface {
	VerifySession(token string) (uint, bool)
}

// AuthMiddleware rejects requests without a valid bearer token with a
// uniform 401 and stores the user ID under util.ContextUserIDKey.
func AuthMiddleware(verifier SessionVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := ""
		authHeader := c.GetHeader("Authorization")
		if strings.HasPrefix(authHeader, "Bearer ") {
			tokenString = strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		}

		if tokenString == "" {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		userID, ok := verifier.VerifySession(tokenString)
		if !ok {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		c.Set(util.ContextUserIDKey, userID)
		c.Next()
	}
}
