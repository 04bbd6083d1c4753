package middleware

import (
	"net/http"
	"strings"

	"user_manager/internal/model"
	"user_manager/internal/repository"
	"user_manager/internal/utils"

	"github.com/gin-gonic/gin"
)

// Context keys for the authenticated identity claims.
const (
	AuthUserKey  = "authUserID"
	AuthEmailKey = "authEmail"
	AuthRoleKey  = "authRole"
	AuthTokenKey = "authToken"
)

// JWTAuthMiddleware verifies the bearer token, rejects revoked tokens, and
// attaches the identity claims to the request context. Missing or invalid
// tokens short-circuit with 401.
func JWTAuthMiddleware(jwtUtil *utils.JWTUtil, denylist repository.TokenDenylist) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, model.Fail("authorization header required"))
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, model.Fail("invalid authorization header format"))
			return
		}

		tokenString := parts[1]
		claims, err := jwtUtil.ValidateToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, model.Fail("invalid or expired token"))
			return
		}

		revoked, err := denylist.IsRevoked(c.Request.Context(), claims.ID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, model.Fail("failed to check token"))
			return
		}
		if revoked {
			c.AbortWithStatusJSON(http.StatusUnauthorized, model.Fail("invalid or expired token"))
			return
		}

		// Identity claims for downstream handlers and the role middleware
		c.Set(AuthUserKey, claims.UserID)
		c.Set(AuthEmailKey, claims.Email)
		c.Set(AuthRoleKey, claims.Role)
		c.Set(AuthTokenKey, tokenString)

		c.Next()
	}
}
