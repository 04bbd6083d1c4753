package middleware

import (
	"net/http"

	"user_manager/internal/apperr"
	"user_manager/internal/model"
	"user_manager/internal/service"

	"github.com/gin-gonic/gin"
)

// RoleMiddleware creates a middleware that only lets the given roles through.
// The user's current role is re-fetched from the store rather than trusted
// from the token, so a role change takes effect before the token expires.
func RoleMiddleware(users service.UserService, allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		idVal, exists := c.Get(AuthUserKey)
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, model.Fail("authentication required, ensure JWT middleware runs first"))
			return
		}
		userID, ok := idVal.(string)
		if !ok || userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, model.Fail("authentication required"))
			return
		}

		user, err := users.GetByID(c.Request.Context(), userID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, model.Fail("failed to load user"))
			return
		}
		if user == nil {
			c.AbortWithStatusJSON(http.StatusNotFound, model.Fail("user not found"))
			return
		}

		isAllowed := false
		for _, allowedRole := range allowedRoles {
			if user.Role == allowedRole {
				isAllowed = true
				break
			}
		}
		if !isAllowed {
			c.AbortWithStatusJSON(apperr.ErrForbidden.Status, model.Fail(apperr.ErrForbidden.Message))
			return
		}

		c.Next()
	}
}

// AdminMiddleware restricts a route to administrators.
func AdminMiddleware(users service.UserService) gin.HandlerFunc {
	return RoleMiddleware(users, model.RoleAdmin)
}

// StaffMiddleware allows staff and administrators.
func StaffMiddleware(users service.UserService) gin.HandlerFunc {
	return RoleMiddleware(users, model.RoleStaff, model.RoleAdmin)
}
