package middleware

import (
	"user_manager/internal/apperr"
	"user_manager/internal/model"

	"github.com/gin-gonic/gin"
)

// ClientIDMiddleware requires every request to carry a clientid header
// matching the configured value. Local mode disables the check.
func ClientIDMiddleware(clientID string, localMode bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if localMode {
			c.Next()
			return
		}
		if c.GetHeader("clientid") != clientID {
			c.AbortWithStatusJSON(apperr.ErrMissingClientID.Status, model.Fail(apperr.ErrMissingClientID.Message))
			return
		}
		c.Next()
	}
}
