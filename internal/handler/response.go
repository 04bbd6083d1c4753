package handler

import (
	"net/http"

	"user_manager/internal/apperr"
	"user_manager/internal/model"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondError maps a typed application error onto the response envelope.
// Unexpected faults collapse to 500; their raw message is exposed only
// outside release mode.
func respondError(c *gin.Context, err error) {
	ae := apperr.FromError(err)
	msg := ae.Message
	if ae.Status == http.StatusInternalServerError {
		zap.L().Error("internal error", zap.Error(err))
		if gin.Mode() == gin.ReleaseMode {
			msg = "internal server error"
		}
	}
	c.JSON(ae.Status, model.Fail(msg, ae.Fields...))
}

func respondNotFound(c *gin.Context, message string) {
	c.JSON(http.StatusNotFound, model.Fail(message))
}

func respondValidation(c *gin.Context, err error) {
	ve := apperr.Validation(bindingErrors(err))
	c.JSON(ve.Status, model.Fail(ve.Message, ve.Fields...))
}
