package api

import (
	"errors"
	"net/http"

	"tasleem/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func statusFor(kind service.ErrorKind) int {
	switch kind {
	case service.KindValidation, service.KindInsufficientFunds:
		return http.StatusBadRequest
	case service.KindAuthentication:
		return http.StatusUnauthorized
	case service.KindAuthorization:
		return http.StatusForbidden
	case service.KindNotFound:
		return http.StatusNotFound
	case service.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondError renders err as {message}. Unexpected errors are logged and
// never leak their details.
func (h *Handler) respondError(c *gin.Context, err error) {
	var svcErr *service.Error
	if !errors.As(err, &svcErr) || svcErr.Kind == service.KindUnexpected {
		h.logger.Error("Request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err))

		message := service.MsgInternal
		if svcErr != nil && svcErr.Message != "" {
			message = svcErr.Message
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": message})
		return
	}

	c.JSON(statusFor(svcErr.Kind), gin.H{"message": svcErr.Message})
}
