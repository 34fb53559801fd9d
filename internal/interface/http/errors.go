package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-hexagonal-users/pkg/apperror"
	"github.com/oksasatya/go-hexagonal-users/pkg/response"
	"github.com/oksasatya/go-hexagonal-users/pkg/validation"
)

// StatusFor maps an error kind to its HTTP status. Conflict is checked
// before persistence because storage adapters may wrap both. A storage
// failure is never reported as bad input.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, apperror.ErrValidation) && !errors.Is(err, apperror.ErrPersistence):
		return http.StatusBadRequest
	case errors.Is(err, apperror.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperror.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, apperror.ErrUnauthorized):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes the error envelope for err. Internal failures are
// logged and reported without detail.
func respondError(c *gin.Context, logger *logrus.Logger, err error) {
	status := StatusFor(err)
	switch status {
	case http.StatusBadRequest:
		response.Error[any](c, status, "invalid payload", validation.ToDetails(err))
	case http.StatusInternalServerError:
		logger.WithError(err).WithFields(logrus.Fields{
			"request_id": c.GetString(response.RequestIDKey),
			"path":       c.FullPath(),
		}).Error("request failed")
		response.Error[any](c, status, "internal error", nil)
	default:
		msg := err.Error()
		var ae *apperror.Error
		if errors.As(err, &ae) && ae.Message() != "" {
			msg = ae.Message()
		}
		response.Error[any](c, status, msg, nil)
	}
}

// bindError reports a malformed request body.
func bindError(c *gin.Context, err error) {
	response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
}
