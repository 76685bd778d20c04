package handlers

import (
	"errors"
	"net/http"

	"github.com/epeers/bankruptcy/internal/middleware"
	"github.com/epeers/bankruptcy/internal/models"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// statusFor maps an error kind to its HTTP status and error code
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, models.ErrDataValidation):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, models.ErrQuery):
		return http.StatusUnprocessableEntity, "query_error"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// respondError logs err with the failing operation and its parameters, then
// writes the matching ErrorResponse
func respondError(c *gin.Context, op string, params log.Fields, err error) {
	status, code := statusFor(err)

	entry := log.WithFields(params).WithFields(log.Fields{
		"operation":  op,
		"request_id": middleware.GetRequestID(c),
		"status":     status,
	}).WithError(err)
	if status == http.StatusInternalServerError {
		entry.Error("Request failed")
	} else {
		entry.Warn("Request rejected")
	}

	c.JSON(status, models.ErrorResponse{
		Error:   code,
		Message: err.Error(),
	})
}
