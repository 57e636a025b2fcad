package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/inkwell-ai/inkwell-backend/internal/pkg/apperr"
)

type APIError struct {
	Message string             `json:"message"`
	Code    string             `json:"code,omitempty"`
	Fields  []apperr.FieldError `json:"fields,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	envelope := ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	}
	var vErr *apperr.ValidationError
	if errors.As(err, &vErr) {
		envelope.Error.Fields = vErr.Fields
	}
	c.JSON(status, envelope)
}

// RespondAppError maps the error taxonomy onto HTTP statuses.
func RespondAppError(c *gin.Context, err error) {
	switch {
	case apperr.IsNotFound(err):
		RespondError(c, http.StatusNotFound, "not_found", err)
	case apperr.IsValidation(err):
		RespondError(c, http.StatusBadRequest, "validation_failed", err)
	case apperr.IsEmptyResult(err):
		RespondError(c, http.StatusUnprocessableEntity, "no_relevant_content", err)
	default:
		RespondError(c, http.StatusInternalServerError, "internal_error", err)
	}
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondCreated(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}
