package utils

import (
	"errors"
	"net/http"

	"brandguard-platform/internal/ai"
	"brandguard-platform/internal/docstore"
	"brandguard-platform/internal/pipeline"
	"brandguard-platform/internal/registry"

	"github.com/gin-gonic/gin"
)

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	ErrorCode string      `json:"error_code"`
	Message   string      `json:"message"`
	Details   interface{} `json:"details,omitempty"`
}

// RespondWithError sends a standardized error response
func RespondWithError(c *gin.Context, statusCode int, errorCode, message string, details interface{}) {
	c.JSON(statusCode, ErrorResponse{
		ErrorCode: errorCode,
		Message:   message,
		Details:   details,
	})
}

// RespondWithBadRequest sends a 400 Bad Request error
func RespondWithBadRequest(c *gin.Context, message string, details interface{}) {
	RespondWithError(c, http.StatusBadRequest, "bad_request", message, details)
}

// RespondWithUnauthorized sends a 401 Unauthorized error
func RespondWithUnauthorized(c *gin.Context, message string) {
	RespondWithError(c, http.StatusUnauthorized, "unauthorized", message, nil)
}

// RespondWithForbidden sends a 403 Forbidden error
func RespondWithForbidden(c *gin.Context, message string) {
	RespondWithError(c, http.StatusForbidden, "forbidden", message, nil)
}

// RespondWithNotFound sends a 404 Not Found error
func RespondWithNotFound(c *gin.Context, message string) {
	RespondWithError(c, http.StatusNotFound, "not_found", message, nil)
}

// RespondWithInternalError sends a 500 Internal Server Error
func RespondWithInternalError(c *gin.Context, message string, details interface{}) {
	RespondWithError(c, http.StatusInternalServerError, "internal_error", message, details)
}

// RespondWithPipelineError maps typed pipeline errors onto HTTP responses.
// Every error keeps its identity; nothing is downgraded to a best-effort
// success.
func RespondWithPipelineError(c *gin.Context, err error) {
	var validationErr *docstore.ValidationError

	switch {
	case errors.Is(err, registry.ErrUnknownClient):
		RespondWithError(c, http.StatusNotFound, "unknown_client", err.Error(), nil)
	case errors.Is(err, registry.ErrDuplicateClient):
		RespondWithError(c, http.StatusConflict, "duplicate_client", err.Error(), nil)
	case errors.As(err, &validationErr):
		RespondWithError(c, http.StatusBadRequest, "validation_error", validationErr.Error(), gin.H{
			"field": validationErr.Field,
		})
	case errors.Is(err, pipeline.ErrUnsupportedDeliverable):
		RespondWithError(c, http.StatusUnprocessableEntity, "unsupported_deliverable", err.Error(), nil)
	case errors.Is(err, pipeline.ErrInsufficientContext):
		RespondWithError(c, http.StatusUnprocessableEntity, "insufficient_context", err.Error(), nil)
	case errors.Is(err, ai.ErrGenerationUnavailable):
		RespondWithError(c, http.StatusServiceUnavailable, "generation_unavailable", err.Error(), nil)
	case errors.Is(err, ai.ErrQuotaExceeded):
		RespondWithError(c, http.StatusPaymentRequired, "quota_exceeded", err.Error(), nil)
	default:
		RespondWithInternalError(c, "Unexpected error", err.Error())
	}
}
