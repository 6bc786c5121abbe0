package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/ridwanfathin/invoice-service/internal/domain"
	"github.com/ridwanfathin/invoice-service/internal/model"
)

// HTTP status codes as constants for consistency
const (
	StatusOK                  = http.StatusOK
	StatusCreated             = http.StatusCreated
	StatusNoContent           = http.StatusNoContent
	StatusBadRequest          = http.StatusBadRequest
	StatusUnauthorized        = http.StatusUnauthorized
	StatusForbidden           = http.StatusForbidden
	StatusNotFound            = http.StatusNotFound
	StatusUnprocessableEntity = http.StatusUnprocessableEntity
	StatusInternalServerError = http.StatusInternalServerError
	StatusBadGateway          = http.StatusBadGateway
)

// Common error messages
const (
	ErrInvalidInput      = "Invalid input format"
	ErrValidation        = "Invoice validation failed"
	ErrResourceNotFound  = "Resource not found"
	ErrForbidden         = "You do not have access to this resource"
	ErrInternalServer    = "Internal server error"
	ErrDataExtraction    = "Unable to extract invoice data"
	ErrUpstreamFailure   = "An upstream service failed"
	ErrNotAuthenticated  = "User not authenticated"
	ErrInvalidQueryParam = "Invalid query parameters"
)

// ErrorMapper turns service errors into HTTP responses
type ErrorMapper struct {
	// MaskForbidden reports ownership failures as 404 so ids cannot be probed
	MaskForbidden bool
	Log           zerolog.Logger
}

// respond writes the response matching err's type
func (m ErrorMapper) respond(c *gin.Context, op string, err error) {
	var (
		validation  *domain.ValidationError
		validations domain.ValidationErrors
		notFound    *domain.NotFoundError
		forbidden   *domain.ForbiddenError
		extraction  *domain.ExtractionError
		external    *domain.ExternalDependencyError
	)

	switch {
	case errors.As(err, &validations):
		details := make([]model.ErrorDetail, 0, len(validations))
		for _, v := range validations {
			details = append(details, newErrorDetail(v.Field, v.Message))
		}
		respondBadRequest(c, ErrValidation, details...)
	case errors.As(err, &validation):
		respondBadRequest(c, ErrValidation, newErrorDetail(validation.Field, validation.Message))
	case errors.As(err, &notFound):
		respondNotFound(c, ErrResourceNotFound)
	case errors.As(err, &forbidden):
		if m.MaskForbidden {
			respondNotFound(c, ErrResourceNotFound)
			return
		}
		respondWithError(c, StatusForbidden, ErrForbidden)
	case errors.As(err, &extraction):
		m.Log.Warn().Err(err).Str("op", op).Msg("Extraction rejected")
		respondUnprocessableEntity(c, ErrDataExtraction, newErrorDetail(extraction.Field, extraction.Reason))
	case errors.As(err, &external):
		m.Log.Error().Err(err).Str("op", op).Str("dependency_op", external.Op).Msg("External dependency failed")
		respondWithError(c, StatusBadGateway, ErrUpstreamFailure)
	default:
		m.Log.Error().Err(err).Str("op", op).Msg("Unhandled error")
		respondInternalServerError(c, ErrInternalServer)
	}
}

// respondWithError sends a standardized error response
func respondWithError(c *gin.Context, statusCode int, message string, details ...model.ErrorDetail) {
	c.JSON(statusCode, model.ErrorResponse{
		Status:  http.StatusText(statusCode),
		Message: message,
		Details: details,
	})
}

// respondBadRequest sends a 400 Bad Request response
func respondBadRequest(c *gin.Context, message string, details ...model.ErrorDetail) {
	respondWithError(c, StatusBadRequest, message, details...)
}

// respondUnauthorized sends a 401 Unauthorized response
func respondUnauthorized(c *gin.Context, message string) {
	respondWithError(c, StatusUnauthorized, message)
}

// respondNotFound sends a 404 Not Found response
func respondNotFound(c *gin.Context, message string) {
	respondWithError(c, StatusNotFound, message)
}

// respondUnprocessableEntity sends a 422 Unprocessable Entity response
func respondUnprocessableEntity(c *gin.Context, message string, details ...model.ErrorDetail) {
	respondWithError(c, StatusUnprocessableEntity, message, details...)
}

// respondInternalServerError sends a 500 Internal Server Error response
func respondInternalServerError(c *gin.Context, message string) {
	respondWithError(c, StatusInternalServerError, message)
}

func respondCreated(c *gin.Context, data interface{}) {
	c.JSON(StatusCreated, data)
}

func respondOK(c *gin.Context, data interface{}) {
	c.JSON(StatusOK, data)
}

func respondNoContent(c *gin.Context) {
	c.Status(StatusNoContent)
}

func newErrorDetail(field, message string) model.ErrorDetail {
	return model.ErrorDetail{
		Field:   field,
		Message: message,
	}
}
