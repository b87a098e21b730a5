package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Brownie44l1/image-classifier/internal/classifier"
)

// ErrorResponse is the HTTP rendering of an error.
type ErrorResponse struct {
	StatusCode int
	Code       string
	Message    string
}

// MapClassifierError maps classifier errors to HTTP error responses.
func MapClassifierError(err error) ErrorResponse {
	switch {
	case errors.Is(err, classifier.ErrInvalidInput):
		return ErrorResponse{
			StatusCode: http.StatusBadRequest,
			Code:       "INVALID_INPUT",
			Message:    err.Error(),
		}
	case errors.Is(err, classifier.ErrConfiguration):
		return ErrorResponse{
			StatusCode: http.StatusBadRequest,
			Code:       "INVALID_CONFIGURATION",
			Message:    err.Error(),
		}
	case errors.Is(err, classifier.ErrModelLoad):
		return ErrorResponse{
			StatusCode: http.StatusServiceUnavailable,
			Code:       "MODEL_UNAVAILABLE",
			Message:    "model failed to load",
		}
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return ErrorResponse{
			StatusCode: http.StatusGatewayTimeout,
			Code:       "TIMEOUT",
			Message:    "prediction did not complete in time",
		}
	case errors.Is(err, classifier.ErrClassification):
		return ErrorResponse{
			StatusCode: http.StatusInternalServerError,
			Code:       "PREDICTION_FAILED",
			Message:    "prediction failed",
		}
	default:
		return ErrorResponse{
			StatusCode: http.StatusInternalServerError,
			Code:       "INTERNAL_ERROR",
			Message:    "internal server error",
		}
	}
}

// HandleClassifierError sends the HTTP response for a classifier error.
func HandleClassifierError(c *gin.Context, err error) {
	errResp := MapClassifierError(err)
	respondError(c, errResp.StatusCode, errResp.Code, errResp.Message)
}

// HandleInvalidRequest sends a 400 response.
func HandleInvalidRequest(c *gin.Context, message string) {
	respondError(c, http.StatusBadRequest, "INVALID_REQUEST", message)
}
