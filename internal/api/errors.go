package api

import (
	"errors"
	"net/http"

	"github.com/fmuoria/AI-Interview-agent/internal/ingestion"
	"github.com/fmuoria/AI-Interview-agent/internal/interview"
	"github.com/fmuoria/AI-Interview-agent/internal/models"
)

// HTTPStatus maps an operation error onto its response status code
func HTTPStatus(err error) int {
	var verr *models.ValidationError
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &verr):
		return http.StatusBadRequest
	case errors.Is(err, interview.ErrSessionNotFound):
		return http.StatusBadRequest
	case errors.Is(err, interview.ErrExtractionFailed):
		return http.StatusBadRequest
	case errors.Is(err, interview.ErrTailAnswered):
		return http.StatusConflict
	case errors.Is(err, interview.ErrUpstreamThrottled), errors.Is(err, interview.ErrUpstreamTimeout):
		return http.StatusTooManyRequests
	case errors.Is(err, interview.ErrMalformedResponse):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage returns the short client-facing reason for an error.
// Internal details are never included.
func PublicMessage(err error) string {
	var verr *models.ValidationError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &verr):
		return verr.Message
	case errors.Is(err, interview.ErrSessionNotFound):
		return "Invalid session ID"
	case errors.Is(err, ingestion.ErrUnsupportedType):
		return "Unsupported file type, upload a PDF, DOCX or TXT resume"
	case errors.Is(err, ingestion.ErrEmptyText):
		return "No text could be extracted from the uploaded file"
	case errors.Is(err, interview.ErrExtractionFailed):
		return "Failed to read uploaded file"
	case errors.Is(err, interview.ErrTailAnswered):
		return "Answer already recorded"
	case errors.Is(err, interview.ErrUpstreamTimeout):
		return "The model took too long to respond, please retry"
	case errors.Is(err, interview.ErrUpstreamThrottled):
		return "The model service is busy, please retry later"
	case errors.Is(err, interview.ErrMalformedResponse):
		return "The model returned an invalid response"
	default:
		return "Internal server error"
	}
}
