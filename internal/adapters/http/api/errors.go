package api

import (
	"errors"
	"net/http"

	"github.com/okian/podium/internal/adapters/extraction"
	"github.com/okian/podium/internal/adapters/repository"
	"github.com/okian/podium/internal/adapters/roster"
	service "github.com/okian/podium/internal/app"
	"github.com/okian/podium/internal/domain/results"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest = errors.New("bad request")
)

// Error codes returned in errorResponse.Code.
const (
	codeBadRequest    = "bad_request"
	codeNotFound      = "not_found"
	codeConflict      = "conflict"
	codeValidation    = "validation_failed"
	codeCorrelation   = "correlation_failed"
	codeBackpressure  = "backpressure"
	codeNotConfigured = "not_configured"
	codeUnavailable   = "unavailable"
	codeInternal      = "internal"
)

// classify maps an error to its HTTP status and code. Conflicts are checked
// before validation because a conflict is also a validation error.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, ErrBadRequest), errors.Is(err, service.ErrInvalidBatch):
		return http.StatusBadRequest, codeBadRequest
	case errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, service.ErrManualNotFound),
		errors.Is(err, roster.ErrCompetitionNotFound),
		errors.Is(err, results.ErrIndexOutOfRange),
		errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, codeNotFound
	case errors.Is(err, results.ErrConflict),
		errors.Is(err, service.ErrAlreadyCommitted),
		errors.Is(err, service.ErrSessionNotReady),
		errors.Is(err, repository.ErrDuplicateMatch):
		return http.StatusConflict, codeConflict
	case errors.Is(err, results.ErrValidation):
		return http.StatusUnprocessableEntity, codeValidation
	case errors.Is(err, service.ErrCorrelationFailure):
		return http.StatusUnprocessableEntity, codeCorrelation
	case errors.Is(err, service.ErrQueueFull):
		return http.StatusTooManyRequests, codeBackpressure
	case errors.Is(err, extraction.ErrNotConfigured):
		return http.StatusServiceUnavailable, codeNotConfigured
	case errors.Is(err, service.ErrNotStarted):
		return http.StatusServiceUnavailable, codeUnavailable
	default:
		return http.StatusInternalServerError, codeInternal
	}
}
