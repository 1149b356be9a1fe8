package httpadapter

import (
	"context"
	"errors"
	"net/http"

	"github.com/hienhayho/KLTN-v2/internal/core/domain"
	"github.com/hienhayho/KLTN-v2/internal/infrastructure/resilience"
)

// errorCode is the machine-readable label in error payloads; the HTTP
// status alone cannot distinguish a broken prompt contract from a bad
// config value.
func errorCode(err error) string {
	switch {
	case domain.IsKind(err, domain.ErrInvalidInput):
		return "invalid_input"
	case domain.IsKind(err, domain.ErrNotFound):
		return "not_found"
	case domain.IsKind(err, domain.ErrContract):
		return "contract_violation"
	case domain.IsKind(err, domain.ErrConfig):
		return "configuration_error"
	case domain.IsKind(err, domain.ErrTemporary), resilience.IsCircuitOpen(err):
		return "temporarily_unavailable"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	default:
		return "internal_error"
	}
}

func mapErrorToHTTPStatus(err error) int {
	switch {
	case domain.IsKind(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrNotFound):
		return http.StatusNotFound
	case domain.IsKind(err, domain.ErrTemporary), resilience.IsCircuitOpen(err):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
