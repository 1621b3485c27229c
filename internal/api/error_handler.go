package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/legacyvault/admin-trust/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error   string `json:"error"`
	RetryAt string `json:"retry_at,omitempty"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Collapses every authentication failure into one uniform 401 so the
//     response never reveals which check failed (the audit ledger holds the
//     sub-reason).
//   - Surfaces authorization denials with the specific missing permission.
//   - Logs unexpected errors internally without leaking details to the client.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, resp := resolveError(err, log, c)
		_ = c.JSON(code, resp)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, errorResponse) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, errorResponse{Error: fmt.Sprintf("%v", he.Message)}
	}

	// Rate limiting is the one authentication failure with extra detail:
	// the caller is told when the window reopens, nothing else.
	var rl *domain.RateLimitedError
	if errors.As(err, &rl) {
		return http.StatusTooManyRequests, errorResponse{
			Error:   "too many failed login attempts",
			RetryAt: rl.ResetAt.UTC().Format(time.RFC3339),
		}
	}

	if pd, ok := domain.IsPermissionDenied(err); ok {
		return http.StatusForbidden, errorResponse{Error: pd.Error()}
	}

	switch {
	case errors.Is(err, domain.ErrInvalidToken),
		errors.Is(err, domain.ErrInvalidCredentials),
		errors.Is(err, domain.ErrDomainNotAllowed):
		return http.StatusUnauthorized, errorResponse{Error: "unauthorized"}
	case errors.Is(err, domain.ErrAdminNotFound):
		return http.StatusNotFound, errorResponse{Error: "admin not found"}
	case errors.Is(err, domain.ErrAdminExists):
		return http.StatusConflict, errorResponse{Error: "admin already exists"}
	case errors.Is(err, domain.ErrValidationBlocked):
		return http.StatusUnprocessableEntity, errorResponse{Error: err.Error()}
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, errorResponse{Error: "internal server error"}
}
