package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/legacyvault/admin-trust/internal/api/metrics"
	"github.com/legacyvault/admin-trust/internal/core/domain"
	"github.com/legacyvault/admin-trust/internal/core/ports"
)

const principalKey = "principal"

// Auth verifies the bearer token and injects the authenticated principal
// into the request context. Every rejection is audited with its precise
// class; the response is always the uniform 401.
func Auth(tokens ports.TokenService, audit ports.AuditService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				metrics.TokenVerificationsTotal.WithLabelValues("rejected").Inc()
				return domain.ErrInvalidToken
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				metrics.TokenVerificationsTotal.WithLabelValues("rejected").Inc()
				return domain.ErrInvalidToken
			}

			principal, err := tokens.Verify(c.Request().Context(), parts[1])
			if err != nil {
				metrics.TokenVerificationsTotal.WithLabelValues("rejected").Inc()
				audit.Record(c.Request().Context(), ports.AuditInput{
					ActorID:      "unknown",
					Action:       domain.ActionTokenRejected,
					Origin:       RequestOrigin(c),
					Outcome:      domain.OutcomeFailed,
					ErrorMessage: err.Error(),
				})
				return domain.ErrInvalidToken
			}

			metrics.TokenVerificationsTotal.WithLabelValues("ok").Inc()
			c.Set(principalKey, *principal)
			return next(c)
		}
	}
}

// PrincipalFromContext returns the principal stored by Auth.
func PrincipalFromContext(c echo.Context) (domain.Principal, bool) {
	p, ok := c.Get(principalKey).(domain.Principal)
	return p, ok
}

// RequestOrigin captures where the request came from, for audit entries.
func RequestOrigin(c echo.Context) domain.Origin {
	return domain.Origin{
		IP:        c.RealIP(),
		UserAgent: c.Request().UserAgent(),
	}
}
