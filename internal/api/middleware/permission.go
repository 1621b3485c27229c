package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/legacyvault/admin-trust/internal/api/metrics"
	"github.com/legacyvault/admin-trust/internal/core/domain"
	"github.com/legacyvault/admin-trust/internal/core/ports"
	"github.com/legacyvault/admin-trust/internal/core/service"
)

// RequirePermission enforces role-based access control for a route. A
// denial carries the missing permission in the response body and in the
// audit trail, never a bare "forbidden".
func RequirePermission(engine *service.PermissionEngine, audit ports.AuditService, perm domain.Permission) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			principal, ok := PrincipalFromContext(c)
			if !ok {
				return domain.ErrInvalidToken
			}

			if err := engine.Authorize(principal.Role, perm); err != nil {
				metrics.AuthzDenialsTotal.WithLabelValues(string(perm)).Inc()
				audit.Record(c.Request().Context(), ports.AuditInput{
					ActorID:      principal.ID,
					ActorEmail:   principal.Email,
					Action:       domain.ActionAccessDenied,
					TargetID:     c.Path(),
					TargetType:   "route",
					Origin:       RequestOrigin(c),
					Outcome:      domain.OutcomeFailed,
					ErrorMessage: err.Error(),
				})
				return err
			}
			return next(c)
		}
	}
}
