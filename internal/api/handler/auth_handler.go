package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/legacyvault/admin-trust/internal/api/metrics"
	"github.com/legacyvault/admin-trust/internal/api/middleware"
	"github.com/legacyvault/admin-trust/internal/core/domain"
	"github.com/legacyvault/admin-trust/internal/core/ports"
	"github.com/legacyvault/admin-trust/internal/core/service"
)

type AuthHandler struct {
	authService ports.AuthService
	engine      *service.PermissionEngine
}

func NewAuthHandler(authService ports.AuthService, engine *service.PermissionEngine) *AuthHandler {
	return &AuthHandler{authService: authService, engine: engine}
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token string `json:"token"`
	Admin struct {
		ID          string      `json:"id"`
		Email       string      `json:"email"`
		DisplayName string      `json:"display_name,omitempty"`
		Role        domain.Role `json:"role"`
	} `json:"admin"`
}

type createAdminRequest struct {
	Email       string `json:"email"        validate:"required,email"`
	Password    string `json:"password"     validate:"required,min=12"`
	DisplayName string `json:"display_name" validate:"max=120"`
	Role        string `json:"role"         validate:"required,oneof=admin super_admin"`
}

type pagesResponse struct {
	Role  domain.Role   `json:"role"`
	Pages []domain.Page `json:"pages"`
}

// Login authenticates an admin and returns a session token.
//
// @Summary      Admin login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  loginResponse
// @Failure      401   {object}  map[string]string
// @Failure      429   {object}  map[string]string
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	token, admin, err := h.authService.Login(c.Request().Context(), req.Email, req.Password, middleware.RequestOrigin(c))
	if err != nil {
		metrics.LoginAttemptsTotal.WithLabelValues(loginOutcome(err)).Inc()
		return err
	}

	metrics.LoginAttemptsTotal.WithLabelValues("success").Inc()
	resp := loginResponse{Token: token}
	resp.Admin.ID = admin.ID
	resp.Admin.Email = admin.Email
	resp.Admin.DisplayName = admin.DisplayName
	resp.Admin.Role = admin.Role
	return c.JSON(http.StatusOK, resp)
}

func loginOutcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, domain.ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, domain.ErrDomainNotAllowed):
		return "domain_rejected"
	default:
		return "invalid_credentials"
	}
}

// Logout revokes the presented session token.
//
// @Summary      Admin logout
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      204  "token revoked"
// @Failure      401  {object}  map[string]string
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	principal, ok := middleware.PrincipalFromContext(c)
	if !ok {
		return domain.ErrInvalidToken
	}
	token := bearerToken(c)
	if err := h.authService.Logout(c.Request().Context(), token, principal, middleware.RequestOrigin(c)); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// CreateAdmin provisions a new administrative account.
//
// @Summary      Create admin account
// @Tags         admins
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createAdminRequest  true  "New admin details"
// @Success      201   {object}  domain.Admin
// @Failure      403   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /admin/admins [post]
func (h *AuthHandler) CreateAdmin(c echo.Context) error {
	principal, ok := middleware.PrincipalFromContext(c)
	if !ok {
		return domain.ErrInvalidToken
	}

	var req createAdminRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	created, err := h.authService.CreateAdmin(
		c.Request().Context(),
		principal,
		req.Email, req.Password, req.DisplayName,
		domain.Role(req.Role),
		middleware.RequestOrigin(c),
	)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, created)
}

// Pages lists the admin console pages the caller's role can reach.
//
// @Summary      Accessible pages for the caller
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  pagesResponse
// @Router       /admin/pages [get]
func (h *AuthHandler) Pages(c echo.Context) error {
	principal, ok := middleware.PrincipalFromContext(c)
	if !ok {
		return domain.ErrInvalidToken
	}
	return c.JSON(http.StatusOK, pagesResponse{
		Role:  principal.Role,
		Pages: h.engine.AccessiblePages(principal.Role),
	})
}
