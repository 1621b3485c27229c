package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/legacyvault/admin-trust/internal/core/domain"
	"github.com/legacyvault/admin-trust/internal/core/service"
)

type stubAuthService struct {
	token    string
	admin    *domain.Admin
	loginErr error

	lastEmail    string
	lastPassword string
}

func (s *stubAuthService) Login(_ context.Context, email, password string, _ domain.Origin) (string, *domain.Admin, error) {
	s.lastEmail = email
	s.lastPassword = password
	if s.loginErr != nil {
		return "", nil, s.loginErr
	}
	return s.token, s.admin, nil
}

func (s *stubAuthService) Logout(context.Context, string, domain.Principal, domain.Origin) error {
	return nil
}

func (s *stubAuthService) CreateAdmin(context.Context, domain.Principal, string, string, string, domain.Role, domain.Origin) (*domain.Admin, error) {
	return nil, nil
}

func newJSONContext(t *testing.T, method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestAuthHandler_Login_Success(t *testing.T) {
	auth := &stubAuthService{
		token: "signed-token",
		admin: &domain.Admin{ID: "admin_1", Email: "ops@legacyvault.io", Role: domain.RoleAdmin},
	}
	h := NewAuthHandler(auth, service.NewPermissionEngine())

	c, rec := newJSONContext(t, http.MethodPost, "/auth/login",
		`{"email":"ops@legacyvault.io","password":"correct horse battery"}`)
	if err := h.Login(c); err != nil {
		t.Fatalf("login: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp loginResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Token != "signed-token" || resp.Admin.ID != "admin_1" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if auth.lastEmail != "ops@legacyvault.io" {
		t.Fatalf("email not passed through: %q", auth.lastEmail)
	}
}

func TestAuthHandler_Login_InvalidPayload(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{}, service.NewPermissionEngine())

	cases := []string{
		`{"email":"not-an-email","password":"x"}`,
		`{"password":"x"}`,
		`{"email":"ops@legacyvault.io"}`,
	}
	for _, body := range cases {
		c, _ := newJSONContext(t, http.MethodPost, "/auth/login", body)
		err := h.Login(c)
		var he *echo.HTTPError
		if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
			t.Fatalf("body %s: expected 400, got %v", body, err)
		}
	}
}

func TestAuthHandler_Login_ServiceErrorPassesThrough(t *testing.T) {
	auth := &stubAuthService{loginErr: domain.ErrInvalidCredentials}
	h := NewAuthHandler(auth, service.NewPermissionEngine())

	c, _ := newJSONContext(t, http.MethodPost, "/auth/login",
		`{"email":"ops@legacyvault.io","password":"wrong"}`)
	err := h.Login(c)
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("service error must reach the error handler untouched, got %v", err)
	}
}

func TestAuthHandler_Pages(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{}, service.NewPermissionEngine())

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/admin/pages", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("principal", domain.Principal{ID: "admin_1", Role: domain.RoleAdmin})

	if err := h.Pages(c); err != nil {
		t.Fatalf("pages: %v", err)
	}

	var resp pagesResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Role != domain.RoleAdmin {
		t.Fatalf("unexpected role: %s", resp.Role)
	}
	for _, page := range resp.Pages {
		if page == domain.PageExport || page == domain.PageAdmins {
			t.Fatalf("admin must not see restricted page %s", page)
		}
	}
	if len(resp.Pages) == 0 {
		t.Fatalf("admin should see at least the dashboard")
	}
}

func TestAuthHandler_Pages_NoPrincipal(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{}, service.NewPermissionEngine())

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/admin/pages", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	if err := h.Pages(c); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}
