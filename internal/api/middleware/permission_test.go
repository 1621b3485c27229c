package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/legacyvault/admin-trust/internal/core/domain"
	"github.com/legacyvault/admin-trust/internal/core/service"
)

func newPermissionContext(t *testing.T, principal *domain.Principal) echo.Context {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/admin/audit/export", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/admin/audit/export")
	if principal != nil {
		c.Set(principalKey, *principal)
	}
	return c
}

func TestRequirePermission_Granted(t *testing.T) {
	engine := service.NewPermissionEngine()
	audit := &captureAudit{}
	c := newPermissionContext(t, &domain.Principal{ID: "admin_1", Role: domain.RoleSuperAdmin})

	var called bool
	err := RequirePermission(engine, audit, domain.PermExportAuditLogs)(okHandler(&called))(c)
	if err != nil {
		t.Fatalf("super_admin must pass: %v", err)
	}
	if !called {
		t.Fatalf("handler must run")
	}
	if len(audit.inputs) != 0 {
		t.Fatalf("granted access must not be audited as denial")
	}
}

func TestRequirePermission_DeniedNamesPermission(t *testing.T) {
	engine := service.NewPermissionEngine()
	audit := &captureAudit{}
	c := newPermissionContext(t, &domain.Principal{ID: "admin_1", Email: "ops@legacyvault.io", Role: domain.RoleAdmin})

	var called bool
	err := RequirePermission(engine, audit, domain.PermExportAuditLogs)(okHandler(&called))(c)
	if err == nil {
		t.Fatalf("admin must be denied EXPORT_AUDIT_LOGS")
	}
	if called {
		t.Fatalf("handler must not run on denial")
	}
	pd, ok := domain.IsPermissionDenied(err)
	if !ok {
		t.Fatalf("expected PermissionDeniedError, got %T", err)
	}
	if pd.Missing != domain.PermExportAuditLogs {
		t.Fatalf("denial must name the missing permission, got %s", pd.Missing)
	}

	if len(audit.inputs) != 1 {
		t.Fatalf("expected one audit entry, got %d", len(audit.inputs))
	}
	entry := audit.inputs[0]
	if entry.Action != domain.ActionAccessDenied || entry.TargetID != "/admin/audit/export" {
		t.Fatalf("unexpected audit entry: %+v", entry)
	}
	if entry.ActorID != "admin_1" {
		t.Fatalf("denial must be attributed to the caller: %+v", entry)
	}
}

func TestRequirePermission_NoPrincipal(t *testing.T) {
	engine := service.NewPermissionEngine()
	c := newPermissionContext(t, nil)

	var called bool
	err := RequirePermission(engine, &captureAudit{}, domain.PermViewAuditLogs)(okHandler(&called))(c)
	if !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("missing principal must read as an invalid token, got %v", err)
	}
	if called {
		t.Fatalf("handler must not run")
	}
}
