package service

import (
	"strings"
	"testing"

	"github.com/legacyvault/admin-trust/internal/core/domain"
)

func TestPermissionEngine_SuperAdminHoldsEveryPermission(t *testing.T) {
	engine := NewPermissionEngine()

	for _, perm := range domain.AllPermissions {
		if !engine.HasPermission(domain.RoleSuperAdmin, perm) {
			t.Fatalf("super_admin missing %s", perm)
		}
	}
}

func TestPermissionEngine_AdminCannotCreateAdmins(t *testing.T) {
	engine := NewPermissionEngine()

	if engine.HasPermission(domain.RoleAdmin, domain.PermCreateAdmin) {
		t.Fatalf("admin must not hold CREATE_ADMIN")
	}
	if !engine.HasPermission(domain.RoleAdmin, domain.PermApproveVerification) {
		t.Fatalf("admin should hold APPROVE_VERIFICATION")
	}
}

func TestPermissionEngine_UnknownRoleHasNothing(t *testing.T) {
	engine := NewPermissionEngine()

	if engine.HasPermission(domain.Role("auditor"), domain.PermViewAuditLogs) {
		t.Fatalf("unknown role must hold no permissions")
	}
}

func TestPermissionEngine_AuthorizeNamesMissingPermission(t *testing.T) {
	engine := NewPermissionEngine()

	err := engine.Authorize(domain.RoleAdmin, domain.PermCreateAdmin)
	if err == nil {
		t.Fatalf("expected denial")
	}
	pd, ok := domain.IsPermissionDenied(err)
	if !ok {
		t.Fatalf("expected PermissionDeniedError, got %T", err)
	}
	if pd.Missing != domain.PermCreateAdmin {
		t.Fatalf("expected missing CREATE_ADMIN, got %s", pd.Missing)
	}
	if !strings.Contains(err.Error(), string(domain.PermCreateAdmin)) {
		t.Fatalf("denial reason must name the missing permission: %q", err.Error())
	}

	if err := engine.Authorize(domain.RoleSuperAdmin, domain.PermCreateAdmin); err != nil {
		t.Fatalf("super_admin should be authorized: %v", err)
	}
}

func TestPermissionEngine_PageAccess(t *testing.T) {
	engine := NewPermissionEngine()

	// No required permissions: open to any authenticated role.
	if !engine.CanAccessPage(domain.RoleAdmin, domain.PageDashboard) {
		t.Fatalf("dashboard should be open to admins")
	}
	// Conjunctive requirements: admin lacks EXPORT_AUDIT_LOGS.
	if engine.CanAccessPage(domain.RoleAdmin, domain.PageExport) {
		t.Fatalf("export page requires EXPORT_AUDIT_LOGS")
	}
	if !engine.CanAccessPage(domain.RoleSuperAdmin, domain.PageExport) {
		t.Fatalf("super_admin should reach the export page")
	}
	if engine.CanAccessPage(domain.RoleAdmin, domain.Page("unknown")) {
		t.Fatalf("unknown pages are not accessible")
	}
}

func TestPermissionEngine_AccessiblePagesMatchesPerPageRules(t *testing.T) {
	engine := NewPermissionEngine()

	for _, role := range []domain.Role{domain.RoleAdmin, domain.RoleSuperAdmin} {
		listed := make(map[domain.Page]bool)
		for _, page := range engine.AccessiblePages(role) {
			listed[page] = true
		}
		for _, page := range domain.AllPages {
			if listed[page] != engine.CanAccessPage(role, page) {
				t.Fatalf("role %s: page %s listed=%v but CanAccessPage=%v",
					role, page, listed[page], engine.CanAccessPage(role, page))
			}
		}
	}

	if len(engine.AccessiblePages(domain.RoleSuperAdmin)) != len(domain.AllPages) {
		t.Fatalf("super_admin should reach every page")
	}
}
