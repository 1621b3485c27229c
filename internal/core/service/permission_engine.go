package service

import (
	"github.com/legacyvault/admin-trust/internal/core/domain"
)

// adminPermissions is the capability set granted to the admin role. The
// super-admin set is never listed by hand: it is derived from
// domain.AllPermissions so it stays a strict superset as permissions grow.
var adminPermissions = []domain.Permission{
	domain.PermViewVerifications,
	domain.PermApproveVerification,
	domain.PermRejectVerification,
	domain.PermViewAuditLogs,
	domain.PermViewUsers,
}

// pagePermissions maps each admin console page to the permissions required
// to reach it. All listed permissions are required; an empty list means any
// authenticated role may access the page.
var pagePermissions = map[domain.Page][]domain.Permission{
	domain.PageDashboard:     {},
	domain.PageVerifications: {domain.PermViewVerifications},
	domain.PageAudit:         {domain.PermViewAuditLogs},
	domain.PageUsers:         {domain.PermViewUsers},
	domain.PageAdmins:        {domain.PermManageAdmins},
	domain.PageExport:        {domain.PermViewAuditLogs, domain.PermExportAuditLogs},
}

// PermissionEngine decides whether a role may perform an action or reach a
// page. The mapping is configuration data fixed at construction; results
// are deterministic for a process lifetime.
type PermissionEngine struct {
	rolePerms map[domain.Role]map[domain.Permission]struct{}
	pagePerms map[domain.Page][]domain.Permission
}

// NewPermissionEngine builds the engine from the static role and page
// tables.
func NewPermissionEngine() *PermissionEngine {
	e := &PermissionEngine{
		rolePerms: make(map[domain.Role]map[domain.Permission]struct{}),
		pagePerms: pagePermissions,
	}
	e.rolePerms[domain.RoleAdmin] = permSet(adminPermissions)
	e.rolePerms[domain.RoleSuperAdmin] = permSet(domain.AllPermissions)
	return e
}

func permSet(perms []domain.Permission) map[domain.Permission]struct{} {
	set := make(map[domain.Permission]struct{}, len(perms))
	for _, p := range perms {
		set[p] = struct{}{}
	}
	return set
}

// HasPermission reports whether the role's static set contains the
// permission.
func (e *PermissionEngine) HasPermission(role domain.Role, perm domain.Permission) bool {
	_, ok := e.rolePerms[role][perm]
	return ok
}

// Authorize returns nil when allowed, or a PermissionDeniedError naming the
// missing permission, never a bare "forbidden".
func (e *PermissionEngine) Authorize(role domain.Role, perm domain.Permission) error {
	if e.HasPermission(role, perm) {
		return nil
	}
	return &domain.PermissionDeniedError{Role: role, Missing: perm}
}

// CanAccessPage reports whether the role holds every permission the page
// requires. Pages with no requirements are open to any authenticated role.
func (e *PermissionEngine) CanAccessPage(role domain.Role, page domain.Page) bool {
	required, known := e.pagePerms[page]
	if !known {
		return false
	}
	for _, p := range required {
		if !e.HasPermission(role, p) {
			return false
		}
	}
	return true
}

// AccessiblePages derives the page list by evaluating CanAccessPage over
// every known page, so it cannot drift from the per-page rule table.
func (e *PermissionEngine) AccessiblePages(role domain.Role) []domain.Page {
	var pages []domain.Page
	for _, page := range domain.AllPages {
		if e.CanAccessPage(role, page) {
			pages = append(pages, page)
		}
	}
	return pages
}
