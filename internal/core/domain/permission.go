package domain

// Permission is an atomic administrative capability.
type Permission string

const (
	PermViewVerifications   Permission = "VIEW_VERIFICATIONS"
	PermApproveVerification Permission = "APPROVE_VERIFICATION"
	PermRejectVerification  Permission = "REJECT_VERIFICATION"
	PermViewAuditLogs       Permission = "VIEW_AUDIT_LOGS"
	PermExportAuditLogs     Permission = "EXPORT_AUDIT_LOGS"
	PermViewUsers           Permission = "VIEW_USERS"
	PermCreateAdmin         Permission = "CREATE_ADMIN"
	PermManageAdmins        Permission = "MANAGE_ADMINS"
)

// AllPermissions enumerates every known permission. New permissions must be
// added here; the super-admin role derives its set from this slice, so it
// remains a superset without further changes.
var AllPermissions = []Permission{
	PermViewVerifications,
	PermApproveVerification,
	PermRejectVerification,
	PermViewAuditLogs,
	PermExportAuditLogs,
	PermViewUsers,
	PermCreateAdmin,
	PermManageAdmins,
}

// Page identifies an admin console page gated by permissions.
type Page string

const (
	PageDashboard     Page = "dashboard"
	PageVerifications Page = "verifications"
	PageAudit         Page = "audit"
	PageUsers         Page = "users"
	PageAdmins        Page = "admins"
	PageExport        Page = "export"
)

// AllPages enumerates every known admin console page.
var AllPages = []Page{
	PageDashboard,
	PageVerifications,
	PageAudit,
	PageUsers,
	PageAdmins,
	PageExport,
}
