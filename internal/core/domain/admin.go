package domain

import "time"

// Role is the closed set of administrative roles. SuperAdmin's permission
// set is always a strict superset of Admin's (see permission.go).
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

// IsValid reports whether r is one of the known roles.
func (r Role) IsValid() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

// Admin models a privileged operator. Immutable for the lifetime of a
// session; looked up from the credential store, never created by the core.
type Admin struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	DisplayName  string    `json:"display_name"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Principal is the authenticated identity extracted from a verified session
// token. It carries no credential material.
type Principal struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}
