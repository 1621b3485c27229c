package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInvalidToken is the uniform signal for every token verification
	// failure. The precise sub-reason (malformed, bad signature, expired,
	// revoked) is logged and audited but never returned to the caller.
	ErrInvalidToken = errors.New("invalid or expired token")

	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrDomainNotAllowed   = errors.New("email domain not allowed")
	ErrRateLimited        = errors.New("too many failed login attempts")
	ErrAdminNotFound      = errors.New("admin not found")
	ErrAdminExists        = errors.New("admin already exists")
	ErrValidationBlocked  = errors.New("document validation failed")
)

// RateLimitedError reports a locked-out login identifier and when the
// sliding window reopens.
type RateLimitedError struct {
	ResetAt time.Time
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("too many failed login attempts, retry after %s", e.ResetAt.UTC().Format(time.RFC3339))
}

// Is lets errors.Is(err, ErrRateLimited) match a RateLimitedError.
func (e *RateLimitedError) Is(target error) bool { return target == ErrRateLimited }

// PermissionDeniedError carries the specific missing permission. Unlike
// authentication failures, authorization denials are not a secrecy concern
// and the reason aids troubleshooting and audit trails.
type PermissionDeniedError struct {
	Role    Role
	Missing Permission
}

func (e *PermissionDeniedError) Error() string {
	return fmt.Sprintf("role %q lacks permission %s", e.Role, e.Missing)
}

// IsPermissionDenied reports whether err is a permission denial and returns it.
func IsPermissionDenied(err error) (*PermissionDeniedError, bool) {
	var pd *PermissionDeniedError
	if errors.As(err, &pd) {
		return pd, true
	}
	return nil, false
}
