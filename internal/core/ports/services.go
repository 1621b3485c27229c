package ports

import (
	"context"
	"time"

	"github.com/legacyvault/admin-trust/internal/core/domain"
)

// TokenService issues and verifies self-contained session tokens. Both
// operations are pure functions of (token, secret, clock) apart from the
// revocation check.
type TokenService interface {
	Issue(admin *domain.Admin) (string, error)
	// Verify returns the embedded principal, or one of the internal token
	// error classes. Callers must surface domain.ErrInvalidToken regardless
	// of the class.
	Verify(ctx context.Context, token string) (*domain.Principal, error)
	// Revoke denylists the token so Verify rejects it until its natural
	// expiry.
	Revoke(ctx context.Context, token string) error
}

// AuthService is the privileged login path.
type AuthService interface {
	Login(ctx context.Context, email, password string, origin domain.Origin) (string, *domain.Admin, error)
	Logout(ctx context.Context, token string, principal domain.Principal, origin domain.Origin) error
	CreateAdmin(ctx context.Context, actor domain.Principal, email, password, displayName string, role domain.Role, origin domain.Origin) (*domain.Admin, error)
}

// AuditService is the append-only compliance ledger.
type AuditService interface {
	// Record builds a well-formed entry and queues it for persistence.
	// It cannot fail; persistence errors are handled out-of-band.
	Record(ctx context.Context, input AuditInput) domain.AuditEntry
	Query(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditEntry, int64, error)
	ExportCSV(entries []domain.AuditEntry) string
	VerifyIntegrity(entry domain.AuditEntry) bool
}

// AuditInput carries the caller-supplied fields of an audit entry; id and
// timestamp are generated at write time.
type AuditInput struct {
	ActorID      string
	ActorEmail   string
	Action       domain.AuditAction
	TargetID     string
	TargetType   string
	Details      string
	Origin       domain.Origin
	Outcome      domain.AuditOutcome
	ErrorMessage string
}

// ValidationService gates verification approvals on document and identity
// checks.
type ValidationService interface {
	ValidateDocument(meta domain.DocumentMetadata, cert *domain.DeathCertificate) domain.ValidationResult
	ValidateDeathCertificate(cert domain.DeathCertificate) domain.ValidationResult
	ValidateNameMatch(entered, expected string) domain.NameMatchResult
	CheckDuplicateVerification(current domain.VerificationRequest, existing []domain.VerificationRequest) []string
}

// LoginLimiter tracks failed attempts per identifier in a sliding window.
type LoginLimiter interface {
	// Check reports whether another attempt is allowed, how many failures
	// remain before lockout, and when the window resets if locked out.
	Check(identifier string) (allowed bool, remaining int, resetAt time.Time)
	RecordAttempt(identifier string, success bool)
}
