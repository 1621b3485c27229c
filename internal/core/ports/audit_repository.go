package ports

import (
	"context"

	"github.com/legacyvault/admin-trust/internal/core/domain"
)

// AuditRepository is the durable audit store contract: append-only writes
// plus filtered, newest-first, paginated reads. Append failures must be
// surfaced to the caller; the writer decides how to make them observable.
type AuditRepository interface {
	Append(ctx context.Context, entry domain.AuditEntry) error
	Query(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditEntry, int64, error)
}
