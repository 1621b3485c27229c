package service

import (
	"context"
	mathrand "math/rand"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github.com/legacyvault/admin-trust/internal/core/domain"
	"github.com/legacyvault/admin-trust/internal/core/ports"
)

// AuditWriter decouples entry creation from persistence so recording an
// audit entry never blocks an authorization or login path.
type AuditWriter interface {
	Enqueue(entry domain.AuditEntry)
}

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(mathrand.New(mathrand.NewSource(time.Now().UnixNano())), 0)
)

// newEntryID returns a ULID: millisecond timestamp plus random suffix,
// lexicographically sortable. Uniqueness only needs to hold within one
// ledger, so no cross-process coordination is required.
func newEntryID(ts time.Time) string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(ts), entropy).String()
}

type auditService struct {
	repo   ports.AuditRepository
	writer AuditWriter
	log    zerolog.Logger
}

// NewAuditService returns the append-only audit ledger. Writes go through
// the writer; reads go straight to the repository.
func NewAuditService(repo ports.AuditRepository, writer AuditWriter, log zerolog.Logger) ports.AuditService {
	return &auditService{repo: repo, writer: writer, log: log}
}

// Record builds a well-formed entry and queues it for persistence. Id and
// timestamp generation cannot fail, so Record always returns the entry that
// will be written.
func (s *auditService) Record(ctx context.Context, input ports.AuditInput) domain.AuditEntry {
	now := time.Now().UTC()
	entry := domain.AuditEntry{
		ID:           newEntryID(now),
		Timestamp:    now,
		ActorID:      input.ActorID,
		ActorEmail:   input.ActorEmail,
		Action:       input.Action,
		TargetID:     input.TargetID,
		TargetType:   input.TargetType,
		Details:      input.Details,
		Origin:       input.Origin,
		Outcome:      input.Outcome,
		ErrorMessage: input.ErrorMessage,
	}
	s.writer.Enqueue(entry)
	return entry
}

// Query returns entries matching all supplied filters, newest first, with
// the total count before pagination.
func (s *auditService) Query(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditEntry, int64, error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	return s.repo.Query(ctx, filter)
}

// csvHeader is the fixed export header row.
var csvHeader = []string{"ID", "Timestamp", "Admin Email", "Action", "Target Type", "Target ID", "Status", "IP Address", "Details"}

// ExportCSV renders entries as comma-separated text. Every field is wrapped
// in double quotes unconditionally (embedded quotes doubled), so free-text
// fields stay parseable whatever they contain.
func (s *auditService) ExportCSV(entries []domain.AuditEntry) string {
	var b strings.Builder
	writeCSVRow(&b, csvHeader)
	for _, e := range entries {
		writeCSVRow(&b, []string{
			e.ID,
			e.Timestamp.UTC().Format(time.RFC3339),
			e.ActorEmail,
			string(e.Action),
			e.TargetType,
			e.TargetID,
			string(e.Outcome),
			e.Origin.IP,
			e.Details,
		})
	}
	return b.String()
}

func writeCSVRow(b *strings.Builder, fields []string) {
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		b.WriteString(strings.ReplaceAll(f, `"`, `""`))
		b.WriteByte('"')
	}
	b.WriteByte('\n')
}

// VerifyIntegrity reports whether an entry is structurally well-formed: a
// non-empty id, a real timestamp, an actor id, a recognized action, and an
// outcome of exactly "success" or "failed". This catches corruption; it is
// not a cryptographic authenticity check.
func (s *auditService) VerifyIntegrity(entry domain.AuditEntry) bool {
	if entry.ID == "" || entry.ActorID == "" {
		return false
	}
	if entry.Timestamp.IsZero() {
		return false
	}
	if !entry.Action.IsValid() {
		return false
	}
	if entry.Outcome != domain.OutcomeSuccess && entry.Outcome != domain.OutcomeFailed {
		return false
	}
	return true
}
