package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/legacyvault/admin-trust/internal/core/domain"
	"github.com/legacyvault/admin-trust/internal/core/ports"
)

type captureWriter struct {
	entries []domain.AuditEntry
}

func (w *captureWriter) Enqueue(entry domain.AuditEntry) {
	w.entries = append(w.entries, entry)
}

func TestAuditService_Record_FillsIDAndTimestamp(t *testing.T) {
	writer := &captureWriter{}
	svc := NewAuditService(nil, writer, zerolog.Nop())

	before := time.Now().UTC()
	entry := svc.Record(context.Background(), ports.AuditInput{
		ActorID:    "admin_1",
		ActorEmail: "ops@legacyvault.io",
		Action:     domain.ActionVerificationApproved,
		TargetID:   "ver_9",
		TargetType: "verification_request",
		Origin:     domain.Origin{IP: "10.0.0.1", UserAgent: "curl/8"},
		Outcome:    domain.OutcomeSuccess,
	})
	after := time.Now().UTC()

	if entry.ID == "" {
		t.Fatalf("expected a generated id")
	}
	if entry.Timestamp.Before(before) || entry.Timestamp.After(after) {
		t.Fatalf("timestamp %s outside call window", entry.Timestamp)
	}
	if entry.ActorID != "admin_1" || entry.Action != domain.ActionVerificationApproved {
		t.Fatalf("caller fields not carried over: %+v", entry)
	}
	if len(writer.entries) != 1 || writer.entries[0].ID != entry.ID {
		t.Fatalf("entry was not queued for persistence")
	}
}

func TestAuditService_Record_IDsAreSortableAndUnique(t *testing.T) {
	writer := &captureWriter{}
	svc := NewAuditService(nil, writer, zerolog.Nop())

	var prev string
	for i := 0; i < 100; i++ {
		entry := svc.Record(context.Background(), ports.AuditInput{
			ActorID: "admin_1",
			Action:  domain.ActionLogin,
			Outcome: domain.OutcomeSuccess,
		})
		if entry.ID <= prev {
			t.Fatalf("ids must be strictly increasing: %q then %q", prev, entry.ID)
		}
		prev = entry.ID
	}
}

func TestAuditService_ExportCSV_QuotesEveryField(t *testing.T) {
	svc := NewAuditService(nil, &captureWriter{}, zerolog.Nop())

	ts := time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC)
	entries := []domain.AuditEntry{
		{
			ID:         "01AAA",
			Timestamp:  ts,
			ActorID:    "admin_1",
			ActorEmail: "ops@legacyvault.io",
			Action:     domain.ActionVerificationRejected,
			TargetID:   "ver_9",
			TargetType: "verification_request",
			Details:    `reason: "blurry scan", resubmit`,
			Origin:     domain.Origin{IP: "10.0.0.1"},
			Outcome:    domain.OutcomeSuccess,
		},
	}

	out := svc.ExportCSV(entries)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header plus one row, got %d lines", len(lines))
	}
	if lines[0] != `"ID","Timestamp","Admin Email","Action","Target Type","Target ID","Status","IP Address","Details"` {
		t.Fatalf("unexpected header: %s", lines[0])
	}

	// Embedded commas and quotes must survive: the details field keeps its
	// comma and carries doubled quotes.
	if !strings.Contains(lines[1], `"reason: ""blurry scan"", resubmit"`) {
		t.Fatalf("details field not quoted correctly: %s", lines[1])
	}
	if !strings.Contains(lines[1], `"2025-06-01T12:30:00Z"`) {
		t.Fatalf("timestamp not rendered as RFC3339: %s", lines[1])
	}
	for _, field := range strings.Split(lines[0], ",") {
		if !strings.HasPrefix(field, `"`) || !strings.HasSuffix(field, `"`) {
			t.Fatalf("every field must be quoted, got %s", field)
		}
	}
}

func TestAuditService_ExportCSV_EmptyLedger(t *testing.T) {
	svc := NewAuditService(nil, &captureWriter{}, zerolog.Nop())

	out := svc.ExportCSV(nil)
	if strings.Count(out, "\n") != 1 {
		t.Fatalf("empty export should be header only, got %q", out)
	}
}

func TestAuditService_VerifyIntegrity(t *testing.T) {
	svc := NewAuditService(nil, &captureWriter{}, zerolog.Nop())

	valid := domain.AuditEntry{
		ID:        "01AAA",
		Timestamp: time.Now().UTC(),
		ActorID:   "admin_1",
		Action:    domain.ActionLogin,
		Outcome:   domain.OutcomeSuccess,
	}
	if !svc.VerifyIntegrity(valid) {
		t.Fatalf("well-formed entry should pass")
	}

	cases := []struct {
		name   string
		mutate func(*domain.AuditEntry)
	}{
		{"missing id", func(e *domain.AuditEntry) { e.ID = "" }},
		{"missing actor", func(e *domain.AuditEntry) { e.ActorID = "" }},
		{"zero timestamp", func(e *domain.AuditEntry) { e.Timestamp = time.Time{} }},
		{"unknown action", func(e *domain.AuditEntry) { e.Action = "password_peeked" }},
		{"bad outcome", func(e *domain.AuditEntry) { e.Outcome = "partial" }},
		{"empty outcome", func(e *domain.AuditEntry) { e.Outcome = "" }},
	}
	for _, tc := range cases {
		entry := valid
		tc.mutate(&entry)
		if svc.VerifyIntegrity(entry) {
			t.Fatalf("%s: expected integrity failure", tc.name)
		}
	}
}

func TestAuditService_Query_DefaultsLimit(t *testing.T) {
	repo := &stubAuditRepo{}
	svc := NewAuditService(repo, &captureWriter{}, zerolog.Nop())

	if _, _, err := svc.Query(context.Background(), domain.AuditFilter{}); err != nil {
		t.Fatalf("query: %v", err)
	}
	if repo.lastFilter.Limit != 50 {
		t.Fatalf("expected default limit 50, got %d", repo.lastFilter.Limit)
	}

	if _, _, err := svc.Query(context.Background(), domain.AuditFilter{Limit: 10}); err != nil {
		t.Fatalf("query: %v", err)
	}
	if repo.lastFilter.Limit != 10 {
		t.Fatalf("explicit limit must be kept, got %d", repo.lastFilter.Limit)
	}
}

type stubAuditRepo struct {
	lastFilter domain.AuditFilter
	appended   []domain.AuditEntry
}

func (r *stubAuditRepo) Append(_ context.Context, entry domain.AuditEntry) error {
	r.appended = append(r.appended, entry)
	return nil
}

func (r *stubAuditRepo) Query(_ context.Context, filter domain.AuditFilter) ([]domain.AuditEntry, int64, error) {
	r.lastFilter = filter
	return nil, 0, nil
}
