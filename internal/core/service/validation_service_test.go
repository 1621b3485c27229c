package service

import (
	"strings"
	"testing"
	"time"

	"github.com/legacyvault/admin-trust/internal/core/domain"
)

func timePtr(t time.Time) *time.Time { return &t }

func goodDocument() domain.DocumentMetadata {
	return domain.DocumentMetadata{
		FileName:   "certificate.pdf",
		FileType:   "application/pdf",
		SizeBytes:  2 * 1024 * 1024,
		UploadedAt: time.Now().Add(-24 * time.Hour),
	}
}

func goodCertificate() domain.DeathCertificate {
	return domain.DeathCertificate{
		DeceasedName:     "Raj Sharma",
		DateOfDeath:      timePtr(time.Now().AddDate(0, -6, 0)),
		CertificateNo:    "DC-2025-0042",
		IssuingAuthority: "Municipal Corporation of Delhi",
	}
}

func TestValidationService_ValidDocumentPasses(t *testing.T) {
	svc := NewValidationService()

	cert := goodCertificate()
	result := svc.ValidateDocument(goodDocument(), &cert)
	if !result.IsValid {
		t.Fatalf("expected valid result, got errors: %v", result.Errors)
	}
	if len(result.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
}

func TestValidationService_RejectedFileTypes(t *testing.T) {
	svc := NewValidationService()

	for _, fileType := range []string{"application/zip", "text/html", "image/gif", ""} {
		meta := goodDocument()
		meta.FileType = fileType
		result := svc.ValidateDocument(meta, nil)
		if result.IsValid {
			t.Fatalf("file type %q should be rejected", fileType)
		}
	}

	// Accepted types are case-insensitive.
	meta := goodDocument()
	meta.FileType = "Application/PDF"
	if result := svc.ValidateDocument(meta, nil); !result.IsValid {
		t.Fatalf("file type match should be case-insensitive: %v", result.Errors)
	}
}

func TestValidationService_FileSizeBounds(t *testing.T) {
	svc := NewValidationService()

	meta := goodDocument()
	meta.SizeBytes = 11 * 1024 * 1024
	if result := svc.ValidateDocument(meta, nil); result.IsValid {
		t.Fatalf("oversized file should be rejected")
	}

	meta.SizeBytes = 0
	if result := svc.ValidateDocument(meta, nil); result.IsValid {
		t.Fatalf("empty file should be rejected")
	}

	// Tiny files pass with a warning.
	meta.SizeBytes = 4 * 1024
	result := svc.ValidateDocument(meta, nil)
	if !result.IsValid {
		t.Fatalf("small file should still be valid: %v", result.Errors)
	}
	if len(result.Warnings) == 0 {
		t.Fatalf("expected a small-file warning")
	}
}

func TestValidationService_DocumentAge(t *testing.T) {
	svc := NewValidationService()

	meta := goodDocument()
	meta.UploadedAt = time.Now().AddDate(0, 0, -91)
	if result := svc.ValidateDocument(meta, nil); result.IsValid {
		t.Fatalf("document older than 90 days should be rejected")
	}

	meta.UploadedAt = time.Time{}
	if result := svc.ValidateDocument(meta, nil); result.IsValid {
		t.Fatalf("missing upload timestamp should be rejected")
	}

	meta.UploadedAt = time.Now().AddDate(0, 0, -80)
	result := svc.ValidateDocument(meta, nil)
	if !result.IsValid {
		t.Fatalf("80-day-old document should still be valid: %v", result.Errors)
	}
	if len(result.Warnings) == 0 {
		t.Fatalf("expected an approaching-limit warning")
	}
}

func TestValidationService_DeathCertificateDates(t *testing.T) {
	svc := NewValidationService()

	cert := goodCertificate()
	cert.DateOfDeath = timePtr(time.Now().Add(24 * time.Hour))
	result := svc.ValidateDeathCertificate(cert)
	if result.IsValid {
		t.Fatalf("future date of death must be an error")
	}

	// Six years ago: valid, but flagged stale.
	cert = goodCertificate()
	cert.DateOfDeath = timePtr(time.Now().AddDate(-6, 0, 0))
	result = svc.ValidateDeathCertificate(cert)
	if !result.IsValid {
		t.Fatalf("stale certificate should be a warning, got errors: %v", result.Errors)
	}
	if len(result.Warnings) == 0 || !strings.Contains(result.Warnings[0], "stale") {
		t.Fatalf("expected stale warning, got %v", result.Warnings)
	}

	// Two days ago: valid, but flagged for extra scrutiny.
	cert.DateOfDeath = timePtr(time.Now().AddDate(0, 0, -2))
	result = svc.ValidateDeathCertificate(cert)
	if !result.IsValid {
		t.Fatalf("recent death should be a warning, got errors: %v", result.Errors)
	}
	if len(result.Warnings) == 0 || !strings.Contains(result.Warnings[0], "scrutiny") {
		t.Fatalf("expected scrutiny warning, got %v", result.Warnings)
	}

	cert.DateOfDeath = nil
	if result := svc.ValidateDeathCertificate(cert); result.IsValid {
		t.Fatalf("missing date of death must be an error")
	}
}

func TestValidationService_DeathCertificateFields(t *testing.T) {
	svc := NewValidationService()

	cert := goodCertificate()
	cert.DeceasedName = "  R "
	if result := svc.ValidateDeathCertificate(cert); result.IsValid {
		t.Fatalf("too-short deceased name must be an error")
	}

	cert = goodCertificate()
	cert.CertificateNo = ""
	cert.IssuingAuthority = ""
	result := svc.ValidateDeathCertificate(cert)
	if !result.IsValid {
		t.Fatalf("missing number/authority are advisory only: %v", result.Errors)
	}
	if len(result.Warnings) != 2 {
		t.Fatalf("expected two warnings, got %v", result.Warnings)
	}
}

func TestValidationService_NameMatch(t *testing.T) {
	svc := NewValidationService()

	// Case and whitespace differences are an exact match.
	result := svc.ValidateNameMatch("raj   sharma", "Raj Sharma")
	if !result.Match || result.Similarity != 1.0 {
		t.Fatalf("normalized names should match exactly: %+v", result)
	}

	// Punctuation is ignored.
	result = svc.ValidateNameMatch("O'Brien, Mary", "obrien mary")
	if !result.Match || result.Similarity != 1.0 {
		t.Fatalf("punctuation should not affect matching: %+v", result)
	}

	// One dropped letter: close enough, but flagged for manual confirmation.
	result = svc.ValidateNameMatch("Raj Sharm", "Raj Sharma")
	if !result.Match {
		t.Fatalf("near match should pass: %+v", result)
	}
	if result.Similarity < nameMatchThreshold || result.Similarity >= 1.0 {
		t.Fatalf("similarity out of expected range: %f", result.Similarity)
	}
	if result.Reason == "" {
		t.Fatalf("near match must carry a caveat")
	}

	// Different person.
	result = svc.ValidateNameMatch("Amit Verma", "Raj Sharma")
	if result.Match {
		t.Fatalf("distinct names must not match: %+v", result)
	}

	// Both empty after normalization.
	result = svc.ValidateNameMatch("...", "!!!")
	if result.Match {
		t.Fatalf("empty names must not match: %+v", result)
	}
}

func TestValidationService_Levenshtein(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"", "abc", 3},
		{"kitten", "sitting", 3},
		{"sharma", "sharm", 1},
		{"same", "same", 0},
	}
	for _, tc := range cases {
		if got := levenshtein([]rune(tc.a), []rune(tc.b)); got != tc.want {
			t.Fatalf("levenshtein(%q, %q) = %d, want %d", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestValidationService_DuplicateVerifications(t *testing.T) {
	svc := NewValidationService()

	current := domain.VerificationRequest{
		ID:           "ver_1",
		UserID:       "user_1",
		AssetID:      "asset_1",
		NomineeEmail: "nominee@example.com",
		Status:       domain.VerificationPending,
	}
	existing := []domain.VerificationRequest{
		{ID: "ver_1", UserID: "user_1", AssetID: "asset_1", NomineeEmail: "nominee@example.com", Status: domain.VerificationPending},
		{ID: "ver_2", UserID: "user_1", AssetID: "asset_1", NomineeEmail: "NOMINEE@example.com", Status: domain.VerificationPending},
		{ID: "ver_3", UserID: "user_1", AssetID: "asset_1", NomineeEmail: "nominee@example.com", Status: domain.VerificationApproved},
		{ID: "ver_4", UserID: "user_1", AssetID: "asset_1", NomineeEmail: "nominee@example.com", Status: domain.VerificationRejected},
		{ID: "ver_5", UserID: "user_1", AssetID: "asset_1", NomineeEmail: "nominee@example.com", Status: domain.VerificationWithdrawn},
		{ID: "ver_6", UserID: "user_2", AssetID: "asset_1", NomineeEmail: "nominee@example.com", Status: domain.VerificationPending},
		{ID: "ver_7", UserID: "user_1", AssetID: "asset_2", NomineeEmail: "nominee@example.com", Status: domain.VerificationPending},
	}

	dups := svc.CheckDuplicateVerification(current, existing)
	if len(dups) != 2 {
		t.Fatalf("expected ver_2 and ver_3 as duplicates, got %v", dups)
	}
	want := map[string]bool{"ver_2": true, "ver_3": true}
	for _, id := range dups {
		if !want[id] {
			t.Fatalf("unexpected duplicate %s in %v", id, dups)
		}
	}
}
