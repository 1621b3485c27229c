package service

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/legacyvault/admin-trust/internal/core/domain"
	"github.com/legacyvault/admin-trust/internal/core/ports"
)

const (
	maxDocumentSizeMB   = 10
	maxDocumentAgeDays  = 90
	suspiciousSizeBytes = 10 * 1024
	nameMatchThreshold  = 0.8
	staleCertYears      = 5
	recentDeathDays     = 7
	minDeceasedNameLen  = 3
)

// allowedDocumentTypes lists the accepted upload formats for supporting
// documents.
var allowedDocumentTypes = []string{"application/pdf", "image/jpeg", "image/png"}

type validationService struct{}

// NewValidationService returns the rule engine gating verification
// approvals. All checks are pure; errors block, warnings advise.
func NewValidationService() ports.ValidationService {
	return &validationService{}
}

// ValidateDocument runs file-type, file-size, and age checks, plus the
// certificate-field checks when certificate data is supplied. IsValid is
// true iff no sub-check produced an error; warnings never block.
func (s *validationService) ValidateDocument(meta domain.DocumentMetadata, cert *domain.DeathCertificate) domain.ValidationResult {
	result := domain.ValidationResult{IsValid: true}
	result.Merge(validateFileType(meta.FileType, allowedDocumentTypes))
	result.Merge(validateFileSize(meta.SizeBytes, maxDocumentSizeMB))
	result.Merge(validateDocumentAge(meta.UploadedAt, maxDocumentAgeDays))
	if cert != nil {
		result.Merge(s.ValidateDeathCertificate(*cert))
	}
	return result
}

func validateFileType(fileType string, allowed []string) domain.ValidationResult {
	result := domain.ValidationResult{IsValid: true}
	fileType = strings.ToLower(strings.TrimSpace(fileType))
	for _, t := range allowed {
		if fileType == t {
			return result
		}
	}
	result.AddError(fmt.Sprintf("file type %q is not accepted (allowed: %s)", fileType, strings.Join(allowed, ", ")))
	return result
}

func validateFileSize(sizeBytes int64, maxMB int64) domain.ValidationResult {
	result := domain.ValidationResult{IsValid: true}
	if sizeBytes <= 0 {
		result.AddError("file is empty")
		return result
	}
	if sizeBytes > maxMB*1024*1024 {
		result.AddError(fmt.Sprintf("file exceeds the %d MB limit", maxMB))
		return result
	}
	// Tiny files are technically valid but operationally suspicious.
	if sizeBytes < suspiciousSizeBytes {
		result.AddWarning("file is unusually small for a scanned document; verify it is legible")
	}
	return result
}

func validateDocumentAge(uploadedAt time.Time, maxAgeDays int) domain.ValidationResult {
	result := domain.ValidationResult{IsValid: true}
	if uploadedAt.IsZero() {
		result.AddError("upload timestamp is missing")
		return result
	}
	age := time.Since(uploadedAt)
	maxAge := time.Duration(maxAgeDays) * 24 * time.Hour
	if age > maxAge {
		result.AddError(fmt.Sprintf("document is older than %d days and must be re-uploaded", maxAgeDays))
		return result
	}
	if age > maxAge*4/5 {
		result.AddWarning(fmt.Sprintf("document is approaching the %d-day age limit", maxAgeDays))
	}
	return result
}

// ValidateDeathCertificate checks the reviewed certificate fields. A
// missing certificate number or issuing authority is only a warning: some
// jurisdictions omit them.
func (s *validationService) ValidateDeathCertificate(cert domain.DeathCertificate) domain.ValidationResult {
	result := domain.ValidationResult{IsValid: true}

	name := strings.TrimSpace(cert.DeceasedName)
	if len(name) < minDeceasedNameLen {
		result.AddError("deceased name is required and must be at least 3 characters")
	}

	if cert.DateOfDeath == nil {
		result.AddError("date of death is required")
	} else {
		now := time.Now()
		dod := *cert.DateOfDeath
		switch {
		case dod.After(now):
			result.AddError("date of death cannot be in the future")
		case now.Sub(dod) > staleCertYears*365*24*time.Hour:
			result.AddWarning("date of death is more than 5 years ago; certificate may be stale")
		case now.Sub(dod) < recentDeathDays*24*time.Hour:
			result.AddWarning("date of death is less than 7 days ago; apply extra scrutiny")
		}
	}

	if strings.TrimSpace(cert.CertificateNo) == "" {
		result.AddWarning("certificate number is missing")
	}
	if strings.TrimSpace(cert.IssuingAuthority) == "" {
		result.AddWarning("issuing authority is missing")
	}
	return result
}

// ValidateNameMatch compares an entered name against the expected one using
// normalized Levenshtein similarity. A heuristic to separate typos from
// genuine mismatches for human review, not a legal identity proof.
func (s *validationService) ValidateNameMatch(entered, expected string) domain.NameMatchResult {
	a := normalizeName(entered)
	b := normalizeName(expected)

	if a == b {
		return domain.NameMatchResult{Match: true, Similarity: 1.0}
	}

	maxLen := len([]rune(a))
	if l := len([]rune(b)); l > maxLen {
		maxLen = l
	}
	if maxLen == 0 {
		return domain.NameMatchResult{Match: false, Similarity: 0, Reason: "no name provided"}
	}

	dist := levenshtein([]rune(a), []rune(b))
	similarity := 1.0 - float64(dist)/float64(maxLen)

	if similarity >= nameMatchThreshold {
		return domain.NameMatchResult{
			Match:      true,
			Similarity: similarity,
			Reason:     fmt.Sprintf("names differ slightly (%.0f%% similar); likely a typo, confirm manually", similarity*100),
		}
	}
	return domain.NameMatchResult{
		Match:      false,
		Similarity: similarity,
		Reason:     fmt.Sprintf("names are only %.0f%% similar", similarity*100),
	}
}

// normalizeName lower-cases, strips punctuation, and collapses whitespace.
func normalizeName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// levenshtein computes the classic edit distance with unit
// insertion/deletion/substitution cost, using a rolling single-row table.
func levenshtein(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	row := make([]int, len(b)+1)
	for j := range row {
		row[j] = j
	}
	for i := 1; i <= len(a); i++ {
		prev := row[0]
		row[0] = i
		for j := 1; j <= len(b); j++ {
			cur := row[j]
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			row[j] = min3(row[j]+1, row[j-1]+1, prev+cost)
			prev = cur
		}
	}
	return row[len(b)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}

// CheckDuplicateVerification flags other requests for the same (nominee
// email, user, asset) tuple still pending or already approved. Rejected or
// withdrawn requests do not count.
func (s *validationService) CheckDuplicateVerification(current domain.VerificationRequest, existing []domain.VerificationRequest) []string {
	var duplicates []string
	for _, other := range existing {
		if other.ID == current.ID {
			continue
		}
		if other.Status != domain.VerificationPending && other.Status != domain.VerificationApproved {
			continue
		}
		if strings.EqualFold(other.NomineeEmail, current.NomineeEmail) &&
			other.UserID == current.UserID &&
			other.AssetID == current.AssetID {
			duplicates = append(duplicates, other.ID)
		}
	}
	return duplicates
}
