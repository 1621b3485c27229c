package domain

import "time"

// VerificationStatus is the lifecycle state of a nominee verification request.
type VerificationStatus string

const (
	VerificationPending   VerificationStatus = "pending"
	VerificationApproved  VerificationStatus = "approved"
	VerificationRejected  VerificationStatus = "rejected"
	VerificationWithdrawn VerificationStatus = "withdrawn"
)

// VerificationRequest asks for transfer of a deceased user's asset to a
// nominee. Only the fields the trust core inspects are modeled here; the
// end-user CRUD around these requests lives elsewhere.
type VerificationRequest struct {
	ID           string             `json:"id" bson:"_id,omitempty"`
	UserID       string             `json:"user_id" bson:"user_id"`
	AssetID      string             `json:"asset_id" bson:"asset_id"`
	NomineeEmail string             `json:"nominee_email" bson:"nominee_email"`
	NomineeName  string             `json:"nominee_name" bson:"nominee_name"`
	Status       VerificationStatus `json:"status" bson:"status"`
	SubmittedAt  time.Time          `json:"submitted_at" bson:"submitted_at"`
}

// DocumentMetadata describes an uploaded supporting document.
type DocumentMetadata struct {
	FileName   string    `json:"file_name"`
	FileType   string    `json:"file_type"`
	SizeBytes  int64     `json:"size_bytes"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// DeathCertificate carries the certificate fields an admin reviews before
// approving a transfer. Number and authority are optional in some
// jurisdictions.
type DeathCertificate struct {
	DeceasedName     string     `json:"deceased_name"`
	DateOfDeath      *time.Time `json:"date_of_death,omitempty"`
	CertificateNo    string     `json:"certificate_no,omitempty"`
	IssuingAuthority string     `json:"issuing_authority,omitempty"`
}

// ValidationResult aggregates the outcome of the document checks. Errors
// block; warnings are advisory and never affect IsValid.
type ValidationResult struct {
	IsValid  bool     `json:"is_valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// AddError appends a blocking problem and marks the result invalid.
func (r *ValidationResult) AddError(msg string) {
	r.Errors = append(r.Errors, msg)
	r.IsValid = false
}

// AddWarning appends an advisory note without affecting validity.
func (r *ValidationResult) AddWarning(msg string) {
	r.Warnings = append(r.Warnings, msg)
}

// Merge folds another result into this one.
func (r *ValidationResult) Merge(other ValidationResult) {
	r.Errors = append(r.Errors, other.Errors...)
	r.Warnings = append(r.Warnings, other.Warnings...)
	if !other.IsValid {
		r.IsValid = false
	}
}

// NameMatchResult reports the approximate-match verdict between an entered
// name and the expected one. A heuristic for human review, not identity
// proof.
type NameMatchResult struct {
	Match      bool    `json:"match"`
	Similarity float64 `json:"similarity"`
	Reason     string  `json:"reason,omitempty"`
}
