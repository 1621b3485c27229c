package handler

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/legacyvault/admin-trust/internal/api/metrics"
	"github.com/legacyvault/admin-trust/internal/api/middleware"
	"github.com/legacyvault/admin-trust/internal/core/domain"
	"github.com/legacyvault/admin-trust/internal/core/ports"
)

// VerificationHandler runs the document/identity gate ahead of a nominee
// verification decision and records the decision in the audit ledger. The
// verification request lifecycle itself (CRUD, notification) lives in a
// separate service.
type VerificationHandler struct {
	validation   ports.ValidationService
	auditService ports.AuditService
}

func NewVerificationHandler(validation ports.ValidationService, auditService ports.AuditService) *VerificationHandler {
	return &VerificationHandler{validation: validation, auditService: auditService}
}

type documentRequest struct {
	FileName   string    `json:"file_name"   validate:"required"`
	FileType   string    `json:"file_type"   validate:"required"`
	SizeBytes  int64     `json:"size_bytes"  validate:"required,gt=0"`
	UploadedAt time.Time `json:"uploaded_at" validate:"required"`
}

type certificateRequest struct {
	DeceasedName     string     `json:"deceased_name"`
	DateOfDeath      *time.Time `json:"date_of_death"`
	CertificateNo    string     `json:"certificate_no"`
	IssuingAuthority string     `json:"issuing_authority"`
}

type verificationRef struct {
	ID           string `json:"id"`
	UserID       string `json:"user_id"       validate:"required"`
	AssetID      string `json:"asset_id"      validate:"required"`
	NomineeEmail string `json:"nominee_email" validate:"required,email"`
	NomineeName  string `json:"nominee_name"`
	Status       string `json:"status"        validate:"omitempty,oneof=pending approved rejected withdrawn"`
}

type validateVerificationRequest struct {
	Document     documentRequest     `json:"document"     validate:"required"`
	Certificate  *certificateRequest `json:"certificate"`
	EnteredName  string              `json:"entered_name"`
	ExpectedName string              `json:"expected_name"`
	Request      *verificationRef    `json:"request"`
	Existing     []verificationRef   `json:"existing_requests" validate:"dive"`
}

type validateVerificationResponse struct {
	Result     domain.ValidationResult `json:"result"`
	NameMatch  *domain.NameMatchResult `json:"name_match,omitempty"`
	Duplicates []string                `json:"duplicate_request_ids,omitempty"`
}

type rejectVerificationRequest struct {
	Reason string `json:"reason" validate:"required,min=3"`
}

func (r *documentRequest) toDomain() domain.DocumentMetadata {
	return domain.DocumentMetadata{
		FileName:   r.FileName,
		FileType:   r.FileType,
		SizeBytes:  r.SizeBytes,
		UploadedAt: r.UploadedAt,
	}
}

func (r *certificateRequest) toDomain() *domain.DeathCertificate {
	if r == nil {
		return nil
	}
	return &domain.DeathCertificate{
		DeceasedName:     r.DeceasedName,
		DateOfDeath:      r.DateOfDeath,
		CertificateNo:    r.CertificateNo,
		IssuingAuthority: r.IssuingAuthority,
	}
}

func (r *verificationRef) toDomain() domain.VerificationRequest {
	return domain.VerificationRequest{
		ID:           r.ID,
		UserID:       r.UserID,
		AssetID:      r.AssetID,
		NomineeEmail: r.NomineeEmail,
		NomineeName:  r.NomineeName,
		Status:       domain.VerificationStatus(r.Status),
	}
}

// runChecks executes every applicable sub-check and aggregates the outcome.
func (h *VerificationHandler) runChecks(req *validateVerificationRequest) validateVerificationResponse {
	resp := validateVerificationResponse{
		Result: h.validation.ValidateDocument(req.Document.toDomain(), req.Certificate.toDomain()),
	}

	if req.EnteredName != "" || req.ExpectedName != "" {
		match := h.validation.ValidateNameMatch(req.EnteredName, req.ExpectedName)
		resp.NameMatch = &match
		if !match.Match {
			resp.Result.AddError("nominee name does not match: " + match.Reason)
		} else if match.Reason != "" {
			resp.Result.AddWarning(match.Reason)
		}
	}

	if req.Request != nil {
		existing := make([]domain.VerificationRequest, 0, len(req.Existing))
		for i := range req.Existing {
			existing = append(existing, req.Existing[i].toDomain())
		}
		resp.Duplicates = h.validation.CheckDuplicateVerification(req.Request.toDomain(), existing)
		if len(resp.Duplicates) > 0 {
			resp.Result.AddError(fmt.Sprintf("duplicate verification request(s): %s", strings.Join(resp.Duplicates, ", ")))
		}
	}

	return resp
}

// Validate runs the document and identity checks without making a decision.
//
// @Summary      Validate verification documents
// @Tags         verifications
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      validateVerificationRequest  true  "Documents and identity claims"
// @Success      200   {object}  validateVerificationResponse
// @Failure      403   {object}  map[string]string
// @Router       /admin/verifications/validate [post]
func (h *VerificationHandler) Validate(c echo.Context) error {
	principal, ok := middleware.PrincipalFromContext(c)
	if !ok {
		return domain.ErrInvalidToken
	}

	var req validateVerificationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	resp := h.runChecks(&req)
	recordValidationMetric(resp.Result)

	targetID := ""
	if req.Request != nil {
		targetID = req.Request.ID
	}
	h.auditService.Record(c.Request().Context(), ports.AuditInput{
		ActorID:    principal.ID,
		ActorEmail: principal.Email,
		Action:     domain.ActionVerificationChecked,
		TargetID:   targetID,
		TargetType: "verification_request",
		Details:    validationSummary(resp.Result),
		Origin:     middleware.RequestOrigin(c),
		Outcome:    domain.OutcomeSuccess,
	})

	return c.JSON(http.StatusOK, resp)
}

// Approve gates the approval decision on the validator: blocking errors
// stop the approval; warnings are returned for the admin to weigh.
//
// @Summary      Approve a verification request
// @Tags         verifications
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                       true  "Verification request id"
// @Param        body  body      validateVerificationRequest  true  "Documents and identity claims"
// @Success      200   {object}  validateVerificationResponse
// @Failure      422   {object}  map[string]string
// @Router       /admin/verifications/{id}/approve [post]
func (h *VerificationHandler) Approve(c echo.Context) error {
	principal, ok := middleware.PrincipalFromContext(c)
	if !ok {
		return domain.ErrInvalidToken
	}
	requestID := c.Param("id")

	var req validateVerificationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	resp := h.runChecks(&req)
	recordValidationMetric(resp.Result)

	if !resp.Result.IsValid {
		h.auditService.Record(c.Request().Context(), ports.AuditInput{
			ActorID:      principal.ID,
			ActorEmail:   principal.Email,
			Action:       domain.ActionVerificationApproved,
			TargetID:     requestID,
			TargetType:   "verification_request",
			Details:      validationSummary(resp.Result),
			Origin:       middleware.RequestOrigin(c),
			Outcome:      domain.OutcomeFailed,
			ErrorMessage: strings.Join(resp.Result.Errors, "; "),
		})
		return fmt.Errorf("%w: %s", domain.ErrValidationBlocked, strings.Join(resp.Result.Errors, "; "))
	}

	h.auditService.Record(c.Request().Context(), ports.AuditInput{
		ActorID:    principal.ID,
		ActorEmail: principal.Email,
		Action:     domain.ActionVerificationApproved,
		TargetID:   requestID,
		TargetType: "verification_request",
		Details:    validationSummary(resp.Result),
		Origin:     middleware.RequestOrigin(c),
		Outcome:    domain.OutcomeSuccess,
	})

	return c.JSON(http.StatusOK, resp)
}

// Reject records a rejection decision with its reason.
//
// @Summary      Reject a verification request
// @Tags         verifications
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                     true  "Verification request id"
// @Param        body  body      rejectVerificationRequest  true  "Rejection reason"
// @Success      204   "rejection recorded"
// @Failure      403   {object}  map[string]string
// @Router       /admin/verifications/{id}/reject [post]
func (h *VerificationHandler) Reject(c echo.Context) error {
	principal, ok := middleware.PrincipalFromContext(c)
	if !ok {
		return domain.ErrInvalidToken
	}
	requestID := c.Param("id")

	var req rejectVerificationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	h.auditService.Record(c.Request().Context(), ports.AuditInput{
		ActorID:    principal.ID,
		ActorEmail: principal.Email,
		Action:     domain.ActionVerificationRejected,
		TargetID:   requestID,
		TargetType: "verification_request",
		Details:    req.Reason,
		Origin:     middleware.RequestOrigin(c),
		Outcome:    domain.OutcomeSuccess,
	})

	return c.NoContent(http.StatusNoContent)
}

func recordValidationMetric(result domain.ValidationResult) {
	label := "valid"
	if !result.IsValid {
		label = "invalid"
	}
	metrics.ValidationRunsTotal.WithLabelValues(label).Inc()
}

func validationSummary(result domain.ValidationResult) string {
	return fmt.Sprintf("errors=%d warnings=%d", len(result.Errors), len(result.Warnings))
}
