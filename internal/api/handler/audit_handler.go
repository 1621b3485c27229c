package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/legacyvault/admin-trust/internal/api/middleware"
	"github.com/legacyvault/admin-trust/internal/core/domain"
	"github.com/legacyvault/admin-trust/internal/core/ports"
)

type AuditHandler struct {
	auditService ports.AuditService
}

func NewAuditHandler(auditService ports.AuditService) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

type auditQueryRequest struct {
	ActorID  string `query:"actor_id"`
	Action   string `query:"action"`
	TargetID string `query:"target_id"`
	Outcome  string `query:"outcome"  validate:"omitempty,oneof=success failed"`
	From     string `query:"from"     validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	To       string `query:"to"       validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	Limit    int64  `query:"limit"    validate:"omitempty,min=1,max=500"`
	Offset   int64  `query:"offset"   validate:"omitempty,min=0"`
}

type auditQueryResponse struct {
	Entries []domain.AuditEntry `json:"entries"`
	Total   int64               `json:"total"`
	Limit   int64               `json:"limit"`
	Offset  int64               `json:"offset"`
}

func (r *auditQueryRequest) toFilter() domain.AuditFilter {
	filter := domain.AuditFilter{
		ActorID:  r.ActorID,
		Action:   domain.AuditAction(r.Action),
		TargetID: r.TargetID,
		Outcome:  domain.AuditOutcome(r.Outcome),
		Limit:    r.Limit,
		Offset:   r.Offset,
	}
	if r.From != "" {
		filter.From, _ = time.Parse(time.RFC3339, r.From)
	}
	if r.To != "" {
		filter.To, _ = time.Parse(time.RFC3339, r.To)
	}
	return filter
}

// Query returns audit entries matching the supplied filters, newest first.
//
// @Summary      Query the audit ledger
// @Tags         audit
// @Produce      json
// @Security     BearerAuth
// @Param        actor_id  query  string  false  "Filter by actor id"
// @Param        action    query  string  false  "Filter by action type"
// @Param        outcome   query  string  false  "success or failed"
// @Param        limit     query  int     false  "Page size (default 50, max 500)"
// @Param        offset    query  int     false  "Page offset"
// @Success      200  {object}  auditQueryResponse
// @Failure      403  {object}  map[string]string
// @Router       /admin/audit [get]
func (h *AuditHandler) Query(c echo.Context) error {
	var req auditQueryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid query")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	filter := req.toFilter()
	entries, total, err := h.auditService.Query(c.Request().Context(), filter)
	if err != nil {
		return err
	}
	if entries == nil {
		entries = []domain.AuditEntry{}
	}
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	return c.JSON(http.StatusOK, auditQueryResponse{
		Entries: entries,
		Total:   total,
		Limit:   filter.Limit,
		Offset:  filter.Offset,
	})
}

// Export renders the filtered entries as CSV. The export itself is a
// privileged action and lands in the ledger too.
//
// @Summary      Export audit entries as CSV
// @Tags         audit
// @Produce      text/csv
// @Security     BearerAuth
// @Success      200  {string}  string  "CSV document"
// @Failure      403  {object}  map[string]string
// @Router       /admin/audit/export [get]
func (h *AuditHandler) Export(c echo.Context) error {
	principal, ok := middleware.PrincipalFromContext(c)
	if !ok {
		return domain.ErrInvalidToken
	}

	var req auditQueryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid query")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	entries, _, err := h.auditService.Query(c.Request().Context(), req.toFilter())
	if err != nil {
		return err
	}

	h.auditService.Record(c.Request().Context(), ports.AuditInput{
		ActorID:    principal.ID,
		ActorEmail: principal.Email,
		Action:     domain.ActionAuditExported,
		TargetType: "audit_export",
		Origin:     middleware.RequestOrigin(c),
		Outcome:    domain.OutcomeSuccess,
	})

	csv := h.auditService.ExportCSV(entries)
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="audit_export.csv"`)
	return c.Blob(http.StatusOK, "text/csv", []byte(csv))
}
