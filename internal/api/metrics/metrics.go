// Package metrics defines and registers all custom Prometheus metrics for
// the admin trust service. It is the single source of truth for metric
// names, labels, and help strings.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "admintrust"

// ── Authentication metrics ────────────────────────────────────────────────────

// LoginAttemptsTotal counts login attempts by outcome.
// Label:
//   - outcome: "success", "invalid_credentials", "domain_rejected", "rate_limited"
var LoginAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_attempts_total",
		Help:      "Total number of admin login attempts, by outcome.",
	},
	[]string{"outcome"},
)

// TokenVerificationsTotal counts bearer-token verifications.
// Label:
//   - result: "ok", "rejected"
var TokenVerificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_verifications_total",
		Help:      "Total number of session token verifications, by result.",
	},
	[]string{"result"},
)

// ── Authorization metrics ─────────────────────────────────────────────────────

// AuthzDenialsTotal counts permission denials.
// Label:
//   - permission: the missing permission (e.g. "CREATE_ADMIN")
var AuthzDenialsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "authz_denials_total",
		Help:      "Total number of authorization denials, by missing permission.",
	},
	[]string{"permission"},
)

// ── Audit metrics ─────────────────────────────────────────────────────────────

// AuditWritesTotal counts durable audit writes.
// Label:
//   - result: "ok" or "fallback" (entry went to the fallback log)
var AuditWritesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_writes_total",
		Help:      "Total number of audit entry persistence attempts, by result.",
	},
	[]string{"result"},
)

// ── Validation metrics ────────────────────────────────────────────────────────

// ValidationRunsTotal counts document validation runs.
// Label:
//   - result: "valid" or "invalid"
var ValidationRunsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "validation_runs_total",
		Help:      "Total number of document validation runs, by aggregate result.",
	},
	[]string{"result"},
)
