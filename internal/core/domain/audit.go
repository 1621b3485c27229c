package domain

import "time"

// AuditOutcome is the result recorded on an audit entry. Only these two
// values are valid; anything else fails the integrity check.
type AuditOutcome string

const (
	OutcomeSuccess AuditOutcome = "success"
	OutcomeFailed  AuditOutcome = "failed"
)

// AuditAction is the closed set of recordable privileged actions.
type AuditAction string

const (
	ActionLogin                AuditAction = "login"
	ActionLoginFailed          AuditAction = "login_failed"
	ActionLogout               AuditAction = "logout"
	ActionAdminCreated         AuditAction = "admin_created"
	ActionVerificationApproved AuditAction = "verification_approved"
	ActionVerificationRejected AuditAction = "verification_rejected"
	ActionVerificationChecked  AuditAction = "verification_validated"
	ActionAuditExported        AuditAction = "audit_exported"
	ActionAccessDenied         AuditAction = "access_denied"
	ActionTokenRejected        AuditAction = "token_rejected"
)

// knownActions backs IsValid; derived once from the enumeration above.
var knownActions = map[AuditAction]struct{}{
	ActionLogin:                {},
	ActionLoginFailed:          {},
	ActionLogout:               {},
	ActionAdminCreated:         {},
	ActionVerificationApproved: {},
	ActionVerificationRejected: {},
	ActionVerificationChecked:  {},
	ActionAuditExported:        {},
	ActionAccessDenied:         {},
	ActionTokenRejected:        {},
}

// IsValid reports whether a is a recognized audit action.
func (a AuditAction) IsValid() bool {
	_, ok := knownActions[a]
	return ok
}

// Origin captures where a privileged request came from.
type Origin struct {
	IP        string `json:"ip" bson:"ip"`
	UserAgent string `json:"user_agent" bson:"user_agent"`
}

// AuditEntry is an immutable record of one privileged action. Entries are
// never edited or deleted; a correction is a new entry referencing the old
// one in Details.
type AuditEntry struct {
	ID           string       `json:"id" bson:"_id"`
	Timestamp    time.Time    `json:"timestamp" bson:"timestamp"`
	ActorID      string       `json:"actor_id" bson:"actor_id"`
	ActorEmail   string       `json:"actor_email" bson:"actor_email"`
	Action       AuditAction  `json:"action" bson:"action"`
	TargetID     string       `json:"target_id,omitempty" bson:"target_id,omitempty"`
	TargetType   string       `json:"target_type,omitempty" bson:"target_type,omitempty"`
	Details      string       `json:"details,omitempty" bson:"details,omitempty"`
	Origin       Origin       `json:"origin" bson:"origin"`
	Outcome      AuditOutcome `json:"outcome" bson:"outcome"`
	ErrorMessage string       `json:"error_message,omitempty" bson:"error_message,omitempty"`
}

// AuditFilter narrows an audit query. Zero values mean "no constraint".
type AuditFilter struct {
	ActorID    string
	Action     AuditAction
	TargetID   string
	Outcome    AuditOutcome
	From       time.Time
	To         time.Time
	Limit      int64
	Offset     int64
}
