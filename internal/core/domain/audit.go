package domain

import "time"

// AuditEvent records one security-relevant action for the audit trail.
// Events are persisted asynchronously; a lost event must never fail the
// request that produced it.
type AuditEvent struct {
	Actor        string    `json:"actor" bson:"actor"`
	Action       string    `json:"action" bson:"action"`
	ResourceType string    `json:"resource_type,omitempty" bson:"resource_type,omitempty"`
	ResourceID   string    `json:"resource_id,omitempty" bson:"resource_id,omitempty"`
	Outcome      string    `json:"outcome" bson:"outcome"`
	Timestamp    time.Time `json:"timestamp" bson:"timestamp"`
}

// Audit actions.
const (
	AuditLogin      = "login"
	AuditRegister   = "register"
	AuditLogout     = "logout"
	AuditDeactivate = "deactivate"
	AuditCreate     = "create"
	AuditUpdate     = "update"
	AuditDelete     = "delete"
)

// Audit outcomes.
const (
	AuditOutcomeSuccess = "success"
	AuditOutcomeDenied  = "denied"
)
