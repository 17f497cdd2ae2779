package ports

import (
	"context"

	"github.com/intersect-health/fhir-api/internal/core/domain"
)

// AuditTrail accepts audit events for asynchronous persistence. Submit never
// blocks the request path beyond a buffered channel send.
type AuditTrail interface {
	Submit(event domain.AuditEvent)
}

// AuditRepository persists audit events.
type AuditRepository interface {
	Record(ctx context.Context, event domain.AuditEvent) error
}
