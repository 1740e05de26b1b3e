package storage

import (
	"context"

	"github.com/vkuzmenko/wardsync/internal/audit"
)

// AuditStorage defines interface for the server-side audit trail
type AuditStorage interface {
	// SaveAuditEvent appends an audit event
	SaveAuditEvent(ctx context.Context, event audit.Event) error

	// ListAuditEvents retrieves audit events for a record,
	// newest first
	ListAuditEvents(ctx context.Context, recordID string) ([]audit.Event, error)
}
