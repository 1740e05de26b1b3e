package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/vkuzmenko/wardsync/internal/audit"
)

// SaveAuditEvent appends an audit event
func (s *Storage) SaveAuditEvent(ctx context.Context, event audit.Event) error {
	conflictsJSON, err := json.Marshal(event.Conflicts)
	if err != nil {
		return fmt.Errorf("failed to marshal conflicts: %w", err)
	}

	query := `
		INSERT INTO audit_events (record_id, device_id, outcome, detail, conflicts, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err = s.db.ExecContext(ctx, query,
		event.RecordID,
		event.DeviceID,
		string(event.Outcome),
		event.Detail,
		string(conflictsJSON),
		event.Timestamp.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to save audit event: %w", err)
	}

	return nil
}

// ListAuditEvents retrieves audit events for a record, newest first
func (s *Storage) ListAuditEvents(ctx context.Context, recordID string) ([]audit.Event, error) {
	query := `
		SELECT record_id, device_id, outcome, detail, conflicts, created_at
		FROM audit_events
		WHERE record_id = ?
		ORDER BY id DESC
	`

	rows, err := s.db.QueryContext(ctx, query, recordID)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit events: %w", err)
	}
	defer rows.Close()

	events := make([]audit.Event, 0)
	for rows.Next() {
		var event audit.Event
		var outcome, conflictsJSON string
		var createdAt int64

		if err := rows.Scan(
			&event.RecordID,
			&event.DeviceID,
			&outcome,
			&event.Detail,
			&conflictsJSON,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan audit event: %w", err)
		}

		event.Outcome = audit.Outcome(outcome)
		event.Timestamp = time.Unix(0, createdAt)
		if err := json.Unmarshal([]byte(conflictsJSON), &event.Conflicts); err != nil {
			return nil, fmt.Errorf("failed to unmarshal conflicts: %w", err)
		}
		if len(event.Conflicts) == 0 {
			event.Conflicts = nil
		}

		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate audit events: %w", err)
	}

	return events, nil
}
