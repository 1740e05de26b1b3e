package boltdb

import (
	"context"
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/vkuzmenko/wardsync/internal/audit"
)

// Emit appends an audit event to the local audit trail.
// Реализует audit.Sink: события реконсиляции сохраняются на устройстве
// до выгрузки во внешнее хранилище аудита.
func (s *Storage) Emit(ctx context.Context, event audit.Event) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketAudit)
		if bucket == nil {
			return fmt.Errorf("audit bucket not found")
		}

		seq, err := bucket.NextSequence()
		if err != nil {
			return fmt.Errorf("failed to get next audit sequence: %w", err)
		}

		data, err := json.Marshal(&event)
		if err != nil {
			return fmt.Errorf("failed to marshal audit event: %w", err)
		}

		if err := bucket.Put(seqKey(seq), data); err != nil {
			return fmt.Errorf("failed to save audit event: %w", err)
		}
		return nil
	})
}

// ListAuditEvents returns all locally stored audit events in order.
func (s *Storage) ListAuditEvents(ctx context.Context) ([]audit.Event, error) {
	var events []audit.Event

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketAudit)
		if bucket == nil {
			return fmt.Errorf("audit bucket not found")
		}

		return bucket.ForEach(func(k, v []byte) error {
			var event audit.Event
			if err := json.Unmarshal(v, &event); err != nil {
				return fmt.Errorf("failed to unmarshal audit event: %w", err)
			}
			events = append(events, event)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	return events, nil
}
