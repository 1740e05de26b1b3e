package boltdb

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"github.com/vkuzmenko/wardsync/internal/client/storage"
	"github.com/vkuzmenko/wardsync/internal/models"
)

// quarantinedOperation операция, изъятая из активного журнала.
type quarantinedOperation struct {
	QuarantinedAt time.Time         `json:"quarantined_at"`
	Operation     *models.Operation `json:"operation"`
	Reason        string            `json:"reason"`
}

// Append durably stores the operation with the next local sequence number.
// Назначение sequence и запись происходят в одной транзакции bbolt:
// после возврата без ошибки операция переживает падение процесса.
func (s *Storage) Append(ctx context.Context, op *models.Operation) (uint64, error) {
	var assigned uint64

	err := s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketOplog)
		if bucket == nil {
			return fmt.Errorf("oplog bucket not found")
		}

		// Bound по количеству несинхронизированных операций
		if bucket.Stats().KeyN >= s.maxPendingOps {
			return storage.ErrBackpressureExceeded
		}

		seq, err := bucket.NextSequence()
		if err != nil {
			return fmt.Errorf("failed to get next sequence: %w", err)
		}

		stored := *op
		stored.Sequence = seq

		data, err := json.Marshal(&stored)
		if err != nil {
			return fmt.Errorf("failed to marshal operation: %w", err)
		}

		if err := bucket.Put(seqKey(seq), data); err != nil {
			return fmt.Errorf("failed to save operation: %w", err)
		}

		assigned = seq
		return nil
	})
	if err != nil {
		return 0, err
	}

	return assigned, nil
}

// PeekBatch returns up to maxSize pending operations in sequence order
// without consuming them.
func (s *Storage) PeekBatch(ctx context.Context, maxSize int) ([]*models.Operation, error) {
	var ops []*models.Operation

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketOplog)
		if bucket == nil {
			return fmt.Errorf("oplog bucket not found")
		}

		cursor := bucket.Cursor()
		for k, v := cursor.First(); k != nil && len(ops) < maxSize; k, v = cursor.Next() {
			op := &models.Operation{}
			if err := json.Unmarshal(v, op); err != nil {
				return fmt.Errorf("failed to unmarshal operation: %w", err)
			}
			ops = append(ops, op)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return ops, nil
}

// PendingSince returns pending operations with sequence > sequence, in order.
func (s *Storage) PendingSince(ctx context.Context, sequence uint64) ([]*models.Operation, error) {
	var ops []*models.Operation

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketOplog)
		if bucket == nil {
			return fmt.Errorf("oplog bucket not found")
		}

		cursor := bucket.Cursor()
		for k, v := cursor.Seek(seqKey(sequence + 1)); k != nil; k, v = cursor.Next() {
			op := &models.Operation{}
			if err := json.Unmarshal(v, op); err != nil {
				return fmt.Errorf("failed to unmarshal operation: %w", err)
			}
			ops = append(ops, op)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return ops, nil
}

// Acknowledge compacts operations with sequence <= upToSequence.
// Идемпотентна: повторный вызов с уже подтвержденной границей будет no-op.
func (s *Storage) Acknowledge(ctx context.Context, upToSequence uint64) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return acknowledgeInTx(tx, upToSequence)
	})
}

// acknowledgeInTx общая реализация компактации: используется и напрямую,
// и из шага Committing внутри общей транзакции.
func acknowledgeInTx(tx *bbolt.Tx, upToSequence uint64) error {
	bucket := tx.Bucket(bucketOplog)
	if bucket == nil {
		return fmt.Errorf("oplog bucket not found")
	}

	boundary := seqKey(upToSequence)
	cursor := bucket.Cursor()
	for k, _ := cursor.First(); k != nil && bytes.Compare(k, boundary) <= 0; k, _ = cursor.Next() {
		if err := cursor.Delete(); err != nil {
			return fmt.Errorf("failed to delete acknowledged operation: %w", err)
		}
	}
	return nil
}

// Quarantine перемещает некорректную операцию из активного журнала
// в карантинный bucket вместе с причиной. Остальной журнал не трогается.
func (s *Storage) Quarantine(ctx context.Context, sequence uint64, reason string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		oplog := tx.Bucket(bucketOplog)
		quarantine := tx.Bucket(bucketQuarantine)
		if oplog == nil || quarantine == nil {
			return fmt.Errorf("oplog buckets not found")
		}

		key := seqKey(sequence)
		data := oplog.Get(key)
		if data == nil {
			return storage.ErrOperationNotFound
		}

		op := &models.Operation{}
		if err := json.Unmarshal(data, op); err != nil {
			return fmt.Errorf("failed to unmarshal operation: %w", err)
		}

		entry := quarantinedOperation{
			Operation:     op,
			Reason:        reason,
			QuarantinedAt: time.Now().UTC(),
		}
		entryData, err := json.Marshal(&entry)
		if err != nil {
			return fmt.Errorf("failed to marshal quarantined operation: %w", err)
		}

		if err := quarantine.Put(key, entryData); err != nil {
			return fmt.Errorf("failed to save quarantined operation: %w", err)
		}
		if err := oplog.Delete(key); err != nil {
			return fmt.Errorf("failed to remove operation from active log: %w", err)
		}

		return nil
	})
}

// PendingCount returns the number of pending operations.
func (s *Storage) PendingCount(ctx context.Context) (int, error) {
	var count int

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketOplog)
		if bucket == nil {
			return fmt.Errorf("oplog bucket not found")
		}
		count = bucket.Stats().KeyN
		return nil
	})
	if err != nil {
		return 0, err
	}

	return count, nil
}
