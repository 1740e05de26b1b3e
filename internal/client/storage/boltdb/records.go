package boltdb

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"github.com/vkuzmenko/wardsync/internal/client/storage"
	"github.com/vkuzmenko/wardsync/internal/models"
)

// SaveRecord stores or updates a record
func (s *Storage) SaveRecord(ctx context.Context, record *models.Record) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return saveRecordInTx(tx, record)
	})
}

// GetRecord retrieves a record by ID
func (s *Storage) GetRecord(ctx context.Context, id string) (*models.Record, error) {
	var record *models.Record

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketRecords)
		if bucket == nil {
			return fmt.Errorf("records bucket not found")
		}

		data := bucket.Get([]byte(id))
		if data == nil {
			return storage.ErrRecordNotFound
		}

		record = &models.Record{}
		if err := json.Unmarshal(data, record); err != nil {
			return fmt.Errorf("failed to unmarshal record: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return record, nil
}

// ListRecords returns all records
func (s *Storage) ListRecords(ctx context.Context) ([]*models.Record, error) {
	return s.listRecords(func(*models.Record) bool { return true })
}

// ListBySyncState returns records in the given sync state
func (s *Storage) ListBySyncState(ctx context.Context, state models.SyncState) ([]*models.Record, error) {
	return s.listRecords(func(r *models.Record) bool { return r.SyncState == state })
}

func (s *Storage) listRecords(keep func(*models.Record) bool) ([]*models.Record, error) {
	var records []*models.Record

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketRecords)
		if bucket == nil {
			return fmt.Errorf("records bucket not found")
		}

		return bucket.ForEach(func(k, v []byte) error {
			record := &models.Record{}
			if err := json.Unmarshal(v, record); err != nil {
				return fmt.Errorf("failed to unmarshal record: %w", err)
			}
			if keep(record) {
				records = append(records, record)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	return records, nil
}

// recordTx реализует storage.Tx поверх одной открытой транзакции bbolt.
type recordTx struct {
	tx *bbolt.Tx
}

// SaveRecord stores the merged record inside the transaction
func (t *recordTx) SaveRecord(record *models.Record) error {
	return saveRecordInTx(t.tx, record)
}

// AcknowledgeOperations compacts the operation log inside the transaction
func (t *recordTx) AcknowledgeOperations(upToSequence uint64) error {
	return acknowledgeInTx(t.tx, upToSequence)
}

// SaveLastSyncTime records the cycle completion time inside the transaction
func (t *recordTx) SaveLastSyncTime(ts time.Time) error {
	return saveLastSyncTimeInTx(t.tx, ts)
}

// RunInTransaction runs fn inside a single bbolt write transaction.
// Ошибка fn откатывает все изменения: записи, компактацию журнала
// и метку времени: шаг Committing атомарен целиком.
func (s *Storage) RunInTransaction(ctx context.Context, fn func(tx storage.Tx) error) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return fn(&recordTx{tx: tx})
	})
}

// saveRecordInTx общая запись записи: используется и напрямую, и из recordTx.
func saveRecordInTx(tx *bbolt.Tx, record *models.Record) error {
	bucket := tx.Bucket(bucketRecords)
	if bucket == nil {
		return fmt.Errorf("records bucket not found")
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	if err := bucket.Put([]byte(record.ID), data); err != nil {
		return fmt.Errorf("failed to save record: %w", err)
	}
	return nil
}
