package boltdb

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.etcd.io/bbolt"
)

var (
	keyLastSyncTime = []byte("last_sync_time")
	keyNodeID       = []byte("node_id")
)

// SaveLastSyncTime saves the time of the last successful sync
func (s *Storage) SaveLastSyncTime(ctx context.Context, t time.Time) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return saveLastSyncTimeInTx(tx, t)
	})
}

// GetLastSyncTime retrieves the time of the last successful sync.
// Возвращает нулевое время, если синхронизация еще не выполнялась.
func (s *Storage) GetLastSyncTime(ctx context.Context) (time.Time, error) {
	var result time.Time

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketMeta)
		if bucket == nil {
			return fmt.Errorf("meta bucket not found")
		}

		data := bucket.Get(keyLastSyncTime)
		if data == nil {
			return nil
		}

		t, err := time.Parse(time.RFC3339Nano, string(data))
		if err != nil {
			return fmt.Errorf("failed to parse last sync time: %w", err)
		}
		result = t
		return nil
	})
	if err != nil {
		return time.Time{}, err
	}

	return result, nil
}

// NodeID returns the stable device node id, generating it on first call.
// UUID генерируется один раз и переживает перезапуски: это компонент
// векторных часов устройства.
func (s *Storage) NodeID(ctx context.Context) (string, error) {
	var nodeID string

	err := s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketMeta)
		if bucket == nil {
			return fmt.Errorf("meta bucket not found")
		}

		if data := bucket.Get(keyNodeID); data != nil {
			nodeID = string(data)
			return nil
		}

		nodeID = uuid.New().String()
		if err := bucket.Put(keyNodeID, []byte(nodeID)); err != nil {
			return fmt.Errorf("failed to save node id: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	return nodeID, nil
}

func saveLastSyncTimeInTx(tx *bbolt.Tx, t time.Time) error {
	bucket := tx.Bucket(bucketMeta)
	if bucket == nil {
		return fmt.Errorf("meta bucket not found")
	}

	if err := bucket.Put(keyLastSyncTime, []byte(t.UTC().Format(time.RFC3339Nano))); err != nil {
		return fmt.Errorf("failed to save last sync time: %w", err)
	}
	return nil
}
