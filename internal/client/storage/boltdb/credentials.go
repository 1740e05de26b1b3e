package boltdb

import (
	"context"
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/vkuzmenko/wardsync/internal/client/storage"
)

var keyCredentials = []byte("credentials")

// SaveCredentials stores the enrollment result.
// Выданный сервером device id становится node id устройства: компонент
// векторных часов обязан совпадать с идентификатором, по которому сервер
// дедуплицирует операции.
func (s *Storage) SaveCredentials(ctx context.Context, creds *storage.Credentials) error {
	if creds == nil {
		return fmt.Errorf("credentials are nil")
	}

	data, err := json.Marshal(creds)
	if err != nil {
		return fmt.Errorf("failed to marshal credentials: %w", err)
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketMeta)
		if bucket == nil {
			return fmt.Errorf("meta bucket not found")
		}

		if err := bucket.Put(keyCredentials, data); err != nil {
			return fmt.Errorf("failed to save credentials: %w", err)
		}
		if err := bucket.Put(keyNodeID, []byte(creds.DeviceID)); err != nil {
			return fmt.Errorf("failed to save node id: %w", err)
		}
		return nil
	})
}

// GetCredentials retrieves stored credentials.
// Возвращает ErrNotEnrolled, если устройство еще не зарегистрировано.
func (s *Storage) GetCredentials(ctx context.Context) (*storage.Credentials, error) {
	var creds storage.Credentials

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketMeta)
		if bucket == nil {
			return fmt.Errorf("meta bucket not found")
		}

		data := bucket.Get(keyCredentials)
		if data == nil {
			return storage.ErrNotEnrolled
		}

		if err := json.Unmarshal(data, &creds); err != nil {
			return fmt.Errorf("failed to unmarshal credentials: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &creds, nil
}

// DeleteCredentials removes stored credentials
func (s *Storage) DeleteCredentials(ctx context.Context) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketMeta)
		if bucket == nil {
			return fmt.Errorf("meta bucket not found")
		}
		return bucket.Delete(keyCredentials)
	})
}
