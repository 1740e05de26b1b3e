package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/vkuzmenko/wardsync/internal/models"
	"github.com/vkuzmenko/wardsync/internal/server/storage"
)

// CreateDevice registers a new device
// Returns ErrDeviceAlreadyExists if device id is taken
func (s *Storage) CreateDevice(ctx context.Context, device *models.Device) error {
	query := `
		INSERT INTO devices (id, name, secret_hash, created_at, last_seen_at)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		device.ID,
		device.Name,
		device.SecretHash,
		device.CreatedAt.Unix(),
		device.LastSeenAt.Unix(),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return storage.ErrDeviceAlreadyExists
		}
		return fmt.Errorf("failed to create device: %w", err)
	}

	return nil
}

// GetDevice retrieves device by ID
// Returns ErrDeviceNotFound if device doesn't exist
func (s *Storage) GetDevice(ctx context.Context, deviceID string) (*models.Device, error) {
	query := `
		SELECT id, name, secret_hash, created_at, last_seen_at
		FROM devices
		WHERE id = ?
	`

	device := &models.Device{}
	var createdAt, lastSeenAt int64

	err := s.db.QueryRowContext(ctx, query, deviceID).Scan(
		&device.ID,
		&device.Name,
		&device.SecretHash,
		&createdAt,
		&lastSeenAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrDeviceNotFound
		}
		return nil, fmt.Errorf("failed to get device: %w", err)
	}

	device.CreatedAt = time.Unix(createdAt, 0)
	device.LastSeenAt = time.Unix(lastSeenAt, 0)

	return device, nil
}

// UpdateLastSeen updates the last seen timestamp
func (s *Storage) UpdateLastSeen(ctx context.Context, deviceID string, lastSeen time.Time) error {
	query := `UPDATE devices SET last_seen_at = ? WHERE id = ?`

	result, err := s.db.ExecContext(ctx, query, lastSeen.Unix(), deviceID)
	if err != nil {
		return fmt.Errorf("failed to update last seen: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return storage.ErrDeviceNotFound
	}

	return nil
}

// AckedSequence returns the highest operation sequence durably applied
// for the device
func (s *Storage) AckedSequence(ctx context.Context, deviceID string) (uint64, error) {
	query := `SELECT acked_sequence FROM device_acks WHERE device_id = ?`

	var sequence uint64
	err := s.db.QueryRowContext(ctx, query, deviceID).Scan(&sequence)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get acked sequence: %w", err)
	}

	return sequence, nil
}

// SaveAckedSequence advances the applied-sequence boundary.
// Граница монотонна: MAX в UPSERT не дает откатить ее назад при
// повторной доставке старого батча.
func (s *Storage) SaveAckedSequence(ctx context.Context, deviceID string, sequence uint64) error {
	query := `
		INSERT INTO device_acks (device_id, acked_sequence, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(device_id) DO UPDATE SET
			acked_sequence = MAX(acked_sequence, excluded.acked_sequence),
			updated_at = excluded.updated_at
	`

	_, err := s.db.ExecContext(ctx, query, deviceID, sequence, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to save acked sequence: %w", err)
	}

	return nil
}
