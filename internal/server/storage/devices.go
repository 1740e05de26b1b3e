package storage

import (
	"context"
	"time"

	"github.com/vkuzmenko/wardsync/internal/models"
)

// DeviceStorage defines interface for device registry persistence
type DeviceStorage interface {
	// CreateDevice registers a new device
	// Returns ErrDeviceAlreadyExists if device id is taken
	CreateDevice(ctx context.Context, device *models.Device) error

	// GetDevice retrieves device by ID
	// Returns ErrDeviceNotFound if device doesn't exist
	GetDevice(ctx context.Context, deviceID string) (*models.Device, error)

	// UpdateLastSeen updates the last seen timestamp
	UpdateLastSeen(ctx context.Context, deviceID string, lastSeen time.Time) error

	// AckedSequence returns the highest operation sequence durably
	// applied for the device. Zero when the device never pushed.
	// Граница дедупликации: операции с sequence не выше нее повторно
	// не применяются, поэтому повтор батча после обрыва сети безопасен.
	AckedSequence(ctx context.Context, deviceID string) (uint64, error)

	// SaveAckedSequence advances the applied-sequence boundary.
	// Граница монотонна: меньшее значение не перезаписывает большее.
	SaveAckedSequence(ctx context.Context, deviceID string, sequence uint64) error
}
