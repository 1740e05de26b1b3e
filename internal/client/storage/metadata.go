package storage

import (
	"context"
	"time"
)

//go:generate moq -out metadata_mock.go . MetadataStorage

// MetadataStorage defines interface for storing device sync metadata
type MetadataStorage interface {
	// SaveLastSyncTime saves the time of the last successful sync
	SaveLastSyncTime(ctx context.Context, t time.Time) error

	// GetLastSyncTime retrieves the time of the last successful sync
	// Returns zero time if no sync has been performed yet
	GetLastSyncTime(ctx context.Context) (time.Time, error)

	// NodeID returns the stable node identifier of this device,
	// generating and persisting it on first call.
	// Идентификатор служит компонентом векторных часов этого устройства,
	// обязан переживать перезапуски.
	NodeID(ctx context.Context) (string, error)
}
