package storage

import (
	"context"

	"github.com/vkuzmenko/wardsync/internal/models"
	"github.com/vkuzmenko/wardsync/internal/vclock"
)

// RecordStorage defines interface for server-side record persistence.
// Сервер хранит каноническое слитое состояние каждой записи; версии
// устройств поглощаются через merge-движок в push-обработчике.
type RecordStorage interface {
	// SaveRecord creates or replaces the canonical record state
	SaveRecord(ctx context.Context, record *models.Record) error

	// GetRecord retrieves a record by ID
	// Returns ErrRecordNotFound if record doesn't exist
	GetRecord(ctx context.Context, id string) (*models.Record, error)

	// ListRecords retrieves all records
	ListRecords(ctx context.Context) ([]*models.Record, error)

	// ListUnobserved retrieves records the device has not fully observed:
	// записи, отсутствующие в observed, и записи, чьи часы After или
	// Concurrent относительно пер-записных часов устройства.
	// Используется pull-обработчиком.
	ListUnobserved(ctx context.Context, observed map[string]vclock.VectorClock) ([]*models.Record, error)
}
