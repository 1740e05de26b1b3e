package storage

import (
	"context"
	"time"

	"github.com/vkuzmenko/wardsync/internal/models"
)

//go:generate moq -out records_mock.go . RecordStorage

// RecordStorage defines interface for the local record store on device.
// Записью владеет исключительно sync-воркер; остальные компоненты
// читают уже закоммиченное состояние.
type RecordStorage interface {
	// SaveRecord stores or updates a record
	SaveRecord(ctx context.Context, record *models.Record) error

	// GetRecord retrieves a record by ID
	// Returns ErrRecordNotFound if record doesn't exist
	GetRecord(ctx context.Context, id string) (*models.Record, error)

	// ListRecords returns all records
	ListRecords(ctx context.Context) ([]*models.Record, error)

	// ListBySyncState returns records in the given sync state
	// (e.g. CONFLICTED records pinned for manual review)
	ListBySyncState(ctx context.Context, state models.SyncState) ([]*models.Record, error)
}

// Tx groups the mutations available inside one local transaction.
// Шаг Committing цикла синхронизации обязан быть атомарным:
// записи, компактация журнала и отметка времени применяются все или никакие.
type Tx interface {
	// SaveRecord stores the merged record
	SaveRecord(record *models.Record) error

	// AcknowledgeOperations compacts the operation log up to the boundary
	AcknowledgeOperations(upToSequence uint64) error

	// SaveLastSyncTime records the completion time of the cycle
	SaveLastSyncTime(t time.Time) error
}

//go:generate moq -out transactor_mock.go . Transactor

// Transactor runs a function inside a single local storage transaction.
// Транзакция закрывается на любом пути выхода; ошибка из fn откатывает
// все изменения целиком, ни одна запись не остается полуслитой.
type Transactor interface {
	RunInTransaction(ctx context.Context, fn func(tx Tx) error) error
}
