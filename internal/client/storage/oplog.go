package storage

import (
	"context"

	"github.com/vkuzmenko/wardsync/internal/models"
)

//go:generate moq -out oplog_mock.go . OperationLog

// OperationLog defines interface for the durable queue of unsynced
// local mutations. Журнал append-only и упорядочен по локальному
// sequence; операции уничтожаются только после durable-подтверждения
// сервером (at-least-once доставка). Журнал задает границу durability:
// падение между Append и Acknowledge не теряет ни одной операции.
type OperationLog interface {
	// Append durably stores the operation and assigns it the next local
	// sequence number (the Sequence field on the argument is ignored).
	// Returns ErrBackpressureExceeded when the pending bound is reached.
	Append(ctx context.Context, op *models.Operation) (uint64, error)

	// PeekBatch returns up to maxSize pending operations in sequence order
	// without consuming them. Used for network batching.
	PeekBatch(ctx context.Context, maxSize int) ([]*models.Operation, error)

	// PendingSince returns pending operations with sequence strictly greater
	// than the given one, in order.
	PendingSince(ctx context.Context, sequence uint64) ([]*models.Operation, error)

	// Acknowledge compacts operations with sequence <= upToSequence.
	// Idempotent: safe to call with an already-acknowledged boundary.
	Acknowledge(ctx context.Context, upToSequence uint64) error

	// Quarantine перемещает некорректную операцию из активного журнала
	// в карантин, не блокируя остальной батч.
	Quarantine(ctx context.Context, sequence uint64, reason string) error

	// PendingCount returns the number of pending operations.
	PendingCount(ctx context.Context) (int, error)
}
