package data

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vkuzmenko/wardsync/internal/client/storage"
	"github.com/vkuzmenko/wardsync/internal/models"
	"github.com/vkuzmenko/wardsync/internal/vclock"
)

const testNodeID = "device-a"

type fixture struct {
	service *Service
	records *storage.RecordStorageMock
	oplog   *storage.OperationLogMock

	saved    map[string]*models.Record
	appended []*models.Operation
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		saved: make(map[string]*models.Record),
	}

	f.records = &storage.RecordStorageMock{
		SaveRecordFunc: func(ctx context.Context, record *models.Record) error {
			f.saved[record.ID] = record
			return nil
		},
		GetRecordFunc: func(ctx context.Context, id string) (*models.Record, error) {
			record, ok := f.saved[id]
			if !ok {
				return nil, storage.ErrRecordNotFound
			}
			return record.Clone(), nil
		},
		ListRecordsFunc: func(ctx context.Context) ([]*models.Record, error) {
			var records []*models.Record
			for _, record := range f.saved {
				records = append(records, record)
			}
			return records, nil
		},
		ListBySyncStateFunc: func(ctx context.Context, state models.SyncState) ([]*models.Record, error) {
			var records []*models.Record
			for _, record := range f.saved {
				if record.SyncState == state {
					records = append(records, record)
				}
			}
			return records, nil
		},
	}

	f.oplog = &storage.OperationLogMock{
		AppendFunc: func(ctx context.Context, op *models.Operation) (uint64, error) {
			f.appended = append(f.appended, op)
			return uint64(len(f.appended)), nil
		},
		PendingCountFunc: func(ctx context.Context) (int, error) {
			return len(f.appended), nil
		},
	}

	meta := &storage.MetadataStorageMock{
		NodeIDFunc: func(ctx context.Context) (string, error) {
			return testNodeID, nil
		},
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	f.service = NewService(f.records, f.oplog, meta, logger)
	return f
}

func TestService_CreateTask(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	record, err := f.service.CreateTask(ctx, map[string]string{
		"patient": "bed 12",
		"notes":   "check vitals at 18:00",
	})
	require.NoError(t, err)

	_, err = uuid.Parse(record.ID)
	require.NoError(t, err, "record id must be a valid UUID")

	assert.Equal(t, models.StatusPending, record.Status)
	// Операция уже в журнале, поэтому запись сразу PENDING_PUSH
	assert.Equal(t, models.SyncStatePendingPush, record.SyncState)
	assert.Equal(t, vclock.VectorClock{testNodeID: 1}, record.Clock)
	assert.Equal(t, "bed 12", record.Fields["patient"].Value)
	assert.Equal(t, testNodeID, record.Fields["patient"].OriginNodeID)

	// Операция попала в журнал до записи и несет полный снимок полей
	require.Len(t, f.appended, 1)
	op := f.appended[0]
	assert.Equal(t, record.ID, op.RecordID)
	assert.True(t, op.Snapshot)
	assert.Equal(t, uint64(1), op.Sequence)
}

func TestService_CreateTask_EmptyFields(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.CreateTask(context.Background(), nil)
	require.Error(t, err)
	assert.Empty(t, f.appended)
}

func TestService_CreateTask_InvalidFieldName(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.CreateTask(context.Background(), map[string]string{
		"Bad Field": "value",
	})
	require.Error(t, err)
	assert.Empty(t, f.appended, "invalid operation must not reach the log")
}

func TestService_UpdateTask(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.service.CreateTask(ctx, map[string]string{
		"patient": "bed 12",
		"notes":   "check vitals",
	})
	require.NoError(t, err)

	updated, err := f.service.UpdateTask(ctx, created.ID, map[string]string{
		"notes": "vitals checked, BP elevated",
	})
	require.NoError(t, err)

	assert.Equal(t, vclock.VectorClock{testNodeID: 2}, updated.Clock)
	assert.Equal(t, models.SyncStatePendingPush, updated.SyncState)
	assert.Equal(t, "vitals checked, BP elevated", updated.Fields["notes"].Value)
	// Незатронутое поле сохраняется
	assert.Equal(t, "bed 12", updated.Fields["patient"].Value)

	require.Len(t, f.appended, 2)
	assert.False(t, f.appended[1].Snapshot)
	assert.Len(t, f.appended[1].Delta, 1)
}

func TestService_UpdateTask_NotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.UpdateTask(context.Background(), "no-such-task", map[string]string{
		"notes": "value",
	})
	assert.ErrorIs(t, err, storage.ErrRecordNotFound)
}

func TestService_ChangeStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.service.CreateTask(ctx, map[string]string{"patient": "bed 12"})
	require.NoError(t, err)

	inProgress, err := f.service.ChangeStatus(ctx, created.ID, models.StatusInProgress)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, inProgress.Status)
	assert.Equal(t, vclock.VectorClock{testNodeID: 2}, inProgress.Clock)

	completed, err := f.service.ChangeStatus(ctx, created.ID, models.StatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, completed.Status)

	// Операция несет только смену статуса, без дельты полей
	require.Len(t, f.appended, 3)
	statusOp := f.appended[2]
	require.NotNil(t, statusOp.NewStatus)
	assert.Equal(t, models.StatusCompleted, *statusOp.NewStatus)
	assert.Empty(t, statusOp.Delta)
}

func TestService_ChangeStatus_InvalidTransition(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.service.CreateTask(ctx, map[string]string{"patient": "bed 12"})
	require.NoError(t, err)

	// PENDING -> COMPLETED минует IN_PROGRESS
	_, err = f.service.ChangeStatus(ctx, created.ID, models.StatusCompleted)
	require.Error(t, err)
	assert.Len(t, f.appended, 1, "rejected transition must not reach the log")
}

func TestService_ChangeStatus_Reopen(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.service.CreateTask(ctx, map[string]string{"patient": "bed 12"})
	require.NoError(t, err)

	_, err = f.service.ChangeStatus(ctx, created.ID, models.StatusCancelled)
	require.NoError(t, err)

	reopened, err := f.service.ChangeStatus(ctx, created.ID, models.StatusPending)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, reopened.Status)
}

func TestService_BackpressurePropagates(t *testing.T) {
	f := newFixture(t)
	f.oplog.AppendFunc = func(ctx context.Context, op *models.Operation) (uint64, error) {
		return 0, storage.ErrBackpressureExceeded
	}

	_, err := f.service.CreateTask(context.Background(), map[string]string{"patient": "bed 12"})
	require.ErrorIs(t, err, storage.ErrBackpressureExceeded)
	assert.Empty(t, f.saved, "record must not be saved when the log rejects the operation")
}

func TestService_ListConflicted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.saved["rec-ok"] = &models.Record{ID: "rec-ok", SyncState: models.SyncStateSynced}
	f.saved["rec-conflict"] = &models.Record{ID: "rec-conflict", SyncState: models.SyncStateConflicted}

	conflicted, err := f.service.ListConflicted(ctx)
	require.NoError(t, err)
	require.Len(t, conflicted, 1)
	assert.Equal(t, "rec-conflict", conflicted[0].ID)
}

func TestService_PendingOperations(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.service.CreateTask(ctx, map[string]string{"patient": "bed 12"})
	require.NoError(t, err)

	count, err := f.service.PendingOperations(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
