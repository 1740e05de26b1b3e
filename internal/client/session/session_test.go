package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vkuzmenko/wardsync/internal/audit"
	clientapi "github.com/vkuzmenko/wardsync/internal/client/api"
	"github.com/vkuzmenko/wardsync/internal/client/storage"
	"github.com/vkuzmenko/wardsync/internal/merge"
	"github.com/vkuzmenko/wardsync/internal/models"
	"github.com/vkuzmenko/wardsync/internal/vclock"
	"github.com/vkuzmenko/wardsync/pkg/api"
)

// fakeTx собирает мутации, применённые внутри транзакции
type fakeTx struct {
	mu       sync.Mutex
	saved    []*models.Record
	ackUpTo  uint64
	lastSync time.Time
	failSave bool
}

func (tx *fakeTx) SaveRecord(record *models.Record) error {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	if tx.failSave {
		return errors.New("disk full")
	}
	tx.saved = append(tx.saved, record)
	return nil
}

func (tx *fakeTx) AcknowledgeOperations(upToSequence uint64) error {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	tx.ackUpTo = upToSequence
	return nil
}

func (tx *fakeTx) SaveLastSyncTime(t time.Time) error {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	tx.lastSync = t
	return nil
}

type sessionFixture struct {
	transport *clientapi.ClientAPIMock
	oplog     *storage.OperationLogMock
	records   *storage.RecordStorageMock
	tx        *fakeTx
	sink      *audit.SinkMock
	cache     *ReconcileCache
	events    []audit.Event
	eventsMu  sync.Mutex
}

func newFixture() *sessionFixture {
	f := &sessionFixture{
		transport: &clientapi.ClientAPIMock{},
		oplog:     &storage.OperationLogMock{},
		records:   &storage.RecordStorageMock{},
		tx:        &fakeTx{},
		sink:      &audit.SinkMock{},
		cache:     NewReconcileCache(16),
	}
	f.sink.EmitFunc = func(ctx context.Context, event audit.Event) error {
		f.eventsMu.Lock()
		defer f.eventsMu.Unlock()
		f.events = append(f.events, event)
		return nil
	}
	f.oplog.QuarantineFunc = func(ctx context.Context, sequence uint64, reason string) error {
		return nil
	}
	f.records.ListRecordsFunc = func(ctx context.Context) ([]*models.Record, error) {
		return nil, nil
	}
	f.records.GetRecordFunc = func(ctx context.Context, id string) (*models.Record, error) {
		return nil, storage.ErrRecordNotFound
	}
	return f
}

func (f *sessionFixture) auditEvents() []audit.Event {
	f.eventsMu.Lock()
	defer f.eventsMu.Unlock()
	return append([]audit.Event(nil), f.events...)
}

func (f *sessionFixture) newSession(hook OnRecordReconciled) Session {
	transactor := &storage.TransactorMock{
		RunInTransactionFunc: func(ctx context.Context, fn func(tx storage.Tx) error) error {
			return fn(f.tx)
		},
	}
	return NewSession(Config{
		Transport:    f.transport,
		Engine:       merge.NewEngine("device-a", merge.NewResolver()),
		OpLog:        f.oplog,
		Records:      f.records,
		Transactor:   transactor,
		AuditSink:    f.sink,
		Cache:        f.cache,
		Logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		OnReconciled: hook,
		DeviceID:     "device-a",
		BatchSize:    10,
	})
}

func validOp(recordID string, seq uint64) *models.Operation {
	return &models.Operation{
		RecordID: recordID,
		NodeID:   "device-a",
		Sequence: seq,
		Clock:    vclock.VectorClock{"device-a": seq},
		Delta: map[string]models.FieldValue{
			"notes": {Value: "check vitals", UpdatedAt: time.Now(), OriginNodeID: "device-a"},
		},
		CreatedAt: time.Now(),
	}
}

func TestSession_Run_HappyPath(t *testing.T) {
	f := newFixture()

	f.oplog.PeekBatchFunc = func(ctx context.Context, maxSize int) ([]*models.Operation, error) {
		return []*models.Operation{validOp("rec-1", 1), validOp("rec-1", 2)}, nil
	}
	f.transport.PushFunc = func(ctx context.Context, accessToken string, req api.PushRequest) (*api.PushResponse, error) {
		assert.Equal(t, "device-a", req.DeviceID)
		assert.Len(t, req.Batch, 2)
		return &api.PushResponse{AcknowledgedUpTo: 2}, nil
	}
	f.transport.PullFunc = func(ctx context.Context, accessToken string, req api.PullRequest) (*api.PullResponse, error) {
		return &api.PullResponse{ChangedRecords: []api.Record{{
			ID:           "rec-2",
			Status:       string(models.StatusPending),
			VectorClock:  vclock.VectorClock{"device-b": 1},
			OriginNodeID: "device-b",
			Fields: map[string]api.FieldValue{
				"notes": {Value: "night shift", UpdatedAt: time.Now(), OriginNodeID: "device-b"},
			},
		}}}, nil
	}

	s := f.newSession(nil)
	result, err := s.Run(context.Background(), "token")
	require.NoError(t, err)

	assert.Equal(t, 2, result.PushedOps)
	assert.Equal(t, 1, result.PulledRecords)
	assert.Equal(t, 1, result.MergedRecords)
	assert.Equal(t, 0, result.Conflicts)
	assert.Equal(t, 0, result.Quarantined)

	// Коммит: запись сохранена, журнал компактирован, время отмечено
	require.Len(t, f.tx.saved, 1)
	assert.Equal(t, "rec-2", f.tx.saved[0].ID)
	assert.Equal(t, models.SyncStateSynced, f.tx.saved[0].SyncState)
	assert.Equal(t, uint64(2), f.tx.ackUpTo)
	assert.False(t, f.tx.lastSync.IsZero())

	events := f.auditEvents()
	require.Len(t, events, 1)
	assert.Equal(t, audit.OutcomeMerged, events[0].Outcome)
	assert.Equal(t, "rec-2", events[0].RecordID)

	assert.Equal(t, StateIdle, s.State())
}

func TestSession_Run_TransientPushError_Deferred(t *testing.T) {
	f := newFixture()

	f.oplog.PeekBatchFunc = func(ctx context.Context, maxSize int) ([]*models.Operation, error) {
		return []*models.Operation{validOp("rec-1", 1)}, nil
	}
	f.transport.PushFunc = func(ctx context.Context, accessToken string, req api.PushRequest) (*api.PushResponse, error) {
		return nil, &clientapi.TransientError{Err: errors.New("connection refused")}
	}

	s := f.newSession(nil)
	_, err := s.Run(context.Background(), "token")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSyncDeferred)

	// Журнал не тронут: ни Acknowledge, ни коммита
	assert.Empty(t, f.oplog.AcknowledgeCalls())
	assert.Empty(t, f.tx.saved)
	assert.Zero(t, f.tx.ackUpTo)
	assert.Equal(t, StateIdle, s.State())
}

func TestSession_Run_ContextCancelled_Aborted(t *testing.T) {
	f := newFixture()

	ctx, cancel := context.WithCancel(context.Background())

	f.oplog.PeekBatchFunc = func(ctx context.Context, maxSize int) ([]*models.Operation, error) {
		return []*models.Operation{validOp("rec-1", 1)}, nil
	}
	f.transport.PushFunc = func(ctx context.Context, accessToken string, req api.PushRequest) (*api.PushResponse, error) {
		cancel()
		return nil, &clientapi.TransientError{Err: ctx.Err()}
	}

	s := f.newSession(nil)
	_, err := s.Run(ctx, "token")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSyncAborted)
	assert.Equal(t, StateAborted, s.State())
	assert.Empty(t, f.tx.saved)
}

func TestSession_Run_InvalidOperationQuarantined(t *testing.T) {
	f := newFixture()

	invalid := validOp("", 1) // пустой record id не проходит валидацию
	valid := validOp("rec-1", 2)

	f.oplog.PeekBatchFunc = func(ctx context.Context, maxSize int) ([]*models.Operation, error) {
		return []*models.Operation{invalid, valid}, nil
	}
	f.transport.PushFunc = func(ctx context.Context, accessToken string, req api.PushRequest) (*api.PushResponse, error) {
		require.Len(t, req.Batch, 1)
		assert.Equal(t, "rec-1", req.Batch[0].RecordID)
		return &api.PushResponse{AcknowledgedUpTo: 2}, nil
	}
	f.transport.PullFunc = func(ctx context.Context, accessToken string, req api.PullRequest) (*api.PullResponse, error) {
		return &api.PullResponse{}, nil
	}

	s := f.newSession(nil)
	result, err := s.Run(context.Background(), "token")
	require.NoError(t, err)

	assert.Equal(t, 1, result.Quarantined)
	assert.Equal(t, 1, result.PushedOps)

	require.Len(t, f.oplog.QuarantineCalls(), 1)
	assert.Equal(t, uint64(1), f.oplog.QuarantineCalls()[0].Sequence)

	events := f.auditEvents()
	require.Len(t, events, 1)
	assert.Equal(t, audit.OutcomeRejected, events[0].Outcome)
}

func TestSession_Run_ServerRejectsBatch_FallsBackPerOperation(t *testing.T) {
	f := newFixture()

	f.oplog.PeekBatchFunc = func(ctx context.Context, maxSize int) ([]*models.Operation, error) {
		return []*models.Operation{validOp("rec-1", 1), validOp("rec-2", 2)}, nil
	}

	pushCount := 0
	f.transport.PushFunc = func(ctx context.Context, accessToken string, req api.PushRequest) (*api.PushResponse, error) {
		pushCount++
		if pushCount == 1 {
			// Батч целиком отвергнут
			return nil, &clientapi.ValidationError{StatusCode: 400, Err: errors.New("bad operation in batch")}
		}
		require.Len(t, req.Batch, 1)
		if req.Batch[0].RecordID == "rec-1" {
			return nil, &clientapi.ValidationError{StatusCode: 400, Err: errors.New("unknown record schema")}
		}
		return &api.PushResponse{AcknowledgedUpTo: req.Batch[0].Sequence}, nil
	}
	f.transport.PullFunc = func(ctx context.Context, accessToken string, req api.PullRequest) (*api.PullResponse, error) {
		return &api.PullResponse{}, nil
	}

	s := f.newSession(nil)
	result, err := s.Run(context.Background(), "token")
	require.NoError(t, err)

	// rec-1 в карантине, rec-2 передана и подтверждена
	assert.Equal(t, 1, result.Quarantined)
	assert.Equal(t, 1, result.PushedOps)
	assert.Equal(t, uint64(2), f.tx.ackUpTo)
	require.Len(t, f.oplog.QuarantineCalls(), 1)
	assert.Equal(t, uint64(1), f.oplog.QuarantineCalls()[0].Sequence)
}

func TestSession_Run_ConcurrentVersions_MergedAndAudited(t *testing.T) {
	f := newFixture()

	now := time.Now()
	local := &models.Record{
		ID:           "rec-1",
		Status:       models.StatusInProgress,
		Clock:        vclock.VectorClock{"device-a": 2, "device-b": 1},
		OriginNodeID: "device-a",
		UpdatedAt:    now,
		Fields: map[string]models.FieldValue{
			"notes": {Value: "local note", UpdatedAt: now, OriginNodeID: "device-a"},
		},
		SyncState: models.SyncStatePendingPush,
	}

	f.oplog.PeekBatchFunc = func(ctx context.Context, maxSize int) ([]*models.Operation, error) {
		return nil, nil
	}
	f.records.GetRecordFunc = func(ctx context.Context, id string) (*models.Record, error) {
		if id == "rec-1" {
			return local.Clone(), nil
		}
		return nil, storage.ErrRecordNotFound
	}
	f.records.ListRecordsFunc = func(ctx context.Context) ([]*models.Record, error) {
		return []*models.Record{local}, nil
	}

	f.transport.PullFunc = func(ctx context.Context, accessToken string, req api.PullRequest) (*api.PullResponse, error) {
		assert.Equal(t, map[string]vclock.VectorClock{
			"rec-1": {"device-a": 2, "device-b": 1},
		}, req.KnownClocks)
		return &api.PullResponse{ChangedRecords: []api.Record{{
			ID:           "rec-1",
			Status:       string(models.StatusInProgress),
			VectorClock:  vclock.VectorClock{"device-a": 1, "device-b": 2},
			OriginNodeID: "device-b",
			UpdatedAt:    now.Add(time.Second),
			Fields: map[string]api.FieldValue{
				"notes": {Value: "remote note", UpdatedAt: now.Add(time.Second), OriginNodeID: "device-b"},
			},
		}}}, nil
	}

	s := f.newSession(nil)
	result, err := s.Run(context.Background(), "token")
	require.NoError(t, err)

	assert.Equal(t, 1, result.MergedRecords)
	require.Len(t, f.tx.saved, 1)

	merged := f.tx.saved[0]
	// Более свежее поле победило, часы покрывают обе версии плюс инкремент
	assert.Equal(t, "remote note", merged.Fields["notes"].Value)
	assert.Equal(t, vclock.VectorClock{"device-a": 3, "device-b": 2}, merged.Clock)
}

// Часы записей не агрегируются в один вектор: каждая запись идет в pull
// со своими часами, иначе сервер счел бы невиденные записи покрытыми.
func TestSession_Run_PullSendsPerRecordClocks(t *testing.T) {
	f := newFixture()

	now := time.Now()
	recA := &models.Record{
		ID: "rec-a", Status: models.StatusPending, OriginNodeID: "device-a",
		Clock: vclock.VectorClock{"device-a": 5}, CreatedAt: now, UpdatedAt: now,
		Fields: map[string]models.FieldValue{}, SyncState: models.SyncStateSynced,
	}
	recB := &models.Record{
		ID: "rec-b", Status: models.StatusPending, OriginNodeID: "device-b",
		Clock: vclock.VectorClock{"device-a": 1, "device-b": 3}, CreatedAt: now, UpdatedAt: now,
		Fields: map[string]models.FieldValue{}, SyncState: models.SyncStateSynced,
	}

	f.oplog.PeekBatchFunc = func(ctx context.Context, maxSize int) ([]*models.Operation, error) {
		return nil, nil
	}
	f.records.ListRecordsFunc = func(ctx context.Context) ([]*models.Record, error) {
		return []*models.Record{recA, recB}, nil
	}
	f.transport.PullFunc = func(ctx context.Context, accessToken string, req api.PullRequest) (*api.PullResponse, error) {
		assert.Equal(t, map[string]vclock.VectorClock{
			"rec-a": {"device-a": 5},
			"rec-b": {"device-a": 1, "device-b": 3},
		}, req.KnownClocks)
		return &api.PullResponse{}, nil
	}

	s := f.newSession(nil)
	_, err := s.Run(context.Background(), "token")
	require.NoError(t, err)
	require.Len(t, f.transport.PullCalls(), 1)
}

func TestSession_Run_CommitFailure_RollsBack(t *testing.T) {
	f := newFixture()
	f.tx.failSave = true

	f.oplog.PeekBatchFunc = func(ctx context.Context, maxSize int) ([]*models.Operation, error) {
		return nil, nil
	}
	f.transport.PullFunc = func(ctx context.Context, accessToken string, req api.PullRequest) (*api.PullResponse, error) {
		return &api.PullResponse{ChangedRecords: []api.Record{{
			ID: "rec-1", Status: string(models.StatusPending), VectorClock: vclock.VectorClock{"device-b": 1},
		}}}, nil
	}

	s := f.newSession(nil)
	_, err := s.Run(context.Background(), "token")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rolled back")
	assert.NotErrorIs(t, err, ErrSyncDeferred)

	// Ни аудита, ни хуков до durable коммита
	assert.Empty(t, f.auditEvents())
	assert.Equal(t, StateIdle, s.State())
}

func TestSession_Run_HookCalledAfterCommit(t *testing.T) {
	f := newFixture()

	f.oplog.PeekBatchFunc = func(ctx context.Context, maxSize int) ([]*models.Operation, error) {
		return nil, nil
	}
	f.transport.PullFunc = func(ctx context.Context, accessToken string, req api.PullRequest) (*api.PullResponse, error) {
		return &api.PullResponse{ChangedRecords: []api.Record{{
			ID: "rec-1", Status: string(models.StatusPending), VectorClock: vclock.VectorClock{"device-b": 1},
		}}}, nil
	}

	hooked := make(chan string, 1)
	s := f.newSession(func(record *models.Record, conflicts []models.ConflictMarker) {
		hooked <- record.ID
	})

	_, err := s.Run(context.Background(), "token")
	require.NoError(t, err)

	select {
	case id := <-hooked:
		assert.Equal(t, "rec-1", id)
	case <-time.After(time.Second):
		t.Fatal("OnRecordReconciled hook was not called")
	}
}

func TestSession_Run_HookPanicDoesNotCrossBoundary(t *testing.T) {
	f := newFixture()

	f.oplog.PeekBatchFunc = func(ctx context.Context, maxSize int) ([]*models.Operation, error) {
		return nil, nil
	}
	f.transport.PullFunc = func(ctx context.Context, accessToken string, req api.PullRequest) (*api.PullResponse, error) {
		return &api.PullResponse{ChangedRecords: []api.Record{{
			ID: "rec-1", Status: string(models.StatusPending), VectorClock: vclock.VectorClock{"device-b": 1},
		}}}, nil
	}

	called := make(chan struct{}, 1)
	s := f.newSession(func(record *models.Record, conflicts []models.ConflictMarker) {
		called <- struct{}{}
		panic("consumer bug")
	})

	result, err := s.Run(context.Background(), "token")
	require.NoError(t, err)
	assert.Equal(t, 1, result.MergedRecords)

	select {
	case <-called:
	case <-time.After(time.Second):
		t.Fatal("hook was not called")
	}
}

func TestSession_Run_UsesReconcileCache(t *testing.T) {
	f := newFixture()

	now := time.Now()
	local := &models.Record{
		ID:           "rec-1",
		Status:       models.StatusPending,
		Clock:        vclock.VectorClock{"device-a": 1},
		OriginNodeID: "device-a",
		Fields: map[string]models.FieldValue{
			"notes": {Value: "local", UpdatedAt: now, OriginNodeID: "device-a"},
		},
	}
	remote := api.Record{
		ID:           "rec-1",
		Status:       string(models.StatusPending),
		VectorClock:  vclock.VectorClock{"device-b": 1},
		OriginNodeID: "device-b",
		Fields: map[string]api.FieldValue{
			"notes": {Value: "remote", UpdatedAt: now.Add(time.Second), OriginNodeID: "device-b"},
		},
	}

	f.oplog.PeekBatchFunc = func(ctx context.Context, maxSize int) ([]*models.Operation, error) {
		return nil, nil
	}
	f.records.GetRecordFunc = func(ctx context.Context, id string) (*models.Record, error) {
		return local.Clone(), nil
	}
	f.records.ListRecordsFunc = func(ctx context.Context) ([]*models.Record, error) {
		return []*models.Record{local}, nil
	}
	f.transport.PullFunc = func(ctx context.Context, accessToken string, req api.PullRequest) (*api.PullResponse, error) {
		return &api.PullResponse{ChangedRecords: []api.Record{remote}}, nil
	}

	s := f.newSession(nil)

	_, err := s.Run(context.Background(), "token")
	require.NoError(t, err)

	_, err = s.Run(context.Background(), "token")
	require.NoError(t, err)

	hits, misses := f.cache.Stats()
	assert.Equal(t, int64(1), hits, "second cycle must reuse the cached merge")
	assert.Equal(t, int64(1), misses)
}

func TestSession_Run_StorageFailureIsFatal(t *testing.T) {
	f := newFixture()

	f.oplog.PeekBatchFunc = func(ctx context.Context, maxSize int) ([]*models.Operation, error) {
		return nil, fmt.Errorf("bolt: database closed")
	}

	s := f.newSession(nil)
	_, err := s.Run(context.Background(), "token")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrSyncDeferred)
	assert.Equal(t, StateIdle, s.State())
}
