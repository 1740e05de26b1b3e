package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/vkuzmenko/wardsync/internal/audit"
	clientapi "github.com/vkuzmenko/wardsync/internal/client/api"
	"github.com/vkuzmenko/wardsync/internal/client/storage"
	"github.com/vkuzmenko/wardsync/internal/merge"
	"github.com/vkuzmenko/wardsync/internal/models"
	"github.com/vkuzmenko/wardsync/internal/validation"
	"github.com/vkuzmenko/wardsync/internal/vclock"
	"github.com/vkuzmenko/wardsync/pkg/api"
)

// State представляет фазу цикла синхронизации
type State string

const (
	StateIdle         State = "IDLE"
	StateDraining     State = "DRAINING"
	StateTransmitting State = "TRANSMITTING"
	StateReconciling  State = "RECONCILING"
	StateCommitting   State = "COMMITTING"
	StateAborted      State = "ABORTED"
)

// DefaultBatchSize максимальный размер батча операций за один push
const DefaultBatchSize = 100

// ErrSyncDeferred цикл отложен из-за временной ошибки транспорта.
// Журнал операций не тронут; планировщик повторит цикл с backoff.
var ErrSyncDeferred = errors.New("sync deferred")

// ErrSyncAborted цикл прерван отменой контекста
var ErrSyncAborted = errors.New("sync aborted")

//go:generate moq -out session_mock.go . Session

// Session определяет интерфейс одного цикла синхронизации.
// Планировщик зависит только от него.
type Session interface {
	// Run выполняет полный цикл синхронизации с сервером
	Run(ctx context.Context, accessToken string) (*Result, error)

	// PendingCount возвращает количество операций, ожидающих передачи
	PendingCount(ctx context.Context) (int, error)

	// State возвращает текущую фазу цикла
	State() State
}

// Result contains sync cycle results
type Result struct {
	PushedOps     int // количество переданных на сервер операций
	PulledRecords int // количество полученных с сервера записей
	MergedRecords int // количество слитых и закоммиченных записей
	Conflicts     int // количество записей, закрепленных как CONFLICTED
	Quarantined   int // количество операций, перенесенных в карантин
}

// OnRecordReconciled вызывается после коммита для каждой слитой записи.
// Вызов не блокирует цикл: внешние потребители (интеграции, уведомления)
// получают уже закоммиченное состояние.
type OnRecordReconciled func(record *models.Record, conflicts []models.ConflictMarker)

// Config собирает зависимости сессии. Все зависимости инжектируются
// при конструировании; сессия не создает их сама.
type Config struct {
	Transport    clientapi.ClientAPI
	Engine       *merge.Engine
	OpLog        storage.OperationLog
	Records      storage.RecordStorage
	Transactor   storage.Transactor
	AuditSink    audit.Sink
	Cache        *ReconcileCache
	Logger       *slog.Logger
	OnReconciled OnRecordReconciled
	DeviceID     string
	BatchSize    int
}

// session runs one synchronization cycle at a time
type session struct {
	transport    clientapi.ClientAPI
	engine       *merge.Engine
	oplog        storage.OperationLog
	records      storage.RecordStorage
	transactor   storage.Transactor
	auditSink    audit.Sink
	cache        *ReconcileCache
	logger       *slog.Logger
	onReconciled OnRecordReconciled
	deviceID     string
	batchSize    int

	state   State
	stateMu sync.RWMutex
	runMu   sync.Mutex
}

// NewSession creates a new sync session
func NewSession(cfg Config) Session {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.Cache == nil {
		cfg.Cache = NewReconcileCache(DefaultCacheCapacity)
	}
	return &session{
		transport:    cfg.Transport,
		engine:       cfg.Engine,
		oplog:        cfg.OpLog,
		records:      cfg.Records,
		transactor:   cfg.Transactor,
		auditSink:    cfg.AuditSink,
		cache:        cfg.Cache,
		logger:       cfg.Logger,
		onReconciled: cfg.OnReconciled,
		deviceID:     cfg.DeviceID,
		batchSize:    cfg.BatchSize,
		state:        StateIdle,
	}
}

func (s *session) State() State {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return s.state
}

func (s *session) setState(state State) {
	s.stateMu.Lock()
	s.state = state
	s.stateMu.Unlock()
	s.logger.Debug("sync state changed", "state", string(state))
}

// PendingCount возвращает количество операций, ожидающих передачи
func (s *session) PendingCount(ctx context.Context) (int, error) {
	return s.oplog.PendingCount(ctx)
}

// reconciliation связывает слитую запись с результатом слияния
type reconciliation struct {
	record *models.Record
	result *models.ReconciliationResult
}

// Run performs a full synchronization cycle
// 1. Draining: collects and validates pending operations
// 2. Transmitting: pushes the batch to the server
// 3. Reconciling: pulls server changes and merges them locally
// 4. Committing: applies everything in one local transaction
func (s *session) Run(ctx context.Context, accessToken string) (result *Result, err error) {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	// Паника внутри цикла не должна пересекать границу сессии
	defer func() {
		if r := recover(); r != nil {
			s.setState(StateAborted)
			result = nil
			err = fmt.Errorf("sync cycle panicked: %v", r)
		}
	}()

	s.logger.Info("Starting sync cycle", "device_id", s.deviceID)
	result = &Result{}

	// --- Draining ---
	s.setState(StateDraining)

	batch, err := s.oplog.PeekBatch(ctx, s.batchSize)
	if err != nil {
		s.setState(StateIdle)
		return nil, fmt.Errorf("failed to peek operation batch: %w", err)
	}

	valid := make([]*models.Operation, 0, len(batch))
	for _, op := range batch {
		if verr := validation.ValidateOperation(op); verr != nil {
			if qerr := s.quarantine(ctx, op, verr); qerr != nil {
				s.setState(StateIdle)
				return nil, qerr
			}
			result.Quarantined++
			continue
		}
		valid = append(valid, op)
	}

	// --- Transmitting ---
	s.setState(StateTransmitting)

	serverRecords := make(map[string]api.Record)
	var ackUpTo uint64

	if len(valid) > 0 {
		quarantinedBefore := result.Quarantined
		ackUpTo, err = s.pushBatch(ctx, accessToken, valid, serverRecords, result)
		if err != nil {
			return nil, s.classifyTransportErr(ctx, "push", err)
		}
		result.PushedOps = len(valid) - (result.Quarantined - quarantinedBefore)
	}

	// --- Reconciling ---
	s.setState(StateReconciling)

	knownClocks, err := s.observedClocks(ctx)
	if err != nil {
		s.setState(StateIdle)
		return nil, err
	}

	pullResp, err := s.transport.Pull(ctx, accessToken, api.PullRequest{
		DeviceID:    s.deviceID,
		KnownClocks: knownClocks,
	})
	if err != nil {
		return nil, s.classifyTransportErr(ctx, "pull", err)
	}
	result.PulledRecords = len(pullResp.ChangedRecords)

	// Pull несет более позднее серверное состояние, чем push-ответ
	for _, rec := range pullResp.ChangedRecords {
		serverRecords[rec.ID] = rec
	}

	reconciliations, err := s.reconcile(ctx, serverRecords)
	if err != nil {
		s.setState(StateIdle)
		return nil, err
	}

	// --- Committing ---
	s.setState(StateCommitting)

	err = s.transactor.RunInTransaction(ctx, func(tx storage.Tx) error {
		for _, rec := range reconciliations {
			if err := tx.SaveRecord(rec.record); err != nil {
				return fmt.Errorf("failed to save record %s: %w", rec.record.ID, err)
			}
		}
		if ackUpTo > 0 {
			if err := tx.AcknowledgeOperations(ackUpTo); err != nil {
				return fmt.Errorf("failed to acknowledge operations: %w", err)
			}
		}
		return tx.SaveLastSyncTime(time.Now())
	})
	if err != nil {
		s.setState(StateIdle)
		return nil, fmt.Errorf("commit failed, cycle rolled back: %w", err)
	}

	// Аудит и хук вызываются только после durable коммита
	for _, rec := range reconciliations {
		result.MergedRecords++
		if rec.result.RequiresManualReview {
			result.Conflicts++
		}
		s.emitReconciled(ctx, rec)
		s.notifyReconciled(rec)
	}

	s.logger.Info("Sync cycle completed",
		"pushed", result.PushedOps,
		"pulled", result.PulledRecords,
		"merged", result.MergedRecords,
		"conflicts", result.Conflicts,
		"quarantined", result.Quarantined)

	s.setState(StateIdle)
	return result, nil
}

// pushBatch передает батч операций, откатываясь на передачу по одной
// при отказе валидации на сервере: некорректная операция уходит в
// карантин, остальной батч продолжается.
func (s *session) pushBatch(ctx context.Context, accessToken string, ops []*models.Operation, serverRecords map[string]api.Record, result *Result) (uint64, error) {
	req := api.PushRequest{DeviceID: s.deviceID, Batch: make([]api.PushOperation, 0, len(ops))}
	for _, op := range ops {
		req.Batch = append(req.Batch, api.OperationToAPI(op))
	}

	resp, err := s.transport.Push(ctx, accessToken, req)
	if err == nil {
		collectServerState(resp, serverRecords)
		return resp.AcknowledgedUpTo, nil
	}

	var validationErr *clientapi.ValidationError
	if !errors.As(err, &validationErr) {
		return 0, err
	}

	s.logger.Warn("Server rejected batch, retrying operations individually",
		"batch_size", len(ops), "error", err)

	var ackUpTo uint64
	for _, op := range ops {
		single := api.PushRequest{DeviceID: s.deviceID, Batch: []api.PushOperation{api.OperationToAPI(op)}}
		resp, err := s.transport.Push(ctx, accessToken, single)
		if err != nil {
			if errors.As(err, &validationErr) {
				if qerr := s.quarantine(ctx, op, err); qerr != nil {
					return 0, qerr
				}
				result.Quarantined++
				continue
			}
			return 0, err
		}
		collectServerState(resp, serverRecords)
		if resp.AcknowledgedUpTo > ackUpTo {
			ackUpTo = resp.AcknowledgedUpTo
		}
	}
	return ackUpTo, nil
}

func collectServerState(resp *api.PushResponse, serverRecords map[string]api.Record) {
	for _, res := range resp.Results {
		serverRecords[res.RecordID] = res.ServerState
	}
}

// reconcile сливает серверное состояние с локальным. Результат не
// пишется в хранилище: запись происходит одной транзакцией на шаге
// Committing. Порядок обхода детерминирован.
func (s *session) reconcile(ctx context.Context, serverRecords map[string]api.Record) ([]reconciliation, error) {
	ids := make([]string, 0, len(serverRecords))
	for id := range serverRecords {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	reconciliations := make([]reconciliation, 0, len(ids))
	for _, id := range ids {
		remote := api.RecordFromAPI(serverRecords[id])

		local, err := s.records.GetRecord(ctx, id)
		if err != nil && !errors.Is(err, storage.ErrRecordNotFound) {
			return nil, fmt.Errorf("failed to load local record %s: %w", id, err)
		}

		if local == nil {
			// Запись новая для устройства: серверное состояние принимается как есть
			remote.SyncState = models.SyncStateSynced
			reconciliations = append(reconciliations, reconciliation{
				record: remote,
				result: &models.ReconciliationResult{Record: remote, Clock: remote.Clock},
			})
			continue
		}

		res, ok := s.cache.Get(id, local.Clock, remote.Clock)
		if !ok {
			res, err = s.engine.Merge(local, remote)
			if err != nil {
				return nil, fmt.Errorf("failed to merge record %s: %w", id, err)
			}
			s.cache.Put(id, local.Clock, remote.Clock, res)
		}

		reconciliations = append(reconciliations, reconciliation{record: res.Record, result: res})
	}
	return reconciliations, nil
}

// observedClocks строит пер-записную карту наблюдавшегося устройством
// состояния. Часы разных записей не агрегируются: компонент узла в часах
// одной записи ничего не говорит об остальных, и слитые в один вектор
// часы скрыли бы от сервера никогда не виденные записи.
func (s *session) observedClocks(ctx context.Context) (map[string]vclock.VectorClock, error) {
	records, err := s.records.ListRecords(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	observed := make(map[string]vclock.VectorClock, len(records))
	for _, rec := range records {
		observed[rec.ID] = rec.Clock
	}
	return observed, nil
}

// classifyTransportErr переводит ошибку транспорта в исход цикла:
// отмена контекста прерывает цикл, временная ошибка откладывает его.
// Журнал операций в обоих случаях не тронут.
func (s *session) classifyTransportErr(ctx context.Context, phase string, err error) error {
	if ctx.Err() != nil {
		s.setState(StateAborted)
		return fmt.Errorf("%w: %s interrupted: %v", ErrSyncAborted, phase, ctx.Err())
	}
	if clientapi.IsTransient(err) {
		s.setState(StateIdle)
		return fmt.Errorf("%w: %s failed: %v", ErrSyncDeferred, phase, err)
	}
	s.setState(StateIdle)
	return fmt.Errorf("%s failed: %w", phase, err)
}

// quarantine переносит некорректную операцию в карантин и пишет
// аудиторское событие. Остальной батч продолжается.
func (s *session) quarantine(ctx context.Context, op *models.Operation, cause error) error {
	s.logger.Warn("Quarantining invalid operation",
		"record_id", op.RecordID,
		"sequence", op.Sequence,
		"error", cause)

	if err := s.oplog.Quarantine(ctx, op.Sequence, cause.Error()); err != nil {
		return fmt.Errorf("failed to quarantine operation %d: %w", op.Sequence, err)
	}

	if err := s.auditSink.Emit(ctx, audit.Event{
		Timestamp: time.Now(),
		RecordID:  op.RecordID,
		DeviceID:  s.deviceID,
		Outcome:   audit.OutcomeRejected,
		Detail:    cause.Error(),
	}); err != nil {
		s.logger.Warn("Failed to emit audit event", "record_id", op.RecordID, "error", err)
	}
	return nil
}

func (s *session) emitReconciled(ctx context.Context, rec reconciliation) {
	outcome := audit.OutcomeMerged
	if rec.result.RequiresManualReview {
		outcome = audit.OutcomeConflicted
	}
	if err := s.auditSink.Emit(ctx, audit.Event{
		Timestamp: time.Now(),
		RecordID:  rec.record.ID,
		DeviceID:  s.deviceID,
		Outcome:   outcome,
		Conflicts: rec.result.Conflicts,
	}); err != nil {
		s.logger.Warn("Failed to emit audit event", "record_id", rec.record.ID, "error", err)
	}
}

// notifyReconciled вызывает хук в отдельной горутине: потребитель
// не может ни заблокировать, ни уронить цикл синхронизации.
func (s *session) notifyReconciled(rec reconciliation) {
	if s.onReconciled == nil {
		return
	}
	record := rec.record.Clone()
	conflicts := rec.result.Conflicts
	go func() {
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("OnRecordReconciled hook panicked", "record_id", record.ID, "panic", r)
			}
		}()
		s.onReconciled(record, conflicts)
	}()
}
