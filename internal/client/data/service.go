package data

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/vkuzmenko/wardsync/internal/client/storage"
	"github.com/vkuzmenko/wardsync/internal/models"
	"github.com/vkuzmenko/wardsync/internal/validation"
	"github.com/vkuzmenko/wardsync/internal/vclock"
)

// Service реализует локальный путь записи: каждая мутация задачи
// атомарно фиксируется двумя шагами: операция в журнал, затем запись
// в локальное хранилище. Журнал задает границу durability: операция,
// попавшая в него, гарантированно доедет до сервера.
type Service struct {
	records storage.RecordStorage
	oplog   storage.OperationLog
	meta    storage.MetadataStorage
	logger  *slog.Logger
}

// NewService creates a new task service
func NewService(records storage.RecordStorage, oplog storage.OperationLog, meta storage.MetadataStorage, logger *slog.Logger) *Service {
	return &Service{
		records: records,
		oplog:   oplog,
		meta:    meta,
		logger:  logger,
	}
}

// CreateTask создает новую задачу передачи смены с заданными полями.
// Запись получает UUID, единичные векторные часы этого устройства и
// статус PENDING.
func (s *Service) CreateTask(ctx context.Context, fields map[string]string) (*models.Record, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("task must have at least one field")
	}

	nodeID, err := s.meta.NodeID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get node id: %w", err)
	}

	now := time.Now()
	op := &models.Operation{
		RecordID:  uuid.New().String(),
		NodeID:    nodeID,
		Clock:     vclock.Increment(vclock.New(), nodeID),
		Delta:     buildDelta(fields, nodeID, now),
		Snapshot:  true,
		CreatedAt: now,
	}

	record, err := s.commit(ctx, nil, op)
	if err != nil {
		return nil, err
	}

	s.logger.Info("task created",
		"record_id", record.ID,
		"fields", len(fields))

	return record, nil
}

// UpdateTask изменяет поля существующей задачи.
// Дельта содержит только изменяемые поля; остальные не трогаются.
func (s *Service) UpdateTask(ctx context.Context, id string, fields map[string]string) (*models.Record, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("update must change at least one field")
	}

	base, err := s.records.GetRecord(ctx, id)
	if err != nil {
		return nil, err
	}

	nodeID, err := s.meta.NodeID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get node id: %w", err)
	}

	now := time.Now()
	op := &models.Operation{
		RecordID:  id,
		NodeID:    nodeID,
		Clock:     vclock.Increment(base.Clock, nodeID),
		Delta:     buildDelta(fields, nodeID, now),
		CreatedAt: now,
	}

	record, err := s.commit(ctx, base, op)
	if err != nil {
		return nil, err
	}

	s.logger.Info("task updated",
		"record_id", id,
		"fields", len(fields))

	return record, nil
}

// ChangeStatus переводит задачу по графу статусов.
// Недопустимый переход отклоняется локально, без обращения к журналу.
func (s *Service) ChangeStatus(ctx context.Context, id string, to models.Status) (*models.Record, error) {
	base, err := s.records.GetRecord(ctx, id)
	if err != nil {
		return nil, err
	}

	if !models.CanTransition(base.Status, to) {
		return nil, fmt.Errorf("invalid status transition %s -> %s", base.Status, to)
	}

	nodeID, err := s.meta.NodeID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get node id: %w", err)
	}

	op := &models.Operation{
		RecordID:  id,
		NodeID:    nodeID,
		Clock:     vclock.Increment(base.Clock, nodeID),
		NewStatus: &to,
		CreatedAt: time.Now(),
	}

	record, err := s.commit(ctx, base, op)
	if err != nil {
		return nil, err
	}

	s.logger.Info("task status changed",
		"record_id", id,
		"from", base.Status,
		"to", to)

	return record, nil
}

// GetTask возвращает задачу по идентификатору
func (s *Service) GetTask(ctx context.Context, id string) (*models.Record, error) {
	return s.records.GetRecord(ctx, id)
}

// ListTasks возвращает все локальные задачи
func (s *Service) ListTasks(ctx context.Context) ([]*models.Record, error) {
	return s.records.ListRecords(ctx)
}

// ListConflicted возвращает задачи, закрепленные в состоянии CONFLICTED
// и ожидающие ручного разрешения
func (s *Service) ListConflicted(ctx context.Context) ([]*models.Record, error) {
	return s.records.ListBySyncState(ctx, models.SyncStateConflicted)
}

// PendingOperations возвращает размер очереди несинхронизированных операций
func (s *Service) PendingOperations(ctx context.Context) (int, error) {
	return s.oplog.PendingCount(ctx)
}

// commit ставит операцию в журнал и применяет ее к локальной записи.
// Порядок принципиален: сначала журнал. Падение между шагами оставляет
// операцию в очереди, локальная запись догонит ее после синхронизации.
func (s *Service) commit(ctx context.Context, base *models.Record, op *models.Operation) (*models.Record, error) {
	if err := validation.ValidateOperation(op); err != nil {
		return nil, fmt.Errorf("invalid operation: %w", err)
	}

	seq, err := s.oplog.Append(ctx, op)
	if err != nil {
		return nil, fmt.Errorf("failed to append operation: %w", err)
	}
	op.Sequence = seq

	// Операция уже поставлена в очередь, поэтому и свежесозданная
	// запись сразу получает PENDING_PUSH, а не LOCAL_ONLY
	record := op.ApplyTo(base)
	record.SyncState = models.SyncStatePendingPush

	if err := s.records.SaveRecord(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to save record: %w", err)
	}

	return record, nil
}

// buildDelta версионирует каждое поле временем записи и узлом-автором
func buildDelta(fields map[string]string, nodeID string, now time.Time) map[string]models.FieldValue {
	delta := make(map[string]models.FieldValue, len(fields))
	for name, value := range fields {
		delta[name] = models.FieldValue{
			Value:        value,
			UpdatedAt:    now,
			OriginNodeID: nodeID,
		}
	}
	return delta
}
