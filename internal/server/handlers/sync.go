package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/vkuzmenko/wardsync/internal/audit"
	"github.com/vkuzmenko/wardsync/internal/merge"
	"github.com/vkuzmenko/wardsync/internal/models"
	"github.com/vkuzmenko/wardsync/internal/server/storage"
	"github.com/vkuzmenko/wardsync/internal/validation"
	"github.com/vkuzmenko/wardsync/pkg/api"
)

// contextKey тип для ключей контекста
type contextKey string

const (
	// DeviceIDKey ключ для хранения device_id в контексте
	DeviceIDKey contextKey = "device_id"
	// DeviceNameKey ключ для хранения device_name в контексте
	DeviceNameKey contextKey = "device_name"
)

// GetDeviceID извлекает device_id из контекста запроса
func GetDeviceID(ctx context.Context) (string, bool) {
	deviceID, ok := ctx.Value(DeviceIDKey).(string)
	return deviceID, ok
}

// GetDeviceName извлекает device_name из контекста запроса
func GetDeviceName(ctx context.Context) (string, bool) {
	deviceName, ok := ctx.Value(DeviceNameKey).(string)
	return deviceName, ok
}

// SyncHandler handles push/pull synchronization requests.
// Сервер поглощает операции устройств тем же merge-движком, что и
// клиенты: каноническое состояние сходится к одному и тому же
// результату независимо от порядка прихода операций.
type SyncHandler struct {
	logger  *slog.Logger
	records storage.RecordStorage
	devices storage.DeviceStorage
	auditor storage.AuditStorage
	engine  *merge.Engine
}

// NewSyncHandler creates a new sync handler
func NewSyncHandler(logger *slog.Logger, records storage.RecordStorage, devices storage.DeviceStorage, auditor storage.AuditStorage, engine *merge.Engine) *SyncHandler {
	return &SyncHandler{
		logger:  logger,
		records: records,
		devices: devices,
		auditor: auditor,
		engine:  engine,
	}
}

// Push обрабатывает POST /api/v1/sync/push
// Принимает батч операций устройства и возвращает серверное состояние
// затронутых записей
func (h *SyncHandler) Push(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	deviceID, ok := GetDeviceID(ctx)
	if !ok {
		h.logger.Error("Device ID not found in context")
		h.sendError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req api.PushRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Failed to decode push request", "error", err)
		h.sendError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if req.DeviceID != deviceID {
		h.logger.Warn("Push device_id mismatch",
			"expected", deviceID, "got", req.DeviceID)
		h.sendError(w, "device_id mismatch", http.StatusForbidden)
		return
	}

	h.logger.Info("Push request",
		"device_id", deviceID,
		"batch_size", len(req.Batch))

	// Валидируем весь батч до применения: некорректная операция
	// отклоняет запрос целиком, устройство разберется с ней по одной
	for i, apiOp := range req.Batch {
		op := api.OperationFromAPI(apiOp)
		if err := validation.ValidateOperation(op); err != nil {
			h.logger.Warn("Push rejected: invalid operation",
				"device_id", deviceID,
				"sequence", op.Sequence,
				"error", err)
			h.sendError(w, fmt.Sprintf("operation %d: %v", i, err), http.StatusBadRequest)
			return
		}
	}

	ackedSeq, err := h.devices.AckedSequence(ctx, deviceID)
	if err != nil {
		h.logger.Error("Failed to get acked sequence", "error", err, "device_id", deviceID)
		h.sendError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	touched := make(map[string]*models.Record)
	maxSeq := ackedSeq

	for _, apiOp := range req.Batch {
		op := api.OperationFromAPI(apiOp)

		if op.Sequence > maxSeq {
			maxSeq = op.Sequence
		}

		// Дедупликация: операция уже durably применена раньше
		if op.Sequence <= ackedSeq {
			h.logger.Debug("Skipping duplicate operation",
				"device_id", deviceID, "sequence", op.Sequence)
			continue
		}

		final, err := h.applyOperation(ctx, deviceID, op)
		if err != nil {
			h.logger.Error("Failed to apply operation",
				"error", err,
				"device_id", deviceID,
				"record_id", op.RecordID,
				"sequence", op.Sequence)
			h.sendError(w, "internal server error", http.StatusInternalServerError)
			return
		}
		touched[final.ID] = final
	}

	if maxSeq > ackedSeq {
		if err := h.devices.SaveAckedSequence(ctx, deviceID, maxSeq); err != nil {
			h.logger.Error("Failed to save acked sequence", "error", err, "device_id", deviceID)
			h.sendError(w, "internal server error", http.StatusInternalServerError)
			return
		}
	}

	ids := make([]string, 0, len(touched))
	for id := range touched {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	results := make([]api.PushResult, 0, len(ids))
	for _, id := range ids {
		record := touched[id]
		results = append(results, api.PushResult{
			RecordID:    id,
			ServerState: api.RecordToAPI(record),
			ServerClock: record.Clock.Clone(),
		})
	}

	response := api.PushResponse{
		Results:          results,
		AcknowledgedUpTo: maxSeq,
	}

	h.sendJSON(w, response, http.StatusOK)

	h.logger.Info("Push completed",
		"device_id", deviceID,
		"applied", len(touched),
		"acknowledged_up_to", maxSeq)
}

// applyOperation поглощает одну операцию в каноническое состояние
func (h *SyncHandler) applyOperation(ctx context.Context, deviceID string, op *models.Operation) (*models.Record, error) {
	base, err := h.records.GetRecord(ctx, op.RecordID)
	if err != nil && !errors.Is(err, storage.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to load record: %w", err)
	}

	candidate := op.ApplyTo(base)

	var final *models.Record
	outcome := audit.OutcomeMerged
	var conflicts []models.ConflictMarker

	if base == nil {
		final = candidate
	} else {
		result, err := h.engine.Merge(base, candidate)
		if err != nil {
			return nil, fmt.Errorf("merge failed: %w", err)
		}
		final = result.Record
		conflicts = result.Conflicts
		if result.RequiresManualReview {
			outcome = audit.OutcomeConflicted
		}
	}

	if err := h.records.SaveRecord(ctx, final); err != nil {
		return nil, fmt.Errorf("failed to save record: %w", err)
	}

	if err := h.auditor.SaveAuditEvent(ctx, audit.Event{
		Timestamp: time.Now(),
		RecordID:  final.ID,
		DeviceID:  deviceID,
		Outcome:   outcome,
		Conflicts: conflicts,
	}); err != nil {
		// След важен, но не ценой отказа синхронизации
		h.logger.Warn("Failed to save audit event",
			"error", err, "record_id", final.ID)
	}

	return final, nil
}

// Pull обрабатывает POST /api/v1/sync/pull
// Возвращает записи, не наблюдавшиеся устройством
func (h *SyncHandler) Pull(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	deviceID, ok := GetDeviceID(ctx)
	if !ok {
		h.logger.Error("Device ID not found in context")
		h.sendError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req api.PullRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Failed to decode pull request", "error", err)
		h.sendError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	h.logger.Info("Pull request",
		"device_id", deviceID,
		"known_records", len(req.KnownClocks))

	changed, err := h.records.ListUnobserved(ctx, req.KnownClocks)
	if err != nil {
		h.logger.Error("Failed to list changed records", "error", err, "device_id", deviceID)
		h.sendError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	apiRecords := make([]api.Record, 0, len(changed))
	for _, record := range changed {
		apiRecords = append(apiRecords, api.RecordToAPI(record))
	}

	h.sendJSON(w, api.PullResponse{ChangedRecords: apiRecords}, http.StatusOK)

	h.logger.Info("Pull completed",
		"device_id", deviceID,
		"changed_records", len(apiRecords))
}

// sendJSON отправляет JSON ответ
func (h *SyncHandler) sendJSON(w http.ResponseWriter, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to encode response", "error", err)
	}
}

// sendError отправляет JSON ответ с ошибкой
func (h *SyncHandler) sendError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(api.ErrorResponse{Error: message}); err != nil {
		h.logger.Error("Failed to encode error response", "error", err)
	}
}
