package api

import (
	"time"

	"github.com/vkuzmenko/wardsync/internal/models"
	"github.com/vkuzmenko/wardsync/internal/vclock"
)

// FieldValue представляет версионированное значение поля на проводе.
type FieldValue struct {
	UpdatedAt    time.Time `json:"updated_at"`
	Value        string    `json:"value"`
	OriginNodeID string    `json:"origin_node_id"`
}

// Record представляет запись в формате wire-протокола.
// SyncState не передается: это локальный атрибут устройства.
type Record struct {
	UpdatedAt    time.Time             `json:"updated_at"`
	CreatedAt    time.Time             `json:"created_at"`
	Fields       map[string]FieldValue `json:"fields"`
	VectorClock  vclock.VectorClock    `json:"vector_clock"`
	ID           string                `json:"id"`
	OriginNodeID string                `json:"origin_node_id"`
	Status       string                `json:"status"`
}

// PushOperation представляет одну операцию в батче push-запроса.
type PushOperation struct {
	CreatedAt    time.Time             `json:"created_at"`
	Delta        map[string]FieldValue `json:"delta"`
	VectorClock  vclock.VectorClock    `json:"vector_clock"`
	RecordID     string                `json:"record_id"`
	OriginNodeID string                `json:"origin_node_id"`
	NewStatus    string                `json:"new_status,omitempty"`
	Sequence     uint64                `json:"sequence"`
	Snapshot     bool                  `json:"snapshot"`
}

// PushRequest представляет батч локальных операций устройства.
// Операции идут в порядке локальных sequence. Передача идемпотентна:
// сервер дедуплицирует по (deviceId, sequence), поэтому повтор батча
// после обрыва сети безопасен.
type PushRequest struct {
	DeviceID string          `json:"device_id"`
	Batch    []PushOperation `json:"batch"`
}

// PushResult представляет серверное состояние одной затронутой записи.
type PushResult struct {
	ServerState Record             `json:"server_state"`
	ServerClock vclock.VectorClock `json:"server_clock"`
	RecordID    string             `json:"record_id"`
}

// PushResponse представляет ответ сервера на push.
// AcknowledgedUpTo задает границу sequence, до которой операции устройства
// durably сохранены; журнал можно компактировать до нее включительно.
type PushResponse struct {
	Results          []PushResult `json:"results"`
	AcknowledgedUpTo uint64       `json:"acknowledged_up_to"`
}

// PullRequest представляет периодический запрос изменений.
// KnownClocks перечисляет наблюдавшееся устройством состояние по каждой
// записи. Часы здесь пер-записные: агрегировать их между записями нельзя,
// иначе никогда не виденная запись с "отставшими" часами будет отфильтрована
// и до устройства не доедет.
type PullRequest struct {
	KnownClocks map[string]vclock.VectorClock `json:"known_clocks"`
	DeviceID    string                        `json:"device_id"`
}

// PullResponse представляет изменения, не наблюдавшиеся устройством.
type PullResponse struct {
	ChangedRecords []Record `json:"changed_records"`
}

// RecordToAPI конвертирует доменную запись в wire-формат.
func RecordToAPI(r *models.Record) Record {
	fields := make(map[string]FieldValue, len(r.Fields))
	for name, fv := range r.Fields {
		fields[name] = FieldValue{
			Value:        fv.Value,
			UpdatedAt:    fv.UpdatedAt,
			OriginNodeID: fv.OriginNodeID,
		}
	}

	return Record{
		ID:           r.ID,
		Fields:       fields,
		Status:       string(r.Status),
		VectorClock:  r.Clock.Clone(),
		UpdatedAt:    r.UpdatedAt,
		CreatedAt:    r.CreatedAt,
		OriginNodeID: r.OriginNodeID,
	}
}

// RecordFromAPI конвертирует wire-формат в доменную запись.
// SyncState выставляет вызывающая сторона.
func RecordFromAPI(r Record) *models.Record {
	fields := make(map[string]models.FieldValue, len(r.Fields))
	for name, fv := range r.Fields {
		fields[name] = models.FieldValue{
			Value:        fv.Value,
			UpdatedAt:    fv.UpdatedAt,
			OriginNodeID: fv.OriginNodeID,
		}
	}

	return &models.Record{
		ID:           r.ID,
		Fields:       fields,
		Status:       models.Status(r.Status),
		Clock:        r.VectorClock.Clone(),
		UpdatedAt:    r.UpdatedAt,
		CreatedAt:    r.CreatedAt,
		OriginNodeID: r.OriginNodeID,
	}
}

// OperationToAPI конвертирует операцию журнала в wire-формат.
func OperationToAPI(op *models.Operation) PushOperation {
	delta := make(map[string]FieldValue, len(op.Delta))
	for name, fv := range op.Delta {
		delta[name] = FieldValue{
			Value:        fv.Value,
			UpdatedAt:    fv.UpdatedAt,
			OriginNodeID: fv.OriginNodeID,
		}
	}

	apiOp := PushOperation{
		RecordID:     op.RecordID,
		Delta:        delta,
		VectorClock:  op.Clock.Clone(),
		OriginNodeID: op.NodeID,
		Sequence:     op.Sequence,
		Snapshot:     op.Snapshot,
		CreatedAt:    op.CreatedAt,
	}
	if op.NewStatus != nil {
		apiOp.NewStatus = string(*op.NewStatus)
	}
	return apiOp
}

// OperationFromAPI конвертирует wire-операцию в доменную.
func OperationFromAPI(op PushOperation) *models.Operation {
	delta := make(map[string]models.FieldValue, len(op.Delta))
	for name, fv := range op.Delta {
		delta[name] = models.FieldValue{
			Value:        fv.Value,
			UpdatedAt:    fv.UpdatedAt,
			OriginNodeID: fv.OriginNodeID,
		}
	}

	domainOp := &models.Operation{
		RecordID:  op.RecordID,
		Delta:     delta,
		Clock:     op.VectorClock.Clone(),
		NodeID:    op.OriginNodeID,
		Sequence:  op.Sequence,
		Snapshot:  op.Snapshot,
		CreatedAt: op.CreatedAt,
	}
	if op.NewStatus != "" {
		status := models.Status(op.NewStatus)
		domainOp.NewStatus = &status
	}
	return domainOp
}
