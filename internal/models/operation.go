package models

import (
	"time"

	"github.com/vkuzmenko/wardsync/internal/vclock"
)

// Operation представляет одну локальную мутацию в журнале операций.
// Операции append-only: после создания никогда не изменяются,
// только помечаются подтвержденными после ack сервера.
type Operation struct {
	CreatedAt time.Time             `json:"created_at"` // CreatedAt время создания операции
	Delta     map[string]FieldValue `json:"delta"`      // Delta пофилдовая дельта мутации
	Clock     vclock.VectorClock    `json:"clock"`      // Clock векторные часы на момент записи
	RecordID  string                `json:"record_id"`  // RecordID идентификатор целевой записи
	NodeID    string                `json:"node_id"`    // NodeID узел-автор операции
	NewStatus *Status               `json:"new_status,omitempty"` // NewStatus смена статуса, если была
	Sequence  uint64                `json:"sequence"`   // Sequence монотонный локальный номер
	Snapshot  bool                  `json:"snapshot"`   // Snapshot true, если Delta содержит полный снимок полей
}

// ApplyTo применяет операцию к базовой версии записи и возвращает
// результирующую версию. База не мутируется. Nil-база означает
// создание записи с нуля (первая локальная запись).
func (op *Operation) ApplyTo(base *Record) *Record {
	var result *Record
	if base == nil {
		result = &Record{
			ID:        op.RecordID,
			Fields:    make(map[string]FieldValue, len(op.Delta)),
			Status:    StatusPending,
			CreatedAt: op.CreatedAt,
		}
	} else {
		result = base.Clone()
	}

	if op.Snapshot {
		result.Fields = make(map[string]FieldValue, len(op.Delta))
	}
	for name, fv := range op.Delta {
		result.Fields[name] = fv
	}

	if op.NewStatus != nil {
		result.Status = *op.NewStatus
	}

	result.Clock = op.Clock.Clone()
	result.UpdatedAt = op.CreatedAt
	result.OriginNodeID = op.NodeID

	return result
}
