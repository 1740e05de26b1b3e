package models

import (
	"time"

	"github.com/vkuzmenko/wardsync/internal/vclock"
)

// SyncState представляет состояние синхронизации записи на устройстве.
type SyncState string

const (
	// SyncStateLocalOnly запись создана локально и еще не ставилась в очередь
	SyncStateLocalOnly SyncState = "LOCAL_ONLY"
	// SyncStatePendingPush запись в очереди на отправку
	SyncStatePendingPush SyncState = "PENDING_PUSH"
	// SyncStateSynced сервер подтвердил запись без конфликтов
	SyncStateSynced SyncState = "SYNCED"
	// SyncStateConflicted слияние потребовало ручного разрешения;
	// запись закреплена в этом состоянии до вмешательства извне
	SyncStateConflicted SyncState = "CONFLICTED"
)

// FieldValue представляет версионированное значение одного поля записи.
// UpdatedAt и OriginNodeID нужны для детерминированного разрешения
// конкурентных правок: большее время побеждает, при равенстве времен
// побеждает лексикографически меньший идентификатор узла.
type FieldValue struct {
	UpdatedAt    time.Time `json:"updated_at"`     // UpdatedAt время записи значения
	Value        string    `json:"value"`          // Value значение поля
	OriginNodeID string    `json:"origin_node_id"` // OriginNodeID узел, записавший значение
}

// Record представляет синхронизируемую запись (задачу передачи смены).
// Идентификатор стабилен между репликами; Clock хранит векторные часы записи,
// по компоненту на каждое наблюдавшее ее устройство.
type Record struct {
	UpdatedAt    time.Time             `json:"updated_at"`     // UpdatedAt время последнего изменения (wall-clock, для tie-break)
	CreatedAt    time.Time             `json:"created_at"`     // CreatedAt время создания (для информации)
	Fields       map[string]FieldValue `json:"fields"`         // Fields версионированные поля записи
	Clock        vclock.VectorClock    `json:"clock"`          // Clock векторные часы записи
	ID           string                `json:"id"`             // ID уникальный идентификатор записи (UUID)
	OriginNodeID string                `json:"origin_node_id"` // OriginNodeID узел последнего изменения
	Status       Status                `json:"status"`         // Status статус задачи
	SyncState    SyncState             `json:"sync_state"`     // SyncState состояние синхронизации (локальный атрибут)
}

// Clone создает глубокую копию записи.
func (r *Record) Clone() *Record {
	fields := make(map[string]FieldValue, len(r.Fields))
	for name, fv := range r.Fields {
		fields[name] = fv
	}

	return &Record{
		ID:           r.ID,
		Fields:       fields,
		Status:       r.Status,
		Clock:        r.Clock.Clone(),
		UpdatedAt:    r.UpdatedAt,
		CreatedAt:    r.CreatedAt,
		OriginNodeID: r.OriginNodeID,
		SyncState:    r.SyncState,
	}
}

// ContentEqual сравнивает содержимое двух записей: поля и статус.
// Атрибуты синхронизации (SyncState, Clock) не участвуют в сравнении.
// Используется защитной проверкой MergeEngine: при равных часах
// содержимое обязано совпадать.
func (r *Record) ContentEqual(other *Record) bool {
	if r.Status != other.Status {
		return false
	}
	if len(r.Fields) != len(other.Fields) {
		return false
	}
	for name, fv := range r.Fields {
		ofv, ok := other.Fields[name]
		if !ok {
			return false
		}
		if fv.Value != ofv.Value {
			return false
		}
	}
	return true
}

// ConflictMarker описывает один неразрешенный или авторазрешенный
// конфликт поля, попадающий в аудиторский след.
type ConflictMarker struct {
	Field       string `json:"field"`        // Field имя конфликтующего поля ("status" для статуса)
	LocalValue  string `json:"local_value"`  // LocalValue локальное значение
	RemoteValue string `json:"remote_value"` // RemoteValue серверное значение
	Winner      string `json:"winner"`       // Winner "local", "remote" или "" если не разрешен
	Reason      string `json:"reason"`       // Reason причина выбора победителя
}

// ReconciliationResult представляет результат слияния двух версий записи.
type ReconciliationResult struct {
	Record               *Record            `json:"record"`                 // Record слитая запись
	Clock                vclock.VectorClock `json:"clock"`                  // Clock слитые часы
	Conflicts            []ConflictMarker   `json:"conflicts"`              // Conflicts пофилдовые маркеры конфликтов
	RequiresManualReview bool               `json:"requires_manual_review"` // RequiresManualReview запись требует ручного разрешения
}
