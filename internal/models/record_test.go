package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vkuzmenko/wardsync/internal/vclock"
)

func testRecord() *Record {
	ts := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	return &Record{
		ID: "rec-1",
		Fields: map[string]FieldValue{
			"title": {Value: "Проверить капельницу", UpdatedAt: ts, OriginNodeID: "device-a"},
		},
		Status:       StatusPending,
		Clock:        vclock.VectorClock{"device-a": 1},
		UpdatedAt:    ts,
		CreatedAt:    ts,
		OriginNodeID: "device-a",
		SyncState:    SyncStateLocalOnly,
	}
}

func TestRecord_Clone_Independent(t *testing.T) {
	original := testRecord()
	clone := original.Clone()

	clone.Fields["title"] = FieldValue{Value: "changed"}
	clone.Clock["device-b"] = 5
	clone.Status = StatusCancelled

	assert.Equal(t, "Проверить капельницу", original.Fields["title"].Value)
	assert.Zero(t, original.Clock.Get("device-b"))
	assert.Equal(t, StatusPending, original.Status)
}

func TestRecord_ContentEqual(t *testing.T) {
	a := testRecord()
	b := testRecord()

	// Атрибуты синхронизации не влияют на сравнение содержимого
	b.SyncState = SyncStateSynced
	b.Clock = vclock.VectorClock{"device-b": 9}
	assert.True(t, a.ContentEqual(b))

	b.Fields["title"] = FieldValue{Value: "другое"}
	assert.False(t, a.ContentEqual(b))

	b = testRecord()
	b.Status = StatusInProgress
	assert.False(t, a.ContentEqual(b))

	b = testRecord()
	b.Fields["extra"] = FieldValue{Value: "x"}
	assert.False(t, a.ContentEqual(b))
}

func TestOperation_ApplyTo_NilBase(t *testing.T) {
	ts := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	op := &Operation{
		RecordID: "rec-2",
		Delta: map[string]FieldValue{
			"title": {Value: "Передать анализы", UpdatedAt: ts, OriginNodeID: "device-b"},
		},
		Clock:     vclock.VectorClock{"device-b": 1},
		NodeID:    "device-b",
		Sequence:  1,
		CreatedAt: ts,
	}

	result := op.ApplyTo(nil)

	require.NotNil(t, result)
	assert.Equal(t, "rec-2", result.ID)
	assert.Equal(t, StatusPending, result.Status)
	assert.Equal(t, "Передать анализы", result.Fields["title"].Value)
	assert.Equal(t, vclock.VectorClock{"device-b": 1}, result.Clock)
	assert.Equal(t, "device-b", result.OriginNodeID)
}

func TestOperation_ApplyTo_DoesNotMutateBase(t *testing.T) {
	base := testRecord()
	newStatus := StatusInProgress
	op := &Operation{
		RecordID: base.ID,
		Delta: map[string]FieldValue{
			"assignee": {Value: "Иванова", OriginNodeID: "device-b"},
		},
		NewStatus: &newStatus,
		Clock:     vclock.VectorClock{"device-a": 1, "device-b": 1},
		NodeID:    "device-b",
		Sequence:  2,
	}

	result := op.ApplyTo(base)

	assert.Equal(t, StatusInProgress, result.Status)
	assert.Equal(t, "Иванова", result.Fields["assignee"].Value)
	assert.Equal(t, "device-b", result.OriginNodeID)

	// База не изменилась
	assert.Equal(t, StatusPending, base.Status)
	_, ok := base.Fields["assignee"]
	assert.False(t, ok)
}

func TestOperation_ApplyTo_Snapshot(t *testing.T) {
	base := testRecord()
	op := &Operation{
		RecordID: base.ID,
		Delta: map[string]FieldValue{
			"notes": {Value: "только это поле", OriginNodeID: "device-a"},
		},
		Snapshot: true,
		Clock:    vclock.VectorClock{"device-a": 2},
		NodeID:   "device-a",
	}

	result := op.ApplyTo(base)

	// Снимок полностью замещает набор полей
	assert.Len(t, result.Fields, 1)
	assert.Equal(t, "только это поле", result.Fields["notes"].Value)
}

func TestOperation_JSONRoundTrip(t *testing.T) {
	ts := time.Date(2026, 3, 14, 11, 30, 0, 0, time.UTC)
	newStatus := StatusCompleted
	original := &Operation{
		RecordID: "rec-3",
		Delta: map[string]FieldValue{
			"title": {Value: "Сменить повязку", UpdatedAt: ts, OriginNodeID: "device-a"},
		},
		NewStatus: &newStatus,
		Clock:     vclock.VectorClock{"device-a": 4, "device-b": 2},
		NodeID:    "device-a",
		Sequence:  17,
		CreatedAt: ts,
	}

	data, err := json.Marshal(original)
	require.NoError(t, err)

	var restored Operation
	require.NoError(t, json.Unmarshal(data, &restored))

	assert.Equal(t, original.RecordID, restored.RecordID)
	assert.Equal(t, original.Delta, restored.Delta)
	assert.Equal(t, original.Clock, restored.Clock)
	require.NotNil(t, restored.NewStatus)
	assert.Equal(t, StatusCompleted, *restored.NewStatus)
	assert.Equal(t, original.Sequence, restored.Sequence)
}
