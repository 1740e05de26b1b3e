package api

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vkuzmenko/wardsync/internal/models"
	"github.com/vkuzmenko/wardsync/internal/vclock"
)

// Сериализация записи в wire-формат и обратно обязана воспроизводить
// идентичную структуру, включая векторные часы.
func TestRecordWireRoundTrip(t *testing.T) {
	ts := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	original := &models.Record{
		ID: "rec-1",
		Fields: map[string]models.FieldValue{
			"title":    {Value: "Передать смену", UpdatedAt: ts, OriginNodeID: "device-a"},
			"assignee": {Value: "Петрова", UpdatedAt: ts.Add(time.Minute), OriginNodeID: "device-b"},
		},
		Status:       models.StatusInProgress,
		Clock:        vclock.VectorClock{"device-a": 3, "device-b": 1},
		UpdatedAt:    ts.Add(time.Minute),
		CreatedAt:    ts,
		OriginNodeID: "device-b",
		SyncState:    models.SyncStatePendingPush,
	}

	wire := RecordToAPI(original)
	data, err := json.Marshal(wire)
	require.NoError(t, err)

	var decoded Record
	require.NoError(t, json.Unmarshal(data, &decoded))
	restored := RecordFromAPI(decoded)

	assert.Equal(t, original.ID, restored.ID)
	assert.Equal(t, original.Fields, restored.Fields)
	assert.Equal(t, original.Status, restored.Status)
	assert.Equal(t, original.Clock, restored.Clock)
	assert.True(t, original.UpdatedAt.Equal(restored.UpdatedAt))
	assert.Equal(t, original.OriginNodeID, restored.OriginNodeID)

	// SyncState локальный атрибут, через провод не проходит
	assert.Empty(t, restored.SyncState)
}

func TestOperationWireRoundTrip(t *testing.T) {
	ts := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	newStatus := models.StatusCompleted
	original := &models.Operation{
		RecordID: "rec-2",
		Delta: map[string]models.FieldValue{
			"notes": {Value: "давление в норме", UpdatedAt: ts, OriginNodeID: "device-a"},
		},
		NewStatus: &newStatus,
		Clock:     vclock.VectorClock{"device-a": 7},
		NodeID:    "device-a",
		Sequence:  42,
		Snapshot:  false,
		CreatedAt: ts,
	}

	wire := OperationToAPI(original)
	data, err := json.Marshal(PushRequest{DeviceID: "device-a", Batch: []PushOperation{wire}})
	require.NoError(t, err)

	var req PushRequest
	require.NoError(t, json.Unmarshal(data, &req))
	require.Len(t, req.Batch, 1)
	restored := OperationFromAPI(req.Batch[0])

	assert.Equal(t, original.RecordID, restored.RecordID)
	assert.Equal(t, original.Delta, restored.Delta)
	assert.Equal(t, original.Clock, restored.Clock)
	assert.Equal(t, original.NodeID, restored.NodeID)
	assert.Equal(t, original.Sequence, restored.Sequence)
	require.NotNil(t, restored.NewStatus)
	assert.Equal(t, models.StatusCompleted, *restored.NewStatus)
}

func TestOperationWithoutStatusChange(t *testing.T) {
	op := &models.Operation{
		RecordID: "rec-3",
		Delta:    map[string]models.FieldValue{},
		Clock:    vclock.VectorClock{"device-a": 1},
		NodeID:   "device-a",
		Sequence: 1,
	}

	wire := OperationToAPI(op)
	assert.Empty(t, wire.NewStatus)

	restored := OperationFromAPI(wire)
	assert.Nil(t, restored.NewStatus)
}
