package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vkuzmenko/wardsync/internal/audit"
	"github.com/vkuzmenko/wardsync/internal/models"
	"github.com/vkuzmenko/wardsync/internal/server/storage"
)

func testDevice(id string) *models.Device {
	now := time.Now().Truncate(time.Second)
	return &models.Device{
		ID:         id,
		Name:       "ward-3-tablet",
		SecretHash: "$2a$10$abcdefghijklmnopqrstuv",
		CreatedAt:  now,
		LastSeenAt: now,
	}
}

func TestStorage_CreateAndGetDevice(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	device := testDevice("device-1")
	require.NoError(t, s.CreateDevice(ctx, device))

	got, err := s.GetDevice(ctx, "device-1")
	require.NoError(t, err)
	assert.Equal(t, device.ID, got.ID)
	assert.Equal(t, device.Name, got.Name)
	assert.Equal(t, device.SecretHash, got.SecretHash)
}

func TestStorage_CreateDevice_Duplicate(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	require.NoError(t, s.CreateDevice(ctx, testDevice("device-1")))
	err := s.CreateDevice(ctx, testDevice("device-1"))
	assert.ErrorIs(t, err, storage.ErrDeviceAlreadyExists)
}

func TestStorage_GetDevice_NotFound(t *testing.T) {
	s := newTestStorage(t)

	_, err := s.GetDevice(context.Background(), "missing")
	assert.ErrorIs(t, err, storage.ErrDeviceNotFound)
}

func TestStorage_UpdateLastSeen(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	device := testDevice("device-1")
	require.NoError(t, s.CreateDevice(ctx, device))

	later := device.LastSeenAt.Add(time.Hour)
	require.NoError(t, s.UpdateLastSeen(ctx, "device-1", later))

	got, err := s.GetDevice(ctx, "device-1")
	require.NoError(t, err)
	assert.Equal(t, later.Unix(), got.LastSeenAt.Unix())

	err = s.UpdateLastSeen(ctx, "missing", later)
	assert.ErrorIs(t, err, storage.ErrDeviceNotFound)
}

func TestStorage_AckedSequence(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	require.NoError(t, s.CreateDevice(ctx, testDevice("device-1")))

	// Устройство еще не пушило
	seq, err := s.AckedSequence(ctx, "device-1")
	require.NoError(t, err)
	assert.Zero(t, seq)

	require.NoError(t, s.SaveAckedSequence(ctx, "device-1", 5))

	seq, err = s.AckedSequence(ctx, "device-1")
	require.NoError(t, err)
	assert.Equal(t, uint64(5), seq)
}

func TestStorage_SaveAckedSequence_Monotonic(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	require.NoError(t, s.CreateDevice(ctx, testDevice("device-1")))
	require.NoError(t, s.SaveAckedSequence(ctx, "device-1", 10))

	// Повтор старого батча не откатывает границу
	require.NoError(t, s.SaveAckedSequence(ctx, "device-1", 3))

	seq, err := s.AckedSequence(ctx, "device-1")
	require.NoError(t, err)
	assert.Equal(t, uint64(10), seq)
}

func TestStorage_AuditEvents(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	first := audit.Event{
		Timestamp: time.Now(),
		RecordID:  "rec-1",
		DeviceID:  "device-1",
		Outcome:   audit.OutcomeMerged,
	}
	second := audit.Event{
		Timestamp: time.Now(),
		RecordID:  "rec-1",
		DeviceID:  "device-2",
		Outcome:   audit.OutcomeConflicted,
		Detail:    "status transitions diverged",
		Conflicts: []models.ConflictMarker{
			{Field: "status", LocalValue: "COMPLETED", RemoteValue: "CANCELLED"},
		},
	}

	require.NoError(t, s.SaveAuditEvent(ctx, first))
	require.NoError(t, s.SaveAuditEvent(ctx, second))
	require.NoError(t, s.SaveAuditEvent(ctx, audit.Event{
		Timestamp: time.Now(), RecordID: "rec-other", DeviceID: "device-1", Outcome: audit.OutcomeRejected,
	}))

	events, err := s.ListAuditEvents(ctx, "rec-1")
	require.NoError(t, err)
	require.Len(t, events, 2)

	// Новейшие первыми
	assert.Equal(t, audit.OutcomeConflicted, events[0].Outcome)
	require.Len(t, events[0].Conflicts, 1)
	assert.Equal(t, "status", events[0].Conflicts[0].Field)
	assert.Equal(t, audit.OutcomeMerged, events[1].Outcome)
	assert.Nil(t, events[1].Conflicts)
}
