package merge

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vkuzmenko/wardsync/internal/models"
)

func TestResolver_NewerTimestampWins(t *testing.T) {
	resolver := NewResolver()
	earlier := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	later := earlier.Add(time.Hour)

	local := &models.Record{
		ID:     "r",
		Status: models.StatusPending,
		Fields: map[string]models.FieldValue{
			"title": {Value: "старое", UpdatedAt: earlier, OriginNodeID: "device-b"},
		},
	}
	remote := &models.Record{
		ID:     "r",
		Status: models.StatusPending,
		Fields: map[string]models.FieldValue{
			"title": {Value: "новое", UpdatedAt: later, OriginNodeID: "device-z"},
		},
	}

	res := resolver.Resolve(local, remote)

	assert.Equal(t, "новое", res.Fields["title"].Value)
	require.Len(t, res.Conflicts, 1)
	assert.Equal(t, ReasonNewerTimestamp, res.Conflicts[0].Reason)
	assert.Equal(t, "remote", res.Conflicts[0].Winner)
	assert.False(t, res.RequiresManualReview)
}

func TestResolver_EqualValuesNoMarker(t *testing.T) {
	resolver := NewResolver()
	ts := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

	fields := map[string]models.FieldValue{
		"title": {Value: "одинаково", UpdatedAt: ts, OriginNodeID: "device-a"},
	}
	local := &models.Record{ID: "r", Status: models.StatusPending, Fields: fields}
	remote := &models.Record{ID: "r", Status: models.StatusPending, Fields: map[string]models.FieldValue{
		"title": {Value: "одинаково", UpdatedAt: ts.Add(time.Minute), OriginNodeID: "device-b"},
	}}

	res := resolver.Resolve(local, remote)

	assert.Empty(t, res.Conflicts)
}

func TestResolver_MarkersSortedByField(t *testing.T) {
	resolver := NewResolver()
	ts := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

	mk := func(v, node string) models.FieldValue {
		return models.FieldValue{Value: v, UpdatedAt: ts, OriginNodeID: node}
	}
	local := &models.Record{ID: "r", Status: models.StatusPending, Fields: map[string]models.FieldValue{
		"zeta":  mk("l1", "device-a"),
		"alpha": mk("l2", "device-a"),
		"mid":   mk("l3", "device-a"),
	}}
	remote := &models.Record{ID: "r", Status: models.StatusPending, Fields: map[string]models.FieldValue{
		"zeta":  mk("r1", "device-b"),
		"alpha": mk("r2", "device-b"),
		"mid":   mk("r3", "device-b"),
	}}

	res := resolver.Resolve(local, remote)

	require.Len(t, res.Conflicts, 3)
	assert.Equal(t, "alpha", res.Conflicts[0].Field)
	assert.Equal(t, "mid", res.Conflicts[1].Field)
	assert.Equal(t, "zeta", res.Conflicts[2].Field)
}

func TestResolver_PinnedStatusDeterministic(t *testing.T) {
	resolver := NewResolver()

	local := &models.Record{ID: "r", Status: models.StatusCompleted}
	remote := &models.Record{ID: "r", Status: models.StatusCancelled}

	ab := resolver.Resolve(local, remote)
	ba := resolver.Resolve(remote, local)

	// Статус-заглушка одинаков независимо от порядка аргументов
	assert.Equal(t, ab.Status, ba.Status)
	assert.True(t, ab.RequiresManualReview)
	assert.True(t, ba.RequiresManualReview)
}
