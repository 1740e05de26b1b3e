package session

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vkuzmenko/wardsync/internal/models"
	"github.com/vkuzmenko/wardsync/internal/vclock"
)

func TestReconcileCache_GetPut(t *testing.T) {
	cache := NewReconcileCache(4)

	local := vclock.VectorClock{"device-a": 2}
	remote := vclock.VectorClock{"device-b": 1}
	result := &models.ReconciliationResult{Record: &models.Record{ID: "rec-1"}}

	_, ok := cache.Get("rec-1", local, remote)
	assert.False(t, ok)

	cache.Put("rec-1", local, remote, result)

	got, ok := cache.Get("rec-1", local, remote)
	require.True(t, ok)
	assert.Same(t, result, got)

	hits, misses := cache.Stats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(1), misses)
}

func TestReconcileCache_KeyDependsOnBothClocks(t *testing.T) {
	cache := NewReconcileCache(4)

	local := vclock.VectorClock{"device-a": 1}
	remote := vclock.VectorClock{"device-b": 1}
	cache.Put("rec-1", local, remote, &models.ReconciliationResult{})

	// Другая пара часов той же записи дает другой ключ
	_, ok := cache.Get("rec-1", local, vclock.VectorClock{"device-b": 2})
	assert.False(t, ok)

	// Порядок аргументов различает локальную и серверную версии
	_, ok = cache.Get("rec-1", remote, local)
	assert.False(t, ok)
}

func TestReconcileCache_EvictsLeastRecentlyUsed(t *testing.T) {
	cache := NewReconcileCache(3)

	remote := vclock.VectorClock{"device-b": 1}
	for i := 0; i < 3; i++ {
		local := vclock.VectorClock{"device-a": uint64(i + 1)}
		cache.Put(fmt.Sprintf("rec-%d", i), local, remote, &models.ReconciliationResult{})
	}
	require.Equal(t, 3, cache.Len())

	// Обращение к rec-0 делает rec-1 старейшей записью
	_, ok := cache.Get("rec-0", vclock.VectorClock{"device-a": 1}, remote)
	require.True(t, ok)

	cache.Put("rec-3", vclock.VectorClock{"device-a": 4}, remote, &models.ReconciliationResult{})
	assert.Equal(t, 3, cache.Len())

	_, ok = cache.Get("rec-1", vclock.VectorClock{"device-a": 2}, remote)
	assert.False(t, ok, "rec-1 must be evicted")

	_, ok = cache.Get("rec-0", vclock.VectorClock{"device-a": 1}, remote)
	assert.True(t, ok, "recently used rec-0 must survive")
}

func TestReconcileCache_PutSameKeyTwice(t *testing.T) {
	cache := NewReconcileCache(2)

	local := vclock.VectorClock{"device-a": 1}
	remote := vclock.VectorClock{"device-b": 1}

	first := &models.ReconciliationResult{Record: &models.Record{ID: "v1"}}
	second := &models.ReconciliationResult{Record: &models.Record{ID: "v2"}}

	cache.Put("rec-1", local, remote, first)
	cache.Put("rec-1", local, remote, second)

	assert.Equal(t, 1, cache.Len())
	got, ok := cache.Get("rec-1", local, remote)
	require.True(t, ok)
	assert.Same(t, second, got)
}

func TestReconcileCache_DefaultCapacity(t *testing.T) {
	cache := NewReconcileCache(0)
	assert.Equal(t, DefaultCacheCapacity, cache.capacity)
}
