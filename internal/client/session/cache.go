package session

import (
	"sync"

	"github.com/vkuzmenko/wardsync/internal/models"
	"github.com/vkuzmenko/wardsync/internal/vclock"
)

// DefaultCacheCapacity размер кеша результатов reconciliation по умолчанию
const DefaultCacheCapacity = 512

// cacheEntry хранит результат одного слияния
type cacheEntry struct {
	result *models.ReconciliationResult
}

// ReconcileCache кеширует результаты слияния пар (локальная, серверная)
// версий записи. Слияние детерминировано, поэтому пара часов однозначно
// определяет результат. Кеш ограничен по ёмкости и вытесняет записи
// по LRU; владение кешем явное: он создаётся и передаётся в сессию
// при конструировании.
type ReconcileCache struct {
	entries     map[string]*cacheEntry
	accessOrder []string // для LRU вытеснения
	capacity    int

	hitCount  int64
	missCount int64

	mu sync.Mutex
}

// NewReconcileCache создает кеш с заданной ёмкостью.
// При capacity <= 0 используется DefaultCacheCapacity.
func NewReconcileCache(capacity int) *ReconcileCache {
	if capacity <= 0 {
		capacity = DefaultCacheCapacity
	}
	return &ReconcileCache{
		entries:     make(map[string]*cacheEntry),
		accessOrder: make([]string, 0, capacity),
		capacity:    capacity,
	}
}

// cacheKey строит ключ по идентификатору записи и обоим часам.
// String() канонизирует часы (ключи отсортированы), поэтому ключ
// детерминирован.
func cacheKey(recordID string, local, remote vclock.VectorClock) string {
	return recordID + "|" + local.String() + "|" + remote.String()
}

// Get возвращает закешированный результат слияния
func (c *ReconcileCache) Get(recordID string, local, remote vclock.VectorClock) (*models.ReconciliationResult, bool) {
	key := cacheKey(recordID, local, remote)

	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		c.missCount++
		return nil, false
	}

	c.promoteLocked(key)
	c.hitCount++
	return entry.result, true
}

// Put сохраняет результат слияния, вытесняя старейшие записи при переполнении
func (c *ReconcileCache) Put(recordID string, local, remote vclock.VectorClock, result *models.ReconciliationResult) {
	key := cacheKey(recordID, local, remote)

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[key]; ok {
		c.entries[key] = &cacheEntry{result: result}
		c.promoteLocked(key)
		return
	}

	for len(c.entries) >= c.capacity {
		if !c.evictOneLocked() {
			break
		}
	}

	c.entries[key] = &cacheEntry{result: result}
	c.accessOrder = append(c.accessOrder, key)
}

// Len возвращает текущее количество записей в кеше
func (c *ReconcileCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats возвращает счётчики попаданий и промахов
func (c *ReconcileCache) Stats() (hits, misses int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hitCount, c.missCount
}

func (c *ReconcileCache) evictOneLocked() bool {
	if len(c.accessOrder) == 0 {
		return false
	}
	key := c.accessOrder[0]
	c.accessOrder = c.accessOrder[1:]
	delete(c.entries, key)
	return true
}

func (c *ReconcileCache) promoteLocked(key string) {
	for i, k := range c.accessOrder {
		if k == key {
			c.accessOrder = append(c.accessOrder[:i], c.accessOrder[i+1:]...)
			c.accessOrder = append(c.accessOrder, key)
			return
		}
	}
}
