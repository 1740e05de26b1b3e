package merge

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/vkuzmenko/wardsync/internal/models"
	"github.com/vkuzmenko/wardsync/internal/vclock"
)

var (
	// ErrNilRecord обе версии обязаны присутствовать
	ErrNilRecord = errors.New("merge: nil record")
	// ErrRecordIDMismatch слияние определено только для версий одной записи
	ErrRecordIDMismatch = errors.New("merge: record id mismatch")
)

// Engine выполняет слияние двух версий записи по векторным часам.
// Чистая функция без побочных эффектов: за персистентность отвечает
// вызывающей стороны. Для одних и тех же входов результат байт-в-байт
// одинаков на любой реплике (с точностью до компонента собственного
// узла в инкременте часов): это условие сходимости реплик.
type Engine struct {
	nodeID   string
	resolver *Resolver
}

// NewEngine создает движок слияния для узла nodeID.
func NewEngine(nodeID string, resolver *Resolver) *Engine {
	return &Engine{
		nodeID:   nodeID,
		resolver: resolver,
	}
}

// Merge реализует алгоритм реконсиляции:
//  1. Compare(local.Clock, remote.Clock).
//  2. Before: remote причинно доминирует, результат remote без конфликтов.
//  3. After: local доминирует, результат local без конфликтов.
//  4. Equal: состояния обязаны совпадать; расхождение содержимого при
//     равных часах означает нарушение причинности выше по потоку и никогда
//     не разрешается молча, только вручную.
//  5. Concurrent: пофилдовое разрешение через Resolver, часы результата =
//     Increment(Merge(local.Clock, remote.Clock), nodeID).
func (e *Engine) Merge(local, remote *models.Record) (*models.ReconciliationResult, error) {
	if local == nil || remote == nil {
		return nil, ErrNilRecord
	}
	if local.ID != remote.ID {
		return nil, fmt.Errorf("%w: %q vs %q", ErrRecordIDMismatch, local.ID, remote.ID)
	}

	switch vclock.Compare(local.Clock, remote.Clock) {
	case vclock.Before:
		return dominatedResult(remote), nil

	case vclock.After:
		return dominatedResult(local), nil

	case vclock.Equal:
		if local.ContentEqual(remote) {
			return dominatedResult(local), nil
		}
		return e.causalityViolation(local, remote), nil

	default: // vclock.Concurrent
		return e.resolveConcurrent(local, remote), nil
	}
}

// dominatedResult оборачивает причинно доминирующую версию без конфликтов.
func dominatedResult(winner *models.Record) *models.ReconciliationResult {
	merged := winner.Clone()
	merged.SyncState = models.SyncStateSynced

	return &models.ReconciliationResult{
		Record: merged,
		Clock:  merged.Clock,
	}
}

// causalityViolation обрабатывает расхождение содержимого при равных часах.
// Это ошибка целостности данных: фиксируем обе версии в маркерах и
// закрепляем запись до ручного разрешения. Закрепляемая сторона выбирается
// по канонической сериализации содержимого, а не по порядку аргументов:
// обе реплики, попав в эту ветку, обязаны закрепить одно и то же состояние.
func (e *Engine) causalityViolation(local, remote *models.Record) *models.ReconciliationResult {
	keep := local
	if contentKey(remote) < contentKey(local) {
		keep = remote
	}

	merged := keep.Clone()
	merged.SyncState = models.SyncStateConflicted

	return &models.ReconciliationResult{
		Record: merged,
		Clock:  merged.Clock,
		Conflicts: []models.ConflictMarker{{
			Field:       "record",
			LocalValue:  fmt.Sprintf("status=%s fields=%d", local.Status, len(local.Fields)),
			RemoteValue: fmt.Sprintf("status=%s fields=%d", remote.Status, len(remote.Fields)),
			Reason:      ReasonCausalityViolation,
		}},
		RequiresManualReview: true,
	}
}

// contentKey строит каноническую сериализацию содержимого записи:
// статус и поля в отсортированном порядке имен. Одинакова на всех
// репликах вне зависимости от того, какая сторона local.
func contentKey(r *models.Record) string {
	names := make([]string, 0, len(r.Fields))
	for name := range r.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString(string(r.Status))
	for _, name := range names {
		fv := r.Fields[name]
		fmt.Fprintf(&b, "|%s=%s@%d@%s", name, fv.Value, fv.UpdatedAt.UnixNano(), fv.OriginNodeID)
	}
	return b.String()
}

// resolveConcurrent собирает слитую запись из пофилдового разрешения.
func (e *Engine) resolveConcurrent(local, remote *models.Record) *models.ReconciliationResult {
	resolution := e.resolver.Resolve(local, remote)

	mergedClock := vclock.Increment(vclock.Merge(local.Clock, remote.Clock), e.nodeID)

	merged := &models.Record{
		ID:           local.ID,
		Fields:       resolution.Fields,
		Status:       resolution.Status,
		Clock:        mergedClock,
		UpdatedAt:    laterUpdate(local, remote),
		CreatedAt:    earlierCreate(local, remote),
		OriginNodeID: mergedOrigin(local, remote),
		SyncState:    models.SyncStateSynced,
	}
	if resolution.RequiresManualReview {
		merged.SyncState = models.SyncStateConflicted
	}

	return &models.ReconciliationResult{
		Record:               merged,
		Clock:                mergedClock,
		Conflicts:            resolution.Conflicts,
		RequiresManualReview: resolution.RequiresManualReview,
	}
}

// laterUpdate возвращает позднейшее из времен изменения,
// симметрично относительно порядка аргументов.
func laterUpdate(a, b *models.Record) time.Time {
	if a.UpdatedAt.After(b.UpdatedAt) {
		return a.UpdatedAt
	}
	return b.UpdatedAt
}

// earlierCreate возвращает раннейшее из времен создания.
// Нулевое время одной из сторон игнорируется.
func earlierCreate(a, b *models.Record) time.Time {
	switch {
	case a.CreatedAt.IsZero():
		return b.CreatedAt
	case b.CreatedAt.IsZero():
		return a.CreatedAt
	case a.CreatedAt.Before(b.CreatedAt):
		return a.CreatedAt
	default:
		return b.CreatedAt
	}
}

// mergedOrigin выбирает узел последнего изменения по тому же правилу,
// что и победитель скалярного поля: позднейший UpdatedAt, при равенстве
// лексикографически меньший идентификатор узла.
func mergedOrigin(a, b *models.Record) string {
	if a.UpdatedAt.After(b.UpdatedAt) {
		return a.OriginNodeID
	}
	if b.UpdatedAt.After(a.UpdatedAt) {
		return b.OriginNodeID
	}
	if a.OriginNodeID <= b.OriginNodeID {
		return a.OriginNodeID
	}
	return b.OriginNodeID
}
