package vclock

import (
	"fmt"
	"sort"
	"strings"
)

// Ordering представляет результат сравнения двух векторных часов.
type Ordering int

const (
	// Before часы a причинно предшествуют часам b
	Before Ordering = iota
	// After часы a причинно следуют за часами b
	After
	// Equal часы идентичны по всем компонентам
	Equal
	// Concurrent ни одни часы не доминируют: конкурентные изменения
	Concurrent
)

// String возвращает текстовое представление результата сравнения.
func (o Ordering) String() string {
	switch o {
	case Before:
		return "before"
	case After:
		return "after"
	case Equal:
		return "equal"
	case Concurrent:
		return "concurrent"
	default:
		return fmt.Sprintf("ordering(%d)", int(o))
	}
}

// VectorClock представляет векторные часы записи: отображение
// идентификатора узла (устройства) в монотонно растущий счетчик.
// Все операции чистые: исходные часы никогда не мутируются,
// отсутствующий ключ трактуется как счетчик 0. Nil и пустая map
// эквивалентны. Это единственный компонент, которому запрещено
// обращаться к физическому времени.
type VectorClock map[string]uint64

// New создает пустые векторные часы.
func New() VectorClock {
	return VectorClock{}
}

// Get возвращает счетчик узла (0, если узел не наблюдался).
func (c VectorClock) Get(nodeID string) uint64 {
	return c[nodeID]
}

// Clone создает глубокую копию часов.
func (c VectorClock) Clone() VectorClock {
	clone := make(VectorClock, len(c))
	for node, counter := range c {
		clone[node] = counter
	}
	return clone
}

// Compare определяет причинно-следственное отношение между a и b.
// Сравнение покомпонентное по объединению ключей обеих map:
// Before, если каждый компонент a <= b и хотя бы один строго меньше;
// After симметричен Before; при Equal все компоненты совпадают;
// иначе Concurrent.
func Compare(a, b VectorClock) Ordering {
	var less, greater bool

	for node, av := range a {
		bv := b[node]
		if av < bv {
			less = true
		}
		if av > bv {
			greater = true
		}
	}
	// Узлы, которых нет в a, трактуются как 0 со стороны a.
	for node, bv := range b {
		if _, ok := a[node]; ok {
			continue
		}
		if bv > 0 {
			less = true
		}
	}

	switch {
	case less && greater:
		return Concurrent
	case less:
		return Before
	case greater:
		return After
	default:
		return Equal
	}
}

// Merge возвращает новые часы c, где c[node] = max(a[node], b[node])
// по объединению ключей. Операция коммутативна, ассоциативна и идемпотентна.
func Merge(a, b VectorClock) VectorClock {
	merged := make(VectorClock, len(a)+len(b))
	for node, counter := range a {
		merged[node] = counter
	}
	for node, counter := range b {
		if counter > merged[node] {
			merged[node] = counter
		}
	}
	return merged
}

// Increment возвращает копию часов с компонентом nodeID, увеличенным на 1.
// Исходные часы не изменяются.
func Increment(c VectorClock, nodeID string) VectorClock {
	next := c.Clone()
	next[nodeID]++
	return next
}

// Dominates сообщает, причинно доминируют ли часы c над other
// (т.е. c наблюдали все записи other).
func (c VectorClock) Dominates(other VectorClock) bool {
	ord := Compare(c, other)
	return ord == After || ord == Equal
}

// String возвращает каноническое представление для логов:
// узлы в лексикографическом порядке, независимо от порядка map.
func (c VectorClock) String() string {
	if len(c) == 0 {
		return "{}"
	}

	nodes := make([]string, 0, len(c))
	for node := range c {
		nodes = append(nodes, node)
	}
	sort.Strings(nodes)

	var sb strings.Builder
	sb.WriteByte('{')
	for i, node := range nodes {
		if i > 0 {
			sb.WriteByte(',')
		}
		fmt.Fprintf(&sb, "%s:%d", node, c[node])
	}
	sb.WriteByte('}')
	return sb.String()
}
