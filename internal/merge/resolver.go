package merge

import (
	"sort"

	"github.com/vkuzmenko/wardsync/internal/models"
)

// Причины выбора победителя в маркерах конфликтов.
// Попадают в аудиторский след, формат стабильный.
const (
	ReasonNewerTimestamp     = "newer_timestamp"
	ReasonNodeIDTieBreak     = "node_id_tie_break"
	ReasonFurtherAlongGraph  = "further_along_graph"
	ReasonStatusIncomparable = "status_incomparable"
	ReasonUnknownStatus      = "unknown_status"
	ReasonCausalityViolation = "causality_violation"
)

// Resolution результат пофилдового разрешения конкурентных версий.
type Resolution struct {
	Fields               map[string]models.FieldValue
	Status               models.Status
	Conflicts            []models.ConflictMarker
	RequiresManualReview bool
}

// Resolver кодирует доменную политику разрешения конкурентных правок.
// Вызывается движком слияния только когда часы конкурентны.
type Resolver struct{}

// NewResolver создает resolver с фиксированной политикой.
func NewResolver() *Resolver {
	return &Resolver{}
}

// Resolve выполняет пофилдовое слияние двух конкурентных версий записи.
//
// Скалярные поля: побеждает значение с большим UpdatedAt; при точном
// равенстве времен берется значение с лексикографически МЕНЬШИМ OriginNodeID.
// Правило не зависит от того, какая реплика выполняет слияние, и никогда
// не обращается к текущему времени.
//
// Поле, присутствующее только на одной стороне, считается настоящим
// добавлением и сохраняется без конфликта.
//
// Статус: сравнивается по графу переходов. Сравнимые предложения
// разрешаются в пользу более дальнего по цепочке; несравнимые
// (например, CANCELLED против COMPLETED) никогда не авторазрешаются,
// запись уходит на ручное разрешение. Неизвестный статус приводит
// к отказу всей записи (fail closed), а не к угадыванию.
func (r *Resolver) Resolve(local, remote *models.Record) Resolution {
	res := Resolution{
		Fields: make(map[string]models.FieldValue, len(local.Fields)+len(remote.Fields)),
	}

	for _, name := range unionFieldNames(local, remote) {
		lv, hasLocal := local.Fields[name]
		rv, hasRemote := remote.Fields[name]

		switch {
		case hasLocal && !hasRemote:
			res.Fields[name] = lv
		case hasRemote && !hasLocal:
			res.Fields[name] = rv
		default:
			winner, reason, localWins := pickFieldWinner(lv, rv)
			res.Fields[name] = winner

			if lv.Value == rv.Value {
				// Одинаковые значения конфликтом не считаются
				continue
			}

			marker := models.ConflictMarker{
				Field:       name,
				LocalValue:  lv.Value,
				RemoteValue: rv.Value,
				Reason:      reason,
			}
			if localWins {
				marker.Winner = "local"
			} else {
				marker.Winner = "remote"
			}
			res.Conflicts = append(res.Conflicts, marker)
		}
	}

	res.Status, res.Conflicts, res.RequiresManualReview =
		r.resolveStatus(local, remote, res.Conflicts)

	// Маркеры в детерминированном порядке независимо от обхода map
	sort.Slice(res.Conflicts, func(i, j int) bool {
		return res.Conflicts[i].Field < res.Conflicts[j].Field
	})

	return res
}

// resolveStatus применяет статусную часть политики.
func (r *Resolver) resolveStatus(
	local, remote *models.Record,
	conflicts []models.ConflictMarker,
) (models.Status, []models.ConflictMarker, bool) {
	ls, rs := local.Status, remote.Status

	if !ls.Known() || !rs.Known() {
		// Неизвестный статус: отказ всей записи без угадывания
		conflicts = append(conflicts, models.ConflictMarker{
			Field:       "status",
			LocalValue:  string(ls),
			RemoteValue: string(rs),
			Reason:      ReasonUnknownStatus,
		})
		return pinnedStatus(ls, rs), conflicts, true
	}

	if ls == rs {
		return ls, conflicts, false
	}

	further, ok := models.FurtherAlong(ls, rs)
	if !ok {
		// Несравнимые переходы (отмена против завершения) не
		// авторазрешаются: цена ошибки клиническая
		conflicts = append(conflicts, models.ConflictMarker{
			Field:       "status",
			LocalValue:  string(ls),
			RemoteValue: string(rs),
			Reason:      ReasonStatusIncomparable,
		})
		return pinnedStatus(ls, rs), conflicts, true
	}

	marker := models.ConflictMarker{
		Field:       "status",
		LocalValue:  string(ls),
		RemoteValue: string(rs),
		Reason:      ReasonFurtherAlongGraph,
	}
	if further == ls {
		marker.Winner = "local"
	} else {
		marker.Winner = "remote"
	}
	conflicts = append(conflicts, marker)

	return further, conflicts, false
}

// pickFieldWinner выбирает победителя для скалярного поля.
// Возвращает победившее значение, причину и признак победы локальной стороны.
func pickFieldWinner(lv, rv models.FieldValue) (models.FieldValue, string, bool) {
	if lv.UpdatedAt.After(rv.UpdatedAt) {
		return lv, ReasonNewerTimestamp, true
	}
	if rv.UpdatedAt.After(lv.UpdatedAt) {
		return rv, ReasonNewerTimestamp, false
	}

	// Точное равенство времен: лексикографически меньший узел побеждает.
	// Сравнение реплико-независимое, в отличие от "последний на этом
	// устройстве" или wall-clock now().
	if lv.OriginNodeID <= rv.OriginNodeID {
		return lv, ReasonNodeIDTieBreak, true
	}
	return rv, ReasonNodeIDTieBreak, false
}

// pinnedStatus детерминированный статус-заглушка для записи,
// закрепленной в CONFLICTED: лексикографически меньший из двух,
// одинаковый на всех репликах. Реальный выбор делает внешний актор.
func pinnedStatus(a, b models.Status) models.Status {
	if a <= b {
		return a
	}
	return b
}

// unionFieldNames возвращает отсортированное объединение имен полей.
func unionFieldNames(local, remote *models.Record) []string {
	seen := make(map[string]struct{}, len(local.Fields)+len(remote.Fields))
	for name := range local.Fields {
		seen[name] = struct{}{}
	}
	for name := range remote.Fields {
		seen[name] = struct{}{}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
