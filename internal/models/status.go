package models

// Status представляет статус задачи передачи смены.
// Домен конечный, граф переходов фиксированный: движение только вперед,
// назад можно только через явный reopen-переход.
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
	StatusCancelled  Status = "CANCELLED"
)

// statusRank позиция статуса на основной цепочке
// PENDING -> IN_PROGRESS -> COMPLETED.
// CANCELLED вне цепочки и ни с чем не сравним.
var statusRank = map[Status]int{
	StatusPending:    0,
	StatusInProgress: 1,
	StatusCompleted:  2,
}

// statusTransitions допустимые переходы графа.
// COMPLETED -> IN_PROGRESS и CANCELLED -> PENDING: явные reopen-переходы.
var statusTransitions = map[Status][]Status{
	StatusPending:    {StatusInProgress, StatusCancelled},
	StatusInProgress: {StatusCompleted, StatusCancelled},
	StatusCompleted:  {StatusInProgress},
	StatusCancelled:  {StatusPending},
}

// Known сообщает, известен ли статус графу переходов.
// Неизвестный статус означает данные от несовместимой версии клиента:
// все проверки по нему обязаны завершаться отказом, а не угадыванием.
func (s Status) Known() bool {
	_, ok := statusTransitions[s]
	return ok
}

// CanTransition проверяет допустимость перехода from -> to.
// Переход в тот же статус считается допустимым (идемпотентная запись).
func CanTransition(from, to Status) bool {
	if !from.Known() || !to.Known() {
		return false
	}
	if from == to {
		return true
	}
	for _, next := range statusTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// FurtherAlong сравнивает два статуса по основной цепочке графа.
// Возвращает статус, который строго дальше по цепочке, и ok = true.
// Если статусы несравнимы (один из них CANCELLED и они различаются,
// либо статус неизвестен), то ok = false: выбор между ними не детерминирован
// политикой и требует ручного разрешения.
func FurtherAlong(a, b Status) (Status, bool) {
	if a == b {
		return a, true
	}

	rankA, okA := statusRank[a]
	rankB, okB := statusRank[b]
	if !okA || !okB {
		return "", false
	}

	if rankA > rankB {
		return a, true
	}
	return b, true
}
