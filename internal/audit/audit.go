package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/vkuzmenko/wardsync/internal/models"
)

// Outcome представляет исход реконсиляции для аудиторского следа.
type Outcome string

const (
	// OutcomeMerged слияние прошло без разногласий или разрешилось политикой
	OutcomeMerged Outcome = "merged"
	// OutcomeConflicted запись закреплена до ручного разрешения
	OutcomeConflicted Outcome = "conflicted"
	// OutcomeRejected операция отклонена валидацией и перенесена в карантин
	OutcomeRejected Outcome = "rejected"
)

// Event представляет одну аудиторскую запись о реконсиляции.
// След обязателен для каждого слияния и каждого конфликта:
// внешнее хранилище аудита вне зоны ответственности этого ядра.
type Event struct {
	Timestamp time.Time               `json:"timestamp"`
	RecordID  string                  `json:"record_id"`
	DeviceID  string                  `json:"device_id"`
	Outcome   Outcome                 `json:"outcome"`
	Detail    string                  `json:"detail,omitempty"`
	Conflicts []models.ConflictMarker `json:"conflicts,omitempty"`
}

//go:generate moq -out sink_mock.go . Sink

// Sink принимает аудиторские события. Реализация не должна блокировать
// цикл синхронизации дольше необходимого: событие уже содержит все
// данные, откладывать запись можно.
type Sink interface {
	Emit(ctx context.Context, event Event) error
}

// SlogSink пишет аудиторские события в структурированный лог.
// Используется как сток по умолчанию и в тестах.
type SlogSink struct {
	logger *slog.Logger
}

// NewSlogSink создает сток аудита поверх slog.
func NewSlogSink(logger *slog.Logger) *SlogSink {
	return &SlogSink{logger: logger}
}

// Emit пишет событие одной записью лога.
func (s *SlogSink) Emit(_ context.Context, event Event) error {
	s.logger.Info("audit",
		"record_id", event.RecordID,
		"device_id", event.DeviceID,
		"outcome", string(event.Outcome),
		"conflicts", len(event.Conflicts),
		"detail", event.Detail,
		"timestamp", event.Timestamp,
	)
	return nil
}
