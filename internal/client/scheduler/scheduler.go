package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/vkuzmenko/wardsync/internal/client/session"
)

// StatusKind классифицирует исход цикла для внешних наблюдателей
type StatusKind string

const (
	// SyncCompleted цикл завершен, изменения закоммичены
	SyncCompleted StatusKind = "SYNC_COMPLETED"
	// SyncDeferred повторы исчерпаны на временной ошибке; цикл отложен
	// до следующего тика или триггера
	SyncDeferred StatusKind = "SYNC_DEFERRED"
	// SyncFailed цикл упал на ошибке, которую повтор не исправит
	SyncFailed StatusKind = "SYNC_FAILED"
	// SyncEngineDegraded подряд несколько циклов падают на локальном
	// хранилище: движок синхронизации неработоспособен, требуется
	// вмешательство
	SyncEngineDegraded StatusKind = "SYNC_ENGINE_DEGRADED"
)

// Status представляет сигнал о состоянии синхронизации.
// Доставка best-effort: сигнал отбрасывается, если никто не слушает,
// воркер никогда не блокируется на наблюдателях.
type Status struct {
	Kind   StatusKind
	Err    error
	Result *session.Result
}

// CycleResult представляет исход одного принудительного цикла
type CycleResult struct {
	Result *session.Result
	Err    error
}

// ErrForceSyncPending принудительный цикл уже запрошен и еще не начался
var ErrForceSyncPending = errors.New("force sync already pending")

// TokenFunc выдает access token для цикла синхронизации.
// Вызывается на каждую попытку: токен мог истечь между повторами.
type TokenFunc func(ctx context.Context) (string, error)

// Config конфигурирует планировщик
type Config struct {
	Session        session.Session
	Tokens         TokenFunc
	Logger         *slog.Logger
	Interval       time.Duration // период фоновых циклов
	InitialBackoff time.Duration // стартовая задержка повтора
	MaxRetries     uint64        // количество повторов после первой попытки
}

const (
	DefaultInterval       = 30 * time.Second
	DefaultInitialBackoff = time.Second
	DefaultMaxRetries     = 4

	// degradedThreshold столько фатальных циклов подряд переводят
	// движок в состояние degraded
	degradedThreshold = 3
)

// Scheduler запускает циклы синхронизации: периодически по тикеру и
// по требованию через ForceSync. Все циклы выполняет один фоновый
// воркер, поэтому одновременно идет не более одной сессии.
type Scheduler struct {
	session        session.Session
	tokens         TokenFunc
	logger         *slog.Logger
	interval       time.Duration
	initialBackoff time.Duration
	maxRetries     uint64

	trigger chan chan CycleResult
	status  chan Status

	fatalStreak int
}

// New creates a new sync scheduler
func New(cfg Config) *Scheduler {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = DefaultInitialBackoff
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}
	return &Scheduler{
		session:        cfg.Session,
		tokens:         cfg.Tokens,
		logger:         cfg.Logger,
		interval:       cfg.Interval,
		initialBackoff: cfg.InitialBackoff,
		maxRetries:     cfg.MaxRetries,
		trigger:        make(chan chan CycleResult, 1),
		status:         make(chan Status, 8),
	}
}

// Status возвращает канал сигналов о состоянии синхронизации
func (s *Scheduler) Status() <-chan Status {
	return s.status
}

// ForceSync запрашивает немедленный цикл синхронизации и возвращает
// канал с исходом именно этого цикла. Если принудительный цикл уже
// запрошен, возвращается ErrForceSyncPending.
func (s *Scheduler) ForceSync() (<-chan CycleResult, error) {
	resultCh := make(chan CycleResult, 1)
	select {
	case s.trigger <- resultCh:
		return resultCh, nil
	default:
		return nil, ErrForceSyncPending
	}
}

// Run запускает воркер планировщика и блокируется до отмены контекста.
// Отмена контекста во время цикла чисто прерывает передачу: журнал
// операций не тронут, недоставленные операции уйдут в следующем цикле.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("Sync scheduler started",
		"interval", s.interval,
		"max_retries", s.maxRetries)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Sync scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
			s.runCycle(ctx, nil)
		case resultCh := <-s.trigger:
			s.runCycle(ctx, resultCh)
			// Принудительный цикл сдвигает следующий фоновый тик
			ticker.Reset(s.interval)
		}
	}
}

// runCycle выполняет один цикл с повторами на временных ошибках
func (s *Scheduler) runCycle(ctx context.Context, resultCh chan CycleResult) {
	var result *session.Result

	backoff := retry.WithMaxRetries(s.maxRetries,
		retry.WithJitter(s.initialBackoff/2,
			retry.NewExponential(s.initialBackoff)))

	attempt := 0
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++

		token, err := s.tokens(ctx)
		if err != nil {
			// Получение токена ходит по сети и повторяемо
			return retry.RetryableError(fmt.Errorf("failed to obtain access token: %w", err))
		}

		res, err := s.session.Run(ctx, token)
		if err != nil {
			if errors.Is(err, session.ErrSyncDeferred) {
				s.logger.Warn("Sync cycle deferred, will retry",
					"attempt", attempt, "error", err)
				return retry.RetryableError(err)
			}
			return err
		}

		result = res
		return nil
	})

	outcome := s.classify(ctx, err, result)
	if resultCh != nil {
		resultCh <- CycleResult{Result: result, Err: err}
	}
	if outcome != nil {
		s.emit(*outcome)
	}
}

// classify переводит исход цикла в сигнал статуса и ведет счетчик
// подряд идущих фатальных сбоев
func (s *Scheduler) classify(ctx context.Context, err error, result *session.Result) *Status {
	switch {
	case err == nil:
		s.fatalStreak = 0
		return &Status{Kind: SyncCompleted, Result: result}

	case ctx.Err() != nil || errors.Is(err, session.ErrSyncAborted):
		// Остановка планировщика не считается сбоем
		return nil

	case errors.Is(err, session.ErrSyncDeferred):
		s.logger.Warn("Sync deferred after exhausting retries", "error", err)
		return &Status{Kind: SyncDeferred, Err: err}

	default:
		s.fatalStreak++
		s.logger.Error("Sync cycle failed",
			"consecutive_failures", s.fatalStreak,
			"error", err)
		if s.fatalStreak >= degradedThreshold {
			return &Status{Kind: SyncEngineDegraded, Err: err}
		}
		return &Status{Kind: SyncFailed, Err: err}
	}
}

func (s *Scheduler) emit(status Status) {
	select {
	case s.status <- status:
	default:
		s.logger.Debug("Status signal dropped, no listener", "kind", string(status.Kind))
	}
}
