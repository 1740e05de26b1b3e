package auth

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/vkuzmenko/wardsync/internal/client/storage"
	"github.com/vkuzmenko/wardsync/pkg/api"
)

// tokenLeeway запас до истечения токена, после которого он считается
// протухшим и запрашивается заново
const tokenLeeway = 30 * time.Second

//go:generate moq -out enrollment_api_mock.go . EnrollmentAPI

// EnrollmentAPI определяет неаутентифицированную часть транспорта:
// регистрацию устройства и выдачу токена по секрету.
type EnrollmentAPI interface {
	Enroll(ctx context.Context, req api.EnrollRequest) (*api.EnrollResponse, error)
	Token(ctx context.Context, req api.TokenRequest) (*api.TokenResponse, error)
}

//go:generate moq -out service_mock.go . Service

// Service defines the interface for device enrollment and token management.
// Устройство регистрируется один раз по ключу регистрации, после чего
// получает access-токены по своему секрету без участия персонала.
type Service interface {
	// Enroll регистрирует устройство на сервере и сохраняет выданные
	// учетные данные локально
	Enroll(ctx context.Context, deviceName, enrollmentKey string) (*storage.Credentials, error)

	// AccessToken возвращает действующий access token, запрашивая новый
	// при истечении срока. Сигнатура совместима с scheduler.TokenFunc.
	AccessToken(ctx context.Context) (string, error)

	// Credentials возвращает сохраненные учетные данные устройства
	// Returns storage.ErrNotEnrolled if the device has not been enrolled
	Credentials(ctx context.Context) (*storage.Credentials, error)

	// Forget удаляет локальные учетные данные устройства
	Forget(ctx context.Context) error
}

type service struct {
	tokenExp  time.Time
	apiClient EnrollmentAPI
	store     storage.CredentialsStorage
	logger    *slog.Logger
	token     string
	mu        sync.Mutex
}

// NewService creates a new device auth service
func NewService(apiClient EnrollmentAPI, store storage.CredentialsStorage, logger *slog.Logger) Service {
	return &service{
		apiClient: apiClient,
		store:     store,
		logger:    logger,
	}
}

func (s *service) Enroll(ctx context.Context, deviceName, enrollmentKey string) (*storage.Credentials, error) {
	if deviceName == "" {
		return nil, fmt.Errorf("device name cannot be empty")
	}
	if enrollmentKey == "" {
		return nil, fmt.Errorf("enrollment key cannot be empty")
	}

	resp, err := s.apiClient.Enroll(ctx, api.EnrollRequest{
		DeviceName:    deviceName,
		EnrollmentKey: enrollmentKey,
	})
	if err != nil {
		return nil, fmt.Errorf("enrollment failed: %w", err)
	}

	creds := &storage.Credentials{
		DeviceID:     resp.DeviceID,
		DeviceName:   deviceName,
		DeviceSecret: resp.DeviceSecret,
		EnrolledAt:   time.Now(),
	}
	if err := s.store.SaveCredentials(ctx, creds); err != nil {
		return nil, fmt.Errorf("failed to save credentials: %w", err)
	}

	s.logger.Info("device enrolled",
		"device_id", creds.DeviceID,
		"device_name", deviceName)

	return creds, nil
}

// AccessToken возвращает кешированный токен, пока тот действителен.
// Обновление сериализовано мьютексом: параллельные циклы синхронизации
// не устраивают шторм запросов токена.
func (s *service) AccessToken(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token != "" && time.Now().Before(s.tokenExp.Add(-tokenLeeway)) {
		return s.token, nil
	}

	creds, err := s.store.GetCredentials(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to load credentials: %w", err)
	}

	resp, err := s.apiClient.Token(ctx, api.TokenRequest{
		DeviceID:     creds.DeviceID,
		DeviceSecret: creds.DeviceSecret,
	})
	if err != nil {
		return "", fmt.Errorf("failed to obtain access token: %w", err)
	}

	s.token = resp.AccessToken
	s.tokenExp = time.Now().Add(time.Duration(resp.ExpiresIn) * time.Second)

	s.logger.Debug("access token refreshed",
		"device_id", creds.DeviceID,
		"expires_in", resp.ExpiresIn)

	return s.token, nil
}

func (s *service) Credentials(ctx context.Context) (*storage.Credentials, error) {
	return s.store.GetCredentials(ctx)
}

func (s *service) Forget(ctx context.Context) error {
	s.mu.Lock()
	s.token = ""
	s.tokenExp = time.Time{}
	s.mu.Unlock()

	return s.store.DeleteCredentials(ctx)
}
