package auth

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vkuzmenko/wardsync/internal/client/storage"
	"github.com/vkuzmenko/wardsync/pkg/api"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func storedCredentials() *storage.Credentials {
	return &storage.Credentials{
		DeviceID:     "device-a",
		DeviceName:   "ward-3-tablet",
		DeviceSecret: "device-secret",
		EnrolledAt:   time.Now(),
	}
}

func TestService_Enroll(t *testing.T) {
	apiMock := &EnrollmentAPIMock{
		EnrollFunc: func(ctx context.Context, req api.EnrollRequest) (*api.EnrollResponse, error) {
			assert.Equal(t, "ward-3-tablet", req.DeviceName)
			assert.Equal(t, "enroll-key", req.EnrollmentKey)
			return &api.EnrollResponse{DeviceID: "device-a", DeviceSecret: "device-secret"}, nil
		},
	}

	var saved *storage.Credentials
	store := &storage.CredentialsStorageMock{
		SaveCredentialsFunc: func(ctx context.Context, creds *storage.Credentials) error {
			saved = creds
			return nil
		},
	}

	svc := NewService(apiMock, store, testLogger())

	creds, err := svc.Enroll(context.Background(), "ward-3-tablet", "enroll-key")
	require.NoError(t, err)
	assert.Equal(t, "device-a", creds.DeviceID)
	assert.Equal(t, "device-secret", creds.DeviceSecret)

	require.NotNil(t, saved)
	assert.Equal(t, "device-a", saved.DeviceID)
	assert.False(t, saved.EnrolledAt.IsZero())
}

func TestService_Enroll_Validation(t *testing.T) {
	svc := NewService(&EnrollmentAPIMock{}, &storage.CredentialsStorageMock{}, testLogger())

	_, err := svc.Enroll(context.Background(), "", "enroll-key")
	assert.Error(t, err)

	_, err = svc.Enroll(context.Background(), "ward-3-tablet", "")
	assert.Error(t, err)
}

func TestService_Enroll_ServerRejected(t *testing.T) {
	apiMock := &EnrollmentAPIMock{
		EnrollFunc: func(ctx context.Context, req api.EnrollRequest) (*api.EnrollResponse, error) {
			return nil, errors.New("invalid enrollment key")
		},
	}
	store := &storage.CredentialsStorageMock{}

	svc := NewService(apiMock, store, testLogger())

	_, err := svc.Enroll(context.Background(), "ward-3-tablet", "wrong-key")
	require.Error(t, err)
	assert.Empty(t, store.SaveCredentialsCalls())
}

func TestService_AccessToken_CachesUntilExpiry(t *testing.T) {
	apiMock := &EnrollmentAPIMock{
		TokenFunc: func(ctx context.Context, req api.TokenRequest) (*api.TokenResponse, error) {
			assert.Equal(t, "device-a", req.DeviceID)
			assert.Equal(t, "device-secret", req.DeviceSecret)
			return &api.TokenResponse{AccessToken: "jwt-token", ExpiresIn: 900}, nil
		},
	}
	store := &storage.CredentialsStorageMock{
		GetCredentialsFunc: func(ctx context.Context) (*storage.Credentials, error) {
			return storedCredentials(), nil
		},
	}

	svc := NewService(apiMock, store, testLogger())

	token, err := svc.AccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "jwt-token", token)

	// Повторный запрос отдает кешированный токен без похода на сервер
	token, err = svc.AccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "jwt-token", token)
	assert.Len(t, apiMock.TokenCalls(), 1)
}

func TestService_AccessToken_RefreshesExpired(t *testing.T) {
	issued := 0
	apiMock := &EnrollmentAPIMock{
		TokenFunc: func(ctx context.Context, req api.TokenRequest) (*api.TokenResponse, error) {
			issued++
			// Токен уже внутри leeway-окна, следующий вызов обновит его
			return &api.TokenResponse{AccessToken: "jwt-token", ExpiresIn: 1}, nil
		},
	}
	store := &storage.CredentialsStorageMock{
		GetCredentialsFunc: func(ctx context.Context) (*storage.Credentials, error) {
			return storedCredentials(), nil
		},
	}

	svc := NewService(apiMock, store, testLogger())

	_, err := svc.AccessToken(context.Background())
	require.NoError(t, err)
	_, err = svc.AccessToken(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, issued)
}

func TestService_AccessToken_NotEnrolled(t *testing.T) {
	store := &storage.CredentialsStorageMock{
		GetCredentialsFunc: func(ctx context.Context) (*storage.Credentials, error) {
			return nil, storage.ErrNotEnrolled
		},
	}

	svc := NewService(&EnrollmentAPIMock{}, store, testLogger())

	_, err := svc.AccessToken(context.Background())
	assert.ErrorIs(t, err, storage.ErrNotEnrolled)
}

func TestService_Forget_DropsCachedToken(t *testing.T) {
	apiMock := &EnrollmentAPIMock{
		TokenFunc: func(ctx context.Context, req api.TokenRequest) (*api.TokenResponse, error) {
			return &api.TokenResponse{AccessToken: "jwt-token", ExpiresIn: 900}, nil
		},
	}
	store := &storage.CredentialsStorageMock{
		GetCredentialsFunc: func(ctx context.Context) (*storage.Credentials, error) {
			return storedCredentials(), nil
		},
		DeleteCredentialsFunc: func(ctx context.Context) error { return nil },
	}

	svc := NewService(apiMock, store, testLogger())

	_, err := svc.AccessToken(context.Background())
	require.NoError(t, err)
	require.NoError(t, svc.Forget(context.Background()))

	_, err = svc.AccessToken(context.Background())
	require.NoError(t, err)
	assert.Len(t, apiMock.TokenCalls(), 2)
}
