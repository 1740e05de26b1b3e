package storage

import (
	"context"
	"time"
)

// Credentials учетные данные устройства, выданные сервером при регистрации.
// DeviceSecret хранится локально в открытом виде: планшет отделения
// физически защищен, а секрет дает доступ только к данным смен.
type Credentials struct {
	EnrolledAt   time.Time `json:"enrolled_at"`
	DeviceID     string    `json:"device_id"`
	DeviceName   string    `json:"device_name"`
	DeviceSecret string    `json:"device_secret"`
}

//go:generate moq -out credentials_mock.go . CredentialsStorage

// CredentialsStorage defines interface for storing device credentials
type CredentialsStorage interface {
	// SaveCredentials stores the enrollment result. The device id becomes
	// the node id of this device (vector clock component).
	SaveCredentials(ctx context.Context, creds *Credentials) error

	// GetCredentials retrieves stored credentials
	// Returns ErrNotEnrolled if the device has not been enrolled
	GetCredentials(ctx context.Context) (*Credentials, error)

	// DeleteCredentials removes stored credentials
	DeleteCredentials(ctx context.Context) error
}
