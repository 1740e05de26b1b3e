package api

import (
	"errors"
	"fmt"
)

// ErrUnauthorized сервер отверг токен устройства
var ErrUnauthorized = errors.New("unauthorized")

// TransientError помечает временную ошибку (сетевой сбой, таймаут,
// серверная 5xx): планировщик повторит цикл с экспоненциальным backoff,
// журнал операций не трогается.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("transient: %v", e.Err)
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// ValidationError помечает ошибку, которую повтор не исправит
// (сервер отверг запрос как некорректный, 4xx).
type ValidationError struct {
	Err        error
	StatusCode int
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation (%d): %v", e.StatusCode, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// IsTransient сообщает, стоит ли повторять запрос.
func IsTransient(err error) bool {
	var transient *TransientError
	return errors.As(err, &transient)
}
