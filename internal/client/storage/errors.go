package storage

import "errors"

// Common client storage errors
var (
	// ErrRecordNotFound indicates that record was not found in local storage
	ErrRecordNotFound = errors.New("record not found")

	// ErrOperationNotFound indicates that operation was not found in the log
	ErrOperationNotFound = errors.New("operation not found")

	// ErrBackpressureExceeded очередь несинхронизированных операций достигла
	// настроенного предела; запись отклонена, чтобы журнал не рос неограниченно
	// на устройстве с ограниченным хранилищем
	ErrBackpressureExceeded = errors.New("operation log backpressure exceeded")

	// ErrNotEnrolled indicates that the device has no stored credentials yet
	ErrNotEnrolled = errors.New("device is not enrolled")
)
