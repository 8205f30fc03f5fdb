package domain

import "errors"

// Ошибки предметной области. Хранилища оборачивают ошибки драйверов в эти значения,
// HTTP-слой сопоставляет их с кодами ответа.
var (
	ErrValidation   = errors.New("validation failed")
	ErrUserNotFound = errors.New("user not found")
	ErrConflict     = errors.New("user conflicts with existing data")
	ErrUnavailable  = errors.New("storage unavailable")
)
