package state

import "UniversalInbox/internal/cli/validate"

// Ошибки проверки ввода. Только они возвращаются вызывающему синхронно;
// ошибки сохранения поглощаются фоновыми задачами.
var (
	ErrEmptyInput        = validate.ErrEmpty
	ErrTooLong           = validate.ErrTooLong
	ErrInvalidCredential = validate.ErrInvalidCredential
)
