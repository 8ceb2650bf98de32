// Package validate проверяет и очищает пользовательский ввод перед созданием записей.
package validate

import (
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxItemLength: ограничение на длину одной заметки (в символах).
const MaxItemLength = 10000

// MaxCredentialLength: ограничение на длину API-ключа (в байтах).
const MaxCredentialLength = 512

var (
	// ErrEmpty возвращается, если после обрезки пробелов текст пуст.
	ErrEmpty = errors.New("please enter some text")
	// ErrTooLong возвращается, если текст превышает допустимую длину.
	ErrTooLong = errors.New("text is too long")
	// ErrInvalidCredential: ключ содержит недопустимые символы или слишком длинный.
	ErrInvalidCredential = errors.New("invalid credential")
)

// Validator хранит политику проверки текста.
type Validator struct {
	MaxLength int
}

// New создаёт валидатор с пределом limit; limit <= 0 означает MaxItemLength.
func New(maxLength int) Validator {
	if maxLength <= 0 {
		maxLength = MaxItemLength
	}
	return Validator{MaxLength: maxLength}
}

// Sanitize обрезает пробелы, проверяет длину и удаляет управляющие символы.
// Переводы строк и табуляция сохраняются.
func (v Validator) Sanitize(text string) (string, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "", ErrEmpty
	}
	limit := v.MaxLength
	if limit <= 0 {
		limit = MaxItemLength
	}
	if utf8.RuneCountInString(trimmed) > limit {
		return "", ErrTooLong
	}
	clean := strings.TrimSpace(strings.Map(func(r rune) rune {
		if r == '\n' || r == '\r' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, trimmed))
	if clean == "" {
		return "", ErrEmpty
	}
	return clean, nil
}

// Credential проверяет API-ключ. Пустая строка допустима и означает удаление ключа.
func Credential(value string) (string, error) {
	trimmed := strings.TrimSpace(value)
	if len(trimmed) > MaxCredentialLength {
		return "", ErrInvalidCredential
	}
	for _, r := range trimmed {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return "", ErrInvalidCredential
		}
	}
	return trimmed, nil
}
