// Package apperrors описывает типизированные ошибки сервисов и их HTTP-коды.
package apperrors

import (
	"errors"
	"net/http"
)

// Kind — вид ошибки
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
	KindInvalidOperation
)

// Error — ошибка сервиса с видом и сообщением для клиента
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Status возвращает HTTP-код для вида ошибки
func (e *Error) Status() int {
	switch e.Kind {
	case KindValidation, KindInvalidOperation:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage возвращает текст, который можно отдать клиенту.
// Причина внутренних ошибок наружу не выходит.
func (e *Error) PublicMessage() string {
	return e.Message
}

func Validation(msg string) *Error       { return &Error{Kind: KindValidation, Message: msg} }
func Unauthorized(msg string) *Error     { return &Error{Kind: KindUnauthorized, Message: msg} }
func Forbidden(msg string) *Error        { return &Error{Kind: KindForbidden, Message: msg} }
func NotFound(msg string) *Error         { return &Error{Kind: KindNotFound, Message: msg} }
func Conflict(msg string) *Error         { return &Error{Kind: KindConflict, Message: msg} }
func InvalidOperation(msg string) *Error { return &Error{Kind: KindInvalidOperation, Message: msg} }

// Wrap оборачивает ошибку хранилища во внутреннюю ошибку
func Wrap(err error, msg string) *Error {
	return &Error{Kind: KindInternal, Message: msg, Err: err}
}

// KindOf возвращает вид ошибки; для чужих ошибок — KindInternal
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}
