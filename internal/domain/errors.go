package domain

import (
	"errors"
	"fmt"

	"mm_scanner/pkg/errcodes"
)

// AppError представляет доменную ошибку приложения.
type AppError struct {
	Code    errcodes.ErrorCode
	Message string
	cause   error
}

// Error реализует интерфейс error.
func (e *AppError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap возвращает обёрнутую ошибку для errors.Is/As.
func (e *AppError) Unwrap() error {
	return e.cause
}

// ErrorCode нужен pkg/httpx/reply, который не знает про domain.
func (e *AppError) ErrorCode() errcodes.ErrorCode {
	return e.Code
}

// NewError создаёт новую доменную ошибку.
func NewError(code errcodes.ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// WrapError оборачивает существующую ошибку с доменным контекстом.
func WrapError(err error, code errcodes.ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		cause:   err,
	}
}

// IsAppError проверяет, является ли ошибка доменной.
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetCode извлекает код ошибки, если это AppError.
func GetCode(err error) (errcodes.ErrorCode, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code, true
	}
	return "", false
}

// IsAPIError сообщает, что запрос к upstream исчерпал все попытки.
func IsAPIError(err error) bool {
	code, ok := GetCode(err)
	return ok && code == errcodes.ApiError
}

// IsConfigError сообщает о фатальной ошибке конфигурации.
func IsConfigError(err error) bool {
	code, ok := GetCode(err)
	if !ok {
		return false
	}

	switch code {
	case errcodes.ConfigError, errcodes.InvalidProxy, errcodes.InvalidRegex, errcodes.InvalidURL:
		return true
	default:
		return false
	}
}
