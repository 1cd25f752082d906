package errcodes

type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

const (
	InternalServerError ErrorCode = "InternalServerError"
	TimeoutExceeded     ErrorCode = "TimeoutExceeded"
	ValidationError     ErrorCode = "ValidationError"
	NotFound            ErrorCode = "NotFound"
	Conflict            ErrorCode = "Conflict"

	// Конфигурация: фатально на старте
	ConfigError  ErrorCode = "ConfigError"
	InvalidProxy ErrorCode = "InvalidProxy"
	InvalidRegex ErrorCode = "InvalidRegex"
	InvalidURL   ErrorCode = "InvalidURL"

	// Upstream
	ApiError         ErrorCode = "ApiError"         // исчерпаны попытки запроса
	UnexpectedFormat ErrorCode = "UnexpectedFormat" // ответ не того формата
	ScannerRunning   ErrorCode = "ScannerRunning"
	ScannerStopped   ErrorCode = "ScannerStopped"
)
