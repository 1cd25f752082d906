package reply

import (
	"context"
	"errors"
	"net/http"

	jsoniter "github.com/json-iterator/go"

	"mm_scanner/pkg/contextx"
	"mm_scanner/pkg/errcodes"
	"mm_scanner/pkg/logx"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals // skip

type errorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	SupportID string `json:"supportId"`
}

type coder interface {
	ErrorCode() errcodes.ErrorCode
}

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

func OK(w http.ResponseWriter) {
	w.WriteHeader(http.StatusOK)
}

func Created(w http.ResponseWriter) {
	w.WriteHeader(http.StatusCreated)
}

func JSON(ctx context.Context, w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger(ctx).Error("json.Encode", logx.Error(err))
	}
}

// Error ответ по коду ошибки; ошибки без кода это 500.
func Error(ctx context.Context, w http.ResponseWriter, err error) {
	logger(ctx).Error("error", logx.Error(err))

	code := errcodes.InternalServerError

	var c coder
	if errors.As(err, &c) {
		code = c.ErrorCode()
	}

	response := errorResponse{
		Code:      code.String(),
		Message:   err.Error(),
		SupportID: supportID(ctx),
	}

	if code == errcodes.InternalServerError {
		response.Message = "internal error"
	}

	JSON(ctx, w, StatusFor(code), response)
}

func StatusFor(code errcodes.ErrorCode) int {
	switch code {
	case errcodes.ValidationError, errcodes.InvalidURL, errcodes.InvalidProxy, errcodes.InvalidRegex:
		return http.StatusBadRequest
	case errcodes.NotFound:
		return http.StatusNotFound
	case errcodes.Conflict, errcodes.ScannerRunning, errcodes.ScannerStopped:
		return http.StatusConflict
	case errcodes.TimeoutExceeded:
		return http.StatusGatewayTimeout
	case errcodes.ApiError, errcodes.UnexpectedFormat:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func supportID(ctx context.Context) string {
	traceID, err := contextx.TraceIDFromContext(ctx)
	if err != nil {
		return "unsupported"
	}

	return traceID.String()
}
