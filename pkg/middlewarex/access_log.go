package middlewarex

import (
	"bytes"
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/zenazn/goji/web/mutil"

	"mm_scanner/pkg/logx"
)

// AccessLog пишет одну запись на запрос: маршрут, статус, длительность и
// маскированные тела запроса и ответа. 5xx пишутся как Error, 4xx как Warn.
//
// The trouble with optional interfaces:
// https://blog.merovius.de/posts/2017-07-30-the-trouble-with-optional-interfaces/
func AccessLog(
	sensitiveDataMasker logx.SensitiveDataMaskerInterface,
	logFieldMaxLen int,
) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			start := time.Now()

			requestDump, dumpErr := dumpRequest(r)

			lw := mutil.WrapWriter(w)

			var buf bytes.Buffer

			lw.Tee(&buf)

			next.ServeHTTP(lw, r)

			// без явного WriteHeader mutil отдаёт 0
			status := cmp.Or(lw.Status(), http.StatusOK)

			responseHeaders, err := responseHeaders(w)
			if err != nil {
				logger(ctx).Error("responseHeaders", logx.Error(err))
			}

			attrs := []slog.Attr{
				slog.String(logx.FieldRoute, routePattern(r)),
				slog.Int(logx.FieldResponseStatus, status),
				slog.Int64(logx.FieldDurationMs, time.Since(start).Milliseconds()),
				slog.String(logx.FieldRequestBody, string(sensitiveDataMasker.Mask(truncate(requestDump, logFieldMaxLen)))),
				slog.String(logx.FieldResponseHeaders, string(sensitiveDataMasker.Mask(responseHeaders))),
				slog.String(logx.FieldResponseBody, string(sensitiveDataMasker.Mask(truncate(buf.Bytes(), logFieldMaxLen)))),
			}

			if dumpErr != nil {
				attrs = append(attrs, logx.Error(dumpErr))
			}

			logger(ctx).LogAttrs(context.WithoutCancel(ctx), levelFor(status), logx.FieldHTTPResponse, attrs...)
		})
	}
}

func dumpRequest(r *http.Request) ([]byte, error) {
	withBody := r.Body != nil && r.Body != http.NoBody &&
		!strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data")

	dump, err := httputil.DumpRequest(r, withBody)
	if err != nil {
		return nil, fmt.Errorf("httputil.DumpRequest: %w", err)
	}

	return dump, nil
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}

	return r.URL.Path
}

func levelFor(status int) slog.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return slog.LevelError
	case status >= http.StatusBadRequest:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

func truncate(b []byte, n int) []byte {
	if n > 0 && len(b) > n {
		return b[:n]
	}

	return b
}

func responseHeaders(w http.ResponseWriter) ([]byte, error) {
	var buf bytes.Buffer

	if err := w.Header().WriteSubset(&buf, nil); err != nil {
		return nil, fmt.Errorf("header.WriteSubset: %w", err)
	}

	return buf.Bytes(), nil
}
