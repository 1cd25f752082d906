package middlewarex

import (
	"net/http"

	"mm_scanner/pkg/contextx"
)

const HeaderTraceID = "X-Trace-Id"

// TraceID берёт trace id из заголовка, если он в формате xid, иначе выдаёт новый.
func TraceID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID, ok := contextx.ParseTraceID(r.Header.Get(HeaderTraceID))
		if !ok {
			traceID = contextx.NewTraceID()
		}

		w.Header().Set(HeaderTraceID, traceID.String())

		next.ServeHTTP(w, r.WithContext(contextx.WithTraceID(r.Context(), traceID)))
	})
}
