package contextx

import (
	"context"
	"fmt"

	"github.com/rs/xid"
)

// TraceID связывает логи одного HTTP-запроса или одного обхода URL.
type TraceID string

type contextKeyTraceID struct{}

func (t TraceID) String() string {
	return string(t)
}

func NewTraceID() TraceID {
	return TraceID(xid.New().String())
}

// ParseTraceID принимает только id в формате xid, иначе ok=false.
func ParseTraceID(raw string) (TraceID, bool) {
	id, err := xid.FromString(raw)
	if err != nil {
		return "", false
	}

	return TraceID(id.String()), true
}

func WithTraceID(ctx context.Context, traceID TraceID) context.Context {
	return context.WithValue(ctx, contextKeyTraceID{}, traceID)
}

func TraceIDFromContext(ctx context.Context) (TraceID, error) {
	traceID, ok := ctx.Value(contextKeyTraceID{}).(TraceID)
	if !ok {
		return "", fmt.Errorf("trace id: %w", ErrNoValue)
	}

	return traceID, nil
}
