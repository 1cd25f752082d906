package reply_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/require"

	"mm_scanner/pkg/contextx"
	"mm_scanner/pkg/errcodes"
	"mm_scanner/pkg/httpx/reply"
)

type codedError struct {
	code errcodes.ErrorCode
}

func (e codedError) Error() string                 { return "coded " + e.code.String() }
func (e codedError) ErrorCode() errcodes.ErrorCode { return e.code }

func TestError(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{
			name:   "plain error",
			err:    errors.New("boom"),
			status: http.StatusInternalServerError,
			code:   "InternalServerError",
		},
		{
			name:   "wrapped not found",
			err:    fmt.Errorf("lookup: %w", codedError{code: errcodes.NotFound}),
			status: http.StatusNotFound,
			code:   "NotFound",
		},
		{
			name:   "scanner running",
			err:    codedError{code: errcodes.ScannerRunning},
			status: http.StatusConflict,
			code:   "ScannerRunning",
		},
		{
			name:   "validation",
			err:    codedError{code: errcodes.ValidationError},
			status: http.StatusBadRequest,
			code:   "ValidationError",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			rq := require.New(t)

			ctx := contextx.WithTraceID(context.Background(), "trace-1")
			rec := httptest.NewRecorder()

			reply.Error(ctx, rec, tc.err)
			rq.Equal(tc.status, rec.Code)

			var body struct {
				Code      string `json:"code"`
				SupportID string `json:"supportId"`
			}
			rq.NoError(jsoniter.Unmarshal(rec.Body.Bytes(), &body))
			rq.Equal(tc.code, body.Code)
			rq.Equal("trace-1", body.SupportID)
		})
	}
}
