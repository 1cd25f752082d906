package domain_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"mm_scanner/internal/domain"
	"mm_scanner/pkg/errcodes"
)

func TestAppError(t *testing.T) {
	rq := require.New(t)

	cause := errors.New("connection reset")
	err := fmt.Errorf("fetch page: %w", domain.WrapError(cause, errcodes.ApiError, "attempts exhausted"))

	rq.True(domain.IsAppError(err))
	rq.True(domain.IsAPIError(err))
	rq.False(domain.IsConfigError(err))
	rq.ErrorIs(err, cause)
	rq.EqualError(err, "fetch page: attempts exhausted: connection reset")

	code, ok := domain.GetCode(err)
	rq.True(ok)
	rq.Equal(errcodes.ApiError, code)
}

func TestIsConfigError(t *testing.T) {
	testCases := []struct {
		name string
		err  error
		want bool
	}{
		{name: "config", err: domain.NewError(errcodes.ConfigError, "bad"), want: true},
		{name: "proxy", err: domain.NewError(errcodes.InvalidProxy, "bad"), want: true},
		{name: "regex", err: domain.NewError(errcodes.InvalidRegex, "bad"), want: true},
		{name: "api", err: domain.NewError(errcodes.ApiError, "bad"), want: false},
		{name: "plain", err: errors.New("plain"), want: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, domain.IsConfigError(tc.err))
		})
	}
}
