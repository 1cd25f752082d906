package megamarket_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"mm_scanner/internal/domain"
	"mm_scanner/internal/infrastructure/egress"
	"mm_scanner/internal/infrastructure/megamarket"
)

// newClient пул из direct и прокси, указывающего на сам тестовый сервер:
// оба пути приходят в один и тот же handler.
func newClient(t *testing.T, srv *httptest.Server, opts megamarket.Options) (*megamarket.RequestClient, *egress.Pool) {
	t.Helper()

	u, err := url.Parse(srv.URL)
	require.NoError(t, err)

	proxies, err := egress.Build([]string{"http://" + u.Host}, true)
	require.NoError(t, err)

	pool, err := egress.NewPool(proxies)
	require.NoError(t, err)

	opts.BaseURL = srv.URL + "/api/"

	return megamarket.NewRequestClient(pool, opts, nil), pool
}

func directClient(t *testing.T, srv *httptest.Server, opts megamarket.Options) *megamarket.RequestClient {
	t.Helper()

	pool, err := egress.NewPool([]egress.Proxy{egress.DirectProxy()})
	require.NoError(t, err)

	opts.BaseURL = srv.URL + "/api/"

	return megamarket.NewRequestClient(pool, opts, nil)
}

func TestRequestClientInFlightBoundedByPool(t *testing.T) {
	rq := require.New(t)

	var inFlight, maxInFlight atomic.Int64

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		n := inFlight.Add(1)
		defer inFlight.Add(-1)

		for {
			current := maxInFlight.Load()
			if n <= current || maxInFlight.CompareAndSwap(current, n) {
				break
			}
		}

		time.Sleep(30 * time.Millisecond)
		_, _ = io.WriteString(w, `{"success":true,"value":1}`)
	}))
	defer srv.Close()

	client, pool := newClient(t, srv, megamarket.Options{MaxAttempts: 3})
	rq.Equal(2, pool.Size())

	var wg sync.WaitGroup

	errs := make(chan error, 8)

	for range 8 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			var dest struct {
				Value int `json:"value"`
			}

			errs <- client.Call(context.Background(), "catalog", map[string]any{"a": 1}, &dest, megamarket.CallOptions{})
		}()
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		rq.NoError(err)
	}

	rq.LessOrEqual(maxInFlight.Load(), int64(2))
	rq.Positive(maxInFlight.Load())
}

func TestRequestClientRateLimited(t *testing.T) {
	rq := require.New(t)

	var calls atomic.Int64

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			_, _ = io.WriteString(w, `{"success":false,"error":"too many requests","code":7}`)
			return
		}

		_, _ = io.WriteString(w, `{"success":true,"value":42}`)
	}))
	defer srv.Close()

	errorDelay := 80 * time.Millisecond
	client := directClient(t, srv, megamarket.Options{
		MaxAttempts: 3,
		ErrorDelay:  errorDelay,
		BackoffUnit: time.Hour,
	})

	var dest struct {
		Value int `json:"value"`
	}

	start := time.Now()
	err := client.Call(context.Background(), "catalog", struct{}{}, &dest, megamarket.CallOptions{})
	rq.NoError(err)
	rq.Equal(42, dest.Value)
	rq.Equal(int64(2), calls.Load())
	// повтор ждёт остывания прокси, а не линейного backoff
	rq.GreaterOrEqual(time.Since(start), errorDelay)
	rq.Less(time.Since(start), time.Minute)
}

func TestRequestClientFailures(t *testing.T) {
	testCases := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "status 500",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
		},
		{
			name: "not json",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = io.WriteString(w, `<html>captcha</html>`)
			},
		},
		{
			name: "error field",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = io.WriteString(w, `{"success":false,"error":{"message":"bad"},"code":3}`)
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rq := require.New(t)

			var calls atomic.Int64

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				tc.handler(w, r)
			}))
			defer srv.Close()

			client := directClient(t, srv, megamarket.Options{
				MaxAttempts: 3,
				BackoffUnit: time.Millisecond,
			})

			err := client.Call(context.Background(), "catalog", struct{}{}, nil, megamarket.CallOptions{})
			rq.Error(err)
			rq.True(domain.IsAPIError(err))
			rq.Equal(int64(3), calls.Load())
		})
	}
}

func TestRequestClientCallOptionsOverrideAttempts(t *testing.T) {
	rq := require.New(t)

	var calls atomic.Int64

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := directClient(t, srv, megamarket.Options{MaxAttempts: 10})

	err := client.Call(context.Background(), "catalog", struct{}{}, nil, megamarket.CallOptions{MaxAttempts: 1})
	rq.True(domain.IsAPIError(err))
	rq.Equal(int64(1), calls.Load())
}

func TestRequestClientCooldown(t *testing.T) {
	testCases := []struct {
		name     string
		cooldown bool
		blocked  bool
	}{
		{name: "lookup releases proxy at once", cooldown: false, blocked: false},
		{name: "listing holds proxy for success delay", cooldown: true, blocked: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rq := require.New(t)

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				_, _ = io.WriteString(w, `{"success":true}`)
			}))
			defer srv.Close()

			client := directClient(t, srv, megamarket.Options{MaxAttempts: 1, SuccessDelay: time.Hour})

			opts := megamarket.CallOptions{Cooldown: tc.cooldown}
			rq.NoError(client.Call(context.Background(), "catalog", struct{}{}, nil, opts))

			ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
			defer cancel()

			err := client.Call(ctx, "catalog", struct{}{}, nil, opts)
			if tc.blocked {
				rq.ErrorIs(err, context.DeadlineExceeded)
				return
			}

			rq.NoError(err)
		})
	}
}

func TestRequestClientContextCanceled(t *testing.T) {
	rq := require.New(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := directClient(t, srv, megamarket.Options{MaxAttempts: 10, BackoffUnit: time.Hour})

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	err := client.Call(ctx, "catalog", struct{}{}, nil, megamarket.CallOptions{})
	rq.ErrorIs(err, context.DeadlineExceeded)
	rq.False(domain.IsAPIError(err))
}

func TestRequestClientSendsHeaders(t *testing.T) {
	rq := require.New(t)

	got := make(chan *http.Request, 1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got <- r
		_, _ = io.WriteString(w, `{"success":true}`)
	}))
	defer srv.Close()

	client := directClient(t, srv, megamarket.Options{
		MaxAttempts: 1,
		Headers:     http.Header{"Cookie": []string{"a=b"}},
		LogHTTP:     true,
	})

	rq.NoError(client.Call(context.Background(), "catalog", struct{}{}, nil, megamarket.CallOptions{}))
	r := <-got
	rq.Equal("a=b", r.Header.Get("Cookie"))
	rq.Equal("/api/catalog", r.URL.Path)
	rq.Equal(http.MethodPost, r.Method)
	rq.Equal("application/json", r.Header.Get("Content-Type"))
}
