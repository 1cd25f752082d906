package megamarket

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"golang.org/x/time/rate"

	"mm_scanner/internal/domain"
	"mm_scanner/internal/infrastructure/egress"
	"mm_scanner/internal/metrics"
	"mm_scanner/pkg/errcodes"
	"mm_scanner/pkg/httpx"
	"mm_scanner/pkg/logx"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals // skip

const (
	DefaultBaseURL = "https://megamarket.ru/api/mobile/v1/"

	// codeTooManyRequests upstream отвечает 200 с таким кодом, когда душит частоту.
	codeTooManyRequests = 7

	maxResponseSize = 16 << 20
)

type Options struct {
	BaseURL        string
	MaxAttempts    int
	SuccessDelay   time.Duration
	ErrorDelay     time.Duration
	BackoffUnit    time.Duration
	RequestTimeout time.Duration
	MaxRPS         float64
	Headers        http.Header
	LogHTTP        bool
	LogFieldMaxLen int
}

// CallOptions настройки одного вызова. MaxAttempts 0 значит бюджет клиента.
// Cooldown после успеха держит прокси Options.SuccessDelay, без него прокси
// сразу возвращается в пул.
type CallOptions struct {
	MaxAttempts int
	Cooldown    bool
}

// RequestClient выполняет один логический вызов API через разрешение пула
// с повторами, backoff и обработкой троттлинга.
type RequestClient struct {
	pool    *egress.Pool
	clients map[string]*http.Client
	opts    Options
	limiter *rate.Limiter
	metrics *metrics.Metrics
}

func NewRequestClient(pool *egress.Pool, opts Options, m *metrics.Metrics) *RequestClient {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}

	if !strings.HasSuffix(opts.BaseURL, "/") {
		opts.BaseURL += "/"
	}

	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 1
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.MaxRPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.MaxRPS), 1)
	}

	clients := make(map[string]*http.Client, pool.Size())
	for _, proxy := range pool.Proxies() {
		clients[proxy.ID] = newHTTPClient(proxy, opts)
	}

	return &RequestClient{
		pool:    pool,
		clients: clients,
		opts:    opts,
		limiter: limiter,
		metrics: m,
	}
}

func newHTTPClient(proxy egress.Proxy, opts Options) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone() //nolint:forcetypeassert
	transport.Proxy = nil

	if !proxy.IsDirect() {
		transport.Proxy = http.ProxyURL(proxy.URL)
	}

	var rt http.RoundTripper = transport

	if len(opts.Headers) != 0 {
		rt = httpx.NewHeaderRoundTripper(rt, opts.Headers)
	}

	if opts.LogHTTP {
		rt = httpx.NewLoggingRoundTripper(rt,
			httpx.WithSensitiveDataMasker(logx.NewSensitiveDataMasker()),
			httpx.WithLogFieldMaxLen(opts.LogFieldMaxLen),
			httpx.WithAttrs(slog.String(logx.FieldProxy, proxy.ID)),
		)
	}

	return &http.Client{
		Transport: rt,
		Timeout:   opts.RequestTimeout,
	}
}

type attemptResult int

const (
	attemptOK attemptResult = iota
	attemptRateLimited
	attemptFailed
)

// envelope общие поля любого ответа API.
type envelope struct {
	Success *bool               `json:"success"`
	Error   jsoniter.RawMessage `json:"error"`
	Code    int                 `json:"code"`
}

func (e envelope) hasError() bool {
	switch strings.TrimSpace(string(e.Error)) {
	case "", "null", "false", `""`, "0", "{}", "[]":
		return false
	default:
		return true
	}
}

// Call отправляет payload на endpoint и декодирует успешный ответ в dest.
// Исчерпание попыток возвращает AppError с кодом ApiError.
func (c *RequestClient) Call(ctx context.Context, endpoint string, payload, dest any, opts CallOptions) error {
	maxAttempts := c.opts.MaxAttempts
	if opts.MaxAttempts > 0 {
		maxAttempts = opts.MaxAttempts
	}

	var successDelay time.Duration
	if opts.Cooldown {
		successDelay = c.opts.SuccessDelay
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return domain.WrapError(err, errcodes.InternalServerError, "marshal payload")
	}

	start := time.Now()
	log := logger(ctx).With(slog.String(logx.FieldEndpoint, endpoint))

	var lastErr error

	for attempt := range maxAttempts {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("limiter.Wait: %w", err)
		}

		permit, err := c.pool.Acquire(ctx)
		if err != nil {
			return fmt.Errorf("pool.Acquire: %w", err)
		}

		proxyID := permit.Proxy().ID

		result, err := c.attempt(ctx, c.clients[proxyID], endpoint, body, dest)

		switch result {
		case attemptOK:
			permit.Release(egress.Success, successDelay, c.opts.ErrorDelay)
			c.metrics.ObserveAPICall(endpoint, "ok", time.Since(start))

			return nil
		case attemptRateLimited:
			permit.Release(egress.RateLimited, successDelay, c.opts.ErrorDelay)
			log.Debug("too many requests", slog.String(logx.FieldProxy, proxyID), slog.Int(logx.FieldAttempt, attempt))
		default:
			permit.Release(egress.OtherFailure, successDelay, c.opts.ErrorDelay)

			if ctx.Err() != nil {
				return fmt.Errorf("call %s: %w", endpoint, ctx.Err())
			}

			log.Debug("request failed", slog.String(logx.FieldProxy, proxyID), slog.Int(logx.FieldAttempt, attempt), logx.Error(err))

			if err := sleep(ctx, time.Duration(attempt)*c.opts.BackoffUnit); err != nil {
				return fmt.Errorf("call %s: %w", endpoint, err)
			}
		}

		lastErr = err
	}

	c.metrics.ObserveAPICall(endpoint, "exhausted", time.Since(start))

	if lastErr == nil {
		lastErr = errors.New("too many requests")
	}

	return domain.WrapError(lastErr, errcodes.ApiError,
		fmt.Sprintf("api %s: %d attempts exhausted", endpoint, maxAttempts))
}

func (c *RequestClient) attempt(
	ctx context.Context,
	client *http.Client,
	endpoint string,
	body []byte,
	dest any,
) (attemptResult, error) {
	if c.opts.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opts.RequestTimeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.opts.BaseURL+endpoint, bytes.NewReader(body))
	if err != nil {
		return attemptFailed, fmt.Errorf("http.NewRequestWithContext: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return attemptFailed, fmt.Errorf("client.Do: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return attemptFailed, fmt.Errorf("io.ReadAll: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return attemptFailed, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return attemptFailed, fmt.Errorf("json.Unmarshal: %w", err)
	}

	if env.Code == codeTooManyRequests {
		return attemptRateLimited, errors.New("too many requests")
	}

	if env.hasError() {
		return attemptFailed, fmt.Errorf("upstream error code %d: %s", env.Code, env.Error)
	}

	if dest != nil {
		if err := json.Unmarshal(raw, dest); err != nil {
			return attemptFailed, fmt.Errorf("json.Unmarshal: %w", err)
		}
	}

	return attemptOK, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
