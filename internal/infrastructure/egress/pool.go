package egress

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"mm_scanner/internal/domain"
	"mm_scanner/pkg/errcodes"
	"mm_scanner/pkg/logx"
)

type Outcome int

const (
	Success Outcome = iota
	RateLimited
	OtherFailure
)

func (o Outcome) String() string {
	switch o {
	case Success:
		return "success"
	case RateLimited:
		return "rate_limited"
	case OtherFailure:
		return "other_failure"
	default:
		return "unknown"
	}
}

// Observer получает события пула, например для метрик.
type Observer interface {
	ObserveAcquire(proxyID string, wait time.Duration)
	ObserveRelease(proxyID string, outcome string)
}

type nopObserver struct{}

func (nopObserver) ObserveAcquire(string, time.Duration) {}
func (nopObserver) ObserveRelease(string, string)        {}

type member struct {
	proxy    Proxy
	busy     bool
	usableAt time.Time

	successes  int64
	rateLimits int64
	failures   int64
}

// ProxyState снимок состояния прокси для статуса.
type ProxyState struct {
	ID         string
	Busy       bool
	UsableAt   time.Time
	Successes  int64
	RateLimits int64
	Failures   int64
}

// Pool выдаёт эксклюзивные разрешения на прокси с учётом задержек.
// Состав фиксируется при создании.
type Pool struct {
	mu       sync.Mutex
	members  []*member
	wake     chan struct{}
	observer Observer
}

type PoolOption func(*Pool)

func WithObserver(observer Observer) PoolOption {
	return func(p *Pool) {
		p.observer = observer
	}
}

func NewPool(proxies []Proxy, opts ...PoolOption) (*Pool, error) {
	if len(proxies) == 0 {
		return nil, domain.NewError(errcodes.ConfigError, "connection pool: no proxies")
	}

	seen := make(map[string]struct{}, len(proxies))
	members := make([]*member, 0, len(proxies))

	for _, proxy := range proxies {
		if _, ok := seen[proxy.ID]; ok {
			return nil, domain.NewError(errcodes.InvalidProxy, "connection pool: duplicate proxy "+proxy.ID)
		}

		seen[proxy.ID] = struct{}{}
		members = append(members, &member{proxy: proxy})
	}

	p := &Pool{
		members:  members,
		wake:     make(chan struct{}),
		observer: nopObserver{},
	}

	for _, opt := range opts {
		opt(p)
	}

	return p, nil
}

// Permit эксклюзивное право на один запрос через один прокси.
type Permit struct {
	pool     *Pool
	member   *member
	released atomic.Bool
}

func (p *Permit) Proxy() Proxy {
	return p.member.proxy
}

// Release возвращает прокси в пул. Повторный вызов ничего не делает.
func (p *Permit) Release(outcome Outcome, successDelay, errorDelay time.Duration) {
	p.pool.Release(p, outcome, successDelay, errorDelay)
}

// Acquire блокирует вызывающего до появления свободного прокси, чей
// usableAt уже наступил. Ошибку возвращает только отменённый контекст.
func (p *Pool) Acquire(ctx context.Context) (*Permit, error) {
	start := time.Now()

	for {
		p.mu.Lock()

		var best *member

		for _, m := range p.members {
			if m.busy {
				continue
			}

			if best == nil || m.usableAt.Before(best.usableAt) {
				best = m
			}
		}

		now := time.Now()

		if best != nil && !best.usableAt.After(now) {
			best.busy = true
			p.mu.Unlock()

			p.observer.ObserveAcquire(best.proxy.ID, time.Since(start))

			return &Permit{pool: p, member: best}, nil
		}

		wake := p.wake

		var timer *time.Timer
		var ready <-chan time.Time

		if best != nil {
			timer = time.NewTimer(best.usableAt.Sub(now))
			ready = timer.C
		}

		p.mu.Unlock()

		select {
		case <-ctx.Done():
			stopTimer(timer)
			return nil, ctx.Err()
		case <-wake:
		case <-ready:
		}

		stopTimer(timer)
	}
}

// Release снимает busy и назначает следующий usableAt по исходу запроса.
func (p *Pool) Release(permit *Permit, outcome Outcome, successDelay, errorDelay time.Duration) {
	if permit == nil || !permit.released.CompareAndSwap(false, true) {
		return
	}

	m := permit.member

	p.mu.Lock()

	m.busy = false

	switch outcome {
	case Success:
		m.usableAt = time.Now().Add(successDelay)
		m.successes++
	case RateLimited:
		m.usableAt = time.Now().Add(errorDelay)
		m.rateLimits++
	case OtherFailure:
		m.failures++
	}

	close(p.wake)
	p.wake = make(chan struct{})

	p.mu.Unlock()

	p.observer.ObserveRelease(m.proxy.ID, outcome.String())
}

func (p *Pool) Size() int {
	return len(p.members)
}

func (p *Pool) Snapshot() []ProxyState {
	p.mu.Lock()
	defer p.mu.Unlock()

	states := make([]ProxyState, 0, len(p.members))
	for _, m := range p.members {
		states = append(states, ProxyState{
			ID:         m.proxy.ID,
			Busy:       m.busy,
			UsableAt:   m.usableAt,
			Successes:  m.successes,
			RateLimits: m.rateLimits,
			Failures:   m.failures,
		})
	}

	return states
}

// Proxies состав пула в порядке добавления.
func (p *Pool) Proxies() []Proxy {
	proxies := make([]Proxy, 0, len(p.members))
	for _, m := range p.members {
		proxies = append(proxies, m.proxy)
	}

	return proxies
}

// LogState пишет снимок пула в лог, удобно при остановке.
func (p *Pool) LogState(ctx context.Context) {
	for _, s := range p.Snapshot() {
		logger(ctx).Info("proxy state",
			slog.String(logx.FieldProxy, s.ID),
			slog.Bool("busy", s.Busy),
			slog.Int64("successes", s.Successes),
			slog.Int64("rate-limits", s.RateLimits),
			slog.Int64("failures", s.Failures),
		)
	}
}

func stopTimer(t *time.Timer) {
	if t != nil {
		t.Stop()
	}
}
