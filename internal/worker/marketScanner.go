package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"mm_scanner/internal/domain/entity"
	"mm_scanner/pkg/contextx"
	"mm_scanner/pkg/logx"
)

// пустой список URL не крутим вхолостую
const idlePause = 5 * time.Second

var ErrAlreadyRunning = errors.New("scanner is already running")

type CatalogAPI interface {
	ParseURL(ctx context.Context, rawURL string) (entity.Listing, error)
	FetchCardInfo(ctx context.Context, goodsID string) (entity.Goods, error)
	FetchOfferList(ctx context.Context, goodsID string) ([]entity.MerchantOffer, error)
}

type Crawler interface {
	Crawl(ctx context.Context, listing entity.Listing) (Result, error)
}

type CardProcessor interface {
	ProcessCard(ctx context.Context, goods entity.Goods, offers []entity.MerchantOffer)
}

type OfferPurger interface {
	PurgeOlderThan(ctx context.Context, d time.Duration) (int64, error)
}

// RecordPurger хранилище записей уведомлений без собственного TTL (Postgres).
type RecordPurger interface {
	PurgeExpired(ctx context.Context, before time.Time) (int64, error)
}

type PurgeObserver interface {
	ObservePurge(n int64)
}

type nopPurgeObserver struct{}

func (nopPurgeObserver) ObservePurge(int64) {}

type ScannerConfig struct {
	MaxRedirects int
	Retention    time.Duration
	CyclePause   time.Duration
	// окно подавления повторов: записи старше него больше не нужны
	RepeatWindow time.Duration
}

type Status struct {
	Running     bool          `json:"running"`
	URLs        int           `json:"urls"`
	Cycles      int           `json:"cycles"`
	LastCycleAt time.Time     `json:"lastCycleAt"`
	LastTook    time.Duration `json:"lastTook"`
}

type MarketScanner struct {
	api     CatalogAPI
	crawler Crawler
	cards   CardProcessor
	offers  OfferPurger
	records RecordPurger
	purges  PurgeObserver
	cfg     ScannerConfig

	urlsMu sync.Mutex
	urls   []string

	// Control fields
	mu          sync.Mutex
	cancelFunc  context.CancelFunc
	isRunning   bool
	wg          sync.WaitGroup
	cycles      int
	lastCycleAt time.Time
	lastTook    time.Duration
}

type ScannerOption func(*MarketScanner)

func WithRecordPurger(records RecordPurger) ScannerOption {
	return func(w *MarketScanner) {
		w.records = records
	}
}

func WithPurgeObserver(observer PurgeObserver) ScannerOption {
	return func(w *MarketScanner) {
		if observer != nil {
			w.purges = observer
		}
	}
}

func NewMarketScanner(
	api CatalogAPI,
	crawler Crawler,
	cards CardProcessor,
	offers OfferPurger,
	cfg ScannerConfig,
	opts ...ScannerOption,
) *MarketScanner {
	w := &MarketScanner{
		api:     api,
		crawler: crawler,
		cards:   cards,
		offers:  offers,
		purges:  nopPurgeObserver{},
		cfg:     cfg,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

func (w *MarketScanner) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.isRunning {
		return ErrAlreadyRunning
	}

	scanCtx, cancel := context.WithCancel(ctx)
	w.cancelFunc = cancel
	w.isRunning = true

	w.wg.Add(1)

	go func() {
		defer w.wg.Done()
		defer func() {
			w.mu.Lock()
			w.isRunning = false
			w.cancelFunc = nil
			w.mu.Unlock()
		}()

		if err := w.Run(scanCtx); err != nil && !errors.Is(err, context.Canceled) {
			logger(ctx).Error("scanner stopped with error", logx.Error(err))
		}
	}()

	return nil
}

func (w *MarketScanner) Stop() {
	w.mu.Lock()

	if !w.isRunning {
		w.mu.Unlock()
		return
	}

	if w.cancelFunc != nil {
		w.cancelFunc()
	}
	w.mu.Unlock()

	w.wg.Wait()
}

func (w *MarketScanner) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.isRunning
}

func (w *MarketScanner) Status() Status {
	w.mu.Lock()
	defer w.mu.Unlock()

	return Status{
		Running:     w.isRunning,
		URLs:        len(w.ListURLs()),
		Cycles:      w.cycles,
		LastCycleAt: w.lastCycleAt,
		LastTook:    w.lastTook,
	}
}

// Run бесконечный цикл обхода до отмены контекста.
func (w *MarketScanner) Run(ctx context.Context) error {
	logger(ctx).Info("market scanner started", slog.Int("urls", len(w.ListURLs())))

	for {
		if err := ctx.Err(); err != nil {
			logger(ctx).Info("market scanner stopped")
			return err
		}

		w.RunCycle(ctx)

		pause := w.cfg.CyclePause
		if len(w.ListURLs()) == 0 {
			pause = max(pause, idlePause)
		}

		if pause > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(pause):
			}
		}
	}
}

// RunCycle один полный проход: чистка устаревших записей, затем все URL по очереди.
func (w *MarketScanner) RunCycle(ctx context.Context) {
	started := time.Now()

	w.purge(ctx)

	for _, rawURL := range w.ListURLs() {
		if ctx.Err() != nil {
			return
		}

		runCtx := withRun(ctx, rawURL)

		if err := w.scanURL(runCtx, rawURL); err != nil && ctx.Err() == nil {
			logger(runCtx).Error("scan failed", logx.Error(err))
		}
	}

	w.mu.Lock()
	w.cycles++
	w.lastCycleAt = time.Now()
	w.lastTook = time.Since(started)
	w.mu.Unlock()
}

// withRun trace id и логгер на один обход URL.
func withRun(ctx context.Context, rawURL string) context.Context {
	traceID := contextx.NewTraceID()

	ctx = contextx.WithTraceID(ctx, traceID)

	return contextx.WithLogger(ctx, logger(ctx).With(
		slog.String(logx.FieldTraceID, traceID.String()),
		slog.String(logx.FieldURL, rawURL),
	))
}

func (w *MarketScanner) purge(ctx context.Context) {
	if w.offers != nil && w.cfg.Retention > 0 {
		n, err := w.offers.PurgeOlderThan(ctx, w.cfg.Retention)
		if err != nil {
			logger(ctx).Error("purge offers", logx.Error(err))
		} else {
			w.purges.ObservePurge(n)
		}
	}

	if w.records != nil {
		if _, err := w.records.PurgeExpired(ctx, time.Now().Add(-w.cfg.RepeatWindow)); err != nil {
			logger(ctx).Error("purge notification records", logx.Error(err))
		}
	}
}

// scanURL редиректы каталога перезапускают обход на новом URL, не больше MaxRedirects раз.
func (w *MarketScanner) scanURL(ctx context.Context, rawURL string) error {
	for redirects := 0; ; redirects++ {
		listing, err := w.api.ParseURL(ctx, rawURL)
		if err != nil {
			return fmt.Errorf("parse url: %w", err)
		}

		if listing.IsProductCard() {
			return w.scanCard(ctx, listing)
		}

		_, err = w.crawler.Crawl(ctx, listing)

		var redirect *RedirectError
		if !errors.As(err, &redirect) {
			return err
		}

		if redirects >= w.cfg.MaxRedirects {
			return fmt.Errorf("too many redirects (%d): %w", redirects, err)
		}

		logger(ctx).Info("listing redirected", slog.String("to", redirect.URL))
		rawURL = redirect.URL
	}
}

func (w *MarketScanner) scanCard(ctx context.Context, listing entity.Listing) error {
	goods, err := w.api.FetchCardInfo(ctx, listing.GoodsID)
	if err != nil {
		return fmt.Errorf("card info: %w", err)
	}

	offers, err := w.api.FetchOfferList(ctx, listing.GoodsID)
	if err != nil {
		return fmt.Errorf("offer list: %w", err)
	}

	w.cards.ProcessCard(ctx, goods, offers)

	return nil
}
