package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"mm_scanner/internal/domain/entity"
	"mm_scanner/pkg/logx"
)

const (
	pageOK     = "ok"
	pageFailed = "failed"
)

type PageFetcher interface {
	FetchPage(ctx context.Context, listing entity.Listing, offset int) (entity.Page, error)
}

type PageProcessor interface {
	// ProcessPage возвращает false, если дальше по выдаче товаров в наличии уже не будет.
	ProcessPage(ctx context.Context, listing entity.Listing, page entity.Page) bool
}

type CrawlObserver interface {
	ObservePage(job, status string)
	ObserveCrawl(job string, d time.Duration)
}

type nopCrawlObserver struct{}

func (nopCrawlObserver) ObservePage(string, string)         {}
func (nopCrawlObserver) ObserveCrawl(string, time.Duration) {}

// RedirectError выдача пустая, а каталог указывает на другой ресурс.
type RedirectError struct {
	URL string
}

func (e *RedirectError) Error() string {
	return "listing redirects to " + e.URL
}

type Result struct {
	Planned   int
	Processed int
	Failed    int
	Skipped   int
}

type Scheduler struct {
	fetcher   PageFetcher
	processor PageProcessor
	threads   int
	observer  CrawlObserver
}

type SchedulerOption func(*Scheduler)

func WithCrawlObserver(observer CrawlObserver) SchedulerOption {
	return func(s *Scheduler) {
		if observer != nil {
			s.observer = observer
		}
	}
}

func NewScheduler(fetcher PageFetcher, processor PageProcessor, threads int, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		fetcher:   fetcher,
		processor: processor,
		threads:   max(threads, 1),
		observer:  nopCrawlObserver{},
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// run состояние одного обхода: очередь смещений и граница отсечения под одним мьютексом.
type run struct {
	mu      sync.Mutex
	pending []int // по возрастанию
	cutoff  int
	result  Result
}

// next самое младшее смещение, которое ещё можно начинать.
func (r *run) next() (int, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.pending) == 0 {
		return 0, false
	}

	offset := r.pending[0]
	if offset > r.cutoff {
		return 0, false
	}

	r.pending = r.pending[1:]

	return offset, true
}

// terminate снимает все смещения больше k.
func (r *run) terminate(k int) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	if k < r.cutoff {
		r.cutoff = k
	}

	kept := r.pending[:0]
	for _, offset := range r.pending {
		if offset <= k {
			kept = append(kept, offset)
		}
	}

	dropped := len(r.pending) - len(kept)
	r.pending = kept
	r.result.Skipped += dropped

	return dropped
}

func (r *run) count(failed bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if failed {
		r.result.Failed++
	} else {
		r.result.Processed++
	}
}

func (r *run) snapshot() Result {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.result
}

// Crawl обходит все страницы выдачи. Карточки товара сюда не попадают.
func (s *Scheduler) Crawl(ctx context.Context, listing entity.Listing) (Result, error) {
	job := listing.Name()
	log := logger(ctx).With(slog.String(logx.FieldJob, job))
	started := time.Now()

	defer func() {
		s.observer.ObserveCrawl(job, time.Since(started))
	}()

	first, err := s.fetcher.FetchPage(ctx, listing, 0)
	if err != nil {
		s.observer.ObservePage(job, pageFailed)

		return Result{Planned: 1, Failed: 1}, fmt.Errorf("bootstrap page: %w", err)
	}

	if first.IsRedirect() {
		return Result{}, &RedirectError{URL: first.Processor.URL}
	}

	offsets := first.Offsets()

	r := &run{
		pending: offsets[1:],
		cutoff:  offsets[len(offsets)-1],
		result:  Result{Planned: len(offsets), Processed: 1},
	}

	s.observer.ObservePage(job, pageOK)

	log.Info("crawl started",
		slog.Int("total", first.Total),
		slog.Int("page-size", first.Limit),
		slog.Int("pages", len(offsets)),
	)

	if !s.processor.ProcessPage(ctx, listing, first) {
		r.terminate(0)
	}

	workers := min(len(r.pending), s.threads)

	g, gctx := errgroup.WithContext(ctx)

	for range workers {
		g.Go(func() error {
			return s.work(gctx, listing, job, r)
		})
	}

	err = g.Wait()
	result := r.snapshot()

	if err != nil {
		return result, err
	}

	log.Info("crawl finished",
		slog.Int("processed", result.Processed),
		slog.Int("failed", result.Failed),
		slog.Int("skipped", result.Skipped),
		slog.Duration("took", time.Since(started)),
	)

	return result, nil
}

func (s *Scheduler) work(ctx context.Context, listing entity.Listing, job string, r *run) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		offset, ok := r.next()
		if !ok {
			return nil
		}

		log := logger(ctx).With(slog.String(logx.FieldJob, job), slog.Int(logx.FieldOffset, offset))

		page, err := s.fetcher.FetchPage(ctx, listing, offset)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}

			// страница выпадает, обход продолжается
			log.Error("page dropped", logx.Error(err))
			r.count(true)
			s.observer.ObservePage(job, pageFailed)

			continue
		}

		r.count(false)
		s.observer.ObservePage(job, pageOK)

		if !s.processor.ProcessPage(ctx, listing, page) {
			if dropped := r.terminate(offset); dropped > 0 {
				log.Debug("early termination", slog.Int("dropped", dropped))
			}
		}
	}
}
