package handler

import (
	"context"

	"mm_scanner/internal/domain/entity"
	"mm_scanner/internal/infrastructure/egress"
	"mm_scanner/internal/worker"
)

type Scanner interface {
	Start(ctx context.Context) error
	Stop()
	IsRunning() bool
	Status() worker.Status
	AddURL(rawURL string) bool
	RemoveURL(rawURL string) bool
	ListURLs() []string
}

type ProxyPool interface {
	Snapshot() []egress.ProxyState
}

type OfferLister interface {
	List(ctx context.Context, limit int, notifiedOnly bool) ([]entity.Offer, error)
}

type Handler struct {
	// контекст приложения для запуска сканера из команды
	baseCtx context.Context //nolint:containedctx
	scanner Scanner
	pool    ProxyPool
	offers  OfferLister
}

func New(baseCtx context.Context, scanner Scanner, pool ProxyPool, offers OfferLister) *Handler {
	return &Handler{
		baseCtx: baseCtx,
		scanner: scanner,
		pool:    pool,
		offers:  offers,
	}
}
