package notification

import (
	"context"
	"fmt"
	"time"

	"mm_scanner/internal/domain/entity"
)

// Thresholds пороги уведомлений. nil означает отсутствие ограничения.
type Thresholds struct {
	MinPrice           *float64
	MaxPrice           *float64
	MaxPriceAfterBonus *float64
	MinBonusAmount     *float64
	MinBonusPercent    *float64
}

// Allow все пороги выполняются одновременно.
func (t Thresholds) Allow(o entity.Offer) bool {
	switch {
	case t.MinPrice != nil && o.Price < *t.MinPrice:
		return false
	case t.MaxPrice != nil && o.Price > *t.MaxPrice:
		return false
	case t.MaxPriceAfterBonus != nil && o.PriceAfterBonus() > *t.MaxPriceAfterBonus:
		return false
	case t.MinBonusAmount != nil && o.BonusAmount < *t.MinBonusAmount:
		return false
	case t.MinBonusPercent != nil && float64(o.BonusPercent()) < *t.MinBonusPercent:
		return false
	default:
		return true
	}
}

// RecordStore хранилище NotificationRecord. Запись по одному ключу атомарна.
type RecordStore interface {
	LastNotifiedAt(ctx context.Context, key entity.NotificationKey) (time.Time, bool, error)
	RecordNotified(ctx context.Context, key entity.NotificationKey, when time.Time) error
	// Claim записывает now, если записи нет или она старше now-window,
	// и сообщает, удалось ли это. Из двух конкурентов true получает один.
	Claim(ctx context.Context, key entity.NotificationKey, now time.Time, window time.Duration) (bool, error)
}

type Gate struct {
	records    RecordStore
	thresholds Thresholds
	window     time.Duration
	now        func() time.Time
}

type GateOption func(*Gate)

func WithClock(now func() time.Time) GateOption {
	return func(g *Gate) {
		g.now = now
	}
}

func NewGate(records RecordStore, thresholds Thresholds, window time.Duration, opts ...GateOption) *Gate {
	g := &Gate{
		records:    records,
		thresholds: thresholds,
		window:     window,
		now:        time.Now,
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

// priceAllowed при известной цене перекупа важна только она, пороги не применяются.
func (g *Gate) priceAllowed(candidate entity.Offer, referencePrice *float64) bool {
	if referencePrice != nil {
		return candidate.PriceAfterBonus() < *referencePrice
	}

	return g.thresholds.Allow(candidate)
}

// ShouldNotify решение без записи.
func (g *Gate) ShouldNotify(
	ctx context.Context,
	key entity.NotificationKey,
	candidate entity.Offer,
	referencePrice *float64,
) (bool, error) {
	if !g.priceAllowed(candidate, referencePrice) {
		return false, nil
	}

	if g.window <= 0 {
		return true, nil
	}

	last, ok, err := g.records.LastNotifiedAt(ctx, key)
	if err != nil {
		return false, fmt.Errorf("records.LastNotifiedAt: %w", err)
	}

	return !ok || g.now().Sub(last) > g.window, nil
}

func (g *Gate) RecordNotified(ctx context.Context, key entity.NotificationKey, when time.Time) error {
	if err := g.records.RecordNotified(ctx, key, when); err != nil {
		return fmt.Errorf("records.RecordNotified: %w", err)
	}

	return nil
}

// Admit проверка цены и захват окна одной атомарной операцией хранилища.
func (g *Gate) Admit(ctx context.Context, candidate entity.Offer, referencePrice *float64) (bool, error) {
	if !g.priceAllowed(candidate, referencePrice) {
		return false, nil
	}

	now := g.now()
	key := candidate.Key()

	if g.window <= 0 {
		if err := g.records.RecordNotified(ctx, key, now); err != nil {
			return false, fmt.Errorf("records.RecordNotified: %w", err)
		}

		return true, nil
	}

	claimed, err := g.records.Claim(ctx, key, now, g.window)
	if err != nil {
		return false, fmt.Errorf("records.Claim: %w", err)
	}

	return claimed, nil
}
