package notifier

import (
	"context"
	"log/slog"

	"mm_scanner/internal/domain/entity"
	"mm_scanner/pkg/logx"
)

type Notification struct {
	Offer entity.Offer       `json:"offer"`
	Hint  entity.ChannelHint `json:"hint"`
}

// ChannelSink кладёт уведомления в буферизованный канал. Переполнение не
// блокирует краулер: уведомление отбрасывается с предупреждением.
type ChannelSink struct {
	ch chan Notification
}

func NewChannelSink(size int) *ChannelSink {
	return &ChannelSink{ch: make(chan Notification, size)}
}

func (s *ChannelSink) Publish(ctx context.Context, offer entity.Offer, hint entity.ChannelHint) {
	select {
	case s.ch <- Notification{Offer: offer, Hint: hint}:
	default:
		logger(ctx).Warn("notification dropped: queue is full",
			slog.String(logx.FieldGoodsID, offer.GoodsID),
			slog.String(logx.FieldMerchantID, offer.MerchantID),
		)
	}
}

func (s *ChannelSink) C() <-chan Notification {
	return s.ch
}
