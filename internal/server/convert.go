package server

import (
	"mm_scanner/internal/domain/entity"
	"mm_scanner/internal/infrastructure/egress"
	"mm_scanner/internal/worker"
	"mm_scanner/pkg/rest"
)

func newRESTProxy(s egress.ProxyState) rest.Proxy {
	return rest.Proxy{
		ID:         s.ID,
		Busy:       s.Busy,
		UsableAt:   s.UsableAt,
		Successes:  s.Successes,
		RateLimits: s.RateLimits,
		Failures:   s.Failures,
	}
}

func newRESTOffer(o entity.Offer) rest.Offer {
	return rest.Offer{
		GoodsID:         o.GoodsID,
		MerchantID:      o.MerchantID,
		MerchantName:    o.MerchantName,
		MerchantRating:  o.MerchantRating,
		Title:           o.Title,
		URL:             o.URL,
		ImageURL:        o.ImageURL,
		Price:           o.Price,
		BonusAmount:     o.BonusAmount,
		BonusPercent:    o.BonusPercent(),
		PriceAfterBonus: o.PriceAfterBonus(),
		Available:       o.AvailableQuantity,
		DeliveryDate:    o.DeliveryDate,
		Notified:        o.Notified,
		ScrapedAt:       o.ScrapedAt,
	}
}

func newRESTStatus(s worker.Status) rest.ScannerStatus {
	return rest.ScannerStatus{
		Running:     s.Running,
		URLs:        s.URLs,
		Cycles:      s.Cycles,
		LastCycleAt: s.LastCycleAt,
		LastTookMs:  s.LastTook.Milliseconds(),
	}
}
