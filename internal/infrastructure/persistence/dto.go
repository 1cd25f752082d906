package persistence

import (
	"time"

	"mm_scanner/internal/domain/entity"
)

// offerSchema строка таблицы offers.
type offerSchema struct {
	ID                int64     `db:"id"`
	GoodsID           string    `db:"goods_id"`
	MerchantID        string    `db:"merchant_id"`
	Price             float64   `db:"price"`
	BonusAmount       float64   `db:"bonus_amount"`
	Title             string    `db:"title"`
	URL               string    `db:"url"`
	ImageURL          *string   `db:"image_url"`
	AvailableQuantity int       `db:"available_quantity"`
	MerchantName      string    `db:"merchant_name"`
	MerchantRating    *float64  `db:"merchant_rating"`
	DeliveryDate      string    `db:"delivery_date"`
	Notified          bool      `db:"notified"`
	ScrapedAt         time.Time `db:"scraped_at"`
}

func fromOffer(o entity.Offer) offerSchema {
	s := offerSchema{
		GoodsID:           o.GoodsID,
		MerchantID:        o.MerchantID,
		Price:             o.Price,
		BonusAmount:       o.BonusAmount,
		Title:             o.Title,
		URL:               o.URL,
		AvailableQuantity: o.AvailableQuantity,
		MerchantName:      o.MerchantName,
		MerchantRating:    o.MerchantRating,
		DeliveryDate:      o.DeliveryDate,
		Notified:          o.Notified,
		ScrapedAt:         o.ScrapedAt,
	}

	if o.ImageURL != "" {
		image := o.ImageURL
		s.ImageURL = &image
	}

	if s.ScrapedAt.IsZero() {
		s.ScrapedAt = time.Now()
	}

	return s
}

func (s offerSchema) toDomain() entity.Offer {
	o := entity.Offer{
		Title:             s.Title,
		URL:               s.URL,
		Price:             s.Price,
		BonusAmount:       s.BonusAmount,
		AvailableQuantity: s.AvailableQuantity,
		GoodsID:           s.GoodsID,
		MerchantID:        s.MerchantID,
		MerchantName:      s.MerchantName,
		MerchantRating:    s.MerchantRating,
		DeliveryDate:      s.DeliveryDate,
		Notified:          s.Notified,
		ScrapedAt:         s.ScrapedAt,
	}

	if s.ImageURL != nil {
		o.ImageURL = *s.ImageURL
	}

	return o
}
