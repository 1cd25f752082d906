package entity

import (
	"math"
	"strconv"
	"time"
)

// Offer одно предложение продавца, прошедшее через пайплайн.
type Offer struct {
	Title             string
	URL               string
	ImageURL          string
	Price             float64
	BonusAmount       float64
	AvailableQuantity int
	GoodsID           string
	MerchantID        string
	MerchantName      string
	MerchantRating    *float64
	DeliveryDate      string
	Notified          bool
	ScrapedAt         time.Time
}

func (o Offer) PriceAfterBonus() float64 {
	return o.Price - o.BonusAmount
}

// BonusPercent процент бонусов от цены, округлённый вниз.
func (o Offer) BonusPercent() int {
	return BonusPercent(o.Price, o.BonusAmount)
}

func (o Offer) Key() NotificationKey {
	return NotificationKey{
		GoodsID:     o.GoodsID,
		MerchantID:  o.MerchantID,
		Price:       o.Price,
		BonusAmount: o.BonusAmount,
	}
}

func BonusPercent(price, bonusAmount float64) int {
	if price == 0 {
		return 0
	}

	return int(math.Floor(bonusAmount / price * 100))
}

// NotificationKey идентифицирует "ту же сделку": другой ценник это уже другая сделка.
type NotificationKey struct {
	GoodsID     string
	MerchantID  string
	Price       float64
	BonusAmount float64
}

func (k NotificationKey) String() string {
	return k.GoodsID + ":" + k.MerchantID + ":" +
		strconv.FormatFloat(k.Price, 'f', -1, 64) + ":" +
		strconv.FormatFloat(k.BonusAmount, 'f', -1, 64)
}

type Channel string

const (
	ChannelDefault   Channel = "default"
	ChannelArbitrage Channel = "arbitrage"
)

// ChannelHint подсказка получателю: куда слать и с каким контекстом.
type ChannelHint struct {
	Channel        Channel
	ReferencePrice *float64
	RuleStatus     string
}

// Profit выгода относительно цены перекупа, если она известна.
func (h ChannelHint) Profit(o Offer) (float64, bool) {
	if h.ReferencePrice == nil {
		return 0, false
	}

	return *h.ReferencePrice - o.Price + o.BonusAmount, true
}
