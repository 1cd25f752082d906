// Данный файл должен быть сгенерирован из openapi спецификации и называться types.gen.go
package rest

import "time"

// Proxy Состояние прокси в пуле
type Proxy struct {
	ID         string    `json:"id"`
	Busy       bool      `json:"busy"`
	UsableAt   time.Time `json:"usableAt"`
	Successes  int64     `json:"successes"`
	RateLimits int64     `json:"rateLimits"`
	Failures   int64     `json:"failures"`
}

// Offer Сохранённое предложение
type Offer struct {
	GoodsID         string    `json:"goodsId"`
	MerchantID      string    `json:"merchantId"`
	MerchantName    string    `json:"merchantName"`
	MerchantRating  *float64  `json:"merchantRating,omitempty"`
	Title           string    `json:"title"`
	URL             string    `json:"url"`
	ImageURL        string    `json:"imageUrl,omitempty"`
	Price           float64   `json:"price"`
	BonusAmount     float64   `json:"bonusAmount"`
	BonusPercent    int       `json:"bonusPercent"`
	PriceAfterBonus float64   `json:"priceAfterBonus"`
	Available       int       `json:"availableQuantity"`
	DeliveryDate    string    `json:"deliveryDate,omitempty"`
	Notified        bool      `json:"notified"`
	ScrapedAt       time.Time `json:"scrapedAt"`
}

// ScannerStatus Состояние цикла обхода
type ScannerStatus struct {
	Running     bool      `json:"running"`
	URLs        int       `json:"urls"`
	Cycles      int       `json:"cycles"`
	LastCycleAt time.Time `json:"lastCycleAt"`
	LastTookMs  int64     `json:"lastTookMs"`
}

// URLRequest URL для добавления или удаления
type URLRequest struct {
	URL string `json:"url" validate:"required,url"`
}

type URLList struct {
	URLs []string `json:"urls"`
}

// Error Модель ошибок
type Error struct {
	// Code Код ошибки
	Code ErrorCode `json:"code"`

	// Message Сообщение об ошибке (для отображения в UI в будущем)
	Message string `json:"message"`
}

// ErrorCode Код ошибки
type ErrorCode string
