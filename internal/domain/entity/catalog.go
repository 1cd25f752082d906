package entity

import (
	"strings"
	"unicode"

	"mm_scanner/internal/domain/value"
)

type ListingType string

const (
	ListingTypeListing     ListingType = "TYPE_LISTING"
	ListingTypeMenuNode    ListingType = "TYPE_MENU_NODE"
	ListingTypeCollection  ListingType = "TYPE_COLLECTION"
	ListingTypeProductCard ListingType = "TYPE_PRODUCT_CARD"
	ListingTypeSearch      ListingType = "TYPE_SEARCH"
	ListingTypeMerchant    ListingType = "TYPE_MERCHANT"
)

// Фильтр каталога в числовом виде, как его ждёт catalog/search.
type ListingFilter struct {
	FilterID string `json:"filterId"`
	Type     int    `json:"type"`
	Value    string `json:"value"`
}

type Collection struct {
	ID    string
	Title string
}

type Merchant struct {
	ID   string
	Slug string
}

// Listing описание цели обхода, полученное из urlService/url/parse.
type Listing struct {
	URL                   string
	Type                  ListingType
	SearchText            string
	Collection            *Collection
	Merchant              *Merchant
	GoodsID               string
	Filters               []ListingFilter
	Sorting               int
	IsMultiCategorySearch bool
}

func (l Listing) IsProductCard() bool {
	return l.Type == ListingTypeProductCard
}

// Name человекочитаемое имя обхода для логов и метрик.
func (l Listing) Name() string {
	switch {
	case l.SearchText != "":
		return Slugify(l.SearchText)
	case l.Collection != nil && l.Collection.Title != "":
		return Slugify(l.Collection.Title)
	case l.Merchant != nil && l.Merchant.Slug != "":
		return Slugify(l.Merchant.Slug)
	default:
		return "unknown"
	}
}

type Goods struct {
	GoodsID    string
	Title      string
	WebURL     string
	TitleImage string
	Brand      string
	Attributes value.Attributes
}

// FavoriteOffer предложение по умолчанию, которое каталог показывает в выдаче.
type FavoriteOffer struct {
	Price             float64
	FinalPrice        float64
	BonusAmount       float64
	BonusPercent      float64
	AvailableQuantity int
	MerchantID        string
	MerchantName      string
	DeliveryDate      string
}

type CatalogItem struct {
	Goods          Goods
	FavoriteOffer  FavoriteOffer
	IsAvailable    bool
	HasOtherOffers bool
	OfferCount     int
}

// MerchantOffer предложение конкретного продавца из productOffers/get.
type MerchantOffer struct {
	FinalPrice        float64
	BonusAmount       float64
	AvailableQuantity int
	MerchantID        string
	MerchantName      string
	MerchantRating    *float64
	DeliveryDate      string
}

type Processor struct {
	Type string
	URL  string
}

// Page одна страница catalog/search.
type Page struct {
	Items     []CatalogItem
	Limit     int
	Offset    int
	Total     int
	Processor Processor
}

// LastItemAvailable true, если последний товар страницы ещё в наличии:
// выдача отсортирована по наличию, дальше смысла идти может не быть.
func (p Page) LastItemAvailable() bool {
	return len(p.Items) > 0 && p.Items[len(p.Items)-1].IsAvailable
}

// IsRedirect пустая выдача, которая указывает на другой ресурс каталога.
func (p Page) IsRedirect() bool {
	return len(p.Items) == 0 && p.Processor.URL != "" &&
		(p.Processor.Type == "MENU_NODE" || p.Processor.Type == "COLLECTION")
}

// Offsets план смещений 0, limit, 2*limit ... < total.
func (p Page) Offsets() []int {
	if p.Limit <= 0 {
		return []int{0}
	}

	offsets := make([]int, 0, p.Total/p.Limit+1)
	for offset := 0; offset < p.Total; offset += p.Limit {
		offsets = append(offsets, offset)
	}

	if len(offsets) == 0 {
		offsets = append(offsets, 0)
	}

	return offsets
}

// Slugify приводит строку к виду "some_name" для имени задания.
func Slugify(s string) string {
	var b strings.Builder

	lastUnderscore := false

	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastUnderscore = false
		case !lastUnderscore && b.Len() > 0:
			b.WriteRune('_')
			lastUnderscore = true
		}
	}

	return strings.TrimRight(b.String(), "_")
}
