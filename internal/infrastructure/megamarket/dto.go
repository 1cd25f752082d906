package megamarket

import (
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"mm_scanner/internal/domain/value"
)

// Auth блок, который API ждёт в каждом запросе.
type Auth struct {
	LocationID  string         `json:"locationId"`
	AppPlatform string         `json:"appPlatform"`
	AppVersion  int            `json:"appVersion"`
	Experiments map[string]any `json:"experiments"`
	OS          string         `json:"os"`
}

func DefaultAuth() Auth {
	return Auth{
		LocationID:  "50",
		AppPlatform: "WEB",
		AppVersion:  0,
		Experiments: map[string]any{},
		OS:          "UNKNOWN_OS",
	}
}

// flexInt число, которое upstream иногда присылает строкой.
type flexInt int

func (f *flexInt) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}

	n, err := strconv.Atoi(s)
	if err != nil {
		return err
	}

	*f = flexInt(n)

	return nil
}

// flexString строка, которая иногда приходит числом (merchantId).
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	s := string(b)
	if s == "null" {
		*f = ""
		return nil
	}

	if unquoted, err := strconv.Unquote(s); err == nil {
		s = unquoted
	}

	*f = flexString(s)

	return nil
}

type collectionDTO struct {
	CollectionID string `json:"collectionId"`
	Title        string `json:"title"`
}

type merchantDTO struct {
	ID   flexString `json:"id"`
	Slug string     `json:"slug"`
}

type filterDTO struct {
	FilterID string              `json:"filterId"`
	Type     jsoniter.RawMessage `json:"type"`
	Value    string              `json:"value"`
}

type urlParseRequest struct {
	URL  string `json:"url"`
	Auth Auth   `json:"auth"`
}

type urlParseResponse struct {
	Type   string `json:"type"`
	Params struct {
		Collection *collectionDTO `json:"collection"`
		SearchText string         `json:"searchText"`
		Merchant   *merchantDTO   `json:"merchant"`
		Goods      *struct {
			GoodsID string `json:"goodsId"`
		} `json:"goods"`
		MenuNode *struct {
			Collection *collectionDTO `json:"collection"`
		} `json:"menuNode"`
		SelectedListingFilters []filterDTO `json:"selectedListingFilters"`
		IsMultiCategorySearch  bool        `json:"isMultiCategorySearch"`
	} `json:"params"`
}

type merchantRef struct {
	ID string `json:"id"`
}

type searchFilter struct {
	FilterID string `json:"filterId"`
	Type     int    `json:"type"`
	Value    string `json:"value"`
}

type searchRequest struct {
	RequestVersion              int            `json:"requestVersion"`
	Limit                       int            `json:"limit"`
	Offset                      int            `json:"offset"`
	IsMultiCategorySearch       bool           `json:"isMultiCategorySearch"`
	SearchByOriginalQuery       bool           `json:"searchByOriginalQuery"`
	SelectedSuggestParams       []any          `json:"selectedSuggestParams"`
	ExpandedFiltersIDs          []any          `json:"expandedFiltersIds"`
	Sorting                     int            `json:"sorting"`
	AgeMore18                   *bool          `json:"ageMore18"`
	AddressID                   *string        `json:"addressId"`
	ShowNotAvailable            bool           `json:"showNotAvailable"`
	SelectedFilters             []searchFilter `json:"selectedFilters"`
	CollectionID                *string        `json:"collectionId"`
	SearchText                  *string        `json:"searchText"`
	SelectedAssumedCollectionID *string        `json:"selectedAssumedCollectionId"`
	Merchant                    *merchantRef   `json:"merchant"`
	Auth                        Auth           `json:"auth"`
}

type deliveryDTO struct {
	DisplayDeliveryDate string `json:"displayDeliveryDate"`
	Date                string `json:"date"`
}

type goodsDTO struct {
	GoodsID    string           `json:"goodsId"`
	Title      string           `json:"title"`
	WebURL     string           `json:"webUrl"`
	TitleImage string           `json:"titleImage"`
	Brand      string           `json:"brand"`
	Attributes value.Attributes `json:"attributes"`
}

type favoriteOfferDTO struct {
	Price                 float64       `json:"price"`
	FinalPrice            float64       `json:"finalPrice"`
	BonusAmount           float64       `json:"bonusAmount"`
	BonusPercent          float64       `json:"bonusPercent"`
	AvailableQuantity     int           `json:"availableQuantity"`
	MerchantID            flexString    `json:"merchantId"`
	MerchantName          string        `json:"merchantName"`
	DeliveryPossibilities []deliveryDTO `json:"deliveryPossibilities"`
}

type itemDTO struct {
	Goods          goodsDTO         `json:"goods"`
	FavoriteOffer  favoriteOfferDTO `json:"favoriteOffer"`
	IsAvailable    bool             `json:"isAvailable"`
	HasOtherOffers bool             `json:"hasOtherOffers"`
	OfferCount     int              `json:"offerCount"`
}

type searchResponse struct {
	Items     []itemDTO `json:"items"`
	Limit     flexInt   `json:"limit"`
	Offset    flexInt   `json:"offset"`
	Total     flexInt   `json:"total"`
	Processor struct {
		Type string `json:"type"`
		URL  string `json:"url"`
	} `json:"processor"`
}

type listingParams struct {
	PriorDueDate    string `json:"priorDueDate"`
	SelectedFilters []any  `json:"selectedFilters"`
}

type offersRequest struct {
	AddressID      *string        `json:"addressId"`
	CollectionID   *string        `json:"collectionId"`
	GoodsID        string         `json:"goodsId"`
	ListingParams  listingParams  `json:"listingParams"`
	MerchantID     string         `json:"merchantId"`
	RequestVersion int            `json:"requestVersion"`
	ShopInfo       map[string]any `json:"shopInfo"`
	Auth           Auth           `json:"auth"`
}

type offerDTO struct {
	FinalPrice            float64       `json:"finalPrice"`
	BonusAmountFinalPrice float64       `json:"bonusAmountFinalPrice"`
	AvailableQuantity     int           `json:"availableQuantity"`
	MerchantID            flexString    `json:"merchantId"`
	MerchantName          string        `json:"merchantName"`
	MerchantSummaryRating *float64      `json:"merchantSummaryRating"`
	DeliveryPossibilities []deliveryDTO `json:"deliveryPossibilities"`
}

type offersResponse struct {
	Offers []offerDTO `json:"offers"`
}

type cardRequest struct {
	GoodsID    string `json:"goodsId"`
	MerchantID string `json:"merchantId"`
	Auth       Auth   `json:"auth"`
}

type cardResponse struct {
	Goods goodsDTO `json:"goods"`
}

type legalInfoRequest struct {
	MerchantID string `json:"merchantId"`
	Auth       Auth   `json:"auth"`
}

type legalInfoResponse struct {
	Merchant struct {
		LegalInfo struct {
			INN string `json:"inn"`
		} `json:"legalInfo"`
	} `json:"merchant"`
}

type addressSuggestRequest struct {
	Count              int    `json:"count"`
	IsSkipRegionFilter bool   `json:"isSkipRegionFilter"`
	Query              string `json:"query"`
	Auth               Auth   `json:"auth"`
}

type addressSuggestResponse struct {
	Items []struct {
		AddressID string     `json:"addressId"`
		RegionID  flexString `json:"regionId"`
		Region    string     `json:"region"`
		Full      string     `json:"full"`
	} `json:"items"`
}
