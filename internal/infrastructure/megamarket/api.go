package megamarket

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/samber/lo"

	"mm_scanner/internal/domain"
	"mm_scanner/internal/domain/entity"
	"mm_scanner/pkg/errcodes"
)

const (
	SiteURL         = "https://megamarket.ru"
	DefaultPageSize = 44

	endpointURLParse       = "urlService/url/parse"
	endpointCatalogSearch  = "catalogService/catalog/search"
	endpointProductOffers  = "catalogService/productOffers/get"
	endpointCardMainInfo   = "catalogService/productCardMainInfo/get"
	endpointMerchantLegal  = "partnerService/merchant/legalInfo/get"
	endpointAddressSuggest = "addressSuggestService/address/suggest"

	searchRequestVersion = 10
	offersRequestVersion = 11
)

var filterTypes = map[string]int{ //nolint:gochecknoglobals
	"EXACT_VALUE": 0,
	"LEFT_BOUND":  1,
	"RIGHT_BOUND": 2,
}

type caller interface {
	Call(ctx context.Context, endpoint string, payload, dest any, opts CallOptions) error
}

// API методы каталога поверх RequestClient.
type API struct {
	client   caller
	site     *url.URL
	pageSize int

	mu        sync.RWMutex
	auth      Auth
	addressID string
}

func NewAPI(client caller) *API {
	return &API{
		client:   client,
		site:     lo.Must(url.Parse(SiteURL)),
		pageSize: DefaultPageSize,
		auth:     DefaultAuth(),
	}
}

// SetAddressID адрес доставки для выдачи и предложений.
func (a *API) SetAddressID(addressID string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.addressID = addressID
}

func (a *API) AddressID() string {
	a.mu.RLock()
	defer a.mu.RUnlock()

	return a.addressID
}

func (a *API) authBlock() Auth {
	a.mu.RLock()
	defer a.mu.RUnlock()

	return a.auth
}

func (a *API) addressRef() *string {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.addressID == "" {
		return nil
	}

	id := a.addressID

	return &id
}

// ParseURL превращает ссылку сайта в описание обхода.
func (a *API) ParseURL(ctx context.Context, rawURL string) (entity.Listing, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Host == "" {
		return entity.Listing{}, domain.NewError(errcodes.InvalidURL, "invalid url "+rawURL)
	}

	var resp urlParseResponse

	req := urlParseRequest{URL: u.String(), Auth: a.authBlock()}
	if err := a.client.Call(ctx, endpointURLParse, req, &resp, CallOptions{}); err != nil {
		return entity.Listing{}, fmt.Errorf("url/parse: %w", err)
	}

	return listingFromParse(u, resp)
}

func listingFromParse(u *url.URL, resp urlParseResponse) (entity.Listing, error) {
	if resp.Type == "" {
		return entity.Listing{}, domain.NewError(errcodes.UnexpectedFormat, "url/parse: empty type")
	}

	listing := entity.Listing{
		URL:                   u.String(),
		Type:                  entity.ListingType(resp.Type),
		SearchText:            resp.Params.SearchText,
		IsMultiCategorySearch: resp.Params.IsMultiCategorySearch,
		Filters:               make([]entity.ListingFilter, 0, len(resp.Params.SelectedListingFilters)),
	}

	for _, f := range resp.Params.SelectedListingFilters {
		filterType, err := parseFilterType(f.Type)
		if err != nil {
			return entity.Listing{}, err
		}

		listing.Filters = append(listing.Filters, entity.ListingFilter{
			FilterID: f.FilterID,
			Type:     filterType,
			Value:    f.Value,
		})
	}

	collection := resp.Params.Collection
	if collection == nil && listing.Type == entity.ListingTypeMenuNode && resp.Params.MenuNode != nil {
		collection = resp.Params.MenuNode.Collection
	}

	if collection != nil {
		listing.Collection = &entity.Collection{ID: collection.CollectionID, Title: collection.Title}
	}

	if m := resp.Params.Merchant; m != nil {
		listing.Merchant = &entity.Merchant{ID: string(m.ID), Slug: m.Slug}
	}

	if g := resp.Params.Goods; g != nil {
		listing.GoodsID = baseGoodsID(g.GoodsID)
	}

	if listing.SearchText == "" {
		listing.SearchText = u.Query().Get("q")
	}

	// sort живёт во фрагменте: /catalog/#?sort=1
	if fragment, err := url.ParseQuery(strings.TrimPrefix(u.Fragment, "?")); err == nil {
		if sorting, err := strconv.Atoi(fragment.Get("sort")); err == nil {
			listing.Sorting = sorting
		}
	}

	return listing, nil
}

func parseFilterType(raw []byte) (int, error) {
	s := strings.TrimSpace(string(raw))

	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}

	name, err := strconv.Unquote(s)
	if err != nil {
		return 0, domain.NewError(errcodes.UnexpectedFormat, "filter type "+s)
	}

	n, ok := filterTypes[name]
	if !ok {
		return 0, domain.NewError(errcodes.UnexpectedFormat, "unknown filter type "+name)
	}

	return n, nil
}

// FetchPage одна страница выдачи по смещению offset.
func (a *API) FetchPage(ctx context.Context, listing entity.Listing, offset int) (entity.Page, error) {
	req := searchRequest{
		RequestVersion:        searchRequestVersion,
		Limit:                 a.pageSize,
		Offset:                offset,
		IsMultiCategorySearch: listing.IsMultiCategorySearch,
		SearchByOriginalQuery: false,
		SelectedSuggestParams: []any{},
		ExpandedFiltersIDs:    []any{},
		Sorting:               listing.Sorting,
		AddressID:             a.addressRef(),
		ShowNotAvailable:      true,
		SelectedFilters: lo.Map(listing.Filters, func(f entity.ListingFilter, _ int) searchFilter {
			return searchFilter{FilterID: f.FilterID, Type: f.Type, Value: f.Value}
		}),
		Auth: a.authBlock(),
	}

	if listing.Collection != nil {
		req.CollectionID = &listing.Collection.ID
		req.SelectedAssumedCollectionID = &listing.Collection.ID
	}

	if listing.SearchText != "" {
		req.SearchText = &listing.SearchText
	}

	if listing.Merchant != nil {
		req.Merchant = &merchantRef{ID: listing.Merchant.ID}
	}

	var resp searchResponse
	if err := a.client.Call(ctx, endpointCatalogSearch, req, &resp, CallOptions{Cooldown: true}); err != nil {
		return entity.Page{}, fmt.Errorf("catalog/search offset %d: %w", offset, err)
	}

	page := entity.Page{
		Items:  make([]entity.CatalogItem, 0, len(resp.Items)),
		Limit:  int(resp.Limit),
		Offset: int(resp.Offset),
		Total:  int(resp.Total),
		Processor: entity.Processor{
			Type: resp.Processor.Type,
			URL:  a.absolute(resp.Processor.URL),
		},
	}

	for _, item := range resp.Items {
		page.Items = append(page.Items, item.toEntity())
	}

	return page, nil
}

func (a *API) absolute(ref string) string {
	if ref == "" {
		return ""
	}

	u, err := url.Parse(ref)
	if err != nil {
		return ref
	}

	return a.site.ResolveReference(u).String()
}

// FetchOfferList предложения всех продавцов товара.
func (a *API) FetchOfferList(ctx context.Context, goodsID string) ([]entity.MerchantOffer, error) {
	req := offersRequest{
		AddressID: a.addressRef(),
		GoodsID:   goodsID,
		ListingParams: listingParams{
			PriorDueDate:    "UNKNOWN_OFFER_DUE_DATE",
			SelectedFilters: []any{},
		},
		MerchantID:     "0",
		RequestVersion: offersRequestVersion,
		ShopInfo:       map[string]any{},
		Auth:           a.authBlock(),
	}

	var resp offersResponse
	if err := a.client.Call(ctx, endpointProductOffers, req, &resp, CallOptions{Cooldown: true}); err != nil {
		return nil, fmt.Errorf("productOffers/get %s: %w", goodsID, err)
	}

	return lo.Map(resp.Offers, func(o offerDTO, _ int) entity.MerchantOffer {
		return o.toEntity()
	}), nil
}

// FetchCardInfo карточка товара для обхода TYPE_PRODUCT_CARD.
func (a *API) FetchCardInfo(ctx context.Context, goodsID string) (entity.Goods, error) {
	req := cardRequest{GoodsID: goodsID, MerchantID: "0", Auth: a.authBlock()}

	var resp cardResponse
	if err := a.client.Call(ctx, endpointCardMainInfo, req, &resp, CallOptions{}); err != nil {
		return entity.Goods{}, fmt.Errorf("productCardMainInfo/get %s: %w", goodsID, err)
	}

	if resp.Goods.GoodsID == "" {
		resp.Goods.GoodsID = goodsID
	}

	return resp.Goods.toEntity(), nil
}

func (a *API) MerchantINN(ctx context.Context, merchantID string) (string, error) {
	req := legalInfoRequest{MerchantID: merchantID, Auth: a.authBlock()}

	var resp legalInfoResponse
	if err := a.client.Call(ctx, endpointMerchantLegal, req, &resp, CallOptions{}); err != nil {
		return "", fmt.Errorf("merchant/legalInfo/get %s: %w", merchantID, err)
	}

	return resp.Merchant.LegalInfo.INN, nil
}

// ResolveAddressID ищет адрес доставки и переключает регион запросов на него.
func (a *API) ResolveAddressID(ctx context.Context, query string) (string, error) {
	req := addressSuggestRequest{
		Count:              10,
		IsSkipRegionFilter: true,
		Query:              query,
		Auth:               a.authBlock(),
	}

	var resp addressSuggestResponse
	if err := a.client.Call(ctx, endpointAddressSuggest, req, &resp, CallOptions{}); err != nil {
		return "", fmt.Errorf("address/suggest: %w", err)
	}

	if len(resp.Items) == 0 || resp.Items[0].AddressID == "" {
		return "", domain.NewError(errcodes.NotFound, "address not found: "+query)
	}

	first := resp.Items[0]

	a.mu.Lock()
	a.addressID = first.AddressID
	if first.RegionID != "" {
		a.auth.LocationID = string(first.RegionID)
	}
	a.mu.Unlock()

	logger(ctx).InfoContext(ctx, "delivery address resolved: "+first.Full)

	return first.AddressID, nil
}

func baseGoodsID(id string) string {
	base, _, _ := strings.Cut(id, "_")

	return base
}

func firstDelivery(d []deliveryDTO) deliveryDTO {
	if len(d) == 0 {
		return deliveryDTO{}
	}

	return d[0]
}

func (g goodsDTO) toEntity() entity.Goods {
	return entity.Goods{
		GoodsID:    baseGoodsID(g.GoodsID),
		Title:      g.Title,
		WebURL:     g.WebURL,
		TitleImage: g.TitleImage,
		Brand:      g.Brand,
		Attributes: g.Attributes,
	}
}

func (i itemDTO) toEntity() entity.CatalogItem {
	fo := i.FavoriteOffer

	return entity.CatalogItem{
		Goods: i.Goods.toEntity(),
		FavoriteOffer: entity.FavoriteOffer{
			Price:             fo.Price,
			FinalPrice:        fo.FinalPrice,
			BonusAmount:       fo.BonusAmount,
			BonusPercent:      fo.BonusPercent,
			AvailableQuantity: fo.AvailableQuantity,
			MerchantID:        string(fo.MerchantID),
			MerchantName:      fo.MerchantName,
			DeliveryDate:      firstDelivery(fo.DeliveryPossibilities).DisplayDeliveryDate,
		},
		IsAvailable:    i.IsAvailable,
		HasOtherOffers: i.HasOtherOffers,
		OfferCount:     i.OfferCount,
	}
}

func (o offerDTO) toEntity() entity.MerchantOffer {
	date, _, _ := strings.Cut(firstDelivery(o.DeliveryPossibilities).Date, "T")

	return entity.MerchantOffer{
		FinalPrice:        o.FinalPrice,
		BonusAmount:       o.BonusAmountFinalPrice,
		AvailableQuantity: o.AvailableQuantity,
		MerchantID:        string(o.MerchantID),
		MerchantName:      o.MerchantName,
		MerchantRating:    o.MerchantSummaryRating,
		DeliveryDate:      date,
	}
}
