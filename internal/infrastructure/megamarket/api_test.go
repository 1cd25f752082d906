package megamarket_test

import (
	"context"
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/require"

	"mm_scanner/internal/domain"
	"mm_scanner/internal/domain/entity"
	"mm_scanner/internal/infrastructure/megamarket"
	"mm_scanner/pkg/errcodes"
)

type fakeCaller struct {
	responses map[string]string
	payloads  map[string]map[string]any
	opts      map[string]megamarket.CallOptions
}

func newFakeCaller(responses map[string]string) *fakeCaller {
	return &fakeCaller{
		responses: responses,
		payloads:  map[string]map[string]any{},
		opts:      map[string]megamarket.CallOptions{},
	}
}

func (f *fakeCaller) Call(_ context.Context, endpoint string, payload, dest any, opts megamarket.CallOptions) error {
	f.opts[endpoint] = opts

	raw, err := jsoniter.Marshal(payload)
	if err != nil {
		return err
	}

	sent := map[string]any{}
	if err := jsoniter.Unmarshal(raw, &sent); err != nil {
		return err
	}

	f.payloads[endpoint] = sent

	resp, ok := f.responses[endpoint]
	if !ok {
		return domain.NewError(errcodes.ApiError, "no response for "+endpoint)
	}

	return jsoniter.Unmarshal([]byte(resp), dest)
}

func TestAPIParseURL(t *testing.T) {
	testCases := []struct {
		name     string
		url      string
		response string
		expected entity.Listing
	}{
		{
			name: "listing with filters and sorting",
			url:  "https://megamarket.ru/catalog/smartfony/#?sort=1",
			response: `{"type":"TYPE_LISTING","params":{
				"collection":{"collectionId":"123","title":"Смартфоны"},
				"selectedListingFilters":[{"filterId":"F1","type":"LEFT_BOUND","value":"100"},{"filterId":"F2","type":0,"value":"x"}]
			}}`,
			expected: entity.Listing{
				URL:        "https://megamarket.ru/catalog/smartfony/#?sort=1",
				Type:       entity.ListingTypeListing,
				Collection: &entity.Collection{ID: "123", Title: "Смартфоны"},
				Filters: []entity.ListingFilter{
					{FilterID: "F1", Type: 1, Value: "100"},
					{FilterID: "F2", Type: 0, Value: "x"},
				},
				Sorting: 1,
			},
		},
		{
			name:     "search text from query",
			url:      "https://megamarket.ru/catalog/?q=iphone",
			response: `{"type":"TYPE_SEARCH","params":{}}`,
			expected: entity.Listing{
				URL:        "https://megamarket.ru/catalog/?q=iphone",
				Type:       entity.ListingTypeSearch,
				SearchText: "iphone",
				Filters:    []entity.ListingFilter{},
			},
		},
		{
			name:     "menu node collection fallback",
			url:      "https://megamarket.ru/catalog/elektronika/",
			response: `{"type":"TYPE_MENU_NODE","params":{"menuNode":{"collection":{"collectionId":"9","title":"Электроника"}}}}`,
			expected: entity.Listing{
				URL:        "https://megamarket.ru/catalog/elektronika/",
				Type:       entity.ListingTypeMenuNode,
				Collection: &entity.Collection{ID: "9", Title: "Электроника"},
				Filters:    []entity.ListingFilter{},
			},
		},
		{
			name:     "product card",
			url:      "https://megamarket.ru/catalog/details/phone-100042_555/",
			response: `{"type":"TYPE_PRODUCT_CARD","params":{"goods":{"goodsId":"100042_555"},"merchant":{"id":555,"slug":"shop"}}}`,
			expected: entity.Listing{
				URL:      "https://megamarket.ru/catalog/details/phone-100042_555/",
				Type:     entity.ListingTypeProductCard,
				GoodsID:  "100042",
				Merchant: &entity.Merchant{ID: "555", Slug: "shop"},
				Filters:  []entity.ListingFilter{},
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rq := require.New(t)

			caller := newFakeCaller(map[string]string{"urlService/url/parse": tc.response})
			api := megamarket.NewAPI(caller)

			listing, err := api.ParseURL(context.Background(), tc.url)
			rq.NoError(err)
			rq.Equal(tc.expected, listing)
			rq.Equal(tc.url, caller.payloads["urlService/url/parse"]["url"])
		})
	}
}

func TestAPIParseURLErrors(t *testing.T) {
	testCases := []struct {
		name     string
		url      string
		response string
		code     errcodes.ErrorCode
	}{
		{name: "not an url", url: "smartfony", code: errcodes.InvalidURL},
		{name: "empty type", url: "https://megamarket.ru/x/", response: `{"params":{}}`, code: errcodes.UnexpectedFormat},
		{
			name:     "unknown filter type",
			url:      "https://megamarket.ru/x/",
			response: `{"type":"TYPE_LISTING","params":{"selectedListingFilters":[{"filterId":"F","type":"BETWEEN","value":"1"}]}}`,
			code:     errcodes.UnexpectedFormat,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rq := require.New(t)

			api := megamarket.NewAPI(newFakeCaller(map[string]string{"urlService/url/parse": tc.response}))

			_, err := api.ParseURL(context.Background(), tc.url)
			code, ok := domain.GetCode(err)
			rq.True(ok)
			rq.Equal(tc.code, code)
		})
	}
}

func TestAPIFetchPage(t *testing.T) {
	rq := require.New(t)

	caller := newFakeCaller(map[string]string{
		"catalogService/catalog/search": `{"success":true,"limit":"44","offset":44,"total":100,
			"items":[{
				"goods":{"goodsId":"100042_1","title":"Phone","webUrl":"https://megamarket.ru/catalog/details/phone-100042/","titleImage":"img","attributes":[{"title":"Память","value":"128 ГБ"}]},
				"favoriteOffer":{"price":1000,"finalPrice":1000,"bonusAmount":150,"bonusPercent":15,"availableQuantity":3,"merchantId":77,"merchantName":"Shop",
					"deliveryPossibilities":[{"displayDeliveryDate":"завтра","date":"2026-10-15T00:00:00"}]},
				"isAvailable":true,"hasOtherOffers":true,"offerCount":2
			}]}`,
	})
	api := megamarket.NewAPI(caller)
	api.SetAddressID("addr-1")

	listing := entity.Listing{
		Type:       entity.ListingTypeListing,
		Collection: &entity.Collection{ID: "123"},
		Filters:    []entity.ListingFilter{{FilterID: "F1", Type: 1, Value: "100"}},
		Sorting:    2,
	}

	page, err := api.FetchPage(context.Background(), listing, 44)
	rq.NoError(err)
	rq.Equal(44, page.Limit)
	rq.Equal(44, page.Offset)
	rq.Equal(100, page.Total)
	rq.Len(page.Items, 1)

	item := page.Items[0]
	rq.Equal("100042", item.Goods.GoodsID)
	rq.Equal("77", item.FavoriteOffer.MerchantID)
	rq.Equal("завтра", item.FavoriteOffer.DeliveryDate)
	rq.Equal(150.0, item.FavoriteOffer.BonusAmount)
	rq.True(item.HasOtherOffers)
	rq.True(page.LastItemAvailable())

	sent := caller.payloads["catalogService/catalog/search"]
	rq.InDelta(10, sent["requestVersion"], 0)
	rq.InDelta(44, sent["limit"], 0)
	rq.InDelta(44, sent["offset"], 0)
	rq.InDelta(2, sent["sorting"], 0)
	rq.Equal("123", sent["collectionId"])
	rq.Equal("123", sent["selectedAssumedCollectionId"])
	rq.Equal("addr-1", sent["addressId"])
	rq.Equal(true, sent["showNotAvailable"])
	rq.Nil(sent["searchText"])

	auth, ok := sent["auth"].(map[string]any)
	rq.True(ok)
	rq.Equal("50", auth["locationId"])
	rq.Equal("WEB", auth["appPlatform"])
}

func TestAPIFetchPageRedirect(t *testing.T) {
	rq := require.New(t)

	api := megamarket.NewAPI(newFakeCaller(map[string]string{
		"catalogService/catalog/search": `{"items":[],"limit":0,"total":0,"processor":{"type":"MENU_NODE","url":"/catalog/smartfony/"}}`,
	}))

	page, err := api.FetchPage(context.Background(), entity.Listing{SearchText: "phone"}, 0)
	rq.NoError(err)
	rq.True(page.IsRedirect())
	rq.Equal("https://megamarket.ru/catalog/smartfony/", page.Processor.URL)
}

func TestAPIFetchOfferList(t *testing.T) {
	rq := require.New(t)

	caller := newFakeCaller(map[string]string{
		"catalogService/productOffers/get": `{"offers":[
			{"finalPrice":900,"bonusAmountFinalPrice":300,"availableQuantity":1,"merchantId":"5","merchantName":"A","merchantSummaryRating":4.8,
			 "deliveryPossibilities":[{"date":"2026-10-16T10:00:00"}]},
			{"finalPrice":950,"bonusAmountFinalPrice":0,"merchantId":6,"merchantName":"B"}
		]}`,
	})
	api := megamarket.NewAPI(caller)

	offers, err := api.FetchOfferList(context.Background(), "100042")
	rq.NoError(err)
	rq.Len(offers, 2)
	rq.Equal("2026-10-16", offers[0].DeliveryDate)
	rq.Equal(300.0, offers[0].BonusAmount)
	rq.NotNil(offers[0].MerchantRating)
	rq.Equal("6", offers[1].MerchantID)
	rq.Nil(offers[1].MerchantRating)

	sent := caller.payloads["catalogService/productOffers/get"]
	rq.Equal("100042", sent["goodsId"])
	rq.Equal("0", sent["merchantId"])
	rq.InDelta(11, sent["requestVersion"], 0)
}

func TestAPIResolveAddressID(t *testing.T) {
	rq := require.New(t)

	caller := newFakeCaller(map[string]string{
		"addressSuggestService/address/suggest":  `{"items":[{"addressId":"A1","regionId":"77","full":"Москва"}]}`,
		"catalogService/productCardMainInfo/get": `{"goods":{"goodsId":"100042_1","title":"Phone"}}`,
	})
	api := megamarket.NewAPI(caller)

	id, err := api.ResolveAddressID(context.Background(), "Москва")
	rq.NoError(err)
	rq.Equal("A1", id)
	rq.Equal("A1", api.AddressID())

	goods, err := api.FetchCardInfo(context.Background(), "100042")
	rq.NoError(err)
	rq.Equal("100042", goods.GoodsID)

	auth, ok := caller.payloads["catalogService/productCardMainInfo/get"]["auth"].(map[string]any)
	rq.True(ok)
	rq.Equal("77", auth["locationId"])
}

func TestAPIResolveAddressNotFound(t *testing.T) {
	rq := require.New(t)

	api := megamarket.NewAPI(newFakeCaller(map[string]string{
		"addressSuggestService/address/suggest": `{"items":[]}`,
	}))

	_, err := api.ResolveAddressID(context.Background(), "nowhere")
	code, _ := domain.GetCode(err)
	rq.Equal(errcodes.NotFound, code)
}

func TestAPIMerchantINN(t *testing.T) {
	rq := require.New(t)

	api := megamarket.NewAPI(newFakeCaller(map[string]string{
		"partnerService/merchant/legalInfo/get": `{"merchant":{"legalInfo":{"inn":"7701234567"}}}`,
	}))

	inn, err := api.MerchantINN(context.Background(), "5")
	rq.NoError(err)
	rq.Equal("7701234567", inn)
}

func TestAPICooldownPerEndpoint(t *testing.T) {
	rq := require.New(t)

	caller := newFakeCaller(map[string]string{
		"urlService/url/parse":                   `{"type":"TYPE_SEARCH","params":{}}`,
		"catalogService/catalog/search":          `{"items":[],"limit":44,"total":0}`,
		"catalogService/productOffers/get":       `{"offers":[]}`,
		"catalogService/productCardMainInfo/get": `{"goods":{"goodsId":"1"}}`,
		"partnerService/merchant/legalInfo/get":  `{"merchant":{"legalInfo":{"inn":"1"}}}`,
		"addressSuggestService/address/suggest":  `{"items":[{"addressId":"A1","regionId":"77"}]}`,
	})
	api := megamarket.NewAPI(caller)
	ctx := context.Background()

	_, err := api.ParseURL(ctx, "https://megamarket.ru/catalog/?q=x")
	rq.NoError(err)
	_, err = api.FetchPage(ctx, entity.Listing{SearchText: "x"}, 0)
	rq.NoError(err)
	_, err = api.FetchOfferList(ctx, "1")
	rq.NoError(err)
	_, err = api.FetchCardInfo(ctx, "1")
	rq.NoError(err)
	_, err = api.MerchantINN(ctx, "5")
	rq.NoError(err)
	_, err = api.ResolveAddressID(ctx, "Москва")
	rq.NoError(err)

	testCases := []struct {
		endpoint string
		cooldown bool
	}{
		{endpoint: "catalogService/catalog/search", cooldown: true},
		{endpoint: "catalogService/productOffers/get", cooldown: true},
		{endpoint: "urlService/url/parse", cooldown: false},
		{endpoint: "catalogService/productCardMainInfo/get", cooldown: false},
		{endpoint: "partnerService/merchant/legalInfo/get", cooldown: false},
		{endpoint: "addressSuggestService/address/suggest", cooldown: false},
	}

	for _, tc := range testCases {
		opts, ok := caller.opts[tc.endpoint]
		rq.True(ok, tc.endpoint)
		rq.Equal(tc.cooldown, opts.Cooldown, tc.endpoint)
	}
}
