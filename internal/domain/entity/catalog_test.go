package entity_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"mm_scanner/internal/domain/entity"
)

func TestPageOffsets(t *testing.T) {
	testCases := []struct {
		name string
		page entity.Page
		want []int
	}{
		{name: "three pages", page: entity.Page{Limit: 44, Total: 100}, want: []int{0, 44, 88}},
		{name: "exact fit", page: entity.Page{Limit: 44, Total: 88}, want: []int{0, 44}},
		{name: "single page", page: entity.Page{Limit: 44, Total: 10}, want: []int{0}},
		{name: "empty listing", page: entity.Page{Limit: 44, Total: 0}, want: []int{0}},
		{name: "zero page size", page: entity.Page{Limit: 0, Total: 100}, want: []int{0}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, tc.page.Offsets())
		})
	}
}

func TestPageLastItemAvailable(t *testing.T) {
	rq := require.New(t)

	rq.False(entity.Page{}.LastItemAvailable())
	rq.True(entity.Page{Items: []entity.CatalogItem{{IsAvailable: false}, {IsAvailable: true}}}.LastItemAvailable())
	rq.False(entity.Page{Items: []entity.CatalogItem{{IsAvailable: true}, {IsAvailable: false}}}.LastItemAvailable())
}

func TestPageIsRedirect(t *testing.T) {
	rq := require.New(t)

	rq.True(entity.Page{Processor: entity.Processor{Type: "MENU_NODE", URL: "/catalog/x/"}}.IsRedirect())
	rq.True(entity.Page{Processor: entity.Processor{Type: "COLLECTION", URL: "/catalog/y/"}}.IsRedirect())
	rq.False(entity.Page{Processor: entity.Processor{Type: "SEARCH", URL: "/catalog/y/"}}.IsRedirect())
	rq.False(entity.Page{
		Items:     []entity.CatalogItem{{}},
		Processor: entity.Processor{Type: "MENU_NODE", URL: "/catalog/x/"},
	}.IsRedirect())
}

func TestListingName(t *testing.T) {
	testCases := []struct {
		name    string
		listing entity.Listing
		want    string
	}{
		{name: "search", listing: entity.Listing{SearchText: "iPhone 15 Pro"}, want: "iphone_15_pro"},
		{name: "collection", listing: entity.Listing{Collection: &entity.Collection{Title: "Смартфоны Apple"}}, want: "смартфоны_apple"},
		{name: "merchant", listing: entity.Listing{Merchant: &entity.Merchant{Slug: "best-shop"}}, want: "best_shop"},
		{name: "unknown", listing: entity.Listing{}, want: "unknown"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, tc.listing.Name())
		})
	}
}
