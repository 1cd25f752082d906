package handler_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"mm_scanner/internal/transport/bot/handler"
)

func TestParsePage(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		data string
		page int
		ok   bool
	}{
		{data: "urls_page:2", page: 2, ok: true},
		{data: "urls_page:0"},
		{data: "urls_page:x"},
		{data: "noop"},
	}

	for _, tc := range testCases {
		t.Run(tc.data, func(t *testing.T) {
			t.Parallel()
			rq := require.New(t)

			page, ok := handler.ParsePage(tc.data)
			rq.Equal(tc.ok, ok)
			rq.Equal(tc.page, page)
		})
	}
}

func TestIsCatalogURL(t *testing.T) {
	t.Parallel()
	rq := require.New(t)

	rq.True(handler.IsCatalogURL("https://megamarket.ru/catalog/smartfony/"))
	rq.True(handler.IsCatalogURL("https://www.megamarket.ru/catalog/?q=iphone"))
	rq.True(handler.IsCatalogURL("https://spb.megamarket.ru/catalog/"))
	rq.False(handler.IsCatalogURL("https://example.com/catalog/"))
	rq.False(handler.IsCatalogURL("https://notmegamarket.ru/"))
	rq.False(handler.IsCatalogURL("megamarket.ru/catalog/"))
}
