package view_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"mm_scanner/internal/domain/entity"
	"mm_scanner/internal/infrastructure/egress"
	"mm_scanner/internal/transport/bot/view"
	"mm_scanner/internal/worker"
)

func TestURLsPage(t *testing.T) {
	t.Parallel()

	urls := make([]string, 0, 25)
	for i := range 25 {
		urls = append(urls, fmt.Sprintf("https://megamarket.ru/catalog/%d/", i))
	}

	testCases := []struct {
		name     string
		urls     []string
		page     int
		wantPage int
		contains []string
		absent   []string
	}{
		{
			name:     "first page",
			urls:     urls,
			page:     1,
			wantPage: 1,
			contains: []string{"стр. 1/3", "1. <code>https://megamarket.ru/catalog/0/</code>", "10. "},
			absent:   []string{"11. "},
		},
		{
			name:     "last page",
			urls:     urls,
			page:     3,
			wantPage: 3,
			contains: []string{"стр. 3/3", "25. "},
			absent:   []string{"20. "},
		},
		{
			name:     "page out of range",
			urls:     urls,
			page:     10,
			wantPage: 3,
			contains: []string{"стр. 3/3"},
		},
		{
			name:     "empty",
			page:     2,
			wantPage: 1,
			contains: []string{"Список URL пуст"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			rq := require.New(t)

			text, page := view.URLsPage(tc.urls, tc.page)
			rq.Equal(tc.wantPage, page)

			for _, s := range tc.contains {
				rq.Contains(text, s)
			}

			for _, s := range tc.absent {
				rq.NotContains(text, s)
			}
		})
	}
}

func TestStatus(t *testing.T) {
	t.Parallel()
	rq := require.New(t)

	text := view.Status(worker.Status{Running: true, URLs: 3, Cycles: 7}, 5)
	rq.Contains(text, "🟢 работает")
	rq.Contains(text, "<b>URL:</b> 3")
	rq.Contains(text, "<b>Прокси:</b> 5")
	rq.Contains(text, "ещё не было")
}

func TestProxies(t *testing.T) {
	t.Parallel()
	rq := require.New(t)

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	text := view.Proxies([]egress.ProxyState{
		{ID: "direct", Successes: 2},
		{ID: "http://1.2.3.4:8080", Busy: true},
		{ID: "http://5.6.7.8:8080", UsableAt: now.Add(time.Minute), RateLimits: 1},
	}, now)

	rq.Contains(text, "Прокси (3)")
	rq.Contains(text, "🟢 <code>direct</code> ✅2")
	rq.Contains(text, "🟡 <code>http://1.2.3.4:8080</code>")
	rq.Contains(text, "⏳ <code>http://5.6.7.8:8080</code> ✅0 🚫1")
}

func TestOffers(t *testing.T) {
	t.Parallel()
	rq := require.New(t)

	rq.Equal(view.OffersEmpty, view.Offers(nil))

	text := view.Offers([]entity.Offer{{Title: "A&B", URL: "https://x", Price: 1999.5, BonusAmount: 600}})
	rq.Contains(text, "A&amp;B")
	rq.Contains(text, "1999.5₽")
	rq.Contains(text, "🟢30%")
}
