// checkurl разбирает ссылку каталога и печатает описание выдачи и план страниц.
//
//	go run ./cmd/checkurl https://megamarket.ru/catalog/smartfony/
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	jsoniter "github.com/json-iterator/go"

	"mm_scanner/internal/infrastructure/egress"
	"mm_scanner/internal/infrastructure/megamarket"
	"mm_scanner/pkg/contextx"
	"mm_scanner/pkg/logx"
)

func main() {
	proxy := flag.String("proxy", "", "proxy url, direct when empty")
	address := flag.String("address", "", "delivery address")
	attempts := flag.Int("attempts", 3, "attempts per call")
	verbose := flag.Bool("v", false, "log http traffic")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: checkurl [-proxy URL] [-address ADDR] <catalog url>")
		os.Exit(2)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	level := "info"
	if *verbose {
		level = "debug"
	}

	ctx = contextx.WithLogger(ctx, logx.NewLogger(os.Stderr, level, false))

	if err := run(ctx, flag.Arg(0), *proxy, *address, *attempts, *verbose); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

type report struct {
	Listing  any    `json:"listing"`
	Name     string `json:"name"`
	Total    int    `json:"total,omitempty"`
	PageSize int    `json:"pageSize,omitempty"`
	Offsets  []int  `json:"offsets,omitempty"`
	Redirect string `json:"redirect,omitempty"`
	Goods    any    `json:"goods,omitempty"`
	Offers   int    `json:"offers,omitempty"`
}

func run(ctx context.Context, rawURL, proxy, address string, attempts int, verbose bool) error {
	var raw []string
	if proxy != "" {
		raw = []string{proxy}
	}

	proxies, err := egress.Build(raw, false)
	if err != nil {
		return err
	}

	pool, err := egress.NewPool(proxies)
	if err != nil {
		return err
	}

	client := megamarket.NewRequestClient(pool, megamarket.Options{
		MaxAttempts:    attempts,
		SuccessDelay:   time.Second,
		ErrorDelay:     5 * time.Second,
		BackoffUnit:    time.Second,
		RequestTimeout: 15 * time.Second,
		LogHTTP:        verbose,
		LogFieldMaxLen: 4096,
	}, nil)

	api := megamarket.NewAPI(client)

	if address != "" {
		if _, err := api.ResolveAddressID(ctx, address); err != nil {
			return fmt.Errorf("resolve address: %w", err)
		}
	}

	listing, err := api.ParseURL(ctx, rawURL)
	if err != nil {
		return fmt.Errorf("parse url: %w", err)
	}

	r := report{Listing: listing, Name: listing.Name()}

	if listing.IsProductCard() {
		goods, err := api.FetchCardInfo(ctx, listing.GoodsID)
		if err != nil {
			return fmt.Errorf("card info: %w", err)
		}

		offers, err := api.FetchOfferList(ctx, listing.GoodsID)
		if err != nil {
			return fmt.Errorf("offer list: %w", err)
		}

		r.Goods = goods
		r.Offers = len(offers)
	} else {
		page, err := api.FetchPage(ctx, listing, 0)
		if err != nil {
			return fmt.Errorf("fetch page: %w", err)
		}

		if page.IsRedirect() {
			r.Redirect = page.Processor.URL
		} else {
			r.Total = page.Total
			r.PageSize = page.Limit
			r.Offsets = page.Offsets()
		}
	}

	enc := jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")

	return enc.Encode(r)
}
