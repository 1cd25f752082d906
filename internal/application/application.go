package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"mm_scanner/internal/config"
	"mm_scanner/internal/domain/service/notification"
	"mm_scanner/internal/domain/service/offer"
	"mm_scanner/internal/domain/service/pricerule"
	"mm_scanner/internal/infrastructure/egress"
	"mm_scanner/internal/infrastructure/megamarket"
	"mm_scanner/internal/infrastructure/notifier"
	"mm_scanner/internal/infrastructure/persistence"
	"mm_scanner/internal/infrastructure/redisstore"
	"mm_scanner/internal/metrics"
	"mm_scanner/internal/server"
	"mm_scanner/internal/transport/bot"
	"mm_scanner/internal/transport/bot/handler"
	"mm_scanner/internal/worker"
	"mm_scanner/pkg/application/connectors"
	"mm_scanner/pkg/application/modules"
	"mm_scanner/pkg/logx"
	"mm_scanner/pkg/probe"
)

const (
	httpReadHeaderTimeout = 5 * time.Second
	asynqConcurrency      = 4
)

func Run(ctx context.Context, cfg config.Config) error {
	g, ctx := errgroup.WithContext(ctx)

	// 1. Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := metrics.New(reg)

	// 2. Egress & upstream API
	pool, err := egress.NewPool(cfg.Proxies, egress.WithObserver(m))
	if err != nil {
		return fmt.Errorf("egress.NewPool: %w", err)
	}

	logger(ctx).Info("proxy pool ready", slog.Int("size", pool.Size()))

	headers := http.Header{}
	if cfg.Cookie != "" {
		headers.Set("Cookie", cfg.Cookie)
	}

	client := megamarket.NewRequestClient(pool, megamarket.Options{
		MaxAttempts:    cfg.Crawler.Attempts,
		SuccessDelay:   cfg.Crawler.Delay,
		ErrorDelay:     cfg.Crawler.ErrorDelay,
		BackoffUnit:    cfg.Crawler.BackoffUnit,
		RequestTimeout: cfg.Crawler.RequestTimeout,
		MaxRPS:         cfg.Crawler.MaxRPS,
		Headers:        headers,
		LogHTTP:        cfg.Crawler.LogHTTP,
		LogFieldMaxLen: cfg.Crawler.LogFieldMaxLen,
	}, m)

	api := megamarket.NewAPI(client)

	if cfg.Crawler.Address != "" {
		addressID, err := api.ResolveAddressID(ctx, cfg.Crawler.Address)
		if err != nil {
			return fmt.Errorf("resolve address %q: %w", cfg.Crawler.Address, err)
		}

		logger(ctx).Info("delivery address resolved", slog.String("address-id", addressID))
	}

	// 3. Storage
	pg := &connectors.Postgres{
		DSN:             cfg.Postgres.DSN,
		MaxOpenConns:    cfg.Postgres.MaxOpenConns,
		MaxIdleConns:    cfg.Postgres.MaxIdleConns,
		ConnMaxLifetime: cfg.Postgres.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.Postgres.ConnMaxIdleTime,
	}
	db := pg.Client(ctx)
	defer pg.Close(context.WithoutCancel(ctx))

	offers := persistence.NewOfferRepository(db)
	checks := map[string]probe.Check{"postgres": pg.Ping}

	var rds *connectors.Redis

	if cfg.Redis.Address != "" {
		rds = &connectors.Redis{
			Username:           cfg.Redis.Username,
			Password:           cfg.Redis.Password,
			Address:            cfg.Redis.Address,
			DatabaseNumber:     cfg.Redis.DatabaseNumber,
			PoolSize:           cfg.Redis.PoolSize,
			MinIdleConnections: cfg.Redis.MinIdleConnections,
			MaxIdleConnections: cfg.Redis.MaxIdleConnections,
		}
		defer rds.Close(context.WithoutCancel(ctx))

		checks["redis"] = rds.Ping
	}

	records, purger := recordStore(ctx, cfg, db, rds)

	gate := notification.NewGate(records, notification.Thresholds{
		MinPrice:           cfg.Alert.MinPrice,
		MaxPrice:           cfg.Alert.MaxPrice,
		MaxPriceAfterBonus: cfg.Alert.MaxPriceAfterBonus,
		MinBonusAmount:     cfg.Alert.MinBonusAmount,
		MinBonusPercent:    cfg.Alert.MinBonusPercent,
	}, cfg.Alert.RepeatWindow)

	// 4. Notifications
	tgBot, err := notifier.NewBot(cfg.Bot.Token, cfg.Bot.Debug)
	if err != nil {
		return fmt.Errorf("notifier.NewBot: %w", err)
	}

	alerts := notifier.NewTelegramBot(tgBot, notifier.Chats{
		Default:   cfg.Bot.ChatID,
		Arbitrage: cfg.Bot.ArbitrageChatID,
	})

	var sink offer.Sink

	switch cfg.Notify.Mode {
	case config.NotifyQueue:
		sink = notifier.NewQueueSink(rds.Queue(), cfg.Notify.Queue)

		modules.AsynqServer{
			RedisUsername:   cfg.Redis.Username,
			RedisPassword:   cfg.Redis.Password,
			RedisAddress:    cfg.Redis.Address,
			RedisDB:         cfg.Redis.DatabaseNumber,
			Concurrency:     asynqConcurrency,
			ShutdownTimeout: cfg.Server.ShutdownTimeout,
		}.Run(ctx, g, modules.AsynqQueues{cfg.Notify.Queue: 1}, modules.AsynqHandler{
			Pattern: notifier.TypeOfferNotify,
			Handle:  notifier.NewTaskHandler(alerts).ProcessTask,
		})
	default:
		channelSink := notifier.NewChannelSink(cfg.Notify.BufferSize)
		sink = channelSink

		g.Go(func() error {
			return ignoreCanceled(alerts.Run(ctx, channelSink.C()))
		})
	}

	// 5. Pipeline & crawler
	var rules offer.PriceRuleEvaluator = pricerule.Nop{}
	if cfg.PriceRules != nil {
		rules = cfg.PriceRules

		logger(ctx).Info("price rules loaded", slog.Int("categories", cfg.PriceRules.Len()))
	}

	pipeline := offer.NewPipeline(api, gate, offers, sink, rules, offer.Options{
		Include:           cfg.Include,
		Exclude:           cfg.Exclude,
		MerchantBlacklist: cfg.MerchantBlacklist,
		INNBlacklist:      cfg.INNBlacklist,
		AllCards:          cfg.Crawler.AllCards,
		NoCards:           cfg.Crawler.NoCards,
		MinBonusPercent:   cfg.Alert.MinBonusPercent,
	}, offer.WithObserver(m))

	scheduler := worker.NewScheduler(api, pipeline, cfg.Crawler.ThreadsFor(pool.Size()), worker.WithCrawlObserver(m))

	scannerOpts := []worker.ScannerOption{worker.WithPurgeObserver(m)}
	if purger != nil {
		scannerOpts = append(scannerOpts, worker.WithRecordPurger(purger))
	}

	scanner := worker.NewMarketScanner(api, scheduler, pipeline, offers, worker.ScannerConfig{
		MaxRedirects: cfg.Crawler.MaxRedirects,
		Retention:    cfg.Crawler.Retention,
		CyclePause:   cfg.Crawler.CyclePause,
		RepeatWindow: cfg.Alert.RepeatWindow,
	}, scannerOpts...)
	scanner.SetURLs(cfg.Crawler.URLs)

	if err := scanner.Start(ctx); err != nil {
		return fmt.Errorf("scanner.Start: %w", err)
	}

	g.Go(func() error {
		<-ctx.Done()

		scanner.Stop()
		pool.LogState(context.WithoutCancel(ctx))

		return nil
	})

	// 6. Operational surfaces
	if cfg.Bot.AdminID != 0 {
		adminBot := bot.New(tgBot, handler.New(ctx, scanner, pool, offers), cfg.Bot.AdminID)

		g.Go(func() error {
			return adminBot.Run(ctx)
		})
	}

	err = modules.HTTPServer{
		Address: cfg.Server.HTTPAddr,
		Handler: server.NewRouter(server.NewServer(
			server.NewProxyServer(pool),
			server.NewOfferServer(offers),
			server.NewScannerServer(ctx, scanner),
		), logx.NewSensitiveDataMasker()),
		ReadHeaderTimeout: httpReadHeaderTimeout,
		ShutdownTimeout:   cfg.Server.ShutdownTimeout,
	}.Run(ctx, g)
	if err != nil {
		return fmt.Errorf("http server: %w", err)
	}

	modules.MetricServer{ListenAddress: cfg.Server.MetricsAddr, Gatherer: reg}.Run(ctx, g)
	modules.ProbeServer{
		Name:          cfg.App.Name,
		Version:       cfg.App.Version,
		ListenAddress: cfg.Server.ProbeAddr,
		Checks:        checks,
	}.Run(ctx, g)

	if err := alerts.SendText(ctx, "🚀 mm_scanner запущен"); err != nil {
		logger(ctx).Warn("startup message failed, check BOT_TOKEN and BOT_CHAT_ID", logx.Error(err))
	}

	return g.Wait()
}

// recordStore хранилище записей уведомлений по ALERT_RECORDS. Второе значение
// нужно чистить вручную; у Redis и памяти свой TTL.
func recordStore(
	ctx context.Context,
	cfg config.Config,
	db *sqlx.DB,
	rds *connectors.Redis,
) (notification.RecordStore, worker.RecordPurger) {
	switch cfg.Alert.Records {
	case config.RecordsRedis:
		logger(ctx).Info("notification records in redis")

		return redisstore.NewNotificationStore(rds.Client(ctx), cfg.Redis.KeyPrefix), nil
	case config.RecordsMemory:
		logger(ctx).Info("notification records in memory")

		return notification.NewMemoryRecords(), nil
	default:
		repo := persistence.NewNotificationRepository(db)

		return repo, repo
	}
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}

	return err
}
