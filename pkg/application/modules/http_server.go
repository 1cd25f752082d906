package modules

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"mm_scanner/pkg/logx"
)

// HTTPServer REST API сервиса с graceful shutdown по отмене ctx.
type HTTPServer struct {
	Address           string
	Handler           http.Handler
	ReadHeaderTimeout time.Duration
	ShutdownTimeout   time.Duration
}

// Run занимает порт сразу, чтобы ошибка bind вернулась до старта остальных модулей.
func (h HTTPServer) Run(ctx context.Context, g *errgroup.Group) error {
	listener, err := (&net.ListenConfig{}).Listen(ctx, "tcp", h.Address)
	if err != nil {
		return fmt.Errorf("listen %s: %w", h.Address, err)
	}

	httpServer := &http.Server{ //nolint:exhaustruct
		Handler:           h.Handler,
		ReadHeaderTimeout: h.ReadHeaderTimeout,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	g.Go(func() error {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), h.ShutdownTimeout)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger(ctx).Error("server.Shutdown", logx.Error(err))
		}

		return nil
	})

	g.Go(func() error {
		logger(ctx).Info("http server started", slog.String("address", listener.Addr().String()))

		if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("httpServer.Serve: %w", err)
		}

		logger(ctx).Info("http server stopped", slog.String("address", h.Address))

		return nil
	})

	return nil
}
