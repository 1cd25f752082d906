package modules

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"mm_scanner/pkg/metrics"
	"mm_scanner/pkg/probe"
)

type runner interface {
	Run(ctx context.Context) error
}

func goRun(ctx context.Context, g *errgroup.Group, name string, r runner) {
	g.Go(func() error {
		if err := r.Run(ctx); err != nil {
			return fmt.Errorf("%s.Run: %w", name, err)
		}

		return nil
	})
}

// MetricServer отдаёт /metrics из Gatherer; nil значит реестр по умолчанию.
type MetricServer struct {
	ListenAddress string
	Gatherer      prometheus.Gatherer
}

func (m MetricServer) Run(ctx context.Context, g *errgroup.Group) {
	goRun(ctx, g, "prometheusServer", metrics.NewPrometheusServer(m.ListenAddress, m.Gatherer))
}

// ProbeServer /healthz и /ready; /ready прогоняет Checks (postgres, redis).
type ProbeServer struct {
	Name          string
	Version       string
	ListenAddress string
	Checks        map[string]probe.Check
}

func (p ProbeServer) Run(ctx context.Context, g *errgroup.Group) {
	goRun(ctx, g, "probeServer", probe.NewServer(
		p.ListenAddress,
		probe.Options{Name: p.Name, Version: p.Version},
		p.Checks,
	))
}
