package commands

import (
	"context"

	"github.com/ncobase/docpage/concurrency/worker"
	"github.com/ncobase/docpage/config"
	"github.com/ncobase/docpage/data/connection"
	"github.com/ncobase/docpage/logging/logger"
	"github.com/ncobase/docpage/metrics"
	"github.com/ncobase/docpage/observes"
	"github.com/ncobase/docpage/version"
)

// App holds everything a command needs.
type App struct {
	Config    *config.Config
	Logger    *logger.Logger
	Backend   *Backend
	Pool      *worker.Pool
	Collector *metrics.PagingCollector
}

// Telemetry marks tracing and error reporting as set up.
type Telemetry struct {
	Tracing   bool
	Reporting bool
}

func provideTelemetry(ctx context.Context, cfg *config.Observes, l *logger.Logger) (*Telemetry, func(), error) {
	t := &Telemetry{}
	v := version.GetVersionInfo().Version

	if cfg.Tracer.Version == "" {
		cfg.Tracer.Version = v
	}
	shutdown, err := observes.NewTracer(ctx, cfg.Tracer)
	if err != nil {
		return nil, nil, err
	}
	t.Tracing = cfg.Tracer.URL != ""

	if cfg.Sentry.Release == "" {
		cfg.Sentry.Release = v
	}
	flush, err := observes.NewSentry(cfg.Sentry)
	if err != nil {
		_ = shutdown(ctx)
		return nil, nil, err
	}
	t.Reporting = cfg.Sentry.Dsn != ""

	cleanup := func() {
		flush()
		if err := shutdown(context.Background()); err != nil {
			l.Warnf(context.Background(), "tracer shutdown: %v", err)
		}
	}
	return t, cleanup, nil
}

func provideConnections(ctx context.Context, cfg *config.Data) (*connection.Connections, func(), error) {
	conns, err := connection.New(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return conns, func() { conns.Close(context.Background()) }, nil
}

func provideCollector() *metrics.PagingCollector {
	return metrics.NewPagingCollector(100)
}
