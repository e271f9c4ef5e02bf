//go:build wireinject
// +build wireinject

package commands

import (
	"context"

	"github.com/google/wire"
	"github.com/ncobase/docpage/concurrency/worker"
	"github.com/ncobase/docpage/config"
	"github.com/ncobase/docpage/logging/logger"
)

// initApp wires the application from its configuration.
func initApp(ctx context.Context, cfg *config.Config) (*App, func(), error) {
	panic(wire.Build(
		config.ProviderSet,
		logger.ProviderSet,
		worker.ProviderSet,
		provideTelemetry,
		provideConnections,
		provideBackend,
		provideCollector,
		wire.Struct(new(App), "*"),
	))
}
