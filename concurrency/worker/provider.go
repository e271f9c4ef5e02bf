package worker

import (
	"context"
	"time"

	"github.com/google/wire"
)

// ProviderSet is the wire provider set for the worker package.
// It provides the *Pool shared by live sources for their re-queries.
var ProviderSet = wire.NewSet(ProvidePool)

// ProvidePool creates and starts a Pool with a cleanup function that stops it.
// A nil cfg uses DefaultConfig.
func ProvidePool(cfg *Config) (*Pool, func(), error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	pool := NewPool(cfg)
	pool.Start()

	cleanup := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		pool.Stop(ctx)
	}

	return pool, cleanup, nil
}
