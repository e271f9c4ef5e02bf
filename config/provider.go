package config

import "github.com/google/wire"

// ProviderSet is the wire provider set for the config package.
// It extracts sub-configurations from *Config for other modules to use.
//
// Available configurations:
//   - *Logger: Logger configuration
//   - *Paging: Paginator configuration
//   - *Source: Source selection
//   - *Data: Data layer configuration
//   - *Breaker: Source circuit breaker
//   - *Live: Live re-query worker pool
//   - *Observes: Tracing and Sentry
//   - *Server: HTTP listener
var ProviderSet = wire.NewSet(
	ProvideLoggerConfig,
	ProvidePagingConfig,
	ProvideSourceConfig,
	ProvideDataConfig,
	ProvideBreakerConfig,
	ProvideLiveConfig,
	ProvideObservesConfig,
	ProvideServerConfig,
)

// ProvideLoggerConfig provides the logger configuration.
func ProvideLoggerConfig(cfg *Config) *Logger {
	if cfg == nil {
		return nil
	}
	return cfg.Logger
}

// ProvidePagingConfig provides the paginator configuration.
func ProvidePagingConfig(cfg *Config) *Paging {
	if cfg == nil {
		return nil
	}
	return cfg.Paging
}

// ProvideSourceConfig provides the source selection.
func ProvideSourceConfig(cfg *Config) *Source {
	if cfg == nil {
		return nil
	}
	return cfg.Source
}

// ProvideDataConfig provides the data layer configuration.
func ProvideDataConfig(cfg *Config) *Data {
	if cfg == nil {
		return nil
	}
	return cfg.Data
}

// ProvideBreakerConfig provides the circuit breaker configuration.
func ProvideBreakerConfig(cfg *Config) *Breaker {
	if cfg == nil {
		return nil
	}
	return cfg.Breaker
}

// ProvideLiveConfig provides the live worker pool configuration.
func ProvideLiveConfig(cfg *Config) *Live {
	if cfg == nil {
		return nil
	}
	return cfg.Live
}

// ProvideObservesConfig provides the tracing and error reporting configuration.
func ProvideObservesConfig(cfg *Config) *Observes {
	if cfg == nil {
		return nil
	}
	return cfg.Observes
}

// ProvideServerConfig provides the HTTP listener configuration.
func ProvideServerConfig(cfg *Config) *Server {
	if cfg == nil {
		return nil
	}
	return cfg.Server
}
