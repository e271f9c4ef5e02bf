package config

import (
	"fmt"

	"github.com/ncobase/docpage/observes"
	"github.com/spf13/viper"
)

// Observes groups tracing and error reporting
type Observes struct {
	Tracer *observes.TracerOption  `mapstructure:"tracer"`
	Sentry *observes.SentryOptions `mapstructure:"sentry"`
}

func getObservesConfig(v *viper.Viper) (*Observes, error) {
	cfg := &Observes{
		Tracer: &observes.TracerOption{},
		Sentry: &observes.SentryOptions{},
	}
	if err := v.UnmarshalKey("observes", cfg); err != nil {
		return nil, fmt.Errorf("failed to read observes config: %w", err)
	}
	appName := v.GetString("app_name")
	if cfg.Tracer.Name == "" {
		cfg.Tracer.Name = appName
	}
	if cfg.Sentry.Name == "" {
		cfg.Sentry.Name = appName
	}
	return cfg, nil
}
