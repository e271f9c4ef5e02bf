package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/ncobase/docpage/validator"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. DOCPAGE_PAGING_PAGE_SIZE.
const EnvPrefix = "DOCPAGE"

var mu sync.Mutex

// Config represents the configuration implementation.
type Config struct {
	AppName  string       `validate:"required"`
	RunMode  string       `validate:"omitempty,oneof=debug release test"`
	Logger   *Logger      `validate:"required"`
	Paging   *Paging      `validate:"required"`
	Source   *Source      `validate:"required"`
	Data     *Data        `validate:"required"`
	Breaker  *Breaker     `validate:"required"`
	Live     *Live        `validate:"required"`
	Observes *Observes    `validate:"required"`
	Server   *Server      `validate:"required"`
	Viper    *viper.Viper `validate:"-"`
}

// LoadConfig loads the configuration from the file. An empty path searches
// the usual locations and falls back to defaults when no file exists.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath("/etc/docpage")
		v.AddConfigPath("$HOME/.docpage")
		v.AddConfigPath(".")
		if ex, err := os.Executable(); err == nil {
			v.AddConfigPath(filepath.Dir(ex))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	source, err := getSourceConfig(v)
	if err != nil {
		return nil, err
	}
	paging, err := getPagingConfig(v)
	if err != nil {
		return nil, err
	}
	breaker, err := getBreakerConfig(v)
	if err != nil {
		return nil, err
	}
	live, err := getLiveConfig(v)
	if err != nil {
		return nil, err
	}
	observes, err := getObservesConfig(v)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		AppName:  v.GetString("app_name"),
		RunMode:  v.GetString("run_mode"),
		Logger:   getLoggerConfig(v),
		Paging:   paging,
		Source:   source,
		Data:     getDataConfig(v),
		Breaker:  breaker,
		Live:     live,
		Observes: observes,
		Server:   getServerConfig(v),
		Viper:    v,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the loaded configuration.
func (c *Config) Validate() error {
	if err := validator.Validate(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if err := c.Live.Validate(); err != nil {
		return fmt.Errorf("invalid config: live: %w", err)
	}
	return c.Source.check(c.Data)
}

// Watch reloads the configuration whenever its file changes and passes the
// new value to callback. Reload errors are passed to onError and the previous
// configuration stays in effect.
func (c *Config) Watch(callback func(*Config), onError func(error)) {
	path := c.Viper.ConfigFileUsed()
	if path == "" {
		return
	}
	c.Viper.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		mu.Lock()
		defer mu.Unlock()

		next, err := LoadConfig(path)
		if err != nil {
			if onError != nil {
				onError(fmt.Errorf("failed to reload config: %w", err))
			}
			return
		}
		callback(next)
	})
	c.Viper.WatchConfig()
}
