package config

import (
	"time"

	"github.com/spf13/viper"
)

// MongoDB mongodb config struct
type MongoDB struct {
	URI            string        `json:"uri" yaml:"uri"`
	Database       string        `json:"database" yaml:"database"`
	MaxPoolSize    uint64        `json:"max_pool_size" yaml:"max_pool_size"`
	ConnectTimeout time.Duration `json:"connect_timeout" yaml:"connect_timeout"`
}

// getMongoDBConfigs reads MongoDB configurations
func getMongoDBConfigs(v *viper.Viper) *MongoDB {
	cfg := &MongoDB{
		URI:            v.GetString("data.mongodb.uri"),
		Database:       v.GetString("data.mongodb.database"),
		MaxPoolSize:    v.GetUint64("data.mongodb.max_pool_size"),
		ConnectTimeout: v.GetDuration("data.mongodb.connect_timeout"),
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = 10 * time.Second
	}
	return cfg
}
