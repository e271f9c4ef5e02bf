package config

import (
	"fmt"

	"github.com/ncobase/docpage/concurrency/worker"
	"github.com/ncobase/docpage/paging"
	"github.com/ncobase/docpage/source/breaker"
	"github.com/spf13/viper"
)

// Paging is the paginator configuration
type Paging = paging.Config

// Breaker is the source circuit breaker configuration
type Breaker = breaker.Config

// Live is the worker pool configuration of live re-queries
type Live = worker.Config

func getPagingConfig(v *viper.Viper) (*Paging, error) {
	cfg := paging.DefaultConfig()
	cfg.Name = v.GetString("paging.name")
	cfg.PageSize = getIntOrDefault(v, "paging.page_size", cfg.PageSize)
	cfg.ListenForUpdates = getBoolOrDefault(v, "paging.listen_for_updates", cfg.ListenForUpdates)
	cfg.StreamBuffer = getIntOrDefault(v, "paging.stream_buffer", cfg.StreamBuffer)
	return cfg, nil
}

func getBreakerConfig(v *viper.Viper) (*Breaker, error) {
	cfg := breaker.DefaultConfig()
	cfg.Enabled = getBoolOrDefault(v, "breaker.enabled", cfg.Enabled)
	cfg.MaxRequests = getUint32OrDefault(v, "breaker.max_requests", cfg.MaxRequests)
	cfg.Interval = getDurationOrDefault(v, "breaker.interval", cfg.Interval)
	cfg.Timeout = getDurationOrDefault(v, "breaker.timeout", cfg.Timeout)
	cfg.MinRequests = getUint32OrDefault(v, "breaker.min_requests", cfg.MinRequests)
	cfg.FailureRatio = getFloat64OrDefault(v, "breaker.failure_ratio", cfg.FailureRatio)
	return cfg, nil
}

func getLiveConfig(v *viper.Viper) (*Live, error) {
	cfg := worker.DefaultConfig()
	cfg.MaxWorkers = getIntOrDefault(v, "live.max_workers", cfg.MaxWorkers)
	cfg.QueueSize = getIntOrDefault(v, "live.queue_size", cfg.QueueSize)
	cfg.TaskTimeout = getDurationOrDefault(v, "live.task_timeout", cfg.TaskTimeout)
	if cfg.TaskTimeout < 0 {
		return nil, fmt.Errorf("invalid live.task_timeout %s", cfg.TaskTimeout)
	}
	return cfg, nil
}
