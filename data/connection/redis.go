package connection

import (
	"context"
	"errors"
	"fmt"

	"github.com/ncobase/docpage/data/config"
	"github.com/redis/go-redis/v9"
	"github.com/redis/go-redis/v9/maintnotifications"
)

// newRedisClient creates a client and pings it within the dial timeout
func newRedisClient(ctx context.Context, conf *config.Redis) (*redis.Client, error) {
	if conf == nil || conf.Addr == "" {
		return nil, errors.New("redis configuration is nil or empty")
	}

	rc := redis.NewClient(&redis.Options{
		Addr:         conf.Addr,
		Username:     conf.Username,
		Password:     conf.Password,
		DB:           conf.Db,
		ReadTimeout:  conf.ReadTimeout,
		WriteTimeout: conf.WriteTimeout,
		DialTimeout:  conf.DialTimeout,
		PoolSize:     conf.PoolSize,
		MaintNotificationsConfig: &maintnotifications.Config{
			Mode: maintnotifications.ModeDisabled,
		},
	})

	pingCtx, cancel := context.WithTimeout(ctx, conf.DialTimeout)
	defer cancel()
	if err := rc.Ping(pingCtx).Err(); err != nil {
		_ = rc.Close()
		return nil, fmt.Errorf("redis connect %s: %w", conf.Addr, err)
	}

	return rc, nil
}
