package redis

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hxnx/aboutbot/internal/logger"
	redislib "github.com/redis/go-redis/v9"
)

var (
	client *redislib.Client
	once   sync.Once
)

type Config struct {
	Host     string
	Port     int
	Password string
	DB       int
}

func Init(cfg Config) (*redislib.Client, error) {
	var initErr error

	once.Do(func() {
		addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
		c := redislib.NewClient(&redislib.Options{
			Addr:     addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		})

		attempts := 5
		backoff := 200 * time.Millisecond

		for attempt := 1; attempt <= attempts; attempt++ {
			ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			err := c.Ping(ctx).Err()
			cancel()

			if err == nil {
				client = c
				initErr = nil
				logger.Component("redis").Info("connected", "addr", addr)
				return
			}

			initErr = err
			logger.Component("redis").Debug("ping failed", "attempt", attempt, "err", err)
			if attempt < attempts {
				time.Sleep(backoff)
				backoff *= 2
			}
		}

		_ = c.Close()
	})

	if client == nil && initErr == nil {
		return nil, fmt.Errorf("redis client not initialized")
	}

	return client, initErr
}

func Client() *redislib.Client {
	return client
}

func Close() error {
	if client == nil {
		return nil
	}
	return client.Close()
}
