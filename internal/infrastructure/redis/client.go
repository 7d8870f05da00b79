package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/retail-ledger/pkg/config"
	goredis "github.com/redis/go-redis/v9"
)

// NewClient crea el cliente Redis y verifica la conexión con Ping.
func NewClient(ctx context.Context, cfg config.RedisConfig) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}
