package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/helpdesk-hq/helpdesk-service/internal/config"
)

const revokedTokenPrefix = "auth:revoked:"

// Redis wraps the go-redis client.
type Redis struct {
	Client *redis.Client
}

// NewRedis connects to Redis using the provided configuration.
func NewRedis(cfg config.RedisConfig, logger *zap.Logger) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		logger.Warn("unable to reach redis", zap.Error(err))
	} else {
		logger.Info("connected to redis")
	}

	return &Redis{Client: client}
}

// Close closes the client.
func (r *Redis) Close() {
	if r != nil && r.Client != nil {
		_ = r.Client.Close()
	}
}

// Ping verifies Redis connectivity.
func (r *Redis) Ping(ctx context.Context) error {
	if r == nil || r.Client == nil {
		return errors.New("redis client not configured")
	}
	return r.Client.Ping(ctx).Err()
}

// Revoke stores a token id in the denylist until the token would expire anyway.
func (r *Redis) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if r == nil || r.Client == nil {
		return errors.New("redis client not configured")
	}
	if ttl <= 0 {
		return nil
	}
	return r.Client.Set(ctx, revokedTokenPrefix+tokenID, "1", ttl).Err()
}

// IsRevoked reports whether a token id has been revoked.
func (r *Redis) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	if r == nil || r.Client == nil {
		return false, nil
	}
	_, err := r.Client.Get(ctx, revokedTokenPrefix+tokenID).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
