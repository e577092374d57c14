package bootstrap

import (
	"context"
	"crypto/tls"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	appconfig "github.com/wolfman30/coparent-mediator/internal/config"
	"github.com/wolfman30/coparent-mediator/internal/emotion"
	"github.com/wolfman30/coparent-mediator/pkg/logging"
)

const redisPingTimeout = 3 * time.Second

// BuildRedisClient returns the client backing emotion snapshots, or nil when
// REDIS_ADDR is unset. With verify, an unreachable server also yields nil so
// the tracker stays in memory.
func BuildRedisClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, verify bool) *redis.Client {
	if cfg == nil || strings.TrimSpace(cfg.RedisAddr) == "" {
		return nil
	}
	logger = logging.OrDefault(logger).With("redis_addr", cfg.RedisAddr)

	opts := &redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword}
	if cfg.RedisTLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(opts)
	if !verify {
		return client
	}

	if ctx == nil {
		ctx = context.Background()
	}
	pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn("redis not available; emotion state stays in memory", "error", err)
		_ = client.Close()
		return nil
	}
	logger.Info("emotion snapshots persisted to redis", "ttl", cfg.EmotionStateTTL.String())
	return client
}

// BuildEmotionStore returns the Redis-backed emotion store, or nil without
// Redis.
func BuildEmotionStore(redisClient *redis.Client, cfg *appconfig.Config) emotion.Store {
	if redisClient == nil {
		return nil
	}
	return emotion.NewRedisStore(redisClient, cfg.EmotionStateTTL)
}
