package bootstrap

import (
	"context"
	"crypto/tls"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	appconfig "github.com/wolfman30/doorstep/internal/config"
	"github.com/wolfman30/doorstep/internal/sessions"
	"github.com/wolfman30/doorstep/pkg/logging"
)

// BuildRedisClient returns a configured Redis client or nil when disabled.
// When verify is true, a ping is issued and failures return nil.
func BuildRedisClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, verify bool) *redis.Client {
	if cfg == nil || strings.TrimSpace(cfg.RedisAddr) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	redisOptions := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOptions.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(redisOptions)
	if !verify {
		return client
	}
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis not available", "error", err)
		_ = client.Close()
		return nil
	}
	return client
}

// BuildSessionStore picks Redis when reachable and falls back to process
// memory. The returned close func releases the Redis client.
func BuildSessionStore(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (sessions.Store, func() error) {
	if logger == nil {
		logger = logging.Default()
	}
	noop := func() error { return nil }
	if cfg.UseMemorySessions {
		logger.Info("using in-memory session store")
		return sessions.NewMemoryStore(cfg.SessionTTL, cfg.SubmitLockTTL), noop
	}
	client := BuildRedisClient(ctx, cfg, logger, true)
	if client == nil {
		logger.Warn("falling back to in-memory session store")
		return sessions.NewMemoryStore(cfg.SessionTTL, cfg.SubmitLockTTL), noop
	}
	logger.Info("using redis session store", "addr", cfg.RedisAddr)
	return sessions.NewRedisStore(client, cfg.SessionTTL, cfg.SubmitLockTTL), client.Close
}

// BuildPostgresPool connects to databaseURL. An empty URL or a failed
// connection returns nil.
func BuildPostgresPool(ctx context.Context, databaseURL string, logger *logging.Logger) *pgxpool.Pool {
	if strings.TrimSpace(databaseURL) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		logger.Error("failed to create postgres pool", "error", err)
		return nil
	}
	if err := pool.Ping(ctx); err != nil {
		logger.Error("postgres not reachable", "error", err)
		pool.Close()
		return nil
	}
	return pool
}
