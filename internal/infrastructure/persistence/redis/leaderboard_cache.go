// Package redis implements the optional leaderboard cache. Computed
// leaderboards are kept for a short TTL so a burst of /leaderboard
// requests does not re-aggregate the event log every time. The cache
// is strictly best-effort: every failure degrades to a miss.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cookie-hub/cookie-growth-bot/internal/application/query"
)

// Config holds Redis connection configuration.
type Config struct {
	Host     string
	Port     int
	Password string
	DB       int

	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DefaultConfig returns sensible local defaults.
func DefaultConfig() Config {
	return Config{
		Host:         "localhost",
		Port:         6379,
		PoolSize:     10,
		MinIdleConns: 2,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
}

// NewClient connects and verifies with a ping.
func NewClient(ctx context.Context, cfg Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis: ping: %w", err)
	}
	return client, nil
}

// DefaultTTL keeps cached boards fresh enough for an active chat while
// still absorbing request bursts.
const DefaultTTL = 30 * time.Second

// LeaderboardCache implements query.LeaderboardCache on Redis.
type LeaderboardCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewLeaderboardCache creates the cache. ttl <= 0 uses DefaultTTL.
func NewLeaderboardCache(client *redis.Client, ttl time.Duration, logger *slog.Logger) *LeaderboardCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &LeaderboardCache{client: client, ttl: ttl, logger: logger}
}

// Get returns the cached entries for the query, or a miss.
func (c *LeaderboardCache) Get(ctx context.Context, q query.LeaderboardQuery) ([]query.LeaderboardEntry, bool) {
	raw, err := c.client.Get(ctx, cacheKey(q)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("leaderboard cache read failed", slog.String("error", err.Error()))
		}
		return nil, false
	}

	var entries []query.LeaderboardEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		c.logger.Warn("leaderboard cache decode failed", slog.String("error", err.Error()))
		return nil, false
	}
	return entries, true
}

// Set stores the entries under the query key for the TTL.
func (c *LeaderboardCache) Set(ctx context.Context, q query.LeaderboardQuery, entries []query.LeaderboardEntry) {
	raw, err := json.Marshal(entries)
	if err != nil {
		c.logger.Warn("leaderboard cache encode failed", slog.String("error", err.Error()))
		return
	}
	if err := c.client.Set(ctx, cacheKey(q), raw, c.ttl).Err(); err != nil {
		c.logger.Warn("leaderboard cache write failed", slog.String("error", err.Error()))
	}
}

// cacheKey encodes every query dimension, so two different windows or
// sort keys never collide.
func cacheKey(q query.LeaderboardQuery) string {
	start, end := int64(0), int64(0)
	if q.Window.Start != nil {
		start = q.Window.Start.Unix()
	}
	if q.Window.End != nil {
		end = q.Window.End.Unix()
	}
	return fmt.Sprintf("lb:%d:%d:%d:%s:%d", q.ChatID, start, end, q.SortKey, q.Limit)
}
