package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var ErrInvalidTTL = errors.New("cache: ttl must be > 0")

const reminderKeyPrefix = "reminder"

type RedisOptions struct {
	Addr     string
	Password string
	DB       int
}

// RedisReminderLedger stores one key per (auction, horizon) reminder with
// SETNX, so only the first caller sees it as new. Keys expire after the ttl
// passed to MarkSent.
type RedisReminderLedger struct {
	client *redis.Client
}

func NewRedisReminderLedger(ctx context.Context, opts RedisOptions) (*RedisReminderLedger, error) {
	if opts.Addr == "" {
		return nil, errors.New("REDIS_ADDR is required")
	}
	client := redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Password:     opts.Password,
		DB:           opts.DB,
		PoolSize:     10,
		MinIdleConns: 2,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", opts.Addr, err)
	}
	return &RedisReminderLedger{client: client}, nil
}

func (l *RedisReminderLedger) MarkSent(ctx context.Context, auctionID uuid.UUID, horizon, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		return false, ErrInvalidTTL
	}
	ok, err := l.client.SetNX(ctx, reminderKey(auctionID, horizon), time.Now().UTC().Format(time.RFC3339), ttl).Result()
	if err != nil {
		return false, fmt.Errorf("mark reminder sent: %w", err)
	}
	return ok, nil
}

func (l *RedisReminderLedger) Release(ctx context.Context, auctionID uuid.UUID, horizon time.Duration) error {
	if err := l.client.Del(ctx, reminderKey(auctionID, horizon)).Err(); err != nil {
		return fmt.Errorf("release reminder: %w", err)
	}
	return nil
}

func (l *RedisReminderLedger) Ping(ctx context.Context) error {
	return l.client.Ping(ctx).Err()
}

func (l *RedisReminderLedger) Close() error {
	return l.client.Close()
}

func reminderKey(auctionID uuid.UUID, horizon time.Duration) string {
	return fmt.Sprintf("%s:%s:%s", reminderKeyPrefix, auctionID, horizon)
}
