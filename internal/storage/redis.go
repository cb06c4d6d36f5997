package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisSlots stores each slot as a plain string key under a prefix.
type RedisSlots struct {
	rdb    *redis.Client
	prefix string
}

var _ Slots = (*RedisSlots)(nil)

// NewRedisSlots connects to url (redis://host:port/db) and pings it.
func NewRedisSlots(ctx context.Context, url, prefix string) (*RedisSlots, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return NewRedisSlotsFromClient(rdb, prefix), nil
}

func NewRedisSlotsFromClient(rdb *redis.Client, prefix string) *RedisSlots {
	return &RedisSlots{rdb: rdb, prefix: prefix}
}

func (r *RedisSlots) key(name string) string {
	return r.prefix + name
}

func (r *RedisSlots) Get(ctx context.Context, key string) (string, error) {
	val, err := r.rdb.Get(ctx, r.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrSlotNotFound
	}
	if err != nil {
		return "", fmt.Errorf("redis get %s: %w", key, err)
	}
	return val, nil
}

func (r *RedisSlots) Set(ctx context.Context, key, value string) error {
	if err := r.rdb.Set(ctx, r.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (r *RedisSlots) Close() error {
	return r.rdb.Close()
}
