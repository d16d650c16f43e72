package storage

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig configures the redis snapshot store.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	// TTL bounds how long an idle session's snapshot survives.
	TTL time.Duration
}

// Redis stores snapshots as plain string values with a sliding TTL.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

var _ Storage = (*Redis)(nil)

// NewRedis connects to redis and verifies the connection.
func NewRedis(ctx context.Context, cfg RedisConfig) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, &Error{Op: "connect", Message: fmt.Sprintf("failed to ping redis at %s", cfg.Addr), Cause: err}
	}
	log.Printf("[STORE] redis snapshot store connected: %s (db %d)", cfg.Addr, cfg.DB)
	return &Redis{client: client, ttl: cfg.TTL}, nil
}

// Load implements Storage. Reading refreshes the TTL.
func (r *Redis) Load(ctx context.Context, key string) ([]byte, bool, error) {
	var (
		val []byte
		err error
	)
	if r.ttl > 0 {
		val, err = r.client.GetEx(ctx, key, r.ttl).Bytes()
	} else {
		val, err = r.client.Get(ctx, key).Bytes()
	}
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, &Error{Op: "load", Key: key, Cause: err}
	}
	return val, true, nil
}

// Save implements Storage.
func (r *Redis) Save(ctx context.Context, key string, data []byte) error {
	if err := r.client.Set(ctx, key, data, r.ttl).Err(); err != nil {
		return &Error{Op: "save", Key: key, Cause: err}
	}
	return nil
}

// Delete implements Storage.
func (r *Redis) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return &Error{Op: "delete", Key: key, Cause: err}
	}
	return nil
}

// Close releases the redis connection pool.
func (r *Redis) Close() error {
	return r.client.Close()
}
