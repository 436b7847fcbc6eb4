package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Fields of the hash an artifact is stored in.
const (
	fieldData  = "data"
	fieldMtime = "mtime"
)

// DefaultRedisPrefix is prepended to every artifact key.
const DefaultRedisPrefix = "volt:"

// RedisStore keeps compiled artifacts in Redis so several processes can
// share one compile cache. Each artifact is a hash holding the contents and
// the write time in Unix nanoseconds.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// RedisOptions configures NewRedisStore.
type RedisOptions struct {
	Address  string
	Password string
	DB       int

	// Prefix defaults to DefaultRedisPrefix.
	Prefix string

	// TTL expires artifacts; zero keeps them forever.
	TTL time.Duration
}

// NewRedisStore connects lazily to the server described by opts.
func NewRedisStore(opts RedisOptions) *RedisStore {
	rdb := redis.NewClient(&redis.Options{
		Addr:     opts.Address,
		Password: opts.Password,
		DB:       opts.DB,
	})
	return NewRedisStoreWithClient(rdb, opts.Prefix, opts.TTL)
}

// NewRedisStoreWithClient wraps an existing client.
func NewRedisStoreWithClient(client redis.UniversalClient, prefix string, ttl time.Duration) *RedisStore {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisStore{client: client, prefix: prefix, ttl: ttl}
}

// Key returns the Redis key an artifact path is stored under.
func (s *RedisStore) Key(path string) string {
	return s.prefix + path
}

func (s *RedisStore) Stat(ctx context.Context, path string) (time.Time, error) {
	raw, err := s.client.HGet(ctx, s.Key(path), fieldMtime).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return time.Time{}, fmt.Errorf("%s: %w", path, ErrNotFound)
		}
		return time.Time{}, fmt.Errorf("failed to stat artifact: %w", err)
	}

	nanos, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("corrupt mtime for %s: %w", path, err)
	}
	return time.Unix(0, nanos), nil
}

func (s *RedisStore) Read(ctx context.Context, path string) ([]byte, error) {
	data, err := s.client.HGet(ctx, s.Key(path), fieldData).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to read artifact: %w", err)
	}
	return data, nil
}

func (s *RedisStore) Write(ctx context.Context, path string, data []byte) error {
	key := s.Key(path)
	now := strconv.FormatInt(time.Now().UnixNano(), 10)

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, fieldData, data, fieldMtime, now)
		if s.ttl > 0 {
			pipe.Expire(ctx, key, s.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to write artifact: %w", err)
	}
	return nil
}

// Close releases the underlying client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
