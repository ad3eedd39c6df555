package recon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"crosscheck/pkg/platform/sentinel"
)

const (
	resultKeyPrefix = "crosscheck:result:"
	resultIndexKey  = "crosscheck:results"
)

// RedisResultStore keeps validation results in Redis so statistics survive
// process restarts and can be shared across replicas.
type RedisResultStore struct {
	client *redis.Client
}

func NewRedisResultStore(client *redis.Client) *RedisResultStore {
	return &RedisResultStore{client: client}
}

// RedisOptions tunes the dialed connection beyond what the URL encodes.
// Zero values keep the driver defaults.
type RedisOptions struct {
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DialResultStore connects to Redis and verifies the connection before the
// store is handed out. The caller owns Close.
func DialResultStore(ctx context.Context, url string, opts RedisOptions) (*RedisResultStore, error) {
	parsed, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	if opts.PoolSize > 0 {
		parsed.PoolSize = opts.PoolSize
	}
	if opts.MinIdleConns > 0 {
		parsed.MinIdleConns = opts.MinIdleConns
	}
	if opts.DialTimeout > 0 {
		parsed.DialTimeout = opts.DialTimeout
	}
	if opts.ReadTimeout > 0 {
		parsed.ReadTimeout = opts.ReadTimeout
	}
	if opts.WriteTimeout > 0 {
		parsed.WriteTimeout = opts.WriteTimeout
	}

	client := redis.NewClient(parsed)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", errors.Join(sentinel.ErrUnavailable, err))
	}
	return &RedisResultStore{client: client}, nil
}

// Ping reports connection health for readiness checks.
func (s *RedisResultStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close releases the connection pool.
func (s *RedisResultStore) Close() error {
	return s.client.Close()
}

func (s *RedisResultStore) Save(ctx context.Context, result ValidationResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal result %s: %w", result.CorrelationKey, err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, resultKeyPrefix+result.CorrelationKey, payload, 0)
	pipe.SAdd(ctx, resultIndexKey, result.CorrelationKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save result %s: %w", result.CorrelationKey, errors.Join(sentinel.ErrUnavailable, err))
	}
	return nil
}

func (s *RedisResultStore) Get(ctx context.Context, correlationKey string) (ValidationResult, error) {
	payload, err := s.client.Get(ctx, resultKeyPrefix+correlationKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return ValidationResult{}, fmt.Errorf("result %s: %w", correlationKey, sentinel.ErrNotFound)
	}
	if err != nil {
		return ValidationResult{}, fmt.Errorf("get result %s: %w", correlationKey, errors.Join(sentinel.ErrUnavailable, err))
	}

	var result ValidationResult
	if err := json.Unmarshal(payload, &result); err != nil {
		return ValidationResult{}, fmt.Errorf("unmarshal result %s: %w", correlationKey, err)
	}
	return result, nil
}

func (s *RedisResultStore) All(ctx context.Context) ([]ValidationResult, error) {
	keys, err := s.client.SMembers(ctx, resultIndexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("list result keys: %w", errors.Join(sentinel.ErrUnavailable, err))
	}

	out := make([]ValidationResult, 0, len(keys))
	for _, key := range keys {
		result, err := s.Get(ctx, key)
		if errors.Is(err, sentinel.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, result)
	}
	return out, nil
}
