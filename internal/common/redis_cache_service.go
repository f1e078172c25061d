package common

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const redisOpTimeout = 3 * time.Second

// RedisStore implements Store on a shared Redis database. Values are
// JSON encoded under "<namespace>:<key>" with no TTL. Redis errors are
// logged and reported as a miss so a read never fails on the cache.
type RedisStore[K comparable, V any] struct {
	client    *redis.Client
	namespace string
	logger    *zap.SugaredLogger
}

var (
	_ Store[string, int] = (*RedisStore[string, int])(nil)
	_ Store[string, int] = (*MemoryStore[string, int])(nil)
)

// NewRedisStore creates a Redis-backed store scoped to namespace
func NewRedisStore[K comparable, V any](client *redis.Client, namespace string, logger *zap.SugaredLogger) *RedisStore[K, V] {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &RedisStore[K, V]{
		client:    client,
		namespace: namespace,
		logger:    logger,
	}
}

func (r *RedisStore[K, V]) key(key K) string {
	return r.namespace + ":" + storeKey(key)
}

func (r *RedisStore[K, V]) opContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), redisOpTimeout)
}

// Get retrieves a value from Redis by key
func (r *RedisStore[K, V]) Get(key K) (V, bool) {
	var zero V
	ctx, cancel := r.opContext()
	defer cancel()

	data, err := r.client.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return zero, false
	}
	if err != nil {
		r.logger.Warnw("redis get failed", "namespace", r.namespace, "key", key, "error", err)
		return zero, false
	}

	var val V
	if err := json.Unmarshal(data, &val); err != nil {
		r.logger.Warnw("redis value undecodable", "namespace", r.namespace, "key", key, "error", err)
		return zero, false
	}
	return val, true
}

// Set stores a value in Redis without expiration
func (r *RedisStore[K, V]) Set(key K, value V) {
	data, err := json.Marshal(value)
	if err != nil {
		r.logger.Warnw("redis value unencodable", "namespace", r.namespace, "key", key, "error", err)
		return
	}

	ctx, cancel := r.opContext()
	defer cancel()
	if err := r.client.Set(ctx, r.key(key), data, 0).Err(); err != nil {
		r.logger.Warnw("redis set failed", "namespace", r.namespace, "key", key, "error", err)
	}
}

func (r *RedisStore[K, V]) Has(key K) bool {
	ctx, cancel := r.opContext()
	defer cancel()

	n, err := r.client.Exists(ctx, r.key(key)).Result()
	if err != nil {
		r.logger.Warnw("redis exists failed", "namespace", r.namespace, "key", key, "error", err)
		return false
	}
	return n > 0
}

// Clear deletes every key in this store's namespace. Other namespaces
// sharing the database are untouched.
func (r *RedisStore[K, V]) Clear() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	iter := r.client.Scan(ctx, 0, r.namespace+":*", 500).Iterator()
	batch := make([]string, 0, 500)
	flush := func() {
		if len(batch) == 0 {
			return
		}
		if err := r.client.Del(ctx, batch...).Err(); err != nil {
			r.logger.Warnw("redis clear failed", "namespace", r.namespace, "error", err)
		}
		batch = batch[:0]
	}
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == cap(batch) {
			flush()
		}
	}
	flush()
	if err := iter.Err(); err != nil {
		r.logger.Warnw("redis scan failed", "namespace", r.namespace, "error", err)
	}
}

// Size counts the keys in this namespace with SCAN.
func (r *RedisStore[K, V]) Size() int {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	count := 0
	iter := r.client.Scan(ctx, 0, r.namespace+":*", 500).Iterator()
	for iter.Next(ctx) {
		count++
	}
	if err := iter.Err(); err != nil {
		r.logger.Warnw("redis scan failed", "namespace", r.namespace, "error", err)
	}
	return count
}
