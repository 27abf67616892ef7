package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Store — кэш-порт для репозиториев. Любая ошибка нижележащего хранилища
// поглощается: Get ведёт себя как промах, Set/Delete возвращают false.
// Система с мёртвым кэшем обязана работать так же, как без него.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) bool
	Delete(ctx context.Context, keys ...string) bool
	DeleteByPrefix(ctx context.Context, prefix string) int
}

// opTimeout ограничивает каждую операцию кэша, чтобы не блокировать
// критический путь при недоступном Redis.
const opTimeout = 500 * time.Millisecond

type RedisStore struct {
	client *redis.Client
	log    *zap.Logger
}

func NewRedisStore(addr, password string, db int, log *zap.Logger) (*RedisStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	log.Info("Redis connected successfully", zap.String("addr", addr))

	return &RedisStore{
		client: rdb,
		log:    log,
	}, nil
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}

func (r *RedisStore) Get(ctx context.Context, key string) ([]byte, bool) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			r.log.Warn("cache get failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	return data, true
}

func (r *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) bool {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if err := r.client.Set(ctx, key, value, ttl).Err(); err != nil {
		r.log.Warn("cache set failed", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (r *RedisStore) Delete(ctx context.Context, keys ...string) bool {
	if len(keys) == 0 {
		return true
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		r.log.Warn("cache delete failed", zap.Strings("keys", keys), zap.Error(err))
		return false
	}
	return true
}

func (r *RedisStore) DeleteByPrefix(ctx context.Context, prefix string) int {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var deleted int
	iter := r.client.Scan(ctx, 0, prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := r.client.Del(ctx, iter.Val()).Err(); err != nil {
			r.log.Warn("cache delete by prefix failed", zap.String("key", iter.Val()), zap.Error(err))
			continue
		}
		deleted++
	}
	if err := iter.Err(); err != nil {
		r.log.Warn("cache scan failed", zap.String("prefix", prefix), zap.Error(err))
	}
	return deleted
}
