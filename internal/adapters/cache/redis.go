package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore es el KVCache compartido entre procesos (CLI y servidor).
// Todas las claves llevan el prefijo configurado.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore conecta con Redis y verifica la conexión con PING.
func NewRedisStore(ctx context.Context, addr, password, prefix string) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("cache.NewRedisStore: ping %s: %w", addr, err)
	}
	return &RedisStore{client: client, prefix: prefix}, nil
}

// Get implementa ports.KVCache.
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache.RedisStore.Get: %w", err)
	}
	return b, true, nil
}

// Set implementa ports.KVCache.
func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	if err := s.client.Set(ctx, s.prefix+key, value, ttl).Err(); err != nil {
		return fmt.Errorf("cache.RedisStore.Set: %w", err)
	}
	return nil
}

// Delete implementa ports.KVCache.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil {
		return fmt.Errorf("cache.RedisStore.Delete: %w", err)
	}
	return nil
}

// Close cierra el pool de conexiones.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
