// Package cache implementa ports.KVCache en memoria y sobre Redis.
package cache

import (
	"context"
	"log/slog"

	"github.com/alejandrodnm/valuebot/internal/ports"
)

// Open devuelve un RedisStore si addr no está vacío y responde; si no, un
// MemoryStore. Redis caído no es fatal: el cache es una optimización.
func Open(ctx context.Context, addr, password, prefix string) ports.KVCache {
	if addr == "" {
		return NewMemoryStore()
	}
	rs, err := NewRedisStore(ctx, addr, password, prefix)
	if err != nil {
		slog.Warn("redis unavailable, using in-memory cache", "addr", addr, "err", err)
		return NewMemoryStore()
	}
	return rs
}
