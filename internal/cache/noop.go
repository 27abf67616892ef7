package cache

import (
	"context"
	"time"
)

// NoopStore используется, когда Redis выключен или недоступен на старте.
// Все чтения — промахи, все записи — отказ.
type NoopStore struct{}

func NewNoopStore() *NoopStore { return &NoopStore{} }

func (NoopStore) Get(ctx context.Context, key string) ([]byte, bool) { return nil, false }

func (NoopStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) bool {
	return false
}

func (NoopStore) Delete(ctx context.Context, keys ...string) bool { return false }

func (NoopStore) DeleteByPrefix(ctx context.Context, prefix string) int { return 0 }
