package testutil

import (
	"context"
	"strings"
	"sync"
	"time"
)

// FakeCache — in-memory реализация cache.Store для тестов.
// Down=true имитирует недоступный Redis: все операции отказывают.
type FakeCache struct {
	mu   sync.Mutex
	data map[string][]byte

	Down bool

	Hits   int
	Misses int
	Sets   int
}

func NewFakeCache() *FakeCache {
	return &FakeCache{data: map[string][]byte{}}
}

func (f *FakeCache) Get(ctx context.Context, key string) ([]byte, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Down {
		f.Misses++
		return nil, false
	}
	v, ok := f.data[key]
	if !ok {
		f.Misses++
		return nil, false
	}
	f.Hits++
	cp := make([]byte, len(v))
	copy(cp, v)
	return cp, true
}

func (f *FakeCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Down {
		return false
	}
	cp := make([]byte, len(value))
	copy(cp, value)
	f.data[key] = cp
	f.Sets++
	return true
}

func (f *FakeCache) Delete(ctx context.Context, keys ...string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Down {
		return false
	}
	for _, k := range keys {
		delete(f.data, k)
	}
	return true
}

func (f *FakeCache) DeleteByPrefix(ctx context.Context, prefix string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Down {
		return 0
	}
	n := 0
	for k := range f.data {
		if strings.HasPrefix(k, prefix) {
			delete(f.data, k)
			n++
		}
	}
	return n
}

// Has сообщает, лежит ли ключ в кэше (для ассертов в тестах).
func (f *FakeCache) Has(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.data[key]
	return ok
}

// Put кладёт произвольный снапшот напрямую (для имитации устаревшей записи).
func (f *FakeCache) Put(key string, value []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[key] = value
}
