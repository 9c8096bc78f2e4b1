package store_test

import (
	"context"
	"sync"
	"time"

	"seatplan/internal/store"
)

// fakeKV 仅用于单元测试（内存 KV，记录 TTL）
type fakeKV struct {
	mu   sync.Mutex
	data map[string]string
	ttls map[string]time.Duration
}

func newFakeKV() *fakeKV {
	return &fakeKV{
		data: make(map[string]string),
		ttls: make(map[string]time.Duration),
	}
}

func (f *fakeKV) Get(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	v, ok := f.data[key]
	if !ok {
		return "", store.ErrMiss
	}
	return v, nil
}

func (f *fakeKV) Set(_ context.Context, key string, value string, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.data[key] = value
	f.ttls[key] = ttl
	return nil
}
