package database

import (
	"context"
	"sync"
)

// MemoryKVClient keeps values in process memory. It backs the "memory"
// backend and tests.
type MemoryKVClient struct {
	mu     sync.RWMutex
	values map[string][]byte
}

var _ KVClient = (*MemoryKVClient)(nil)

// NewMemoryKVClient 创建内存KV客户端
func NewMemoryKVClient() *MemoryKVClient {
	return &MemoryKVClient{values: make(map[string][]byte)}
}

func (c *MemoryKVClient) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.values[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

func (c *MemoryKVClient) Set(_ context.Context, key string, value []byte) error {
	v := make([]byte, len(value))
	copy(v, value)
	c.mu.Lock()
	c.values[key] = v
	c.mu.Unlock()
	return nil
}

func (c *MemoryKVClient) Ping(context.Context) error { return nil }

func (c *MemoryKVClient) Close() error { return nil }
