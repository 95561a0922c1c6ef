package kvstore

import (
	"context"
	"sync"
)

// Memory is an in-process KV for tests and ephemeral runs. MaxBytes, when
// positive, caps the total stored byte size the way a browser's
// localStorage quota would.
type Memory struct {
	mu       sync.RWMutex
	values   map[string]string
	maxBytes int
}

func NewMemory() *Memory {
	return &Memory{values: make(map[string]string)}
}

// NewMemoryWithQuota returns a Memory that fails Set with ErrOutOfSpace
// once the write would push total stored bytes past maxBytes.
func NewMemoryWithQuota(maxBytes int) *Memory {
	return &Memory{values: make(map[string]string), maxBytes: maxBytes}
}

func (m *Memory) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	m.mu.RLock()
	v, ok := m.values[key]
	m.mu.RUnlock()
	return v, ok, nil
}

func (m *Memory) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.maxBytes > 0 {
		total := len(key) + len(value)
		for k, v := range m.values {
			if k == key {
				continue
			}
			total += len(k) + len(v)
		}
		if total > m.maxBytes {
			return ErrOutOfSpace
		}
	}
	m.values[key] = value
	return nil
}
