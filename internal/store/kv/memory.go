package kv

import (
	"errors"
	"sync"
)

// ErrQuotaExceeded is what Memory returns from Set once its quota is hit.
var ErrQuotaExceeded = errors.New("kv: quota exceeded")

// Memory is an in-process Store, used in tests and as a fallback.
type Memory struct {
	mu    sync.Mutex
	data  map[string]string
	Quota int // max value length accepted by Set; 0 means unlimited
}

func NewMemory() *Memory {
	return &Memory{data: map[string]string{}}
}

func (m *Memory) Get(key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *Memory) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Quota > 0 && len(value) > m.Quota {
		return ErrQuotaExceeded
	}
	m.data[key] = value
	return nil
}

func (m *Memory) Remove(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}
