package redisx

import (
	"context"
	"sync"
	"time"
)

// Memory is a process-local Cache with TTLs. It backs tests and the API when
// REDIS_ADDR is unset.
type Memory struct {
	mu   sync.Mutex
	data map[string]entry
	now  func() time.Time
}

type entry struct {
	val string
	exp time.Time
}

func NewMemory() *Memory {
	return &Memory{data: map[string]entry{}, now: time.Now}
}

func (m *Memory) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.data[key]
	if !ok || m.expired(e) {
		delete(m.data, key)
		return "", ErrMiss
	}
	return e.val, nil
}

func (m *Memory) Set(_ context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = entry{val: value, exp: m.now().Add(ttl)}
	return nil
}

func (m *Memory) SetNX(_ context.Context, key, value string, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.data[key]; ok && !m.expired(e) {
		return false, nil
	}
	m.data[key] = entry{val: value, exp: m.now().Add(ttl)}
	return true, nil
}

func (m *Memory) Del(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *Memory) expired(e entry) bool {
	return !m.now().Before(e.exp)
}
