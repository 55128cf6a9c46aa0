package storage

import (
	"context"
	"sync"

	"admin-welcome-modal/internal/modal"
)

// Memory keeps options in process. It backs development runs without
// postgres and the handler tests.
type Memory struct {
	mu   sync.RWMutex
	opts *modal.Options
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) LoadOptions(_ context.Context) (modal.Partial, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.opts == nil {
		return modal.Partial{}, ErrNotFound
	}
	return m.opts.Partial(), nil
}

func (m *Memory) SaveOptions(_ context.Context, opts modal.Options) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.opts = &opts
	return nil
}

func (m *Memory) DeleteOptions(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.opts = nil
	return nil
}
