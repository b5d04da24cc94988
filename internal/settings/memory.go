package settings

import (
	"context"
	"encoding/json"
	"sync"
)

// MemoryBackend keeps values in process. Emit simulates a write by another
// process and reaches every active Watch.
type MemoryBackend struct {
	mu       sync.Mutex
	data     map[string]json.RawMessage
	writes   int
	watchers map[int]func(string, json.RawMessage)
	nextID   int
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		data:     map[string]json.RawMessage{},
		watchers: map[int]func(string, json.RawMessage){},
	}
}

func (m *MemoryBackend) Get(_ context.Context, key string) (json.RawMessage, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, ok := m.data[key]
	return v, ok, nil
}

func (m *MemoryBackend) Put(_ context.Context, key string, value json.RawMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data[key] = append(json.RawMessage(nil), value...)
	m.writes++
	return nil
}

// Writes counts Put calls.
func (m *MemoryBackend) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

func (m *MemoryBackend) Emit(key string, value json.RawMessage) {
	m.mu.Lock()
	m.data[key] = value
	fns := make([]func(string, json.RawMessage), 0, len(m.watchers))
	for _, fn := range m.watchers {
		fns = append(fns, fn)
	}
	m.mu.Unlock()

	for _, fn := range fns {
		fn(key, value)
	}
}

func (m *MemoryBackend) Watch(ctx context.Context, fn func(string, json.RawMessage)) error {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.watchers[id] = fn
	m.mu.Unlock()

	<-ctx.Done()

	m.mu.Lock()
	delete(m.watchers, id)
	m.mu.Unlock()
	return nil
}

func (m *MemoryBackend) Close() error { return nil }
