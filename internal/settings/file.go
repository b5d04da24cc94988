package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/brogergvhs/malview/internal/util"
)

// FileBackend stores all keys in one YAML document, rewritten atomically on
// every Put.
type FileBackend struct {
	mu   sync.Mutex
	path string
	data map[string]any
}

func OpenFile(path string) (*FileBackend, error) {
	fb := &FileBackend{path: path, data: map[string]any{}}

	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return fb, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read settings file: %w", err)
	}

	if err := yaml.Unmarshal(b, &fb.data); err != nil {
		return nil, fmt.Errorf("parse settings file %s: %w", path, err)
	}
	if fb.data == nil {
		fb.data = map[string]any{}
	}

	return fb, nil
}

func (f *FileBackend) Get(_ context.Context, key string) (json.RawMessage, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	v, ok := f.data[key]
	if !ok {
		return nil, false, nil
	}

	b, err := json.Marshal(v)
	if err != nil {
		return nil, false, fmt.Errorf("encode %s: %w", key, err)
	}
	return b, true, nil
}

func (f *FileBackend) Put(_ context.Context, key string, value json.RawMessage) error {
	v, err := decode(value)
	if err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.data[key] = v
	out, err := yaml.Marshal(f.data)
	if err != nil {
		return err
	}

	return util.WriteFileAtomic(f.path, out, 0o600)
}

func (f *FileBackend) Close() error { return nil }
