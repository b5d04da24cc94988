package settings

import (
	"context"
	"encoding/json"
)

// Backend persists raw JSON values under prefixed keys.
type Backend interface {
	Get(ctx context.Context, key string) (json.RawMessage, bool, error)
	Put(ctx context.Context, key string, value json.RawMessage) error
	Close() error
}

// Watcher is implemented by backends shared with other writers. Watch
// blocks until ctx is done, calling fn for every change made elsewhere.
type Watcher interface {
	Watch(ctx context.Context, fn func(key string, value json.RawMessage)) error
}
