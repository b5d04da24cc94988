// Package settings is a cached key/value store for the extension options.
// Reads come from memory; writes update memory, notify subscribers and are
// persisted to a Backend either at once (Set) or after a quiet period per
// key (SetDebounced).
package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/bep/debounce"

	"github.com/brogergvhs/malview/internal/ui"
)

const DefaultDebounce = time.Second

var ErrUnknownOption = errors.New("not a defined option")

// Change is delivered to subscribers after a value changed in memory.
type Change struct {
	Key      string `json:"key"`
	Value    any    `json:"value"`
	External bool   `json:"external"`
}

type Option func(*Store)

func WithDebounce(d time.Duration) Option {
	return func(s *Store) { s.delay = d }
}

func WithLogger(l *ui.Logger) Option {
	return func(s *Store) { s.log = l }
}

type Store struct {
	backend Backend
	delay   time.Duration
	log     *ui.Logger

	mu         sync.Mutex
	options    map[string]any
	pending    map[string]any
	versions   map[string]uint64
	keyLocks   map[string]*sync.Mutex
	debouncers map[string]func(func())

	subMu   sync.Mutex
	subs    map[int]func(Change)
	nextSub int

	stopWatch context.CancelFunc
	watchDone chan struct{}
}

// Open loads every defined option from backend over its default and, when
// backend is a Watcher, starts applying changes made elsewhere.
func Open(ctx context.Context, backend Backend, opts ...Option) (*Store, error) {
	s := &Store{
		backend:    backend,
		delay:      DefaultDebounce,
		log:        ui.Discard(),
		options:    Defaults(),
		pending:    map[string]any{},
		versions:   map[string]uint64{},
		keyLocks:   map[string]*sync.Mutex{},
		debouncers: map[string]func(func()){},
		subs:       map[int]func(Change){},
	}
	for _, o := range opts {
		o(s)
	}

	loaded := map[string]any{}
	for _, name := range Names() {
		raw, ok, err := backend.Get(ctx, KeyPrefix+name)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", name, err)
		}
		if !ok {
			continue
		}

		v, err := decode(raw)
		if err != nil {
			s.log.Warnf("settings: ignoring stored %s: %v", name, err)
			continue
		}
		s.options[name] = v
		loaded[name] = Mask(name, v)
	}
	s.log.Debugf("settings loaded: %v", loaded)

	if w, ok := backend.(Watcher); ok {
		wctx, cancel := context.WithCancel(context.Background())
		s.stopWatch = cancel
		s.watchDone = make(chan struct{})

		go func() {
			defer close(s.watchDone)
			if err := w.Watch(wctx, s.applyExternal); err != nil {
				s.log.Errorf("settings: watch stopped: %v", err)
			}
		}()
	}

	return s, nil
}

// Get returns the cached value of a defined option.
func (s *Store) Get(name string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.options[name]
	return v, ok
}

// Bool reports whether name holds true.
func (s *Store) Bool(name string) bool {
	v, _ := s.Get(name)
	b, _ := v.(bool)
	return b
}

// Watching reports whether the backend delivers changes made elsewhere.
func (s *Store) Watching() bool {
	return s.stopWatch != nil
}

// Load reads name from the backend, falling back to the cached value when
// nothing is stored.
func (s *Store) Load(ctx context.Context, name string) (any, error) {
	raw, ok, err := s.backend.Get(ctx, KeyPrefix+name)
	if err != nil {
		return nil, err
	}
	if !ok {
		v, _ := s.Get(name)
		return v, nil
	}

	return decode(raw)
}

// All returns a copy of every cached option.
func (s *Store) All() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]any, len(s.options))
	for k, v := range s.options {
		out[k] = v
	}
	return out
}

// Set updates name in memory and persists it now. A pending debounced
// write for name is dropped.
func (s *Store) Set(ctx context.Context, name string, value any) error {
	v, err := s.prepare(name, value)
	if err != nil {
		return err
	}

	s.mu.Lock()
	delete(s.pending, name)
	changed := s.swap(name, v)
	ver := s.bump(name)
	s.mu.Unlock()

	if changed {
		s.notify(Change{Key: name, Value: v})
	}

	return s.persistVersion(ctx, name, v, ver)
}

// SetDebounced updates name in memory at once and persists only the last
// value written within the debounce window.
func (s *Store) SetDebounced(name string, value any) error {
	v, err := s.prepare(name, value)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.pending[name] = v
	changed := s.swap(name, v)
	s.bump(name)
	d, ok := s.debouncers[name]
	if !ok {
		d = debounce.New(s.delay)
		s.debouncers[name] = d
	}
	s.mu.Unlock()

	if changed {
		s.notify(Change{Key: name, Value: v})
	}

	d(func() { s.flushKey(name) })
	return nil
}

// Flush persists all pending debounced writes now.
func (s *Store) Flush(ctx context.Context) error {
	s.mu.Lock()
	pending := s.pending
	s.pending = map[string]any{}
	versions := make(map[string]uint64, len(pending))
	for name := range pending {
		versions[name] = s.versions[name]
	}
	s.mu.Unlock()

	var errs []error
	for name, v := range pending {
		if err := s.persistVersion(ctx, name, v, versions[name]); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Subscribe registers fn for every change and returns its cancel func.
func (s *Store) Subscribe(fn func(Change)) func() {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

// Close flushes pending writes, stops watching and closes the backend.
func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := s.Flush(ctx)

	if s.stopWatch != nil {
		s.stopWatch()
		<-s.watchDone
	}

	return errors.Join(err, s.backend.Close())
}

func (s *Store) prepare(name string, value any) (any, error) {
	s.mu.Lock()
	_, ok := s.options[name]
	s.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%s is %w", name, ErrUnknownOption)
	}

	v, err := normalize(value)
	if err != nil {
		return nil, fmt.Errorf("option %s: %w", name, err)
	}
	return v, nil
}

// swap must be called with s.mu held.
func (s *Store) swap(name string, v any) bool {
	old, ok := s.options[name]
	s.options[name] = v
	return !ok || !reflect.DeepEqual(old, v)
}

// bump must be called with s.mu held.
func (s *Store) bump(name string) uint64 {
	s.versions[name]++
	return s.versions[name]
}

func (s *Store) flushKey(name string) {
	s.mu.Lock()
	v, ok := s.pending[name]
	delete(s.pending, name)
	ver := s.versions[name]
	s.mu.Unlock()
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.persistVersion(ctx, name, v, ver); err != nil {
		s.log.Errorf("settings: %v", err)
	}
}

// persistVersion writes v unless name changed again after version ver was
// taken; the newer writer persists instead. Writes of one key never overlap.
func (s *Store) persistVersion(ctx context.Context, name string, v any, ver uint64) error {
	s.mu.Lock()
	l, ok := s.keyLocks[name]
	if !ok {
		l = &sync.Mutex{}
		s.keyLocks[name] = l
	}
	s.mu.Unlock()

	l.Lock()
	defer l.Unlock()

	s.mu.Lock()
	stale := s.versions[name] != ver
	s.mu.Unlock()
	if stale {
		s.log.Debugf("settings: skip stale write of %s", name)
		return nil
	}

	return s.persist(ctx, name, v)
}

func (s *Store) persist(ctx context.Context, name string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if err := s.backend.Put(ctx, KeyPrefix+name, raw); err != nil {
		return fmt.Errorf("persist %s: %w", name, err)
	}
	return nil
}

func (s *Store) applyExternal(key string, raw json.RawMessage) {
	name, ok := strings.CutPrefix(key, KeyPrefix)
	if !ok {
		return
	}

	v, err := decode(raw)
	if err != nil {
		s.log.Warnf("settings: ignoring external %s: %v", key, err)
		return
	}

	s.mu.Lock()
	changed := s.swap(name, v)
	s.mu.Unlock()

	if !changed {
		return
	}

	s.log.Infof("Update %s option to %v", key, Mask(name, v))
	s.notify(Change{Key: name, Value: v, External: true})
}

func (s *Store) notify(c Change) {
	s.subMu.Lock()
	fns := make([]func(Change), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(c)
	}
}
