package settings

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openMemory(t *testing.T, opts ...Option) (*Store, *MemoryBackend) {
	t.Helper()
	mem := NewMemoryBackend()
	s, err := Open(context.Background(), mem, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, mem
}

func stored(t *testing.T, b Backend, name string) any {
	t.Helper()
	raw, ok, err := b.Get(context.Background(), KeyPrefix+name)
	require.NoError(t, err)
	if !ok {
		return nil
	}
	v, err := decode(raw)
	require.NoError(t, err)
	return v
}

type recorder struct {
	mu      sync.Mutex
	changes []Change
}

func (r *recorder) add(c Change) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changes = append(r.changes, c)
}

func (r *recorder) all() []Change {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Change(nil), r.changes...)
}

func TestOpen_LoadsStoredOverDefaults(t *testing.T) {
	mem := NewMemoryBackend()
	require.NoError(t, mem.Put(context.Background(), "settings/theme", json.RawMessage(`"dark"`)))
	require.NoError(t, mem.Put(context.Background(), "settings/notAnOption", json.RawMessage(`1`)))

	s, err := Open(context.Background(), mem)
	require.NoError(t, err)
	defer s.Close()

	v, ok := s.Get("theme")
	require.True(t, ok)
	assert.Equal(t, "dark", v)

	v, _ = s.Get("videoDuration")
	assert.Equal(t, float64(85), v)

	_, ok = s.Get("notAnOption")
	assert.False(t, ok)
}

func TestSet_UnknownOption(t *testing.T) {
	s, mem := openMemory(t)

	err := s.Set(context.Background(), "nope", true)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownOption))
	assert.Equal(t, "nope is not a defined option", err.Error())

	assert.ErrorIs(t, s.SetDebounced("nope", true), ErrUnknownOption)
	assert.Zero(t, mem.Writes())
}

func TestSet_PersistsAndNotifies(t *testing.T) {
	s, mem := openMemory(t)
	var rec recorder
	s.Subscribe(rec.add)

	require.NoError(t, s.Set(context.Background(), "delay", 5))
	require.NoError(t, s.Set(context.Background(), "delay", 5))

	v, _ := s.Get("delay")
	assert.Equal(t, float64(5), v)
	assert.Equal(t, float64(5), stored(t, mem, "delay"))
	assert.Equal(t, 2, mem.Writes())
	assert.Equal(t, []Change{{Key: "delay", Value: float64(5)}}, rec.all())
}

func TestSetDebounced_Coalesces(t *testing.T) {
	s, mem := openMemory(t, WithDebounce(30*time.Millisecond))

	for _, v := range []string{"a", "b", "c", "dark"} {
		require.NoError(t, s.SetDebounced("theme", v))
	}

	v, _ := s.Get("theme")
	assert.Equal(t, "dark", v)

	require.Eventually(t, func() bool { return mem.Writes() == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, "dark", stored(t, mem, "theme"))

	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, 1, mem.Writes())
}

func TestSetDebounced_KeysIndependent(t *testing.T) {
	s, mem := openMemory(t, WithDebounce(20*time.Millisecond))

	require.NoError(t, s.SetDebounced("theme", "dark"))
	require.NoError(t, s.SetDebounced("themeOpacity", 50))

	require.Eventually(t, func() bool { return mem.Writes() == 2 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, "dark", stored(t, mem, "theme"))
	assert.Equal(t, float64(50), stored(t, mem, "themeOpacity"))
}

func TestSet_DropsPendingDebounce(t *testing.T) {
	s, mem := openMemory(t, WithDebounce(20*time.Millisecond))

	require.NoError(t, s.SetDebounced("theme", "light"))
	require.NoError(t, s.Set(context.Background(), "theme", "dark"))

	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, 1, mem.Writes())
	assert.Equal(t, "dark", stored(t, mem, "theme"))
}

// gatedBackend holds the first Put until release is closed.
type gatedBackend struct {
	*MemoryBackend
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func newGatedBackend() *gatedBackend {
	return &gatedBackend{
		MemoryBackend: NewMemoryBackend(),
		entered:       make(chan struct{}),
		release:       make(chan struct{}),
	}
}

func (g *gatedBackend) Put(ctx context.Context, key string, value json.RawMessage) error {
	first := false
	g.once.Do(func() { first = true })
	if first {
		close(g.entered)
		<-g.release
	}
	return g.MemoryBackend.Put(ctx, key, value)
}

func TestSet_WinsOverInFlightDebouncedWrite(t *testing.T) {
	gb := newGatedBackend()
	s, err := Open(context.Background(), gb, WithDebounce(10*time.Millisecond))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.SetDebounced("syncMode", "ANILIST"))
	select {
	case <-gb.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("debounced write did not start")
	}

	done := make(chan error, 1)
	go func() { done <- s.Set(context.Background(), "syncMode", "KITSU") }()

	require.Eventually(t, func() bool {
		v, _ := s.Get("syncMode")
		return v == "KITSU"
	}, 2*time.Second, 5*time.Millisecond)

	close(gb.release)
	require.NoError(t, <-done)

	v, _ := s.Get("syncMode")
	assert.Equal(t, "KITSU", v)
	assert.Equal(t, "KITSU", stored(t, gb, "syncMode"))
	assert.Equal(t, 2, gb.Writes())
}

func TestFlush_PersistsPending(t *testing.T) {
	s, mem := openMemory(t, WithDebounce(time.Hour))

	require.NoError(t, s.SetDebounced("posLeft", "right"))
	assert.Nil(t, stored(t, mem, "posLeft"))

	require.NoError(t, s.Flush(context.Background()))
	assert.Equal(t, "right", stored(t, mem, "posLeft"))
}

func TestSubscribe_Unsubscribe(t *testing.T) {
	s, _ := openMemory(t)
	var rec recorder
	cancel := s.Subscribe(rec.add)

	require.NoError(t, s.Set(context.Background(), "theme", "dark"))
	cancel()
	require.NoError(t, s.Set(context.Background(), "theme", "light"))

	assert.Len(t, rec.all(), 1)
}

func TestExternalChanges(t *testing.T) {
	s, mem := openMemory(t)
	var rec recorder
	s.Subscribe(rec.add)

	require.Eventually(t, func() bool {
		mem.Emit("other/theme", json.RawMessage(`"ignored"`))
		mem.Emit("settings/theme", json.RawMessage(`"dark"`))
		v, _ := s.Get("theme")
		return v == "dark"
	}, 2*time.Second, 10*time.Millisecond)

	changes := rec.all()
	require.NotEmpty(t, changes)
	assert.Equal(t, Change{Key: "theme", Value: "dark", External: true}, changes[0])
	for _, c := range changes {
		assert.Equal(t, "theme", c.Key)
	}
}

func TestLoad_FallsBackToCached(t *testing.T) {
	s, mem := openMemory(t)

	v, err := s.Load(context.Background(), "syncMode")
	require.NoError(t, err)
	assert.Equal(t, "MAL", v)

	require.NoError(t, mem.Put(context.Background(), "settings/syncMode", json.RawMessage(`"ANILIST"`)))
	v, err = s.Load(context.Background(), "syncMode")
	require.NoError(t, err)
	assert.Equal(t, "ANILIST", v)
}

func TestMask(t *testing.T) {
	assert.Equal(t, "********", Mask("malToken", "abc"))
	assert.Equal(t, "********", Mask("malRefresh", "abc"))
	assert.Equal(t, "", Mask("anilistToken", ""))
	assert.Equal(t, "auto", Mask("theme", "auto"))
	assert.Equal(t, false, Mask("malToken", false))
	assert.Equal(t, float64(0), Mask("kitsuToken", float64(0)))
	assert.Equal(t, "********", Mask("simklToken", true))
}

func TestDefaults_FreshCopy(t *testing.T) {
	d := Defaults()
	d["theme"] = "changed"
	assert.Equal(t, "auto", Defaults()["theme"])
	assert.Contains(t, Names(), "forceEnglishTitles")
}

func TestFileBackend_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")

	fb, err := OpenFile(path)
	require.NoError(t, err)
	s, err := Open(context.Background(), fb)
	require.NoError(t, err)
	require.NoError(t, s.Set(context.Background(), "kitsuOptions", map[string]any{"sfwFilter": true}))
	require.NoError(t, s.Set(context.Background(), "introSkipFwd", []int{1, 2}))
	require.NoError(t, s.Close())

	fb, err = OpenFile(path)
	require.NoError(t, err)
	s, err = Open(context.Background(), fb)
	require.NoError(t, err)
	defer s.Close()

	v, _ := s.Get("kitsuOptions")
	assert.Equal(t, map[string]any{"sfwFilter": true}, v)
	v, _ = s.Get("introSkipFwd")
	assert.Equal(t, []any{float64(1), float64(2)}, v)
}

func TestSQLiteBackend_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db", "settings.db")

	db, err := OpenSQLite(path)
	require.NoError(t, err)
	s, err := Open(context.Background(), db, WithDebounce(time.Hour))
	require.NoError(t, err)
	require.NoError(t, s.SetDebounced("theme", "dark"))
	require.NoError(t, s.Set(context.Background(), "malThumbnail", 200))
	require.NoError(t, s.Close())

	db, err = OpenSQLite(path)
	require.NoError(t, err)
	s, err = Open(context.Background(), db)
	require.NoError(t, err)
	defer s.Close()

	v, _ := s.Get("theme")
	assert.Equal(t, "dark", v)
	v, _ = s.Get("malThumbnail")
	assert.Equal(t, float64(200), v)
}

func TestBoolAndWatching(t *testing.T) {
	s, _ := openMemory(t)

	assert.False(t, s.Bool("forceEnglishTitles"))
	require.NoError(t, s.Set(context.Background(), "forceEnglishTitles", true))
	assert.True(t, s.Bool("forceEnglishTitles"))
	assert.False(t, s.Bool("theme"))
	assert.False(t, s.Bool("notAnOption"))
	assert.True(t, s.Watching())

	fb, err := OpenFile(filepath.Join(t.TempDir(), "settings.yaml"))
	require.NoError(t, err)
	fs, err := Open(context.Background(), fb)
	require.NoError(t, err)
	t.Cleanup(func() { _ = fs.Close() })
	assert.False(t, fs.Watching())
}
