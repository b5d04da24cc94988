package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brogergvhs/malview/internal/config"
	"github.com/brogergvhs/malview/internal/settings"
	"github.com/brogergvhs/malview/internal/ui"
)

const bilingualPage = `<div itemprop="name"><h1 class="title-name">Cowboy Bebop</h1><p class="title-english">Cowboy Bebop (English)</p></div>`

func TestStoredEnglishTitles_SelectsEnglishTitle(t *testing.T) {
	ctx := context.Background()
	log := ui.Discard()
	cfg := config.DefaultConfig()
	cfg.Settings.Path = filepath.Join(t.TempDir(), "settings.yaml")

	parse := func(t *testing.T) string {
		t.Helper()
		reg, err := newRegistry(cfg, log, storedEnglishTitles(ctx, cfg, log))
		require.NoError(t, err)
		p, err := siteProvider(reg)
		require.NoError(t, err)
		return p.Parse(bilingualPage).Title
	}

	assert.Equal(t, "Cowboy Bebop", parse(t))

	store, err := openSettings(ctx, cfg, log)
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, settings.ForceEnglishTitles, true))
	require.NoError(t, store.Close())

	assert.Equal(t, "Cowboy Bebop (English)", parse(t))
}

func TestStoredEnglishTitles_UnavailableStore(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Settings.Path = filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(cfg.Settings.Path, []byte("settings/theme: [unclosed\n"), 0o644))

	assert.Nil(t, storedEnglishTitles(context.Background(), cfg, ui.Discard()))
}

func TestLiveEnglishTitles_FollowsStore(t *testing.T) {
	ctx := context.Background()
	assert.Nil(t, liveEnglishTitles(nil))

	store, err := settings.Open(ctx, settings.NewMemoryBackend())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	prefer := liveEnglishTitles(store)
	assert.False(t, prefer())

	require.NoError(t, store.SetDebounced(settings.ForceEnglishTitles, true))
	assert.True(t, prefer())
}

func TestWatchSettings_NeedsChangeFeed(t *testing.T) {
	fb, err := settings.OpenFile(filepath.Join(t.TempDir(), "settings.yaml"))
	require.NoError(t, err)
	store, err := settings.Open(context.Background(), fb)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	var out bytes.Buffer
	err = watchSettings(context.Background(), store, &out, ui.Discard())
	assert.ErrorIs(t, err, errNoChangeFeed)
	assert.Empty(t, out.String())
}

func TestWatchSettings_PrintsMaskedChanges(t *testing.T) {
	mem := settings.NewMemoryBackend()
	store, err := settings.Open(context.Background(), mem)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	var out bytes.Buffer
	done := make(chan error, 1)
	go func() { done <- watchSettings(ctx, store, &out, ui.Discard()) }()

	n := 0
	require.Eventually(t, func() bool {
		n++
		mem.Emit(settings.KeyPrefix+"malToken", json.RawMessage(fmt.Sprintf(`"secret-%d"`, n)))
		return strings.Contains(out.String(), "malToken")
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
	assert.Contains(t, out.String(), `"value":"********"`)
	assert.Contains(t, out.String(), `"external":true`)
	assert.NotContains(t, out.String(), "secret")
}
