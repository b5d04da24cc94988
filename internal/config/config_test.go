package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/adrg/xdg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	xdg.Reload()
	t.Cleanup(xdg.Reload)

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	return dir
}

func TestLoadMerged_Defaults(t *testing.T) {
	dir := isolate(t)

	cfg, source, err := LoadMerged(Options{})
	require.NoError(t, err)

	assert.Equal(t, "(default config in memory)", source)
	assert.Equal(t, FormatJSON, cfg.Format)
	assert.Equal(t, 2, cfg.Workers)
	assert.Equal(t, "https://myanimelist.net", cfg.Origin)
	assert.Equal(t, BackendFile, cfg.Settings.Backend)
	assert.Equal(t, filepath.Join(dir, "data", AppName, "settings.yaml"), cfg.Settings.Path)
}

func TestLoadMerged_ProfileEnvFlags(t *testing.T) {
	isolate(t)

	path, err := InitDefaultConfig()
	require.NoError(t, err)

	cfg := DefaultConfig()
	cfg.Workers = 4
	cfg.Locale = "fr"
	cfg.Format = FormatText
	require.NoError(t, SaveYAML(cfg, path))

	t.Setenv("MALVIEW_LOCALE", "de")
	t.Setenv("MALVIEW_SETTINGS_BACKEND", "SQLite")

	got, source, err := LoadMerged(Options{Format: FormatMarkdown})
	require.NoError(t, err)

	assert.Equal(t, path, source)
	assert.Equal(t, 4, got.Workers)
	assert.Equal(t, "de", got.Locale)
	assert.Equal(t, FormatMarkdown, got.Format)
	assert.Equal(t, BackendSQLite, got.Settings.Backend)
	assert.Equal(t, "settings.db", filepath.Base(got.Settings.Path))
}

func TestLoadMerged_DotEnv(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("MALVIEW_WORKERS=7\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("MALVIEW_WORKERS") })

	cfg, _, err := LoadMerged(Options{IgnoreConfig: true})
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Workers)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		mut  func(*Config)
		want error
	}{
		{func(c *Config) { c.Workers = -1 }, ErrInvalidWorkers},
		{func(c *Config) { c.RateLimit = -2 }, ErrInvalidRateLimit},
		{func(c *Config) { c.Format = "xml" }, ErrInvalidFormat},
		{func(c *Config) { c.Settings.Backend = "etcd" }, ErrInvalidBackend},
		{func(c *Config) { c.Settings.Backend = BackendRedis }, ErrMissingRedisAddr},
	}

	for _, tc := range cases {
		c := DefaultConfig()
		tc.mut(c)
		assert.True(t, errors.Is(c.Validate(), tc.want), tc.want.Error())
	}

	assert.NoError(t, DefaultConfig().Validate())
}

func TestProfiles(t *testing.T) {
	isolate(t)

	_, err := InitDefaultConfig()
	require.NoError(t, err)
	_, err = InitDefaultConfig()
	assert.ErrorIs(t, err, os.ErrExist)

	_, err = CreateEmptyConfig("work")
	require.NoError(t, err)
	_, err = CreateEmptyConfig("work")
	assert.ErrorIs(t, err, ErrConfigExists)

	require.NoError(t, SwitchConfig("work"))
	label, err := CurrentLabel()
	require.NoError(t, err)
	assert.Equal(t, "work", label)

	require.NoError(t, RenameConfig("work", "job"))
	label, _ = CurrentLabel()
	assert.Equal(t, "job", label)

	list, err := ListConfigs()
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Default", list[0].Label)
	assert.True(t, list[1].Active)

	switched, err := RemoveConfig("job")
	require.NoError(t, err)
	assert.True(t, switched)
	label, _ = CurrentLabel()
	assert.Equal(t, DefaultLabel, label)

	_, err = RemoveConfig(DefaultLabel)
	assert.Error(t, err)
	assert.ErrorIs(t, SwitchConfig("missing"), ErrConfigNotFound)
	assert.ErrorIs(t, SwitchConfig(" "), ErrEmptyLabel)
}

func TestAddConfig_RejectsInvalidYAML(t *testing.T) {
	dir := isolate(t)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("workers: [nope"), 0o600))
	assert.Error(t, AddConfig("bad", bad))

	good := filepath.Join(dir, "good.yaml")
	require.NoError(t, os.WriteFile(good, []byte("workers: 3\n"), 0o600))
	require.NoError(t, AddConfig("good", good))

	cfg, err := loadYAML(profilePath("good"))
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, FormatJSON, cfg.Format)
}
