package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/brogergvhs/malview/internal/config"
	"github.com/brogergvhs/malview/internal/providers"
	"github.com/brogergvhs/malview/internal/providers/mal"
	"github.com/brogergvhs/malview/internal/settings"
	"github.com/brogergvhs/malview/internal/ui"
	"github.com/brogergvhs/malview/internal/util"
)

// newRegistry builds the HTTP client from cfg and registers the site
// provider with it. preferEnglish, when set, is asked on every parse and
// adds to cfg.EnglishTitles.
func newRegistry(cfg *config.Config, log *ui.Logger, preferEnglish func() bool) (*providers.Registry, error) {
	client, err := util.NewHTTPClient(util.HTTPClientOptions{
		Timeout:          time.Duration(cfg.TimeoutSeconds) * time.Second,
		UserAgent:        util.PickUserAgent(cfg.UserAgent),
		Cookie:           cfg.Cookie,
		CookieFile:       cfg.CookieFile,
		CloudflareBypass: cfg.CloudflareBypass,
		DebugLogger:      log,
	})
	if err != nil {
		return nil, err
	}

	p := mal.New(client, mal.Options{
		EnglishTitle:  cfg.EnglishTitles,
		PreferEnglish: preferEnglish,
		Locale:        cfg.Locale,
		Origin:        cfg.Origin,
		Logger:        log,
	})

	return providers.NewRegistry(p), nil
}

func siteProvider(reg *providers.Registry) (providers.Provider, error) {
	return reg.ByName(mal.Name)
}

// storedEnglishTitles reads forceEnglishTitles once for commands that do not
// keep the settings store open. An unavailable store counts as false.
func storedEnglishTitles(ctx context.Context, cfg *config.Config, log *ui.Logger) func() bool {
	store, err := openSettings(ctx, cfg, log)
	if err != nil {
		log.Warnf("settings unavailable, ignoring %s: %v", settings.ForceEnglishTitles, err)
		return nil
	}

	v := store.Bool(settings.ForceEnglishTitles)
	if err := store.Close(); err != nil {
		log.Warnf("settings: %v", err)
	}

	return func() bool { return v }
}

// liveEnglishTitles follows forceEnglishTitles in an open store.
func liveEnglishTitles(store *settings.Store) func() bool {
	if store == nil {
		return nil
	}
	return func() bool { return store.Bool(settings.ForceEnglishTitles) }
}

// openSettings opens the configured backend and the store on top of it.
func openSettings(ctx context.Context, cfg *config.Config, log *ui.Logger) (*settings.Store, error) {
	var (
		backend settings.Backend
		err     error
	)

	switch cfg.Settings.Backend {
	case config.BackendMemory:
		backend = settings.NewMemoryBackend()
	case config.BackendSQLite:
		backend, err = settings.OpenSQLite(cfg.Settings.Path)
	case config.BackendRedis:
		backend, err = settings.OpenRedis(ctx, cfg.Settings.RedisAddr, cfg.Settings.RedisPassword, cfg.Settings.RedisDB)
	default:
		backend, err = settings.OpenFile(cfg.Settings.Path)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s settings backend: %w", cfg.Settings.Backend, err)
	}

	store, err := settings.Open(ctx, backend,
		settings.WithDebounce(time.Duration(cfg.Settings.DebounceMS)*time.Millisecond),
		settings.WithLogger(log),
	)
	if err != nil {
		_ = backend.Close()
		return nil, err
	}

	return store, nil
}
