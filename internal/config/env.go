package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const envPrefix = "MALVIEW_"

// applyEnv loads ./.env (if present) without overriding the real
// environment, then applies MALVIEW_* variables.
func applyEnv(c *Config) error {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	str := func(name string, dst *string) {
		if v, ok := os.LookupEnv(envPrefix + name); ok {
			*dst = strings.TrimSpace(v)
		}
	}
	var errs []error
	num := func(name string, dst *int) {
		if v, ok := os.LookupEnv(envPrefix + name); ok {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", envPrefix, name, err))
				return
			}
			*dst = n
		}
	}
	flag := func(name string, dst *bool) {
		if v, ok := os.LookupEnv(envPrefix + name); ok {
			b, err := strconv.ParseBool(strings.TrimSpace(v))
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", envPrefix, name, err))
				return
			}
			*dst = b
		}
	}

	str("OUTPUT", &c.Output)
	str("FORMAT", &c.Format)
	num("WORKERS", &c.Workers)
	if v, ok := os.LookupEnv(envPrefix + "RATE_LIMIT"); ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sRATE_LIMIT: %w", envPrefix, err))
		} else {
			c.RateLimit = f
		}
	}
	flag("DEBUG", &c.Debug)
	flag("SKIP_BROKEN", &c.SkipBroken)
	str("ORIGIN", &c.Origin)
	flag("ENGLISH_TITLES", &c.EnglishTitles)
	str("LOCALE", &c.Locale)
	str("COOKIE", &c.Cookie)
	str("COOKIE_FILE", &c.CookieFile)
	str("USER_AGENT", &c.UserAgent)
	flag("CLOUDFLARE_BYPASS", &c.CloudflareBypass)
	num("TIMEOUT_SECONDS", &c.TimeoutSeconds)
	str("SERVE_ADDR", &c.ServeAddr)
	str("SETTINGS_BACKEND", &c.Settings.Backend)
	str("SETTINGS_PATH", &c.Settings.Path)
	str("REDIS_ADDR", &c.Settings.RedisAddr)
	str("REDIS_PASSWORD", &c.Settings.RedisPassword)
	num("REDIS_DB", &c.Settings.RedisDB)
	num("SETTINGS_DEBOUNCE_MS", &c.Settings.DebounceMS)

	return errors.Join(errs...)
}
