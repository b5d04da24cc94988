package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/brogergvhs/malview/internal/util"
)

const (
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
	FormatText     = "text"

	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMemory = "memory"

	// OutputStdout writes records to standard output instead of files.
	OutputStdout = "-"
)

type Config struct {
	Output     string  `yaml:"output"`
	Format     string  `yaml:"format"`
	Workers    int     `yaml:"workers"`
	RateLimit  float64 `yaml:"rate_limit"`
	Debug      bool    `yaml:"debug"`
	SkipBroken bool    `yaml:"skip_broken"`

	Origin        string `yaml:"origin"`
	EnglishTitles bool   `yaml:"english_titles"`
	Locale        string `yaml:"locale"`

	Cookie           string `yaml:"cookie"`
	CookieFile       string `yaml:"cookie_file"`
	UserAgent        string `yaml:"user_agent"`
	CloudflareBypass bool   `yaml:"cloudflare_bypass"`
	TimeoutSeconds   int    `yaml:"timeout_seconds"`

	ServeAddr string `yaml:"serve_addr"`

	Settings SettingsConfig `yaml:"settings"`
}

type SettingsConfig struct {
	Backend       string `yaml:"backend"`
	Path          string `yaml:"path"`
	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`
	DebounceMS    int    `yaml:"debounce_ms"`
}

// Options are command line overrides; zero values leave the config alone.
type Options struct {
	IgnoreConfig  bool
	Debug         bool
	Output        string
	Format        string
	Workers       int
	RateLimit     float64
	SkipBroken    bool
	EnglishTitles bool
	Locale        string
	Cookie        string
	CookieFile    string
	UserAgent     string
	ServeAddr     string
}

func DefaultConfig() *Config {
	return &Config{
		Output:         OutputStdout,
		Format:         FormatJSON,
		Workers:        2,
		RateLimit:      1,
		Origin:         "https://myanimelist.net",
		Locale:         "en",
		TimeoutSeconds: 30,
		ServeAddr:      ":8080",
		Settings: SettingsConfig{
			Backend:    BackendFile,
			DebounceMS: 1000,
		},
	}
}

func SaveYAML(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	return util.WriteFileAtomic(path, data, 0o644)
}

func loadYAML(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	c := DefaultConfig()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, err
	}

	return c, nil
}

// LoadMerged resolves the effective config: active profile (or defaults),
// then environment, then flags. The second result describes the source.
func LoadMerged(opts Options) (*Config, string, error) {
	cfg, source, err := loadBase(opts.IgnoreConfig)
	if err != nil {
		return nil, "", err
	}

	if err := applyEnv(cfg); err != nil {
		return nil, "", err
	}
	mergeConfig(cfg, opts)
	normalizeDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, "", fmt.Errorf("%s: %w", source, err)
	}

	return cfg, source, nil
}

func loadBase(ignore bool) (*Config, string, error) {
	if ignore {
		return DefaultConfig(), "(ignored config)", nil
	}

	activePath, err := ActiveConfigPath()
	if err == ErrNoConfig || activePath == "" {
		return DefaultConfig(), "(default config in memory)", nil
	}
	if err != nil {
		return nil, "", err
	}

	cfg, err := loadYAML(activePath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load config %s: %w", activePath, err)
	}

	return cfg, activePath, nil
}

func mergeConfig(c *Config, o Options) {
	if o.Output != "" {
		c.Output = o.Output
	}
	if o.Format != "" {
		c.Format = o.Format
	}
	if o.Workers != 0 {
		c.Workers = o.Workers
	}
	if o.RateLimit != 0 {
		c.RateLimit = o.RateLimit
	}
	if o.Debug {
		c.Debug = true
	}
	if o.SkipBroken {
		c.SkipBroken = true
	}
	if o.EnglishTitles {
		c.EnglishTitles = true
	}
	if o.Locale != "" {
		c.Locale = o.Locale
	}
	if o.Cookie != "" {
		c.Cookie = o.Cookie
	}
	if o.CookieFile != "" {
		c.CookieFile = o.CookieFile
	}
	if o.UserAgent != "" {
		c.UserAgent = o.UserAgent
	}
	if o.ServeAddr != "" {
		c.ServeAddr = o.ServeAddr
	}
}

func normalizeDefaults(c *Config) {
	d := DefaultConfig()

	if c.Output == "" {
		c.Output = d.Output
	}
	c.Format = strings.ToLower(c.Format)
	if c.Format == "" {
		c.Format = d.Format
	}
	if c.Workers == 0 {
		c.Workers = d.Workers
	}
	if c.Origin == "" {
		c.Origin = d.Origin
	}
	c.Origin = strings.TrimRight(c.Origin, "/")
	if c.Locale == "" {
		c.Locale = d.Locale
	}
	if c.TimeoutSeconds == 0 {
		c.TimeoutSeconds = d.TimeoutSeconds
	}
	if c.ServeAddr == "" {
		c.ServeAddr = d.ServeAddr
	}
	c.Settings.Backend = strings.ToLower(c.Settings.Backend)
	if c.Settings.Backend == "" {
		c.Settings.Backend = d.Settings.Backend
	}
	if c.Settings.DebounceMS == 0 {
		c.Settings.DebounceMS = d.Settings.DebounceMS
	}
	if c.Settings.Path == "" {
		c.Settings.Path = defaultSettingsPath(c.Settings.Backend)
	}
}

func defaultSettingsPath(backend string) string {
	switch backend {
	case BackendSQLite:
		return filepath.Join(DataRoot(), "settings.db")
	case BackendFile:
		return filepath.Join(DataRoot(), "settings.yaml")
	}
	return ""
}

func (c *Config) Validate() error {
	if c.Workers < 1 {
		return ErrInvalidWorkers
	}
	if c.RateLimit < 0 {
		return ErrInvalidRateLimit
	}
	if c.TimeoutSeconds < 0 {
		return ErrInvalidTimeout
	}

	switch c.Format {
	case FormatJSON, FormatMarkdown, FormatText:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidFormat, c.Format)
	}

	switch c.Settings.Backend {
	case BackendFile, BackendSQLite, BackendMemory:
	case BackendRedis:
		if c.Settings.RedisAddr == "" {
			return ErrMissingRedisAddr
		}
	default:
		return fmt.Errorf("%w: %q", ErrInvalidBackend, c.Settings.Backend)
	}

	return nil
}

func (c *Config) Print(w io.Writer) {
	fmt.Fprintf(w, " -output: %s\n", c.Output)
	fmt.Fprintf(w, " -format: %s\n", c.Format)
	fmt.Fprintf(w, " -workers: %d\n", c.Workers)
	fmt.Fprintf(w, " -rate_limit: %g/s\n", c.RateLimit)
	fmt.Fprintf(w, " -origin: %s\n", c.Origin)
	fmt.Fprintf(w, " -locale: %s\n", c.Locale)
	if c.EnglishTitles {
		fmt.Fprintf(w, " -english_titles: %t\n", c.EnglishTitles)
	}
	if c.Debug {
		fmt.Fprintf(w, " -debug: %t\n", c.Debug)
	}
	if c.CookieFile != "" {
		fmt.Fprintf(w, " -cookie_file: %s\n", c.CookieFile)
	}
	if c.Cookie != "" {
		fmt.Fprintf(w, " -cookie: %s\n", "********")
	}
	if c.CloudflareBypass {
		fmt.Fprintf(w, " -cloudflare_bypass: %t\n", c.CloudflareBypass)
	}
	if c.SkipBroken {
		fmt.Fprintf(w, " -skip_broken: %t\n", c.SkipBroken)
	}
	fmt.Fprintf(w, " -serve_addr: %s\n", c.ServeAddr)
	fmt.Fprintf(w, " -settings.backend: %s\n", c.Settings.Backend)
	if c.Settings.Path != "" {
		fmt.Fprintf(w, " -settings.path: %s\n", c.Settings.Path)
	}
	if c.Settings.RedisAddr != "" {
		fmt.Fprintf(w, " -settings.redis_addr: %s\n", c.Settings.RedisAddr)
	}
}
