package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/emilianohg/dashone/internal/logging"
)

const (
	BackendAuto     = "auto"
	BackendREST     = "rest"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
	BackendFixture  = "fixture"
)

var (
	ErrUnknownBackend = errors.New("config: unknown backend")
	ErrMissingDSN     = errors.New("config: database_url must be set for the postgres backend")
	ErrMissingREST    = errors.New("config: supabase_url and supabase_anon_key must be set for the rest backend")
	ErrInvalidLevel   = errors.New("config: log_level must be DEBUG, INFO, WARN or ERROR")
)

type Config struct {
	Backend         string `toml:"backend"`
	SupabaseURL     string `toml:"supabase_url"`
	SupabaseAnonKey string `toml:"supabase_anon_key"`
	DatabaseURL     string `toml:"database_url"`
	SQLitePath      string `toml:"sqlite_path"`
	LogLevel        string `toml:"log_level"`
	ListenAddr      string `toml:"listen_addr"`

	FixtureRosterDelayRaw  string        `toml:"fixture_roster_delay"`
	FixtureSessionDelayRaw string        `toml:"fixture_session_delay"`
	FixtureRosterDelay     time.Duration `toml:"-"`
	FixtureSessionDelay    time.Duration `toml:"-"`
}

func DefaultConfig() *Config {
	return &Config{
		Backend:                BackendAuto,
		SQLitePath:             "~/.dashone/db/dashone.sqlite",
		LogLevel:               "INFO",
		ListenAddr:             ":8080",
		FixtureRosterDelayRaw:  "800ms",
		FixtureSessionDelayRaw: "1200ms",
	}
}

func DashoneDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".dashone"), nil
}

func ConfigPath() (string, error) {
	dir, err := DashoneDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

func LogPath() (string, error) {
	dir, err := DashoneDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "dashone.log"), nil
}

func EnsureDirectories() error {
	dir, err := DashoneDir()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	return os.MkdirAll(filepath.Join(dir, "db"), 0755)
}

// Load reads ~/.dashone/config.toml, writing the defaults on first run.
func Load() (*Config, error) {
	configPath, err := ConfigPath()
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := EnsureDirectories(); err != nil {
			return nil, err
		}
		if err := Save(configPath, DefaultConfig()); err != nil {
			return nil, err
		}
	}

	return LoadFrom(configPath)
}

// LoadFrom reads the config at path, applies environment overrides and
// validates the result.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	cfg.applyEnv()

	if err := cfg.validateAndNormalize(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func Save(path string, cfg *Config) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	return encoder.Encode(cfg)
}

func (c *Config) applyEnv() {
	overrides := []struct {
		key string
		dst *string
	}{
		{"SUPABASE_URL", &c.SupabaseURL},
		{"SUPABASE_ANON_KEY", &c.SupabaseAnonKey},
		{"DATABASE_URL", &c.DatabaseURL},
		{"DASHONE_BACKEND", &c.Backend},
		{"DASHONE_LOG_LEVEL", &c.LogLevel},
	}
	for _, o := range overrides {
		if v := os.Getenv(o.key); v != "" {
			*o.dst = v
		}
	}
}

func (c *Config) validateAndNormalize() error {
	c.Backend = strings.ToLower(strings.TrimSpace(c.Backend))
	if c.Backend == "" {
		c.Backend = BackendAuto
	}
	c.LogLevel = strings.ToUpper(strings.TrimSpace(c.LogLevel))
	if c.LogLevel == "" {
		c.LogLevel = logging.LevelInfo
	}
	if !logging.ValidLevel(c.LogLevel) {
		return fmt.Errorf("%w, got %q", ErrInvalidLevel, c.LogLevel)
	}
	c.SQLitePath = expandPath(c.SQLitePath)
	c.SupabaseURL = strings.TrimRight(strings.TrimSpace(c.SupabaseURL), "/")

	switch c.Backend {
	case BackendAuto, BackendFixture, BackendSQLite:
	case BackendREST:
		if !c.HasREST() {
			return ErrMissingREST
		}
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return ErrMissingDSN
		}
	default:
		return fmt.Errorf("%w %q", ErrUnknownBackend, c.Backend)
	}

	rosterDelay, err := parseDurationAllowEmpty(c.FixtureRosterDelayRaw)
	if err != nil {
		return fmt.Errorf("config: fixture_roster_delay: %w", err)
	}
	c.FixtureRosterDelay = rosterDelay

	sessionDelay, err := parseDurationAllowEmpty(c.FixtureSessionDelayRaw)
	if err != nil {
		return fmt.Errorf("config: fixture_session_delay: %w", err)
	}
	c.FixtureSessionDelay = sessionDelay

	return nil
}

// HasREST reports whether both hosted-backend values are present.
func (c *Config) HasREST() bool {
	return c.SupabaseURL != "" && c.SupabaseAnonKey != ""
}

// ResolvedBackend turns BackendAuto into the backend that will actually be
// used: the hosted one when it is configured, the fixture set otherwise.
func (c *Config) ResolvedBackend() string {
	if c.Backend != BackendAuto {
		return c.Backend
	}
	if c.HasREST() {
		return BackendREST
	}
	return BackendFixture
}

func parseDurationAllowEmpty(raw string) (time.Duration, error) {
	if raw == "" {
		return 0, nil
	}
	return time.ParseDuration(raw)
}

func expandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		homeDir, _ := os.UserHomeDir()
		return filepath.Join(homeDir, path[1:])
	}
	return path
}
