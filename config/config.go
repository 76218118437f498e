// Package config holds the settings of the daoism command: the data source,
// where the ORM descriptions live, logging, the slow-query threshold and the
// entity cache.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/syssam/daoism/dialect"
)

// Environment variables overriding file settings.
const (
	EnvDialect       = "DAOISM_DIALECT"
	EnvDSN           = "DAOISM_DSN"
	EnvORMDir        = "DAOISM_ORM_DIR"
	EnvLogLevel      = "DAOISM_LOG_LEVEL"
	EnvCaseSensitive = "DAOISM_CASE_SENSITIVE"
	EnvSlowQuery     = "DAOISM_SLOW_QUERY"
	EnvCacheTTL      = "DAOISM_CACHE_TTL"
)

// DataSource is the database connection.
type DataSource struct {
	// Dialect is one of postgres, mysql or sqlite. It doubles as the name of
	// the database/sql driver.
	Dialect string `yaml:"dialect"`
	DSN     string `yaml:"dsn"`
}

// Log configures the logger.
type Log struct {
	// Level is debug, info, warn or error. Defaults to info.
	Level string `yaml:"level"`

	// Format is text or json. Defaults to text.
	Format string `yaml:"format"`
}

// Config is the complete configuration.
type Config struct {
	DataSource DataSource `yaml:"dataSource"`

	// ORMDir is the directory of the YAML description files.
	ORMDir string `yaml:"ormDir"`

	// CaseSensitive keeps declared column names on postgres instead of
	// folding them to lower case.
	CaseSensitive bool `yaml:"caseSensitive"`

	Log Log `yaml:"log"`

	// SlowQuery is the duration above which statements are logged at warn
	// level. Zero disables the slow query log.
	SlowQuery time.Duration `yaml:"slowQuery"`

	// CacheTTL is the lifetime of cached entities. Zero disables the cache.
	CacheTTL time.Duration `yaml:"cacheTTL"`
}

// Load reads the YAML file at path, then applies the environment overrides
// and defaults. An empty path uses the environment alone. Unknown keys in the
// file are rejected.
func Load(path string) (Config, error) {
	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("config: %w", err)
		}
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return cfg, fmt.Errorf("config: %q: %w", path, err)
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	return cfg.FillDefaults(), nil
}

// ApplyEnv overrides the settings whose environment variable is set to a
// non-blank value. lookup is usually os.LookupEnv.
func (cfg *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	get := func(key string) (string, bool) {
		v, ok := lookup(key)
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}
	if v, ok := get(EnvDialect); ok {
		cfg.DataSource.Dialect = v
	}
	if v, ok := get(EnvDSN); ok {
		cfg.DataSource.DSN = v
	}
	if v, ok := get(EnvORMDir); ok {
		cfg.ORMDir = v
	}
	if v, ok := get(EnvLogLevel); ok {
		cfg.Log.Level = v
	}
	if v, ok := get(EnvCaseSensitive); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("config: %s: %w", EnvCaseSensitive, err)
		}
		cfg.CaseSensitive = b
	}
	for key, dst := range map[string]*time.Duration{EnvSlowQuery: &cfg.SlowQuery, EnvCacheTTL: &cfg.CacheTTL} {
		v, ok := get(key)
		if !ok {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: %s: %w", key, err)
		}
		*dst = d
	}
	return nil
}

// FillDefaults returns a copy of cfg with unset values set to their defaults.
func (cfg Config) FillDefaults() Config {
	out := cfg
	out.DataSource.Dialect = strings.ToLower(out.DataSource.Dialect)
	if out.ORMDir == "" {
		out.ORMDir = "orm"
	}
	if out.Log.Level == "" {
		out.Log.Level = "info"
	}
	if out.Log.Format == "" {
		out.Log.Format = "text"
	}
	return out
}

// Validate reports every invalid setting.
func (cfg Config) Validate() error {
	var errs []error
	switch cfg.DataSource.Dialect {
	case dialect.Postgres, dialect.MySQL, dialect.SQLite:
	case "":
		errs = append(errs, errors.New("dataSource.dialect: must not be empty"))
	default:
		errs = append(errs, fmt.Errorf("dataSource.dialect: unsupported dialect %q", cfg.DataSource.Dialect))
	}
	if cfg.DataSource.DSN == "" {
		errs = append(errs, errors.New("dataSource.dsn: must not be empty"))
	}
	if _, err := cfg.Log.level(); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	if !slices.Contains([]string{"text", "json"}, strings.ToLower(cfg.Log.Format)) {
		errs = append(errs, fmt.Errorf("log.format: must be text or json, got %q", cfg.Log.Format))
	}
	if cfg.SlowQuery < 0 {
		errs = append(errs, errors.New("slowQuery: must not be negative"))
	}
	if cfg.CacheTTL < 0 {
		errs = append(errs, errors.New("cacheTTL: must not be negative"))
	}
	return errors.Join(errs...)
}

func (l Log) level() (slog.Level, error) {
	var lv slog.Level
	err := lv.UnmarshalText([]byte(l.Level))
	return lv, err
}

// Logger returns a logger writing to w in the configured format. An invalid
// level logs at info.
func (l Log) Logger(w io.Writer) *slog.Logger {
	lv, err := l.level()
	if err != nil {
		lv = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lv}
	if strings.EqualFold(l.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
