// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AQIDash Contributors

// Package config loads AQIDash settings. Later sources override earlier
// ones: built-in defaults, a YAML file, AQIDASH_ environment variables,
// then command-line flags.
//
// Environment variables map to keys by dropping the prefix, lowercasing
// and turning a double underscore into a dot, so AQIDASH_SESSION__TTL
// sets session.ttl.
package config

import (
	"errors"
	"io/fs"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"

	"github.com/aqidash/aqidash/internal/auth"
	"github.com/aqidash/aqidash/internal/logging"
	"github.com/aqidash/aqidash/internal/session"
	"github.com/aqidash/aqidash/internal/store"
	"github.com/aqidash/aqidash/internal/xdg"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "AQIDASH_"

// Dashboard defaults.
const (
	DefaultEmbedURL    = "https://app.powerbi.com/view?r=eyJrIjoiZjc5MDc5NTktNGJkZi00MTdkLTkwNDItYTMxZjVmY2MzZTdlIiwidCI6ImI0NmU5ZjZlLTQyOTAtNDIzZS04NjA2LTViZWJjN2RjMDM1YyJ9"
	DefaultEmbedTitle  = "Station Day Air Pollution updated"
	DefaultDatasetPath = "InfosysDataset.xlsx"
)

// Config is the complete AQIDash configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Store     StoreConfig     `koanf:"store"`
	Auth      AuthConfig      `koanf:"auth"`
	Session   SessionConfig   `koanf:"session"`
	Dashboard DashboardConfig `koanf:"dashboard"`
	Content   ContentConfig   `koanf:"content"`
	Log       LogConfig       `koanf:"log"`
}

type ServerConfig struct {
	Addr        string `koanf:"addr"`
	MetricsAddr string `koanf:"metrics_addr"` // empty disables the observability server
}

type StoreConfig struct {
	Driver      string `koanf:"driver"`
	DSN         string `koanf:"dsn"`
	AutoMigrate bool   `koanf:"auto_migrate"`
}

type AuthConfig struct {
	Hasher string `koanf:"hasher"`
}

type SessionConfig struct {
	Secret     string        `koanf:"secret"`
	TTL        time.Duration `koanf:"ttl"`
	CookieName string        `koanf:"cookie_name"`
	Secure     bool          `koanf:"secure"`
}

type DashboardConfig struct {
	EmbedURL    string `koanf:"embed_url"`
	EmbedTitle  string `koanf:"embed_title"`
	DatasetPath string `koanf:"dataset_path"`
}

type ContentConfig struct {
	Path string `koanf:"path"` // empty uses the built-in description
}

type LogConfig struct {
	Format string `koanf:"format"`
	Level  string `koanf:"level"`
}

// Defaults returns the built-in configuration as koanf keys.
func Defaults() map[string]any {
	return map[string]any{
		"server.addr":            ":8501",
		"server.metrics_addr":    "127.0.0.1:9100",
		"store.driver":           store.DriverSQLite,
		"store.dsn":              "",
		"store.auto_migrate":     true,
		"auth.hasher":            auth.HasherArgon2id,
		"session.secret":         "",
		"session.ttl":            12 * time.Hour,
		"session.cookie_name":    "aqidash_session",
		"session.secure":         false,
		"dashboard.embed_url":    DefaultEmbedURL,
		"dashboard.embed_title":  DefaultEmbedTitle,
		"dashboard.dataset_path": DefaultDatasetPath,
		"content.path":           "",
		"log.format":             logging.FormatJSON,
		"log.level":              "info",
	}
}

// flagKeys maps flag names registered by RegisterFlags to config keys.
var flagKeys = map[string]string{
	"addr":         "server.addr",
	"metrics-addr": "server.metrics_addr",
	"db-driver":    "store.driver",
	"db-dsn":       "store.dsn",
	"auto-migrate": "store.auto_migrate",
	"hasher":       "auth.hasher",
	"dataset":      "dashboard.dataset_path",
	"content":      "content.path",
	"log-format":   "log.format",
	"log-level":    "log.level",
}

// RegisterFlags adds the flags understood by Load to flags. Flag defaults are
// informational; unset flags never override other sources.
func RegisterFlags(flags *pflag.FlagSet) {
	d := Defaults()
	RegisterStoreFlags(flags)
	flags.String("addr", d["server.addr"].(string), "HTTP listen address")
	flags.String("metrics-addr", d["server.metrics_addr"].(string), "metrics/health HTTP address (empty = disabled)")
	flags.Bool("auto-migrate", d["store.auto_migrate"].(bool), "apply pending migrations on start")
	flags.String("hasher", d["auth.hasher"].(string), "password hasher (argon2id or sha256)")
	flags.String("dataset", d["dashboard.dataset_path"].(string), "dataset file shown on the dashboard")
	flags.String("content", "", "description content YAML file")
	flags.String("log-format", d["log.format"].(string), "log format (json or text)")
	flags.String("log-level", d["log.level"].(string), "log level (debug, info, warn, error)")
}

// RegisterStoreFlags adds only the credential store flags.
func RegisterStoreFlags(flags *pflag.FlagSet) {
	flags.String("db-driver", store.DriverSQLite, "credential store driver (sqlite or postgres)")
	flags.String("db-dsn", "", "database path (sqlite) or connection URL (postgres)")
}

// Load builds a Config. path names a YAML file that must exist; when empty
// the XDG config file is used if present. flags may be nil.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(Defaults(), "."), nil); err != nil {
		return nil, oops.Code("CONFIG_LOAD_FAILED").With("source", "defaults").Wrap(err)
	}

	if path == "" {
		if def, err := xdg.ConfigFile(); err == nil {
			if _, statErr := os.Stat(def); statErr == nil {
				path = def
			}
		}
	} else if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, oops.Code("CONFIG_NOT_FOUND").With("path", path).Errorf("config file not found")
		}
		return nil, oops.Code("CONFIG_READ_FAILED").With("path", path).Wrap(err)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, oops.Code("CONFIG_READ_FAILED").With("path", path).Wrap(err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, oops.Code("CONFIG_LOAD_FAILED").With("source", "env").Wrap(err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, flagValue), nil); err != nil {
			return nil, oops.Code("CONFIG_LOAD_FAILED").With("source", "flags").Wrap(err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, oops.Code("CONFIG_INVALID").Wrap(err)
	}

	if cfg.Store.Driver == store.DriverSQLite && cfg.Store.DSN == "" {
		dbPath, err := xdg.DatabaseFile()
		if err != nil {
			return nil, oops.Code("CONFIG_INVALID").With("key", "store.dsn").Wrap(err)
		}
		cfg.Store.DSN = dbPath
	}

	return &cfg, nil
}

func envKey(name string) string {
	name = strings.ToLower(strings.TrimPrefix(name, EnvPrefix))
	return strings.ReplaceAll(name, "__", ".")
}

// flagValue keeps only flags set on the command line.
func flagValue(f *pflag.Flag) (string, any) {
	key, ok := flagKeys[f.Name]
	if !ok || !f.Changed {
		return "", nil
	}
	return key, f.Value.String()
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return invalid("server.addr", "listen address is required")
	}
	switch c.Store.Driver {
	case store.DriverSQLite, store.DriverPostgres:
	default:
		return invalid("store.driver", "unknown driver %q", c.Store.Driver)
	}
	if c.Store.DSN == "" {
		return invalid("store.dsn", "dsn is required")
	}
	if _, err := auth.NewHasher(c.Auth.Hasher); err != nil || c.Auth.Hasher == "" {
		return invalid("auth.hasher", "unknown hasher %q", c.Auth.Hasher)
	}
	if n := len(c.Session.Secret); n > 0 && n < session.MinSecretLength {
		return invalid("session.secret", "secret must be at least %d bytes", session.MinSecretLength)
	}
	if c.Session.TTL <= 0 {
		return invalid("session.ttl", "ttl must be positive")
	}
	if c.Session.CookieName == "" {
		return invalid("session.cookie_name", "cookie name is required")
	}
	if u, err := url.Parse(c.Dashboard.EmbedURL); err != nil || (u.Scheme != "https" && u.Scheme != "http") || u.Host == "" {
		return invalid("dashboard.embed_url", "embed url must be an absolute http(s) URL")
	}
	if c.Log.Format == "" || !logging.ValidFormat(c.Log.Format) {
		return invalid("log.format", "log format must be 'json' or 'text', got %q", c.Log.Format)
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return invalid("log.level", "unknown log level %q", c.Log.Level)
	}
	return nil
}

func invalid(key, format string, args ...any) error {
	return oops.Code("CONFIG_INVALID").With("key", key).Errorf(format, args...)
}
