// Package config loads cinelog configuration from layered sources:
// built-in defaults, an optional YAML file named by CINELOG_CONFIG, and
// CINELOG_* environment variables, in increasing precedence.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// ConfigPathEnvVar names the optional YAML config file.
const ConfigPathEnvVar = "CINELOG_CONFIG"

type Config struct {
	// Listen is the HTTP listen address.
	Listen string `koanf:"listen"`

	// DataPath is the SQLite database path. Empty selects the in-memory
	// store (nothing survives a restart).
	DataPath string `koanf:"data_path"`

	Session SessionConfig `koanf:"session"`
	IdP     IdPConfig     `koanf:"idp"`
	Log     LogConfig     `koanf:"log"`
}

type SessionConfig struct {
	// Secret signs session and custom tokens. Required.
	Secret string `koanf:"secret"`

	// TTL is the session lifetime.
	TTL time.Duration `koanf:"ttl"`
}

// IdPConfig points at the external identity provider used for interactive
// sign-in. Both fields empty disables the flow.
type IdPConfig struct {
	Domain   string `koanf:"domain"`
	Audience string `koanf:"audience"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

func defaultConfig() Config {
	return Config{
		Listen: ":8080",
		Session: SessionConfig{
			TTL: 24 * time.Hour,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// envMappings translates environment variable names to config paths.
var envMappings = map[string]string{
	"cinelog_listen":         "listen",
	"cinelog_data_path":      "data_path",
	"cinelog_session_secret": "session.secret",
	"cinelog_session_ttl":    "session.ttl",
	"cinelog_idp_domain":     "idp.domain",
	"cinelog_idp_audience":   "idp.audience",
	"cinelog_log_level":      "log.level",
	"cinelog_log_format":     "log.format",
}

// Load builds the configuration: defaults, then the optional config file,
// then environment variables.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := os.Getenv(ConfigPathEnvVar); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	envProvider := env.Provider("CINELOG_", ".", func(key string) string {
		return envMappings[strings.ToLower(key)]
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the server cannot run with.
func (c *Config) Validate() error {
	if c.Session.Secret == "" {
		return fmt.Errorf("session secret is required (set CINELOG_SESSION_SECRET)")
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("session ttl must be positive")
	}
	if (c.IdP.Domain == "") != (c.IdP.Audience == "") {
		return fmt.Errorf("idp domain and audience must be set together")
	}
	return nil
}

// ExternalIdPEnabled reports whether interactive sign-in is configured.
func (c *Config) ExternalIdPEnabled() bool {
	return c.IdP.Domain != "" && c.IdP.Audience != ""
}
