package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CINELOG_SESSION_SECRET", "s3cret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Listen != ":8080" {
		t.Errorf("listen = %q", cfg.Listen)
	}
	if cfg.Session.TTL != 24*time.Hour {
		t.Errorf("ttl = %v", cfg.Session.TTL)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "json" {
		t.Errorf("log defaults = %+v", cfg.Log)
	}
	if cfg.ExternalIdPEnabled() {
		t.Error("idp should be disabled by default")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("CINELOG_SESSION_SECRET", "s3cret")
	t.Setenv("CINELOG_LISTEN", ":9090")
	t.Setenv("CINELOG_DATA_PATH", "/tmp/cinelog.db")
	t.Setenv("CINELOG_SESSION_TTL", "30m")
	t.Setenv("CINELOG_LOG_LEVEL", "debug")
	t.Setenv("CINELOG_IDP_DOMAIN", "cinelog.example.auth0.com")
	t.Setenv("CINELOG_IDP_AUDIENCE", "https://api.cinelog.example")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Listen != ":9090" {
		t.Errorf("listen = %q", cfg.Listen)
	}
	if cfg.DataPath != "/tmp/cinelog.db" {
		t.Errorf("data path = %q", cfg.DataPath)
	}
	if cfg.Session.TTL != 30*time.Minute {
		t.Errorf("ttl = %v", cfg.Session.TTL)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("log level = %q", cfg.Log.Level)
	}
	if !cfg.ExternalIdPEnabled() {
		t.Error("idp should be enabled")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			"valid",
			Config{Session: SessionConfig{Secret: "x", TTL: time.Hour}},
			false,
		},
		{
			"missing secret",
			Config{Session: SessionConfig{TTL: time.Hour}},
			true,
		},
		{
			"non-positive ttl",
			Config{Session: SessionConfig{Secret: "x"}},
			true,
		},
		{
			"idp domain without audience",
			Config{
				Session: SessionConfig{Secret: "x", TTL: time.Hour},
				IdP:     IdPConfig{Domain: "d"},
			},
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
