package cliconfig

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/bft-labs/towership/internal/domain"
	"github.com/bft-labs/towership/pkg/upload"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.ServiceURL != DefaultServiceURL {
		t.Errorf("ServiceURL = %v, want %v", cfg.ServiceURL, DefaultServiceURL)
	}
	if cfg.ConnectTimeout != 20*time.Second {
		t.Errorf("ConnectTimeout = %v, want 20s", cfg.ConnectTimeout)
	}
	if cfg.ReadTimeout != 60*time.Second {
		t.Errorf("ReadTimeout = %v, want 60s", cfg.ReadTimeout)
	}
	if cfg.BatchSize != 1000 {
		t.Errorf("BatchSize = %v, want 1000", cfg.BatchSize)
	}
	if cfg.FilePrefix != upload.DefaultFilePrefix {
		t.Errorf("FilePrefix = %v, want %v", cfg.FilePrefix, upload.DefaultFilePrefix)
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := func() Config {
		c := DefaultConfig()
		c.StateDir = "/tmp/towership"
		c.APIKey = "secret"
		return c
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "valid default config", mutate: func(c *Config) {}},
		{name: "zero connect timeout", mutate: func(c *Config) { c.ConnectTimeout = 0 }, wantErr: true},
		{name: "negative read timeout", mutate: func(c *Config) { c.ReadTimeout = -time.Second }, wantErr: true},
		{name: "zero poll interval", mutate: func(c *Config) { c.PollInterval = 0 }, wantErr: true},
		{name: "zero batch size", mutate: func(c *Config) { c.BatchSize = 0 }, wantErr: true},
		{name: "negative retention", mutate: func(c *Config) { c.Retention = -time.Hour }, wantErr: true},
		{name: "unknown log level", mutate: func(c *Config) { c.LogLevel = "loud" }, wantErr: true},
		{name: "missing api key is fine locally", mutate: func(c *Config) { c.APIKey = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, domain.ErrInvalidConfig) {
				t.Errorf("Validate() error = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestConfig_ValidateDerivesPaths(t *testing.T) {
	cfg := DefaultConfig()
	cfg.StateDir = "/data/towership"
	cfg.ServiceURL = ""
	cfg.FilePrefix = ""

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if cfg.SpoolDir != filepath.Join("/data/towership", "spool") {
		t.Errorf("SpoolDir = %v", cfg.SpoolDir)
	}
	if cfg.DBPath != filepath.Join("/data/towership", "buffer.db") {
		t.Errorf("DBPath = %v", cfg.DBPath)
	}
	if cfg.ServiceURL != DefaultServiceURL {
		t.Errorf("ServiceURL = %v, want default", cfg.ServiceURL)
	}
	if cfg.FilePrefix != upload.DefaultFilePrefix {
		t.Errorf("FilePrefix = %v, want default", cfg.FilePrefix)
	}
}

func TestConfig_ValidateEndpoint(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		key     string
		wantErr bool
	}{
		{name: "https", url: "https://example.com/upload", key: "k"},
		{name: "http", url: "http://example.com/upload", key: "k"},
		{name: "missing key", url: "https://example.com/upload", wantErr: true},
		{name: "bad scheme", url: "ftp://example.com", key: "k", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.ServiceURL = tt.url
			cfg.APIKey = tt.key
			err := cfg.ValidateEndpoint()
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateEndpoint() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, domain.ErrInvalidConfig) {
				t.Errorf("error = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestConfig_MaskedAPIKey(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"", ""},
		{"abc", "***"},
		{"abcd", "****"},
		{"0123456789", "******6789"},
	}
	for _, tt := range tests {
		cfg := Config{APIKey: tt.key}
		if got := cfg.MaskedAPIKey(); got != tt.want {
			t.Errorf("MaskedAPIKey(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}
}

func TestConfig_EndpointAndTimeouts(t *testing.T) {
	cfg := Config{
		ServiceURL: "https://example.com", AppID: "app", APIKey: "key",
		ConnectTimeout: time.Second, ReadTimeout: 2 * time.Second,
	}
	want := upload.Endpoint{URL: "https://example.com", AppID: "app", APIKey: "key"}
	if got := cfg.Endpoint(); got != want {
		t.Errorf("Endpoint() = %+v, want %+v", got, want)
	}
	if got := cfg.Timeouts(); got.Connect != time.Second || got.Read != 2*time.Second {
		t.Errorf("Timeouts() = %+v", got)
	}
}
