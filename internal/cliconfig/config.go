package cliconfig

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/bft-labs/towership/internal/domain"
	"github.com/bft-labs/towership/pkg/upload"
)

// DefaultServiceURL is the default measurement upload endpoint.
const DefaultServiceURL = "https://opencellid.org/measure/uploadCsv"

// Config holds CLI configuration for towership.
type Config struct {
	ServiceURL string
	AppID      string
	APIKey     string

	ConnectTimeout time.Duration
	ReadTimeout    time.Duration

	SpoolDir string
	StateDir string
	DBPath   string

	BatchSize    int
	PollInterval time.Duration
	Retention    time.Duration
	FilePrefix   string

	MetricsAddr string
	LogLevel    string
	Once        bool
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		ServiceURL:     DefaultServiceURL,
		AppID:          "towership",
		ConnectTimeout: upload.DefaultConnectTimeout,
		ReadTimeout:    upload.DefaultReadTimeout,
		BatchSize:      1000,
		PollInterval:   time.Minute,
		Retention:      7 * 24 * time.Hour,
		FilePrefix:     upload.DefaultFilePrefix,
		LogLevel:       "info",
		StateDir:       "", // Derived from the home directory during Validate
	}
}

// Validate checks the configuration for errors and sets derived defaults.
func (c *Config) Validate() error {
	if c.ServiceURL == "" {
		c.ServiceURL = DefaultServiceURL
	}
	if c.StateDir == "" {
		home := defaultHome()
		if home == "" {
			return fmt.Errorf("%w: state-dir is required", domain.ErrInvalidConfig)
		}
		c.StateDir = home
	}
	if c.SpoolDir == "" {
		c.SpoolDir = filepath.Join(c.StateDir, "spool")
	}
	if c.DBPath == "" {
		c.DBPath = filepath.Join(c.StateDir, "buffer.db")
	}
	if c.FilePrefix == "" {
		c.FilePrefix = upload.DefaultFilePrefix
	}

	if c.ConnectTimeout <= 0 {
		return fmt.Errorf("%w: connect timeout must be positive", domain.ErrInvalidConfig)
	}
	if c.ReadTimeout <= 0 {
		return fmt.Errorf("%w: read timeout must be positive", domain.ErrInvalidConfig)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("%w: poll interval must be positive", domain.ErrInvalidConfig)
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("%w: batch size must be positive", domain.ErrInvalidConfig)
	}
	if c.Retention < 0 {
		return fmt.Errorf("%w: retention must not be negative", domain.ErrInvalidConfig)
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidConfig, err)
	}
	return nil
}

// ValidateEndpoint checks the settings needed to upload. Commands that only
// touch local data skip it, so they work without an API key.
func (c *Config) ValidateEndpoint() error {
	if err := c.Endpoint().Validate(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidConfig, err)
	}
	return nil
}

// Endpoint returns the upload endpoint described by the configuration.
func (c Config) Endpoint() upload.Endpoint {
	return upload.Endpoint{URL: c.ServiceURL, AppID: c.AppID, APIKey: c.APIKey}
}

// Timeouts returns the upload timeouts.
func (c Config) Timeouts() upload.Timeouts {
	return upload.Timeouts{Connect: c.ConnectTimeout, Read: c.ReadTimeout}
}

// MaskedAPIKey returns the API key with all but the last four characters hidden.
func (c Config) MaskedAPIKey() string {
	if len(c.APIKey) <= 4 {
		return strings.Repeat("*", len(c.APIKey))
	}
	return strings.Repeat("*", len(c.APIKey)-4) + c.APIKey[len(c.APIKey)-4:]
}

// configSetter helps apply configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

// newConfigSetter creates a new setter with the given changed flags map.
func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setInt sets an int value if positive and flag not changed.
func (s *configSetter) setInt(flag string, value int, dst *int) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setDuration parses and sets a duration from string if valid and flag not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setIntFromString parses a string to int and sets the destination if valid.
// Used for environment variables that come as strings.
func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if i <= 0 {
		return nil
	}
	*dst = i
	return nil
}

// setBoolFromString parses a string to bool and sets the destination.
// Accepts "true", "1" as true, anything else as false.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}
