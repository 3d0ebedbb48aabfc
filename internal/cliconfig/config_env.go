package cliconfig

import "os"

// ApplyEnvConfig applies configuration from environment variables (TOWERSHIP_*).
// It respects flags that have been explicitly set (changed map).
// Returns error if any environment variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("service-url", os.Getenv("TOWERSHIP_SERVICE_URL"), &cfg.ServiceURL)
	s.setString("app-id", os.Getenv("TOWERSHIP_APP_ID"), &cfg.AppID)
	s.setString("api-key", os.Getenv("TOWERSHIP_API_KEY"), &cfg.APIKey)
	s.setString("spool-dir", os.Getenv("TOWERSHIP_SPOOL_DIR"), &cfg.SpoolDir)
	s.setString("state-dir", os.Getenv("TOWERSHIP_STATE_DIR"), &cfg.StateDir)
	s.setString("db", os.Getenv("TOWERSHIP_DB_PATH"), &cfg.DBPath)
	s.setString("file-prefix", os.Getenv("TOWERSHIP_FILE_PREFIX"), &cfg.FilePrefix)
	s.setString("log-level", os.Getenv("TOWERSHIP_LOG_LEVEL"), &cfg.LogLevel)
	s.setString("metrics-addr", os.Getenv("TOWERSHIP_METRICS_ADDR"), &cfg.MetricsAddr)

	if err := s.setDuration("connect-timeout", os.Getenv("TOWERSHIP_CONNECT_TIMEOUT"), &cfg.ConnectTimeout); err != nil {
		return err
	}
	if err := s.setDuration("read-timeout", os.Getenv("TOWERSHIP_READ_TIMEOUT"), &cfg.ReadTimeout); err != nil {
		return err
	}
	if err := s.setDuration("poll", os.Getenv("TOWERSHIP_POLL_INTERVAL"), &cfg.PollInterval); err != nil {
		return err
	}
	if err := s.setDuration("retention", os.Getenv("TOWERSHIP_RETENTION"), &cfg.Retention); err != nil {
		return err
	}

	if err := s.setIntFromString("batch-size", os.Getenv("TOWERSHIP_BATCH_SIZE"), &cfg.BatchSize); err != nil {
		return err
	}

	s.setBoolFromString("once", os.Getenv("TOWERSHIP_ONCE"), &cfg.Once)

	return nil
}
