package cliconfig

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/bft-labs/towership/pkg/log"
)

var logger zerolog.Logger

func init() {
	logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()
}

// Logger returns the package logger.
func Logger() zerolog.Logger {
	return logger
}

// SetLevel sets the package logger level by name.
func SetLevel(name string) error {
	level, err := parseLevel(name)
	if err != nil {
		return err
	}
	logger = logger.Level(level)
	return nil
}

func parseLevel(name string) (zerolog.Level, error) {
	level, err := log.ParseLevel(name)
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("log level: %w", err)
	}
	return level, nil
}
