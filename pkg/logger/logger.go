// Package logger builds the zerolog logger shared by all commands.
package logger

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Config controls logger construction.
type Config struct {
	Level  string `yaml:"level" default:"info" validate:"omitempty,oneof=trace debug info warn error fatal panic"`
	Format string `yaml:"format" default:"console" validate:"omitempty,oneof=console json"`
	// File, when set, tees every entry into the given file in addition
	// to the console output.
	File string `yaml:"file"`
}

// New constructs a logger from the configuration.
func New(cfg Config) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		return zerolog.Logger{}, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	var console io.Writer = os.Stdout
	if cfg.Format == "console" {
		console = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}

	out := console
	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return zerolog.Logger{}, fmt.Errorf("could not open log file: %w", err)
		}
		out = zerolog.MultiLevelWriter(console, f)
	}

	return zerolog.New(out).Level(level).With().Timestamp().Logger(), nil
}
