// Package logger builds the structured loggers used across searchgpt
package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Config holds logger configuration
type Config struct {
	// Level one of debug, info, warn, error
	Level string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	// Pretty pretty-print for development
	Pretty bool `yaml:"pretty"`
	// File appends logs to the given path instead of stdout
	File string `yaml:"file"`
	// IncidentFile receives moderation incidents, stderr when empty
	IncidentFile string `yaml:"incident_file"`
}

// ParseLevel maps a level name to a zerolog level, info by default
func ParseLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// New creates a logger writing to output
func New(output io.Writer, cfg Config) zerolog.Logger {
	if output == nil {
		output = os.Stdout
	}
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: time.RFC3339,
		}
	}
	return zerolog.New(output).
		Level(ParseLevel(cfg.Level)).
		With().
		Timestamp().
		Str("service", "searchgpt").
		Logger()
}

// Open creates the service logger and the incident logger described by cfg.
// The returned closer releases any opened files.
func Open(cfg Config) (zerolog.Logger, zerolog.Logger, func() error, error) {
	var (
		files  []*os.File
		closer = func() error {
			var err error
			for _, f := range files {
				if e := f.Close(); e != nil && err == nil {
					err = e
				}
			}
			return err
		}
		output   io.Writer = os.Stdout
		incident io.Writer = os.Stderr
	)
	if cfg.File != "" {
		f, err := openFile(cfg.File)
		if err != nil {
			return zerolog.Nop(), zerolog.Nop(), closer, err
		}
		files = append(files, f)
		output = f
	}
	if cfg.IncidentFile != "" {
		f, err := openFile(cfg.IncidentFile)
		if err != nil {
			closer()
			return zerolog.Nop(), zerolog.Nop(), func() error { return nil }, err
		}
		files = append(files, f)
		incident = f
	}
	log := New(output, cfg)
	incidents := zerolog.New(incident).With().Timestamp().Str("log", "incident").Logger()
	return log, incidents, closer, nil
}

func openFile(path string) (*os.File, error) {
	return os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
}
