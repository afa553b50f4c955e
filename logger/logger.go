package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// Logger represents a structured logger
type Logger struct {
	logger zerolog.Logger
	file   io.Closer
}

// Options controls where and how much the logger writes
type Options struct {
	// Level is the console level name; empty means derived from Environment
	Level string
	// Environment is "production" or anything else
	Environment string
	// Dir receives app.log with error level and above; empty disables the file
	Dir string
	// Console defaults to os.Stdout
	Console io.Writer
}

// New creates a logger writing to the console and, when Dir is set,
// error-level events to Dir/app.log
func New(opts Options) (*Logger, error) {
	level := parseLevel(opts.Level, opts.Environment)

	zerolog.TimeFieldFormat = time.RFC3339

	console := opts.Console
	if console == nil {
		console = os.Stdout
	}

	writers := []io.Writer{zerolog.ConsoleWriter{
		Out:        console,
		TimeFormat: time.RFC3339,
	}}

	var file *os.File
	if opts.Dir != "" {
		if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
			return nil, fmt.Errorf("create log dir: %w", err)
		}
		f, err := os.OpenFile(filepath.Join(opts.Dir, "app.log"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		file = f
		writers = append(writers, &zerolog.FilteredLevelWriter{
			Writer: zerolog.LevelWriterAdapter{Writer: f},
			Level:  zerolog.ErrorLevel,
		})
	}

	l := &Logger{
		logger: zerolog.New(zerolog.MultiLevelWriter(writers...)).
			Level(level).
			With().
			Timestamp().
			Logger(),
	}
	if file != nil {
		l.file = file
	}

	l.Debug().
		Str("level", level.String()).
		Msg("Logger initialized")

	return l, nil
}

// Nop returns a logger that discards everything
func Nop() *Logger {
	return &Logger{logger: zerolog.Nop()}
}

// parseLevel returns the console level, falling back to the environment
func parseLevel(levelStr, environment string) zerolog.Level {
	if levelStr == "" {
		if environment == "production" {
			return zerolog.InfoLevel
		}
		return zerolog.DebugLevel
	}

	level, err := zerolog.ParseLevel(levelStr)
	if err != nil {
		return zerolog.InfoLevel
	}
	return level
}

// WithField creates a new logger with a single field
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return &Logger{logger: l.logger.With().Interface(key, value).Logger(), file: l.file}
}

// ForComponent creates a logger tagged with a component name
func (l *Logger) ForComponent(name string) *Logger {
	return &Logger{logger: l.logger.With().Str("component", name).Logger(), file: l.file}
}

// ForLink creates a logger tagged with a search link
func (l *Logger) ForLink(link string) *Logger {
	return &Logger{logger: l.logger.With().Str("link", link).Logger(), file: l.file}
}

// Debug returns a debug event
func (l *Logger) Debug() *zerolog.Event {
	return l.logger.Debug()
}

// Info returns an info event
func (l *Logger) Info() *zerolog.Event {
	return l.logger.Info()
}

// Warn returns a warn event
func (l *Logger) Warn() *zerolog.Event {
	return l.logger.Warn()
}

// Error returns an error event
func (l *Logger) Error() *zerolog.Event {
	return l.logger.Error()
}

// IsDebugEnabled returns true if debug logging is enabled
func (l *Logger) IsDebugEnabled() bool {
	return l.logger.GetLevel() <= zerolog.DebugLevel
}

// Close releases the log file, if any
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}
