package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	gormlogger "gorm.io/gorm/logger"
)

// Logger is the structured logger handed to every component.
type Logger struct {
	logger zerolog.Logger
}

// New creates a logger. output is "stdout", "stderr" or a file path opened for
// append; format is "json" or "console".
func New(level, format, output string) (*Logger, error) {
	logLevel := parseLevel(level)
	zerolog.SetGlobalLevel(logLevel)

	writer, err := openOutput(output)
	if err != nil {
		return nil, err
	}
	if format == "console" {
		writer = zerolog.ConsoleWriter{Out: writer, TimeFormat: time.RFC3339}
	}

	logger := zerolog.New(writer).Level(logLevel).With().Timestamp().Caller().Logger()
	return &Logger{logger: logger}, nil
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{logger: zerolog.Nop()}
}

func openOutput(output string) (io.Writer, error) {
	switch output {
	case "", "stdout":
		return os.Stdout, nil
	case "stderr":
		return os.Stderr, nil
	}

	file, err := os.OpenFile(output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o640)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", output, err)
	}
	return file, nil
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	case "off", "disabled":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

func (l *Logger) Debug() *zerolog.Event {
	return l.logger.Debug()
}

func (l *Logger) Info() *zerolog.Event {
	return l.logger.Info()
}

func (l *Logger) Warn() *zerolog.Event {
	return l.logger.Warn()
}

func (l *Logger) Error() *zerolog.Event {
	return l.logger.Error()
}

// Fatal logs at fatal level and exits once the event is sent.
func (l *Logger) Fatal() *zerolog.Event {
	return l.logger.Fatal()
}

// Named returns a child logger tagged with a component name.
func (l *Logger) Named(component string) *Logger {
	return &Logger{logger: l.logger.With().Str("component", component).Logger()}
}

// GormLevel maps the logger level onto GORM's SQL logging level.
// SQL statements are only echoed at debug and below.
func (l *Logger) GormLevel() gormlogger.LogLevel {
	switch l.logger.GetLevel() {
	case zerolog.DebugLevel, zerolog.TraceLevel:
		return gormlogger.Info
	case zerolog.Disabled:
		return gormlogger.Silent
	default:
		return gormlogger.Warn
	}
}

var global *Logger

// Init replaces the process-wide logger.
func Init(level, format, output string) error {
	l, err := New(level, format, output)
	if err != nil {
		return err
	}
	global = l
	return nil
}

// Get returns the process-wide logger, a JSON stdout logger at info until Init runs.
func Get() *Logger {
	if global == nil {
		global = &Logger{logger: zerolog.New(os.Stdout).With().Timestamp().Logger()}
	}
	return global
}
