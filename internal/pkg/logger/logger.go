package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config controls where and how the global logger writes.
type Config struct {
	Level          string // debug, info, warn, error
	Format         string // json, pretty
	FileEnabled    bool
	FilePath       string // directory for rotated files
	RotationSize   int    // MB
	RetentionDays  int
	ServiceName    string
	ServiceVersion string
}

// Init replaces the global zerolog logger.
//
// Console output always goes to stderr so that import summaries written to
// stdout stay machine readable.
func Init(cfg Config) error {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	writers := []io.Writer{consoleWriter(cfg.Format)}

	if cfg.FileEnabled {
		if err := os.MkdirAll(cfg.FilePath, 0755); err != nil {
			return fmt.Errorf("create log directory: %w", err)
		}
		writers = append(writers,
			rotating(cfg, "app.log", 10),
			&errorOnlyWriter{w: rotating(cfg, "error.log", 10)},
		)
	}

	log.Logger = zerolog.New(zerolog.MultiLevelWriter(writers...)).With().
		Timestamp().
		Str("service", cfg.ServiceName).
		Str("version", cfg.ServiceVersion).
		Logger()

	log.Debug().
		Str("level", cfg.Level).
		Str("format", cfg.Format).
		Bool("file_enabled", cfg.FileEnabled).
		Msg("Logger initialized")

	return nil
}

func consoleWriter(format string) io.Writer {
	if format == "pretty" {
		return zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}
	}
	return os.Stderr
}

func rotating(cfg Config, name string, backups int) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   filepath.Join(cfg.FilePath, name),
		MaxSize:    cfg.RotationSize,
		MaxAge:     cfg.RetentionDays,
		MaxBackups: backups,
		Compress:   true,
	}
}

// errorOnlyWriter forwards error and above.
type errorOnlyWriter struct {
	w io.Writer
}

func (e *errorOnlyWriter) Write(p []byte) (int, error) {
	return e.w.Write(p)
}

func (e *errorOnlyWriter) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	if level < zerolog.ErrorLevel {
		return len(p), nil
	}
	return e.w.Write(p)
}

// NewQueryLogger creates a logger for database queries.
func NewQueryLogger(logPath string, rotationSize int, retentionDays int) zerolog.Logger {
	return newFileLogger(logPath, "query.log", "query", rotationSize, retentionDays, 5)
}

// NewAccessLogger creates a logger for HTTP access logs.
func NewAccessLogger(logPath string, rotationSize int, retentionDays int) zerolog.Logger {
	return newFileLogger(logPath, "access.log", "access", rotationSize, retentionDays, 10)
}

func newFileLogger(logPath, name, kind string, rotationSize, retentionDays, backups int) zerolog.Logger {
	if logPath == "" {
		return log.Logger
	}
	if err := os.MkdirAll(logPath, 0755); err != nil {
		log.Warn().Err(err).Str("type", kind).Msg("Failed to create log directory, using default logger")
		return log.Logger
	}

	file := rotating(Config{FilePath: logPath, RotationSize: rotationSize, RetentionDays: retentionDays}, name, backups)
	return zerolog.New(file).With().
		Timestamp().
		Str("type", kind).
		Logger()
}
