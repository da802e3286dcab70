package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/phrazzld/tasks-api/internal/config"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Rotation settings for the optional log file sink.
const (
	maxLogFileSizeMB  = 50
	maxLogFileBackups = 5
	maxLogFileAgeDays = 28
)

// Setup initializes the application's logging system based on the provided
// server configuration. It creates a structured JSON logger with the
// configured level, writing to stdout and, when LogFile is set, to a rotating
// file. The logger is installed as the slog default.
//
// The returned closer releases the file sink and must be called on shutdown.
func Setup(cfg config.ServerConfig) (*slog.Logger, io.Closer, error) {
	level := ParseLevel(cfg.LogLevel)

	var (
		out    io.Writer = os.Stdout
		closer io.Closer = nopCloser{}
	)
	if cfg.LogFile != "" {
		file := &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    maxLogFileSizeMB,
			MaxBackups: maxLogFileBackups,
			MaxAge:     maxLogFileAgeDays,
			Compress:   true,
		}
		out = io.MultiWriter(os.Stdout, file)
		closer = file
	}

	logger := New(out, level).With(slog.String("env", cfg.Environment))
	slog.SetDefault(logger)

	return logger, closer, nil
}

// New builds a JSON logger writing to out at the given level.
func New(out io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: level}))
}

// ParseLevel maps a configured level name to a slog level (case-insensitive).
// Unknown names fall back to info.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
