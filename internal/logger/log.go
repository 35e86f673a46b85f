package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"chronik/internal/config"

	"gopkg.in/lumberjack.v2"
)

// Init installs the process-wide slog logger. The returned closer releases
// the rotating log file, if any.
func Init(cfg config.LogConfig) io.Closer {
	level := parseLevel(cfg.Level)

	var writers []io.Writer
	var file *lumberjack.Logger
	if cfg.Console {
		writers = append(writers, os.Stdout)
	}
	if cfg.File != "" {
		file = &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			LocalTime:  true,
		}
		writers = append(writers, file)
	}
	if len(writers) == 0 {
		writers = append(writers, os.Stdout)
	}

	slog.SetDefault(slog.New(newHandler(cfg.Format, io.MultiWriter(writers...), level)))
	Info("logger.init", "level", cfg.Level, "format", cfg.Format, "file", cfg.File)
	if file == nil {
		return io.NopCloser(nil)
	}
	return file
}

func newHandler(format string, w io.Writer, level slog.Level) slog.Handler {
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(format, "text") {
		return slog.NewTextHandler(w, opts)
	}
	return slog.NewJSONHandler(w, opts)
}

func Info(msg string, args ...any)  { slog.Info(msg, args...) }
func Warn(msg string, args ...any)  { slog.Warn(msg, args...) }
func Error(msg string, args ...any) { slog.Error(msg, args...) }
func Debug(msg string, args ...any) { slog.Debug(msg, args...) }

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
