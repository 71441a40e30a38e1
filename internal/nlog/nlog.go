package nlog

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Structured logging for the negotiation service. Every call names a scope
// first ("LLM", "SessionStore", ...) followed by alternating key/value pairs.

var (
	logger   *slog.Logger
	loggerMu sync.RWMutex
)

func init() {
	logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
}

// Setup configures the process logger. An empty filePath logs to stdout only;
// otherwise output also goes to a size-rotated file.
func Setup(level string, filePath string, maxSizeMB int, maxBackups int) {
	var lvl slog.Level
	switch strings.ToUpper(level) {
	case "DEBUG":
		lvl = slog.LevelDebug
	case "WARN":
		lvl = slog.LevelWarn
	case "ERROR":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	var out io.Writer = os.Stdout
	if filePath != "" {
		if maxSizeMB < 1 {
			maxSizeMB = 10
		}
		out = io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   filePath,
			MaxSize:    maxSizeMB,
			MaxBackups: maxBackups,
			Compress:   true,
		})
	}

	loggerMu.Lock()
	logger = slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: lvl}))
	loggerMu.Unlock()
}

func get() *slog.Logger {
	loggerMu.RLock()
	defer loggerMu.RUnlock()
	return logger
}

func Debug(scope string, args ...any) {
	get().Debug(scope, args...)
}

func Info(scope string, args ...any) {
	get().Info(scope, args...)
}

func Warn(scope string, args ...any) {
	get().Warn(scope, args...)
}

func Error(scope string, args ...any) {
	get().Error(scope, args...)
}
