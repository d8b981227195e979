package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// LogLevel defines the severity of the log entry.
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

// Format selects the slog handler used for output.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// String makes LogLevel satisfy the fmt.Stringer interface.
func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

func (l LogLevel) SlogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelInfo:
		return slog.LevelInfo
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ParseLevel maps a config string ("debug", "info", "warn", "error") to a LogLevel.
// Unknown values fall back to LevelInfo.
func ParseLevel(s string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

var (
	mu            sync.RWMutex
	defaultLogger *slog.Logger
)

// Init configures the package logger. The MCP server speaks JSON-RPC on stdout,
// so callers pass os.Stderr (or io.Discard) as output.
func Init(level LogLevel, format Format, output io.Writer) {
	if output == nil {
		output = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: level.SlogLevel()}

	var handler slog.Handler
	if format == FormatJSON {
		handler = slog.NewJSONHandler(output, opts)
	} else {
		handler = slog.NewTextHandler(output, opts)
	}

	mu.Lock()
	defaultLogger = slog.New(handler)
	mu.Unlock()
	slog.SetDefault(defaultLogger)
}

// InitForCLI initializes text logging at the given level.
func InitForCLI(filterLevel LogLevel, output io.Writer) {
	Init(filterLevel, FormatText, output)
}

func logInternal(level LogLevel, subsystem string, err error, messageFmt string, args ...interface{}) {
	mu.RLock()
	logger := defaultLogger
	mu.RUnlock()

	if logger == nil {
		return
	}
	if !logger.Enabled(context.Background(), level.SlogLevel()) {
		return
	}

	msg := messageFmt
	if len(args) > 0 {
		msg = fmt.Sprintf(messageFmt, args...)
	}

	attrs := []slog.Attr{slog.String("subsystem", subsystem)}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}

	logger.LogAttrs(context.Background(), level.SlogLevel(), msg, attrs...)
}

// Debug logs a debug message.
func Debug(subsystem string, messageFmt string, args ...interface{}) {
	logInternal(LevelDebug, subsystem, nil, messageFmt, args...)
}

// Info logs an informational message.
func Info(subsystem string, messageFmt string, args ...interface{}) {
	logInternal(LevelInfo, subsystem, nil, messageFmt, args...)
}

// Warn logs a warning message.
func Warn(subsystem string, messageFmt string, args ...interface{}) {
	logInternal(LevelWarn, subsystem, nil, messageFmt, args...)
}

// Error logs an error message.
func Error(subsystem string, err error, messageFmt string, args ...interface{}) {
	logInternal(LevelError, subsystem, err, messageFmt, args...)
}

// Audit records a security-relevant event as structured key/value pairs.
// Token values must never be passed in kv.
func Audit(event string, kv ...any) {
	mu.RLock()
	logger := defaultLogger
	mu.RUnlock()
	if logger == nil {
		return
	}
	args := append([]any{"event", event}, kv...)
	logger.Info("SECURITY_AUDIT: "+event, args...)
}
