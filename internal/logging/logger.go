// Package logging builds the zap loggers used across pulse. The base logger
// serves command output; category loggers write to .pulse/logs/ with one
// file per category and are no-ops unless debug_mode is on.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"citypulse/internal/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category represents a log category/system
type Category string

const (
	CategoryBoot    Category = "boot"    // Startup, config loading
	CategoryToast   Category = "toast"   // Store dispatch, timers
	CategoryAnalyst Category = "analyst" // Model calls
	CategoryHistory Category = "history" // Search history store
	CategoryUI      Category = "ui"      // TUI events
	CategoryConfig  Category = "config"  // Config reloads
)

// LogsDir returns the directory category logs are written to.
func LogsDir(workspace string) string {
	return filepath.Join(workspace, config.Dir, "logs")
}

// ParseLevel maps a config level name to a zap level, defaulting to info.
func ParseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// NewBase builds the command logger. It writes to stderr, and also to
// cfg.File under the logs directory when one is configured. verbose forces
// debug level.
func NewBase(cfg config.LoggingConfig, workspace string, verbose bool) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(ParseLevel(cfg.Level))
	if verbose {
		zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	if cfg.Format != "json" {
		zc.Encoding = "console"
		zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}
	if cfg.File != "" {
		dir := LogsDir(workspace)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create logs directory: %w", err)
		}
		zc.OutputPaths = append(zc.OutputPaths, filepath.Join(dir, filepath.Base(cfg.File)))
	}

	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}

// Loggers hands out per-category loggers.
type Loggers struct {
	cfg   config.LoggingConfig
	dir   string
	level zapcore.Level

	mu      sync.Mutex
	loggers map[Category]*zap.Logger
	closers []func()
}

// New prepares category loggers for workspace. Nothing is created on disk
// until an enabled category is first requested.
func New(cfg config.LoggingConfig, workspace string) *Loggers {
	return &Loggers{
		cfg:     cfg,
		dir:     LogsDir(workspace),
		level:   ParseLevel(cfg.Level),
		loggers: make(map[Category]*zap.Logger),
	}
}

// Get returns (or creates) the logger for category. It returns a no-op
// logger when debug mode or the category is disabled, or when the log file
// cannot be opened.
func (l *Loggers) Get(category Category) *zap.Logger {
	if l == nil || !l.cfg.IsCategoryEnabled(string(category)) {
		return zap.NewNop()
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if logger, ok := l.loggers[category]; ok {
		return logger
	}

	if err := os.MkdirAll(l.dir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "[logging] Warning: could not create %s: %v\n", l.dir, err)
		return zap.NewNop()
	}

	// Date prefix for easy rotation
	name := fmt.Sprintf("%s_%s.log", time.Now().Format("2006-01-02"), category)
	sink, closeSink, err := zap.Open(filepath.Join(l.dir, name))
	if err != nil {
		fmt.Fprintf(os.Stderr, "[logging] Warning: could not open log file %s: %v\n", name, err)
		return zap.NewNop()
	}

	core := zapcore.NewCore(l.encoder(), sink, l.level)
	logger := zap.New(core).Named(string(category))
	l.loggers[category] = logger
	l.closers = append(l.closers, closeSink)
	return logger
}

func (l *Loggers) encoder() zapcore.Encoder {
	ec := zap.NewProductionEncoderConfig()
	ec.EncodeTime = zapcore.ISO8601TimeEncoder
	if l.cfg.Format == "json" {
		return zapcore.NewJSONEncoder(ec)
	}
	return zapcore.NewConsoleEncoder(ec)
}

// Close flushes and closes every category file.
func (l *Loggers) Close() {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, logger := range l.loggers {
		_ = logger.Sync()
	}
	for _, closeSink := range l.closers {
		closeSink()
	}
	l.loggers = make(map[Category]*zap.Logger)
	l.closers = nil
}
