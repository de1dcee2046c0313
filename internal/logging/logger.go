// Package logging provides config-driven categorized file-based logging for qachat.
// Each category writes to its own file under logging.dir.
// Logging is controlled by logging.debug_mode - when false, every logger is a no-op.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"qachat/internal/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category represents a log category/system
type Category string

const (
	CategoryBoot    Category = "boot"    // Startup, config resolution
	CategoryAPI     Category = "api"     // Backend requests
	CategorySession Category = "session" // Transcript and controller activity
	CategoryUI      Category = "ui"      // TUI lifecycle, rendering
	CategoryBatch   Category = "batch"   // Batch command runs
)

type categoryLogger struct {
	logger *zap.Logger
	file   *os.File
}

var (
	mu      sync.RWMutex
	cfg     config.LoggingConfig
	level   zapcore.Level
	loggers = make(map[Category]*categoryLogger)
)

// Initialize applies the logging config. In production mode (debug_mode false)
// nothing is created on disk and Get returns no-op loggers.
func Initialize(lc config.LoggingConfig) error {
	CloseAll()

	mu.Lock()
	defer mu.Unlock()

	cfg = lc
	level = zapcore.InfoLevel
	if lc.Level != "" {
		if err := level.UnmarshalText([]byte(lc.Level)); err != nil {
			return fmt.Errorf("invalid log level %q: %w", lc.Level, err)
		}
	}

	if !cfg.DebugMode {
		return nil
	}
	if cfg.Dir == "" {
		return fmt.Errorf("logging dir required in debug mode")
	}
	if err := os.MkdirAll(cfg.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create logs directory: %w", err)
	}
	return nil
}

// IsDebugMode returns whether debug logging is enabled
func IsDebugMode() bool {
	mu.RLock()
	defer mu.RUnlock()
	return cfg.DebugMode
}

// Get returns (or creates) a logger for the given category.
// Returns a no-op logger if debug mode is disabled or category is disabled.
func Get(category Category) *zap.Logger {
	mu.RLock()
	enabled := cfg.IsCategoryEnabled(string(category))
	l, ok := loggers[category]
	mu.RUnlock()

	if !enabled {
		return zap.NewNop()
	}
	if ok {
		return l.logger
	}

	mu.Lock()
	defer mu.Unlock()

	// Double-check after acquiring write lock
	if l, ok := loggers[category]; ok {
		return l.logger
	}

	// Date prefix for easy rotation
	date := time.Now().Format("2006-01-02")
	logPath := filepath.Join(cfg.Dir, fmt.Sprintf("%s_%s.log", date, category))

	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		// The TUI owns the terminal, so fall back to a no-op logger.
		return zap.NewNop()
	}

	core := zapcore.NewCore(newEncoder(cfg.Format), zapcore.AddSync(file), level)
	logger := zap.New(core).Named(string(category))
	loggers[category] = &categoryLogger{logger: logger, file: file}
	return logger
}

func newEncoder(format string) zapcore.Encoder {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	if format == "console" {
		return zapcore.NewConsoleEncoder(encCfg)
	}
	return zapcore.NewJSONEncoder(encCfg)
}

// Sync flushes all open category loggers.
func Sync() {
	mu.RLock()
	defer mu.RUnlock()
	for _, l := range loggers {
		_ = l.logger.Sync()
	}
}

// CloseAll flushes and closes every category log file.
func CloseAll() {
	mu.Lock()
	defer mu.Unlock()
	for cat, l := range loggers {
		_ = l.logger.Sync()
		_ = l.file.Close()
		delete(loggers, cat)
	}
}

// NewCLILogger builds the stderr logger used by non-interactive commands.
func NewCLILogger(verbose bool) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if verbose {
		zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return zc.Build()
}
