// Package logging builds the categorized zap loggers used across yolocustom.
// Every subsystem logs through a named child of one base logger; categories
// can be switched off individually from the config's logging section.
package logging

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category represents a log category/system
type Category string

const (
	CategoryBoot        Category = "boot"        // CLI startup, flag handling
	CategoryConfig      Category = "config"      // Config load/save, wizard
	CategoryLabelStudio Category = "labelstudio" // Label Studio API calls, export extraction
	CategoryDataset     Category = "dataset"     // Merge, split, manifest
	CategoryTrain       Category = "train"       // YOLO train/export runs
	CategoryUI          Category = "ui"          // Interactive menu
)

// Options configures New.
type Options struct {
	Level   string // debug, info, warn, error
	Format  string // console, json
	File    string // optional extra output path
	Verbose bool   // forces debug level

	// Categories toggles individual categories; unlisted ones are enabled.
	Categories map[string]bool
}

var (
	categories   map[string]bool
	categoriesMu sync.RWMutex
)

// New builds the base logger and installs the category toggles.
func New(opts Options) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if opts.Level != "" {
		if err := level.UnmarshalText([]byte(strings.ToLower(opts.Level))); err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", opts.Level, err)
		}
	}
	if opts.Verbose {
		level = zapcore.DebugLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.Sampling = nil
	cfg.DisableStacktrace = true

	switch strings.ToLower(opts.Format) {
	case "", "console", "text":
		cfg.Encoding = "console"
		cfg.EncoderConfig = zap.NewDevelopmentEncoderConfig()
		cfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout(time.TimeOnly)
		cfg.DisableCaller = true
	case "json":
	default:
		return nil, fmt.Errorf("invalid log format %q (valid: console, json)", opts.Format)
	}

	if opts.File != "" {
		cfg.OutputPaths = append(cfg.OutputPaths, opts.File)
	}

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	SetCategories(opts.Categories)
	return logger, nil
}

// SetCategories replaces the category toggles.
func SetCategories(c map[string]bool) {
	categoriesMu.Lock()
	defer categoriesMu.Unlock()
	categories = c
}

// IsCategoryEnabled returns whether a specific category is enabled
func IsCategoryEnabled(category Category) bool {
	categoriesMu.RLock()
	defer categoriesMu.RUnlock()

	if categories == nil {
		return true
	}
	enabled, exists := categories[string(category)]
	if !exists {
		return true
	}
	return enabled
}

// For returns the named child logger for category, or a no-op logger when
// base is nil or the category is disabled.
func For(base *zap.Logger, category Category) *zap.Logger {
	if base == nil || !IsCategoryEnabled(category) {
		return zap.NewNop()
	}
	return base.Named(string(category))
}

// Timer logs how long an operation took.
type Timer struct {
	log   *zap.Logger
	op    string
	start time.Time
}

// StartTimer starts timing op.
func StartTimer(log *zap.Logger, op string) *Timer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Timer{log: log, op: op, start: time.Now()}
}

// Stop logs the elapsed time at debug level and returns it.
func (t *Timer) Stop() time.Duration {
	elapsed := time.Since(t.start)
	t.log.Debug(t.op+" completed", zap.Duration("elapsed", elapsed))
	return elapsed
}
