// Package logging provides categorized logging for slidedeck.
// Every category shares one zap logger installed by the CLI; loggers obtained
// before Init (or in tests) are no-ops.
package logging

import (
	"sync"

	"go.uber.org/zap"
)

// Category represents a log category/system
type Category string

const (
	CategoryBoot    Category = "boot"    // CLI startup, config loading
	CategoryDeck    Category = "deck"    // Slide discovery and deck assembly
	CategoryShell   Category = "shell"   // Static navigation page rendering
	CategoryViewer  Category = "viewer"  // Terminal navigation shell
	CategoryExport  Category = "export"  // Export pipeline
	CategoryBrowser Category = "browser" // Headless Chrome lifecycle
	CategoryServer  Category = "server"  // Live HTTP/WebSocket shell
	CategoryWatch   Category = "watch"   // Filesystem watcher
)

// Logger wraps a zap sugared logger tagged with its category.
type Logger struct {
	category Category
	sugar    *zap.SugaredLogger
}

var (
	mu      sync.RWMutex
	base    = zap.NewNop()
	enabled func(string) bool
	loggers = make(map[Category]*Logger)
)

// Init installs the process-wide zap logger with every category enabled.
// Loggers handed out earlier are dropped so the next Get picks up the new
// core.
func Init(l *zap.Logger) {
	Configure(l, nil)
}

// Configure installs l and a category filter; categories for which
// isEnabled returns false get a no-op logger. A nil filter enables all.
func Configure(l *zap.Logger, isEnabled func(category string) bool) {
	if l == nil {
		l = zap.NewNop()
	}
	mu.Lock()
	defer mu.Unlock()
	base = l
	enabled = isEnabled
	loggers = make(map[Category]*Logger)
}

// Base returns the installed zap logger.
func Base() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return base
}

// Sync flushes the installed logger.
func Sync() {
	_ = Base().Sync()
}

// Get returns (or creates) the logger for the given category.
func Get(category Category) *Logger {
	mu.RLock()
	if l, ok := loggers[category]; ok {
		mu.RUnlock()
		return l
	}
	mu.RUnlock()

	mu.Lock()
	defer mu.Unlock()
	if l, ok := loggers[category]; ok {
		return l
	}
	core := base
	if enabled != nil && !enabled(string(category)) {
		core = zap.NewNop()
	}
	l := &Logger{
		category: category,
		sugar:    core.With(zap.String("cat", string(category))).Sugar(),
	}
	loggers[category] = l
	return l
}

// With returns a child logger carrying extra structured fields.
func (l *Logger) With(fields ...zap.Field) *Logger {
	return &Logger{category: l.category, sugar: l.sugar.Desugar().With(fields...).Sugar()}
}

func (l *Logger) Debug(format string, args ...interface{}) { l.sugar.Debugf(format, args...) }
func (l *Logger) Info(format string, args ...interface{})  { l.sugar.Infof(format, args...) }
func (l *Logger) Warn(format string, args ...interface{})  { l.sugar.Warnf(format, args...) }
func (l *Logger) Error(format string, args ...interface{}) { l.sugar.Errorf(format, args...) }

// =============================================================================
// CATEGORY HELPERS
// =============================================================================

func Boot(format string, args ...interface{})      { Get(CategoryBoot).Info(format, args...) }
func BootDebug(format string, args ...interface{}) { Get(CategoryBoot).Debug(format, args...) }
func BootWarn(format string, args ...interface{})  { Get(CategoryBoot).Warn(format, args...) }

func Deck(format string, args ...interface{})      { Get(CategoryDeck).Info(format, args...) }
func DeckDebug(format string, args ...interface{}) { Get(CategoryDeck).Debug(format, args...) }
func DeckWarn(format string, args ...interface{})  { Get(CategoryDeck).Warn(format, args...) }

func Shell(format string, args ...interface{})      { Get(CategoryShell).Info(format, args...) }
func ShellDebug(format string, args ...interface{}) { Get(CategoryShell).Debug(format, args...) }

func Viewer(format string, args ...interface{})     { Get(CategoryViewer).Info(format, args...) }
func ViewerWarn(format string, args ...interface{}) { Get(CategoryViewer).Warn(format, args...) }

func Export(format string, args ...interface{})      { Get(CategoryExport).Info(format, args...) }
func ExportDebug(format string, args ...interface{}) { Get(CategoryExport).Debug(format, args...) }
func ExportWarn(format string, args ...interface{})  { Get(CategoryExport).Warn(format, args...) }

func Browser(format string, args ...interface{})      { Get(CategoryBrowser).Info(format, args...) }
func BrowserDebug(format string, args ...interface{}) { Get(CategoryBrowser).Debug(format, args...) }
func BrowserWarn(format string, args ...interface{})  { Get(CategoryBrowser).Warn(format, args...) }

func Server(format string, args ...interface{})      { Get(CategoryServer).Info(format, args...) }
func ServerDebug(format string, args ...interface{}) { Get(CategoryServer).Debug(format, args...) }
func ServerWarn(format string, args ...interface{})  { Get(CategoryServer).Warn(format, args...) }

func Watch(format string, args ...interface{})      { Get(CategoryWatch).Info(format, args...) }
func WatchDebug(format string, args ...interface{}) { Get(CategoryWatch).Debug(format, args...) }
func WatchWarn(format string, args ...interface{})  { Get(CategoryWatch).Warn(format, args...) }
