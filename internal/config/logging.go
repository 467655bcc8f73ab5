package config

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level      string          `yaml:"level"`      // debug, info, warn, error
	Format     string          `yaml:"format"`     // console, json
	Categories map[string]bool `yaml:"categories"` // Per-category toggles
}

// IsCategoryEnabled returns whether logging is enabled for a category.
// Categories not listed are enabled.
func (c *LoggingConfig) IsCategoryEnabled(category string) bool {
	if c.Categories == nil {
		return true
	}
	enabled, exists := c.Categories[category]
	if !exists {
		return true
	}
	return enabled
}

// Validate checks level and format.
func (c *LoggingConfig) Validate() error {
	if _, err := zapcore.ParseLevel(c.levelOrDefault()); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	switch c.Format {
	case "", "console", "json":
		return nil
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Format)
	}
}

func (c *LoggingConfig) levelOrDefault() string {
	if c.Level == "" {
		return "info"
	}
	return c.Level
}

// ZapConfig builds the zap configuration. verbose forces debug level.
func (c *LoggingConfig) ZapConfig(verbose bool) zap.Config {
	zc := zap.NewProductionConfig()
	if c.Format != "json" {
		zc = zap.NewDevelopmentConfig()
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	level, err := zapcore.ParseLevel(c.levelOrDefault())
	if err != nil {
		level = zapcore.InfoLevel
	}
	if verbose {
		level = zapcore.DebugLevel
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.OutputPaths = []string{"stderr"}
	zc.ErrorOutputPaths = []string{"stderr"}
	return zc
}
