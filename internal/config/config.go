// Package config loads slidedeck configuration from YAML with environment
// overrides. Command-line flags are applied on top by the CLI.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"slidedeck/internal/fsutil"

	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file looked up in the working directory.
const DefaultPath = "slidedeck.yaml"

// Config holds all slidedeck configuration.
type Config struct {
	// Deck discovery
	Deck DeckConfig `yaml:"deck"`

	// Static navigation page
	Shell ShellConfig `yaml:"shell"`

	// Export pipeline
	Export ExportConfig `yaml:"export"`

	// Headless Chrome used for PDF export
	Browser BrowserConfig `yaml:"browser"`

	// Live navigation server
	Server ServerConfig `yaml:"server"`

	// Filesystem watcher
	Watch WatchConfig `yaml:"watch"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// DeckConfig configures slide discovery.
type DeckConfig struct {
	SlidesDir string `yaml:"slides_dir"`
	Title     string `yaml:"title"`
	MainCount int    `yaml:"main_count"` // 0 = only document hints mark the appendix
}

// ShellConfig configures the generated index page.
type ShellConfig struct {
	Output   string `yaml:"output"`   // default: <slides_dir>/index.html
	Metadata bool   `yaml:"metadata"` // also write slides_metadata.json
}

// ServerConfig configures `slidedeck serve`.
type ServerConfig struct {
	Addr            string `yaml:"addr"`
	ShutdownTimeout string `yaml:"shutdown_timeout"`
}

// WatchConfig configures `slidedeck watch`.
type WatchConfig struct {
	Debounce string `yaml:"debounce"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Deck: DeckConfig{
			SlidesDir: "slides",
			Title:     "Slides",
			MainCount: 10,
		},
		Export:  DefaultExportConfig(),
		Browser: DefaultBrowserConfig(),
		Server: ServerConfig{
			Addr:            "127.0.0.1:8080",
			ShutdownTimeout: "5s",
		},
		Watch: WatchConfig{
			Debounce: "500ms",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load reads the YAML file at path over the defaults. A missing file is not
// an error. Environment overrides are applied last.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
		// defaults
	default:
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := fsutil.WriteBytesAtomic(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnvOverrides lets SLIDEDECK_* variables override file values.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("SLIDEDECK_SLIDES_DIR"); v != "" {
		c.Deck.SlidesDir = v
	}
	if v := os.Getenv("SLIDEDECK_TITLE"); v != "" {
		c.Deck.Title = v
	}
	if v := os.Getenv("SLIDEDECK_MAIN_COUNT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Deck.MainCount = n
		}
	}
	if v := os.Getenv("SLIDEDECK_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("SLIDEDECK_CHROME_BIN"); v != "" {
		c.Browser.Bin = v
	}
	if v := os.Getenv("SLIDEDECK_CHROME_URL"); v != "" {
		c.Browser.DebuggerURL = v
	}
	if v := os.Getenv("SLIDEDECK_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

// Validate checks values that would otherwise fail late.
func (c *Config) Validate() error {
	if c.Deck.SlidesDir == "" {
		return errors.New("deck.slides_dir is required")
	}
	if c.Deck.MainCount < 0 {
		return fmt.Errorf("deck.main_count must be >= 0, got %d", c.Deck.MainCount)
	}
	if err := c.Export.Validate(); err != nil {
		return err
	}
	for name, value := range map[string]string{
		"browser.navigation_timeout": c.Browser.NavigationTimeout,
		"server.shutdown_timeout":    c.Server.ShutdownTimeout,
		"watch.debounce":             c.Watch.Debounce,
	} {
		if value == "" {
			continue
		}
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return c.Logging.Validate()
}

// GetShutdownTimeout returns the server shutdown grace period.
func (c *Config) GetShutdownTimeout() time.Duration {
	return parseDuration(c.Server.ShutdownTimeout, 5*time.Second)
}

// GetDebounce returns the watcher debounce window.
func (c *Config) GetDebounce() time.Duration {
	return parseDuration(c.Watch.Debounce, 500*time.Millisecond)
}

func parseDuration(value string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(value); err == nil && d > 0 {
		return d
	}
	return fallback
}
