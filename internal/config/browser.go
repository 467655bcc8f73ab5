package config

import "time"

// BrowserConfig configures the headless Chrome used for PDF export.
type BrowserConfig struct {
	// DebuggerURL attaches to an already running Chrome instead of launching one.
	DebuggerURL string `yaml:"debugger_url"`
	// Bin overrides the Chrome binary; empty lets rod find or download one.
	Bin               string `yaml:"bin"`
	Headless          bool   `yaml:"headless"`
	NoSandbox         bool   `yaml:"no_sandbox"`
	NavigationTimeout string `yaml:"navigation_timeout"`
}

// DefaultBrowserConfig returns sensible defaults.
func DefaultBrowserConfig() BrowserConfig {
	return BrowserConfig{
		Headless:          true,
		NavigationTimeout: "30s",
	}
}

// GetNavigationTimeout returns the page load timeout.
func (c BrowserConfig) GetNavigationTimeout() time.Duration {
	return parseDuration(c.NavigationTimeout, 30*time.Second)
}
