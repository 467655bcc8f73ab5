package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

// =============================================================================
// UNIFIED CONFIG TESTS
// =============================================================================

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "slides", cfg.Deck.SlidesDir)
	assert.Equal(t, 10, cfg.Deck.MainCount)
	assert.Equal(t, "pdf", cfg.Export.Format)
	assert.Equal(t, 4, cfg.Export.Concurrency)
	assert.True(t, cfg.Browser.Headless)
	assert.NoError(t, cfg.Validate())
}

func TestConfig_SaveLoad(t *testing.T) {
	t.Setenv("SLIDEDECK_TITLE", "")

	path := filepath.Join(t.TempDir(), "slidedeck.yaml")

	cfg := DefaultConfig()
	cfg.Deck.Title = "LangGraph"
	cfg.Deck.MainCount = 12
	cfg.Export.Format = "html"
	cfg.Logging.Categories = map[string]bool{"watch": false}

	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "LangGraph", loaded.Deck.Title)
	assert.Equal(t, 12, loaded.Deck.MainCount)
	assert.Equal(t, "html", loaded.Export.Format)
	assert.False(t, loaded.Logging.IsCategoryEnabled("watch"))
	assert.True(t, loaded.Logging.IsCategoryEnabled("deck"))
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Deck, cfg.Deck)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "slidedeck.yaml")
	require.NoError(t, os.WriteFile(path, []byte("deck:\n  title: Prefect\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Prefect", cfg.Deck.Title)
	assert.Equal(t, "slides", cfg.Deck.SlidesDir)
	assert.Equal(t, "A4", cfg.Export.PageSize)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "slidedeck.yaml")
	require.NoError(t, os.WriteFile(path, []byte("deck: [oops"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestConfig_EnvOverrides(t *testing.T) {
	t.Run("applied without a file", func(t *testing.T) {
		t.Setenv("SLIDEDECK_SLIDES_DIR", "decks/prefect")
		t.Setenv("SLIDEDECK_MAIN_COUNT", "7")
		t.Setenv("SLIDEDECK_ADDR", ":9000")

		cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
		require.NoError(t, err)
		assert.Equal(t, "decks/prefect", cfg.Deck.SlidesDir)
		assert.Equal(t, 7, cfg.Deck.MainCount)
		assert.Equal(t, ":9000", cfg.Server.Addr)
	})

	t.Run("invalid number ignored", func(t *testing.T) {
		t.Setenv("SLIDEDECK_MAIN_COUNT", "many")
		cfg := DefaultConfig()
		cfg.applyEnvOverrides()
		assert.Equal(t, 10, cfg.Deck.MainCount)
	})

	t.Run("browser", func(t *testing.T) {
		t.Setenv("SLIDEDECK_CHROME_BIN", "/usr/bin/chromium")
		t.Setenv("SLIDEDECK_CHROME_URL", "ws://127.0.0.1:9222/devtools")
		cfg := DefaultConfig()
		cfg.applyEnvOverrides()
		assert.Equal(t, "/usr/bin/chromium", cfg.Browser.Bin)
		assert.Equal(t, "ws://127.0.0.1:9222/devtools", cfg.Browser.DebuggerURL)
	})
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty slides dir", func(c *Config) { c.Deck.SlidesDir = "" }},
		{"negative main count", func(c *Config) { c.Deck.MainCount = -1 }},
		{"bad format", func(c *Config) { c.Export.Format = "pptx" }},
		{"bad page size", func(c *Config) { c.Export.PageSize = "A0" }},
		{"negative concurrency", func(c *Config) { c.Export.Concurrency = -2 }},
		{"bad duration", func(c *Config) { c.Watch.Debounce = "soon" }},
		{"bad level", func(c *Config) { c.Logging.Level = "loud" }},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestConfig_PageSizeAnyCase(t *testing.T) {
	for _, size := range []string{"A4", "a4", "Letter", "LETTER", "legal", "Legal"} {
		cfg := DefaultConfig()
		cfg.Export.PageSize = size
		assert.NoError(t, cfg.Validate(), size)
	}
	assert.False(t, ValidPageSize("Tabloid"))
}

func TestConfig_Helpers(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 5*time.Second, cfg.GetShutdownTimeout())
	assert.Equal(t, 500*time.Millisecond, cfg.GetDebounce())
	assert.Equal(t, 30*time.Second, cfg.Browser.GetNavigationTimeout())

	cfg.Watch.Debounce = "nonsense"
	assert.Equal(t, 500*time.Millisecond, cfg.GetDebounce())
}

func TestLoggingConfig_ZapConfig(t *testing.T) {
	lc := LoggingConfig{Level: "warn", Format: "json"}
	zc := lc.ZapConfig(false)
	assert.Equal(t, zapcore.WarnLevel, zc.Level.Level())
	assert.Equal(t, "json", zc.Encoding)

	zc = lc.ZapConfig(true)
	assert.Equal(t, zapcore.DebugLevel, zc.Level.Level())

	console := LoggingConfig{}
	assert.Equal(t, "console", console.ZapConfig(false).Encoding)
	assert.Equal(t, zapcore.InfoLevel, console.ZapConfig(false).Level.Level())
}
