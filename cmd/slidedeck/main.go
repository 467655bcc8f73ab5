package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"slidedeck/internal/config"
	"slidedeck/internal/deck"
	"slidedeck/internal/logging"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Global flags
	verbose    bool
	configPath string
	timeout    time.Duration

	// Deck flags shared by most commands
	slidesDir string
	deckTitle string
	mainCount int

	// Loaded before every command
	cfg    *config.Config
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "slidedeck",
	Short: "slidedeck - package and present static HTML slide decks",
	Long: `slidedeck turns a directory of numbered slide documents into a deck.

Slides are HTML or Markdown files named NNN-slug.html / NNN-slug.md. The
first slides form the main section and the rest the appendix. From one
directory slidedeck can build a static navigation page, browse the deck in
the terminal or over HTTP, and merge every slide into one HTML or PDF file.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if err := loaded.Validate(); err != nil {
			return fmt.Errorf("invalid config %s: %w", configPath, err)
		}
		cfg = loaded

		// The terminal viewer owns the screen; only log when asked to
		if cmd.Name() == "view" && !verbose {
			logger = zap.NewNop()
		} else {
			logger, err = cfg.Logging.ZapConfig(verbose).Build()
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
		}
		logging.Configure(logger, cfg.Logging.IsCategoryEnabled)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath, "Config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 5*time.Minute, "Time limit for build and export")

	for _, c := range []*cobra.Command{initCmd, buildCmd, listCmd, exportCmd, viewCmd, serveCmd, watchCmd} {
		c.Flags().StringVarP(&slidesDir, "slides-dir", "d", "", "Directory containing slide files (default from config)")
		c.Flags().StringVarP(&deckTitle, "title", "t", "", "Deck title (default from config)")
		c.Flags().IntVar(&mainCount, "main-count", -1, "Slides kept in the main section; 0 uses only document hints (default from config)")
	}

	rootCmd.AddCommand(
		initCmd,
		buildCmd,
		listCmd,
		newCmd,
		exportCmd,
		viewCmd,
		serveCmd,
		watchCmd,
	)
}

func main() {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	os.Exit(exitCode(err))
}

// settings returns the loaded config, or defaults when a command runs
// without the root pre-run.
func settings() *config.Config {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return cfg
}

func resolveSlidesDir() string {
	if slidesDir != "" {
		return slidesDir
	}
	return settings().Deck.SlidesDir
}

func loadOptions() deck.LoadOptions {
	opts := deck.LoadOptions{
		Title:     settings().Deck.Title,
		MainCount: settings().Deck.MainCount,
	}
	if deckTitle != "" {
		opts.Title = deckTitle
	}
	if mainCount >= 0 {
		opts.MainCount = mainCount
	}
	return opts
}

func loadDeck(ctx context.Context) (*deck.Deck, error) {
	return deck.Load(ctx, resolveSlidesDir(), loadOptions())
}

// signalContext is cancelled on SIGINT/SIGTERM and, when limit > 0, after
// limit elapses.
func signalContext(limit time.Duration) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	if limit <= 0 {
		return ctx, stop
	}
	ctx, cancel := context.WithTimeout(ctx, limit)
	return ctx, func() {
		cancel()
		stop()
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
