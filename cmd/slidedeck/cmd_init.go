package main

import (
	"errors"
	"fmt"
	"os"

	"slidedeck/internal/config"
	"slidedeck/internal/logging"

	"github.com/spf13/cobra"
)

var forceInit bool

// initCmd writes a starter config file
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default slidedeck.yaml",
	Long: `Writes the default configuration to the --config path so it can be
edited. Deck flags given here (--slides-dir, --title, --main-count) are
stored in the new file. An existing file is left alone unless --force.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&forceInit, "force", false, "Overwrite an existing config file")
}

func runInit(cmd *cobra.Command, args []string) error {
	_, err := os.Stat(configPath)
	switch {
	case err == nil && !forceInit:
		return fmt.Errorf("%s already exists (use --force to overwrite)", configPath)
	case err != nil && !errors.Is(err, os.ErrNotExist):
		return fmt.Errorf("failed to check %s: %w", configPath, err)
	}

	c := config.DefaultConfig()
	if slidesDir != "" {
		c.Deck.SlidesDir = slidesDir
	}
	if deckTitle != "" {
		c.Deck.Title = deckTitle
	}
	if mainCount >= 0 {
		c.Deck.MainCount = mainCount
	}
	if err := c.Validate(); err != nil {
		return err
	}
	if err := c.Save(configPath); err != nil {
		return err
	}

	logging.Boot("Wrote config %s", configPath)
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", configPath)
	return nil
}
