package main

import (
	"context"
	"errors"

	"slidedeck/cmd/slidedeck/ui"
	"slidedeck/internal/watch"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

var viewWatch bool

// viewCmd runs the terminal navigation shell
var viewCmd = &cobra.Command{
	Use:   "view",
	Short: "Browse the deck in the terminal",
	Long: `Opens a full-screen viewer with the slide list on the left and the
current slide rendered as styled text on the right.

Keys: ←/h/PgUp previous, →/l/PgDn/Space next, Home/g first, End/G last,
: jump to a slide id, ↑/↓ scroll, ? help, q quit.`,
	Args: cobra.NoArgs,
	RunE: runView,
}

func init() {
	viewCmd.Flags().BoolVar(&viewWatch, "watch", false, "Reload the deck when slide files change")
}

// runView starts the bubbletea program
func runView(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext(0)
	defer stop()

	d, err := loadDeck(ctx)
	if err != nil {
		return err
	}

	p := tea.NewProgram(
		ui.NewViewerModel(d, ui.DefaultStyles()),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)

	if viewWatch {
		w, err := watch.New(resolveSlidesDir(), settings().GetDebounce(), func(ctx context.Context, changed []string) error {
			next, err := loadDeck(ctx)
			if err != nil {
				return err
			}
			p.Send(ui.ReloadMsg{Deck: next})
			return nil
		})
		if err != nil {
			return err
		}
		if err := w.Start(ctx); err != nil {
			return err
		}
		defer w.Stop()
	}

	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return err
	}
	return nil
}
