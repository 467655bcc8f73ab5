package main

import (
	"context"
	"fmt"

	"slidedeck/internal/build"
	"slidedeck/internal/server"
	"slidedeck/internal/watch"

	"github.com/spf13/cobra"
)

var (
	serveAddr  string
	serveWatch bool
)

// serveCmd runs the live navigation shell
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Browse the deck over HTTP",
	Long: `Serves the navigation page, the slide documents and a JSON summary of the
deck. The page's PDF button exports the whole deck through headless Chrome.
Each browser tab connected to /ws gets its own navigation session.

With --watch the deck is reloaded when slide files change and connected
tabs are told to refresh.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

// watchCmd rebuilds index.html on changes
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Rebuild index.html whenever slide files change",
	Args:  cobra.NoArgs,
	RunE:  runWatch,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from config)")
	serveCmd.Flags().BoolVar(&serveWatch, "watch", false, "Reload the deck when slide files change")

	watchCmd.Flags().StringVarP(&buildOutput, "output", "o", "", "Navigation page path (default <slides-dir>/index.html)")
	watchCmd.Flags().BoolVar(&writeMetadata, "metadata", false, "Also write slides_metadata.json")
}

// runServe serves the deck until interrupted
func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext(0)
	defer stop()

	d, err := loadDeck(ctx)
	if err != nil {
		return err
	}

	exportOpts, err := exportOptions()
	if err != nil {
		return err
	}
	renderer, shutdown := newPDFRenderer()
	defer shutdown()
	exportOpts.Renderer = renderer

	c := settings()
	addr := firstNonEmpty(serveAddr, c.Server.Addr)
	srv, err := server.New(d, server.Config{
		Addr:            addr,
		ShutdownTimeout: c.GetShutdownTimeout(),
		Export:          exportOpts,
	})
	if err != nil {
		return err
	}

	if serveWatch {
		w, err := watch.New(resolveSlidesDir(), c.GetDebounce(), func(ctx context.Context, changed []string) error {
			next, err := loadDeck(ctx)
			if err != nil {
				return err
			}
			return srv.SetDeck(next)
		})
		if err != nil {
			return err
		}
		if err := w.Start(ctx); err != nil {
			return err
		}
		defer w.Stop()
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Serving %q (%d slides) on http://%s\n", d.Title(), d.Len(), addr)
	return srv.ListenAndServe(ctx)
}

// runWatch rebuilds the navigation page until interrupted
func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext(0)
	defer stop()

	out := cmd.OutOrStdout()
	c := settings()
	dir := resolveSlidesDir()
	lo := loadOptions()
	opts := build.Options{
		SlidesDir: dir,
		Title:     lo.Title,
		MainCount: lo.MainCount,
		Output:    firstNonEmpty(buildOutput, c.Shell.Output),
		Metadata:  writeMetadata || c.Shell.Metadata,
	}

	w, err := watch.New(dir, c.GetDebounce(), func(ctx context.Context, changed []string) error {
		res, err := build.Run(ctx, opts)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Rebuilt %s (%d slides)\n", res.Index, res.Deck.Len())
		return nil
	})
	if err != nil {
		return err
	}

	// An initial failure (e.g. an empty directory) is reported but the
	// watcher keeps going so the next change can fix it.
	if err := w.Trigger(ctx); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Initial build failed: %v\n", err)
	}

	if err := w.Start(ctx); err != nil {
		return err
	}
	defer w.Stop()

	fmt.Fprintf(out, "Watching %s (Ctrl+C to stop)\n", dir)
	select {
	case <-ctx.Done():
	case <-w.Done():
	}
	return nil
}
