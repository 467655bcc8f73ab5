package main

import (
	"context"
	"fmt"
	"time"

	"slidedeck/internal/browser"
	"slidedeck/internal/export"
	"slidedeck/internal/logging"

	"github.com/spf13/cobra"
)

var (
	exportOutput      string
	exportFormat      string
	exportConcurrency int
	exportSanitize    bool
)

// exportCmd merges the deck into one artifact
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Merge every slide into one HTML or PDF file",
	Long: `Extracts each slide's content and merges the slides, in deck order, into
a single document with one page per slide. The html format writes that
document; the pdf format prints it with headless Chrome (A4, 0.5in margins,
backgrounds included).

The artifact is written atomically: on any failure, including Ctrl+C, no
file is left behind. A slide that cannot be rendered exits with code 4.`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file (default <title>_slides.<format>)")
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "", "Output format: html or pdf (default from config)")
	exportCmd.Flags().IntVar(&exportConcurrency, "concurrency", 0, "Fragment extraction workers (default from config)")
	exportCmd.Flags().BoolVar(&exportSanitize, "sanitize", false, "Strip scripts and event handlers from slide content")
}

// exportOptions merges flags over the export config section.
func exportOptions() (export.Options, error) {
	c := settings().Export
	format, err := export.ParseFormat(firstNonEmpty(exportFormat, c.Format))
	if err != nil {
		return export.Options{}, err
	}
	opts := export.Options{
		Format:      format,
		Output:      firstNonEmpty(exportOutput, c.Output),
		Concurrency: c.Concurrency,
		Sanitize:    exportSanitize || c.Sanitize,
		PageSize:    c.PageSize,
		Margin:      c.Margin,
	}
	if exportConcurrency > 0 {
		opts.Concurrency = exportConcurrency
	}
	return opts, nil
}

// newPDFRenderer returns the headless Chrome renderer and its cleanup.
// Chrome is only started on the first render.
func newPDFRenderer() (*browser.SessionManager, func()) {
	mgr := browser.NewSessionManager(browser.FromConfig(settings().Browser))
	return mgr, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := mgr.Shutdown(ctx); err != nil {
			logging.BrowserWarn("Failed to shut down browser: %v", err)
		}
	}
}

// runExport writes the merged HTML or PDF artifact
func runExport(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext(timeout)
	defer cancel()

	opts, err := exportOptions()
	if err != nil {
		return err
	}

	d, err := loadDeck(ctx)
	if err != nil {
		return err
	}

	if opts.Format == export.FormatPDF {
		renderer, shutdown := newPDFRenderer()
		defer shutdown()
		opts.Renderer = renderer
	}

	start := time.Now()
	path, err := export.Export(ctx, d, opts)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d slides to %s (%s)\n", d.Len(), path, time.Since(start).Round(time.Millisecond))
	return nil
}
