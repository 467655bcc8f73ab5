// Package build turns a slide directory into a browsable site: it discovers
// the deck, renders markdown slides to HTML, writes the navigation page and
// optionally the metadata summary.
package build

import (
	"context"
	"fmt"
	"path/filepath"

	"slidedeck/internal/deck"
	"slidedeck/internal/logging"
	"slidedeck/internal/shell"
)

// Options configures a build.
type Options struct {
	SlidesDir string
	Title     string
	MainCount int
	// Output is the navigation page path; default <SlidesDir>/index.html.
	Output string
	// Metadata also writes slides_metadata.json next to the slides.
	Metadata bool
}

// Result reports what a build produced.
type Result struct {
	Deck     *deck.Deck
	Index    string
	Metadata string
	Rendered []string
}

// OutputPath returns the navigation page path for opts.
func (o Options) OutputPath() string {
	if o.Output != "" {
		return o.Output
	}
	return filepath.Join(o.SlidesDir, deck.IndexFilename)
}

// Run performs a full build. Nothing is written unless the deck loads.
func Run(ctx context.Context, opts Options) (*Result, error) {
	logging.BootDebug("building %s", opts.SlidesDir)

	d, err := deck.Load(ctx, opts.SlidesDir, deck.LoadOptions{
		Title:     opts.Title,
		MainCount: opts.MainCount,
	})
	if err != nil {
		return nil, err
	}

	res := &Result{Deck: d, Index: opts.OutputPath()}

	res.Rendered, err = d.WriteRendered(opts.SlidesDir)
	if err != nil {
		return nil, fmt.Errorf("failed to render markdown slides: %w", err)
	}

	if err := shell.WriteFile(res.Index, d, shell.Options{}); err != nil {
		return nil, fmt.Errorf("failed to write navigation page: %w", err)
	}

	if opts.Metadata {
		res.Metadata, err = d.WriteMetadata(opts.SlidesDir)
		if err != nil {
			return nil, err
		}
	}

	logging.Boot("built %s: %d slides (%d main)", res.Index, d.Len(), d.MainCount())
	return res, nil
}
