// Package shell renders the static navigation page for a deck: a sidebar of
// sections, a slide counter, an iframe on the current slide and the
// first/previous/next/last controls.
package shell

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"path"
	"path/filepath"

	"slidedeck/internal/deck"
	"slidedeck/internal/fsutil"
	"slidedeck/internal/logging"
)

// DefaultPDFEndpoint is where the PDF button posts when served live.
const DefaultPDFEndpoint = "/generate-pdf"

//go:embed templates/index.html.tmpl
var templateFS embed.FS

var indexTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html.tmpl"))

// Options controls index page rendering.
type Options struct {
	// Title overrides the deck title.
	Title string
	// BaseHref is prepended to every slide href. It is the slide directory
	// as seen from wherever the page is served, e.g. "slides/".
	BaseHref string
	// PDFButton adds a button that posts to PDFEndpoint. Only meaningful when
	// something is serving that endpoint.
	PDFButton   bool
	PDFEndpoint string
}

type pageData struct {
	Title       string
	Total       int
	Single      bool
	FirstHref   string
	Hrefs       []string
	Groups      []groupView
	PDF         bool
	PDFEndpoint string
	Download    string
}

type groupView struct {
	Label string
	Items []itemView
}

type itemView struct {
	Index  int
	ID     string
	Title  string
	Active bool
}

// Render writes the navigation page for d. The same deck and options always
// produce the same bytes.
func Render(w io.Writer, d *deck.Deck, opts Options) error {
	if d == nil || d.Len() == 0 {
		return &deck.EmptyDeckError{}
	}

	title := opts.Title
	if title == "" {
		title = d.Title()
	}
	endpoint := opts.PDFEndpoint
	if endpoint == "" {
		endpoint = DefaultPDFEndpoint
	}

	data := pageData{
		Title:       title,
		Total:       d.Len(),
		Single:      d.Len() == 1,
		Hrefs:       make([]string, 0, d.Len()),
		PDF:         opts.PDFButton,
		PDFEndpoint: endpoint,
		Download:    deck.ArtifactName(title, "pdf"),
	}
	for i := 0; i < d.Len(); i++ {
		data.Hrefs = append(data.Hrefs, opts.BaseHref+d.At(i).Href())
	}
	data.FirstHref = data.Hrefs[0]

	for _, g := range d.Groups() {
		view := groupView{Label: g.Section.Label()}
		for j, s := range g.Slides {
			idx := g.Start + j
			view.Items = append(view.Items, itemView{
				Index:  idx,
				ID:     s.ID,
				Title:  s.Title,
				Active: idx == 0,
			})
		}
		data.Groups = append(data.Groups, view)
		logging.ShellDebug("group %q: %d slides from index %d", view.Label, len(g.Slides), g.Start)
	}

	if err := indexTemplate.Execute(w, data); err != nil {
		return fmt.Errorf("failed to render navigation page: %w", err)
	}
	return nil
}

// WriteFile renders the page to outputPath atomically. When opts.BaseHref is
// empty and the deck knows its source directory, slide hrefs are made
// relative to the output directory.
func WriteFile(outputPath string, d *deck.Deck, opts Options) error {
	if opts.BaseHref == "" && d != nil && d.Source() != "" {
		base, err := RelativeBase(outputPath, d.Source())
		if err != nil {
			return err
		}
		opts.BaseHref = base
		logging.ShellDebug("slide hrefs relative to %s use base %q", outputPath, base)
	}

	err := fsutil.WriteFileAtomic(outputPath, 0o644, func(w io.Writer) error {
		return Render(w, d, opts)
	})
	if err != nil {
		return err
	}
	logging.Shell("wrote %s (%d slides)", outputPath, d.Len())
	return nil
}

// RelativeBase returns the href prefix that reaches slidesDir from a page
// written at outputPath: "" when they share a directory, else a
// slash-terminated relative URL path.
func RelativeBase(outputPath, slidesDir string) (string, error) {
	from, err := filepath.Abs(filepath.Dir(outputPath))
	if err != nil {
		return "", fmt.Errorf("failed to resolve output directory: %w", err)
	}
	to, err := filepath.Abs(slidesDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve slides directory: %w", err)
	}
	rel, err := filepath.Rel(from, to)
	if err != nil {
		return "", fmt.Errorf("slides directory not reachable from %s: %w", outputPath, err)
	}
	if rel == "." {
		return "", nil
	}
	return path.Clean(filepath.ToSlash(rel)) + "/", nil
}
