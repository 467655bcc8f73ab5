// Package export turns a deck into a single printable artifact: one
// self-contained HTML document, or that document printed to PDF.
package export

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"io"
	"runtime"

	"slidedeck/internal/deck"
	"slidedeck/internal/fsutil"
	"slidedeck/internal/logging"

	"golang.org/x/sync/errgroup"
)

// Format is an export artifact type.
type Format string

const (
	FormatHTML Format = "html"
	FormatPDF  Format = "pdf"
)

// ParseFormat accepts "html" or "pdf"; empty means pdf.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "", FormatPDF:
		return FormatPDF, nil
	case FormatHTML:
		return FormatHTML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// Renderer prints an HTML document to PDF. *browser.SessionManager
// implements it.
type Renderer interface {
	RenderPDF(ctx context.Context, document []byte, pageSize, margin string) ([]byte, error)
}

// Options configures an export.
type Options struct {
	Format Format
	// Output is the artifact path; default <title>_slides.<format>.
	Output string
	// Title overrides the deck title.
	Title string
	// Concurrency bounds fragment workers; <= 0 uses GOMAXPROCS.
	Concurrency int
	// Sanitize strips scripts, event handlers and head styles.
	Sanitize bool
	PageSize string
	Margin   string
	// Renderer is required for FormatPDF.
	Renderer Renderer
}

func (o Options) withDefaults(d *deck.Deck) Options {
	if o.Format == "" {
		o.Format = FormatPDF
	}
	if o.Title == "" {
		o.Title = d.Title()
	}
	if o.Output == "" {
		o.Output = deck.ArtifactName(o.Title, string(o.Format))
	}
	if o.Concurrency <= 0 {
		o.Concurrency = runtime.GOMAXPROCS(0)
	}
	if o.PageSize == "" {
		o.PageSize = "A4"
	}
	if o.Margin == "" {
		o.Margin = "0.5in"
	}
	return o
}

//go:embed templates/document.html.tmpl
var templateFS embed.FS

var documentTemplate = template.Must(template.ParseFS(templateFS, "templates/document.html.tmpl"))

type documentData struct {
	Title    string
	PageSize string
	Margin   string
	Styles   []template.CSS
	Pages    []pageView
}

type pageView struct {
	ID       string
	Section  string
	Fragment template.HTML
}

// Document builds the combined HTML document for d. Pages follow deck order
// regardless of which worker finished first.
func Document(ctx context.Context, d *deck.Deck, opts Options) ([]byte, error) {
	if d == nil || d.Len() == 0 {
		return nil, &deck.EmptyDeckError{}
	}
	opts = opts.withDefaults(d)

	pages := make([]page, d.Len())
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)
	for i := 0; i < d.Len(); i++ {
		i := i // per-iteration copy (pre-Go 1.22 loop semantics)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			p, err := extract(d.At(i), opts.Sanitize)
			if err != nil {
				return err
			}
			pages[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data := documentData{
		Title:    opts.Title,
		PageSize: opts.PageSize,
		Margin:   opts.Margin,
		Pages:    make([]pageView, 0, len(pages)),
	}
	seen := make(map[string]bool)
	for _, p := range pages {
		for _, css := range p.styles {
			if !seen[css] {
				seen[css] = true
				data.Styles = append(data.Styles, template.CSS(css))
			}
		}
		data.Pages = append(data.Pages, pageView{
			ID:       p.slide.ID,
			Section:  p.slide.Section.String(),
			Fragment: template.HTML(p.fragment),
		})
	}

	var buf bytes.Buffer
	if err := documentTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to render document: %w", err)
	}
	logging.ExportDebug("assembled %d pages (%d bytes)", len(data.Pages), buf.Len())
	return buf.Bytes(), nil
}

// Render produces the artifact bytes in opts.Format without writing them.
func Render(ctx context.Context, d *deck.Deck, opts Options) ([]byte, error) {
	if d == nil || d.Len() == 0 {
		return nil, &deck.EmptyDeckError{}
	}
	opts = opts.withDefaults(d)

	switch opts.Format {
	case FormatHTML, FormatPDF:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, opts.Format)
	}
	if opts.Format == FormatPDF && opts.Renderer == nil {
		return nil, ErrNoRenderer
	}

	doc, err := Document(ctx, d, opts)
	if err != nil {
		return nil, err
	}
	if opts.Format == FormatHTML {
		return doc, nil
	}

	pdf, err := opts.Renderer.RenderPDF(ctx, doc, opts.PageSize, opts.Margin)
	if err != nil {
		return nil, fmt.Errorf("failed to print pdf: %w", err)
	}
	return pdf, nil
}

// Export renders d and writes the artifact atomically to opts.Output. On any
// error, including cancellation, nothing is left at the destination. It
// returns the path written.
func Export(ctx context.Context, d *deck.Deck, opts Options) (string, error) {
	if d == nil || d.Len() == 0 {
		return "", &deck.EmptyDeckError{}
	}
	opts = opts.withDefaults(d)

	logging.Export("exporting %d slides to %s (%s)", d.Len(), opts.Output, opts.Format)
	data, err := Render(ctx, d, opts)
	if err != nil {
		logging.ExportWarn("export aborted: %v", err)
		return "", err
	}

	err = fsutil.WriteFileAtomic(opts.Output, 0o644, func(w io.Writer) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		_, err := w.Write(data)
		return err
	})
	if err != nil {
		return "", fmt.Errorf("failed to write %s: %w", opts.Output, err)
	}
	logging.Export("wrote %s (%d bytes)", opts.Output, len(data))
	return opts.Output, nil
}
