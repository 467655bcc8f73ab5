package deck

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"strings"

	"slidedeck/internal/fsutil"
	"slidedeck/internal/logging"
)

//go:embed templates/slide.html.tmpl
var templateFS embed.FS

var slideTemplate = template.Must(template.ParseFS(templateFS, "templates/slide.html.tmpl"))

// ErrSlideExists is returned by WriteSlide when the target file exists and
// Force is not set.
var ErrSlideExists = errors.New("slide already exists")

// RenderSlideDocument writes a complete slide document around body. body is
// trusted markup supplied by the slide author.
func RenderSlideDocument(w io.Writer, id, title string, section Section, body string) error {
	data := struct {
		ID       string
		Title    string
		Appendix bool
		Body     template.HTML
	}{
		ID:       id,
		Title:    title,
		Appendix: section == SectionAppendix,
		Body:     template.HTML(body),
	}
	if err := slideTemplate.Execute(w, data); err != nil {
		return fmt.Errorf("failed to render slide %s: %w", id, err)
	}
	return nil
}

// Slugify turns a title into the filename slug: "Tips & Tricks" becomes
// "tips-and-tricks".
func Slugify(title string) string {
	title = strings.ToLower(strings.ReplaceAll(title, "&", " and "))
	var sb strings.Builder
	dash := false
	for _, r := range title {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			sb.WriteRune(r)
			dash = false
		case !dash && sb.Len() > 0:
			sb.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(sb.String(), "-")
}

// SlideFilename returns the canonical file name for a new slide.
func SlideFilename(number int, title string) string {
	slug := Slugify(title)
	if slug == "" {
		slug = "slide"
	}
	return fmt.Sprintf("%s-%s.html", FormatID(number), slug)
}

// NewSlide describes a slide authored from a content fragment.
type NewSlide struct {
	Number  int
	Title   string
	Section Section
	Body    string
	Force   bool
}

// WriteSlide renders s into dir and returns the written path.
func WriteSlide(dir string, s NewSlide) (string, error) {
	if s.Number < 0 {
		return "", fmt.Errorf("%w: negative number %d", ErrInvalidID, s.Number)
	}
	if strings.TrimSpace(s.Title) == "" {
		return "", errors.New("slide title is required")
	}

	path := filepath.Join(dir, SlideFilename(s.Number, s.Title))
	if !s.Force {
		if _, err := os.Stat(path); err == nil {
			return "", fmt.Errorf("%w: %s", ErrSlideExists, path)
		}
	}

	var buf bytes.Buffer
	if err := RenderSlideDocument(&buf, FormatID(s.Number), s.Title, s.Section, s.Body); err != nil {
		return "", err
	}
	if err := fsutil.WriteBytesAtomic(path, buf.Bytes(), 0o644); err != nil {
		return "", err
	}
	logging.Deck("Created slide %s", path)
	return path, nil
}

// WriteRendered writes the HTML form of every markdown slide under
// dir/RenderedDir so static viewers can load them. Returns the paths written.
func (d *Deck) WriteRendered(dir string) ([]string, error) {
	var written []string
	for _, s := range d.slides {
		if s.Format != FormatMarkdown {
			continue
		}
		path := filepath.Join(dir, filepath.FromSlash(s.Href()))
		if err := fsutil.WriteBytesAtomic(path, s.Content, 0o644); err != nil {
			return written, fmt.Errorf("failed to write rendered slide %s: %w", s.ID, err)
		}
		written = append(written, path)
	}
	return written, nil
}

// sampleSlides seed an empty directory so the tool can be tried out.
var sampleSlides = []NewSlide{
	{
		Number: 1,
		Title:  "Welcome",
		Body: `<h1>Welcome</h1>
        <h2>Your first slidedeck presentation</h2>
        <ul>
            <li><strong>Slides</strong> are plain HTML files named <code>NNN-title.html</code></li>
            <li><strong>Order</strong> comes from the three-digit number</li>
            <li><strong>Navigation</strong> is generated with <code>slidedeck build</code></li>
        </ul>`,
	},
	{
		Number: 2,
		Title:  "Navigating",
		Body: `<h1>Navigating</h1>
        <ul>
            <li><kbd>&larr;</kbd> / <kbd>&rarr;</kbd> move one slide</li>
            <li><kbd>Home</kbd> / <kbd>End</kbd> jump to the first and last slide</li>
            <li>The sidebar jumps straight to any slide</li>
        </ul>`,
	},
	{
		Number:  11,
		Title:   "Command Reference",
		Section: SectionAppendix,
		Body: `<h1>Command Reference</h1>
        <table>
            <thead><tr><th>Command</th><th>Purpose</th></tr></thead>
            <tbody>
                <tr><td><code>build</code></td><td>Generate the navigation page</td></tr>
                <tr><td><code>export</code></td><td>Merge every slide into one HTML or PDF file</td></tr>
                <tr><td><code>view</code></td><td>Browse the deck in the terminal</td></tr>
                <tr><td><code>serve</code></td><td>Browse the deck over HTTP</td></tr>
            </tbody>
        </table>`,
	},
}

// CreateSamples writes the sample slides into dir and returns the paths it
// wrote. Samples whose file already exists are left untouched and skipped.
func CreateSamples(dir string) ([]string, error) {
	var paths []string
	for _, s := range sampleSlides {
		path, err := WriteSlide(dir, s)
		if errors.Is(err, ErrSlideExists) {
			logging.DeckDebug("Sample %s already present, skipping", SlideFilename(s.Number, s.Title))
			continue
		}
		if err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}
