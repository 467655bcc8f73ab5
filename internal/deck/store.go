package deck

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"

	"slidedeck/internal/logging"
)

// DefaultMainCount is how many leading slides stay in the main section when
// no document says otherwise.
const DefaultMainCount = 10

// IndexFilename is the generated navigation page; discovery skips it.
const IndexFilename = "index.html"

// LoadOptions controls discovery.
type LoadOptions struct {
	// Title is the deck title.
	Title string
	// MainCount moves slides at or beyond this position to the appendix.
	// Zero disables the positional rule; only document hints apply.
	MainCount int
}

// IsSlideFile reports whether name would be picked up as a slide.
func IsSlideFile(name string) bool {
	if name == IndexFilename {
		return false
	}
	_, ok := parseFilename(name)
	return ok
}

// Load discovers the slides in dir and assembles them into a Deck.
// A missing or empty directory yields EmptyDeckError naming dir.
func Load(ctx context.Context, dir string, opts LoadOptions) (*Deck, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &EmptyDeckError{Source: dir}
		}
		return nil, fmt.Errorf("failed to stat slides directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}
	return LoadFS(ctx, os.DirFS(dir), dir, opts)
}

// LoadFS discovers slides at the root of fsys. source is only used to label
// errors and is recorded as the deck's source directory.
func LoadFS(ctx context.Context, fsys fs.FS, source string, opts LoadOptions) (*Deck, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to read slides directory %s: %w", source, err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	var slides []Slide
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name := entry.Name()
		if entry.IsDir() || name == IndexFilename || strings.HasPrefix(name, ".") {
			continue
		}
		info, ok := parseFilename(name)
		if !ok {
			if isDocument(name) {
				logging.DeckWarn("Skipping %s: doesn't match pattern NNN-title.html", name)
			}
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("failed to read slide %s: %w", name, err)
		}
		slide, err := parseSlide(name, info, content)
		if err != nil {
			return nil, err
		}
		logging.DeckDebug("Discovered slide %s %q (%s)", slide.ID, slide.Title, name)
		slides = append(slides, slide)
	}

	if len(slides) == 0 {
		return nil, &EmptyDeckError{Source: source}
	}

	d, err := Assemble(opts.Title, slides, opts.MainCount, WithSource(source))
	if err != nil {
		return nil, err
	}
	logging.Deck("Assembled deck %q: %d slides (%d main) from %s", d.Title(), d.Len(), d.MainCount(), source)
	return d, nil
}

func isDocument(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasSuffix(lower, ".html") || strings.HasSuffix(lower, ".htm") || strings.HasSuffix(lower, ".md")
}
