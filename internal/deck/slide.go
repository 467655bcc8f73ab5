// Package deck discovers slide documents and assembles them into an ordered,
// immutable Deck partitioned into main and appendix sections.
package deck

import (
	"fmt"
	"strconv"
	"strings"
)

// Section partitions a deck into presented content and reference material.
type Section int

const (
	SectionMain Section = iota
	SectionAppendix
)

// String returns the wire form ("main" / "appendix").
func (s Section) String() string {
	if s == SectionAppendix {
		return "appendix"
	}
	return "main"
}

// Label returns the display form used in sidebars and metadata.
func (s Section) Label() string {
	if s == SectionAppendix {
		return "Appendix"
	}
	return "Main"
}

// ParseSection accepts "main" or "appendix" in any case. Empty means main.
func ParseSection(s string) (Section, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "main":
		return SectionMain, nil
	case "appendix":
		return SectionAppendix, nil
	default:
		return SectionMain, fmt.Errorf("unknown section %q (want main or appendix)", s)
	}
}

func (s Section) MarshalText() ([]byte, error) {
	return []byte(s.Label()), nil
}

func (s *Section) UnmarshalText(b []byte) error {
	parsed, err := ParseSection(string(b))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Format records which authoring format a slide was discovered in.
type Format string

const (
	FormatHTML     Format = "html"
	FormatMarkdown Format = "markdown"
)

// Slide is one self-contained unit of presented content.
type Slide struct {
	ID       string  `json:"number"`
	Ordinal  int     `json:"-"`
	Title    string  `json:"title"`
	Section  Section `json:"section"`
	Filename string  `json:"filename,omitempty"`
	Format   Format  `json:"format,omitempty"`

	// Content is the full renderable document. Markdown slides hold the
	// HTML they were converted to.
	Content []byte `json:"-"`
}

func (s Slide) describe() string {
	switch {
	case s.Filename != "" && s.Title != "":
		return fmt.Sprintf("%s (%q)", s.Filename, s.Title)
	case s.Filename != "":
		return s.Filename
	default:
		return fmt.Sprintf("%q", s.Title)
	}
}

// NormalizeID parses a slide ordinal and returns its canonical zero-padded
// form ("5" and "005" both yield "005", 5).
func NormalizeID(raw string) (string, int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", 0, fmt.Errorf("%w: empty", ErrInvalidID)
	}
	for _, r := range raw {
		if r < '0' || r > '9' {
			return "", 0, fmt.Errorf("%w: %q is not a number", ErrInvalidID, raw)
		}
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return "", 0, fmt.Errorf("%w: %q: %v", ErrInvalidID, raw, err)
	}
	return FormatID(n), n, nil
}

// FormatID renders an ordinal in canonical form.
func FormatID(n int) string {
	return fmt.Sprintf("%03d", n)
}

// RenderedDir holds HTML renderings of markdown slides, relative to the
// slide directory. Discovery never descends into it.
const RenderedDir = "_rendered"

// Href is the path a browser should load for this slide, relative to the
// slide directory.
func (s Slide) Href() string {
	if s.Format == FormatMarkdown && s.Filename != "" {
		base := strings.TrimSuffix(s.Filename, ".md")
		return RenderedDir + "/" + base + ".html"
	}
	if s.Filename != "" {
		return s.Filename
	}
	return s.ID + ".html"
}
