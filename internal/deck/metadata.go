package deck

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"slidedeck/internal/fsutil"
)

// MetadataFilename is written next to the slides by `build --metadata`.
const MetadataFilename = "slides_metadata.json"

// Metadata is the JSON summary of a deck.
type Metadata struct {
	Title       string             `json:"title"`
	TotalSlides int                `json:"total_slides"`
	Slides      []Slide            `json:"slides"`
	Sections    map[string][]Slide `json:"sections"`
}

// Metadata builds the JSON summary. Section keys are display labels.
func (d *Deck) Metadata() Metadata {
	m := Metadata{
		Title:       d.title,
		TotalSlides: len(d.slides),
		Slides:      d.Slides(),
		Sections:    make(map[string][]Slide),
	}
	for _, s := range d.slides {
		key := s.Section.Label()
		m.Sections[key] = append(m.Sections[key], s)
	}
	return m
}

// EncodeMetadata writes indented metadata JSON. encoding/json sorts map
// keys, so the output is stable for a given deck.
func (d *Deck) EncodeMetadata(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(d.Metadata()); err != nil {
		return fmt.Errorf("failed to encode metadata: %w", err)
	}
	return nil
}

// WriteMetadata atomically writes slides_metadata.json into dir and returns
// the path written.
func (d *Deck) WriteMetadata(dir string) (string, error) {
	path := filepath.Join(dir, MetadataFilename)
	if err := fsutil.WriteFileAtomic(path, 0o644, d.EncodeMetadata); err != nil {
		return "", fmt.Errorf("failed to write metadata: %w", err)
	}
	return path, nil
}

// ArtifactName is the default export filename for a deck title:
// "LangGraph Basics" with ext "pdf" becomes "langgraph_basics_slides.pdf".
func ArtifactName(title, ext string) string {
	stem := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(title), " ", "_"))
	if stem == "" {
		return "slides." + ext
	}
	return stem + "_slides." + ext
}
