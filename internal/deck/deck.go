package deck

import (
	"sort"
)

// Deck is an ordered, validated, immutable slide collection. A single Deck
// may be shared by any number of viewers; nothing mutates it after New.
type Deck struct {
	title  string
	source string
	slides []Slide
	index  map[string]int
}

// Option customizes deck construction.
type Option func(*Deck)

// WithSource records the directory the slides were discovered in. Slide
// filenames are relative to it.
func WithSource(dir string) Option {
	return func(d *Deck) { d.source = dir }
}

// New validates slides and returns them as a Deck sorted by ordinal.
//
// Slide IDs are normalized (see NormalizeID). New fails with EmptyDeckError
// for zero slides, DuplicateIDError when two slides share an ordinal and
// SectionOrderError when a main slide follows an appendix slide.
func New(title string, slides []Slide, opts ...Option) (*Deck, error) {
	d := &Deck{title: title}
	for _, opt := range opts {
		opt(d)
	}

	if len(slides) == 0 {
		return nil, &EmptyDeckError{Source: d.source}
	}

	sorted, err := normalizeAndSort(slides)
	if err != nil {
		return nil, err
	}

	for i := 1; i < len(sorted); i++ {
		if sorted[i].Section == SectionMain && sorted[i-1].Section == SectionAppendix {
			return nil, &SectionOrderError{ID: sorted[i].ID, Previous: sorted[i-1].ID}
		}
	}

	d.slides = sorted
	d.index = make(map[string]int, len(sorted))
	for i, s := range sorted {
		d.index[s.ID] = i
	}
	return d, nil
}

// normalizeAndSort copies slides, canonicalizes IDs and orders them by
// ordinal. Equal ordinals are reported rather than tie-broken.
func normalizeAndSort(slides []Slide) ([]Slide, error) {
	out := make([]Slide, len(slides))
	for i, s := range slides {
		id, ord, err := NormalizeID(s.ID)
		if err != nil {
			return nil, err
		}
		s.ID = id
		s.Ordinal = ord
		out[i] = s
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Ordinal < out[j].Ordinal })

	for i := 1; i < len(out); i++ {
		if out[i].Ordinal == out[i-1].Ordinal {
			return nil, &DuplicateIDError{ID: out[i].ID, First: out[i-1], Second: out[i]}
		}
	}
	return out, nil
}

// Title returns the presentation name.
func (d *Deck) Title() string { return d.title }

// Source returns the directory slides were loaded from, if any.
func (d *Deck) Source() string { return d.source }

// Len returns the number of slides (always >= 1).
func (d *Deck) Len() int { return len(d.slides) }

// At returns the slide at position i. It panics when i is out of range,
// like slice indexing.
func (d *Deck) At(i int) Slide { return d.slides[i] }

// First returns the entry point for "first".
func (d *Deck) First() Slide { return d.slides[0] }

// Last returns the entry point for "last".
func (d *Deck) Last() Slide { return d.slides[len(d.slides)-1] }

// Slides returns a copy of the ordered slide list.
func (d *Deck) Slides() []Slide {
	out := make([]Slide, len(d.slides))
	copy(out, d.slides)
	return out
}

// IndexOf returns the position of the slide with the given id. Numeric ids
// are normalized first, so "3" finds "003".
func (d *Deck) IndexOf(id string) (int, bool) {
	if i, ok := d.index[id]; ok {
		return i, true
	}
	if norm, _, err := NormalizeID(id); err == nil {
		i, ok := d.index[norm]
		return i, ok
	}
	return 0, false
}

// Lookup returns the slide with the given id or a SlideNotFoundError.
func (d *Deck) Lookup(id string) (Slide, error) {
	i, ok := d.IndexOf(id)
	if !ok {
		return Slide{}, &SlideNotFoundError{ID: id}
	}
	return d.slides[i], nil
}

// MainCount returns how many slides are in the main section.
func (d *Deck) MainCount() int {
	n := 0
	for _, s := range d.slides {
		if s.Section == SectionMain {
			n++
		}
	}
	return n
}
