package deck

// Group is a run of consecutive slides sharing a section, as shown in the
// sidebar. Start is the deck index of the first slide in the group.
type Group struct {
	Section Section
	Start   int
	Slides  []Slide
}

// Groups returns the sidebar structure: main slides first, then appendix,
// each in deck order. Empty sections are omitted.
func (d *Deck) Groups() []Group {
	var groups []Group
	for i, s := range d.slides {
		if len(groups) == 0 || groups[len(groups)-1].Section != s.Section {
			groups = append(groups, Group{Section: s.Section, Start: i})
		}
		g := &groups[len(groups)-1]
		g.Slides = append(g.Slides, s)
	}
	return groups
}

// Partition assigns sections to slides already in deck order. A slide is
// appendix when its own section says so or, with mainCount > 0, when its
// position is at or beyond mainCount. Every slide after the first appendix
// slide is appendix too, which keeps the result monotonic.
func Partition(slides []Slide, mainCount int) []Slide {
	out := make([]Slide, len(slides))
	appendix := false
	for i, s := range slides {
		if s.Section == SectionAppendix || (mainCount > 0 && i >= mainCount) {
			appendix = true
		}
		if appendix {
			s.Section = SectionAppendix
		}
		out[i] = s
	}
	return out
}

// Assemble orders slides, applies Partition and validates the result.
func Assemble(title string, slides []Slide, mainCount int, opts ...Option) (*Deck, error) {
	if len(slides) == 0 {
		d := &Deck{}
		for _, opt := range opts {
			opt(d)
		}
		return nil, &EmptyDeckError{Source: d.source}
	}
	sorted, err := normalizeAndSort(slides)
	if err != nil {
		return nil, err
	}
	return New(title, Partition(sorted, mainCount), opts...)
}
