package deck

import (
	"errors"
	"fmt"
)

// Sentinels for errors.Is matching against the typed errors below.
var (
	ErrEmptyDeck     = errors.New("empty deck")
	ErrDuplicateID   = errors.New("duplicate slide id")
	ErrSectionOrder  = errors.New("main slide after appendix")
	ErrSlideNotFound = errors.New("slide not found")
	ErrInvalidID     = errors.New("invalid slide id")
)

// EmptyDeckError reports that no slides were discovered. Source names the
// location that was searched.
type EmptyDeckError struct {
	Source string
}

func (e *EmptyDeckError) Error() string {
	if e.Source == "" {
		return "no slides found"
	}
	return fmt.Sprintf("no slides found in %s", e.Source)
}

func (e *EmptyDeckError) Is(target error) bool { return target == ErrEmptyDeck }

// DuplicateIDError reports two slides claiming the same ordinal.
type DuplicateIDError struct {
	ID     string
	First  Slide
	Second Slide
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("duplicate slide id %s: %s and %s", e.ID, e.First.describe(), e.Second.describe())
}

func (e *DuplicateIDError) Is(target error) bool { return target == ErrDuplicateID }

// SectionOrderError reports a main slide placed after an appendix slide.
type SectionOrderError struct {
	ID       string
	Previous string
}

func (e *SectionOrderError) Error() string {
	return fmt.Sprintf("slide %s is main but follows appendix slide %s", e.ID, e.Previous)
}

func (e *SectionOrderError) Is(target error) bool { return target == ErrSectionOrder }

// SlideNotFoundError reports a jump to an id the deck does not contain.
type SlideNotFoundError struct {
	ID string
}

func (e *SlideNotFoundError) Error() string {
	return fmt.Sprintf("slide %q not found", e.ID)
}

func (e *SlideNotFoundError) Is(target error) bool { return target == ErrSlideNotFound }
