package export

import (
	"errors"
	"fmt"
)

var (
	// ErrRender matches any RenderError.
	ErrRender = errors.New("slide render failed")
	// ErrNoRenderer is returned for PDF export without a PDF renderer.
	ErrNoRenderer = errors.New("pdf export requires a renderer")
	// ErrUnknownFormat is returned for formats other than html and pdf.
	ErrUnknownFormat = errors.New("unknown export format")
)

// RenderError reports a slide that could not be turned into an export page.
// The export is aborted and no artifact is written.
type RenderError struct {
	ID    string
	Title string
	Err   error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("failed to render slide %s (%q): %v", e.ID, e.Title, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// Is reports whether target is ErrRender.
func (e *RenderError) Is(target error) bool { return target == ErrRender }
