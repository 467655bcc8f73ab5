package ui

// Layout constants for the viewer.
const (
	SidebarMinWidth = 24
	SidebarMaxWidth = 40
	HeaderHeight    = 1
	FooterHeight    = 3 // controls, status, help
	ContentPaddingH = 2

	MinimumTerminalWidth  = 60
	MinimumTerminalHeight = 12
)

// LayoutConfig provides computed layout dimensions based on terminal size.
type LayoutConfig struct {
	TerminalWidth  int
	TerminalHeight int
}

// NewLayoutConfig creates a layout configuration for the given terminal size.
func NewLayoutConfig(width, height int) LayoutConfig {
	return LayoutConfig{TerminalWidth: width, TerminalHeight: height}
}

// SidebarWidth is a third of the terminal, clamped. The sidebar is hidden
// on very narrow terminals.
func (l LayoutConfig) SidebarWidth() int {
	if l.TerminalWidth < MinimumTerminalWidth {
		return 0
	}
	w := l.TerminalWidth / 3
	if w < SidebarMinWidth {
		w = SidebarMinWidth
	}
	if w > SidebarMaxWidth {
		w = SidebarMaxWidth
	}
	return w
}

// ContentWidth returns the width available to the slide viewport.
func (l LayoutConfig) ContentWidth() int {
	w := l.TerminalWidth - l.SidebarWidth() - ContentPaddingH
	if l.SidebarWidth() > 0 {
		w-- // sidebar border
	}
	if w < 1 {
		return 1
	}
	return w
}

// ContentHeight returns the height available to the slide viewport.
func (l LayoutConfig) ContentHeight() int {
	h := l.TerminalHeight - HeaderHeight - FooterHeight
	if h < 1 {
		return 1
	}
	return h
}
