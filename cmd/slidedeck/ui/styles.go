// Package ui implements the terminal navigation shell for slidedeck.
package ui

import (
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Palette taken from the default slide stylesheet.
var (
	// Light Mode Colors (Default)
	LightBackground = lipgloss.Color("#f5f6fa")
	LightForeground = lipgloss.Color("#2c3e50") // Midnight
	LightPrimary    = lipgloss.Color("#2c3e50")
	LightAccent     = lipgloss.Color("#3498db") // Sky
	LightMuted      = lipgloss.Color("#7f8c8d")
	LightBorder     = lipgloss.Color("#bdc3c7")

	// Dark Mode Colors
	DarkBackground = lipgloss.Color("#1b2631")
	DarkForeground = lipgloss.Color("#ecf0f1")
	DarkPrimary    = lipgloss.Color("#5dade2")
	DarkAccent     = lipgloss.Color("#3498db")
	DarkMuted      = lipgloss.Color("#95a5a6")
	DarkBorder     = lipgloss.Color("#34495e")

	// Semantic Colors (same in both modes)
	Destructive = lipgloss.Color("#e74c3c")
	Warning     = lipgloss.Color("#f39c12")
	Info        = lipgloss.Color("#3498db")
)

// Theme holds the current color scheme.
type Theme struct {
	Background lipgloss.Color
	Foreground lipgloss.Color
	Primary    lipgloss.Color
	Accent     lipgloss.Color
	Muted      lipgloss.Color
	Border     lipgloss.Color
	IsDark     bool
}

// LightTheme returns the light mode theme.
func LightTheme() Theme {
	return Theme{
		Background: LightBackground,
		Foreground: LightForeground,
		Primary:    LightPrimary,
		Accent:     LightAccent,
		Muted:      LightMuted,
		Border:     LightBorder,
	}
}

// DarkTheme returns the dark mode theme.
func DarkTheme() Theme {
	return Theme{
		Background: DarkBackground,
		Foreground: DarkForeground,
		Primary:    DarkPrimary,
		Accent:     DarkAccent,
		Muted:      DarkMuted,
		Border:     DarkBorder,
		IsDark:     true,
	}
}

// DetectTheme picks dark mode from COLORFGBG or SLIDEDECK_DARK_MODE=1 and
// falls back to light.
func DetectTheme() Theme {
	// Format is usually "foreground;background"
	if parts := strings.Split(os.Getenv("COLORFGBG"), ";"); len(parts) == 2 {
		if bg, err := strconv.Atoi(parts[1]); err == nil {
			if (bg >= 0 && bg <= 6) || bg == 8 {
				return DarkTheme()
			}
		}
	}
	if os.Getenv("SLIDEDECK_DARK_MODE") == "1" {
		return DarkTheme()
	}
	return LightTheme()
}

// Styles holds all the styled components.
type Styles struct {
	Theme Theme

	// Layout
	Header  lipgloss.Style
	Footer  lipgloss.Style
	Content lipgloss.Style
	Sidebar lipgloss.Style

	// Sidebar
	DeckTitle  lipgloss.Style
	Section    lipgloss.Style
	Item       lipgloss.Style
	ActiveItem lipgloss.Style

	// Text
	Muted lipgloss.Style
	Bold  lipgloss.Style

	// Controls
	Button         lipgloss.Style
	DisabledButton lipgloss.Style
	Counter        lipgloss.Style
	Prompt         lipgloss.Style

	// Status
	Warning lipgloss.Style
	Error   lipgloss.Style
	Badge   lipgloss.Style
}

// NewStyles creates a new Styles instance with the given theme.
func NewStyles(theme Theme) Styles {
	return Styles{
		Theme: theme,

		Header: lipgloss.NewStyle().
			Background(theme.Primary).
			Foreground(lipgloss.Color("#ffffff")).
			Padding(0, 2).
			Bold(true),

		Footer: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Padding(0, 1),

		Content: lipgloss.NewStyle().
			Padding(0, 1),

		Sidebar: lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderRight(true).
			BorderForeground(theme.Border).
			Padding(0, 1),

		DeckTitle: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true).
			MarginBottom(1),

		Section: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Bold(true).
			MarginTop(1),

		Item: lipgloss.NewStyle().
			Foreground(theme.Foreground).
			PaddingLeft(1),

		ActiveItem: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ffffff")).
			Background(theme.Accent).
			Bold(true).
			PaddingLeft(1),

		Muted: lipgloss.NewStyle().
			Foreground(theme.Muted),

		Bold: lipgloss.NewStyle().
			Foreground(theme.Foreground).
			Bold(true),

		Button: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ffffff")).
			Background(theme.Accent).
			Padding(0, 1).
			Bold(true),

		DisabledButton: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Background(theme.Border).
			Padding(0, 1),

		Counter: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true),

		Prompt: lipgloss.NewStyle().
			Foreground(theme.Accent).
			Bold(true),

		Warning: lipgloss.NewStyle().
			Foreground(Warning).
			Bold(true),

		Error: lipgloss.NewStyle().
			Foreground(Destructive).
			Bold(true),

		Badge: lipgloss.NewStyle().
			Background(Destructive).
			Foreground(lipgloss.Color("#ffffff")).
			Padding(0, 1).
			Bold(true),
	}
}

// DefaultStyles returns styles for the detected theme.
func DefaultStyles() Styles {
	return NewStyles(DetectTheme())
}

// GlamourStyle names the glamour standard style matching the theme.
func (s Styles) GlamourStyle() string {
	if s.Theme.IsDark {
		return "dark"
	}
	return "light"
}
