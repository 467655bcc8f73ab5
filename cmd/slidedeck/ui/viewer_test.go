package ui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slidedeck/internal/deck"
)

func TestViewer_LoadingBeforeResize(t *testing.T) {
	m := newTestViewer(t)
	assert.Equal(t, "Loading slides...", m.View())
}

func TestViewer_ViewShowsSidebarAndContent(t *testing.T) {
	m := newTestViewer(t)
	m, _ = update(m, tea.WindowSizeMsg{Width: 100, Height: 30})

	out := m.View()
	assert.Contains(t, out, "001. Intro")
	assert.Contains(t, out, "011. Resources")
	assert.Contains(t, out, "Appendix")
	assert.Contains(t, out, "1 / 3")
	assert.Contains(t, out, "Hello")

	m, _ = update(m, tea.KeyMsg{Type: tea.KeyEnd})
	out = m.View()
	assert.Contains(t, out, "3 / 3")
	assert.Contains(t, out, "Further")
	assert.NotContains(t, out, "Hello")
}

func TestViewer_NarrowTerminalHidesSidebar(t *testing.T) {
	m := newTestViewer(t)
	m, _ = update(m, tea.WindowSizeMsg{Width: 40, Height: 20})

	out := m.View()
	assert.NotContains(t, out, "002. State")
	assert.Contains(t, out, "1 / 3")
}

func TestViewer_ReloadKeepsCurrentSlide(t *testing.T) {
	m := newTestViewer(t)
	m, _ = update(m, tea.WindowSizeMsg{Width: 100, Height: 30})
	m, _ = update(m, tea.KeyMsg{Type: tea.KeyRight})
	require.Equal(t, "002", m.Navigator().Current().ID)

	d, err := deck.New("LangGraph Basics", []deck.Slide{
		{ID: "001", Title: "Intro", Content: slideDoc("Intro", "Hello there")},
		{ID: "002", Title: "State", Content: slideDoc("State", "Rewritten body")},
		{ID: "003", Title: "Edges", Content: slideDoc("Edges", "New slide")},
	})
	require.NoError(t, err)

	m, _ = update(m, ReloadMsg{Deck: d})
	assert.Equal(t, "002", m.Navigator().Current().ID)
	assert.Equal(t, 3, m.Navigator().State().Total)
	assert.Contains(t, m.View(), "Rewritten")
}

func TestViewer_ReloadFallsBackToClampedIndex(t *testing.T) {
	m := newTestViewer(t)
	m, _ = update(m, tea.KeyMsg{Type: tea.KeyEnd})

	d, err := deck.New("Short", []deck.Slide{
		{ID: "001", Title: "Intro", Content: slideDoc("Intro", "Hello there")},
	})
	require.NoError(t, err)

	m, _ = update(m, ReloadMsg{Deck: d})
	assert.Equal(t, 0, m.Navigator().Index())

	// A nil deck is ignored
	m, _ = update(m, ReloadMsg{})
	assert.Equal(t, "Short", m.Navigator().Deck().Title())
}

func TestViewer_HelpToggle(t *testing.T) {
	m := newTestViewer(t)
	m, _ = update(m, tea.WindowSizeMsg{Width: 120, Height: 30})
	assert.NotContains(t, m.View(), "first")

	m, _ = update(m, runes("?"))
	assert.Contains(t, m.View(), "first")
}

func TestSidebarWindow(t *testing.T) {
	lines := strings.Split("a b c d e f g h", " ")

	assert.Equal(t, lines, sidebarWindow(lines, 0, 20))
	assert.Equal(t, []string{"a", "b", "c"}, sidebarWindow(lines, 0, 3))
	assert.Equal(t, []string{"c", "d", "e"}, sidebarWindow(lines, 3, 3))
	assert.Equal(t, []string{"f", "g", "h"}, sidebarWindow(lines, 7, 3))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcd…", truncate("abcdefgh", 5))
	assert.Equal(t, "…", truncate("abc", 1))
	assert.Equal(t, "", truncate("abc", 0))
}

func TestLayoutConfig(t *testing.T) {
	narrow := NewLayoutConfig(50, 20)
	assert.Equal(t, 0, narrow.SidebarWidth())
	assert.Equal(t, 48, narrow.ContentWidth())

	wide := NewLayoutConfig(300, 50)
	assert.Equal(t, SidebarMaxWidth, wide.SidebarWidth())
	assert.Equal(t, 300-SidebarMaxWidth-ContentPaddingH-1, wide.ContentWidth())
	assert.Equal(t, 50-HeaderHeight-FooterHeight, wide.ContentHeight())

	mid := NewLayoutConfig(66, 5)
	assert.Equal(t, SidebarMinWidth, mid.SidebarWidth())
	assert.Equal(t, 1, mid.ContentHeight())
}
