package ui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"slidedeck/internal/deck"
	"slidedeck/internal/logging"
	"slidedeck/internal/navigator"
)

// ReloadMsg swaps in a freshly discovered deck. The viewer stays on the same
// slide id when it still exists.
type ReloadMsg struct {
	Deck *deck.Deck
}

type statusKind int

const (
	statusNone statusKind = iota
	statusWarning
	statusError
)

// ViewerModel is the bubbletea model for the terminal navigation shell.
type ViewerModel struct {
	nav    *navigator.Navigator
	styles Styles
	keys   keyMap
	help   help.Model

	viewport viewport.Model
	input    textinput.Model
	layout   LayoutConfig
	ready    bool

	prompting  bool
	status     string
	statusKind statusKind

	cache         *RenderCache
	renderer      *glamour.TermRenderer
	rendererWidth int

	quitting bool
}

// NewViewerModel returns a viewer positioned on the first slide of d.
func NewViewerModel(d *deck.Deck, styles Styles) ViewerModel {
	input := textinput.New()
	input.Prompt = "jump to: "
	input.Placeholder = "slide id"
	input.CharLimit = 16
	input.PromptStyle = styles.Prompt

	h := help.New()
	h.Styles.ShortKey = styles.Bold
	h.Styles.ShortDesc = styles.Muted
	h.Styles.FullKey = styles.Bold
	h.Styles.FullDesc = styles.Muted

	return ViewerModel{
		nav:    navigator.New(d),
		styles: styles,
		keys:   defaultKeyMap(),
		help:   h,
		input:  input,
		cache:  NewRenderCache(64),
	}
}

// Navigator exposes the viewer's navigation state.
func (m ViewerModel) Navigator() *navigator.Navigator { return m.nav }

// Status returns the warning or error line currently shown, if any.
func (m ViewerModel) Status() string { return m.status }

// Prompting reports whether the jump prompt is open.
func (m ViewerModel) Prompting() bool { return m.prompting }

func (m ViewerModel) Init() tea.Cmd { return nil }

func (m ViewerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case ReloadMsg:
		m.reload(msg.Deck)
		return m, nil

	case tea.KeyMsg:
		if m.prompting {
			return m.updatePrompt(msg)
		}
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Jump):
			m.prompting = true
			m.input.Reset()
			return m, m.input.Focus()
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		}
		if action, ok := navigator.ActionForKey(msg.String()); ok {
			m.navigate(action, "")
			return m, nil
		}
		if !m.ready {
			return m, nil
		}
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case tea.MouseMsg:
		if !m.ready {
			return m, nil
		}
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m ViewerModel) updatePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		id := strings.TrimSpace(m.input.Value())
		m.closePrompt()
		if id != "" {
			m.navigate(navigator.ActionJump, id)
		}
		return m, nil
	case tea.KeyEsc, tea.KeyCtrlC:
		m.closePrompt()
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *ViewerModel) closePrompt() {
	m.prompting = false
	m.input.Blur()
	m.input.Reset()
}

// navigate applies an action. A missing slide leaves the viewer where it
// was and shows a warning.
func (m *ViewerModel) navigate(action navigator.Action, arg string) {
	before := m.nav.Index()
	if _, err := m.nav.Apply(action, arg); err != nil {
		m.status = err.Error()
		if errors.Is(err, deck.ErrSlideNotFound) {
			m.statusKind = statusWarning
			logging.ViewerWarn("Jump failed: %v", err)
		} else {
			m.statusKind = statusError
			logging.ViewerWarn("Navigation failed: %v", err)
		}
		return
	}
	m.status = ""
	m.statusKind = statusNone
	if m.nav.Index() != before {
		m.refresh()
		if m.ready {
			m.viewport.GotoTop()
		}
	}
}

func (m *ViewerModel) resize(width, height int) {
	m.layout = NewLayoutConfig(width, height)
	m.help.Width = width
	w, h := m.layout.ContentWidth(), m.layout.ContentHeight()
	if !m.ready {
		m.viewport = viewport.New(w, h)
		m.ready = true
	} else {
		m.viewport.Width = w
		m.viewport.Height = h
	}
	m.refresh()
}

func (m *ViewerModel) reload(d *deck.Deck) {
	if d == nil || d.Len() == 0 {
		return
	}
	prevID := m.nav.Current().ID
	prevIndex := m.nav.Index()
	m.nav = navigator.New(d)
	if err := m.nav.JumpTo(prevID); err != nil {
		if prevIndex >= d.Len() {
			prevIndex = d.Len() - 1
		}
		_ = m.nav.Goto(prevIndex)
	}
	m.cache.Clear()
	m.refresh()
	logging.Viewer("Reloaded deck with %d slides", d.Len())
}

func (m *ViewerModel) refresh() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderCurrent())
}

// renderCurrent converts the current slide to styled terminal text. If
// glamour fails the plain Markdown is shown instead.
func (m *ViewerModel) renderCurrent() string {
	s := m.nav.Current()
	width := m.viewport.Width
	style := m.styles.GlamourStyle()
	out, err := m.cache.GetOrCompute(ComputeKey(s.ID, s.Content, width, style), func() (string, error) {
		r, err := m.termRenderer(width)
		if err != nil {
			return "", err
		}
		return r.Render(HTMLToMarkdown(s.Content))
	})
	if err != nil {
		logging.ViewerWarn("Failed to render slide %s: %v", s.ID, err)
		return HTMLToMarkdown(s.Content)
	}
	return out
}

func (m *ViewerModel) termRenderer(width int) (*glamour.TermRenderer, error) {
	if m.renderer != nil && m.rendererWidth == width {
		return m.renderer, nil
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(m.styles.GlamourStyle()),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, err
	}
	m.renderer = r
	m.rendererWidth = width
	return r, nil
}

func (m ViewerModel) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Loading slides..."
	}

	body := m.styles.Content.Render(m.viewport.View())
	if m.layout.SidebarWidth() > 0 {
		body = lipgloss.JoinHorizontal(lipgloss.Top, m.renderSidebar(), body)
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		body,
		m.renderFooter(),
	)
}

func (m ViewerModel) renderHeader() string {
	d := m.nav.Deck()
	s := m.nav.Current()
	text := fmt.Sprintf("%s  %s. %s", d.Title(), s.ID, s.Title)
	if s.Section == deck.SectionAppendix {
		text += "  [" + s.Section.Label() + "]"
	}
	return m.styles.Header.
		Width(m.layout.TerminalWidth).
		Render(truncate(text, m.layout.TerminalWidth-4))
}

// renderSidebar lists the slides grouped by section, scrolled so the
// current slide stays visible.
func (m ViewerModel) renderSidebar() string {
	width := m.layout.SidebarWidth()
	height := m.layout.ContentHeight()
	inner := width - 3 // padding and border

	d := m.nav.Deck()
	lines := []string{m.styles.DeckTitle.Render(truncate(d.Title(), inner))}
	active := 0
	for _, g := range d.Groups() {
		lines = append(lines, m.styles.Section.Render(truncate(g.Section.Label(), inner)))
		for j, s := range g.Slides {
			label := truncate(fmt.Sprintf("%s. %s", s.ID, s.Title), inner-1)
			if g.Start+j == m.nav.Index() {
				active = len(lines)
				lines = append(lines, m.styles.ActiveItem.Render(label))
				continue
			}
			lines = append(lines, m.styles.Item.Render(label))
		}
	}
	lines = sidebarWindow(lines, active, height)

	return m.styles.Sidebar.
		Width(width - 1).
		Height(height).
		Render(strings.Join(lines, "\n"))
}

// sidebarWindow returns at most height lines around active.
func sidebarWindow(lines []string, active, height int) []string {
	if height <= 0 || len(lines) <= height {
		return lines
	}
	start := active - height/2
	if start < 0 {
		start = 0
	}
	if start+height > len(lines) {
		start = len(lines) - height
	}
	return lines[start : start+height]
}

func (m ViewerModel) renderFooter() string {
	button := func(label string, enabled bool) string {
		if enabled {
			return m.styles.Button.Render(label)
		}
		return m.styles.DisabledButton.Render(label)
	}
	st := m.nav.State()
	controls := lipgloss.JoinHorizontal(lipgloss.Center,
		button("<<", !st.AtFirst), " ",
		button("<", !st.AtFirst), " ",
		m.styles.Counter.Render(fmt.Sprintf(" %d / %d ", st.Index+1, st.Total)), " ",
		button(">", !st.AtLast), " ",
		button(">>", !st.AtLast),
	)

	var status string
	switch {
	case m.prompting:
		status = m.input.View()
	case m.statusKind == statusWarning:
		status = m.styles.Warning.Render("⚠ " + m.status)
	case m.statusKind == statusError:
		status = m.styles.Error.Render("✗ " + m.status)
	}

	return m.styles.Footer.Render(lipgloss.JoinVertical(lipgloss.Left,
		controls,
		status,
		m.help.View(m.keys),
	))
}

// truncate shortens s to at most n runes, marking the cut with an ellipsis.
func truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}
