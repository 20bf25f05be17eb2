// Package tui is a terminal front end for a single drawing session. Mouse
// clicks and motion drive the controller; keys switch modes.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/gyaneshwarpardhi/graphboard/internal/config"
	"github.com/gyaneshwarpardhi/graphboard/internal/controller"
)

// KeyMap defines all keyboard shortcuts.
type KeyMap struct {
	Vertex  key.Binding
	Edge    key.Binding
	Text    key.Binding
	Label   key.Binding
	Grow    key.Binding
	Shrink  key.Binding
	Clear   key.Binding
	Export  key.Binding
	Confirm key.Binding
	Cancel  key.Binding
	Quit    key.Binding
}

var DefaultKeyMap = KeyMap{
	Vertex:  key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "vertices")),
	Edge:    key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edges")),
	Text:    key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "text")),
	Label:   key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "label selected")),
	Grow:    key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "radius up")),
	Shrink:  key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "radius down")),
	Clear:   key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear")),
	Export:  key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "export")),
	Confirm: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "confirm")),
	Cancel:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
	Quit:    key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Vertex, k.Edge, k.Text, k.Label, k.Grow, k.Shrink, k.Clear, k.Export, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp(), {k.Confirm, k.Cancel}}
}

// prompt says what the text input is collecting.
type prompt int

const (
	promptNone prompt = iota
	promptText
	promptLabel
)

var (
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#64748b"))
	modeStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#3b82f6"))
	exportStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#10b981"))
)

// Model is the bubbletea model of one board.
type Model struct {
	ctrl   *controller.Controller
	grid   *Grid
	keys   KeyMap
	help   help.Model
	input  textinput.Model
	prompt prompt

	status string
	export string
}

// NewModel creates a board using the canvas and vertex settings of cfg.
func NewModel(cfg *config.BoardConfig) Model {
	grid := NewGrid(cfg.RenderOptions())
	in := textinput.New()
	in.CharLimit = 64
	in.Width = 40
	return Model{
		ctrl:  controller.New(cfg.Controller(nil), grid),
		grid:  grid,
		keys:  DefaultKeyMap,
		help:  help.New(),
		input: in,
	}
}

// Controller exposes the session controller.
func (m Model) Controller() *controller.Controller { return m.ctrl }

// Grid exposes the drawing grid.
func (m Model) Grid() *Grid { return m.grid }

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.prompt != promptNone {
			return m.updatePrompt(msg)
		}
		return m.handleKey(msg)
	case tea.MouseMsg:
		m.handleMouse(msg)
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Vertex):
		m.ctrl.ToggleVertexMode()
	case key.Matches(msg, m.keys.Edge):
		m.ctrl.ToggleEdgeMode()
	case key.Matches(msg, m.keys.Grow):
		m.ctrl.IncreaseRadius()
	case key.Matches(msg, m.keys.Shrink):
		m.ctrl.DecreaseRadius()
	case key.Matches(msg, m.keys.Clear):
		m.ctrl.Clear()
		m.export = ""
	case key.Matches(msg, m.keys.Export):
		m.export = m.ctrl.Export()
	case key.Matches(msg, m.keys.Text):
		return m.openPrompt(promptText, "text: ")
	case key.Matches(msg, m.keys.Label):
		if _, ok := m.ctrl.Selected(); !ok {
			m.status = "select a vertex first"
			return m, nil
		}
		return m.openPrompt(promptLabel, "label: ")
	}
	m.status = ""
	return m, nil
}

func (m Model) openPrompt(p prompt, label string) (tea.Model, tea.Cmd) {
	m.prompt = p
	m.input.Prompt = label
	m.input.SetValue("")
	return m, m.input.Focus()
}

func (m Model) updatePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Confirm):
		value := m.input.Value()
		switch m.prompt {
		case promptText:
			m.ctrl.StageText(value)
			if value != "" {
				m.status = "click to place text"
			}
		case promptLabel:
			m.ctrl.LabelSelected(value)
		}
		m.closePrompt()
		return m, nil
	case key.Matches(msg, m.keys.Cancel):
		m.closePrompt()
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) closePrompt() {
	m.prompt = promptNone
	m.input.Blur()
	m.input.SetValue("")
}

func (m Model) handleMouse(msg tea.MouseMsg) {
	if !m.grid.Contains(msg.X, msg.Y) {
		return
	}
	p := m.grid.ToSurface(msg.X, msg.Y)
	switch {
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		m.ctrl.PointerClick(p)
	case msg.Action == tea.MouseActionMotion:
		m.ctrl.PointerMove(p)
	}
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.grid.Render())
	b.WriteByte('\n')

	g := m.ctrl.Graph()
	fmt.Fprintf(&b, "%s  %s\n",
		modeStyle.Render(m.ctrl.Mode().String()),
		statusStyle.Render(fmt.Sprintf("radius %.0f · %d vertices · %d edges", m.ctrl.Radius(), g.VertexCount(), g.EdgeCount())))
	if m.prompt != promptNone {
		b.WriteString(m.input.View())
		b.WriteByte('\n')
	} else if m.status != "" {
		b.WriteString(statusStyle.Render(m.status))
		b.WriteByte('\n')
	}
	if m.export != "" {
		b.WriteString(exportStyle.Render(strings.ReplaceAll(m.export, "\r\n", " ")))
		b.WriteByte('\n')
	}
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

// Run starts the full-screen board and blocks until the user quits.
func Run(cfg *config.BoardConfig) (*controller.Controller, error) {
	m := NewModel(cfg)
	if _, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion()).Run(); err != nil {
		return nil, fmt.Errorf("tui: %w", err)
	}
	return m.ctrl, nil
}
