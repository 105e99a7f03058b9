// Package tui provides the Bubble Tea confirmation prompt for manual play.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/soletra/internal/model"
)

const recentLimit = 8

// AskMsg asks the user about one word. The answer goes to Reply.
type AskMsg struct {
	Word  string
	State model.PuzzleState
	Reply chan<- Answer
}

// Answer is the user's verdict on an AskMsg.
type Answer struct {
	Verdict model.Verdict
	Stop    bool
}

// DoneMsg ends the program and shows a closing line.
type DoneMsg struct {
	Summary string
}

type keyMap struct {
	Accept key.Binding
	Reject key.Binding
	Stop   key.Binding
	Help   key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Accept, k.Reject, k.Stop, k.Help}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Accept, k.Reject}, {k.Stop, k.Help}}
}

var defaultKeys = keyMap{
	Accept: key.NewBinding(key.WithKeys("y", "s", "enter"), key.WithHelp("y", "accepted")),
	Reject: key.NewBinding(key.WithKeys("n", "backspace"), key.WithHelp("n", "rejected")),
	Stop:   key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "stop")),
	Help:   key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more")),
}

var (
	letterStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#B0B0B0"))
	centralStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	wordStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true).Padding(0, 2)
	acceptedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A"))
	rejectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	footerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
)

type answered struct {
	word    string
	verdict model.Verdict
}

// Model implements the Bubble Tea prompt.
type Model struct {
	central string
	letters string

	keys keyMap
	help help.Model

	width  int
	height int

	pending *AskMsg
	state   model.PuzzleState
	recent  []answered
	asked   int
	done    string
}

// NewModel constructs a prompt for the given puzzle letters.
func NewModel(central, letters string) *Model {
	return &Model{
		central: central,
		letters: letters,
		keys:    defaultKeys,
		help:    help.New(),
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil
	case AskMsg:
		m.pending = &msg
		m.state = msg.State
		m.asked++
		return m, nil
	case DoneMsg:
		m.done = msg.Summary
		m.answer(Answer{Stop: true})
		return m, tea.Quit
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Stop):
			m.answer(Answer{Stop: true})
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		case key.Matches(msg, m.keys.Accept):
			m.answer(Answer{Verdict: model.VerdictAccepted})
		case key.Matches(msg, m.keys.Reject):
			m.answer(Answer{Verdict: model.VerdictRejected})
		}
		return m, nil
	default:
		return m, nil
	}
}

func (m *Model) answer(a Answer) {
	if m.pending == nil {
		return
	}
	if !a.Stop {
		m.recent = append(m.recent, answered{word: m.pending.Word, verdict: a.Verdict})
		if len(m.recent) > recentLimit {
			m.recent = m.recent[len(m.recent)-recentLimit:]
		}
	}
	// Reply is buffered so the send never blocks the UI.
	select {
	case m.pending.Reply <- a:
	default:
	}
	m.pending = nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.done != "" {
		return m.done + "\n"
	}
	sections := []string{m.renderLetters(), ""}
	if m.pending != nil {
		sections = append(sections, wordStyle.Render(m.pending.Word))
	} else {
		sections = append(sections, footerStyle.Render("waiting for the next word..."))
	}
	sections = append(sections, "", m.renderRecent(), m.renderFooter(), m.help.View(m.keys))
	content := lipgloss.JoinVertical(lipgloss.Center, sections...)
	if m.width == 0 || m.height == 0 {
		return content
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

func (m *Model) renderLetters() string {
	central := []rune(strings.ToUpper(m.central))
	var parts []string
	for _, r := range strings.ToUpper(m.letters) {
		if len(central) == 1 && r == central[0] {
			continue
		}
		if r == ' ' || r == ',' {
			continue
		}
		parts = append(parts, letterStyle.Render(string(r)))
	}
	return strings.Join(parts, " ") + "  " + centralStyle.Render("["+string(central)+"]")
}

func (m *Model) renderRecent() string {
	if len(m.recent) == 0 {
		return ""
	}
	parts := make([]string, 0, len(m.recent))
	for _, a := range m.recent {
		if a.verdict == model.VerdictAccepted {
			parts = append(parts, acceptedStyle.Render("+"+a.word))
		} else {
			parts = append(parts, rejectedStyle.Render("-"+a.word))
		}
	}
	return strings.Join(parts, " ")
}

func (m *Model) renderFooter() string {
	found := fmt.Sprintf("Found %d", m.state.Found)
	if m.state.Total > 0 {
		pct := int(float64(m.state.Found) / float64(m.state.Total) * 100)
		found = fmt.Sprintf("Found %d/%d (%d%%)", m.state.Found, m.state.Total, pct)
	}
	return footerStyle.Render(strings.Join([]string{found, fmt.Sprintf("Asked %d", m.asked)}, "  "))
}
