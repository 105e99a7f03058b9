// Package statsui provides the Bubble Tea history browser.
package statsui

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/soletra/internal/model"
	"github.com/verte-zerg/soletra/internal/normalize"
	"github.com/verte-zerg/soletra/internal/stats"
)

const (
	tabOverview = iota
	tabWords
	tabSessions
)

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	tableMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
)

// Model implements the Bubble Tea history browser.
type Model struct {
	report stats.Report
	opts   stats.Options

	tabs      []string
	activeTab int
	viewports []viewport.Model
	words     table.Model

	width  int
	height int

	filterMode bool
	filter     textinput.Model
}

// NewModel constructs a browser over a prepared report.
func NewModel(report stats.Report, opts stats.Options) *Model {
	m := &Model{
		report: report,
		opts:   opts,
		tabs:   []string{"Overview", "Words", "Sessions"},
	}
	m.viewports = make([]viewport.Model, len(m.tabs))
	for i := range m.viewports {
		m.viewports[i] = viewport.New(0, 0)
	}
	m.filter = textinput.New()
	m.filter.Prompt = "Filter: "
	m.filter.Placeholder = "word"
	m.filter.Cursor.SetMode(cursor.CursorBlink)
	m.words = table.New(
		table.WithColumns(wordColumns()),
		table.WithHeight(1),
		table.WithStyles(wordTableStyles()),
	)
	m.refreshWords()
	m.renderTabContents()
	return m
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
		m.updateLayout()
		m.renderTabContents()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.filterMode {
			return m.updateFilter(msg)
		}
		switch msg.String() {
		case "q":
			return m, tea.Quit
		case "left", "h":
			m.moveTab(-1)
			return m, nil
		case "right", "l", "tab":
			m.moveTab(1)
			return m, nil
		case "/":
			if m.activeTab != tabWords {
				return m, nil
			}
			m.filterMode = true
			return m, m.filter.Focus()
		}
		if m.activeTab == tabWords {
			var cmd tea.Cmd
			m.words, cmd = m.words.Update(msg)
			return m, cmd
		}
		var cmd tea.Cmd
		m.viewports[m.activeTab], cmd = m.viewports[m.activeTab].Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "esc":
		m.filterMode = false
		m.filter.Blur()
		if msg.String() == "esc" {
			m.filter.SetValue("")
		}
		m.refreshWords()
		return m, nil
	}
	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	m.refreshWords()
	return m, cmd
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	header := m.renderTabs()
	footer := m.renderFooter()
	bodyHeight := max(1, m.height-lipgloss.Height(header)-lipgloss.Height(footer))
	var body string
	if m.activeTab == tabWords {
		body = tableMutedStyle.Render(m.words.View())
		if m.filterMode || m.filter.Value() != "" {
			body = m.filter.View() + "\n" + body
		}
	} else {
		body = m.viewports[m.activeTab].View()
	}
	return strings.Join([]string{header, fitLines(body, m.width, bodyHeight), footer}, "\n")
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	bodyHeight := max(1, m.height-lipgloss.Height(m.renderTabs())-1)
	for i := range m.viewports {
		m.viewports[i].Width = m.width
		m.viewports[i].Height = bodyHeight
	}
	m.words.SetWidth(m.width)
	m.words.SetHeight(max(1, bodyHeight-1))
	m.filter.Width = max(10, m.width-lipgloss.Width(m.filter.Prompt)-2)
}

func (m *Model) moveTab(delta int) {
	count := len(m.tabs)
	m.activeTab = (m.activeTab + delta + count) % count
	if m.activeTab == tabWords {
		m.words.Focus()
	} else {
		m.words.Blur()
	}
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderFooter() string {
	help := "Nav: left/right  Scroll: up/down/pgup/pgdn  Quit: q"
	if m.activeTab == tabWords {
		help = "Nav: left/right  Scroll: up/down  Filter: /  Quit: q"
	}
	if m.filterMode {
		help = "enter: apply  esc: clear"
	}
	return headerStyle.Render(help)
}

func (m *Model) renderTabContents() {
	var overview bytes.Buffer
	if err := stats.RenderSummary(&overview, m.report); err != nil {
		overview.WriteString(err.Error())
	}
	if err := stats.RenderWeakLetters(&overview, m.report.Records, m.opts.Top); err != nil {
		overview.WriteString(err.Error())
	}
	m.viewports[tabOverview].SetContent(overview.String())

	var sessions bytes.Buffer
	if len(m.report.Sessions) == 0 {
		sessions.WriteString("No sessions logged.")
	} else if err := stats.RenderSessions(&sessions, m.report.Sessions, m.opts.Window, 0); err != nil {
		sessions.WriteString(err.Error())
	}
	m.viewports[tabSessions].SetContent(sessions.String())
}

func (m *Model) refreshWords() {
	m.words.SetRows(wordRows(m.report.Records, m.filter.Value()))
	m.words.GotoTop()
}

func wordColumns() []table.Column {
	return []table.Column{
		{Title: "Word", Width: 18},
		{Title: "Accepted", Width: 8},
		{Title: "Length", Width: 6},
		{Title: "Frequency", Width: 9},
	}
}

// wordRows lists records matching filter by normalized substring.
func wordRows(records []model.Record, filter string) []table.Row {
	needle := normalize.Word(strings.TrimSpace(filter))
	rows := make([]table.Row, 0, len(records))
	for _, rec := range records {
		if needle != "" && !strings.Contains(rec.Key, needle) {
			continue
		}
		accepted := "no"
		if rec.Accepted {
			accepted = "yes"
		}
		rows = append(rows, table.Row{
			rec.Word,
			accepted,
			fmt.Sprintf("%d", rec.Length),
			fmt.Sprintf("%d", rec.Frequency),
		})
	}
	return rows
}

func wordTableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		BorderBottom(true).
		Bold(true)
	styles.Selected = styles.Selected.
		Foreground(lipgloss.Color("#F0F0F0")).
		Background(lipgloss.Color("#3A3A3A")).
		Bold(false)
	return styles
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if w := lipgloss.Width(line); w < width {
			lines[i] = line + strings.Repeat(" ", width-w)
		}
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}
