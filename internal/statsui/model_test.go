package statsui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/soletra/internal/model"
	"github.com/verte-zerg/soletra/internal/stats"
)

func sampleReport() stats.Report {
	return stats.Report{Records: []model.Record{
		{Word: "açúcar", Key: "açucar", Accepted: true, Length: 6, Frequency: 3},
		{Word: "gaba", Key: "gaba", Accepted: true, Length: 4, Frequency: 1},
		{Word: "cage", Key: "cage", Length: 4},
	}}
}

func TestWordRowsFilterByNormalizedKey(t *testing.T) {
	rows := wordRows(sampleReport().Records, "ÇÚC")
	require.Len(t, rows, 1)
	require.Equal(t, "açúcar", rows[0][0])
	require.Equal(t, "yes", rows[0][1])

	require.Len(t, wordRows(sampleReport().Records, ""), 3)
}

func TestModelTabsAndFilter(t *testing.T) {
	m := NewModel(sampleReport(), stats.Options{Top: 5, Window: 3})
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	require.Contains(t, m.View(), "Known words: 3")

	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	require.Equal(t, tabWords, m.activeTab)

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("/")})
	require.True(t, m.filterMode)
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("gab")})
	require.Len(t, m.words.Rows(), 1)
	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.False(t, m.filterMode)
	require.Len(t, m.words.Rows(), 3)

	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	require.Equal(t, tabSessions, m.activeTab)
	require.True(t, strings.Contains(m.View(), "No sessions logged."))

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
}

func TestFitLines(t *testing.T) {
	out := fitLines("a\nb\nc", 2, 2)
	require.Equal(t, "a \nb ", out)
}
