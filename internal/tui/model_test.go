package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/soletra/internal/model"
)

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestModelAnswersPendingWord(t *testing.T) {
	m := NewModel("g", "abcdef")
	reply := make(chan Answer, 1)
	m.Update(AskMsg{Word: "gaba", State: model.PuzzleState{Found: 1, Total: 4}, Reply: reply})
	require.Contains(t, m.View(), "gaba")
	require.Contains(t, m.View(), "Found 1/4 (25%)")

	_, cmd := m.Update(keyRunes("y"))
	require.Nil(t, cmd)
	require.Equal(t, Answer{Verdict: model.VerdictAccepted}, <-reply)
	require.Contains(t, m.View(), "+gaba")
	require.Nil(t, m.pending)
}

func TestModelRejectAndIgnoreWithoutPending(t *testing.T) {
	m := NewModel("g", "abcdef")
	m.Update(keyRunes("n"))
	require.Empty(t, m.recent)

	reply := make(chan Answer, 1)
	m.Update(AskMsg{Word: "cage", Reply: reply})
	m.Update(keyRunes("n"))
	require.Equal(t, model.VerdictRejected, (<-reply).Verdict)
	require.Contains(t, m.View(), "-cage")
}

func TestModelStopQuits(t *testing.T) {
	m := NewModel("g", "abcdef")
	reply := make(chan Answer, 1)
	m.Update(AskMsg{Word: "gaba", Reply: reply})
	_, cmd := m.Update(keyRunes("q"))
	require.NotNil(t, cmd)
	require.True(t, (<-reply).Stop)
}

func TestModelRecentIsBounded(t *testing.T) {
	m := NewModel("g", "abcdef")
	for i := 0; i < recentLimit+3; i++ {
		reply := make(chan Answer, 1)
		m.Update(AskMsg{Word: "gaba", Reply: reply})
		m.Update(keyRunes("y"))
	}
	require.Len(t, m.recent, recentLimit)
	require.Equal(t, recentLimit+3, m.asked)
}

func TestRenderLettersMarksCentral(t *testing.T) {
	m := NewModel("g", "a, b, c")
	out := m.renderLetters()
	require.Contains(t, out, "[G]")
	require.Contains(t, out, "A")
}

type chanSender struct {
	msgs chan tea.Msg
}

func (s chanSender) Send(msg tea.Msg) { s.msgs <- msg }

func TestBridgeRoundTrip(t *testing.T) {
	sender := chanSender{msgs: make(chan tea.Msg, 1)}
	b := NewBridge(sender)
	m := NewModel("g", "abcdef")

	go func() {
		msg := <-sender.msgs
		m.Update(msg)
		m.Update(keyRunes("y"))
	}()
	v, err := b.Ask(context.Background(), "gaba", model.PuzzleState{})
	require.NoError(t, err)
	require.Equal(t, model.VerdictAccepted, v)
}

func TestBridgeStopAndClose(t *testing.T) {
	sender := chanSender{msgs: make(chan tea.Msg, 1)}
	b := NewBridge(sender)

	go func() {
		msg := (<-sender.msgs).(AskMsg)
		msg.Reply <- Answer{Stop: true}
	}()
	_, err := b.Ask(context.Background(), "gaba", model.PuzzleState{})
	require.True(t, errors.Is(err, model.ErrStopped))

	b.Close()
	b.Close()
	_, err = b.Ask(context.Background(), "cage", model.PuzzleState{})
	require.True(t, errors.Is(err, model.ErrStopped))
}

func TestBridgeContextCancel(t *testing.T) {
	sender := chanSender{msgs: make(chan tea.Msg, 1)}
	b := NewBridge(sender)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := b.Ask(ctx, "gaba", model.PuzzleState{})
	require.True(t, errors.Is(err, context.Canceled))
}
