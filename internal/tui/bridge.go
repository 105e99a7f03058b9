package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/soletra/internal/model"
)

// Sender is the part of *tea.Program the bridge needs.
type Sender interface {
	Send(msg tea.Msg)
}

// Bridge lets a session goroutine ask questions through a running program.
// It satisfies session.Prompter.
type Bridge struct {
	sender Sender
	closed chan struct{}
}

// NewBridge wraps a program. Call Close once the program has exited.
func NewBridge(s Sender) *Bridge {
	return &Bridge{sender: s, closed: make(chan struct{})}
}

// Close unblocks pending and future questions.
func (b *Bridge) Close() {
	select {
	case <-b.closed:
	default:
		close(b.closed)
	}
}

// Ask sends the word to the UI and waits for the answer.
func (b *Bridge) Ask(ctx context.Context, word string, state model.PuzzleState) (model.Verdict, error) {
	select {
	case <-b.closed:
		return model.VerdictUnknown, model.ErrStopped
	default:
	}
	reply := make(chan Answer, 1)
	b.sender.Send(AskMsg{Word: word, State: state, Reply: reply})
	select {
	case a := <-reply:
		if a.Stop {
			return model.VerdictUnknown, model.ErrStopped
		}
		return a.Verdict, nil
	case <-b.closed:
		return model.VerdictUnknown, model.ErrStopped
	case <-ctx.Done():
		return model.VerdictUnknown, ctx.Err()
	}
}

// Finish shows a closing summary and ends the program.
func (b *Bridge) Finish(summary string) {
	select {
	case <-b.closed:
		return
	default:
	}
	b.sender.Send(DoneMsg{Summary: summary})
}
