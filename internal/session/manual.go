package session

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/verte-zerg/soletra/internal/model"
	"github.com/verte-zerg/soletra/internal/normalize"
)

// Prompter asks a person whether the game took a word.
type Prompter interface {
	Ask(ctx context.Context, word string, state model.PuzzleState) (model.Verdict, error)
}

// ManualPuzzle is a puzzle played by hand: the letters are fixed and every
// submission is confirmed through a Prompter.
type ManualPuzzle struct {
	central  string
	letters  string
	total    int
	prompter Prompter
	found    []string
	keys     map[string]struct{}
}

// NewManualPuzzle returns a puzzle with the given letters. A zero total means
// the number of words is unknown and the session never completes by itself.
func NewManualPuzzle(central, letters string, total int, p Prompter) *ManualPuzzle {
	return &ManualPuzzle{
		central:  central,
		letters:  letters,
		total:    total,
		prompter: p,
		keys:     map[string]struct{}{},
	}
}

// Seed marks words already found before the session started.
func (m *ManualPuzzle) Seed(words ...string) {
	for _, w := range words {
		m.markFound(w)
	}
}

func (m *ManualPuzzle) markFound(word string) {
	word = strings.TrimSpace(word)
	key := normalize.Word(word)
	if key == "" {
		return
	}
	if _, ok := m.keys[key]; ok {
		return
	}
	m.keys[key] = struct{}{}
	m.found = append(m.found, word)
}

// Read implements PuzzleReader.
func (m *ManualPuzzle) Read(ctx context.Context) (model.PuzzleState, error) {
	if err := ctx.Err(); err != nil {
		return model.PuzzleState{}, err
	}
	found := make([]string, len(m.found))
	copy(found, m.found)
	return model.PuzzleState{
		Central:    m.central,
		Letters:    m.letters,
		Found:      len(m.found),
		Total:      m.total,
		FoundWords: found,
	}, nil
}

// Submit implements Submitter.
func (m *ManualPuzzle) Submit(ctx context.Context, word string) (model.Verdict, error) {
	state, err := m.Read(ctx)
	if err != nil {
		return model.VerdictUnknown, err
	}
	v, err := m.prompter.Ask(ctx, word, state)
	if err != nil {
		return model.VerdictUnknown, err
	}
	if v == model.VerdictAccepted {
		m.markFound(word)
	}
	return v, nil
}

// LinePrompter asks on a plain line-oriented stream.
type LinePrompter struct {
	in  *bufio.Scanner
	out io.Writer
}

// NewLinePrompter reads answers from in and writes questions to out.
func NewLinePrompter(in io.Reader, out io.Writer) *LinePrompter {
	return &LinePrompter{in: bufio.NewScanner(in), out: out}
}

// Ask implements Prompter. y accepts, n rejects, q stops; end of input stops.
func (p *LinePrompter) Ask(ctx context.Context, word string, state model.PuzzleState) (model.Verdict, error) {
	for {
		if err := ctx.Err(); err != nil {
			return model.VerdictUnknown, err
		}
		progress := fmt.Sprintf("%d", state.Found)
		if state.Total > 0 {
			progress = fmt.Sprintf("%d/%d", state.Found, state.Total)
		}
		if _, err := fmt.Fprintf(p.out, "[%s] %s  accepted? [y/n/q] ", progress, word); err != nil {
			return model.VerdictUnknown, err
		}
		if !p.in.Scan() {
			if err := p.in.Err(); err != nil {
				return model.VerdictUnknown, err
			}
			return model.VerdictUnknown, model.ErrStopped
		}
		switch strings.ToLower(strings.TrimSpace(p.in.Text())) {
		case "y", "yes", "s", "sim":
			return model.VerdictAccepted, nil
		case "n", "no", "nao", "não":
			return model.VerdictRejected, nil
		case "q", "quit", "sair":
			return model.VerdictUnknown, model.ErrStopped
		}
	}
}
