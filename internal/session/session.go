// Package session drives a puzzle through bounded submission attempts.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/verte-zerg/soletra/internal/candidate"
	"github.com/verte-zerg/soletra/internal/feedback"
	"github.com/verte-zerg/soletra/internal/history"
	"github.com/verte-zerg/soletra/internal/model"
	"github.com/verte-zerg/soletra/internal/normalize"
	"github.com/verte-zerg/soletra/internal/rank"
	"github.com/verte-zerg/soletra/internal/wordlist"
)

const (
	// DefaultMaxAttempts bounds the number of submission passes.
	DefaultMaxAttempts = 5
	// DefaultCheckEvery is the number of submissions between progress reads.
	DefaultCheckEvery = 20
)

// PuzzleReader returns a snapshot of the game.
type PuzzleReader interface {
	Read(ctx context.Context) (model.PuzzleState, error)
}

// Submitter plays one word. Returning model.ErrStopped ends the session.
type Submitter interface {
	Submit(ctx context.Context, word string) (model.Verdict, error)
}

// Runner runs one session.
type Runner struct {
	Reader    PuzzleReader
	Submitter Submitter
	Recorder  *feedback.Recorder
	Ranker    *rank.Ranker
	Logger    *slog.Logger

	MaxAttempts int
	CheckEvery  int
	MinLength   int
}

// Result describes a finished session.
type Result struct {
	StartedAt  time.Time
	EndedAt    time.Time
	Letters    model.LetterSet
	Candidates int
	Attempts   int
	Submitted  int
	Accepted   []string
	Rejected   []string
	State      model.PuzzleState
	Completed  bool
	Stopped    bool
	Checkpoint feedback.CheckpointResult
}

// Summary converts the result for the session log.
func (r Result) Summary() model.SessionSummary {
	return model.SessionSummary{
		StartedAt: r.StartedAt,
		EndedAt:   r.EndedAt,
		Central:   string(r.Letters.Central()),
		Letters:   r.Letters.String(),
		Policy:    r.Checkpoint.Policy,
		Attempts:  r.Attempts,
		Submitted: r.Submitted,
		Accepted:  len(r.Accepted),
		Rejected:  len(r.Rejected),
		Found:     r.State.Found,
		Total:     r.State.Total,
		Completed: r.Completed,
		Persisted: r.Checkpoint.Persisted,
	}
}

// verdict is the latest known outcome of one word.
type verdict struct {
	text string
	v    model.Verdict
	// inferred marks a rejection deduced from progress rather than reported.
	inferred bool
}

// tally tracks verdicts across the attempts of a session.
type tally struct {
	order    []string
	verdicts map[string]verdict
	pending  []string
}

func newTally() *tally {
	return &tally{verdicts: map[string]verdict{}}
}

// settle stores a verdict. Reported verdicts are final; an inferred
// rejection can still be overturned by a later attempt.
func (t *tally) settle(text string, v model.Verdict, inferred bool) {
	key := normalize.Word(text)
	prev, ok := t.verdicts[key]
	if ok && !prev.inferred {
		return
	}
	if !ok {
		t.order = append(t.order, key)
	}
	t.verdicts[key] = verdict{text: text, v: v, inferred: inferred && v == model.VerdictRejected}
}

// resolve decides pending unknown verdicts against the state's found words.
// Without a found list, a progress jump covering every pending word accepts
// them all; anything else is taken as rejected.
func (t *tally) resolve(state model.PuzzleState, foundBefore int) {
	if len(t.pending) == 0 {
		return
	}
	if state.FoundWords != nil {
		found := candidate.ExcludeSet(state.FoundWords)
		for _, text := range t.pending {
			if _, ok := found[normalize.Word(text)]; ok {
				t.settle(text, model.VerdictAccepted, true)
			} else {
				t.settle(text, model.VerdictRejected, true)
			}
		}
	} else {
		v := model.VerdictRejected
		if state.Found-foundBefore == len(t.pending) {
			v = model.VerdictAccepted
		}
		for _, text := range t.pending {
			t.settle(text, v, true)
		}
	}
	t.pending = t.pending[:0]
}

// words returns the texts holding verdict v in first-submission order.
func (t *tally) words(v model.Verdict) []string {
	var out []string
	for _, key := range t.order {
		if e := t.verdicts[key]; e.v == v {
			out = append(out, e.text)
		}
	}
	return out
}

// settled returns the keys that must not be submitted again.
func (t *tally) settled() map[string]struct{} {
	out := make(map[string]struct{}, len(t.verdicts))
	for key, e := range t.verdicts {
		if !e.inferred {
			out[key] = struct{}{}
		}
	}
	return out
}

// Run plays the puzzle with dict, ranking by h. The recorder checkpoints
// exactly once after the first successful state read, even when a
// submission fails.
func (r *Runner) Run(ctx context.Context, dict *wordlist.Dictionary, h *history.History) (Result, error) {
	logger := r.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if r.Reader == nil || r.Submitter == nil || r.Recorder == nil {
		return Result{}, fmt.Errorf("session runner is missing a reader, submitter or recorder")
	}
	if h == nil {
		h = history.New()
	}
	maxAttempts := r.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	checkEvery := r.CheckEvery
	if checkEvery <= 0 {
		checkEvery = DefaultCheckEvery
	}

	res := Result{StartedAt: time.Now()}
	state, err := r.Reader.Read(ctx)
	if err != nil {
		return res, fmt.Errorf("failed to read puzzle: %w", err)
	}
	letters, err := candidate.Letters(state.Central, state.Letters)
	if err != nil {
		return res, err
	}
	res.Letters = letters
	res.State = state

	t := newTally()
	words, err := r.candidates(letters, dict, h, state, t)
	switch {
	case errors.Is(err, model.ErrNoCandidates):
		logger.Info("no candidates", "letters", letters.String())
	case err != nil:
		return res, err
	}
	res.Candidates = len(words)

	runErr := r.play(ctx, logger, dict, h, words, maxAttempts, checkEvery, t, &res)
	res.Accepted = t.words(model.VerdictAccepted)
	res.Rejected = t.words(model.VerdictRejected)
	res.Completed = res.State.Complete()
	res.EndedAt = time.Now()

	stateAccepted := res.State.FoundWords
	if stateAccepted == nil {
		stateAccepted = res.Accepted
		if res.Completed && r.Recorder.Policy() == model.PolicyWinOnly {
			logger.Warn("puzzle did not list found words, recording session verdicts instead",
				"accepted", len(res.Accepted))
		}
	}
	// An interrupted session still persists what it learned.
	cp, err := r.Recorder.Checkpoint(context.WithoutCancel(ctx), feedback.Outcome{
		Accepted:      res.Accepted,
		Rejected:      res.Rejected,
		StateAccepted: stateAccepted,
		Completed:     res.Completed,
	}, h)
	res.Checkpoint = cp
	logger.Info("checkpoint",
		"policy", cp.Policy.String(),
		"persisted", cp.Persisted,
		"inserted", cp.Summary.Inserted,
		"incremented", cp.Summary.Incremented,
		"rejected", cp.Summary.Rejected,
	)
	if runErr != nil && err != nil {
		return res, errors.Join(runErr, err)
	}
	if runErr != nil {
		return res, runErr
	}
	if err != nil {
		return res, err
	}
	return res, nil
}

func (r *Runner) play(ctx context.Context, logger *slog.Logger, dict *wordlist.Dictionary, h *history.History, words []model.Word, maxAttempts, checkEvery int, t *tally, res *Result) error {
	for n := 1; n <= maxAttempts && len(words) > 0; n++ {
		res.Attempts = n
		logger.Info("attempt started", "attempt", n, "words", len(words))
		foundBefore := res.State.Found

		refresh := func() error {
			state, err := r.Reader.Read(ctx)
			if err != nil {
				return fmt.Errorf("failed to read progress: %w", err)
			}
			t.resolve(state, foundBefore)
			res.State = state
			foundBefore = state.Found
			return nil
		}

		var submitErr error
		for i, w := range words {
			if err := ctx.Err(); err != nil {
				submitErr = err
				break
			}
			v, err := r.Submitter.Submit(ctx, w.Text)
			if errors.Is(err, model.ErrStopped) {
				res.Stopped = true
				break
			}
			if err != nil {
				submitErr = fmt.Errorf("failed to submit %q: %w", w.Text, err)
				break
			}
			res.Submitted++
			if v == model.VerdictUnknown {
				t.pending = append(t.pending, w.Text)
			} else {
				t.settle(w.Text, v, false)
			}
			if (i+1)%checkEvery == 0 {
				if err := refresh(); err != nil {
					return err
				}
				if res.State.Complete() {
					break
				}
			}
		}
		if err := refresh(); err != nil {
			if submitErr != nil {
				return submitErr
			}
			return err
		}
		logger.Info("attempt finished",
			"attempt", n,
			"accepted", len(t.words(model.VerdictAccepted)),
			"rejected", len(t.words(model.VerdictRejected)),
			"found", res.State.Found,
			"total", res.State.Total,
		)
		if submitErr != nil {
			return submitErr
		}
		if res.Stopped || res.State.Complete() {
			return nil
		}

		next, err := r.candidates(res.Letters, dict, h, res.State, t)
		if err != nil && !errors.Is(err, model.ErrNoCandidates) {
			return err
		}
		words = next
	}
	return nil
}

// candidates filters and ranks the words still worth trying.
func (r *Runner) candidates(letters model.LetterSet, dict *wordlist.Dictionary, h *history.History, state model.PuzzleState, t *tally) ([]model.Word, error) {
	exclude := candidate.ExcludeSet(state.FoundWords)
	for key := range t.settled() {
		exclude[key] = struct{}{}
	}
	list, err := candidate.Find(letters, dict, exclude, candidate.Options{MinLength: r.MinLength})
	if err != nil {
		return nil, err
	}
	var words []model.Word
	if r.Ranker != nil {
		words = r.Ranker.List(list, h)
	} else {
		words = list.All()
	}
	if len(state.RemainingByLength) == 0 {
		return words, nil
	}
	kept := words[:0]
	for _, w := range words {
		if state.RemainingByLength[w.Length] > 0 {
			kept = append(kept, w)
		}
	}
	return kept, nil
}
