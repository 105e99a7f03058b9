// Package feedback folds session outcomes into the history and persists them
// according to the active policy.
package feedback

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/verte-zerg/soletra/internal/history"
	"github.com/verte-zerg/soletra/internal/model"
	"github.com/verte-zerg/soletra/internal/normalize"
)

// ErrCheckpointDone is returned by a second Checkpoint call on the same recorder.
var ErrCheckpointDone = errors.New("checkpoint already taken for this session")

// Summary counts what Record changed.
type Summary struct {
	Inserted    int
	Incremented int
	Rejected    int
	Ignored     int
}

// Record applies a session's accepted and rejected words to h. Accepted words
// gain one frequency and are flagged accepted; new ones start at frequency 1.
// Rejected words are inserted at frequency 0 only when absent, so an accepted
// word is never downgraded. A word is counted once per call.
func Record(accepted, rejected []string, h *history.History) Summary {
	var sum Summary
	seen := map[string]struct{}{}
	for _, text := range accepted {
		text = strings.TrimSpace(text)
		key := normalize.Word(text)
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		rec, ok := h.Lookup(key)
		if ok {
			rec.Frequency++
			rec.Accepted = true
			h.Put(rec)
			sum.Incremented++
			continue
		}
		h.Put(model.Record{Word: text, Key: key, Accepted: true, Length: utf8.RuneCountInString(text), Frequency: 1})
		sum.Inserted++
	}
	for _, text := range rejected {
		text = strings.TrimSpace(text)
		key := normalize.Word(text)
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			sum.Ignored++
			continue
		}
		seen[key] = struct{}{}
		if _, ok := h.Lookup(key); ok {
			sum.Ignored++
			continue
		}
		h.Put(model.Record{Word: text, Key: key, Length: utf8.RuneCountInString(text)})
		sum.Rejected++
	}
	return sum
}

// Outcome is everything a session learned.
type Outcome struct {
	// Accepted and Rejected are the submission verdicts.
	Accepted []string
	Rejected []string
	// StateAccepted lists the words the puzzle reported as found at the end.
	StateAccepted []string
	Completed     bool
}

// CheckpointResult reports what the checkpoint did.
type CheckpointResult struct {
	Policy    model.Policy
	Persisted bool
	Summary   Summary
}

// Recorder owns the single end-of-session checkpoint.
type Recorder struct {
	policy  model.Policy
	backend history.Backend
	done    bool
}

// NewRecorder returns a recorder persisting through backend under policy.
func NewRecorder(policy model.Policy, backend history.Backend) *Recorder {
	return &Recorder{policy: policy, backend: backend}
}

// Policy returns the active persistence policy.
func (r *Recorder) Policy() model.Policy {
	return r.policy
}

// Checkpoint records out into h and flushes it once. Under the win-only
// policy an incomplete session changes nothing, and a complete one records
// only the words the puzzle reported, without rejections.
//
// h is updated only after the flush succeeds. A failed flush leaves h as it
// was and still consumes the checkpoint.
func (r *Recorder) Checkpoint(ctx context.Context, out Outcome, h *history.History) (CheckpointResult, error) {
	if r.done {
		return CheckpointResult{Policy: r.policy}, ErrCheckpointDone
	}
	r.done = true

	res := CheckpointResult{Policy: r.policy}
	next := h.Clone()
	switch r.policy {
	case model.PolicyWinOnly:
		if !out.Completed {
			return res, nil
		}
		res.Summary = Record(out.StateAccepted, nil, next)
	default:
		res.Summary = Record(out.Accepted, out.Rejected, next)
	}
	if r.backend != nil {
		if err := r.backend.Flush(ctx, next); err != nil {
			return res, fmt.Errorf("failed to flush history: %w", err)
		}
	}
	h.Replace(next)
	res.Persisted = true
	return res, nil
}
