// Package rank orders candidate words by what the history says about them.
package rank

import (
	"fmt"
	"sort"

	"github.com/verte-zerg/soletra/internal/model"
)

// Weights are the scoring constants.
type Weights struct {
	Accepted      float64
	Frequency     float64
	UnknownOffset float64
}

// DefaultWeights returns the stock scoring constants.
func DefaultWeights() Weights {
	return Weights{Accepted: 100, Frequency: 10, UnknownOffset: 50}
}

// Validate checks that any previously accepted word outscores every unknown
// or rejected word.
func (w Weights) Validate() error {
	if w.Accepted <= 0 {
		return fmt.Errorf("accepted weight must be positive, got %v", w.Accepted)
	}
	if w.Frequency < 0 {
		return fmt.Errorf("frequency weight must not be negative, got %v", w.Frequency)
	}
	if w.Accepted <= w.UnknownOffset {
		return fmt.Errorf("accepted weight %v must exceed unknown offset %v", w.Accepted, w.UnknownOffset)
	}
	return nil
}

// HistoryView is the read side of the history used for scoring.
type HistoryView interface {
	Lookup(key string) (model.Record, bool)
	Len() int
}

// Ranker scores and orders candidates.
type Ranker struct {
	Weights Weights
}

// New returns a ranker with validated weights.
func New(w Weights) (*Ranker, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	return &Ranker{Weights: w}, nil
}

// Score computes the priority of a single word.
func (r *Ranker) Score(w model.Word, h HistoryView) float64 {
	if h != nil {
		if rec, ok := h.Lookup(w.Key); ok {
			// Frequency only counts for accepted words, so any acceptance
			// outranks every non-accepted word.
			if !rec.Accepted {
				return 0
			}
			return r.Weights.Accepted + float64(rec.Frequency)*r.Weights.Frequency
		}
	}
	return r.Weights.UnknownOffset - float64(w.Length)
}

// Rank returns a new slice ordered by descending score, then ascending length,
// then input position. With an empty history the input order is kept.
func (r *Ranker) Rank(words []model.Word, h HistoryView) []model.Word {
	out := make([]model.Word, len(words))
	copy(out, words)
	if h == nil || h.Len() == 0 {
		return out
	}
	scores := make(map[int]float64, len(out))
	idx := make([]int, len(out))
	for i, w := range out {
		idx[i] = i
		scores[i] = r.Score(w, h)
	}
	sort.SliceStable(idx, func(a, b int) bool {
		i, j := idx[a], idx[b]
		if scores[i] != scores[j] {
			return scores[i] > scores[j]
		}
		return out[i].Length < out[j].Length
	})
	ranked := make([]model.Word, len(out))
	for pos, i := range idx {
		ranked[pos] = out[i]
	}
	return ranked
}

// List ranks a candidate list as a whole.
func (r *Ranker) List(c model.CandidateList, h HistoryView) []model.Word {
	return r.Rank(c.All(), h)
}
