// Package history keeps per-word outcome statistics between sessions.
package history

import (
	"context"
	"sort"

	"github.com/verte-zerg/soletra/internal/model"
)

// History maps normalized words to their records.
type History struct {
	records map[string]model.Record
}

// New returns an empty history.
func New() *History {
	return &History{records: map[string]model.Record{}}
}

// Lookup returns the record stored under a normalized key.
func (h *History) Lookup(key string) (model.Record, bool) {
	if h == nil {
		return model.Record{}, false
	}
	rec, ok := h.records[key]
	return rec, ok
}

// Len returns the number of records.
func (h *History) Len() int {
	if h == nil {
		return 0
	}
	return len(h.records)
}

// Put stores rec under rec.Key, replacing any previous record.
func (h *History) Put(rec model.Record) {
	h.records[rec.Key] = rec
}

// Merge folds rec into the history: frequencies add up and an acceptance is
// never lost.
func (h *History) Merge(rec model.Record) {
	prev, ok := h.records[rec.Key]
	if !ok {
		h.records[rec.Key] = rec
		return
	}
	prev.Frequency += rec.Frequency
	prev.Accepted = prev.Accepted || rec.Accepted
	if prev.Word == "" {
		prev.Word = rec.Word
	}
	if prev.Length == 0 {
		prev.Length = rec.Length
	}
	h.records[rec.Key] = prev
}

// Records returns all records sorted by key.
func (h *History) Records() []model.Record {
	if h == nil {
		return nil
	}
	out := make([]model.Record, 0, len(h.records))
	for _, rec := range h.records {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// Clone returns an independent copy.
func (h *History) Clone() *History {
	c := New()
	if h == nil {
		return c
	}
	for k, rec := range h.records {
		c.records[k] = rec
	}
	return c
}

// Replace makes h hold exactly the records of other.
func (h *History) Replace(other *History) {
	h.records = other.Clone().records
}

// Equal reports whether both histories hold the same records.
func (h *History) Equal(other *History) bool {
	if h.Len() != other.Len() {
		return false
	}
	if h == nil || other == nil {
		return true
	}
	for k, rec := range h.records {
		if o, ok := other.records[k]; !ok || o != rec {
			return false
		}
	}
	return true
}

// Backend loads and persists a whole history.
type Backend interface {
	Load(ctx context.Context) (*History, error)
	Flush(ctx context.Context, h *History) error
}
