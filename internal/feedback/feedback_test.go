package feedback

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/soletra/internal/history"
	"github.com/verte-zerg/soletra/internal/model"
)

type memBackend struct {
	flushes int
	last    *history.History
	err     error
}

func (m *memBackend) Load(context.Context) (*history.History, error) {
	if m.last == nil {
		return history.New(), nil
	}
	return m.last.Clone(), nil
}

func (m *memBackend) Flush(_ context.Context, h *history.History) error {
	m.flushes++
	if m.err != nil {
		return m.err
	}
	m.last = h.Clone()
	return nil
}

func TestRecordInsertsAndIncrements(t *testing.T) {
	h := history.New()
	sum := Record([]string{"Açúcar", "gaba"}, []string{"gabe"}, h)
	require.Equal(t, Summary{Inserted: 2, Rejected: 1}, sum)

	rec, ok := h.Lookup("açucar")
	require.True(t, ok)
	require.Equal(t, model.Record{Word: "Açúcar", Key: "açucar", Accepted: true, Length: 6, Frequency: 1}, rec)

	sum = Record([]string{"açucar"}, nil, h)
	require.Equal(t, 1, sum.Incremented)
	rec, _ = h.Lookup("açucar")
	require.Equal(t, 2, rec.Frequency)
	require.Equal(t, "Açúcar", rec.Word)

	rec, _ = h.Lookup("gabe")
	require.False(t, rec.Accepted)
	require.Equal(t, 0, rec.Frequency)
}

func TestRecordNeverDowngrades(t *testing.T) {
	h := history.New()
	Record([]string{"gaba"}, nil, h)
	for i := 0; i < 3; i++ {
		sum := Record(nil, []string{"gaba", "GABA"}, h)
		require.Equal(t, 2, sum.Ignored)
	}
	rec, _ := h.Lookup("gaba")
	require.True(t, rec.Accepted)
	require.Equal(t, 1, rec.Frequency)
}

func TestRecordRejectedThenAccepted(t *testing.T) {
	h := history.New()
	Record(nil, []string{"gaba"}, h)
	Record([]string{"gaba"}, nil, h)
	rec, _ := h.Lookup("gaba")
	require.True(t, rec.Accepted)
	require.Equal(t, 1, rec.Frequency)
}

func TestRecordSameWordOncePerCall(t *testing.T) {
	h := history.New()
	sum := Record([]string{"gaba", "gabá"}, []string{"gaba"}, h)
	require.Equal(t, Summary{Inserted: 1, Ignored: 1}, sum)
	rec, _ := h.Lookup("gaba")
	require.Equal(t, 1, rec.Frequency)
}

func TestCheckpointIncremental(t *testing.T) {
	backend := &memBackend{}
	r := NewRecorder(model.PolicyIncremental, backend)
	require.Equal(t, model.PolicyIncremental, r.Policy())

	h := history.New()
	res, err := r.Checkpoint(context.Background(), Outcome{Accepted: []string{"gaba"}, Rejected: []string{"gabe"}}, h)
	require.NoError(t, err)
	require.True(t, res.Persisted)
	require.Equal(t, 1, backend.flushes)
	require.Equal(t, 2, backend.last.Len())
}

func TestCheckpointWinOnlyIncomplete(t *testing.T) {
	backend := &memBackend{}
	r := NewRecorder(model.PolicyWinOnly, backend)
	h := history.New()

	res, err := r.Checkpoint(context.Background(), Outcome{Accepted: []string{"gaba"}, Rejected: []string{"gabe"}}, h)
	require.NoError(t, err)
	require.False(t, res.Persisted)
	require.Equal(t, 0, backend.flushes)
	require.Equal(t, 0, h.Len())
}

func TestCheckpointWinOnlyUsesStateWords(t *testing.T) {
	backend := &memBackend{}
	r := NewRecorder(model.PolicyWinOnly, backend)
	h := history.New()

	out := Outcome{
		Accepted:      []string{"gaba"},
		Rejected:      []string{"gabe"},
		StateAccepted: []string{"gaba", "bagé"},
		Completed:     true,
	}
	res, err := r.Checkpoint(context.Background(), out, h)
	require.NoError(t, err)
	require.True(t, res.Persisted)
	require.Equal(t, 2, res.Summary.Inserted)
	_, ok := h.Lookup("gabe")
	require.False(t, ok)
	_, ok = h.Lookup("bage")
	require.True(t, ok)
	require.Equal(t, 1, backend.flushes)
}

func TestCheckpointOnlyOnce(t *testing.T) {
	backend := &memBackend{}
	r := NewRecorder(model.PolicyIncremental, backend)
	h := history.New()
	_, err := r.Checkpoint(context.Background(), Outcome{}, h)
	require.NoError(t, err)
	_, err = r.Checkpoint(context.Background(), Outcome{Accepted: []string{"gaba"}}, h)
	require.True(t, errors.Is(err, ErrCheckpointDone))
	require.Equal(t, 1, backend.flushes)
	require.Equal(t, 0, h.Len())
}

func TestCheckpointFlushError(t *testing.T) {
	backend := &memBackend{err: errors.New("disk full")}
	r := NewRecorder(model.PolicyIncremental, backend)
	h := history.New()
	h.Put(model.Record{Word: "gabe", Key: "gabe", Accepted: true, Length: 4, Frequency: 2})
	before := h.Clone()

	res, err := r.Checkpoint(context.Background(), Outcome{Accepted: []string{"gaba", "gabe"}}, h)
	require.Error(t, err)
	require.False(t, res.Persisted)
	require.True(t, h.Equal(before))

	_, err = r.Checkpoint(context.Background(), Outcome{Accepted: []string{"gaba"}}, h)
	require.True(t, errors.Is(err, ErrCheckpointDone))
}

func TestRoundTripThroughBackend(t *testing.T) {
	backend := &memBackend{}
	h := history.New()
	_, err := NewRecorder(model.PolicyIncremental, backend).Checkpoint(context.Background(),
		Outcome{Accepted: []string{"gaba", "açúcar"}, Rejected: []string{"bage"}}, h)
	require.NoError(t, err)
	loaded, err := backend.Load(context.Background())
	require.NoError(t, err)
	require.True(t, h.Equal(loaded))
}
