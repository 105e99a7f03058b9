package history

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/soletra/internal/model"
)

func TestHistoryMergeNeverDowngrades(t *testing.T) {
	h := New()
	h.Merge(model.Record{Word: "gaba", Key: "gaba", Accepted: true, Length: 4, Frequency: 2})
	h.Merge(model.Record{Word: "gaba", Key: "gaba", Accepted: false, Length: 4, Frequency: 1})
	rec, ok := h.Lookup("gaba")
	require.True(t, ok)
	require.True(t, rec.Accepted)
	require.Equal(t, 3, rec.Frequency)
}

func TestHistoryReplace(t *testing.T) {
	h := New()
	h.Put(model.Record{Word: "gaba", Key: "gaba", Accepted: true, Length: 4, Frequency: 1})
	other := New()
	other.Put(model.Record{Word: "bage", Key: "bage", Length: 4})

	h.Replace(other)
	require.True(t, h.Equal(other))
	other.Put(model.Record{Word: "gado", Key: "gado", Length: 4})
	require.Equal(t, 1, h.Len())
}

func TestHistoryCloneIsIndependent(t *testing.T) {
	h := New()
	h.Put(model.Record{Word: "gaba", Key: "gaba", Length: 4})
	c := h.Clone()
	require.True(t, h.Equal(c))
	c.Put(model.Record{Word: "bage", Key: "bage", Length: 4})
	require.False(t, h.Equal(c))
	require.Equal(t, 1, h.Len())
}

func TestNilHistoryIsEmpty(t *testing.T) {
	var h *History
	require.Equal(t, 0, h.Len())
	_, ok := h.Lookup("x")
	require.False(t, ok)
	require.True(t, h.Equal(New()))
}

func TestCSVRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.csv")
	file := &CSVFile{Path: path, Strict: true}

	h := New()
	h.Put(model.Record{Word: "açúcar", Key: "açucar", Accepted: true, Length: 6, Frequency: 3})
	h.Put(model.Record{Word: "gabe", Key: "gabe", Accepted: false, Length: 4, Frequency: 0})
	require.NoError(t, file.Flush(context.Background(), h))

	got, err := file.Load(context.Background())
	require.NoError(t, err)
	require.True(t, h.Equal(got))
}

func TestCSVMissingFileIsEmpty(t *testing.T) {
	file := &CSVFile{Path: filepath.Join(t.TempDir(), "none.csv"), Strict: true}
	h, err := file.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, 0, h.Len())
}

func TestCSVReadsPortugueseHeader(t *testing.T) {
	in := "palavra,foi_aceita,tamanho,frequencia\nAçúcar,1,6,2\nbage,0,4,0\n"
	h, report, err := ReadCSV(context.Background(), strings.NewReader(in), true)
	require.NoError(t, err)
	require.Equal(t, 0, report.Skipped)
	rec, ok := h.Lookup("açucar")
	require.True(t, ok)
	require.Equal(t, "Açúcar", rec.Word)
	require.True(t, rec.Accepted)
	require.Equal(t, 2, rec.Frequency)
}

func TestCSVAcceptedColumnOptional(t *testing.T) {
	in := "word,length,frequency\ngaba,4,2\nbage,4,0\n"
	h, _, err := ReadCSV(context.Background(), strings.NewReader(in), true)
	require.NoError(t, err)
	gaba, _ := h.Lookup("gaba")
	bage, _ := h.Lookup("bage")
	require.True(t, gaba.Accepted)
	require.False(t, bage.Accepted)
}

func TestCSVCountedWordIsAccepted(t *testing.T) {
	in := "word,accepted,length,frequency\ngaba,0,4,20\ngabe,1,4,1\n"
	h, _, err := ReadCSV(context.Background(), strings.NewReader(in), true)
	require.NoError(t, err)
	gaba, _ := h.Lookup("gaba")
	require.True(t, gaba.Accepted)
	require.Equal(t, 20, gaba.Frequency)
}

func TestCSVMergesDuplicateKeys(t *testing.T) {
	in := "word,accepted,length,frequency\nmaçã,0,4,0\nmaça,1,4,2\n"
	h, _, err := ReadCSV(context.Background(), strings.NewReader(in), true)
	require.NoError(t, err)
	require.Equal(t, 1, h.Len())
	rec, _ := h.Lookup("maça")
	require.True(t, rec.Accepted)
	require.Equal(t, 2, rec.Frequency)
}

func TestCSVCorruptRows(t *testing.T) {
	in := "word,accepted,length,frequency\ngaba,1,4,2\nbage,maybe,4,0\n,1,4,1\nbagre,0,5,-3\ngado,0,4,0\n"

	_, _, err := ReadCSV(context.Background(), strings.NewReader(in), true)
	require.Error(t, err)
	require.True(t, errors.Is(err, model.ErrCorruptData))
	require.Contains(t, err.Error(), "line 3")

	h, report, err := ReadCSV(context.Background(), strings.NewReader(in), false)
	require.NoError(t, err)
	require.Equal(t, 3, report.Skipped)
	require.Equal(t, []int{3, 4, 5}, report.Rows)
	require.Equal(t, 2, h.Len())
}

func TestCSVFileStrictLoadFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.csv")
	require.NoError(t, os.WriteFile(path, []byte("word,accepted,length,frequency\ngaba,x,4,1\n"), 0o644))

	_, err := (&CSVFile{Path: path, Strict: true}).Load(context.Background())
	require.True(t, errors.Is(err, model.ErrCorruptData))

	lenient := &CSVFile{Path: path}
	h, err := lenient.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, 0, h.Len())
	require.Equal(t, 1, lenient.Report.Skipped)
}
