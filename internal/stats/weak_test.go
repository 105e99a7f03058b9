package stats

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/soletra/internal/model"
)

func TestWeakLetters(t *testing.T) {
	records := []model.Record{
		{Key: "gaba", Accepted: true},
		{Key: "gabe", Accepted: false},
		{Key: "cage", Accepted: false},
	}
	weak := WeakLetters(records, 2)
	require.Len(t, weak, 2)
	require.Equal(t, 'c', weak[0].Letter)
	require.Equal(t, 0.0, weak[0].Rate())
	require.Equal(t, 'e', weak[1].Letter)
	require.Equal(t, 2, weak[1].Rejected)

	all := WeakLetters(records, 0)
	require.Len(t, all, 5)
	require.Equal(t, 'b', all[len(all)-1].Letter)
}

func TestLetterStatRateWithoutWords(t *testing.T) {
	require.Equal(t, 1.0, LetterStat{Letter: 'a'}.Rate())
}
