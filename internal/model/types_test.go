package model

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewLetterSetIncludesCentral(t *testing.T) {
	ls, err := NewLetterSet("G", "a, b, c, d, e, f", strings.ToLower)
	require.NoError(t, err)
	require.Equal(t, 'g', ls.Central())
	require.Equal(t, 7, ls.Size())
	require.True(t, ls.Has('g'))
	require.Equal(t, "abcdef[g]", ls.String())
}

func TestNewLetterSetCollapsesDuplicates(t *testing.T) {
	ls, err := NewLetterSet("a", "aabb", strings.ToLower)
	require.NoError(t, err)
	require.Equal(t, []rune{'a', 'b'}, ls.Alphabet())
}

func TestNewLetterSetRejectsBadCentral(t *testing.T) {
	for _, central := range []string{"", "ab", "1"} {
		_, err := NewLetterSet(central, "abc", strings.ToLower)
		require.Error(t, err)
		require.True(t, errors.Is(err, ErrInvalidLetters), "central %q", central)
	}
}

func TestParsePolicy(t *testing.T) {
	p, err := ParsePolicy("Win-Only")
	require.NoError(t, err)
	require.Equal(t, PolicyWinOnly, p)
	require.Equal(t, "win-only", p.String())

	p, err = ParsePolicy("incremental")
	require.NoError(t, err)
	require.Equal(t, PolicyIncremental, p)

	_, err = ParsePolicy("sometimes")
	require.Error(t, err)
}

func TestCandidateListAll(t *testing.T) {
	c := CandidateList{
		Complete: []Word{{Text: "abcdefg"}},
		Other:    []Word{{Text: "gaba"}, {Text: "gabe"}},
	}
	all := c.All()
	require.Len(t, all, 3)
	require.Equal(t, "abcdefg", all[0].Text)
	require.Equal(t, 3, c.Len())
}

func TestPuzzleStateComplete(t *testing.T) {
	require.False(t, PuzzleState{}.Complete())
	require.False(t, PuzzleState{Found: 3, Total: 4}.Complete())
	require.True(t, PuzzleState{Found: 4, Total: 4}.Complete())
}
