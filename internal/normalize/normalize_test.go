package normalize

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWordFoldsVowelsKeepsCedilla(t *testing.T) {
	require.Equal(t, "açucar", Word("ÁÇÚCAR"))
	require.Equal(t, "a", Word("á"))
	require.NotEqual(t, Word("açaí"), Word("acaí"))
	require.Equal(t, "coraçao", Word("coração"))
}

func TestWordComposesDecomposedCedilla(t *testing.T) {
	decomposed := "c\u0327a"
	require.Equal(t, "\u00e7a", Word(decomposed))
	decomposedVowel := "a\u0301gua"
	require.Equal(t, "agua", Word(decomposedVowel))
}

func TestWordIdempotent(t *testing.T) {
	inputs := []string{
		"", "ÁÇÚCAR", "pão", "Ônibus", "EXCEÇÃO", "c\u0327", "über", "naïve",
		"é\u0301", "ã\u0301", "pe\u0301\u0301s", "A\u0303\u0301", "è\u0301", "c\u0327\u0301",
	}
	for _, in := range inputs {
		once := Word(in)
		require.Equal(t, once, Word(once), "input %q", in)
	}
}

func TestWordFoldsStackedMarks(t *testing.T) {
	require.Equal(t, "e", Word("é\u0301"))
	require.Equal(t, "a", Word("ã\u0301"))
	require.Equal(t, "pes", Word("pe\u0301\u0301s"))
	require.Equal(t, "è", Word("è"))
	require.Equal(t, "ç", Word("C\u0327"))
}

func TestWordPassesThroughUnknownLetters(t *testing.T) {
	require.Equal(t, "über", Word("Über"))
	require.Equal(t, "naïve", Word("naïve"))
}

func TestLetters(t *testing.T) {
	require.Equal(t, []rune{'a', 'ç', 'u', 'c', 'r'}, Letters("Açúcar"))
	require.Equal(t, []rune{'a', 'b', 'c'}, Letters("a, b, c"))
	require.Empty(t, Letters("  "))
}
