package wordlist

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/soletra/internal/model"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoadCollapsesDuplicatesAndTrims(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pt.txt")
	writeFile(t, path, "casa  \ngato\n\ncasa\n  pão\t\n")

	dict, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 3, dict.Len())
	require.Equal(t, []string{"casa", "gato", "pão"}, dict.Words())
	require.True(t, dict.Contains("pão"))
}

func TestLoadMissingIsNotFound(t *testing.T) {
	dict, err := Load(filepath.Join(t.TempDir(), "missing.txt"))
	require.Nil(t, dict)
	require.True(t, errors.Is(err, model.ErrNotFound))
}

func TestLoadEmptyFileIsEmptyDictionary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.txt")
	writeFile(t, path, "")

	dict, err := Load(path)
	require.NoError(t, err)
	require.NotNil(t, dict)
	require.Equal(t, 0, dict.Len())
}

func TestLoadComposesDecomposedWords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pt.txt")
	writeFile(t, path, "pac\u0327oca\npa\u00e7oca\n")

	dict, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 1, dict.Len())
	require.True(t, dict.Contains("pa\u00e7oca"))
}

func TestLoadCachedBuildsThenHits(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "pt.txt")
	cacheDir := filepath.Join(dir, "cache")
	writeFile(t, source, "casa\ngato\n")

	dict, info, err := LoadCached(source, cacheDir)
	require.NoError(t, err)
	require.NoError(t, info.Err)
	require.False(t, info.Hit)
	require.Equal(t, 2, dict.Len())
	_, err = os.Stat(info.Path)
	require.NoError(t, err)

	dict, info, err = LoadCached(source, cacheDir)
	require.NoError(t, err)
	require.True(t, info.Hit)
	require.Equal(t, []string{"casa", "gato"}, dict.Words())
}

func TestLoadCachedRebuildsWhenSourceChanges(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "pt.txt")
	writeFile(t, source, "casa\n")
	_, _, err := LoadCached(source, dir)
	require.NoError(t, err)

	writeFile(t, source, "casa\nbola\n")
	dict, info, err := LoadCached(source, dir)
	require.NoError(t, err)
	require.False(t, info.Hit)
	require.Equal(t, 2, dict.Len())
}

func TestLoadCachedRecoversFromCorruptCache(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "pt.txt")
	writeFile(t, source, "casa\n")
	writeFile(t, CachePath(source, dir), "not gzip")

	dict, info, err := LoadCached(source, dir)
	require.NoError(t, err)
	require.False(t, info.Hit)
	require.Error(t, info.Err)
	require.Equal(t, 1, dict.Len())
}

func TestLoadCachedMissingSource(t *testing.T) {
	dir := t.TempDir()
	_, _, err := LoadCached(filepath.Join(dir, "nope.txt"), dir)
	require.True(t, errors.Is(err, model.ErrNotFound))
}

func TestCleanMergesHelperBehaviours(t *testing.T) {
	raw := strings.Join([]string{
		"Coração, substantivo masculino",
		"pac\u0327oca,substantivo",
		"pé,substantivo",
		"coração",
		"",
	}, "\n")
	words, err := Clean(strings.NewReader(raw), CleanOptions{MinLength: 4, Lang: "pt", FirstField: true, Lower: true})
	require.NoError(t, err)
	require.Equal(t, []string{"coração", "paçoca"}, words)
}

func TestCleanSplitsLetterRuns(t *testing.T) {
	words, err := Clean(strings.NewReader("casa gato casa\n(bola) 123 ab\n"), CleanOptions{MinLength: 3})
	require.NoError(t, err)
	require.Equal(t, []string{"bola", "casa", "gato"}, words)
}

func TestWriteThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.txt")
	require.NoError(t, Write(path, []string{"casa", "gato"}))
	dict, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 2, dict.Len())
}
