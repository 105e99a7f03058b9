package wordfreq

import (
	"archive/zip"
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/soletra/internal/model"
	"github.com/verte-zerg/soletra/internal/msgpack"
)

func encode(t *testing.T, v any, gz bool) []byte {
	t.Helper()
	var buf bytes.Buffer
	if !gz {
		enc := msgpack.NewEncoder(&buf)
		require.NoError(t, enc.Encode(v))
		require.NoError(t, enc.Flush())
		return buf.Bytes()
	}
	zw := gzip.NewWriter(&buf)
	enc := msgpack.NewEncoder(zw)
	require.NoError(t, enc.Encode(v))
	require.NoError(t, enc.Flush())
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func writeWheel(t *testing.T, dir string, files map[string][]byte) string {
	t.Helper()
	path := filepath.Join(dir, "wordfreq-3.1.1-py3-none-any.whl")
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	for name, data := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
	return path
}

func TestExtractCentibelBins(t *testing.T) {
	data := encode(t, []any{
		map[string]any{"format": "cB", "version": 1},
		[]string{"casa", "de"},
		[]string{},
		[]string{"açúcar", "casa", "e-mail", "ação"},
	}, true)
	wheel := writeWheel(t, t.TempDir(), map[string][]byte{
		"wordfreq/data/large_pt.msgpack.gz": data,
	})

	words, err := Extract(wheel, Options{MinLength: 4})
	require.NoError(t, err)
	require.Equal(t, []string{"casa", "açúcar", "ação"}, words)

	words, err = Extract(wheel, Options{MinLength: 4, Limit: 2})
	require.NoError(t, err)
	require.Equal(t, []string{"casa", "açúcar"}, words)
}

func TestExtractScoredPairs(t *testing.T) {
	data := encode(t, []any{
		[]any{4.5, []string{"gato"}},
		[]any{5.0, []string{"pato", "rato"}},
	}, false)
	wheel := writeWheel(t, t.TempDir(), map[string][]byte{
		"wordfreq/data/small_pt.msgpack": data,
	})

	words, err := Extract(wheel, Options{List: "small"})
	require.NoError(t, err)
	require.Equal(t, []string{"pato", "rato", "gato"}, words)
}

func TestExtractMissingList(t *testing.T) {
	wheel := writeWheel(t, t.TempDir(), map[string][]byte{
		"wordfreq/data/large_en.msgpack": encode(t, []any{[]string{"house"}}, false),
	})
	_, err := Extract(wheel, Options{Lang: "pt"})
	require.Error(t, err)
	require.True(t, errors.Is(err, model.ErrNotFound))
}

func TestExtractCorruptBin(t *testing.T) {
	wheel := writeWheel(t, t.TempDir(), map[string][]byte{
		"wordfreq/data/large_pt.msgpack": encode(t, []any{int64(7)}, false),
	})
	_, err := Extract(wheel, Options{})
	require.True(t, errors.Is(err, model.ErrCorruptData))
}

func TestFetcherDownloadsThenUsesCache(t *testing.T) {
	wheelBytes, err := os.ReadFile(writeWheel(t, t.TempDir(), map[string][]byte{
		"wordfreq-3.1.1.dist-info/LICENSE": []byte("Apache License"),
	}))
	require.NoError(t, err)

	downloads := 0
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()
	mux.HandleFunc("/index", func(w http.ResponseWriter, _ *http.Request) {
		var rel release
		rel.Info.Version = "3.1.1"
		rel.URLs = []releaseFile{
			{URL: srv.URL + "/sdist", Filename: "wordfreq-3.1.1.tar.gz", PackageType: "sdist"},
			{URL: srv.URL + "/wheel", Filename: "wordfreq-3.1.1-py3-none-any.whl", PackageType: "bdist_wheel"},
		}
		_ = json.NewEncoder(w).Encode(rel)
	})
	mux.HandleFunc("/wheel", func(w http.ResponseWriter, _ *http.Request) {
		downloads++
		_, _ = w.Write(wheelBytes)
	})

	f := Fetcher{IndexURL: srv.URL + "/index", CacheDir: t.TempDir(), Client: srv.Client()}
	wheel, err := f.Latest(context.Background())
	require.NoError(t, err)
	require.False(t, wheel.Cached)
	require.Equal(t, "3.1.1", wheel.Version)

	again, err := f.Latest(context.Background())
	require.NoError(t, err)
	require.True(t, again.Cached)
	require.Equal(t, wheel.Path, again.Path)
	require.Equal(t, 1, downloads)

	out := t.TempDir()
	require.NoError(t, WriteAttribution(wheel.Path, out))
	license, err := os.ReadFile(filepath.Join(out, "LICENSE.txt"))
	require.NoError(t, err)
	require.Equal(t, "Apache License", string(license))
	require.FileExists(t, filepath.Join(out, "ATTRIBUTION.txt"))
}

func TestFetcherBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()
	f := Fetcher{IndexURL: srv.URL, CacheDir: t.TempDir(), Client: srv.Client()}
	_, err := f.Latest(context.Background())
	require.Error(t, err)
}

func TestPickWheelPrefersPurePython(t *testing.T) {
	file, ok := pickWheel([]releaseFile{
		{Filename: "wordfreq-1-cp311-linux.whl", PackageType: "bdist_wheel"},
		{Filename: "wordfreq-1-py3-none-any.whl", PackageType: "bdist_wheel"},
	})
	require.True(t, ok)
	require.Equal(t, "wordfreq-1-py3-none-any.whl", file.Filename)

	_, ok = pickWheel([]releaseFile{{Filename: "wordfreq-1.tar.gz", PackageType: "sdist"}})
	require.False(t, ok)
}
