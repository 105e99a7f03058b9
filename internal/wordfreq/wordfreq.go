// Package wordfreq builds Portuguese dictionaries from the wordfreq dataset
// published on PyPI as a Python wheel.
package wordfreq

import (
	"archive/zip"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/verte-zerg/soletra/internal/model"
	"github.com/verte-zerg/soletra/internal/msgpack"
	"github.com/verte-zerg/soletra/internal/wordlist"
)

// DefaultIndexURL is the PyPI JSON endpoint describing wordfreq releases.
const DefaultIndexURL = "https://pypi.org/pypi/wordfreq/json"

// Fetcher downloads wordfreq wheels into a cache directory.
type Fetcher struct {
	IndexURL string
	CacheDir string
	Client   *http.Client
}

// Wheel describes a cached wordfreq wheel.
type Wheel struct {
	Version string
	Path    string
	Cached  bool
}

type release struct {
	Info struct {
		Version string `json:"version"`
	} `json:"info"`
	URLs []releaseFile `json:"urls"`
}

type releaseFile struct {
	URL         string `json:"url"`
	Filename    string `json:"filename"`
	PackageType string `json:"packagetype"`
}

// Latest returns the newest wheel, downloading it unless already cached.
func (f Fetcher) Latest(ctx context.Context) (Wheel, error) {
	if f.CacheDir == "" {
		return Wheel{}, fmt.Errorf("cache directory is required")
	}
	if err := os.MkdirAll(f.CacheDir, 0o755); err != nil {
		return Wheel{}, fmt.Errorf("failed to create cache dir: %w", err)
	}
	index := f.IndexURL
	if index == "" {
		index = DefaultIndexURL
	}

	var rel release
	if err := f.get(ctx, index, func(body io.Reader) error {
		return json.NewDecoder(body).Decode(&rel)
	}); err != nil {
		return Wheel{}, fmt.Errorf("failed to read release index: %w", err)
	}
	if rel.Info.Version == "" {
		return Wheel{}, fmt.Errorf("release index has no version")
	}
	file, ok := pickWheel(rel.URLs)
	if !ok {
		return Wheel{}, fmt.Errorf("no wheel published for wordfreq %s", rel.Info.Version)
	}

	dest := filepath.Join(f.CacheDir, filepath.Base(file.Filename))
	if _, err := os.Stat(dest); err == nil {
		return Wheel{Version: rel.Info.Version, Path: dest, Cached: true}, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return Wheel{}, fmt.Errorf("failed to stat cached wheel: %w", err)
	}

	tmpFile, err := os.CreateTemp(f.CacheDir, "wordfreq-*.whl")
	if err != nil {
		return Wheel{}, fmt.Errorf("failed to create temp wheel: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()
	if err := f.get(ctx, file.URL, func(body io.Reader) error {
		_, err := io.Copy(tmpFile, body)
		return err
	}); err != nil {
		return Wheel{}, fmt.Errorf("failed to download wheel: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return Wheel{}, fmt.Errorf("failed to close temp wheel: %w", err)
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		return Wheel{}, fmt.Errorf("failed to move wheel into cache: %w", err)
	}
	return Wheel{Version: rel.Info.Version, Path: dest}, nil
}

func (f Fetcher) get(ctx context.Context, url string, read func(io.Reader) error) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	client := f.Client
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			_ = cerr
		}
	}()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s from %s", resp.Status, url)
	}
	return read(resp.Body)
}

// pickWheel prefers the pure-Python wheel.
func pickWheel(files []releaseFile) (releaseFile, bool) {
	var fallback *releaseFile
	for i, file := range files {
		if file.PackageType != "bdist_wheel" {
			continue
		}
		if strings.HasSuffix(file.Filename, "py3-none-any.whl") {
			return file, true
		}
		if fallback == nil {
			fallback = &files[i]
		}
	}
	if fallback == nil {
		return releaseFile{}, false
	}
	return *fallback, true
}

// Options selects and filters the extracted list.
type Options struct {
	// Lang is the wordfreq language code, "pt" by default.
	Lang string
	// List is "large" or "small"; "large" by default.
	List string
	// Limit caps the number of words; zero keeps all of them.
	Limit     int
	MinLength int
}

type entry struct {
	word  string
	score float64
}

// Extract returns the words of one wordfreq list, most frequent first.
// Words failing the language filter or shorter than MinLength are dropped.
func Extract(wheelPath string, opts Options) ([]string, error) {
	if opts.Lang == "" {
		opts.Lang = "pt"
	}
	if opts.List == "" {
		opts.List = "large"
	}
	entries, err := readList(wheelPath, strings.ToLower(opts.Lang), strings.ToLower(opts.List))
	if err != nil {
		return nil, err
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].score > entries[j].score
	})

	keep := wordlist.FilterForLang(opts.Lang)
	seen := make(map[string]struct{}, len(entries))
	words := make([]string, 0, len(entries))
	for _, e := range entries {
		word := norm.NFC.String(e.word)
		if utf8.RuneCountInString(word) < opts.MinLength || !keep(word) {
			continue
		}
		if _, ok := seen[word]; ok {
			continue
		}
		seen[word] = struct{}{}
		words = append(words, word)
		if opts.Limit > 0 && len(words) >= opts.Limit {
			break
		}
	}
	if len(words) == 0 {
		return nil, fmt.Errorf("no usable words in %s_%s: %w", opts.List, opts.Lang, model.ErrNotFound)
	}
	return words, nil
}

func readList(wheelPath, lang, list string) ([]entry, error) {
	reader, err := zip.OpenReader(wheelPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open wheel: %w", err)
	}
	defer func() {
		if cerr := reader.Close(); cerr != nil {
			_ = cerr
		}
	}()

	base := "wordfreq/data/" + list + "_" + lang + ".msgpack"
	for _, file := range reader.File {
		if file.Name != base && file.Name != base+".gz" {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", file.Name, err)
		}
		defer func() {
			if cerr := rc.Close(); cerr != nil {
				_ = cerr
			}
		}()
		var r io.Reader = rc
		if strings.HasSuffix(file.Name, ".gz") {
			gz, err := gzip.NewReader(rc)
			if err != nil {
				return nil, fmt.Errorf("failed to read %s: %w", file.Name, err)
			}
			defer func() {
				if cerr := gz.Close(); cerr != nil {
					_ = cerr
				}
			}()
			r = gz
		}
		payload, err := msgpack.Decode(r)
		if err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", file.Name, err)
		}
		return entriesFrom(payload)
	}
	return nil, fmt.Errorf("wheel has no %s list for %q: %w", list, lang, model.ErrNotFound)
}

// entriesFrom reads the two layouts wordfreq has shipped: a header map
// followed by one word bin per centibel step, or [score, words] pairs.
func entriesFrom(payload any) ([]entry, error) {
	bins, ok := payload.([]any)
	if !ok {
		return nil, fmt.Errorf("unexpected wordfreq root %T: %w", payload, model.ErrCorruptData)
	}
	if len(bins) > 0 {
		if _, isHeader := bins[0].(map[any]any); isHeader {
			bins = bins[1:]
		}
	}
	var entries []entry
	for i, bin := range bins {
		score := float64(-i)
		words, ok := stringsOf(bin)
		if !ok {
			pair, isPair := bin.([]any)
			if !isPair || len(pair) != 2 {
				return nil, fmt.Errorf("unexpected wordfreq bin %T: %w", bin, model.ErrCorruptData)
			}
			if score, ok = number(pair[0]); !ok {
				return nil, fmt.Errorf("unexpected wordfreq score %T: %w", pair[0], model.ErrCorruptData)
			}
			if words, ok = stringsOf(pair[1]); !ok {
				return nil, fmt.Errorf("unexpected wordfreq words %T: %w", pair[1], model.ErrCorruptData)
			}
		}
		for _, w := range words {
			entries = append(entries, entry{word: w, score: score})
		}
	}
	return entries, nil
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}

// stringsOf accepts an array made only of strings. An empty array is valid.
func stringsOf(v any) ([]string, bool) {
	items, ok := v.([]any)
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		switch s := item.(type) {
		case string:
			out = append(out, s)
		case []byte:
			out = append(out, string(s))
		default:
			return nil, false
		}
	}
	return out, true
}

// WriteAttribution stores the CC BY-SA notice and the wheel license next to
// a generated word list.
func WriteAttribution(wheelPath, outDir string) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}
	notice := strings.Join([]string{
		"pt.txt is generated from the wordfreq dataset: https://github.com/rspeer/wordfreq",
		"Data license: CC BY-SA 4.0, https://creativecommons.org/licenses/by-sa/4.0/",
		"Changes: filtered to Portuguese letters and a minimum word length.",
		"",
	}, "\n")
	if err := os.WriteFile(filepath.Join(outDir, "ATTRIBUTION.txt"), []byte(notice), 0o644); err != nil {
		return fmt.Errorf("failed to write attribution: %w", err)
	}
	license, err := wheelLicense(wheelPath)
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(outDir, "LICENSE.txt"), license, 0o644); err != nil {
		return fmt.Errorf("failed to write license: %w", err)
	}
	return nil
}

func wheelLicense(wheelPath string) ([]byte, error) {
	reader, err := zip.OpenReader(wheelPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open wheel for license: %w", err)
	}
	defer func() {
		if cerr := reader.Close(); cerr != nil {
			_ = cerr
		}
	}()
	for _, file := range reader.File {
		if !strings.Contains(strings.ToLower(file.Name), "license") {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open license: %w", err)
		}
		data, err := io.ReadAll(rc)
		_ = rc.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read license: %w", err)
		}
		return data, nil
	}
	return nil, fmt.Errorf("license file not found in wheel")
}
