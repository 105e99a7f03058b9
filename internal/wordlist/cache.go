package wordlist

import (
	"bytes"
	"compress/gzip"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/verte-zerg/soletra/internal/model"
	"github.com/verte-zerg/soletra/internal/msgpack"
)

const cacheVersion = 1

// CacheInfo describes how a cached load was served.
type CacheInfo struct {
	Path string
	Hit  bool
	// Err is a non-fatal cache read or write failure.
	Err error
}

// CachePath returns the cache file used for a dictionary source.
func CachePath(source, cacheDir string) string {
	return filepath.Join(cacheDir, filepath.Base(source)+".msgpack.gz")
}

// LoadCached loads a dictionary through a binary cache keyed by the SHA-256 of
// the source file. A stale, missing or unreadable cache is rebuilt from the
// source; only a missing source is fatal.
func LoadCached(source, cacheDir string) (*Dictionary, CacheInfo, error) {
	info := CacheInfo{Path: CachePath(source, cacheDir)}
	data, err := os.ReadFile(source)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, info, fmt.Errorf("dictionary %s: %w", source, model.ErrNotFound)
		}
		return nil, info, fmt.Errorf("failed to read dictionary: %w", err)
	}
	sum := sha256.Sum256(data)
	digest := hex.EncodeToString(sum[:])

	if words, err := readCache(info.Path, digest); err == nil {
		info.Hit = true
		return NewDictionary(words...), info, nil
	} else if !errors.Is(err, os.ErrNotExist) && !errors.Is(err, errStaleCache) {
		info.Err = err
	}

	dict, err := Read(bytes.NewReader(data))
	if err != nil {
		return nil, info, err
	}
	if err := writeCache(info.Path, digest, dict.Words()); err != nil {
		info.Err = err
	}
	return dict, info, nil
}

var errStaleCache = errors.New("stale dictionary cache")

func readCache(path, digest string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = file.Close()
	}()

	gz, err := gzip.NewReader(file)
	if err != nil {
		return nil, fmt.Errorf("failed to open dictionary cache: %w", err)
	}
	defer func() {
		_ = gz.Close()
	}()

	payload, err := msgpack.Decode(gz)
	if err != nil {
		return nil, fmt.Errorf("failed to decode dictionary cache: %w", err)
	}
	root, ok := payload.(map[any]any)
	if !ok {
		return nil, fmt.Errorf("unexpected dictionary cache root %T", payload)
	}
	if v, _ := root["version"].(int64); v != cacheVersion {
		return nil, errStaleCache
	}
	if src, _ := root["source"].(string); src != digest {
		return nil, errStaleCache
	}
	items, ok := root["words"].([]any)
	if !ok {
		return nil, fmt.Errorf("dictionary cache has no word array")
	}
	words := make([]string, 0, len(items))
	for _, item := range items {
		w, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("dictionary cache entry has type %T", item)
		}
		words = append(words, w)
	}
	return words, nil
}

func writeCache(path, digest string, words []string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create cache dir: %w", err)
	}
	tmpFile, err := os.CreateTemp(dir, "dictionary-*.msgpack.gz")
	if err != nil {
		return fmt.Errorf("failed to create temp cache: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	gz := gzip.NewWriter(tmpFile)
	enc := msgpack.NewEncoder(gz)
	if err := enc.Encode(map[string]any{
		"version": cacheVersion,
		"source":  digest,
		"words":   words,
	}); err != nil {
		return fmt.Errorf("failed to encode dictionary cache: %w", err)
	}
	if err := enc.Flush(); err != nil {
		return fmt.Errorf("failed to flush dictionary cache: %w", err)
	}
	if err := gz.Close(); err != nil {
		return fmt.Errorf("failed to compress dictionary cache: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp cache: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to move cache into place: %w", err)
	}
	return nil
}
