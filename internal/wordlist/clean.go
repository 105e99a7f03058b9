package wordlist

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// CleanOptions controls how raw text is turned into a word list.
type CleanOptions struct {
	// MinLength drops words with fewer runes.
	MinLength int
	// Lang selects the language filter; empty keeps any letter run.
	Lang string
	// FirstField keeps only the text before the first comma of each line,
	// for CSV exports whose first column is the word.
	FirstField bool
	// Lower lowercases every word.
	Lower bool
}

// Clean reads raw text and returns the sorted unique words it contains. Each
// line is NFC-composed and split into runs of letters, so decomposed accents
// and surrounding punctuation do not produce bogus entries.
func Clean(r io.Reader, opts CleanOptions) ([]string, error) {
	keep := filterLetters
	if opts.Lang != "" {
		keep = FilterForLang(opts.Lang)
	}
	seen := map[string]struct{}{}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := norm.NFC.String(scanner.Text())
		if opts.FirstField {
			line, _, _ = strings.Cut(line, ",")
		}
		if opts.Lower {
			line = strings.ToLower(line)
		}
		for _, word := range strings.FieldsFunc(line, func(r rune) bool { return !unicode.IsLetter(r) }) {
			if utf8.RuneCountInString(word) < opts.MinLength {
				continue
			}
			if !keep(word) {
				continue
			}
			seen[word] = struct{}{}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read word source: %w", err)
	}
	out := make([]string, 0, len(seen))
	for w := range seen {
		out = append(out, w)
	}
	sort.Strings(out)
	return out, nil
}

// Write stores words one per line, replacing path atomically.
func Write(path string, words []string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create word list dir: %w", err)
	}
	tmpFile, err := os.CreateTemp(filepath.Dir(path), "wordlist-*.txt")
	if err != nil {
		return fmt.Errorf("failed to create temp word list: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	writer := bufio.NewWriter(tmpFile)
	for _, word := range words {
		if _, err := fmt.Fprintln(writer, word); err != nil {
			return fmt.Errorf("failed to write word list: %w", err)
		}
	}
	if err := writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush word list: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close word list: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to write word list: %w", err)
	}
	return nil
}
