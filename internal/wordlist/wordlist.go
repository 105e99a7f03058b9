// Package wordlist loads and caches puzzle dictionaries.
package wordlist

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/verte-zerg/soletra/internal/model"
)

// Dictionary is a set of words in their original spelling.
type Dictionary struct {
	words map[string]struct{}
}

// NewDictionary builds a dictionary from words, collapsing duplicates.
func NewDictionary(words ...string) *Dictionary {
	d := &Dictionary{words: make(map[string]struct{}, len(words))}
	for _, w := range words {
		d.Add(w)
	}
	return d
}

// Add inserts a word after trimming and NFC composition. Blank words are ignored.
func (d *Dictionary) Add(word string) {
	word = norm.NFC.String(strings.TrimSpace(word))
	if word == "" {
		return
	}
	d.words[word] = struct{}{}
}

// Contains reports whether the exact spelling is present.
func (d *Dictionary) Contains(word string) bool {
	_, ok := d.words[word]
	return ok
}

// Len returns the number of unique words.
func (d *Dictionary) Len() int {
	if d == nil {
		return 0
	}
	return len(d.words)
}

// Words returns the words sorted lexicographically.
func (d *Dictionary) Words() []string {
	out := make([]string, 0, len(d.words))
	for w := range d.words {
		out = append(out, w)
	}
	sort.Strings(out)
	return out
}

// Load reads one word per line from the provided file path. A missing file
// yields model.ErrNotFound; an existing empty file yields an empty dictionary.
func Load(path string) (*Dictionary, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("dictionary %s: %w", path, model.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to open dictionary: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only word list.
			_ = cerr
		}
	}()
	return Read(file)
}

// Read parses a newline-delimited word list.
func Read(r io.Reader) (*Dictionary, error) {
	d := NewDictionary()
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		d.Add(scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read dictionary: %w", err)
	}
	return d, nil
}
