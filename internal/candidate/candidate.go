// Package candidate selects the dictionary words playable with a puzzle's letters.
package candidate

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/verte-zerg/soletra/internal/model"
	"github.com/verte-zerg/soletra/internal/normalize"
	"github.com/verte-zerg/soletra/internal/wordlist"
)

// DefaultMinLength is the shortest word the puzzle accepts.
const DefaultMinLength = 4

// Options tunes the filter.
type Options struct {
	// MinLength overrides DefaultMinLength when positive.
	MinLength int
}

// Find returns the words of dict that contain the central letter and use only
// letters of the usable alphabet. Words whose normalized key is in exclude are
// skipped. Complete words, which use every usable letter, come first; each
// group is ordered by length, then normalized key, then spelling.
//
// An empty result is returned together with model.ErrNoCandidates.
func Find(letters model.LetterSet, dict *wordlist.Dictionary, exclude map[string]struct{}, opts Options) (model.CandidateList, error) {
	if dict == nil {
		return model.CandidateList{}, fmt.Errorf("no dictionary loaded: %w", model.ErrNotFound)
	}
	if letters.Size() == 0 {
		return model.CandidateList{}, fmt.Errorf("empty letter set: %w", model.ErrInvalidLetters)
	}
	minLength := opts.MinLength
	if minLength <= 0 {
		minLength = DefaultMinLength
	}
	central := string(letters.Central())

	var result model.CandidateList
	for _, text := range dict.Words() {
		if utf8.RuneCountInString(text) < minLength {
			continue
		}
		key := normalize.Word(text)
		if _, skip := exclude[key]; skip {
			continue
		}
		if !strings.Contains(key, central) {
			continue
		}
		distinct, ok := usableLetters(key, letters)
		if !ok {
			continue
		}
		word := model.Word{Text: text, Key: key, Length: utf8.RuneCountInString(text)}
		if distinct == letters.Size() {
			result.Complete = append(result.Complete, word)
		} else {
			result.Other = append(result.Other, word)
		}
	}
	sortWords(result.Complete)
	sortWords(result.Other)
	if result.Len() == 0 {
		return result, model.ErrNoCandidates
	}
	return result, nil
}

// usableLetters reports whether every rune of key is in the alphabet and how
// many distinct letters key uses.
func usableLetters(key string, letters model.LetterSet) (int, bool) {
	seen := make(map[rune]struct{}, letters.Size())
	for _, r := range key {
		if !letters.Has(r) {
			return 0, false
		}
		seen[r] = struct{}{}
	}
	return len(seen), true
}

func sortWords(words []model.Word) {
	sort.Slice(words, func(i, j int) bool {
		a, b := words[i], words[j]
		if a.Length != b.Length {
			return a.Length < b.Length
		}
		if a.Key != b.Key {
			return a.Key < b.Key
		}
		return a.Text < b.Text
	})
}

// ExcludeSet builds an exclude set from words in any spelling.
func ExcludeSet(words ...[]string) map[string]struct{} {
	out := map[string]struct{}{}
	for _, group := range words {
		for _, w := range group {
			if w = strings.TrimSpace(w); w != "" {
				out[normalize.Word(w)] = struct{}{}
			}
		}
	}
	return out
}

// Letters builds a normalized letter set for a puzzle.
func Letters(central, outer string) (model.LetterSet, error) {
	return model.NewLetterSet(central, outer, normalize.Word)
}
