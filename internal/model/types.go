// Package model defines shared data structures.
package model

import (
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// Word is a dictionary word in both spellings.
type Word struct {
	// Text is the original spelling, used for submission.
	Text string
	// Key is the normalized spelling, used for matching and history lookups.
	Key    string
	Length int
}

// NewWord builds a Word from its original spelling and a normalizer.
func NewWord(text string, norm func(string) string) Word {
	return Word{
		Text:   text,
		Key:    norm(text),
		Length: utf8.RuneCountInString(text),
	}
}

// LetterSet holds the letters of one puzzle instance.
type LetterSet struct {
	central  rune
	alphabet []rune
	members  map[rune]struct{}
}

// NewLetterSet normalizes the central and outer letters. The central letter
// is always part of the usable alphabet. Non-letter runes in outer are ignored
// so "a, b, c" and "abc" describe the same puzzle.
func NewLetterSet(central, outer string, norm func(string) string) (LetterSet, error) {
	c := []rune(strings.TrimSpace(norm(central)))
	if len(c) != 1 || !unicode.IsLetter(c[0]) {
		return LetterSet{}, fmt.Errorf("central letter %q must be a single letter: %w", central, ErrInvalidLetters)
	}
	ls := LetterSet{central: c[0], members: map[rune]struct{}{}}
	for _, r := range norm(outer) {
		if !unicode.IsLetter(r) {
			continue
		}
		ls.add(r)
	}
	ls.add(c[0])
	return ls, nil
}

func (ls *LetterSet) add(r rune) {
	if _, ok := ls.members[r]; ok {
		return
	}
	ls.members[r] = struct{}{}
	ls.alphabet = append(ls.alphabet, r)
}

// Central returns the normalized required letter.
func (ls LetterSet) Central() rune {
	return ls.central
}

// Alphabet returns the normalized usable letters in first-seen order.
func (ls LetterSet) Alphabet() []rune {
	out := make([]rune, len(ls.alphabet))
	copy(out, ls.alphabet)
	return out
}

// Size returns the number of distinct usable letters.
func (ls LetterSet) Size() int {
	return len(ls.alphabet)
}

// Has reports whether r is a usable letter.
func (ls LetterSet) Has(r rune) bool {
	_, ok := ls.members[r]
	return ok
}

// String renders the alphabet with the central letter in brackets.
func (ls LetterSet) String() string {
	var b strings.Builder
	for _, r := range ls.alphabet {
		if r == ls.central {
			b.WriteString("[" + string(r) + "]")
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// CandidateList is the filtered word list, complete words first.
type CandidateList struct {
	Complete []Word
	Other    []Word
}

// All returns complete words followed by the other words.
func (c CandidateList) All() []Word {
	out := make([]Word, 0, c.Len())
	out = append(out, c.Complete...)
	return append(out, c.Other...)
}

// Len returns the total number of candidates.
func (c CandidateList) Len() int {
	return len(c.Complete) + len(c.Other)
}

// Record stores outcome statistics for one word.
type Record struct {
	Word      string
	Key       string
	Accepted  bool
	Length    int
	Frequency int
}

// Verdict is the outcome of a single submission.
type Verdict int

const (
	// VerdictUnknown means the submitter could not tell; the next state query decides.
	VerdictUnknown Verdict = iota
	VerdictAccepted
	VerdictRejected
)

// String returns a lowercase name for the verdict.
func (v Verdict) String() string {
	switch v {
	case VerdictAccepted:
		return "accepted"
	case VerdictRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// PuzzleState is a read-only snapshot of the game.
type PuzzleState struct {
	Central string
	Letters string
	Found   int
	Total   int
	// FoundWords lists the accepted words as the game displays them. Optional.
	FoundWords []string
	// RemainingByLength maps word length to the number of words still missing. Optional.
	RemainingByLength map[int]int
}

// Complete reports whether every required word has been found.
func (s PuzzleState) Complete() bool {
	return s.Total > 0 && s.Found >= s.Total
}

// SessionSummary describes a finished session for the session log.
type SessionSummary struct {
	ID        string
	StartedAt time.Time
	EndedAt   time.Time
	Central   string
	Letters   string
	Policy    Policy
	Attempts  int
	Submitted int
	Accepted  int
	Rejected  int
	Found     int
	Total     int
	Completed bool
	Persisted bool
}
