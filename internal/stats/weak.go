package stats

import (
	"fmt"
	"io"
	"sort"

	"github.com/verte-zerg/soletra/internal/model"
)

// LetterStat counts how words containing a letter fared.
type LetterStat struct {
	Letter   rune
	Accepted int
	Rejected int
}

// Rate returns the share of accepted words.
func (s LetterStat) Rate() float64 {
	total := s.Accepted + s.Rejected
	if total == 0 {
		return 1.0
	}
	return float64(s.Accepted) / float64(total)
}

// WeakLetters returns the top letters whose words are rejected most often,
// lowest acceptance rate first.
func WeakLetters(records []model.Record, top int) []LetterStat {
	byLetter := map[rune]*LetterStat{}
	for _, rec := range records {
		seen := map[rune]struct{}{}
		for _, r := range rec.Key {
			if _, ok := seen[r]; ok {
				continue
			}
			seen[r] = struct{}{}
			st, ok := byLetter[r]
			if !ok {
				st = &LetterStat{Letter: r}
				byLetter[r] = st
			}
			if rec.Accepted {
				st.Accepted++
			} else {
				st.Rejected++
			}
		}
	}
	stats := make([]LetterStat, 0, len(byLetter))
	for _, st := range byLetter {
		stats = append(stats, *st)
	}
	sort.Slice(stats, func(i, j int) bool {
		ri, rj := stats[i].Rate(), stats[j].Rate()
		if ri == rj {
			return stats[i].Letter < stats[j].Letter
		}
		return ri < rj
	})
	if top > 0 && top < len(stats) {
		stats = stats[:top]
	}
	return stats
}

// RenderWeakLetters prints the letters with the lowest acceptance rate.
func RenderWeakLetters(w io.Writer, records []model.Record, top int) error {
	stats := WeakLetters(records, top)
	if len(stats) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(w, titleStyle.Render("Weak Letters")); err != nil {
		return err
	}
	rows := make([][]string, 0, len(stats))
	for _, st := range stats {
		rows = append(rows, []string{
			string(st.Letter),
			fmt.Sprintf("%.0f%%", st.Rate()*100),
			fmt.Sprintf("%d", st.Accepted),
			fmt.Sprintf("%d", st.Rejected),
		})
	}
	for _, line := range formatTable([]string{"Letter", "Rate", "Accepted", "Rejected"}, rows, map[int]bool{1: true, 2: true, 3: true}) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}
