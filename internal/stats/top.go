package stats

import (
	"fmt"
	"io"
	"sort"

	"github.com/dustin/go-humanize"

	"github.com/verte-zerg/soletra/internal/model"
)

// TopWords returns the n accepted words with the highest frequency.
func TopWords(records []model.Record, n int) []model.Record {
	if n <= 0 || len(records) == 0 {
		return nil
	}
	items := make([]model.Record, 0, len(records))
	for _, rec := range records {
		if rec.Accepted {
			items = append(items, rec)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Frequency == items[j].Frequency {
			return items[i].Key < items[j].Key
		}
		return items[i].Frequency > items[j].Frequency
	})
	if n > len(items) {
		n = len(items)
	}
	return items[:n]
}

// RenderTopWords prints the most frequently accepted words.
func RenderTopWords(w io.Writer, records []model.Record, n int) error {
	top := TopWords(records, n)
	if len(top) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(w, titleStyle.Render("Top Words")); err != nil {
		return err
	}
	rows := make([][]string, 0, len(top))
	for _, rec := range top {
		rows = append(rows, []string{rec.Word, fmt.Sprintf("%d", rec.Length), humanize.Comma(int64(rec.Frequency))})
	}
	for _, line := range formatTable([]string{"Word", "Length", "Accepted"}, rows, map[int]bool{1: true, 2: true}) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}
