// Package stats contains history statistics and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/verte-zerg/soletra/internal/model"
)

const sparkChars = " .:-=+*#%@"

var titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 || len(values) == 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal := values[0]
	maxVal := values[0]
	for _, v := range values[1:] {
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		idx = max(0, min(idx, len(sparkChars)-1))
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// Totals summarizes a history.
type Totals struct {
	Words       int
	Accepted    int
	Rejected    int
	Acceptances int
}

// Tally counts records by outcome.
func Tally(records []model.Record) Totals {
	var t Totals
	for _, rec := range records {
		t.Words++
		t.Acceptances += rec.Frequency
		if rec.Accepted {
			t.Accepted++
		} else {
			t.Rejected++
		}
	}
	return t
}

// RenderSummary prints history and session totals.
func RenderSummary(w io.Writer, r Report) error {
	if len(r.Records) == 0 && len(r.Sessions) == 0 {
		_, err := fmt.Fprintln(w, "No history yet.")
		return err
	}
	t := Tally(r.Records)
	completed := 0
	for _, s := range r.Sessions {
		if s.Completed {
			completed++
		}
	}
	lines := []string{
		titleStyle.Render("Summary"),
		fmt.Sprintf("Known words: %s", humanize.Comma(int64(t.Words))),
		fmt.Sprintf("Accepted: %s", humanize.Comma(int64(t.Accepted))),
		fmt.Sprintf("Rejected: %s", humanize.Comma(int64(t.Rejected))),
		fmt.Sprintf("Total acceptances: %s", humanize.Comma(int64(t.Acceptances))),
	}
	if len(r.Sessions) > 0 {
		last := r.Sessions[len(r.Sessions)-1]
		lines = append(lines,
			fmt.Sprintf("Sessions: %d (%d completed, %.0f%%)", len(r.Sessions), completed,
				100*float64(completed)/float64(len(r.Sessions))),
			fmt.Sprintf("Last session: %s", humanize.Time(last.EndedAt)),
		)
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// RenderSessions prints per-session sparklines and the most recent sessions.
func RenderSessions(w io.Writer, sessions []model.SessionSummary, window, recent int) error {
	if len(sessions) == 0 {
		return nil
	}
	accepted := make([]float64, len(sessions))
	progress := make([]float64, len(sessions))
	for i, s := range sessions {
		accepted[i] = float64(s.Accepted)
		if s.Total > 0 {
			progress[i] = float64(s.Found) / float64(s.Total) * 100
		}
	}
	if _, err := fmt.Fprintln(w, titleStyle.Render("Sessions")); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Accepted  |%s|\n", Sparkline(MovingAverage(accepted, window))); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Progress  |%s|\n", Sparkline(MovingAverage(progress, window))); err != nil {
		return err
	}

	if recent <= 0 || recent > len(sessions) {
		recent = len(sessions)
	}
	rows := make([][]string, 0, recent)
	for i := len(sessions) - 1; i >= len(sessions)-recent; i-- {
		s := sessions[i]
		found := fmt.Sprintf("%d", s.Found)
		if s.Total > 0 {
			found = fmt.Sprintf("%d/%d", s.Found, s.Total)
		}
		rows = append(rows, []string{
			humanize.Time(s.EndedAt),
			s.Letters,
			s.Policy.String(),
			fmt.Sprintf("%d", s.Attempts),
			fmt.Sprintf("%d", s.Accepted),
			found,
			yesNo(s.Persisted),
		})
	}
	headers := []string{"When", "Letters", "Policy", "Attempts", "Accepted", "Found", "Saved"}
	rightAlign := map[int]bool{3: true, 4: true, 5: true}
	for _, line := range formatTable(headers, rows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
