package stats

import (
	"context"
	"fmt"
	"io"

	"github.com/verte-zerg/soletra/internal/history"
	"github.com/verte-zerg/soletra/internal/model"
)

// HistorySource loads the history to report on.
type HistorySource interface {
	Load(ctx context.Context) (*history.History, error)
}

// SessionSource lists logged sessions, oldest first.
type SessionSource interface {
	ListSessions(ctx context.Context, limit int) ([]model.SessionSummary, error)
}

// Report contains precomputed data for stats rendering.
type Report struct {
	Records  []model.Record
	Sessions []model.SessionSummary
}

// BuildReport loads and prepares data for stats rendering. A nil session
// source yields a report without sessions.
func BuildReport(ctx context.Context, hs HistorySource, ss SessionSource, last int) (Report, error) {
	h, err := hs.Load(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("failed to load history: %w", err)
	}
	report := Report{Records: h.Records()}
	if ss == nil {
		return report, nil
	}
	sessions, err := ss.ListSessions(ctx, last)
	if err != nil {
		return Report{}, fmt.Errorf("failed to list sessions: %w", err)
	}
	report.Sessions = sessions
	return report, nil
}

// Options tunes Render.
type Options struct {
	Top    int
	Window int
	Recent int
}

// Render prints every section of the report.
func Render(w io.Writer, r Report, opts Options) error {
	if err := RenderSummary(w, r); err != nil {
		return err
	}
	if err := RenderTopWords(w, r.Records, opts.Top); err != nil {
		return err
	}
	if err := RenderWeakLetters(w, r.Records, opts.Top); err != nil {
		return err
	}
	return RenderSessions(w, r.Sessions, opts.Window, opts.Recent)
}
