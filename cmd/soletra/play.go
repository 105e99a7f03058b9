package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/soletra/internal/feedback"
	"github.com/verte-zerg/soletra/internal/history"
	"github.com/verte-zerg/soletra/internal/model"
	"github.com/verte-zerg/soletra/internal/rank"
	"github.com/verte-zerg/soletra/internal/session"
	"github.com/verte-zerg/soletra/internal/tui"
	"github.com/verte-zerg/soletra/internal/wordlist"
)

var (
	playTotal int
	playFound []string
	playPlain bool
)

func newPlayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Suggest words one by one and learn from the answers",
		Args:  cobra.NoArgs,
		RunE:  runPlayCmd,
	}
	addPuzzleFlags(cmd)
	cmd.Flags().IntVar(&playTotal, "total", 0, "number of words in the puzzle, if known")
	cmd.Flags().StringSliceVar(&playFound, "found", nil, "words already found")
	cmd.Flags().StringVar(&gamePolicy, "policy", model.PolicyIncremental.String(), "persistence policy (incremental or win-only)")
	cmd.Flags().IntVar(&gameMaxAttempts, "max-attempts", session.DefaultMaxAttempts, "submission rounds per session")
	cmd.Flags().IntVar(&gameCheckEvery, "check-every", session.DefaultCheckEvery, "submissions between state checks")
	cmd.Flags().BoolVar(&playPlain, "plain", false, "use the line prompt even on a terminal")
	return cmd
}

func runPlayCmd(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	if playTotal < 0 {
		return fmt.Errorf("--total must be >= 0")
	}
	dict, err := loadDictionary(s.dictionary)
	if err != nil {
		return err
	}
	b, err := openBackend(ctx, s)
	if err != nil {
		return err
	}
	defer b.Close()
	h, err := b.load(ctx)
	if err != nil {
		return err
	}
	ranker, err := rank.New(s.weights)
	if err != nil {
		return err
	}

	runner := &session.Runner{
		Recorder:    feedback.NewRecorder(s.policy, b),
		Ranker:      ranker,
		Logger:      logger,
		MaxAttempts: s.maxAttempts,
		CheckEvery:  s.checkEvery,
		MinLength:   s.minLength,
	}

	var res session.Result
	var runErr error
	if !playPlain && term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd())) {
		res, runErr = playInteractive(ctx, runner, dict, h)
	} else {
		puzzle := session.NewManualPuzzle(puzzleCenter, puzzleLetters, playTotal, session.NewLinePrompter(cmd.InOrStdin(), cmd.OutOrStdout()))
		puzzle.Seed(playFound...)
		runner.Reader, runner.Submitter = puzzle, puzzle
		res, runErr = runner.Run(ctx, dict, h)
	}
	if res.StartedAt.IsZero() || res.EndedAt.IsZero() {
		return runErr
	}

	if b.log != nil {
		id, err := b.log.InsertSession(context.WithoutCancel(ctx), res.Summary())
		if err != nil {
			logErrf("failed to log session: %v\n", err)
		} else {
			logger.Debug("session logged", "id", id)
		}
	}
	if _, err := fmt.Fprintln(cmd.OutOrStdout(), summaryLine(res)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if runErr != nil && !interruptedCleanly(res, runErr) {
		return runErr
	}
	return nil
}

// interruptedCleanly reports whether err is only an interrupt that left the
// history as the policy intended.
func interruptedCleanly(res session.Result, err error) bool {
	if !errors.Is(err, context.Canceled) {
		return false
	}
	if res.Checkpoint.Persisted {
		return true
	}
	return res.Checkpoint.Policy == model.PolicyWinOnly && !res.Completed
}

// playInteractive runs the session in a goroutine while the Bubble Tea
// prompt owns the terminal.
func playInteractive(ctx context.Context, runner *session.Runner, dict *wordlist.Dictionary, h *history.History) (session.Result, error) {
	program := tea.NewProgram(tui.NewModel(puzzleCenter, puzzleLetters), tea.WithAltScreen(), tea.WithContext(ctx))
	bridge := tui.NewBridge(program)
	puzzle := session.NewManualPuzzle(puzzleCenter, puzzleLetters, playTotal, bridge)
	puzzle.Seed(playFound...)
	runner.Reader, runner.Submitter = puzzle, puzzle
	// Log lines would tear the alt screen.
	runner.Logger = slog.New(slog.DiscardHandler)

	var res session.Result
	var runErr error
	done := make(chan struct{})
	go func() {
		defer close(done)
		res, runErr = runner.Run(ctx, dict, h)
		bridge.Finish(summaryLine(res))
	}()

	_, progErr := program.Run()
	bridge.Close()
	<-done
	if progErr != nil && !errors.Is(progErr, tea.ErrProgramKilled) {
		return res, fmt.Errorf("failed to run TUI: %w", progErr)
	}
	logger.Info("session finished",
		"attempts", res.Attempts,
		"submitted", res.Submitted,
		"accepted", len(res.Accepted),
		"completed", res.Completed,
		"persisted", res.Checkpoint.Persisted,
	)
	return res, runErr
}

func summaryLine(res session.Result) string {
	parts := []string{
		fmt.Sprintf("%d suggested", res.Submitted),
		fmt.Sprintf("%d accepted", len(res.Accepted)),
		fmt.Sprintf("%d rejected", len(res.Rejected)),
	}
	if res.State.Total > 0 {
		parts = append(parts, fmt.Sprintf("found %d/%d", res.State.Found, res.State.Total))
	}
	saved := "history unchanged"
	if res.Checkpoint.Persisted {
		saved = "history saved"
	}
	parts = append(parts, fmt.Sprintf("%s (%s)", saved, res.Checkpoint.Policy))
	return strings.Join(parts, ", ")
}
