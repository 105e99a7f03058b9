package main

import (
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/soletra/internal/history"
	"github.com/verte-zerg/soletra/internal/stats"
	"github.com/verte-zerg/soletra/internal/statsui"
)

const (
	defaultTop    = 10
	defaultWindow = 5
	defaultRecent = 10
)

var (
	reportTop    int
	reportWindow int
	reportRecent int
	reportLast   int
	reportTUI    bool

	exportPath string
	importPath string
)

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show what the history has learned",
		Args:  cobra.NoArgs,
		RunE:  runHistoryCmd,
	}
	cmd.Flags().IntVar(&reportTop, "top", defaultTop, "rows in the top words and weak letters tables")
	cmd.Flags().IntVar(&reportWindow, "window", defaultWindow, "moving average window for session sparklines")
	cmd.Flags().IntVar(&reportRecent, "recent", defaultRecent, "recent sessions to list")
	cmd.Flags().IntVar(&reportLast, "last", 0, "only load the last N sessions (0 = all)")
	cmd.Flags().BoolVar(&reportTUI, "tui", false, "browse the history interactively")

	cmd.AddCommand(newHistoryExportCmd())
	cmd.AddCommand(newHistoryImportCmd())
	return cmd
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	if reportTop < 0 || reportWindow < 0 || reportRecent < 0 || reportLast < 0 {
		return fmt.Errorf("--top, --window, --recent and --last must be >= 0")
	}
	b, err := openBackend(ctx, s)
	if err != nil {
		return err
	}
	defer b.Close()

	report, err := stats.BuildReport(ctx, b, b.sessions, reportLast)
	if err != nil {
		return err
	}
	opts := stats.Options{Top: reportTop, Window: reportWindow, Recent: reportRecent}
	if !reportTUI {
		return stats.Render(cmd.OutOrStdout(), report, opts)
	}
	program := tea.NewProgram(statsui.NewModel(report, opts), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("failed to run history TUI: %w", err)
	}
	return nil
}

func newHistoryExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the history as CSV",
		Args:  cobra.NoArgs,
		RunE:  runHistoryExportCmd,
	}
	cmd.Flags().StringVar(&exportPath, "csv", "-", "output file, - for stdout")
	return cmd
}

func runHistoryExportCmd(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	s, err := loadSettings(cmd)
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
	if exportPath == "-" {
		return history.WriteCSV(cmd.OutOrStdout(), h)
	}
	if err := (&history.CSVFile{Path: expandHome(exportPath)}).Flush(ctx, h); err != nil {
		return err
	}
	logErrf("Exported %s records to %s\n", humanize.Comma(int64(h.Len())), exportPath)
	return nil
}

func newHistoryImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Merge CSV records into the history",
		Args:  cobra.NoArgs,
		RunE:  runHistoryImportCmd,
	}
	cmd.Flags().StringVar(&importPath, "csv", "", "CSV file to merge")
	_ = cmd.MarkFlagRequired("csv")
	return cmd
}

func runHistoryImportCmd(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	path := expandHome(importPath)
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	src := &history.CSVFile{Path: path, Strict: s.strict}
	incoming, err := src.Load(ctx)
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
	for _, rec := range incoming.Records() {
		h.Merge(rec)
	}
	if err := b.Flush(ctx, h); err != nil {
		return fmt.Errorf("failed to save history: %w", err)
	}
	logErrf("Imported %s records (%d skipped), history has %s words\n",
		humanize.Comma(int64(incoming.Len())), src.Report.Skipped, humanize.Comma(int64(h.Len())))
	return nil
}
