// Package main provides the CLI entrypoint for soletra.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/soletra/internal/candidate"
	"github.com/verte-zerg/soletra/internal/config"
	"github.com/verte-zerg/soletra/internal/history"
	"github.com/verte-zerg/soletra/internal/logging"
	"github.com/verte-zerg/soletra/internal/model"
	"github.com/verte-zerg/soletra/internal/rank"
	"github.com/verte-zerg/soletra/internal/session"
	"github.com/verte-zerg/soletra/internal/stats"
	"github.com/verte-zerg/soletra/internal/store"
)

const (
	backendSQLite = "sqlite"
	backendCSV    = "csv"
)

var (
	env    config.Env
	logger = slog.New(slog.DiscardHandler)

	gameDictionary  string
	gameMinLength   int
	gameMaxAttempts int
	gameCheckEvery  int
	gamePolicy      string

	historyBackend string
	historyPath    string
	historyStrict  bool
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:               "soletra",
		Short:             "Candidate engine for the Soletra word puzzle",
		SilenceUsage:      true,
		SilenceErrors:     false,
		PersistentPreRunE: setupLogging,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&gameDictionary, "dict", config.DefaultDictionaryPath(), "dictionary word list")
	flags.IntVar(&gameMinLength, "min-length", candidate.DefaultMinLength, "shortest word the puzzle accepts")
	flags.StringVar(&historyBackend, "backend", backendSQLite, "history backend (sqlite or csv)")
	flags.StringVar(&historyPath, "history", "", "history location (default per backend)")
	flags.BoolVar(&historyStrict, "strict", false, "fail on corrupt history rows instead of skipping them")

	rootCmd.AddCommand(newSolveCmd())
	rootCmd.AddCommand(newPlayCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newWordlistCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

func setupLogging(_ *cobra.Command, _ []string) error {
	var err error
	env, err = config.LoadEnv()
	if err != nil {
		return err
	}
	logger = logging.New(env.LogLevel, env.LogFormat, os.Stderr)
	return nil
}

// settings is the resolved configuration of one command run.
type settings struct {
	dictionary  string
	minLength   int
	maxAttempts int
	checkEvery  int
	policy      model.Policy
	weights     rank.Weights
	backend     string
	historyPath string
	strict      bool
}

// loadSettings merges the config file under the flags the user set.
func loadSettings(cmd *cobra.Command) (settings, error) {
	fileCfg, err := config.LoadConfig(env.ConfigPath)
	if err != nil {
		return settings{}, fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "dict", &gameDictionary, fileCfg.Game.Dictionary)
	applyIntConfig(cmd, "min-length", &gameMinLength, fileCfg.Game.MinLength)
	applyIntConfig(cmd, "max-attempts", &gameMaxAttempts, fileCfg.Game.MaxAttempts)
	applyIntConfig(cmd, "check-every", &gameCheckEvery, fileCfg.Game.CheckEvery)
	applyStringConfig(cmd, "policy", &gamePolicy, fileCfg.Game.Policy)
	applyStringConfig(cmd, "backend", &historyBackend, fileCfg.History.Backend)
	applyStringConfig(cmd, "history", &historyPath, fileCfg.History.Path)
	applyBoolConfig(cmd, "strict", &historyStrict, fileCfg.History.Strict)

	weights := rank.DefaultWeights()
	if v := fileCfg.Ranking.AcceptedWeight; v != nil {
		weights.Accepted = *v
	}
	if v := fileCfg.Ranking.FrequencyWeight; v != nil {
		weights.Frequency = *v
	}
	if v := fileCfg.Ranking.UnknownOffset; v != nil {
		weights.UnknownOffset = *v
	}

	s := settings{
		dictionary:  expandHome(gameDictionary),
		minLength:   gameMinLength,
		maxAttempts: gameMaxAttempts,
		checkEvery:  gameCheckEvery,
		weights:     weights,
		backend:     strings.ToLower(strings.TrimSpace(historyBackend)),
		historyPath: expandHome(historyPath),
		strict:      historyStrict,
	}
	if gamePolicy != "" {
		if s.policy, err = model.ParsePolicy(gamePolicy); err != nil {
			return settings{}, err
		}
	}
	if err := validateSettings(s); err != nil {
		return settings{}, err
	}
	if s.historyPath == "" {
		s.historyPath = config.DefaultDBPath()
		if s.backend == backendCSV {
			s.historyPath = config.DefaultCSVPath()
		}
	}
	return s, nil
}

func validateSettings(s settings) error {
	if s.minLength <= 0 {
		return fmt.Errorf("--min-length must be > 0")
	}
	if s.maxAttempts < 0 {
		return fmt.Errorf("--max-attempts must be >= 0")
	}
	if s.checkEvery < 0 {
		return fmt.Errorf("--check-every must be >= 0")
	}
	if err := s.weights.Validate(); err != nil {
		return fmt.Errorf("invalid [ranking] config: %w", err)
	}
	if s.backend != backendSQLite && s.backend != backendCSV {
		return fmt.Errorf("unknown history backend %q (want sqlite or csv)", s.backend)
	}
	return nil
}

// backend is an open history backend. sessions is nil for the CSV file.
type backend struct {
	history.Backend
	sessions stats.SessionSource
	log      *store.Store
	close    func() error
}

func openBackend(ctx context.Context, s settings) (*backend, error) {
	if s.backend == backendCSV {
		return &backend{
			Backend: &history.CSVFile{Path: s.historyPath, Strict: s.strict},
			close:   func() error { return nil },
		}, nil
	}
	st, err := store.Open(ctx, s.historyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	st.Strict = s.strict
	return &backend{Backend: st, sessions: st, log: st, close: st.Close}, nil
}

// load reads the history and reports rows skipped in lenient mode.
func (b *backend) load(ctx context.Context) (*history.History, error) {
	h, err := b.Load(ctx)
	if err != nil {
		return nil, err
	}
	skipped := 0
	switch src := b.Backend.(type) {
	case *store.Store:
		skipped = src.Skipped
	case *history.CSVFile:
		skipped = src.Report.Skipped
	}
	if skipped > 0 {
		logger.Warn("skipped corrupt history rows", "count", skipped)
	}
	return h, nil
}

func (b *backend) Close() {
	if cerr := b.close(); cerr != nil {
		logErrf("failed to close history: %v\n", cerr)
	}
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := env.ConfigPath
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func defaultConfigTemplate() string {
	w := rank.DefaultWeights()
	return fmt.Sprintf(`# soletra configuration
# Uncomment a value to enable it. CLI flags override config values.

[game]
# dictionary = %q
# min-length = %d          # Shortest word the puzzle accepts
# max-attempts = %d        # Submission rounds per session
# check-every = %d        # Submissions between state checks
# policy = "incremental"  # or "win-only": save history only for completed puzzles

[ranking]
# accepted-weight = %.1f
# frequency-weight = %.1f
# unknown-offset = %.1f

[history]
# backend = "sqlite"      # or "csv"
# path = ""               # default: %s
# strict = false          # fail on corrupt rows instead of skipping them
`,
		config.DefaultDictionaryPath(),
		candidate.DefaultMinLength,
		session.DefaultMaxAttempts,
		session.DefaultCheckEvery,
		w.Accepted,
		w.Frequency,
		w.UnknownOffset,
		config.DefaultDBPath(),
	)
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
