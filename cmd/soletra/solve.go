package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/soletra/internal/candidate"
	"github.com/verte-zerg/soletra/internal/config"
	"github.com/verte-zerg/soletra/internal/model"
	"github.com/verte-zerg/soletra/internal/rank"
	"github.com/verte-zerg/soletra/internal/wordlist"
)

var (
	puzzleLetters string
	puzzleCenter  string

	solveLimit   int
	solveExclude []string
)

func addPuzzleFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&puzzleLetters, "letters", "", "outer letters, e.g. ABCDEF")
	cmd.Flags().StringVar(&puzzleCenter, "center", "", "central letter")
	_ = cmd.MarkFlagRequired("letters")
	_ = cmd.MarkFlagRequired("center")
}

func newSolveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "solve",
		Short: "Print ranked candidate words for a puzzle",
		Args:  cobra.NoArgs,
		RunE:  runSolveCmd,
	}
	addPuzzleFlags(cmd)
	cmd.Flags().IntVar(&solveLimit, "limit", 0, "print at most N words (0 = all)")
	cmd.Flags().StringSliceVar(&solveExclude, "exclude", nil, "words already tried")
	return cmd
}

func runSolveCmd(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	if solveLimit < 0 {
		return fmt.Errorf("--limit must be >= 0")
	}
	letters, err := candidate.Letters(puzzleCenter, puzzleLetters)
	if err != nil {
		return err
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

	list, err := candidate.Find(letters, dict, candidate.ExcludeSet(solveExclude), candidate.Options{MinLength: s.minLength})
	if errors.Is(err, model.ErrNoCandidates) {
		_, werr := fmt.Fprintln(cmd.OutOrStdout(), "No candidates.")
		return werr
	}
	if err != nil {
		return err
	}
	logger.Debug("candidates", "letters", letters.String(), "complete", len(list.Complete), "total", list.Len())
	return printRanked(cmd.OutOrStdout(), list, ranker.List(list, h), solveLimit)
}

// printRanked writes one word per line, marking words that use every letter.
func printRanked(w io.Writer, list model.CandidateList, ranked []model.Word, limit int) error {
	complete := make(map[string]struct{}, len(list.Complete))
	for _, word := range list.Complete {
		complete[word.Key] = struct{}{}
	}
	if limit > 0 && limit < len(ranked) {
		ranked = ranked[:limit]
	}
	for _, word := range ranked {
		mark := " "
		if _, ok := complete[word.Key]; ok {
			mark = "*"
		}
		if _, err := fmt.Fprintf(w, "%s %s\n", mark, word.Text); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func loadDictionary(path string) (*wordlist.Dictionary, error) {
	dict, info, err := wordlist.LoadCached(path, config.DefaultDictionaryCacheDir())
	if errors.Is(err, model.ErrNotFound) {
		return nil, dictionaryLoadError(path, err)
	}
	if err != nil {
		return nil, err
	}
	if info.Err != nil {
		logger.Warn("dictionary cache unusable", "path", info.Path, "err", info.Err)
	}
	logger.Debug("dictionary loaded", "path", path, "words", dict.Len(), "cache_hit", info.Hit)
	return dict, nil
}

func dictionaryLoadError(path string, err error) error {
	lines := []string{
		fmt.Sprintf("failed to load dictionary: %v", err),
		fmt.Sprintf("expected word list at: %s", path),
		"Download: soletra wordlist",
		"Or build one: soletra wordlist clean --in words.txt --out " + path,
	}
	return fmt.Errorf("%s: %w", strings.Join(lines, "\n"), model.ErrNotFound)
}

