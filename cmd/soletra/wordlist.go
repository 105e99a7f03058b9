package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/soletra/internal/config"
	"github.com/verte-zerg/soletra/internal/wordfreq"
	"github.com/verte-zerg/soletra/internal/wordlist"
)

var (
	wordlistSize  int
	wordlistList  string
	wordlistForce bool

	cleanIn         string
	cleanOut        string
	cleanMin        int
	cleanLang       string
	cleanFirstField bool
	cleanLower      bool
)

func newWordlistCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wordlist",
		Short: "Download the Portuguese dictionary from wordfreq",
		Args:  cobra.NoArgs,
		RunE:  runWordlistCmd,
	}
	cmd.Flags().IntVar(&wordlistSize, "size", 0, "keep the N most frequent words (0 = all)")
	cmd.Flags().StringVar(&wordlistList, "list", "large", "wordfreq list (large or small)")
	cmd.Flags().BoolVar(&wordlistForce, "force", false, "overwrite an existing dictionary")

	cmd.AddCommand(newWordlistCleanCmd())
	cmd.AddCommand(newWordlistCacheCmd())
	return cmd
}

func runWordlistCmd(cmd *cobra.Command, _ []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	if wordlistSize < 0 {
		return fmt.Errorf("--size must be >= 0")
	}
	outPath := s.dictionary
	if !wordlistForce {
		if _, err := os.Stat(outPath); err == nil {
			return fmt.Errorf("word list already exists: %s (use --force to overwrite)", outPath)
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat word list: %w", err)
		}
	}

	logErrln("Fetching wordfreq metadata...")
	wheel, err := wordfreq.Fetcher{CacheDir: config.DefaultWordfreqCacheDir()}.Latest(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to download wordfreq wheel: %w", err)
	}
	if wheel.Cached {
		logErrf("Using cached wordfreq %s\n", wheel.Version)
	} else {
		logErrf("Downloaded wordfreq %s\n", wheel.Version)
	}

	words, err := wordfreq.Extract(wheel.Path, wordfreq.Options{
		Lang:      "pt",
		List:      wordlistList,
		Limit:     wordlistSize,
		MinLength: s.minLength,
	})
	if err != nil {
		return fmt.Errorf("failed to extract word list: %w", err)
	}
	if err := wordlist.Write(outPath, words); err != nil {
		return fmt.Errorf("failed to write %s: %w", outPath, err)
	}
	logErrf("Wrote %s words to %s\n", humanize.Comma(int64(len(words))), outPath)

	if err := wordfreq.WriteAttribution(wheel.Path, filepath.Dir(outPath)); err != nil {
		return fmt.Errorf("failed to write attribution: %w", err)
	}
	logErrln("Wrote ATTRIBUTION.txt and LICENSE.txt")
	_, err = loadDictionary(outPath)
	return err
}

func newWordlistCleanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Turn raw text or CSV exports into a word list",
		Args:  cobra.NoArgs,
		RunE:  runWordlistCleanCmd,
	}
	cmd.Flags().StringVar(&cleanIn, "in", "-", "input file, - for stdin")
	cmd.Flags().StringVar(&cleanOut, "out", "", "output word list")
	cmd.Flags().IntVar(&cleanMin, "min", 1, "drop words shorter than N letters")
	cmd.Flags().StringVar(&cleanLang, "lang", "pt", "language filter (pt, en, or empty for any letters)")
	cmd.Flags().BoolVar(&cleanFirstField, "first-field", false, "keep only the first CSV column of each line")
	cmd.Flags().BoolVar(&cleanLower, "lower", false, "lowercase every word")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}

func runWordlistCleanCmd(cmd *cobra.Command, _ []string) error {
	var in io.Reader = cmd.InOrStdin()
	if cleanIn != "-" {
		f, err := os.Open(expandHome(cleanIn))
		if err != nil {
			return fmt.Errorf("failed to open input: %w", err)
		}
		defer func() {
			if cerr := f.Close(); cerr != nil {
				// Best-effort close of a read-only file.
				_ = cerr
			}
		}()
		in = f
	}
	words, err := wordlist.Clean(in, wordlist.CleanOptions{
		MinLength:  cleanMin,
		Lang:       cleanLang,
		FirstField: cleanFirstField,
		Lower:      cleanLower,
	})
	if err != nil {
		return err
	}
	out := expandHome(cleanOut)
	if err := wordlist.Write(out, words); err != nil {
		return err
	}
	logErrf("Wrote %s words to %s\n", humanize.Comma(int64(len(words))), out)
	return nil
}

func newWordlistCacheCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cache",
		Short: "Build the binary dictionary cache",
		Args:  cobra.NoArgs,
		RunE:  runWordlistCacheCmd,
	}
}

func runWordlistCacheCmd(cmd *cobra.Command, _ []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	dict, info, err := wordlist.LoadCached(s.dictionary, config.DefaultDictionaryCacheDir())
	if err != nil {
		return dictionaryLoadError(s.dictionary, err)
	}
	if info.Err != nil {
		return fmt.Errorf("failed to write cache %s: %w", info.Path, info.Err)
	}
	state := "built"
	if info.Hit {
		state = "up to date"
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Cache %s: %s (%s words)\n", state, info.Path, humanize.Comma(int64(dict.Len())))
	return err
}
