package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnoswap-labs/hmgrep"
	"github.com/gnoswap-labs/hmgrep/formatter"
	"github.com/gnoswap-labs/hmgrep/internal/search"
	"github.com/gnoswap-labs/hmgrep/internal/table"
)

var (
	ignoreCase   bool
	lineNumber   bool
	onlyMatching bool
	enumerate    bool
	showProgress bool
	watchMode    bool
	snippet      bool
	workers      int
	extensions   []string
	colorMode    string
	cacheDir     string
	afterLines   int
	beforeLines  int
	contextLines int
	noIgnore     bool
)

// grepCmd: hmgrep grep PATTERN PATH...
var grepCmd = &cobra.Command{
	Use:   "grep PATTERN PATH...",
	Short: "Search files for a pattern and its homoglyph variants",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		applySearchFlags(cmd)
		if err := setColorMode(colorMode); err != nil {
			return err
		}

		exp, err := newExpander()
		if err != nil {
			if errors.Is(err, table.ErrAssetLoad) {
				logger.Fatal("Error loading tables", zap.Error(err))
			}
			return err
		}

		searcher, err := newSearcher(exp, args[0], enumerate, search.Options{
			IgnoreCase:  cfg.Search.IgnoreCase,
			MaxFileSize: cfg.Search.MaxFileSize,
			Before:      cfg.Search.BeforeContext,
			After:       cfg.Search.AfterContext,
		})
		if err != nil {
			return err
		}

		var fs search.FileSearcher = searcher
		if cacheDir != "" {
			cache, err := search.NewCache(cacheDir)
			if err != nil {
				return err
			}
			defer func() {
				if err := cache.Save(); err != nil {
					logger.Error("Error saving cache", zap.String("dir", cacheDir), zap.Error(err))
				}
			}()
			fs = search.Cached(searcher, cache, searcher.Key())
		}

		paths := args[1:]
		opts := search.ProcessOptions{
			Workers:     cfg.Search.Workers,
			Progress:    showProgress,
			Extensions:  cfg.Search.Extensions,
			ExcludeDirs: cfg.Search.ExcludeDirs,
			IgnoreFiles: cfg.Search.IgnoreFiles,
		}
		out := formatter.Options{
			Style:        formatter.StyleGrep,
			WithFilename: len(paths) > 1 || isDir(paths[0]),
			LineNumber:   cfg.Search.LineNumber,
			OnlyMatching: cfg.Search.OnlyMatching,
			Context:      cfg.Search.BeforeContext > 0 || cfg.Search.AfterContext > 0,
		}
		if snippet {
			out.Style = formatter.StyleSnippet
		}

		if watchMode {
			return runWatch(cmd.Context(), cmd.OutOrStdout(), fs, paths, opts, out)
		}

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return runGrep(ctx, cmd.OutOrStdout(), fs, paths, opts, out)
	},
}

func init() {
	flags := grepCmd.Flags()
	flags.BoolVarP(&ignoreCase, "ignore-case", "i", false, "Ignore case distinctions")
	flags.BoolVarP(&lineNumber, "line-number", "n", true, "Prefix each line with its line number")
	flags.BoolVarP(&onlyMatching, "only-matching", "o", false, "Print only the matched parts of a line")
	flags.BoolVar(&enumerate, "enumerate", false, "Search for the enumerated literal list instead of the regex")
	flags.BoolVar(&showProgress, "progress", false, "Show a progress bar on stderr")
	flags.BoolVar(&watchMode, "watch", false, "Keep running and search files again when they change")
	flags.BoolVar(&snippet, "snippet", false, "Print matches as annotated snippets")
	flags.IntVar(&workers, "workers", 0, "Number of files searched concurrently (0 means one per CPU)")
	flags.StringSliceVar(&extensions, "ext", nil, "Only search files with these extensions (e.g. .txt,.md)")
	flags.StringVar(&colorMode, "color", "auto", "Colorize output: auto, always or never")
	flags.StringVar(&cacheDir, "cache", "", "Directory caching results of unchanged files between runs")
	flags.IntVarP(&afterLines, "after-context", "A", 0, "Print NUM lines of trailing context after each match")
	flags.IntVarP(&beforeLines, "before-context", "B", 0, "Print NUM lines of leading context before each match")
	flags.IntVarP(&contextLines, "context", "C", 0, "Print NUM lines of context around each match")
	flags.BoolVar(&noIgnore, "no-ignore", false, "Do not honor .gitignore, .ignore and .hmgrepignore files")
}

func applySearchFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	if flags.Changed("ignore-case") {
		cfg.Search.IgnoreCase = ignoreCase
	}
	if flags.Changed("line-number") {
		cfg.Search.LineNumber = lineNumber
	}
	if flags.Changed("only-matching") {
		cfg.Search.OnlyMatching = onlyMatching
	}
	if flags.Changed("workers") {
		cfg.Search.Workers = workers
	}
	if flags.Changed("ext") {
		cfg.Search.Extensions = extensions
	}
	// -A and -B take precedence over -C
	if flags.Changed("context") {
		cfg.Search.BeforeContext = contextLines
		cfg.Search.AfterContext = contextLines
	}
	if flags.Changed("before-context") {
		cfg.Search.BeforeContext = beforeLines
	}
	if flags.Changed("after-context") {
		cfg.Search.AfterContext = afterLines
	}
	if noIgnore {
		cfg.Search.IgnoreFiles = nil
	}
}

func setColorMode(mode string) error {
	switch mode {
	case "auto":
	case "always":
		color.NoColor = false
	case "never":
		color.NoColor = true
	default:
		return fmt.Errorf("invalid --color value %q: want auto, always or never", mode)
	}
	return nil
}

// newSearcher builds a searcher for text. With literals it looks for every
// enumerated candidate instead of the expanded regex.
func newSearcher(exp *hmgrep.Expander, text string, literals bool, opts search.Options) (*search.Searcher, error) {
	if literals {
		candidates, err := exp.Candidates(text)
		if err != nil {
			return nil, err
		}
		logger.Debug("Expanded pattern", zap.String("pattern", text), zap.Int("candidates", len(candidates)))
		return search.NewLiterals(candidates, opts)
	}

	re, err := exp.Regex(text)
	if err != nil {
		return nil, err
	}
	logger.Debug("Expanded pattern", zap.String("pattern", text), zap.String("regex", re))
	return search.New(re, opts)
}

func runGrep(
	ctx context.Context,
	w io.Writer,
	searcher search.FileSearcher,
	paths []string,
	opts search.ProcessOptions,
	out formatter.Options,
) error {
	matches, err := search.ProcessPaths(ctx, logger, searcher, paths, opts)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			logger.Error("Search timed out", zap.Duration("timeout", timeout))
		}
		return err
	}

	if err := formatter.Write(w, matches, out); err != nil {
		return err
	}
	if len(matches) == 0 {
		return errNoMatch
	}
	return nil
}

func runWatch(
	parent context.Context,
	w io.Writer,
	searcher search.FileSearcher,
	paths []string,
	opts search.ProcessOptions,
	out formatter.Options,
) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// report what is already there before waiting for changes
	if err := runGrep(ctx, w, searcher, paths, opts, out); err != nil && !errors.Is(err, errNoMatch) {
		return err
	}

	out.WithFilename = true
	return search.Watch(ctx, logger, searcher, paths, opts, func(filename string, matches []search.Match) {
		if err := formatter.Write(w, matches, out); err != nil {
			logger.Error("Error writing matches", zap.String("file", filename), zap.Error(err))
		}
	})
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
