package search

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"sync"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	"github.com/gnoswap-labs/hmgrep/scanner"
)

// FileSearcher searches a single file. *Searcher implements it.
type FileSearcher interface {
	SearchFile(path string) ([]Match, error)
}

var _ FileSearcher = (*Searcher)(nil)

// ProcessOptions controls how ProcessPaths walks and schedules files.
type ProcessOptions struct {
	// Workers bounds the number of files searched at once; 0 means
	// runtime.NumCPU().
	Workers int
	// Progress shows a progress bar on ProgressWriter (stderr by default).
	Progress       bool
	ProgressWriter io.Writer

	Extensions  []string
	ExcludeDirs []string
	// IgnoreFiles names the gitignore-style files honored in every walked
	// directory.
	IgnoreFiles []string
}

func (o ProcessOptions) workers() int {
	if o.Workers > 0 {
		return o.Workers
	}
	return runtime.NumCPU()
}

func (o ProcessOptions) scanner(root string) *scanner.Scanner {
	return scanner.New(root, o.Extensions...).Exclude(o.ExcludeDirs...).IgnoreFiles(o.IgnoreFiles...)
}

// Files expands paths into the list of files to search.
func (o ProcessOptions) Files(paths []string) ([]string, error) {
	var files []string
	for _, path := range paths {
		scanned, err := o.scanner(path).Scan()
		if err != nil {
			return nil, fmt.Errorf("error accessing %s: %w", path, err)
		}
		for _, f := range scanned {
			files = append(files, f.Path)
		}
	}
	return files, nil
}

// ProcessPaths searches every file under paths with a bounded pool of
// workers. Results are ordered by file, in scan order, then by line.
// Unreadable and binary files are logged and skipped. When ctx is done no
// new file is started and the matches found so far are returned together
// with the context error.
func ProcessPaths(
	ctx context.Context,
	logger *zap.Logger,
	searcher FileSearcher,
	paths []string,
	opts ProcessOptions,
) ([]Match, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	files, err := opts.Files(paths)
	if err != nil {
		return nil, err
	}

	bar := newProgressBar(opts, len(files))

	// one slot per file keeps the output order independent of scheduling
	results := make([][]Match, len(files))
	sem := make(chan struct{}, opts.workers())
	var wg sync.WaitGroup

dispatch:
	for i, filePath := range files {
		select {
		case <-ctx.Done():
			break dispatch
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func(i int, fp string) {
			defer wg.Done()
			defer func() { <-sem }()

			matches, err := searcher.SearchFile(fp)
			switch {
			case errors.Is(err, ErrBinaryFile), errors.Is(err, ErrFileTooLarge):
				logger.Debug("Skipping file", zap.String("file", fp), zap.Error(err))
			case err != nil:
				logger.Error("Error searching file", zap.String("file", fp), zap.Error(err))
			}
			results[i] = matches

			if bar != nil {
				_ = bar.Add(1)
			}
		}(i, filePath)
	}
	wg.Wait()

	if bar != nil {
		_ = bar.Finish()
	}

	var all []Match
	for _, matches := range results {
		all = append(all, matches...)
	}
	return all, ctx.Err()
}

func newProgressBar(opts ProcessOptions, total int) *progressbar.ProgressBar {
	if !opts.Progress {
		return nil
	}
	w := opts.ProgressWriter
	if w == nil {
		w = os.Stderr
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription("searching"),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))
}
