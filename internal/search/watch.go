package search

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/gnoswap-labs/hmgrep/scanner"
)

// debounce groups the bursts of write events editors produce for one save.
const debounce = 100 * time.Millisecond

// ReportFunc receives the matches of a file that changed. matches is empty
// when the file no longer contains the pattern.
type ReportFunc func(filename string, matches []Match)

// Watch re-searches files under paths whenever they are written and passes
// the results to report. It blocks until ctx is done.
func Watch(
	ctx context.Context,
	logger *zap.Logger,
	searcher FileSearcher,
	paths []string,
	opts ProcessOptions,
	report ReportFunc,
) error {
	if logger == nil {
		logger = zap.NewNop()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	roots := make([]*scanner.Scanner, len(paths))
	for i, path := range paths {
		roots[i] = opts.scanner(path)
	}
	// a scanner only answers for paths below its own root
	ignored := func(path string, isDir bool) bool {
		return slices.ContainsFunc(roots, func(s *scanner.Scanner) bool {
			return s.Ignored(path, isDir)
		})
	}

	for _, path := range paths {
		if err := addTree(watcher, path, opts.ExcludeDirs, ignored); err != nil {
			return fmt.Errorf("error adding directory to watcher: %w", err)
		}
	}
	logger.Debug("Watching", zap.Strings("paths", paths))

	target := scanner.New("", opts.Extensions...)
	pending := make(map[string]struct{})
	timer := time.NewTimer(debounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			info, err := os.Stat(event.Name)
			if err != nil {
				continue
			}
			if info.IsDir() {
				if event.Has(fsnotify.Create) && !ignored(event.Name, true) {
					if err := addTree(watcher, event.Name, opts.ExcludeDirs, ignored); err != nil {
						logger.Error("Error watching directory", zap.String("dir", event.Name), zap.Error(err))
					}
				}
				continue
			}
			if !target.IsTarget(event.Name) || ignored(event.Name, false) {
				continue
			}
			pending[event.Name] = struct{}{}
			resetTimer(timer, debounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("Watcher error", zap.Error(err))

		case <-timer.C:
			names := make([]string, 0, len(pending))
			for name := range pending {
				names = append(names, name)
			}
			slices.Sort(names)
			clear(pending)

			for _, name := range names {
				matches, err := searcher.SearchFile(name)
				if err != nil {
					logger.Debug("Skipping changed file", zap.String("file", name), zap.Error(err))
					continue
				}
				report(name, matches)
			}
		}
	}
}

// resetTimer restarts t to fire after d, discarding a tick that fired but
// was not received yet.
func resetTimer(t *time.Timer, d time.Duration) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
	t.Reset(d)
}

// addTree watches root and, when it is a directory, every directory below
// it except the excluded and ignored ones.
func addTree(watcher *fsnotify.Watcher, root string, exclude []string, ignored func(string, bool) bool) error {
	info, err := os.Stat(root)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return watcher.Add(root)
	}

	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && (slices.Contains(exclude, d.Name()) || ignored(path, true)) {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
}
