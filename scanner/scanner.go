package scanner

import (
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	ignore "github.com/sabhiram/go-gitignore"
)

type FileInfo struct {
	Path string
	Size int64
}

type Scanner struct {
	rootDir     string
	extensions  []string
	excludeDirs []string
	ignoreFiles []string

	mu sync.Mutex
	// compiled ignore files by directory, nil when a directory has none
	matchers map[string]*ignore.GitIgnore
}

// New returns a scanner over rootDir. With no extensions every regular file
// is a target; extensions are matched case-insensitively with their dot
// (".txt").
func New(rootDir string, extensions ...string) *Scanner {
	return &Scanner{
		rootDir:    rootDir,
		extensions: extensions,
	}
}

// Exclude skips directories with any of the given base names. The root
// itself is never skipped.
func (s *Scanner) Exclude(dirs ...string) *Scanner {
	s.excludeDirs = append(s.excludeDirs, dirs...)
	return s
}

// IgnoreFiles honors gitignore-style files with the given names (such as
// ".gitignore") found in the root or any directory below it. Their patterns
// apply to the directory holding the file and everything under it.
func (s *Scanner) IgnoreFiles(names ...string) *Scanner {
	s.ignoreFiles = append(s.ignoreFiles, names...)
	return s
}

// Scan walks the root and returns the target files sorted by path. A root
// that is a regular file is returned as is, regardless of its extension.
func (s *Scanner) Scan() ([]FileInfo, error) {
	var files []FileInfo

	err := filepath.WalkDir(s.rootDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			if path != s.rootDir && (slices.Contains(s.excludeDirs, d.Name()) || s.Ignored(path, true)) {
				return filepath.SkipDir
			}
			return nil
		}

		if !d.Type().IsRegular() {
			return nil
		}
		if path != s.rootDir && (!s.IsTarget(path) || s.Ignored(path, false)) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		files = append(files, FileInfo{
			Path: path,
			Size: info.Size(),
		})
		return nil
	})

	slices.SortFunc(files, func(a, b FileInfo) int {
		return strings.Compare(a.Path, b.Path)
	})
	return files, err
}

// IsTarget reports whether path has one of the scanned extensions.
func (s *Scanner) IsTarget(path string) bool {
	if len(s.extensions) == 0 {
		return true
	}

	ext := filepath.Ext(path)
	for _, targetExt := range s.extensions {
		if strings.EqualFold(ext, targetExt) {
			return true
		}
	}
	return false
}

// Ignored reports whether an ignore file in the root, or in a directory
// between the root and path, excludes path. The root and paths outside it
// are never ignored.
func (s *Scanner) Ignored(path string, isDir bool) bool {
	if len(s.ignoreFiles) == 0 {
		return false
	}
	rel, err := filepath.Rel(s.rootDir, path)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return false
	}

	parts := strings.Split(filepath.ToSlash(rel), "/")
	dir := s.rootDir
	for i, part := range parts {
		if m := s.matcher(dir); m != nil {
			sub := strings.Join(parts[i:], "/")
			if m.MatchesPath(sub) || (isDir && m.MatchesPath(sub+"/")) {
				return true
			}
		}
		dir = filepath.Join(dir, part)
	}
	return false
}

func (s *Scanner) matcher(dir string) *ignore.GitIgnore {
	s.mu.Lock()
	defer s.mu.Unlock()

	if m, ok := s.matchers[dir]; ok {
		return m
	}

	var lines []string
	for _, name := range s.ignoreFiles {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			continue
		}
		lines = append(lines, strings.Split(string(data), "\n")...)
	}

	var m *ignore.GitIgnore
	if len(lines) > 0 {
		m = ignore.CompileIgnoreLines(lines...)
	}
	if s.matchers == nil {
		s.matchers = make(map[string]*ignore.GitIgnore)
	}
	s.matchers[dir] = m
	return m
}
