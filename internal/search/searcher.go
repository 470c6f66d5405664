package search

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"slices"
	"strings"
)

const (
	// sniffLen is how much of a file is checked for NUL bytes.
	sniffLen = 8 << 10
	// maxLineLen bounds a single line held in memory.
	maxLineLen = 1 << 20
)

var (
	ErrBinaryFile   = errors.New("binary file")
	ErrFileTooLarge = errors.New("file too large")
	ErrNoCandidates = errors.New("no candidates to search for")
)

// Options configures a Searcher.
type Options struct {
	IgnoreCase bool
	// MaxFileSize skips larger files; 0 means no limit.
	MaxFileSize int64
	// Before and After are the number of context lines reported around
	// each match.
	Before int
	After  int
}

// Line is a line of context around a match.
type Line struct {
	Number int
	Text   string
}

// Match is one matching line.
type Match struct {
	Filename string
	Line     int // 1-based
	Text     string
	// Spans holds the byte offsets [start, end) of every match in Text.
	Spans [][2]int
	// Before and After hold the context lines. A line is reported at most
	// once, so a match closely following another gets fewer lines.
	Before []Line
	After  []Line
}

// Searcher finds the lines matching an expanded pattern.
type Searcher struct {
	re   *regexp.Regexp
	opts Options
}

// New compiles expr, usually the regex produced by the expander.
func New(expr string, opts Options) (*Searcher, error) {
	if opts.IgnoreCase {
		expr = "(?i)" + expr
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("compile pattern: %w", err)
	}
	return &Searcher{re: re, opts: opts}, nil
}

// NewLiterals builds a searcher matching any of literals. Longer literals
// are tried first so a match never stops at a shorter prefix.
func NewLiterals(literals []string, opts Options) (*Searcher, error) {
	if len(literals) == 0 {
		return nil, ErrNoCandidates
	}

	sorted := slices.Clone(literals)
	slices.SortStableFunc(sorted, func(a, b string) int {
		return len(b) - len(a)
	})
	quoted := make([]string, len(sorted))
	for i, lit := range sorted {
		quoted[i] = regexp.QuoteMeta(lit)
	}
	return New(strings.Join(quoted, "|"), opts)
}

// Regexp returns the compiled expression.
func (s *Searcher) Regexp() *regexp.Regexp { return s.re }

// Key identifies the results the searcher produces, for use as a cache key.
func (s *Searcher) Key() string {
	return fmt.Sprintf("%s\x00%d\x00%d", s.re, s.opts.Before, s.opts.After)
}

// SearchReader reports every line of r that contains a match.
func (s *Searcher) SearchReader(filename string, r io.Reader) ([]Match, error) {
	var (
		matches []Match
		window  []Line // the current line and the opts.Before lines above it
		pending int    // after-context lines still owed to the last match
		emitted int    // last line already reported
	)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64<<10), maxLineLen)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		text := scanner.Text()
		if s.opts.Before > 0 {
			if len(window) > s.opts.Before {
				window = window[1:]
			}
			window = append(window, Line{Number: lineNo, Text: text})
		}

		found := s.re.FindAllStringIndex(text, -1)
		if found == nil {
			if pending > 0 {
				last := &matches[len(matches)-1]
				last.After = append(last.After, Line{Number: lineNo, Text: text})
				emitted = lineNo
				pending--
			}
			continue
		}

		spans := make([][2]int, 0, len(found))
		for _, loc := range found {
			if loc[1] > loc[0] {
				spans = append(spans, [2]int{loc[0], loc[1]})
			}
		}
		m := Match{
			Filename: filename,
			Line:     lineNo,
			Text:     text,
			Spans:    spans,
		}
		// the window ends with the current line
		for _, l := range window[:max(len(window)-1, 0)] {
			if l.Number > emitted {
				m.Before = append(m.Before, l)
			}
		}
		matches = append(matches, m)
		emitted = lineNo
		pending = s.opts.After
	}
	if err := scanner.Err(); err != nil {
		return matches, fmt.Errorf("read %s: %w", filename, err)
	}
	return matches, nil
}

// SearchFile searches the file at path. Binary files fail with
// ErrBinaryFile and files over the size limit with ErrFileTooLarge.
func (s *Searcher) SearchFile(path string) ([]Match, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if s.opts.MaxFileSize > 0 {
		info, err := f.Stat()
		if err != nil {
			return nil, err
		}
		if info.Size() > s.opts.MaxFileSize {
			return nil, fmt.Errorf("%w: %s (%d bytes)", ErrFileTooLarge, path, info.Size())
		}
	}

	br := bufio.NewReaderSize(f, sniffLen)
	head, err := br.Peek(sniffLen)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if bytes.IndexByte(head, 0) >= 0 {
		return nil, fmt.Errorf("%w: %s", ErrBinaryFile, path)
	}

	return s.SearchReader(path, br)
}
