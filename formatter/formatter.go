package formatter

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"text/template"
	"unicode/utf8"

	"github.com/fatih/color"
	"github.com/rivo/uniseg"

	"github.com/gnoswap-labs/hmgrep/internal/search"
)

const tabWidth = 8

var (
	fileStyle  = color.New(color.FgCyan, color.Bold)
	lineStyle  = color.New(color.FgHiBlue, color.Bold)
	matchStyle = color.New(color.FgRed, color.Bold)
	sepStyle   = color.New(color.FgWhite)
)

// Style selects the output layout.
type Style int

const (
	// StyleGrep prints "file:line:text", one line per match.
	StyleGrep Style = iota
	// StyleSnippet prints each matching line with its matches underlined.
	StyleSnippet
)

// Options controls the output.
type Options struct {
	Style        Style
	WithFilename bool
	LineNumber   bool
	// OnlyMatching prints each matched part on its own line instead of the
	// whole line (grep style only).
	OnlyMatching bool
	// Context prints a "--" line between groups of lines that are not
	// adjacent (grep style only).
	Context bool
}

// Write formats matches to w.
func Write(w io.Writer, matches []search.Match, opts Options) error {
	groups := opts.Context && opts.Style == StyleGrep && !opts.OnlyMatching
	for i, m := range matches {
		if groups && i > 0 && !adjacent(matches[i-1], m) {
			if _, err := io.WriteString(w, sepStyle.Sprint("--")+"\n"); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, FormatMatch(m, opts)); err != nil {
			return err
		}
	}
	return nil
}

// adjacent reports whether next starts on the line right after prev ends.
func adjacent(prev, next search.Match) bool {
	if prev.Filename != next.Filename {
		return false
	}
	last := prev.Line
	if len(prev.After) > 0 {
		last = prev.After[len(prev.After)-1].Number
	}
	first := next.Line
	if len(next.Before) > 0 {
		first = next.Before[0].Number
	}
	return first == last+1
}

// FormatMatch renders a single match, newline terminated.
func FormatMatch(m search.Match, opts Options) string {
	if opts.Style == StyleSnippet {
		return formatSnippet(m)
	}

	prefix := linePrefix(m.Filename, m.Line, ":", opts)

	var builder strings.Builder
	if opts.OnlyMatching {
		for _, span := range m.Spans {
			builder.WriteString(prefix)
			builder.WriteString(matchStyle.Sprint(m.Text[span[0]:span[1]]))
			builder.WriteString("\n")
		}
		return builder.String()
	}

	writeContext(&builder, m.Filename, m.Before, opts)
	builder.WriteString(prefix)
	builder.WriteString(highlight(m.Text, m.Spans))
	builder.WriteString("\n")
	writeContext(&builder, m.Filename, m.After, opts)
	return builder.String()
}

// linePrefix renders the "file:line:" prefix. Context lines use "-" as the
// separator, like grep.
func linePrefix(filename string, line int, sep string, opts Options) string {
	var prefix strings.Builder
	if opts.WithFilename {
		prefix.WriteString(fileStyle.Sprint(filename))
		prefix.WriteString(sepStyle.Sprint(sep))
	}
	if opts.LineNumber {
		prefix.WriteString(lineStyle.Sprint(line))
		prefix.WriteString(sepStyle.Sprint(sep))
	}
	return prefix.String()
}

func writeContext(builder *strings.Builder, filename string, lines []search.Line, opts Options) {
	for _, l := range lines {
		builder.WriteString(linePrefix(filename, l.Number, "-", opts))
		builder.WriteString(l.Text)
		builder.WriteString("\n")
	}
}

func highlight(text string, spans [][2]int) string {
	var builder strings.Builder
	last := 0
	for _, span := range spans {
		builder.WriteString(text[last:span[0]])
		builder.WriteString(matchStyle.Sprint(text[span[0]:span[1]]))
		last = span[1]
	}
	builder.WriteString(text[last:])
	return builder.String()
}

/***** Snippet *****/

type snippetData struct {
	Filename string
	Line     int
	Column   int
	Padding  string
	Text     string
	Spans    [][2]int
	Before   []search.Line
	After    []search.Line
}

const snippetTemplate = `{{header .Filename .Line .Column .Padding}}
{{snippet .Line .Text .Padding .Before}}
{{underline .Text .Spans .Padding}}{{trailing .After .Padding}}
`

var snippetTmpl = template.Must(template.New("match").Funcs(template.FuncMap{
	"header":    header,
	"snippet":   codeSnippet,
	"underline": underline,
	"trailing":  trailing,
}).Parse(snippetTemplate))

func formatSnippet(m search.Match) string {
	column := 1
	if len(m.Spans) > 0 {
		column = utf8.RuneCountInString(m.Text[:m.Spans[0][0]]) + 1
	}
	last := m.Line
	if len(m.After) > 0 {
		last = m.After[len(m.After)-1].Number
	}
	data := snippetData{
		Filename: m.Filename,
		Line:     m.Line,
		Column:   column,
		Padding:  strings.Repeat(" ", len(fmt.Sprint(last))+1),
		Text:     m.Text,
		Spans:    m.Spans,
		Before:   m.Before,
		After:    m.After,
	}

	var buf bytes.Buffer
	if err := snippetTmpl.Execute(&buf, data); err != nil {
		return fmt.Sprintf("Error formatting match: %v\n", err)
	}
	return buf.String()
}

func header(filename string, line, column int, padding string) string {
	return lineStyle.Sprintf("%s--> ", padding[1:]) + fileStyle.Sprintf("%s:%d:%d", filename, line, column)
}

func codeSnippet(line int, text, padding string, before []search.Line) string {
	var builder strings.Builder
	builder.WriteString(lineStyle.Sprintf("%s|\n", padding))
	for _, l := range before {
		builder.WriteString(numbered(l.Number, l.Text, padding))
		builder.WriteString("\n")
	}
	builder.WriteString(numbered(line, text, padding))
	return builder.String()
}

func trailing(after []search.Line, padding string) string {
	var builder strings.Builder
	for _, l := range after {
		builder.WriteString("\n")
		builder.WriteString(numbered(l.Number, l.Text, padding))
	}
	return builder.String()
}

// numbered renders a source line with its number right-aligned in the
// gutter.
func numbered(line int, text, padding string) string {
	return lineStyle.Sprintf("%*d | ", len(padding)-1, line) + expandTabs(text)
}

func underline(text string, spans [][2]int, padding string) string {
	var builder strings.Builder
	builder.WriteString(lineStyle.Sprintf("%s| ", padding))

	col := 0
	for _, span := range spans {
		start := visualWidth(text[:span[0]])
		end := visualWidth(text[:span[1]])
		if start > col {
			builder.WriteString(strings.Repeat(" ", start-col))
		}
		builder.WriteString(matchStyle.Sprint(strings.Repeat("^", max(end-start, 1))))
		col = max(end, start+1)
	}
	return builder.String()
}

// visualWidth returns the number of terminal cells s occupies, with tabs
// expanded to tabWidth and wide characters counted twice.
func visualWidth(s string) int {
	width := 0
	state := -1
	for len(s) > 0 {
		var cluster string
		var w int
		cluster, s, w, state = uniseg.FirstGraphemeClusterInString(s, state)
		if cluster == "\t" {
			width += tabWidth - width%tabWidth
			continue
		}
		width += w
	}
	return width
}

func expandTabs(line string) string {
	var builder strings.Builder
	col := 0
	state := -1
	for len(line) > 0 {
		var cluster string
		var w int
		cluster, line, w, state = uniseg.FirstGraphemeClusterInString(line, state)
		if cluster == "\t" {
			spaces := tabWidth - col%tabWidth
			builder.WriteString(strings.Repeat(" ", spaces))
			col += spaces
			continue
		}
		builder.WriteString(cluster)
		col += w
	}
	return builder.String()
}
