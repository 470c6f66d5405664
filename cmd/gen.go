package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnoswap-labs/hmgrep"
	"github.com/gnoswap-labs/hmgrep/internal/pattern"
	"github.com/gnoswap-labs/hmgrep/internal/table"
)

type genFormat int

const (
	formatList genFormat = iota
	formatRegex
	formatCount
	formatJSON
)

var (
	genRegex      bool
	genCount      bool
	genJSON       bool
	genIgnoreCase bool
)

// genCmd: hmgrep gen PATTERN
var genCmd = &cobra.Command{
	Use:   "gen PATTERN",
	Short: "Print the homoglyph expansion of a pattern",
	Long: `Print every literal variant of PATTERN, one per line.
With --regex the expansion is printed as a single regular expression instead.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		exp, err := newExpander()
		if err != nil {
			if errors.Is(err, table.ErrAssetLoad) {
				logger.Fatal("Error loading tables", zap.Error(err))
			}
			return err
		}

		format := formatList
		switch {
		case genJSON:
			format = formatJSON
		case genCount:
			format = formatCount
		case genRegex:
			format = formatRegex
		}
		return runGen(cmd.OutOrStdout(), exp, args[0], format, genIgnoreCase)
	},
}

func init() {
	genCmd.Flags().BoolVarP(&genRegex, "regex", "e", false, "Print a regular expression instead of the literal list")
	genCmd.Flags().BoolVar(&genCount, "count", false, "Print the number of literal candidates")
	genCmd.Flags().BoolVar(&genJSON, "json", false, "Print pattern, regex and candidates as JSON")
	genCmd.Flags().BoolVarP(&genIgnoreCase, "ignore-case", "i", false, "Make the printed regular expression case-insensitive")
}

type genResult struct {
	Pattern    string   `json:"pattern"`
	Regex      string   `json:"regex"`
	Count      *uint64  `json:"count,omitempty"`
	Candidates []string `json:"candidates,omitempty"`
}

// runGen prints the expansion of text. ignoreCase only affects the regex,
// the candidate list is printed as is.
func runGen(w io.Writer, exp *hmgrep.Expander, text string, format genFormat, ignoreCase bool) error {
	regex := func() (string, error) {
		re, err := exp.Regex(text)
		if err != nil || !ignoreCase {
			return re, err
		}
		return "(?i)" + re, nil
	}

	switch format {
	case formatRegex:
		re, err := regex()
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, re)
		return err

	case formatCount:
		n, err := exp.Count(text)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, n)
		return err

	case formatJSON:
		re, err := regex()
		if err != nil {
			return err
		}
		result := genResult{Pattern: text, Regex: re}
		if n, err := exp.Count(text); err == nil {
			result.Count = &n
		}
		// the regex is still useful when the list is too large to print
		candidates, err := exp.List(text)
		switch {
		case errors.Is(err, pattern.ErrResourceExhausted):
		case err != nil:
			return err
		default:
			result.Candidates = candidates
		}

		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		return enc.Encode(result)

	default:
		candidates, err := exp.List(text)
		if err != nil {
			return err
		}
		if len(candidates) == 0 {
			return nil
		}
		_, err = fmt.Fprintln(w, strings.Join(candidates, "\n"))
		return err
	}
}
