package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/gnoswap-labs/hmgrep"
	"github.com/gnoswap-labs/hmgrep/config"
)

const defaultTimeout = 5 * time.Minute

// errNoMatch makes the process exit with status 1 without printing an
// error, like grep does when nothing matched.
var errNoMatch = errors.New("no match")

var (
	cfgFile string
	timeout time.Duration
	verbose bool

	logger *zap.Logger
	cfg    config.Config
)

// expansion flags shared by gen and grep
var (
	literal       bool
	rawRegex      bool
	kana          bool
	cjkWidth      bool
	grapheme      bool
	nfc           bool
	nonCapturing  bool
	maxCandidates int
)

var rootCmd = &cobra.Command{
	Use:           "hmgrep",
	Short:         "hmgrep - search text for a pattern and its homoglyph variants",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		logger, err = newLogger(verbose)
		if err != nil {
			return fmt.Errorf("create logger: %w", err)
		}

		cfg, err = config.Load(cfgFile)
		if err != nil {
			return err
		}
		applyExpansionFlags(cmd.Flags(), &cfg.Expansion)
		return nil
	},
}

// Execute runs the command line and returns the process exit status.
func Execute() int {
	err := rootCmd.Execute()
	if logger != nil {
		_ = logger.Sync()
	}

	switch {
	case err == nil:
		return 0
	case errors.Is(err, errNoMatch):
		return 1
	default:
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 2
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&cfgFile, "config", "c", config.DefaultPath, "Configuration file")
	flags.DurationVar(&timeout, "timeout", defaultTimeout, "Timeout for the whole run")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	flags.BoolVarP(&literal, "literal", "k", true, "Treat the pattern as literal text")
	flags.BoolVarP(&rawRegex, "raw-regex", "R", false, "Treat the pattern as a regular expression (same as --literal=false)")
	flags.BoolVarP(&kana, "japanese-kana", "j", false, "Match hiragana and katakana interchangeably")
	flags.BoolVarP(&cjkWidth, "cjk-width", "W", false, "Match full-width and half-width forms interchangeably")
	flags.BoolVar(&grapheme, "grapheme", false, "Expand per grapheme cluster instead of per codepoint")
	flags.BoolVar(&nfc, "nfc", false, "Normalize the pattern to NFC first")
	flags.BoolVar(&nonCapturing, "non-capturing", false, "Emit non-capturing groups")
	flags.IntVar(&maxCandidates, "max-candidates", hmgrep.DefaultMaxCandidates, "Maximum number of literal candidates (negative disables the limit)")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(genCmd)
	rootCmd.AddCommand(grepCmd)
	rootCmd.AddCommand(tablesCmd)
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// applyExpansionFlags overrides the configuration with the flags given on
// the command line.
func applyExpansionFlags(flags *pflag.FlagSet, expansion *config.ExpansionConfig) {
	if flags.Changed("literal") {
		expansion.Literal = literal
	}
	if flags.Changed("raw-regex") {
		expansion.Literal = !rawRegex
	}
	if flags.Changed("japanese-kana") {
		expansion.Kana = kana
	}
	if flags.Changed("cjk-width") {
		expansion.CJKWidth = cjkWidth
	}
	if flags.Changed("grapheme") {
		expansion.Grapheme = grapheme
	}
	if flags.Changed("nfc") {
		expansion.Normalize = nfc
	}
	if flags.Changed("non-capturing") {
		expansion.NonCapturing = nonCapturing
	}
	if flags.Changed("max-candidates") {
		expansion.MaxCandidates = maxCandidates
	}
}

func newExpander() (*hmgrep.Expander, error) {
	tables, err := cfg.LoadTables()
	if err != nil {
		return nil, err
	}
	logger.Debug("Loaded tables",
		zap.String("version", tables.Version),
		zap.Int("homoglyph", tables.Homoglyph.Len()),
		zap.Int("kana", tables.Kana.Len()),
		zap.Int("width", tables.Width.Len()))
	return hmgrep.NewWithTables(tables, cfg.Expansion.Options()), nil
}
