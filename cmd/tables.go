package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnoswap-labs/hmgrep/internal/table"
	"github.com/gnoswap-labs/hmgrep/internal/tablegen"
)

var (
	tablesOutput  string
	tablesBase    string
	tablesCodes   string
	tablesVersion string
)

var tablesCmd = &cobra.Command{
	Use:   "tables",
	Short: "Inspect and regenerate the equivalence tables",
}

// tablesGenerateCmd: hmgrep tables generate -o FILE
var tablesGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate an equivalence table asset",
	Long: `Generate a table asset from Unicode data. Homoglyph classes are derived
from UTS #39 skeletons and merged into the classes of the base asset (the
loaded tables by default). Kana and width tables are always regenerated.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		base, err := loadBaseAsset(tablesBase)
		if err != nil {
			return err
		}
		if tablesCodes != "" {
			extra, err := readCharCodes(tablesCodes)
			if err != nil {
				return err
			}
			base.Homoglyph = tablegen.Merge(base.Homoglyph, extra)
		}

		version := tablesVersion
		if version == "" {
			version = base.Version
		}
		asset := tablegen.Build(base, version)
		if _, err := asset.Build(); err != nil {
			return err
		}

		var buf bytes.Buffer
		if err := asset.Encode(&buf); err != nil {
			return err
		}
		if tablesOutput == "" || tablesOutput == "-" {
			_, err = cmd.OutOrStdout().Write(buf.Bytes())
			return err
		}
		if err := os.WriteFile(tablesOutput, buf.Bytes(), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", tablesOutput, err)
		}
		logger.Info("Wrote tables",
			zap.String("file", tablesOutput),
			zap.Int("homoglyph", len(asset.Homoglyph)),
			zap.Int("kana", len(asset.Kana)),
			zap.Int("width", len(asset.Width)))
		return nil
	},
}

// tablesLookupCmd: hmgrep tables lookup CHAR
var tablesLookupCmd = &cobra.Command{
	Use:   "lookup CHAR",
	Short: "Show the classes containing a character",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tables, err := cfg.LoadTables()
		if err != nil {
			return err
		}
		return runLookup(cmd.OutOrStdout(), tables, args[0])
	},
}

// tablesInfoCmd: hmgrep tables info
var tablesInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show the version and size of the loaded tables",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		tables, err := cfg.LoadTables()
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "version: %s\n", tables.Version)
		for _, t := range []*table.Table{tables.Homoglyph, tables.Kana, tables.Width} {
			fmt.Fprintf(w, "%s: %d classes\n", t.Name(), t.Len())
		}
		return nil
	},
}

func init() {
	flags := tablesGenerateCmd.Flags()
	flags.StringVarP(&tablesOutput, "output", "o", "", "Output file (stdout when empty or -)")
	flags.StringVar(&tablesBase, "base", "", "Asset whose homoglyph classes are kept and extended")
	flags.StringVar(&tablesCodes, "codes", "", "Extra homoglyph classes as comma-separated hex codepoints, one class per line")
	flags.StringVar(&tablesVersion, "version", "", "Version written to the asset (defaults to the base version)")

	tablesCmd.AddCommand(tablesGenerateCmd)
	tablesCmd.AddCommand(tablesLookupCmd)
	tablesCmd.AddCommand(tablesInfoCmd)
}

func loadBaseAsset(path string) (table.Asset, error) {
	if path != "" {
		return table.ReadAsset(path)
	}
	tables, err := cfg.LoadTables()
	if err != nil {
		return table.Asset{}, err
	}
	return tables.Asset(), nil
}

func readCharCodes(path string) ([]table.Class, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	classes, err := tablegen.ParseCharCodes(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return classes, nil
}

func runLookup(w io.Writer, tables *table.Set, char string) error {
	if char == "" {
		return errors.New("empty character")
	}
	found := false
	for _, t := range []*table.Table{tables.Homoglyph, tables.Kana, tables.Width} {
		class, ok := t.Lookup(char)
		if !ok {
			continue
		}
		found = true
		fmt.Fprintf(w, "%s: %s\n", t.Name(), formatClass(class))
	}
	if !found {
		fmt.Fprintf(w, "%s: no equivalents\n", char)
	}
	return nil
}

func formatClass(class table.Class) string {
	parts := make([]string, len(class))
	for i, member := range class {
		var codes []string
		for _, r := range member {
			codes = append(codes, fmt.Sprintf("U+%04X", r))
		}
		parts[i] = fmt.Sprintf("%s (%s)", member, strings.Join(codes, " "))
	}
	return strings.Join(parts, ", ")
}
