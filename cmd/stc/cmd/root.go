package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	// Version information (set by build flags)
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "stc",
	Short: "IEC 61131-3 Structured Text semantic core",
	Long: `stc drives the Structured Text semantic core through each of
its pipeline phases: lexing, parsing, indexing, annotation, lowering
and validation.

This is a semantic core, not a full compiler: it has no code
generator and only a minimal recursive-descent parser covering the
language shapes its pipeline needs to exercise (surface grammar
completeness is a non-goal). Each subcommand stops at one phase and
prints either the accumulated diagnostics or a --format dump of that
phase's output.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().String("encoding", "", "source encoding (e.g. utf-8, utf-16, windows-1252); auto-detected from BOM when omitted")
	rootCmd.PersistentFlags().String("format", "text", "dump format: text|json|yaml")
	rootCmd.PersistentFlags().String("emit", "ast", "what to dump: ast|ast-lowered|index|annotations")
}
