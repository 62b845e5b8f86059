package cmd

import (
	"fmt"
	"os"

	"github.com/go-stc/stc/internal/ir/dump"
	"github.com/go-stc/stc/internal/lexer"
	"github.com/spf13/cobra"
)

type tokenDump struct {
	Type    string `json:"type" yaml:"type"`
	Literal string `json:"literal" yaml:"literal"`
	Line    int    `json:"line" yaml:"line"`
	Column  int    `json:"column" yaml:"column"`
}

var lexCmd = &cobra.Command{
	Use:   "lex [file]",
	Short: "Tokenize a Structured Text source file",
	Long: `Tokenize a Structured Text source file (or stdin) and print the
resulting token stream.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLex,
}

func init() {
	rootCmd.AddCommand(lexCmd)
}

func runLex(cmd *cobra.Command, args []string) error {
	r, err := runPipeline(cmd, args, stageLex)
	if err != nil {
		return err
	}

	var tokens []tokenDump
	l := lexer.New(r.Source)
	for {
		tok := l.NextToken()
		tokens = append(tokens, tokenDump{
			Type:    tok.Type.String(),
			Literal: tok.Literal,
			Line:    tok.Position.Line,
			Column:  tok.Position.Column,
		})
		if tok.Type == lexer.EOF {
			break
		}
	}

	format, _ := cmd.Flags().GetString("format")
	if format == "text" {
		for _, t := range tokens {
			fmt.Printf("%-20s %q @%d:%d\n", t.Type, t.Literal, t.Line, t.Column)
		}
		return nil
	}
	return dump.Write(os.Stdout, format, tokens)
}
