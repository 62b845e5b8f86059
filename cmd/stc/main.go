// Command stc is the thin cobra-based front end for the ST semantic
// core (SPEC_FULL §6.4): it reads a source file, drives lex → parse →
// the pipeline, and prints either diagnostics or a dump. Not a
// compiler in the object-code sense — see runPipeline in
// cmd/stc/cmd/pipeline.go for what each subcommand actually runs.
package main

import (
	"fmt"
	"os"

	"github.com/go-stc/stc/cmd/stc/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
