package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/peterh/liner"
)

var (
	yellow = color.New(color.FgYellow).SprintFunc()
	dim    = color.New(color.Faint).SprintFunc()
)

// runREPL reads one YAML expression fragment per line, type-checks it in
// isolation, and prints its resolved type (or its diagnostics). Unlike
// the teacher's stateful evaluator REPL, each fragment gets a fresh
// Analyzer — there is no persistent environment to carry bindings
// between lines, matching the "one fragment at a time" scope of
// internal/source.ParseFragment.
func runREPL() {
	line := liner.NewLiner()
	defer line.Close()
	line.SetMultiLineMode(false)

	historyFile := filepath.Join(os.TempDir(), ".llamac_history")
	if f, err := os.Open(historyFile); err == nil {
		_, _ = line.ReadHistory(f)
		f.Close()
	}

	fmt.Printf("%s\n", color.New(color.Bold).Sprint("llamac repl"))
	fmt.Println(dim("Type a YAML expression fragment, or :quit to exit."))
	fmt.Println()

	for {
		input, err := line.Prompt("llamac> ")
		if err == io.EOF {
			fmt.Println(color.New(color.FgGreen).Sprint("Goodbye!"))
			break
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", red("Error"), err)
			continue
		}
		if input == ":quit" || input == ":q" {
			break
		}
		if input == "" {
			continue
		}
		line.AppendHistory(input)

		ty, errs, err := checkFragment([]byte(input))
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", red("Error"), err)
			continue
		}
		if len(errs) > 0 {
			for _, d := range errs {
				fmt.Println(red(d.String()))
			}
			continue
		}
		fmt.Printf("%s %s\n", yellow("it :"), ty)
	}

	if f, err := os.Create(historyFile); err == nil {
		_, _ = line.WriteHistory(f)
		f.Close()
	}
}
