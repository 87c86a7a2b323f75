// Command llamac type-checks Llama program fixtures.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/fatih/color"

	"github.com/llamalang/llamac/internal/analyzer"
	"github.com/llamalang/llamac/internal/ast"
	"github.com/llamalang/llamac/internal/diag"
	"github.com/llamalang/llamac/internal/source"
)

var (
	Version = "dev"

	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

func main() {
	var (
		versionFlag = flag.Bool("version", false, "Print version information")
		helpFlag    = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *versionFlag {
		fmt.Printf("%s %s\n", bold("llamac"), Version)
		return
	}

	if *helpFlag || flag.NArg() == 0 {
		printHelp()
		return
	}

	switch command := flag.Arg(0); command {
	case "check":
		if flag.NArg() < 2 {
			fmt.Fprintf(os.Stderr, "%s: missing file argument\n", red("Error"))
			fmt.Println("Usage: llamac check <file.yaml>")
			os.Exit(1)
		}
		os.Exit(runCheck(flag.Arg(1)))
	case "repl":
		runREPL()
	default:
		fmt.Fprintf(os.Stderr, "%s: unknown command %q\n", red("Error"), command)
		printHelp()
		os.Exit(1)
	}
}

func printHelp() {
	fmt.Println(bold("llamac") + " - Llama semantic analyzer")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  llamac check <file.yaml>   type-check a program fixture")
	fmt.Println("  llamac repl                interactively type-check expression fragments")
	fmt.Println()
	fmt.Println("Flags:")
	flag.PrintDefaults()
}

// runCheck loads, analyzes, and reports on a single program fixture. It
// returns the process exit code: 0 on success, 1 if any error was
// reported.
func runCheck(path string) int {
	logger := diag.NewConsoleLogger()

	prog, err := source.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", red("Error"), err)
		return 1
	}

	a := analyzer.New(logger)
	a.Analyze(prog)

	if logger.Success() {
		fmt.Println(green("OK"))
		return 0
	}
	return 1
}

// checkFragment analyzes a single YAML expression fragment (wrapped as
// `let it = <expr>` by source.ParseFragment) and returns the resolved
// type of `it`, or the diagnostics produced while analyzing it.
func checkFragment(data []byte) (ast.Type, []diag.Diagnostic, error) {
	prog, err := source.ParseFragment(data)
	if err != nil {
		return nil, nil, err
	}

	logger := diag.NewMockLogger()
	a := analyzer.New(logger)
	a.Analyze(prog)

	letDef := prog.Defs[0].(*ast.LetDef)
	it := letDef.Defs[0].(*ast.ConstantDef)
	return it.GetType(), logger.Errors, nil
}
