package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Version information (set by build flags)
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "stg",
	Short: "Spineless Tagless G-machine interpreter",
	Long: `go-stg is an interpreter for the Spineless Tagless G-machine (STG),
the abstract machine underlying compiled lazy functional programs.

Given an STG source program it tokenizes it, parses it into an AST,
compiles the top-level bindings into heap closures, and runs the
machine step by step until it halts on a value or a structured error.

Programs are a sequence of 'define name = {free} \u|\n {bound} -> expr'
bindings; execution starts by entering the binding named main.`,
	Version: Version,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))

	// Global flags
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
}

// readSource resolves the common input convention shared by every
// subcommand: -e inline source wins, then a file argument, then stdin.
// It returns the source text and a display name for error messages.
func readSource(evalExpr string, args []string) (string, string, error) {
	if evalExpr != "" {
		return evalExpr, "<eval>", nil
	}
	if len(args) == 1 {
		content, err := os.ReadFile(args[0])
		if err != nil {
			return "", "", fmt.Errorf("failed to read file %s: %w", args[0], err)
		}
		return string(content), args[0], nil
	}
	content, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return string(content), "<stdin>", nil
}
