package cmd

import (
	"fmt"
	"os"

	"github.com/cwbudde/go-stg/internal/printer"
	"github.com/cwbudde/go-stg/pkg/stg"
	"github.com/spf13/cobra"
)

var (
	runEvalExpr string
	dumpAST     bool
	dumpState   bool
	maxSteps    int
)

var runCmd = &cobra.Command{
	Use:   "run [file]",
	Short: "Run an STG file or expression",
	Long: `Execute an STG program from a file, stdin, or inline source,
printing the value the machine halts on.

Examples:
  # Run a program file
  stg run program.stg

  # Evaluate inline source
  stg run -e "define main = {} \u {} -> plus# {2, 3}"

  # Run with AST dump (for debugging)
  stg run --dump-ast program.stg

  # Print the full final machine state instead of just the value
  stg run --dump-state program.stg`,
	Args: cobra.MaximumNArgs(1),
	RunE: runProgram,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runEvalExpr, "eval", "e", "", "evaluate inline source instead of reading from file")
	runCmd.Flags().BoolVar(&dumpAST, "dump-ast", false, "dump the parsed AST before running (for debugging)")
	runCmd.Flags().BoolVar(&dumpState, "dump-state", false, "print the full final machine state")
	runCmd.Flags().IntVar(&maxSteps, "max-steps", 1_000_000, "abort after this many machine transitions")
}

func runProgram(cmd *cobra.Command, args []string) error {
	input, filename, err := readSource(runEvalExpr, args)
	if err != nil {
		return err
	}

	engine, err := stg.New(stg.WithMaxSteps(maxSteps))
	if err != nil {
		return err
	}

	program, err := engine.Compile(input, filename)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return fmt.Errorf("compilation failed")
	}

	if dumpAST {
		fmt.Println("AST:")
		fmt.Println(program.AST().String())
		fmt.Println()
	}

	verbose, _ := cmd.Flags().GetBool("verbose")
	if verbose {
		fmt.Fprintf(os.Stderr, "Running %s\n", filename)
	}

	result, err := engine.RunProgram(program)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Runtime error: %s\n", err)
		return fmt.Errorf("execution failed")
	}

	if dumpState {
		fmt.Print(printer.State(result.State))
		return nil
	}

	printResult(result)
	return nil
}

func printResult(result *stg.Result) {
	if n, ok := result.Int(); ok {
		fmt.Println(n)
		return
	}
	if con, values, ok := result.Constructor(); ok {
		parts := ""
		for i, v := range values {
			if i > 0 {
				parts += ", "
			}
			parts += v.String()
		}
		fmt.Printf("%s {%s}\n", con, parts)
		return
	}
	fmt.Println(result.State.Code.String())
}
