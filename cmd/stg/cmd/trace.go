package cmd

import (
	"fmt"
	"os"

	"github.com/cwbudde/go-stg/internal/machine"
	"github.com/cwbudde/go-stg/internal/printer"
	"github.com/cwbudde/go-stg/pkg/stg"
	"github.com/spf13/cobra"
)

var (
	traceEvalExpr string
	traceMaxSteps int
	traceLastOnly bool
)

var traceCmd = &cobra.Command{
	Use:   "trace [file]",
	Short: "Run an STG program and print every machine state",
	Long: `Execute an STG program step by step, printing each intermediate
machine state (code, argument stack, return stack, update stack, heap
size) in transition order.

Examples:
  # Trace a program file
  stg trace program.stg

  # Trace inline source
  stg trace -e "define main = {} \u {} -> plus# {2, 3}"

  # Print only the final state of the trace
  stg trace --last program.stg`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTrace,
}

func init() {
	rootCmd.AddCommand(traceCmd)

	traceCmd.Flags().StringVarP(&traceEvalExpr, "eval", "e", "", "trace inline source instead of reading from file")
	traceCmd.Flags().IntVar(&traceMaxSteps, "max-steps", 1_000_000, "abort after this many machine transitions")
	traceCmd.Flags().BoolVar(&traceLastOnly, "last", false, "print only the final state")
}

func runTrace(_ *cobra.Command, args []string) error {
	input, _, err := readSource(traceEvalExpr, args)
	if err != nil {
		return err
	}

	engine, err := stg.New(stg.WithMaxSteps(traceMaxSteps))
	if err != nil {
		return err
	}

	states, err := engine.Trace(input)
	if err != nil {
		// the states gathered before the failure are still worth
		// printing; the error explains where the trace stopped
		if len(states) > 0 {
			printTrace(states)
		}
		fmt.Fprintf(os.Stderr, "Runtime error: %s\n", err)
		return fmt.Errorf("execution failed")
	}

	printTrace(states)
	return nil
}

func printTrace(states []machine.State) {
	if traceLastOnly {
		fmt.Print(printer.State(states[len(states)-1]))
		return
	}
	fmt.Print(printer.Trace(states))
}
