package cmd

import (
	"fmt"
	"os"

	"github.com/cwbudde/go-stg/internal/ast"
	"github.com/cwbudde/go-stg/internal/errors"
	"github.com/cwbudde/go-stg/internal/lexer"
	"github.com/cwbudde/go-stg/internal/parser"
	"github.com/spf13/cobra"
)

var (
	parseEvalExpr string
	parseDumpAST  bool
)

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Parse STG source code and display the AST",
	Long: `Parse STG source code and display the Abstract Syntax Tree (AST).

If no file is provided, reads from stdin.
Use -e to parse inline source from the command line.
Use --dump-ast to show the full AST structure instead of the
round-tripped surface syntax.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)

	parseCmd.Flags().StringVarP(&parseEvalExpr, "eval", "e", "", "parse inline source instead of reading from file")
	parseCmd.Flags().BoolVar(&parseDumpAST, "dump-ast", false, "dump the full AST structure")
}

func runParse(_ *cobra.Command, args []string) error {
	input, filename, err := readSource(parseEvalExpr, args)
	if err != nil {
		return err
	}

	l := lexer.New(input)
	p := parser.New(l)
	program := p.ParseProgram()

	if len(p.Errors()) > 0 {
		srcErrs := errors.FromStrings(p.Errors(), input, filename)
		fmt.Fprintln(os.Stderr, errors.FormatAll(srcErrs, true))
		return fmt.Errorf("parsing failed with %d error(s)", len(p.Errors()))
	}

	if parseDumpAST {
		fmt.Println("Abstract Syntax Tree:")
		fmt.Println("=====================")
		for _, b := range program.Bindings {
			dumpBinding(b)
		}
	} else {
		fmt.Println(program.String())
	}

	return nil
}

func dumpBinding(b *ast.Binding) {
	fmt.Printf("Binding %s\n", b.Name)
	lam := b.Lambda
	fmt.Printf("  free:  %v\n", lam.FreeVars)
	fmt.Printf("  flag:  %s\n", lam.UpdateFlag)
	fmt.Printf("  bound: %v\n", lam.BoundVars)
	fmt.Printf("  body:  ")
	dumpExpr(lam.Body, 1)
}

func dumpExpr(expr ast.Expression, indent int) {
	pad := ""
	for i := 0; i < indent; i++ {
		pad += "  "
	}

	switch e := expr.(type) {
	case *ast.FnApplication:
		fmt.Printf("FnApplication %s %s\n", e.Fn, atomList(e.Args))
	case *ast.ConstructorExpr:
		fmt.Printf("Constructor %s %s\n", e.Name, atomList(e.Args))
	case *ast.IntExpr:
		fmt.Printf("Int %d\n", e.Value)
	case *ast.LetExpr:
		kw := "Let"
		if e.IsRecursive {
			kw = "Letrec"
		}
		fmt.Printf("%s (%d bindings)\n", kw, len(e.Bindings))
		for _, b := range e.Bindings {
			fmt.Printf("%s%s = %s\n", pad, b.Name, b.Lambda.String())
		}
		fmt.Printf("%sin ", pad)
		dumpExpr(e.Body, indent+1)
	case *ast.CaseExpr:
		fmt.Printf("Case\n")
		fmt.Printf("%sscrutinee: ", pad)
		dumpExpr(e.Scrutinee, indent+1)
		for _, alt := range e.Alts {
			fmt.Printf("%salt: %s\n", pad, alt.String())
		}
	default:
		fmt.Printf("%T: %v\n", expr, expr)
	}
}

func atomList(atoms []ast.Atom) string {
	out := "{"
	for i, a := range atoms {
		if i > 0 {
			out += ", "
		}
		out += a.String()
	}
	return out + "}"
}
