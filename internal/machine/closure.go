package machine

import "github.com/cwbudde/go-stg/internal/ast"

// Closure is a lambda form together with a vector of values, one per
// free-variable slot in the lambda, captured at allocation time. A
// closure never holds references into the environment that created
// it — only values — which is what makes update-in-place and sharing
// correct.
type Closure struct {
	Lambda     *ast.LambdaForm
	FreeValues []Value
}
