package machine

import (
	"strings"

	"github.com/cwbudde/go-stg/internal/stgerr"
)

// intrinsicFn computes a primitive binary operation over two unboxed
// integers, returning the arithmetic error for division.
type intrinsicFn func(a, b int64) (int64, error)

// intrinsics is the closed table of STG primop names: each takes
// exactly two ValuePrimInt arguments and produces a ValuePrimInt
// result directly, without allocating a closure or consulting the
// heap — these never appear as thunks.
var intrinsics = map[string]intrinsicFn{
	"plus#": func(a, b int64) (int64, error) { return a + b, nil },
	"minus#": func(a, b int64) (int64, error) { return a - b, nil },
	"times#": func(a, b int64) (int64, error) { return a * b, nil },
	"divide#": func(a, b int64) (int64, error) {
		if b == 0 {
			return 0, &stgerr.DivisionByZeroError{}
		}
		return a / b, nil
	},
}

func isIntrinsic(name string) bool {
	_, ok := intrinsics[name]
	return ok
}

// isIntrinsicName reports whether name follows the primop naming
// convention (trailing '#'). Such names are reserved: they never
// resolve through the environments, so an unknown one is reported as
// UnknownIntrinsic rather than EnvLookupFailed.
func isIntrinsicName(name string) bool {
	return strings.HasSuffix(name, "#")
}
