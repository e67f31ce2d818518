// Package machine implements the STG abstract machine: the heap and
// environments, the three stacks, machine state, the compiler
// (program loader), and the evaluator's step function.
package machine

import "strconv"

// Addr is an opaque heap index. Addresses are never reused; the heap
// is append-only.
type Addr int

// Value is either a heap address or a primitive integer. Values live
// on the argument stack, inside closure free-variable slots, and
// inside local environments. It is a closed sum of concrete structs,
// never interface{}.
type Value interface {
	isValue()
	String() string
}

// ValueAddr is a Value that points into the heap.
type ValueAddr struct {
	Addr Addr
}

func (ValueAddr) isValue() {}
func (v ValueAddr) String() string {
	return "Addr#" + strconv.Itoa(int(v.Addr))
}

// ValuePrimInt is a Value holding an unboxed integer.
type ValuePrimInt struct {
	Int int64
}

func (ValuePrimInt) isValue() {}
func (v ValuePrimInt) String() string {
	return strconv.FormatInt(v.Int, 10)
}
