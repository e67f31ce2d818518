package machine

import "github.com/cwbudde/go-stg/internal/stgerr"

// Heap is an append-addressed mapping from Addr to Closure. It is a
// persistent value type: Allocate and Update both return a new Heap
// rather than mutating in place, so that a MachineState captured at
// one step (e.g. in a trace) is unaffected by later updates to the
// same addresses, keeping each trace entry an honest snapshot.
type Heap struct {
	closures []Closure
}

// NewHeap returns an empty heap.
func NewHeap() Heap {
	return Heap{}
}

// Len reports the number of allocated closures.
func (h Heap) Len() int {
	return len(h.closures)
}

// Allocate appends a new closure and returns the heap with it added
// plus its fresh address.
func (h Heap) Allocate(c Closure) (Heap, Addr) {
	next := make([]Closure, len(h.closures)+1)
	copy(next, h.closures)
	next[len(h.closures)] = c
	return Heap{closures: next}, Addr(len(h.closures))
}

// Lookup returns the closure at addr, or HeapLookupFailed if addr was
// never allocated.
func (h Heap) Lookup(addr Addr) (Closure, error) {
	if addr < 0 || int(addr) >= len(h.closures) {
		return Closure{}, &stgerr.HeapLookupFailedError{Addr: int(addr), HeapSize: len(h.closures)}
	}
	return h.closures[addr], nil
}

// Update overwrites the closure at addr, which must already exist
// (HeapUpdateHasNoPreviousValue otherwise).
func (h Heap) Update(addr Addr, c Closure) (Heap, error) {
	if addr < 0 || int(addr) >= len(h.closures) {
		return h, &stgerr.HeapUpdateHasNoPreviousValueError{Addr: int(addr)}
	}
	next := make([]Closure, len(h.closures))
	copy(next, h.closures)
	next[addr] = c
	return Heap{closures: next}, nil
}
