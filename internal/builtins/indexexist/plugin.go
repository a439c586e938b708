// Package indexexist implements the truthiness probe behind Wenyan's
// '中有陽乎' operator: does any item in a container evaluate truthy. A
// plain exported function that internal/eval calls directly, since there
// is no bytecode opcode space to register into.
package indexexist

// HasTrue reports whether any element of truths is true. truths is the
// caller's pre-computed per-item truthiness (internal/eval maps its
// *Value items through its own Truthy before calling in, so this package
// never needs to know eval's Value representation).
func HasTrue(truths []bool) bool {
	for _, t := range truths {
		if t {
			return true
		}
	}
	return false
}
