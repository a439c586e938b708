// Package valueexist implements the truthiness probe behind Wenyan's
// '中無陰乎' operator: does every item in a container evaluate truthy
// (equivalently, no falsy item exists). A plain exported function, like
// its sibling packages under internal/builtins — there is no bytecode
// opcode space for this evaluator to register into.
package valueexist

// NoneFalse reports whether every element of truths is true.
func NoneFalse(truths []bool) bool {
	for _, t := range truths {
		if !t {
			return false
		}
	}
	return true
}
