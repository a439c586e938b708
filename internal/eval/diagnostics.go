package eval

import (
	"fmt"

	"github.com/wenyan-go/wenyan/internal/token"
)

// RuntimeError is a host-level execution fault: an unbound name, a type
// mismatch, an out-of-range subscript, an uncaught '嗚呼' throw reaching
// the top of the program. There are no call-stack frames here, since a
// tree-walker has no bytecode frame pointer to unwind.
type RuntimeError struct {
	Message string
	Span    token.Span
	Cause   *ErrVal // set when an uncaught Wenyan '之禍' reached the top
}

func (e *RuntimeError) Error() string { return e.Message }

// control-flow signals. Every one of these is only ever produced and
// consumed within this package via panic/recover; none should ever
// escape Run.
type breakSignal struct{}
type continueSignal struct{}
type returnSignal struct{ Value *Value }
type throwSignal struct{ Err *ErrVal }
type fatalSignal struct{ Err *RuntimeError }

func raiseFatal(span token.Span, format string, args ...any) {
	panic(fatalSignal{Err: &RuntimeError{Message: fmt.Sprintf(format, args...), Span: span}})
}
