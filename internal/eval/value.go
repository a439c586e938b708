// Package eval tree-walks an *ast.Program and executes it.
//
// Value is a tagged union: a Kind discriminator plus one field per
// variant. Environment is an enclosing-pointer chain of name-keyed
// scopes. There is no separate compile step or bytecode representation —
// this package walks the AST directly.
package eval

import (
	"fmt"

	"github.com/wenyan-go/wenyan/internal/ast"
	"github.com/wenyan-go/wenyan/internal/builtins/typename"
)

// Kind discriminates a runtime Value's variant.
type Kind int

const (
	KNull Kind = iota
	KBool
	KNumber
	KString
	KArray
	KObject
	KFunc
	KError
)

// Array is a mutable, reference-typed sequence. Values holding an Array
// share the same *Array, so assigning into one alias is visible through
// every other.
type Array struct {
	Items []*Value
}

// Object is a mutable, reference-typed field bag with insertion order
// preserved for iteration/printing.
type Object struct {
	Fields map[string]*Value
	Order  []string
}

func (o *Object) Set(key string, v *Value) {
	if _, ok := o.Fields[key]; !ok {
		o.Order = append(o.Order, key)
	}
	o.Fields[key] = v
}

// Func is either a plain closure over a FunctionDef, or a partial
// application binding some of its arguments ahead of time (Base set) —
// the runtime shape behind under-applying a call to curry it.
type Func struct {
	Def     *ast.FunctionDef
	Closure *Environment

	Base      *Value // non-nil for a partial application
	BoundArgs []*Value

	// Native, when set, is a host-implemented builtin (之類, 同禍乎)
	// instead of a Wenyan closure; it takes
	// its full argument list at once and is never partially applied.
	Native func(args []*Value) (*Value, error)
}

// ErrVal is a thrown-and-caught Wenyan exception: a tag plus optional
// detail value, the runtime shape of '嗚呼 tag 之禍 曰 detail'.
type ErrVal struct {
	Tag    string
	Detail *Value
}

// Value is the tagged union every Wenyan expression evaluates to.
type Value struct {
	Kind Kind
	B    bool
	N    float64
	S    string
	Arr  *Array
	Obj  *Object
	Fn   *Func
	Err  *ErrVal
}

func Null() *Value             { return &Value{Kind: KNull} }
func Bool(b bool) *Value       { return &Value{Kind: KBool, B: b} }
func Number(n float64) *Value  { return &Value{Kind: KNumber, N: n} }
func String(s string) *Value   { return &Value{Kind: KString, S: s} }
func ArrayOf(items []*Value) *Value {
	return &Value{Kind: KArray, Arr: &Array{Items: items}}
}
func EmptyObject() *Value {
	return &Value{Kind: KObject, Obj: &Object{Fields: map[string]*Value{}}}
}
func FuncOf(fn *Func) *Value { return &Value{Kind: KFunc, Fn: fn} }
func ErrorOf(tag string, detail *Value) *Value {
	return &Value{Kind: KError, Err: &ErrVal{Tag: tag, Detail: detail}}
}

// Truthy implements Wenyan's truthiness rule: null and false are falsy,
// zero and the empty string/array are falsy, everything else is truthy.
func Truthy(v *Value) bool {
	switch v.Kind {
	case KNull:
		return false
	case KBool:
		return v.B
	case KNumber:
		return v.N != 0
	case KString:
		return v.S != ""
	case KArray:
		return len(v.Arr.Items) > 0
	default:
		return true
	}
}

// Equal implements Wenyan's '等於' comparison. Arrays and objects compare
// by identity (same underlying *Array/*Object), matching their reference
// semantics elsewhere in this package.
func Equal(a, b *Value) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KNull:
		return true
	case KBool:
		return a.B == b.B
	case KNumber:
		return a.N == b.N
	case KString:
		return a.S == b.S
	case KArray:
		return a.Arr == b.Arr
	case KObject:
		return a.Obj == b.Obj
	case KFunc:
		return a.Fn == b.Fn
	case KError:
		return a.Err.Tag == b.Err.Tag
	}
	return false
}

// TypeName names a value's Wenyan type tag ('數列言爻物元', plus 術 for
// functions and 禍 for errors), the result of the 之類 builtin.
func TypeName(v *Value) string {
	switch v.Kind {
	case KNull:
		return typename.Of(typename.Null)
	case KBool:
		return typename.Of(typename.Bool)
	case KNumber:
		return typename.Of(typename.Number)
	case KString:
		return typename.Of(typename.String)
	case KArray:
		return typename.Of(typename.Array)
	case KObject:
		return typename.Of(typename.Object)
	case KFunc:
		return typename.Of(typename.Func)
	case KError:
		return typename.Of(typename.Error)
	default:
		return "?"
	}
}

// String renders a Value the way '書之' prints it.
func (v *Value) String() string {
	switch v.Kind {
	case KNull:
		return "空無"
	case KBool:
		if v.B {
			return "陽"
		}
		return "陰"
	case KNumber:
		return formatNumber(v.N)
	case KString:
		return v.S
	case KArray:
		out := "「"
		for i, it := range v.Arr.Items {
			if i > 0 {
				out += "、"
			}
			out += it.String()
		}
		return out + "」"
	case KObject:
		out := "「"
		for i, k := range v.Obj.Order {
			if i > 0 {
				out += "、"
			}
			out += k + "：" + v.Obj.Fields[k].String()
		}
		return out + "」"
	case KFunc:
		return "術"
	case KError:
		return v.Err.Tag
	default:
		return ""
	}
}

func formatNumber(n float64) string {
	if n == float64(int64(n)) {
		return fmt.Sprintf("%d", int64(n))
	}
	return fmt.Sprintf("%g", n)
}
