package eval

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/wenyan-go/wenyan/internal/ast"
	"github.com/wenyan-go/wenyan/internal/builtins/errtag"
	"github.com/wenyan-go/wenyan/internal/builtins/indexexist"
	"github.com/wenyan-go/wenyan/internal/builtins/valueexist"
	"github.com/wenyan-go/wenyan/internal/token"
)

// Loader resolves a Wenyan import path ('吾嘗觀 path 之書') to the
// top-level statements it should contribute to the importing program.
// The evaluator itself has no filesystem access; a caller that wants
// '吾嘗觀' to work supplies one (see cmd/wenyan's file-relative loader).
type Loader interface {
	Load(path string) (*ast.Program, error)
}

// Evaluator tree-walks a parsed program. The '其' register (It) is a
// single running accumulator for the whole execution, updated by nearly
// every statement kind, letting a program chain statements through it
// rather than through explicit temporaries.
type Evaluator struct {
	global *Environment
	out    io.Writer
	it     *Value
	stack  []*Value // staged arguments pushed by '夫', consumed by '取'
	loader Loader
}

// New creates an evaluator that writes '書之' output to w.
func New(w io.Writer, loader Loader) *Evaluator {
	return &Evaluator{global: NewEnvironment(nil), out: w, it: Null(), loader: loader}
}

// DefineNative binds name in the global scope to a host-implemented
// function, the hook the top-level wenyan package uses to expose the
// 之類 and 同禍乎 builtins as callable Wenyan functions.
func (e *Evaluator) DefineNative(name string, fn func(args []*Value) (*Value, error)) {
	e.global.Define(name, FuncOf(&Func{Native: fn}))
}

// Run executes prog's top-level statements against the global scope.
func (e *Evaluator) Run(prog *ast.Program) (err *RuntimeError) {
	defer func() {
		if r := recover(); r != nil {
			switch sig := r.(type) {
			case fatalSignal:
				err = sig.Err
			case throwSignal:
				err = &RuntimeError{Message: "未捕獲之禍: " + sig.Err.Tag, Cause: sig.Err}
			case returnSignal, breakSignal, continueSignal:
				err = &RuntimeError{Message: "文法之禍: 頂層不可 乃止/乃止是遍/乃得"}
			default:
				panic(r)
			}
		}
	}()
	e.evalStmts(prog.Statements, e.global)
	return nil
}

func (e *Evaluator) evalStmts(stmts []ast.Statement, env *Environment) {
	for _, s := range stmts {
		e.evalStmt(s, env)
	}
}

func (e *Evaluator) evalStmt(s ast.Statement, env *Environment) {
	switch s := s.(type) {
	case *ast.Declare:
		if s.Type == ast.TypeArray {
			e.it = ArrayOf(e.evalInits(s.Inits, env))
			break
		}
		for _, v := range s.Inits {
			e.it = e.evalValue(v, env)
		}

	case *ast.Define:
		if s.Declare != nil && s.Declare.Type == ast.TypeArray {
			// '吾有N列。曰v1曰v2...。名之曰甲。' binds every name to its own
			// array carrying the same initial elements, not a shared one —
			// each 列 variable is independent, matching '吾有一數' declaring
			// independent scalar copies rather than aliases.
			items := e.evalInits(s.Declare.Inits, env)
			var last *Value
			for _, name := range s.Names {
				arr := ArrayOf(append([]*Value(nil), items...))
				env.Define(name, arr)
				last = arr
			}
			if last != nil {
				e.it = last
			}
			break
		}
		if s.Declare == nil {
			// A standalone '名之曰 X' with no fused declare head names the
			// value already sitting in '其' — e.g. '施「取餘長」於一。名之曰
			// 「半」。' binds the call's result, not a fresh null.
			for _, name := range s.Names {
				env.Define(name, e.it)
			}
			break
		}
		var vals []*Value
		for _, v := range s.Declare.Inits {
			vals = append(vals, e.evalValue(v, env))
		}
		for i, name := range s.Names {
			if i < len(vals) {
				env.Define(name, vals[i])
				e.it = vals[i]
			} else {
				env.Define(name, Null())
				e.it = Null()
			}
		}

	case *ast.FunctionDef:
		env.Define(s.Name, FuncOf(&Func{Def: s, Closure: env}))

	case *ast.If:
		for _, c := range s.Clauses {
			// '若其然者' stores a nil Cond and runs unconditionally.
			if c.Cond == nil || Truthy(e.evalExpr(c.Cond, env)) {
				e.evalStmts(c.Body, env)
				return
			}
		}
		if s.HasElse {
			e.evalStmts(s.ElseBody, env)
		}

	case *ast.For:
		e.evalFor(s, env)

	case *ast.Break:
		panic(breakSignal{})

	case *ast.Continue:
		panic(continueSignal{})

	case *ast.Try:
		e.evalTry(s, env)

	case *ast.Throw:
		tag := e.evalValue(s.Tag, env)
		var detail *Value
		if s.Detail != nil {
			detail = e.evalValue(s.Detail, env)
		}
		panic(throwSignal{Err: &ErrVal{Tag: tag.String(), Detail: detail}})

	case *ast.Return:
		switch {
		case s.ReadIt:
			panic(returnSignal{Value: e.it})
		case s.Value == nil:
			panic(returnSignal{Value: Null()})
		default:
			panic(returnSignal{Value: e.evalExpr(s.Value, env)})
		}

	case *ast.Assign:
		e.evalAssign(s, env)

	case *ast.Object:
		obj := EmptyObject()
		for _, prop := range s.Props {
			obj.Obj.Set(prop.Key, e.evalExpr(prop.Value, env))
		}
		for _, name := range s.Names {
			env.Define(name, obj)
		}
		e.it = obj

	case *ast.Import:
		e.evalImport(s, env)

	case *ast.Print:
		fmt.Fprintln(e.out, e.it.String())

	case *ast.Noop:
		e.it = Null()

	case *ast.PushValue:
		v := e.evalExpr(s.Value, env)
		e.stack = append(e.stack, v)
		e.it = v

	case *ast.TakeArgs:
		e.evalTakeArgs(s, env)

	case *ast.ExprStmt:
		e.it = e.evalExpr(s.Expr, env)

	default:
		raiseFatal(s.Span(), "文法之禍: 未知敘述")
	}
}

func (e *Evaluator) evalInits(inits []ast.Value, env *Environment) []*Value {
	items := make([]*Value, len(inits))
	for i, v := range inits {
		items[i] = e.evalValue(v, env)
	}
	return items
}

func (e *Evaluator) evalFor(s *ast.For, env *Environment) {
	runBody := func() (brk bool) {
		defer func() {
			if r := recover(); r != nil {
				switch r.(type) {
				case breakSignal:
					brk = true
				case continueSignal:
					brk = false
				default:
					panic(r)
				}
			}
		}()
		e.evalStmts(s.Body, env)
		return false
	}

	switch s.Kind {
	case ast.ForArray:
		iter := e.evalExpr(s.Iterable, env)
		if iter.Kind != KArray {
			raiseFatal(s.Span(), "執行之禍: 凡…中之 只能施於列")
		}
		for _, item := range iter.Arr.Items {
			env.Define(s.Elem, item)
			if runBody() {
				return
			}
		}

	case ast.ForEnumerate:
		n := e.evalExpr(s.Count, env)
		if n.Kind != KNumber {
			raiseFatal(s.Span(), "執行之禍: 為是…遍 需數")
		}
		for i := 0; i < int(n.N); i++ {
			if runBody() {
				return
			}
		}

	case ast.ForWhileTrue:
		for {
			if runBody() {
				return
			}
		}
	}
}

func (e *Evaluator) evalTry(s *ast.Try, env *Environment) {
	caught := func() (thrown *ErrVal, ok bool) {
		defer func() {
			if r := recover(); r != nil {
				if ts, isThrow := r.(throwSignal); isThrow {
					thrown = ts.Err
					ok = true
					return
				}
				panic(r)
			}
		}()
		e.evalStmts(s.Body, env)
		return nil, false
	}

	errVal, threw := caught()
	if !threw {
		return
	}

	for _, c := range s.Catches {
		matches := c.Tag == nil // nil Tag is the catch-all '不知何禍歟'
		if !matches {
			tagVal := e.evalValue(c.Tag, env)
			matches = errtag.Matches(tagVal.String(), errVal.Tag)
		}
		if !matches {
			continue
		}
		catchEnv := env
		if c.BindName != "" {
			catchEnv = NewEnvironment(env)
			catchEnv.Define(c.BindName, ErrorOf(errVal.Tag, errVal.Detail))
		}
		e.evalStmts(c.Body, catchEnv)
		return
	}
	// no clause matched: propagate.
	panic(throwSignal{Err: errVal})
}

func (e *Evaluator) evalAssign(s *ast.Assign, env *Environment) {
	if s.Delete {
		if s.Target.Subscript == nil {
			if !env.Set(s.Target.Name, Null()) {
				raiseFatal(s.Span(), "執行之禍: 未有名為「%s」之量", s.Target.Name)
			}
			return
		}
		container, ok := env.Get(s.Target.Name)
		if !ok || container.Kind != KArray {
			raiseFatal(s.Span(), "執行之禍: 「%s」非列，不可去之", s.Target.Name)
		}
		idxVal := e.evalExpr(s.Target.Subscript, env)
		if idxVal.Kind != KNumber {
			raiseFatal(s.Span(), "執行之禍: 下標須為數")
		}
		idx := int(idxVal.N) - 1
		if idx < 0 || idx >= len(container.Arr.Items) {
			return // deleting past either end leaves the array unchanged
		}
		container.Arr.Items = append(container.Arr.Items[:idx], container.Arr.Items[idx+1:]...)
		return
	}

	val := e.evalExpr(s.Value, env)
	e.it = val

	if s.Target.Subscript == nil {
		if !env.Set(s.Target.Name, val) {
			raiseFatal(s.Span(), "執行之禍: 未有名為「%s」之量", s.Target.Name)
		}
		return
	}
	container, ok := env.Get(s.Target.Name)
	if !ok || container.Kind != KArray {
		raiseFatal(s.Span(), "執行之禍: 「%s」非列，不可更易", s.Target.Name)
	}
	idx := e.subscriptIndex(s.Target.Subscript, env, len(container.Arr.Items), s.Span())
	container.Arr.Items[idx] = val
}

// subscriptIndex evaluates a 1-based subscript expression and range-checks
// it against length, returning a 0-based index.
func (e *Evaluator) subscriptIndex(idxExpr ast.Expression, env *Environment, length int, sp token.Span) int {
	idxVal := e.evalExpr(idxExpr, env)
	if idxVal.Kind != KNumber {
		raiseFatal(sp, "執行之禍: 下標須為數")
	}
	i := int(idxVal.N) - 1
	if i < 0 || i >= length {
		raiseFatal(sp, "執行之禍: 下標逾界")
	}
	return i
}

func (e *Evaluator) evalImport(s *ast.Import, env *Environment) {
	if e.loader == nil {
		raiseFatal(s.Span(), "執行之禍: 未設引入器，不可 吾嘗觀…之書")
	}
	path := ""
	for _, seg := range s.Path {
		path += seg.Text
	}
	prog, err := e.loader.Load(path)
	if err != nil {
		raiseFatal(s.Span(), "執行之禍: 引入「%s」失敗: %s", path, err.Error())
	}
	modEnv := NewEnvironment(nil)
	e.evalStmts(prog.Statements, modEnv)
	names := s.Imported
	if len(names) == 0 {
		for name := range modEnv.vars {
			names = append(names, name)
		}
	}
	for _, name := range names {
		if v, ok := modEnv.Get(name); ok {
			env.Define(name, v)
		}
	}
}

func (e *Evaluator) evalTakeArgs(s *ast.TakeArgs, env *Environment) {
	n := s.Count
	if s.Rest {
		n = len(e.stack)
	}
	if n > len(e.stack) {
		raiseFatal(s.Span(), "執行之禍: 取數過多")
	}
	split := len(e.stack) - n
	args := append([]*Value(nil), e.stack[split:]...)
	e.stack = e.stack[:split]
	callee := e.evalExpr(s.Callee, env)
	e.it = e.call(callee, args, s)
}

// ---- expressions ----

func (e *Evaluator) evalExpr(expr ast.Expression, env *Environment) *Value {
	switch x := expr.(type) {
	case *ast.ValueExpr:
		return e.evalValue(x.Val, env)
	case *ast.Math:
		return e.evalMath(x, env)
	case *ast.Subscript:
		return e.evalSubscript(x, env)
	case *ast.Member:
		return e.evalMember(x, env)
	case *ast.Not:
		return Bool(!Truthy(e.evalExpr(x.Operand, env)))
	case *ast.Logic:
		return e.evalLogic(x, env)
	case *ast.Call:
		callee := e.evalExpr(x.Callee, env)
		var args []*Value
		for _, a := range x.Args {
			args = append(args, e.evalExpr(a, env))
		}
		return e.call(callee, args, x)
	case *ast.ArrayCat:
		return e.evalArrayCat(x, env)
	case *ast.ArrayPush:
		return e.evalArrayPush(x, env)
	default:
		raiseFatal(expr.Span(), "文法之禍: 未知運算式")
		return nil
	}
}

func (e *Evaluator) evalValue(v ast.Value, env *Environment) *Value {
	switch v := v.(type) {
	case *ast.StringLit:
		return String(v.Text)
	case *ast.BoolLit:
		return Bool(v.Val)
	case *ast.Ident:
		if val, ok := env.Get(v.Name); ok {
			return val
		}
		raiseFatal(v.Span(), "執行之禍: 未有名為「%s」之量", v.Name)
		return nil
	case *ast.IntLit:
		n, err := strconv.ParseFloat(v.Digits, 64)
		if err != nil {
			n = math.NaN()
		}
		return Number(n)
	case *ast.FloatLit:
		return Number(v.Val)
	case *ast.It:
		return e.it
	default:
		raiseFatal(v.Span(), "文法之禍: 未知之值")
		return nil
	}
}

func (e *Evaluator) evalMath(m *ast.Math, env *Environment) *Value {
	a := e.evalExpr(m.A, env)
	b := e.evalExpr(m.B, env)
	if a.Kind != KNumber || b.Kind != KNumber {
		raiseFatal(m.Span(), "執行之禍: 加減乘除只能施於數")
	}
	l, r := a.N, b.N
	if m.BIsLHS {
		l, r = b.N, a.N
	}
	var result float64
	switch m.Op {
	case ast.OpAdd:
		result = l + r
	case ast.OpSub:
		result = l - r
	case ast.OpMul:
		result = l * r
	case ast.OpDiv:
		if m.Modulo {
			result = math.Mod(l, r)
		} else {
			result = l / r
		}
	}
	return Number(result)
}

func (e *Evaluator) evalSubscript(s *ast.Subscript, env *Environment) *Value {
	target := e.evalExpr(s.Target, env)
	switch {
	case s.Length:
		switch target.Kind {
		case KArray:
			return Number(float64(len(target.Arr.Items)))
		case KString:
			return Number(float64(len([]rune(target.S))))
		default:
			raiseFatal(s.Span(), "執行之禍: 之長只能施於列或言")
		}
	case s.Rest:
		switch target.Kind {
		case KArray:
			if len(target.Arr.Items) == 0 {
				return ArrayOf(nil)
			}
			return ArrayOf(append([]*Value(nil), target.Arr.Items[1:]...))
		case KString:
			r := []rune(target.S)
			if len(r) == 0 {
				return String("")
			}
			return String(string(r[1:]))
		default:
			raiseFatal(s.Span(), "執行之禍: 其餘只能施於列或言")
		}
	default:
		idxVal := e.evalExpr(s.Index, env)
		if idxVal.Kind != KNumber {
			raiseFatal(s.Span(), "執行之禍: 下標須為數")
		}
		i := int(idxVal.N) - 1
		switch target.Kind {
		case KArray:
			if i < 0 || i >= len(target.Arr.Items) {
				raiseFatal(s.Span(), "執行之禍: 下標逾界")
			}
			return target.Arr.Items[i]
		case KString:
			r := []rune(target.S)
			if i < 0 || i >= len(r) {
				raiseFatal(s.Span(), "執行之禍: 下標逾界")
			}
			return String(string(r[i]))
		default:
			raiseFatal(s.Span(), "執行之禍: 之 只能施於列或言")
		}
	}
	return Null()
}

func (e *Evaluator) evalMember(m *ast.Member, env *Environment) *Value {
	target := e.evalExpr(m.Target, env)
	if target.Kind != KObject {
		raiseFatal(m.Span(), "執行之禍: 之 只能施於物")
	}
	if v, ok := target.Obj.Fields[m.Key]; ok {
		return v
	}
	raiseFatal(m.Span(), "執行之禍: 物無鍵「%s」", m.Key)
	return nil
}

func (e *Evaluator) evalLogic(l *ast.Logic, env *Environment) *Value {
	a := e.evalExpr(l.A, env)

	switch l.Op {
	case ast.LogicHasTrue, ast.LogicNoneFalse:
		if a.Kind != KArray {
			raiseFatal(l.Span(), "執行之禍: 中有陽乎/中無陰乎 只能施於列")
		}
		truths := make([]bool, len(a.Arr.Items))
		for i, item := range a.Arr.Items {
			truths[i] = Truthy(item)
		}
		if l.Op == ast.LogicHasTrue {
			return Bool(indexexist.HasTrue(truths))
		}
		return Bool(valueexist.NoneFalse(truths))
	}

	b := e.evalExpr(l.B, env)
	switch l.Op {
	case ast.LogicEq:
		return Bool(Equal(a, b))
	case ast.LogicNe:
		return Bool(!Equal(a, b))
	case ast.LogicAnd:
		return Bool(Truthy(a) && Truthy(b))
	case ast.LogicOr:
		return Bool(Truthy(a) || Truthy(b))
	case ast.LogicLe, ast.LogicGe, ast.LogicGt, ast.LogicLt:
		if a.Kind != KNumber || b.Kind != KNumber {
			raiseFatal(l.Span(), "執行之禍: 比較只能施於數")
		}
		switch l.Op {
		case ast.LogicLe:
			return Bool(a.N <= b.N)
		case ast.LogicGe:
			return Bool(a.N >= b.N)
		case ast.LogicGt:
			return Bool(a.N > b.N)
		case ast.LogicLt:
			return Bool(a.N < b.N)
		}
	}
	raiseFatal(l.Span(), "文法之禍: 未知比較")
	return nil
}

func (e *Evaluator) evalArrayCat(a *ast.ArrayCat, env *Environment) *Value {
	target := e.evalExpr(a.Target, env)
	if target.Kind != KArray {
		raiseFatal(a.Span(), "執行之禍: 銜 只能施於列")
	}
	for _, o := range a.Others {
		other := e.evalExpr(o, env)
		if other.Kind != KArray {
			raiseFatal(a.Span(), "執行之禍: 銜 只能施於列")
		}
		target.Arr.Items = append(target.Arr.Items, other.Arr.Items...)
	}
	return target
}

func (e *Evaluator) evalArrayPush(a *ast.ArrayPush, env *Environment) *Value {
	target := e.evalExpr(a.Target, env)
	if target.Kind != KArray {
		raiseFatal(a.Span(), "執行之禍: 充 只能施於列")
	}
	for _, v := range a.Values {
		target.Arr.Items = append(target.Arr.Items, e.evalExpr(v, env))
	}
	return target
}

// ---- calls ----

// call invokes fn with args, handling under-application as a partial
// application (currying) and over-application as an error.
func (e *Evaluator) call(fn *Value, args []*Value, sp ast.Node) *Value {
	if fn.Kind != KFunc {
		raiseFatal(sp.Span(), "執行之禍: 「%s」不可施", fn.String())
	}
	if fn.Fn.Native != nil {
		result, err := fn.Fn.Native(args)
		if err != nil {
			panic(throwSignal{Err: &ErrVal{Tag: err.Error()}})
		}
		return result
	}

	allArgs := append(append([]*Value(nil), fn.Fn.BoundArgs...), args...)
	base := fn
	if fn.Fn.Base != nil {
		base = fn.Fn.Base
	}

	fixed := flattenParams(base.Fn.Def)
	hasRest := base.Fn.Def.RestParam != nil

	if len(allArgs) < len(fixed) {
		return FuncOf(&Func{Def: base.Fn.Def, Closure: base.Fn.Closure, Base: base, BoundArgs: allArgs})
	}
	if !hasRest && len(allArgs) > len(fixed) {
		raiseFatal(sp.Span(), "執行之禍: 施引數過多")
	}

	callEnv := NewEnvironment(base.Fn.Closure)
	for i, p := range fixed {
		callEnv.Define(p, allArgs[i])
	}
	if hasRest {
		callEnv.Define(base.Fn.Def.RestParam.Name, ArrayOf(append([]*Value(nil), allArgs[len(fixed):]...)))
	}

	return e.runFunctionBody(base.Fn.Def.Body, callEnv)
}

func flattenParams(def *ast.FunctionDef) []string {
	var names []string
	for _, g := range def.ParamGroups {
		for _, p := range g.Params {
			names = append(names, p.Name)
		}
	}
	return names
}

func (e *Evaluator) runFunctionBody(body []ast.Statement, env *Environment) (result *Value) {
	defer func() {
		if r := recover(); r != nil {
			if rs, ok := r.(returnSignal); ok {
				result = rs.Value
				return
			}
			panic(r)
		}
	}()
	e.evalStmts(body, env)
	return Null()
}
