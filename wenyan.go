// Package wenyan compiles and runs Wenyan source text.
//
// The public surface is a Compile/Run pair plus a structured error type
// carrying a Span and a Cause, split along the two-kind error taxonomy
// Wenyan itself names: 文法之禍 (a grammar fault — lexing or parsing
// failed) and 執行之禍 (a runtime fault — the program parsed but failed,
// or threw, while running).
package wenyan

import (
	"fmt"
	"io"

	"github.com/wenyan-go/wenyan/internal/ast"
	"github.com/wenyan-go/wenyan/internal/builtins/errtag"
	"github.com/wenyan-go/wenyan/internal/eval"
	"github.com/wenyan-go/wenyan/internal/lexer"
	"github.com/wenyan-go/wenyan/internal/macro"
	"github.com/wenyan-go/wenyan/internal/parser"
	"github.com/wenyan-go/wenyan/internal/token"
)

// GrammarError is 文法之禍: source text could not be turned into a
// program, either because a character sequence isn't recognized by the
// lexer or because the token stream doesn't match any grammar production.
type GrammarError struct {
	Message string
	Span    token.Span
	cause   error
}

func (e *GrammarError) Error() string { return e.Message }
func (e *GrammarError) Unwrap() error { return e.cause }

// RuntimeError is 執行之禍: the program parsed but failed while running —
// a type mismatch, an unbound name, an out-of-range subscript, or a
// Wenyan '嗚呼' throw that reached the top of the program uncaught.
type RuntimeError struct {
	Message string
	Span    token.Span
	Tag     string // set when Cause holds an uncaught Wenyan throw
	cause   error
}

func (e *RuntimeError) Error() string { return e.Message }
func (e *RuntimeError) Unwrap() error { return e.cause }

// Compile lexes, macro-expands, and parses src into a *ast.Program,
// without running it.
func Compile(src, filename string) (*ast.Program, error) {
	toks, err := lexer.Scan(src, filename)
	if err != nil {
		return nil, wrapLexError(err)
	}
	toks = macro.Run(toks)

	prog, err := parser.Parse(toks)
	if err != nil {
		if ge, ok := err.(*parser.GrammarError); ok {
			return nil, &GrammarError{Message: ge.Message, Span: ge.Span, cause: err}
		}
		return nil, &GrammarError{Message: err.Error(), cause: err}
	}
	return prog, nil
}

func wrapLexError(err error) error {
	if le, ok := err.(*lexer.LexError); ok {
		return &GrammarError{Message: le.Message, Span: le.Span, cause: err}
	}
	return &GrammarError{Message: err.Error(), cause: err}
}

// Loader resolves a Wenyan import path to the program it names; it is the
// public alias of internal/eval.Loader so callers never need to import an
// internal package to implement one.
type Loader = eval.Loader

// Run compiles src and executes it, writing every '書之' line to w.
func Run(src, filename string, w io.Writer, loader Loader) error {
	prog, err := Compile(src, filename)
	if err != nil {
		return err
	}
	ev := eval.New(w, loader)
	registerBuiltins(ev)
	if rerr := ev.Run(prog); rerr != nil {
		re := &RuntimeError{Message: rerr.Message, Span: rerr.Span, cause: rerr}
		if rerr.Cause != nil {
			re.Tag = rerr.Cause.Tag
		}
		return re
	}
	return nil
}

// registerBuiltins wires two native builtins into the evaluator's global
// scope as ordinary callable functions. The predicates themselves live in
// internal/builtins/* and are already exercised directly by internal/eval
// for the grammar operators they back (中有陽乎/中無陰乎/之禍歟 matching/
// typename); 之類 and 同禍乎 additionally get a name a program can call.
func registerBuiltins(ev *eval.Evaluator) {
	ev.DefineNative("之類", func(args []*eval.Value) (*eval.Value, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("之類 只能施於一值")
		}
		return eval.String(eval.TypeName(args[0])), nil
	})
	ev.DefineNative("同禍乎", func(args []*eval.Value) (*eval.Value, error) {
		if len(args) != 2 || args[0].Kind != eval.KString || args[1].Kind != eval.KString {
			return nil, fmt.Errorf("同禍乎 只能施於二言")
		}
		return eval.Bool(errtag.Matches(args[0].S, args[1].S)), nil
	})
}
