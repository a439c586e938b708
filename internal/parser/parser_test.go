package parser

import (
	"testing"

	"github.com/wenyan-go/wenyan/internal/ast"
	"github.com/wenyan-go/wenyan/internal/lexer"
)

func mustParse(t *testing.T, src string) *ast.Program {
	t.Helper()
	toks, err := lexer.Scan(src, "t.wy")
	if err != nil {
		t.Fatalf("lex error: %v", err)
	}
	prog, err := Parse(toks)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	return prog
}

func TestParsePrint(t *testing.T) {
	prog := mustParse(t, "書之。")
	if len(prog.Statements) != 1 {
		t.Fatalf("got %d statements, want 1", len(prog.Statements))
	}
	if _, ok := prog.Statements[0].(*ast.Print); !ok {
		t.Fatalf("statement type = %T, want *ast.Print", prog.Statements[0])
	}
}

func TestParseDeclareAndName(t *testing.T) {
	prog := mustParse(t, "吾有一數。曰三。名之曰「甲」。")
	if len(prog.Statements) != 1 {
		t.Fatalf("got %d statements, want 1", len(prog.Statements))
	}
	def, ok := prog.Statements[0].(*ast.Define)
	if !ok {
		t.Fatalf("statement type = %T, want *ast.Define", prog.Statements[0])
	}
	if len(def.Names) != 1 || def.Names[0] != "甲" {
		t.Fatalf("Names = %v, want [甲]", def.Names)
	}
	if def.Declare == nil || len(def.Declare.Inits) != 1 {
		t.Fatalf("Declare.Inits = %v, want one init", def.Declare)
	}
	lit, ok := def.Declare.Inits[0].(*ast.IntLit)
	if !ok || lit.Digits != "3" {
		t.Fatalf("init value = %#v, want IntLit(3)", def.Declare.Inits[0])
	}
}

func TestParseAssign(t *testing.T) {
	prog := mustParse(t, "昔之「甲」者今五是矣。")
	assign, ok := prog.Statements[0].(*ast.Assign)
	if !ok {
		t.Fatalf("statement type = %T, want *ast.Assign", prog.Statements[0])
	}
	if assign.Target.Name != "甲" || assign.Delete {
		t.Fatalf("assign target = %+v", assign.Target)
	}
}

func TestParseAssignDelete(t *testing.T) {
	prog := mustParse(t, "昔之「甲」者今不復存矣是矣。")
	assign, ok := prog.Statements[0].(*ast.Assign)
	if !ok || !assign.Delete {
		t.Fatalf("statement = %#v, want a delete Assign", prog.Statements[0])
	}
}

func TestParseIfDegenerate(t *testing.T) {
	prog := mustParse(t, "若其然者。書之。云云。")
	ifStmt, ok := prog.Statements[0].(*ast.If)
	if !ok {
		t.Fatalf("statement type = %T, want *ast.If", prog.Statements[0])
	}
	if !ifStmt.DegenerateTrue {
		t.Fatalf("DegenerateTrue = false, want true")
	}
	if len(ifStmt.Clauses) != 1 || len(ifStmt.Clauses[0].Body) != 1 {
		t.Fatalf("clauses = %+v", ifStmt.Clauses)
	}
}

func TestParseForArray(t *testing.T) {
	prog := mustParse(t, "凡「甲」中之「乙」。書之。云云。")
	forStmt, ok := prog.Statements[0].(*ast.For)
	if !ok {
		t.Fatalf("statement type = %T, want *ast.For", prog.Statements[0])
	}
	if forStmt.Kind != ast.ForArray || forStmt.Elem != "乙" {
		t.Fatalf("for stmt = %+v", forStmt)
	}
}

func TestParseFunctionDef(t *testing.T) {
	src := "吾有一術。名之曰「加」。欲行是術。必先得二數。曰甲。曰乙。乃行是術曰。加甲以乙。乃得矣。是謂「加」之術也。"
	prog := mustParse(t, src)
	fn, ok := prog.Statements[0].(*ast.FunctionDef)
	if !ok {
		t.Fatalf("statement type = %T, want *ast.FunctionDef", prog.Statements[0])
	}
	if fn.Name != "加" || fn.EndName != "加" {
		t.Fatalf("Name/EndName = %q/%q", fn.Name, fn.EndName)
	}
	if len(fn.ParamGroups) != 1 || len(fn.ParamGroups[0].Params) != 2 {
		t.Fatalf("ParamGroups = %+v", fn.ParamGroups)
	}
	if len(fn.Body) != 2 {
		t.Fatalf("Body has %d statements, want 2 (加甲以乙, 乃得矣)", len(fn.Body))
	}
	if _, ok := fn.Body[1].(*ast.Return); !ok {
		t.Fatalf("last body statement = %T, want *ast.Return", fn.Body[1])
	}
}

func TestParseMathExprStatement(t *testing.T) {
	prog := mustParse(t, "加一以二。")
	stmt, ok := prog.Statements[0].(*ast.ExprStmt)
	if !ok {
		t.Fatalf("statement type = %T, want *ast.ExprStmt", prog.Statements[0])
	}
	m, ok := stmt.Expr.(*ast.Math)
	if !ok {
		t.Fatalf("expr type = %T, want *ast.Math", stmt.Expr)
	}
	if m.Op != ast.OpAdd || !m.BIsLHS {
		t.Fatalf("math = %+v, want add with 以 (BIsLHS)", m)
	}
}

func TestParseDeclareExcessInitsIsGrammarError(t *testing.T) {
	toks, err := lexer.Scan("吾有一數。曰一。曰二。名之曰「甲」。", "t.wy")
	if err != nil {
		t.Fatalf("lex error: %v", err)
	}
	if _, err := Parse(toks); err == nil {
		t.Fatal("expected a grammar error for an excess initializer, got none")
	} else if _, ok := err.(*GrammarError); !ok {
		t.Fatalf("error type = %T, want *GrammarError", err)
	}
}

func TestParseDeclareNameCountMismatchIsGrammarError(t *testing.T) {
	toks, err := lexer.Scan("吾有二數。曰一。曰二。名之曰「甲」曰「乙」曰「丙」。", "t.wy")
	if err != nil {
		t.Fatalf("lex error: %v", err)
	}
	if _, err := Parse(toks); err == nil {
		t.Fatal("expected a grammar error for a name count that is neither 1 nor the declared count, got none")
	} else if _, ok := err.(*GrammarError); !ok {
		t.Fatalf("error type = %T, want *GrammarError", err)
	}
}

func TestParseFunctionDefTailNameMismatchIsGrammarError(t *testing.T) {
	src := "吾有一術。名之曰「加」。乃行是術曰。乃得矣。是謂「減」之術也。"
	toks, err := lexer.Scan(src, "t.wy")
	if err != nil {
		t.Fatalf("lex error: %v", err)
	}
	if _, err := Parse(toks); err == nil {
		t.Fatal("expected a grammar error for a mismatched function tail name, got none")
	} else if _, ok := err.(*GrammarError); !ok {
		t.Fatalf("error type = %T, want *GrammarError", err)
	}
}

func TestParseObjectMemberRead(t *testing.T) {
	src := "夫「甲」之「「性」」。"
	prog := mustParse(t, src)
	push, ok := prog.Statements[0].(*ast.PushValue)
	if !ok {
		t.Fatalf("statement type = %T, want *ast.PushValue", prog.Statements[0])
	}
	member, ok := push.Value.(*ast.Member)
	if !ok {
		t.Fatalf("value type = %T, want *ast.Member", push.Value)
	}
	if member.Key != "性" {
		t.Fatalf("Key = %q, want %q", member.Key, "性")
	}
}

func TestParseErrorAbortsOnFirstFault(t *testing.T) {
	toks, err := lexer.Scan("曰。", "t.wy") // 曰 with no preceding declare head is a bare, illegal statement start
	if err != nil {
		t.Fatalf("lex error: %v", err)
	}
	if _, err := Parse(toks); err == nil {
		t.Fatal("expected a grammar error, got none")
	} else if _, ok := err.(*GrammarError); !ok {
		t.Fatalf("error type = %T, want *GrammarError", err)
	}
}
