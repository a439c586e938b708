package macro

import (
	"testing"

	"github.com/wenyan-go/wenyan/internal/lexer"
	"github.com/wenyan-go/wenyan/internal/token"
)

// A string-literal-sourced macro aliases an identifier used later as a
// call target.
func TestRunAliasesIdentifier(t *testing.T) {
	toks, err := lexer.Scan("或云「「double」」蓋謂「「加倍」」。施「double」於四。", "t.wy")
	if err != nil {
		t.Fatalf("Scan error: %v", err)
	}
	out := macroRun(t, toks)

	found := false
	for _, tok := range out {
		if tok.Kind == token.Identifier && tok.Lexeme == "加倍" {
			found = true
		}
		if tok.Kind == token.Identifier && tok.Lexeme == "double" {
			t.Errorf("macro did not rewrite identifier occurrence of double")
		}
		if tok.Kind == "或云" || tok.Kind == "蓋謂" {
			t.Errorf("macro directive token leaked into output: %v", tok)
		}
	}
	if !found {
		t.Errorf("expected a rewritten 加倍 identifier in output")
	}
}

// Testable property 4: a macro from X to Y must not rewrite occurrences of
// X appearing inside a STRING_LITERAL.
func TestRunNonPenetration(t *testing.T) {
	toks, err := lexer.Scan("或云「甲」蓋謂「乙」。「「甲」」。", "t.wy")
	if err != nil {
		t.Fatalf("Scan error: %v", err)
	}
	out := macroRun(t, toks)
	for _, tok := range out {
		if tok.Kind == token.StringLiteral && tok.Lexeme != "甲" {
			t.Errorf("macro penetrated a string literal body: got %q", tok.Lexeme)
		}
	}
}

func macroRun(t *testing.T, toks []token.Token) []token.Token {
	t.Helper()
	return Run(toks)
}
