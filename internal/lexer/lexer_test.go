package lexer

import (
	"testing"

	"github.com/wenyan-go/wenyan/internal/token"
)

func kinds(toks []token.Token) []token.Kind {
	out := make([]token.Kind, len(toks))
	for i, t := range toks {
		out[i] = t.Kind
	}
	return out
}

func TestScanDeclare(t *testing.T) {
	toks, err := Scan("吾有一數。曰三。", "t.wy")
	if err != nil {
		t.Fatalf("Scan error: %v", err)
	}
	want := []token.Kind{"吾有", token.IntNum, "數", "曰", token.IntNum, token.EOF}
	got := kinds(toks)
	if len(got) != len(want) {
		t.Fatalf("kinds = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d: got %v, want %v", i, got[i], want[i])
		}
	}
	if toks[1].NumInt == nil || toks[1].NumInt.Int64() != 1 {
		t.Errorf("count token decoded to %v, want 1", toks[1].NumInt)
	}
	if toks[4].NumInt == nil || toks[4].NumInt.Int64() != 3 {
		t.Errorf("init token decoded to %v, want 3", toks[4].NumInt)
	}
}

func TestScanStringLiteralAndIdentifier(t *testing.T) {
	toks, err := Scan("「「問天地好在」」「甲」", "t.wy")
	if err != nil {
		t.Fatalf("Scan error: %v", err)
	}
	if len(toks) != 3 {
		t.Fatalf("got %d tokens, want 3 (string, identifier, EOF)", len(toks))
	}
	if toks[0].Kind != token.StringLiteral || toks[0].Lexeme != "問天地好在" {
		t.Errorf("token 0 = %+v", toks[0])
	}
	if toks[1].Kind != token.Identifier || toks[1].Lexeme != "甲" {
		t.Errorf("token 1 = %+v", toks[1])
	}
}

func TestScanAltStringBracket(t *testing.T) {
	toks, err := Scan("『你好』", "t.wy")
	if err != nil {
		t.Fatalf("Scan error: %v", err)
	}
	if toks[0].Kind != token.StringLiteral || toks[0].Lexeme != "你好" {
		t.Errorf("token 0 = %+v", toks[0])
	}
}

func TestScanUnterminatedStringLiteral(t *testing.T) {
	_, err := Scan("「「abc", "t.wy")
	if err == nil {
		t.Fatal("expected a lex error for an unterminated string literal, got none")
	}
	le, ok := err.(*LexError)
	if !ok {
		t.Fatalf("error type = %T, want *LexError", err)
	}
	if le.Message != "言未尽" {
		t.Errorf("message = %q, want %q", le.Message, "言未尽")
	}
}

func TestScanIllegalChar(t *testing.T) {
	_, err := Scan("abc", "t.wy")
	if err == nil {
		t.Fatal("expected a lex error for ASCII input, got none")
	}
	le, ok := err.(*LexError)
	if !ok {
		t.Fatalf("error type = %T, want *LexError", err)
	}
	if le.Message != "文法之禍" {
		t.Errorf("message = %q", le.Message)
	}
}

func TestScanPositions(t *testing.T) {
	toks, err := Scan("書之\n書之", "t.wy")
	if err != nil {
		t.Fatalf("Scan error: %v", err)
	}
	if toks[0].Span.Start.Line != 1 {
		t.Errorf("first 書之 line = %d, want 1", toks[0].Span.Start.Line)
	}
	if toks[1].Span.Start.Line != 2 {
		t.Errorf("second 書之 line = %d, want 2", toks[1].Span.Start.Line)
	}
}
