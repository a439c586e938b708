// Package lexer converts Wenyan source text into a flat token sequence.
//
// It is built around New and a single next step, and scans by rune
// instead of byte, since every Wenyan delimiter is a multi-byte CJK
// character. Scan priority is: skip characters, the two string-literal
// bracket forms, identifier brackets, longest-match keywords, then
// numeral runs. Comments get no special handling here: 注曰/疏曰/批曰
// are emitted as ordinary keywords and the comment body as an ordinary
// STRING_LITERAL, which the parser then drops.
package lexer

import (
	pl "github.com/alecthomas/participle/v2/lexer"

	"github.com/wenyan-go/wenyan/internal/numeral"
	"github.com/wenyan-go/wenyan/internal/token"
)

// Lexer scans a complete source text into tokens.
type Lexer struct {
	src      []rune
	pos      int // current rune index
	filename string
}

// New creates a lexer for the given source text.
func New(src string, filename string) *Lexer {
	return &Lexer{src: []rune(src), pos: 0, filename: filename}
}

// Scan runs the lexer to completion, returning every token (comment
// bodies included) or the first lex error encountered.
func Scan(src string, filename string) ([]token.Token, error) {
	l := New(src, filename)
	var toks []token.Token
	for {
		tok, err := l.next()
		if err != nil {
			return nil, err
		}
		if tok.Kind == token.EOF {
			toks = append(toks, tok)
			return toks, nil
		}
		toks = append(toks, tok)
	}
}

// posAt computes the 1-based line/column for rune offset i by scanning the
// source once per call; lex errors are rare, so this trades a little CPU
// for not having to track line/col incrementally through every branch.
func (l *Lexer) posAt(i int) token.Position {
	line, col := 1, 1
	for j := 0; j < i && j < len(l.src); j++ {
		if l.src[j] == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return token.Position{Position: pl.Position{Filename: l.filename, Offset: i, Line: line, Column: col}}
}

func (l *Lexer) errAt(i int, msg string) error {
	return &LexError{Message: msg, Span: token.Span{Start: l.posAt(i), End: l.posAt(i + 1)}}
}

// LexError is a lexical error with its offending range.
type LexError struct {
	Message string
	Span    token.Span
}

func (e *LexError) Error() string { return e.Message }

func (l *Lexer) eof() bool { return l.pos >= len(l.src) }

func (l *Lexer) at(i int) rune {
	if i < 0 || i >= len(l.src) {
		return 0
	}
	return l.src[i]
}

// next scans and returns the single next token.
func (l *Lexer) next() (token.Token, error) {
	for {
		if l.eof() {
			return token.Token{Kind: token.EOF, Span: token.Span{Start: l.posAt(l.pos), End: l.posAt(l.pos)}}, nil
		}

		r := l.src[l.pos]

		if token.IsSkip(r) {
			l.pos++
			continue
		}

		// String literals: 「「...」」 or 『...』. Once either opening form
		// is seen the token can only be a string literal, so an
		// unterminated body is reported as such rather than falling
		// through to the identifier-bracket path below.
		if r == '「' && l.at(l.pos+1) == '「' || r == '『' {
			start := l.pos
			lit, end, ok := l.tryScanStringLiteral(start)
			if !ok {
				return token.Token{}, l.errAt(start, "言未尽")
			}
			tok := token.Token{Kind: token.StringLiteral, Lexeme: lit, Span: token.Span{Start: l.posAt(start), End: l.posAt(end)}}
			l.pos = end
			return tok, nil
		}

		// Identifiers: 「...」 (single bracket, not a string-literal form).
		if r == '「' {
			start := l.pos
			name, end, ok := l.scanIdentifier(start)
			if !ok {
				return token.Token{}, l.errAt(start, "名未尽")
			}
			tok := token.Token{Kind: token.Identifier, Lexeme: name, Span: token.Span{Start: l.posAt(start), End: l.posAt(end)}}
			l.pos = end
			return tok, nil
		}

		// Keywords: longest match.
		if kw := token.MatchKeyword(l.src, l.pos); kw != "" {
			start := l.pos
			end := start + len([]rune(kw))
			tok := token.Token{Kind: token.Kind(kw), Lexeme: kw, Span: token.Span{Start: l.posAt(start), End: l.posAt(end)}}
			l.pos = end
			return tok, nil
		}

		// Numerals: maximal run of numeral-alphabet characters.
		if token.IsNumeralRune(r) {
			start := l.pos
			end := start
			for end < len(l.src) && token.IsNumeralRune(l.src[end]) {
				end++
			}
			text := string(l.src[start:end])
			res, err := numeral.Decode(text)
			if err != nil {
				return token.Token{}, l.errAt(start, "非法數")
			}
			kind := token.IntNum
			if res.IsFloat {
				kind = token.FloatNum
			}
			tok := token.Token{
				Kind:     kind,
				Lexeme:   text,
				Span:     token.Span{Start: l.posAt(start), End: l.posAt(end)},
				IsFloat:  res.IsFloat,
				NumInt:   res.Int,
				NumFloat: res.Float,
			}
			l.pos = end
			return tok, nil
		}

		return token.Token{}, l.errAt(l.pos, "文法之禍")
	}
}

// tryScanStringLiteral scans one of the two string-literal bracket forms
// starting at i, if present. Nesting is not supported; the first matching
// close ends the literal.
func (l *Lexer) tryScanStringLiteral(i int) (string, int, bool) {
	if l.at(i) == '「' && l.at(i+1) == '「' {
		return l.scanBracketed(i, "「「", "」」")
	}
	if l.at(i) == '『' {
		return l.scanBracketed(i, "『", "』")
	}
	return "", 0, false
}

func (l *Lexer) scanBracketed(start int, open, close string) (string, int, bool) {
	openLen := len([]rune(open))
	closeLen := len([]rune(close))
	i := start + openLen
	var out []rune
	for i < len(l.src) {
		if l.hasPrefixAt(i, close) {
			return string(out), i + closeLen, true
		}
		out = append(out, l.src[i])
		i++
	}
	return "", 0, false
}

func (l *Lexer) hasPrefixAt(i int, s string) bool {
	rs := []rune(s)
	if i+len(rs) > len(l.src) {
		return false
	}
	for j, r := range rs {
		if l.src[i+j] != r {
			return false
		}
	}
	return true
}

// scanIdentifier scans '「' ... '」' (single bracket, non-empty content). An
// empty '「」' is rejected the same as an unterminated bracket.
func (l *Lexer) scanIdentifier(start int) (string, int, bool) {
	i := start + 1
	var out []rune
	for i < len(l.src) {
		if l.src[i] == '」' {
			if len(out) == 0 {
				return "", 0, false
			}
			return string(out), i + 1, true
		}
		out = append(out, l.src[i])
		i++
	}
	return "", 0, false
}
