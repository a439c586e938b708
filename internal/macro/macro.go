// Package macro implements Wenyan's '或云 source 蓋謂 replacement' token
// rewrite rules.
//
// The ordered-registration idiom mirrors a builtin-registry pattern —
// rules append into a slice and apply in registration order — generalized
// from a byte-keyed lookup to a token-lexeme key.
package macro

import "github.com/wenyan-go/wenyan/internal/token"

// Rule is one '或云 source 蓋謂 replacement' declaration. Source is either
// an identifier lexeme or a string-literal lexeme (SourceIsIdent
// distinguishes which token kind it may rewrite); Replacement is the
// verbatim replacement token(s) — a single token in practice, since
// macro_literal in the grammar always names one identifier or one string
// literal.
type Rule struct {
	Source        string
	SourceIsIdent bool
	Replacement   string
}

// Table is an ordered set of macro rules; later rules may reference names
// produced by earlier ones because rewriting is applied left-to-right over
// the token stream in a single pass per rule, in registration order.
type Table struct {
	rules []Rule
}

// NewTable returns an empty macro table.
func NewTable() *Table { return &Table{} }

// Register appends a rule. Insertion order matters: Apply runs rules in
// registration order.
func (t *Table) Register(r Rule) {
	t.rules = append(t.rules, r)
}

// Apply rewrites toks, applying every registered rule in order.
//
// A rule declared with an identifier source (或云「name」...) only rewrites
// Identifier tokens whose lexeme is an exact match. A rule declared with a
// string-literal source (或云「「text」」...) rewrites the literal text
// wherever it later occurs as a whole token's lexeme — including an
// Identifier spelled the same way, which is how a macro can alias a
// function name for later calls — but never touches a StringLiteral
// token's contents, which keeps a macro from penetrating an unrelated
// string body.
func (t *Table) Apply(toks []token.Token) []token.Token {
	out := toks
	for _, r := range t.rules {
		out = applyRule(out, r)
	}
	return out
}

// Run extracts every '或云 source 蓋謂 replacement' directive from toks in
// a single left-to-right pass and rewrites everything after each
// directive with the rules registered so far, then returns the token
// stream with the directives themselves removed — the parser has no
// grammar production for '或云'/'蓋謂', so they must never reach it.
//
// A single forward pass (rather than extracting every rule first and then
// sweeping the whole token stream once per rule) means a rule only ever
// rewrites tokens that come after its own declaration, never before it.
func Run(toks []token.Token) []token.Token {
	t := NewTable()
	out := make([]token.Token, 0, len(toks))
	for i := 0; i < len(toks); i++ {
		tok := toks[i]
		if tok.Kind == "或云" {
			rule, consumed := parseDirective(toks, i)
			t.Register(rule)
			i += consumed - 1
			continue
		}
		out = append(out, rewriteOne(tok, t.rules))
	}
	return out
}

// parseDirective reads '或云 source 蓋謂 replacement (是矣|是也)?' starting
// at toks[i] (toks[i].Kind == "或云") and returns the rule plus how many
// tokens it consumed.
func parseDirective(toks []token.Token, i int) (Rule, int) {
	n := len(toks)
	j := i + 1
	if j >= n {
		return Rule{}, 1
	}
	srcTok := toks[j]
	j++
	if j >= n || toks[j].Kind != "蓋謂" {
		return Rule{Source: srcTok.Lexeme, SourceIsIdent: srcTok.Kind == token.Identifier}, j - i
	}
	j++ // 蓋謂
	if j >= n {
		return Rule{Source: srcTok.Lexeme, SourceIsIdent: srcTok.Kind == token.Identifier}, j - i
	}
	repTok := toks[j]
	j++
	if j < n && (toks[j].Kind == "是矣" || toks[j].Kind == "是也") {
		j++
	}
	return Rule{
		Source:        srcTok.Lexeme,
		SourceIsIdent: srcTok.Kind == token.Identifier,
		Replacement:   repTok.Lexeme,
	}, j - i
}

func rewriteOne(tok token.Token, rules []Rule) token.Token {
	for _, r := range rules {
		if tok.Kind == token.StringLiteral {
			continue
		}
		if r.SourceIsIdent && tok.Kind != token.Identifier {
			continue
		}
		if tok.Lexeme != r.Source {
			continue
		}
		tok = token.Token{Kind: tok.Kind, Lexeme: r.Replacement, Span: tok.Span}
	}
	return tok
}

func applyRule(toks []token.Token, r Rule) []token.Token {
	out := make([]token.Token, len(toks))
	for i, tk := range toks {
		out[i] = rewriteOne(tk, []Rule{r})
	}
	return out
}
