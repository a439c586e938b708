// Package parser implements Wenyan's recursive-descent parser: token stream
// in, *ast.Program out.
//
// It follows a cur/peek/advance/expect token-cursor discipline, but
// dispatches purely on the leading statement keyword rather than a Pratt
// precedence table — Wenyan's grammar is a small, fixed set of
// keyword-led sentence shapes, so each statement kind gets its own parse
// function. Parsing aborts on the first error instead of accumulating and
// continuing; recovering and re-synchronizing after a malformed sentence
// is out of scope here.
package parser

import (
	"fmt"

	"github.com/wenyan-go/wenyan/internal/ast"
	"github.com/wenyan-go/wenyan/internal/token"
)

// GrammarError is a structural parse failure with its offending span.
type GrammarError struct {
	Message string
	Span    token.Span
}

func (e *GrammarError) Error() string { return e.Message }

// Parser consumes a flat token slice (post-lex, post-macro) and produces an
// *ast.Program.
type Parser struct {
	toks []token.Token
	pos  int
}

// New creates a parser over toks.
func New(toks []token.Token) *Parser {
	return &Parser{toks: toks}
}

// Parse runs a full program parse, converting the first structural error
// (raised internally via panic) into a returned error rather than letting
// it escape as a panic.
func Parse(toks []token.Token) (prog *ast.Program, err error) {
	p := New(toks)
	defer func() {
		if r := recover(); r != nil {
			if ge, ok := r.(*GrammarError); ok {
				err = ge
				return
			}
			panic(r)
		}
	}()
	prog = p.parseProgram()
	return prog, nil
}

// ---- token cursor ----

func (p *Parser) cur() token.Token {
	return p.toks[p.pos]
}

func (p *Parser) peek(n int) token.Token {
	i := p.pos + n
	if i >= len(p.toks) {
		return p.toks[len(p.toks)-1] // EOF
	}
	return p.toks[i]
}

func (p *Parser) at(k token.Kind) bool {
	return p.cur().Kind == k
}

func (p *Parser) atEOF() bool {
	return p.at(token.EOF)
}

func (p *Parser) advance() token.Token {
	t := p.cur()
	if !p.atEOF() {
		p.pos++
	}
	return t
}

func (p *Parser) fail(format string, args ...any) {
	panic(&GrammarError{Message: fmt.Sprintf(format, args...), Span: p.cur().Span})
}

// expect consumes and returns the current token if it has kind k, else
// aborts the parse.
func (p *Parser) expect(k token.Kind) token.Token {
	if !p.at(k) {
		p.fail("文法之禍: 欲得「%s」而見「%s」", k, p.cur().Lexeme)
	}
	return p.advance()
}

// mark/reset implement simple backtracking for the handful of productions
// that share a keyword-led prefix (吾有 heads a Declare, a FunctionDef, and
// an Object literal alike; only the tail distinguishes them).
func (p *Parser) mark() int      { return p.pos }
func (p *Parser) reset(m int)    { p.pos = m }

// ---- names ----

// nameText accepts either an Identifier or a StringLiteral token as a name
// (function names, object end-names, catch bindings, and import segments
// may be written either way).
func (p *Parser) nameText() string {
	if p.at(token.Identifier) || p.at(token.StringLiteral) {
		return p.advance().Lexeme
	}
	p.fail("文法之禍: 欲得名而見「%s」", p.cur().Lexeme)
	return ""
}

// ---- program / statement dispatch ----

func (p *Parser) parseProgram() *ast.Program {
	start := p.cur().Span.Start
	var stmts []ast.Statement
	for !p.atEOF() {
		stmts = append(stmts, p.parseStatement())
	}
	end := p.cur().Span.End
	return &ast.Program{Statements: stmts, NodeSpan: token.Span{Start: start, End: end}}
}

func (p *Parser) parseStatement() ast.Statement {
	switch p.cur().Kind {
	case "吾有", "今有":
		return p.parseDeclareHead()
	case "名之曰":
		return p.parseStandaloneNameMulti()
	case "書之":
		return p.simpleStmt(func(sp token.Span) ast.Statement { return &ast.Print{NodeSpan: sp} })
	case "噫":
		return p.simpleStmt(func(sp token.Span) ast.Statement { return &ast.Noop{NodeSpan: sp} })
	case "夫":
		return p.parsePushValue()
	case "取":
		return p.parseTakeArgs()
	case "昔之":
		return p.parseAssign()
	case "若", "若其然者", "若其不然者":
		return p.parseIf()
	case "凡":
		return p.parseForArray()
	case "恆為是":
		return p.parseForWhileTrue()
	case "為是":
		return p.parseForEnumerate()
	case "乃止":
		return p.simpleStmt(func(sp token.Span) ast.Statement { return &ast.Break{NodeSpan: sp} })
	case "乃止是遍":
		return p.simpleStmt(func(sp token.Span) ast.Statement { return &ast.Continue{NodeSpan: sp} })
	case "姑妄行此":
		return p.parseTry()
	case "嗚呼":
		return p.parseThrow()
	case "乃得", "乃得矣", "乃歸空無":
		return p.parseReturn()
	case "吾嘗觀":
		return p.parseImport()
	case "注曰", "疏曰", "批曰":
		return p.parseComment()
	default:
		return p.parseExprStmt()
	}
}

// simpleStmt parses a single keyword-only sentence.
func (p *Parser) simpleStmt(build func(token.Span) ast.Statement) ast.Statement {
	t := p.advance()
	return build(t.Span)
}

// parseComment consumes '注曰/疏曰/批曰' followed by a required string
// literal, discarding the literal. The lexer deliberately does not special-
// case comments (it emits the introducer as an ordinary keyword and the
// body as an ordinary STRING_LITERAL); this is where that body is dropped.
func (p *Parser) parseComment() ast.Statement {
	start := p.advance().Span.Start
	end := p.expect(token.StringLiteral).Span.End
	return &ast.Noop{NodeSpan: token.Span{Start: start, End: end}}
}

// ---- declare / define / function / object (shared 吾有|今有 head) ----

func (p *Parser) parseDeclareHead() ast.Statement {
	start := p.cur().Span.Start
	p.advance() // 吾有 | 今有
	count := p.parseCount()
	typ := p.parseTypeTag()

	if typ == "術" {
		return p.parseFunctionDefTail(start, count)
	}

	m := p.mark()
	if typ == "物" && p.at("名之曰") {
		if obj, ok := p.tryParseObjectTail(start, count); ok {
			return obj
		}
		p.reset(m)
	}

	return p.parseDeclareTail(start, count, typ)
}

// parseCount reads a numeral literal token as a small non-negative int
// (declaration counts, parameter counts, and loop counts never exceed a
// handful; anything bigger reflects a bug in the numeral rather than a
// program that really means it).
func (p *Parser) parseCount() int {
	if !p.at(token.IntNum) {
		p.fail("文法之禍: 欲得數量而見「%s」", p.cur().Lexeme)
	}
	t := p.advance()
	if t.NumInt == nil || !t.NumInt.IsInt64() {
		p.fail("文法之禍: 數量過大")
	}
	return int(t.NumInt.Int64())
}

func (p *Parser) parseTypeTag() ast.TypeTag {
	k := p.cur().Kind
	if token.TypeTags[k] || k == "術" {
		p.advance()
		return ast.TypeTag(k)
	}
	p.fail("文法之禍: 欲得型別而見「%s」", p.cur().Lexeme)
	return ""
}

// parseDeclareTail parses the '曰 v1 曰 v2 ...' initializer list, then
// folds in a directly-following '名之曰' clause into a Define. A 列 declare
// is exempt from the initializer-count cap below: its inits are the array's
// elements, not one-per-declared-slot, so 'count' there means the number of
// array variables sharing those elements, not an element ceiling.
func (p *Parser) parseDeclareTail(start token.Position, count int, typ ast.TypeTag) ast.Statement {
	var inits []ast.Value
	for p.at("曰") {
		if typ != ast.TypeArray && len(inits) >= count {
			p.fail("文法之禍: 初始值多於宣告數量")
		}
		p.advance()
		inits = append(inits, p.parseValue())
	}
	end := p.prevEnd()
	decl := &ast.Declare{Count: count, Type: typ, Inits: inits, NodeSpan: token.Span{Start: start, End: end}}

	if p.at("名之曰") {
		names := p.parseNameMultiClause()
		if len(names) != count && len(names) != 1 {
			p.fail("文法之禍: 命名數量（%d）與宣告數量（%d）不符", len(names), count)
		}
		end = p.prevEnd()
		return &ast.Define{Declare: decl, Names: names, NodeSpan: token.Span{Start: start, End: end}}
	}
	return decl
}

// parseNameMultiClause parses '名之曰 n1 曰 n2 ...' and returns the names.
func (p *Parser) parseNameMultiClause() []string {
	p.expect("名之曰")
	names := []string{p.nameText()}
	for p.at("曰") {
		p.advance()
		names = append(names, p.nameText())
	}
	return names
}

// parseStandaloneNameMulti handles a '名之曰' sentence that was not fused
// into a preceding Declare (e.g. naming an object's constant-true clause
// or any other bare unnamed slot). It is modeled the same as Define, with
// a nil Declare.
func (p *Parser) parseStandaloneNameMulti() ast.Statement {
	start := p.cur().Span.Start
	names := p.parseNameMultiClause()
	end := p.prevEnd()
	return &ast.Define{Declare: nil, Names: names, NodeSpan: token.Span{Start: start, End: end}}
}

func (p *Parser) prevEnd() token.Position {
	if p.pos == 0 {
		return p.toks[0].Span.Start
	}
	return p.toks[p.pos-1].Span.End
}

// ---- function definition ----

func (p *Parser) parseFunctionDefTail(start token.Position, _ int) ast.Statement {
	name := p.parseNameMultiClause()[0]

	var groups []ast.ParamGroup
	var rest *ast.RestParam
	if p.at("欲行是術") {
		p.advance()
		for p.at("必先得") {
			groups = append(groups, p.parseParamGroup())
		}
		if p.at("其餘") {
			rest = p.parseRestParam()
		}
	}

	if p.at("乃行是術曰") {
		p.advance()
	} else {
		p.expect("是術曰")
	}

	var body []ast.Statement
	for !p.at("是謂") {
		if p.atEOF() {
			p.fail("文法之禍: 術「%s」未見「是謂」而終", name)
		}
		body = append(body, p.parseStatement())
	}
	p.advance() // 是謂
	endNameSpan := p.cur().Span
	endName := p.nameText()
	if endName != name {
		panic(&GrammarError{Message: fmt.Sprintf("文法之禍: 「是謂」欲得「%s」而見「%s」", name, endName), Span: endNameSpan})
	}
	p.expect("之術也")
	end := p.prevEnd()

	return &ast.FunctionDef{
		Name:        name,
		ParamGroups: groups,
		RestParam:   rest,
		Body:        body,
		EndName:     endName,
		NodeSpan:    token.Span{Start: start, End: end},
	}
}

func (p *Parser) parseParamGroup() ast.ParamGroup {
	p.expect("必先得")
	count := p.parseCount()
	typ := p.parseTypeTag()
	p.expect("曰")
	names := []string{p.nameText()}
	for p.at("曰") {
		p.advance()
		names = append(names, p.nameText())
	}
	params := make([]ast.Param, len(names))
	for i, n := range names {
		params[i] = ast.Param{Type: typ, Name: n}
	}
	return ast.ParamGroup{Count: count, Type: typ, Params: params}
}

func (p *Parser) parseRestParam() *ast.RestParam {
	p.expect("其餘")
	typ := p.parseTypeTag()
	p.expect("曰")
	name := p.nameText()
	return &ast.RestParam{Type: typ, Name: name}
}

// ---- object literal ----

// tryParseObjectTail attempts the '名之曰 X。其物如是。... 之物也' shape;
// on any mismatch before committing to '其物如是' it returns ok=false so
// the caller can backtrack to the plain Declare/Define reading.
func (p *Parser) tryParseObjectTail(start token.Position, count int) (ast.Statement, bool) {
	names := p.parseNameMultiClause()
	if !p.at("其物如是") {
		return nil, false
	}
	p.advance()
	if count != len(names) {
		p.fail("文法之禍: 物之名數（%d）與宣告數量（%d）不符", len(names), count)
	}

	var props []ast.ObjectProp
	for !p.at("之物也") {
		if p.atEOF() {
			p.fail("文法之禍: 物未見「之物也」而終")
		}
		props = append(props, p.parseObjectProp())
	}
	p.advance() // 之物也
	end := p.prevEnd()

	return &ast.Object{
		Count:    count,
		Names:    names,
		Props:    props,
		EndName:  names[0],
		NodeSpan: token.Span{Start: start, End: end},
	}, true
}

func (p *Parser) parseObjectProp() ast.ObjectProp {
	typ := p.parseTypeTag()
	key := p.nameText()
	p.expect("曰")
	val := p.parseExpression()
	return ast.ObjectProp{Key: key, Type: typ, Value: val}
}

// ---- assign ----

func (p *Parser) parseAssign() ast.Statement {
	start := p.advance().Span.Start // 昔之
	name := p.nameText()

	var sub ast.Expression
	if p.at("之") {
		p.advance()
		sub = p.parseSubscriptIndex()
	}

	p.expectOneOf("者")
	p.expect("今")

	if p.at("不復存矣") {
		p.advance()
		p.consumeTerminator()
		end := p.prevEnd()
		return &ast.Assign{Target: ast.AssignTarget{Name: name, Subscript: sub}, Delete: true, NodeSpan: token.Span{Start: start, End: end}}
	}

	val := p.parseExpression()
	p.consumeTerminator()
	end := p.prevEnd()
	return &ast.Assign{Target: ast.AssignTarget{Name: name, Subscript: sub}, Value: val, NodeSpan: token.Span{Start: start, End: end}}
}

// consumeTerminator eats a trailing '是矣' or '是也' if present; both are
// interchangeable sentence-final markers and the lexer's skip set already
// swallows the plain '矣' punctuation, so this only needs to handle the
// two-character keyword forms.
func (p *Parser) consumeTerminator() {
	if p.at("是矣") || p.at("是也") {
		p.advance()
	}
}

func (p *Parser) expectOneOf(k token.Kind) {
	if !p.at(k) {
		p.fail("文法之禍: 欲得「%s」而見「%s」", k, p.cur().Lexeme)
	}
	p.advance()
}

// ---- if ----

func (p *Parser) parseIf() ast.Statement {
	start := p.cur().Span.Start
	var clauses []ast.IfClause
	degenerate := false

	if p.at("若其然者") || p.at("若其不然者") {
		isTrue := p.advance().Kind == "若其然者"
		body := p.parseThenBody()
		degenerate = true
		var cond ast.Expression
		if !isTrue {
			cond = &ast.Not{Operand: itExpr(start), NodeSpan: token.Span{Start: start, End: start}}
		}
		clauses = append(clauses, ast.IfClause{Cond: cond, Body: body})
	} else {
		p.expect("若")
		cond := p.parseExpression()
		p.expect("者")
		body := p.parseThenBody()
		clauses = append(clauses, ast.IfClause{Cond: cond, Body: body})
	}

	for p.at("或若") {
		p.advance()
		cond := p.parseExpression()
		p.expect("者")
		body := p.parseThenBody()
		clauses = append(clauses, ast.IfClause{Cond: cond, Body: body})
	}

	var elseBody []ast.Statement
	hasElse := false
	if p.at("若非") {
		p.advance()
		hasElse = true
		elseBody = p.parseThenBody()
	}

	end := p.prevEnd()
	return &ast.If{Clauses: clauses, DegenerateTrue: degenerate, ElseBody: elseBody, HasElse: hasElse, NodeSpan: token.Span{Start: start, End: end}}
}

// parseThenBody parses statements up to (and consuming) the clause
// terminator '云云', which every if/elif/else body shares with the loop
// bodies below.
func (p *Parser) parseThenBody() []ast.Statement {
	var body []ast.Statement
	for !p.at("云云") && !p.startsNextIfClause() {
		if p.atEOF() {
			p.fail("文法之禍: 若未見「云云」而終")
		}
		body = append(body, p.parseStatement())
	}
	if p.at("云云") {
		p.advance()
	}
	return body
}

// startsNextIfClause lets a clause body end implicitly when the next
// token opens a sibling '或若'/'若非' clause without its own '云云'.
func (p *Parser) startsNextIfClause() bool {
	return p.at("或若") || p.at("若非")
}

func itExpr(sp token.Position) ast.Expression {
	return &ast.ValueExpr{Val: &ast.It{Sp: token.Span{Start: sp, End: sp}}}
}

// ---- loops ----

func (p *Parser) parseForArray() ast.Statement {
	start := p.advance().Span.Start // 凡
	iter := p.parseExpression()
	p.expect("中之")
	elem := p.nameText()
	body := p.parseLoopBody()
	end := p.prevEnd()
	return &ast.For{Kind: ast.ForArray, Elem: elem, Iterable: iter, Body: body, NodeSpan: token.Span{Start: start, End: end}}
}

func (p *Parser) parseForWhileTrue() ast.Statement {
	start := p.advance().Span.Start // 恆為是
	body := p.parseLoopBody()
	end := p.prevEnd()
	return &ast.For{Kind: ast.ForWhileTrue, Body: body, NodeSpan: token.Span{Start: start, End: end}}
}

func (p *Parser) parseForEnumerate() ast.Statement {
	start := p.advance().Span.Start // 為是
	count := p.parseExpression()
	p.expect("遍")
	body := p.parseLoopBody()
	end := p.prevEnd()
	return &ast.For{Kind: ast.ForEnumerate, Count: count, Body: body, NodeSpan: token.Span{Start: start, End: end}}
}

func (p *Parser) parseLoopBody() []ast.Statement {
	var body []ast.Statement
	for !p.at("云云") {
		if p.atEOF() {
			p.fail("文法之禍: 迴圈未見「云云」而終")
		}
		body = append(body, p.parseStatement())
	}
	p.advance() // 云云
	return body
}

// ---- try / throw ----

func (p *Parser) parseTry() ast.Statement {
	start := p.advance().Span.Start // 姑妄行此
	var body []ast.Statement
	for !p.at("如事不諧") {
		if p.atEOF() {
			p.fail("文法之禍: 姑妄行此未見「如事不諧」而終")
		}
		body = append(body, p.parseStatement())
	}
	p.advance() // 如事不諧

	var catches []ast.Catch
	for p.at("豈") || p.at("不知何禍歟") {
		catches = append(catches, p.parseCatch())
	}

	p.expect("乃作罷")
	end := p.prevEnd()
	return &ast.Try{Body: body, Catches: catches, NodeSpan: token.Span{Start: start, End: end}}
}

func (p *Parser) parseCatch() ast.Catch {
	var tag ast.Value
	if p.at("豈") {
		p.advance()
		tag = p.parseValue()
		p.expect("之禍歟")
	} else {
		p.expect("不知何禍歟")
	}

	bind := ""
	if p.at("名之曰") {
		bind = p.parseNameMultiClause()[0]
	}

	var body []ast.Statement
	for !p.at("豈") && !p.at("不知何禍歟") && !p.at("乃作罷") {
		if p.atEOF() {
			p.fail("文法之禍: 豈…之禍歟子句未見結束而終")
		}
		body = append(body, p.parseStatement())
	}
	return ast.Catch{Tag: tag, BindName: bind, Body: body}
}

func (p *Parser) parseThrow() ast.Statement {
	start := p.advance().Span.Start // 嗚呼
	tag := p.parseValue()
	p.expect("之禍")
	var detail ast.Value
	if p.at("曰") {
		p.advance()
		detail = p.parseValue()
	}
	p.consumeTerminator()
	end := p.prevEnd()
	return &ast.Throw{Tag: tag, Detail: detail, NodeSpan: token.Span{Start: start, End: end}}
}

// ---- return ----

func (p *Parser) parseReturn() ast.Statement {
	start := p.cur().Span.Start
	switch p.advance().Kind {
	case "乃得矣":
		end := p.prevEnd()
		return &ast.Return{ReadIt: true, NodeSpan: token.Span{Start: start, End: end}}
	case "乃歸空無":
		end := p.prevEnd()
		return &ast.Return{NodeSpan: token.Span{Start: start, End: end}}
	default: // 乃得
		val := p.parseExpression()
		end := p.prevEnd()
		return &ast.Return{Value: val, NodeSpan: token.Span{Start: start, End: end}}
	}
}

// ---- import ----

func (p *Parser) parseImport() ast.Statement {
	start := p.advance().Span.Start // 吾嘗觀
	var path []ast.ImportSegment
	path = append(path, p.parseImportSegment())
	for p.at("中") {
		p.advance()
		path = append(path, p.parseImportSegment())
	}
	p.expect("之書")

	var imported []string
	if p.at("方悟") {
		p.advance()
		imported = append(imported, p.nameText())
		for !p.at("之義") {
			if p.atEOF() {
				p.fail("文法之禍: 方悟未見「之義」而終")
			}
			imported = append(imported, p.nameText())
		}
		p.advance() // 之義
	}
	end := p.prevEnd()
	return &ast.Import{Path: path, Imported: imported, NodeSpan: token.Span{Start: start, End: end}}
}

func (p *Parser) parseImportSegment() ast.ImportSegment {
	if p.at(token.StringLiteral) {
		t := p.advance()
		return ast.ImportSegment{Text: t.Lexeme, IsLiteral: true}
	}
	return ast.ImportSegment{Text: p.nameText()}
}

// ---- push / take ----

func (p *Parser) parsePushValue() ast.Statement {
	start := p.advance().Span.Start // 夫
	val := p.parseExpression()
	end := p.prevEnd()
	return &ast.PushValue{Value: val, NodeSpan: token.Span{Start: start, End: end}}
}

func (p *Parser) parseTakeArgs() ast.Statement {
	start := p.advance().Span.Start // 取
	if p.at("其餘") {
		p.advance()
		p.expect("以施")
		callee := p.parseExpression()
		end := p.prevEnd()
		return &ast.TakeArgs{Rest: true, Callee: callee, NodeSpan: token.Span{Start: start, End: end}}
	}
	count := p.parseCount()
	p.expect("以施")
	callee := p.parseExpression()
	end := p.prevEnd()
	return &ast.TakeArgs{Count: count, Callee: callee, NodeSpan: token.Span{Start: start, End: end}}
}

// ---- expression statements ----

// parseExprStmt covers every statement whose surface form is itself an
// expression: bare arithmetic, calls, subscript reads, negation, array
// concat/push, and comparisons — anything not already claimed by a
// dedicated keyword above.
func (p *Parser) parseExprStmt() ast.Statement {
	start := p.cur().Span.Start
	expr := p.parseExpression()
	end := p.prevEnd()
	return &ast.ExprStmt{Expr: expr, NodeSpan: token.Span{Start: start, End: end}}
}

// ---- expressions ----

// parseExpression dispatches on the leading keyword for the prefix-form
// operators, falling through to a primary value with postfix subscript/
// member access and an optional trailing infix comparison.
func (p *Parser) parseExpression() ast.Expression {
	switch p.cur().Kind {
	case "加", "減", "乘", "除":
		return p.parseMath()
	case "施":
		return p.parseCall()
	case "以":
		return p.parsePostfixCall()
	case "變":
		return p.parseNot()
	case "銜":
		return p.parseArrayCat()
	case "充":
		return p.parseArrayPush()
	default:
		return p.parsePostfixAndInfix()
	}
}

func (p *Parser) parseMath() ast.Expression {
	start := p.cur().Span.Start
	op := ast.MathOp(p.advance().Kind)
	a := p.parsePostfixAndInfix()

	bIsLHS := false
	switch {
	case p.at("於"):
		p.advance()
	case p.at("以"):
		p.advance()
		bIsLHS = true
	default:
		p.fail("文法之禍: %s 後欲得「於」或「以」而見「%s」", op, p.cur().Lexeme)
	}
	b := p.parsePostfixAndInfix()

	modulo := false
	if op == "除" && p.at("所餘幾何") {
		p.advance()
		modulo = true
	}

	end := p.prevEnd()
	return &ast.Math{Op: op, A: a, B: b, BIsLHS: bIsLHS, Modulo: modulo, NodeSpan: token.Span{Start: start, End: end}}
}

func (p *Parser) parseCall() ast.Expression {
	start := p.advance().Span.Start // 施
	callee := p.parsePostfixAndInfix()
	var args []ast.Expression
	for p.at("於") {
		p.advance()
		args = append(args, p.parsePostfixAndInfix())
	}
	end := p.prevEnd()
	return &ast.Call{Callee: callee, Args: args, NodeSpan: token.Span{Start: start, End: end}}
}

// parsePostfixCall handles '以a施f' and '以a f' (a single argument applied
// via a postfix marker in front of the callee; the 施 is optional).
func (p *Parser) parsePostfixCall() ast.Expression {
	start := p.advance().Span.Start // 以
	arg := p.parsePostfixAndInfix()
	if p.at("施") {
		p.advance()
	}
	callee := p.parsePostfixAndInfix()
	end := p.prevEnd()
	return &ast.Call{Callee: callee, Args: []ast.Expression{arg}, NodeSpan: token.Span{Start: start, End: end}}
}

func (p *Parser) parseNot() ast.Expression {
	start := p.advance().Span.Start // 變
	operand := p.parsePostfixAndInfix()
	end := p.prevEnd()
	return &ast.Not{Operand: operand, NodeSpan: token.Span{Start: start, End: end}}
}

func (p *Parser) parseArrayCat() ast.Expression {
	start := p.advance().Span.Start // 銜
	target := p.parsePostfixAndInfix()
	var others []ast.Expression
	for p.at("以") {
		p.advance()
		others = append(others, p.parsePostfixAndInfix())
	}
	end := p.prevEnd()
	return &ast.ArrayCat{Target: target, Others: others, NodeSpan: token.Span{Start: start, End: end}}
}

func (p *Parser) parseArrayPush() ast.Expression {
	start := p.advance().Span.Start // 充
	target := p.parsePostfixAndInfix()
	var vals []ast.Expression
	for p.at("以") {
		p.advance()
		vals = append(vals, p.parsePostfixAndInfix())
	}
	end := p.prevEnd()
	return &ast.ArrayPush{Target: target, Values: vals, NodeSpan: token.Span{Start: start, End: end}}
}

var logicOps = map[token.Kind]ast.LogicOp{
	"等於":     ast.LogicEq,
	"不等於":    ast.LogicNe,
	"不大於":    ast.LogicLe,
	"不小於":    ast.LogicGe,
	"大於":     ast.LogicGt,
	"小於":     ast.LogicLt,
}

// parsePostfixAndInfix parses one primary value, applies any trailing
// postfix subscript/member/probe forms, then checks for a trailing binary
// comparison/logic keyword.
func (p *Parser) parsePostfixAndInfix() ast.Expression {
	a := p.parsePostfix()
	if op, ok := logicOps[p.cur().Kind]; ok {
		start := a.Span().Start
		p.advance()
		b := p.parsePostfix()
		end := p.prevEnd()
		return &ast.Logic{Op: op, A: a, B: b, NodeSpan: token.Span{Start: start, End: end}}
	}
	if p.at("中有陽乎") || p.at("中無陰乎") {
		start := a.Span().Start
		op := ast.LogicOp(p.advance().Kind)
		end := p.prevEnd()
		return &ast.Logic{Op: op, A: a, NodeSpan: token.Span{Start: start, End: end}}
	}
	return a
}

// parsePostfix parses a primary expression then any chain of '之' subscript
// or member accesses.
func (p *Parser) parsePostfix() ast.Expression {
	e := p.parsePrimary()
	for p.at("之長") || p.at("之") {
		start := e.Span().Start
		if p.at("之長") {
			p.advance()
			end := p.prevEnd()
			e = &ast.Subscript{Target: e, Length: true, NodeSpan: token.Span{Start: start, End: end}}
			continue
		}
		p.advance() // 之
		if p.at("其餘") {
			p.advance()
			end := p.prevEnd()
			e = &ast.Subscript{Target: e, Rest: true, NodeSpan: token.Span{Start: start, End: end}}
			continue
		}
		// A string-literal key ('之「「鍵」」') reads an object field by
		// name; a bracket identifier or numeral ('之「乙」', '之三') is
		// always a numeric subscript, even when it names a variable, so
		// the two forms stay unambiguous without any type information.
		if p.at(token.StringLiteral) {
			key := p.advance().Lexeme
			end := p.prevEnd()
			e = &ast.Member{Target: e, Key: key, NodeSpan: token.Span{Start: start, End: end}}
			continue
		}
		idx := p.parsePostfix()
		end := p.prevEnd()
		e = &ast.Subscript{Target: e, Index: idx, NodeSpan: token.Span{Start: start, End: end}}
	}
	return e
}

// parseSubscriptIndex parses the '之 index' following an assign target;
// '其餘' has no meaning there, so only the index/length forms apply.
func (p *Parser) parseSubscriptIndex() ast.Expression {
	if p.at("之長") {
		start := p.cur().Span.Start
		p.advance()
		end := p.prevEnd()
		return &ast.Subscript{Length: true, NodeSpan: token.Span{Start: start, End: end}}
	}
	return p.parsePrimary()
}

// parsePrimary parses a literal, identifier, or the implicit 其 register.
func (p *Parser) parsePrimary() ast.Expression {
	t := p.cur()
	switch {
	case t.Kind == token.StringLiteral:
		p.advance()
		return &ast.ValueExpr{Val: &ast.StringLit{Text: t.Lexeme, Sp: t.Span}}
	case t.Kind == token.Identifier:
		p.advance()
		return &ast.ValueExpr{Val: &ast.Ident{Name: t.Lexeme, Sp: t.Span}}
	case t.Kind == token.IntNum:
		p.advance()
		digits := "0"
		if t.NumInt != nil {
			digits = t.NumInt.String()
		}
		return &ast.ValueExpr{Val: &ast.IntLit{Digits: digits, Sp: t.Span}}
	case t.Kind == token.FloatNum:
		p.advance()
		return &ast.ValueExpr{Val: &ast.FloatLit{Val: t.NumFloat, Sp: t.Span}}
	case token.BoolValues[t.Kind]:
		p.advance()
		return &ast.ValueExpr{Val: &ast.BoolLit{Val: t.Kind == "陽", Sp: t.Span}}
	case t.Kind == "其":
		p.advance()
		return &ast.ValueExpr{Val: &ast.It{Sp: t.Span}}
	default:
		p.fail("文法之禍: 欲得值而見「%s」", t.Lexeme)
		return nil
	}
}

// parseValue parses a primary literal/identifier/其 in a Value-typed
// position (Declare initializers, throw tags, catch tags) rather than an
// Expression-typed one — same grammar, narrower result type.
func (p *Parser) parseValue() ast.Value {
	e := p.parsePrimary()
	if ve, ok := e.(*ast.ValueExpr); ok {
		return ve.Val
	}
	p.fail("文法之禍: 欲得值")
	return nil
}
