// Package token defines the lexical vocabulary of Wenyan source text.
package token

import (
	"math/big"
	"sort"

	pl "github.com/alecthomas/participle/v2/lexer"
)

// Kind identifies the category of a token.
type Kind string

// Position describes a rune offset and 1-based line/column. It embeds the
// participle lexer's position shape so front-end tokens are interchangeable
// with any consumer built against participle/v2/lexer.
type Position struct {
	pl.Position
}

// Span is a half-open [Start, End) range over the source text.
type Span struct {
	Start Position
	End   Position
}

// Token carries a lexical item along with its source range and, for
// numerals, the decoded value.
type Token struct {
	Kind      Kind
	Lexeme    string
	Span      Span
	IsFloat   bool     // valid only when Kind == IntNum or FloatNum
	NumInt    *big.Int // valid only when Kind == IntNum
	NumFloat  float64  // valid only when Kind == FloatNum
}

const (
	EOF     Kind = "EOF"
	Illegal Kind = "ILLEGAL"

	StringLiteral Kind = "STRING_LITERAL"
	Identifier    Kind = "IDENTIFIER"
	IntNum        Kind = "INT_NUM"
	FloatNum      Kind = "FLOAT_NUM"
)

// keywords is the literal Wenyan keyword vocabulary. Kind values equal the
// keyword lexeme itself; the parser switches on Kind, not Lexeme, but for
// keyword tokens the two always agree.
var keywords = []string{
	"吾有",
	"今有",
	"物之",
	"有",
	"數",
	"列",
	"言",
	"術",
	"爻",
	"物",
	"元",
	"書之",
	"名之曰",
	"施",
	"以施",
	"曰",
	"噫",
	"取",
	"昔之",
	"今",
	"是矣",
	"不復存矣",
	"其",
	"乃得",
	"乃得矣",
	"乃歸空無",
	"是謂",
	"之術也",
	"必先得",
	"是術曰",
	"乃行是術曰",
	"欲行是術",
	"也",
	"云云",
	"凡",
	"中之",
	"恆為是",
	"為是",
	"遍",
	"乃止",
	"乃止是遍",
	"若非",
	"若",
	"者",
	"若其然者",
	"若其不然者",
	"或若",
	"其物如是",
	"之物也",
	"夫",
	"等於",
	"不等於",
	"不大於",
	"不小於",
	"大於",
	"小於",
	"加",
	"減",
	"乘",
	"除",
	"中有陽乎",
	"中無陰乎",
	"變",
	"所餘幾何",
	"以",
	"於",
	"之長",
	"之",
	"充",
	"銜",
	"其餘",
	"陰",
	"陽",
	"吾嘗觀",
	"中",
	"之書",
	"方悟",
	"之義",
	"嗚呼",
	"之禍",
	"姑妄行此",
	"如事不諧",
	"豈",
	"之禍歟",
	"不知何禍歟",
	"乃作罷",
	"或云",
	"蓋謂",
	"注曰",
	"疏曰",
	"批曰",
	"是也",
}

// TypeTag names ('數 列 言 爻 物 元') and bool literals ('陰 陽') double as
// both keywords and semantic tags; the parser recognizes them via Kind.
var TypeTags = map[Kind]bool{
	"數": true, "列": true, "言": true, "爻": true, "物": true, "元": true,
}

var BoolValues = map[Kind]bool{
	"陰": true, "陽": true,
}

// keywordsByFirstRune buckets keywords by their leading rune, each bucket
// sorted longest-first, mirroring wenyan.py's 關鍵詞前綴 construction so the
// lexer can do a longest-match scan in bucket order.
var keywordsByFirstRune map[rune][]string

func init() {
	keywordsByFirstRune = make(map[rune][]string)
	sorted := append([]string(nil), keywords...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return len([]rune(sorted[i])) > len([]rune(sorted[j]))
	})
	for _, kw := range sorted {
		r := []rune(kw)[0]
		keywordsByFirstRune[r] = append(keywordsByFirstRune[r], kw)
	}
}

// MatchKeyword returns the longest keyword literally matching src at
// position i (a rune slice), or "" if none matches.
func MatchKeyword(src []rune, i int) string {
	candidates, ok := keywordsByFirstRune[src[i]]
	if !ok {
		return ""
	}
	for _, kw := range candidates {
		kr := []rune(kw)
		if i+len(kr) > len(src) {
			continue
		}
		match := true
		for j, r := range kr {
			if src[i+j] != r {
				match = false
				break
			}
		}
		if match {
			return kw
		}
	}
	return ""
}

// Skip is the set of characters the lexer discards without emitting a
// token: ASCII whitespace, ideographic space, and Wenyan's own sentence
// punctuation.
func IsSkip(r rune) bool {
	switch r {
	case ' ', '\t', '\r', '\n', '　', '。', '、', '，', '矣':
		return true
	default:
		return false
	}
}

// NumeralChars is the full alphabet a numeral token may be built from:
// digits, small/large multipliers, the decimal dot, the fraction
// conjunction 又, sign, and fractional-place units.
const NumeralChars = "負·又零〇一二三四五六七八九十百千萬億兆京垓秭穰溝澗正載極分釐毫絲忽微纖沙塵埃渺漠"

var numeralSet map[rune]bool

func init() {
	numeralSet = make(map[rune]bool)
	for _, r := range NumeralChars {
		numeralSet[r] = true
	}
}

func IsNumeralRune(r rune) bool {
	return numeralSet[r]
}

// CommentIntroducers are the three keywords that precede a discarded
// comment string literal.
var CommentIntroducers = map[Kind]bool{
	"注曰": true, "疏曰": true, "批曰": true,
}
