// Package numeral decodes Wenyan's compound Chinese numeral literals into
// arbitrary-precision integers or float64 decimals.
package numeral

import (
	"fmt"
	"math/big"
)

// Result is the decoded value of a numeral token: either an arbitrary
// precision integer, or (when a decimal point or fractional unit is
// present) a float64.
type Result struct {
	IsFloat bool
	Int     *big.Int
	Float   float64
}

// Error is returned for any malformed numeral.
type Error struct {
	Message string
}

func (e *Error) Error() string { return e.Message }

func errf(format string, args ...any) error {
	return &Error{Message: fmt.Sprintf(format, args...)}
}

var digitValue = map[rune]int64{
	'零': 0, '〇': 0, '一': 1, '二': 2, '三': 3, '四': 4,
	'五': 5, '六': 6, '七': 7, '八': 8, '九': 9,
}

var smallUnit = map[rune]int64{
	'十': 10, '百': 100, '千': 1000,
}

// largeUnit values are myriad-grouped (萬進): 萬=10^4, 億=10^8, and the
// exponent grows by 4 per step thereafter (兆=10^12 ... 極=10^48).
var largeUnit = map[rune]*big.Int{}

func pow10(n int64) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(n), nil)
}

func init() {
	largeUnit['萬'] = pow10(4)
	largeUnit['億'] = pow10(8)
	largeUnit['兆'] = pow10(12)
	largeUnit['京'] = pow10(16)
	largeUnit['垓'] = pow10(20)
	largeUnit['秭'] = pow10(24)
	largeUnit['穰'] = pow10(28)
	largeUnit['溝'] = pow10(32)
	largeUnit['澗'] = pow10(36)
	largeUnit['正'] = pow10(40)
	largeUnit['載'] = pow10(44)
	largeUnit['極'] = pow10(48)
}

// fractionPlace maps a fractional-place unit to its 1-based decimal place
// (分=10^-1 is place 1, 釐=10^-2 is place 2, ... 漠=10^-12 is place 12).
var fractionPlace = map[rune]int{
	'分': 1, '釐': 2, '毫': 3, '絲': 4, '忽': 5, '微': 6,
	'纖': 7, '沙': 8, '塵': 9, '埃': 10, '渺': 11, '漠': 12,
}

func isDigit(r rune) bool   { _, ok := digitValue[r]; return ok }
func isFraction(r rune) bool { _, ok := fractionPlace[r]; return ok }

const alphabet = "負·又零〇一二三四五六七八九十百千萬億兆京垓秭穰溝澗正載極分釐毫絲忽微纖沙塵埃渺漠"

var alphabetSet map[rune]bool

func init() {
	alphabetSet = make(map[rune]bool)
	for _, r := range alphabet {
		alphabetSet[r] = true
	}
}

// Decode parses a maximal run of numeral characters (as scanned by the
// lexer) into a Result.
func Decode(s string) (Result, error) {
	runes := []rune(s)
	if len(runes) == 0 {
		return Result{}, errf("空數字")
	}
	for _, r := range runes {
		if !alphabetSet[r] {
			return Result{}, errf("非數值字符")
		}
	}

	negative := false
	if runes[0] == '負' {
		negative = true
		runes = runes[1:]
		for _, r := range runes {
			if r == '負' {
				return Result{}, errf("多重負號")
			}
		}
	} else {
		for _, r := range runes {
			if r == '負' {
				return Result{}, errf("負號位置錯誤")
			}
		}
	}
	if len(runes) == 0 {
		return Result{}, errf("空數字")
	}

	dotCount := 0
	againCount := 0
	for _, r := range runes {
		if r == '·' {
			dotCount++
		}
		if r == '又' {
			againCount++
		}
	}

	switch {
	case dotCount > 0:
		return decodeDot(runes, dotCount, againCount, negative)
	case againCount > 0:
		return decodeAgain(runes, againCount, negative)
	case hasAny(runes, isFraction):
		return decodeBareFraction(runes, negative)
	default:
		iv, err := decodeInteger(runes)
		if err != nil {
			return Result{}, err
		}
		return finishInt(iv, negative), nil
	}
}

func hasAny(runes []rune, pred func(rune) bool) bool {
	for _, r := range runes {
		if pred(r) {
			return true
		}
	}
	return false
}

func finishInt(v *big.Int, negative bool) Result {
	if negative {
		v = new(big.Int).Neg(v)
	}
	return Result{IsFloat: false, Int: v}
}

func finishFloat(f float64, negative bool) Result {
	if negative {
		f = -f
	}
	return Result{IsFloat: true, Float: f}
}

func decodeDot(runes []rune, dotCount, againCount int, negative bool) (Result, error) {
	if dotCount != 1 {
		return Result{}, errf("多重小數點")
	}
	if againCount > 0 {
		return Result{}, errf("混用小數點與又")
	}
	for _, r := range runes {
		if r == '·' {
			continue
		}
		if !isDigit(r) {
			return Result{}, errf("非數字")
		}
	}
	if runes[0] == '·' || runes[len(runes)-1] == '·' {
		return Result{}, errf("小數點位置錯誤")
	}
	var intPart, fracPart []rune
	seen := false
	for _, r := range runes {
		if r == '·' {
			seen = true
			continue
		}
		if !seen {
			intPart = append(intPart, r)
		} else {
			fracPart = append(fracPart, r)
		}
	}
	f, err := digitStringToFloat(intPart, fracPart)
	if err != nil {
		return Result{}, err
	}
	return finishFloat(f, negative), nil
}

func digitStringToFloat(intPart, fracPart []rune) (float64, error) {
	intStr := ""
	for _, r := range intPart {
		intStr += fmt.Sprintf("%d", digitValue[r])
	}
	if intStr == "" {
		intStr = "0"
	}
	fracStr := ""
	for _, r := range fracPart {
		fracStr += fmt.Sprintf("%d", digitValue[r])
	}
	text := intStr
	if fracStr != "" {
		text += "." + fracStr
	}
	var f float64
	_, err := fmt.Sscanf(text, "%g", &f)
	if err != nil {
		return 0, errf("非數字")
	}
	return f, nil
}

func decodeAgain(runes []rune, againCount int, negative bool) (Result, error) {
	if againCount != 1 {
		return Result{}, errf("多重又")
	}
	idx := indexOf(runes, '又')
	head := runes[:idx]
	tail := runes[idx+1:]
	if len(tail) == 0 {
		return Result{}, errf("又後為空")
	}
	var headVal *big.Int
	var err error
	if len(head) == 0 {
		headVal = big.NewInt(0)
	} else {
		headVal, err = decodeInteger(head)
		if err != nil {
			return Result{}, err
		}
	}
	if hasAny(tail, isFraction) {
		fracStr, err := decodeFraction(tail)
		if err != nil {
			return Result{}, err
		}
		if fracStr == "" || allZero(fracStr) {
			return finishInt(headVal, negative), nil
		}
		hf := new(big.Float).SetInt(headVal)
		ff, _ := new(big.Float).SetString("0." + fracStr)
		sum := new(big.Float).Add(hf, ff)
		f64, _ := sum.Float64()
		return finishFloat(f64, negative), nil
	}
	tailVal, err := decodeInteger(tail)
	if err != nil {
		return Result{}, err
	}
	sum := new(big.Int).Add(headVal, tailVal)
	return finishInt(sum, negative), nil
}

func decodeBareFraction(runes []rune, negative bool) (Result, error) {
	fracStr, err := decodeFraction(runes)
	if err != nil {
		return Result{}, err
	}
	if fracStr == "" || allZero(fracStr) {
		return finishInt(big.NewInt(0), negative), nil
	}
	f, _ := new(big.Float).SetString("0." + fracStr)
	f64, _ := f.Float64()
	return finishFloat(f64, negative), nil
}

func allZero(s string) bool {
	for _, r := range s {
		if r != '0' {
			return false
		}
	}
	return true
}

func indexOf(runes []rune, target rune) int {
	for i, r := range runes {
		if r == target {
			return i
		}
	}
	return -1
}

// decodeInteger parses a run containing only digits and multipliers into a
// big.Int, following wenyan.py's 解析整數.
func decodeInteger(runes []rune) (*big.Int, error) {
	if len(runes) == 0 {
		return big.NewInt(0), nil
	}
	for _, r := range runes {
		if isFraction(r) || r == '·' || r == '又' {
			return nil, errf("非法整數")
		}
	}

	allDigits := true
	for _, r := range runes {
		if !isDigit(r) {
			allDigits = false
			break
		}
	}
	if allDigits {
		digits := ""
		for _, r := range runes {
			digits += fmt.Sprintf("%d", digitValue[r])
		}
		v, ok := new(big.Int).SetString(digits, 10)
		if !ok {
			return big.NewInt(0), nil
		}
		return v, nil
	}

	total := big.NewInt(0)
	section := big.NewInt(0)
	current := big.NewInt(0)
	haveDigit := false

	for _, r := range runes {
		switch {
		case isDigit(r):
			current = big.NewInt(digitValue[r])
			haveDigit = true
		case smallUnit[r] != 0:
			unit := big.NewInt(smallUnit[r])
			if !haveDigit {
				current = big.NewInt(1)
			}
			section = new(big.Int).Add(section, new(big.Int).Mul(current, unit))
			current = big.NewInt(0)
			haveDigit = false
		case largeUnit[r] != nil:
			unit := largeUnit[r]
			if !haveDigit && section.Sign() == 0 {
				section = big.NewInt(1)
			} else {
				section = new(big.Int).Add(section, current)
			}
			total = new(big.Int).Add(total, new(big.Int).Mul(section, unit))
			section = big.NewInt(0)
			current = big.NewInt(0)
			haveDigit = false
		default:
			return nil, errf("非法整數")
		}
	}
	result := new(big.Int).Add(total, section)
	if haveDigit {
		result = new(big.Int).Add(result, current)
	}
	return result, nil
}

// decodeFraction parses a fractional-unit run into a string of decimal
// digits (one per place, zero-padded for skipped places), following
// wenyan.py's 解析小數.
func decodeFraction(runes []rune) (string, error) {
	if len(runes) == 0 {
		return "", errf("空小數")
	}
	nextPlace := 1
	var places []byte
	i := 0
	for i < len(runes) {
		r := runes[i]
		switch {
		case isDigit(r):
			d := digitValue[r]
			if i+1 < len(runes) && isFraction(runes[i+1]) {
				unitRune := runes[i+1]
				target := fractionPlace[unitRune]
				if target < nextPlace {
					return "", errf("小數位錯序")
				}
				for nextPlace < target {
					places = append(places, '0')
					nextPlace++
				}
				places = append(places, byte('0'+d))
				nextPlace = target + 1
				i += 2
			} else {
				if nextPlace > 12 {
					return "", errf("小數位過長")
				}
				places = append(places, byte('0'+d))
				nextPlace++
				i++
			}
		case isFraction(r):
			target := fractionPlace[r]
			if target < nextPlace {
				return "", errf("小數位錯序")
			}
			for nextPlace < target {
				places = append(places, '0')
				nextPlace++
			}
			places = append(places, '1')
			nextPlace = target + 1
			i++
		default:
			return "", errf("非法小數")
		}
	}
	return string(places), nil
}
