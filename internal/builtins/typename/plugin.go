// Package typename maps a value's coarse runtime category to its Wenyan
// type-tag character ('數列言爻物元' plus the two categories the grammar
// has no declarable tag for, functions and thrown errors). A plain
// string-to-string lookup that internal/eval's TypeName calls into.
package typename

const (
	Null   = "null"
	Bool   = "bool"
	Number = "number"
	String = "string"
	Array  = "array"
	Object = "object"
	Func   = "func"
	Error  = "error"
)

var tags = map[string]string{
	Null:   "元",
	Bool:   "爻",
	Number: "數",
	String: "言",
	Array:  "列",
	Object: "物",
	Func:   "術",
	Error:  "禍",
}

// Of returns the type-tag character for category, or "?" if category is
// not one this package recognizes.
func Of(category string) string {
	if tag, ok := tags[category]; ok {
		return tag
	}
	return "?"
}
