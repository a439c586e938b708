package token

import "testing"

func TestMatchKeywordLongestMatch(t *testing.T) {
	// 若其然者 must lex as one token, not 若 + 其 + 然者 (若 is itself a
	// keyword and a shorter prefix match would be wrong).
	src := []rune("若其然者云云")
	kw := MatchKeyword(src, 0)
	if kw != "若其然者" {
		t.Fatalf("MatchKeyword = %q, want 若其然者", kw)
	}
}

func TestMatchKeywordNoMatch(t *testing.T) {
	src := []rune("甲乙丙")
	if kw := MatchKeyword(src, 0); kw != "" {
		t.Fatalf("MatchKeyword = %q, want no match", kw)
	}
}

func TestIsSkip(t *testing.T) {
	for _, r := range []rune{' ', '\n', '\t', '　', '。', '、', '，', '矣'} {
		if !IsSkip(r) {
			t.Errorf("IsSkip(%q) = false, want true", r)
		}
	}
	if IsSkip('言') {
		t.Errorf("IsSkip('言') = true, want false")
	}
}

func TestIsNumeralRune(t *testing.T) {
	for _, r := range NumeralChars {
		if !IsNumeralRune(r) {
			t.Errorf("IsNumeralRune(%q) = false, want true", r)
		}
	}
	if IsNumeralRune('言') {
		t.Errorf("IsNumeralRune('言') = true, want false")
	}
}
