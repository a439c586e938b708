package wenyan

import (
	"bytes"
	"strings"
	"testing"
)

func run(t *testing.T, src string) string {
	t.Helper()
	var buf bytes.Buffer
	if err := Run(src, "t.wy", &buf, nil); err != nil {
		t.Fatalf("Run(%q) error: %v", src, err)
	}
	return buf.String()
}

func TestRunHelloWorld(t *testing.T) {
	got := run(t, "吾有一言。曰「「你好」」。名之曰「甲」。書之。")
	if got != "你好\n" {
		t.Fatalf("output = %q, want %q", got, "你好\n")
	}
}

func TestRunArithmetic(t *testing.T) {
	got := run(t, "加一以二。書之。")
	if got != "3\n" {
		t.Fatalf("output = %q, want %q", got, "3\n")
	}
}

func TestRunFunctionCall(t *testing.T) {
	src := `吾有一術。名之曰「加倍」。
欲行是術。必先得一數。曰「甲」。
乃行是術曰。
	加「甲」以「甲」。乃得矣。
是謂「加倍」之術也。
施「加倍」於三。書之。`
	got := run(t, src)
	if got != "6\n" {
		t.Fatalf("output = %q, want %q", got, "6\n")
	}
}

func TestRunCurrying(t *testing.T) {
	src := `吾有一術。名之曰「加」。
欲行是術。必先得二數。曰「甲」。曰「乙」。
乃行是術曰。
	加「甲」以「乙」。乃得矣。
是謂「加」之術也。
夫三。取一以施「加」。名之曰「加三」。
施「加三」於四。書之。`
	got := run(t, src)
	if got != "7\n" {
		t.Fatalf("output = %q, want %q", got, "7\n")
	}
}

func TestRunIfElse(t *testing.T) {
	src := `吾有一數。曰五。名之曰甲。
若甲大於三者。
	吾有一言。曰「「大」」。書之。
若非。
	吾有一言。曰「「小」」。書之。
云云。`
	got := run(t, src)
	if got != "大\n" {
		t.Fatalf("output = %q, want %q", got, "大\n")
	}
}

func TestRunIfDegenerateTrue(t *testing.T) {
	src := `吾有一爻。曰陰。名之曰「甲」。
若其然者。
	吾有一言。曰「「真」」。書之。
云云。`
	got := run(t, src)
	if got != "真\n" {
		t.Fatalf("output = %q, want %q", got, "真\n")
	}
}

func TestRunFunctionDefTailNameMismatchIsGrammarError(t *testing.T) {
	var buf bytes.Buffer
	src := `吾有一術。名之曰「加」。
乃行是術曰。乃得矣。
是謂「減」之術也。`
	err := Run(src, "t.wy", &buf, nil)
	if err == nil {
		t.Fatal("expected a grammar error")
	}
	if _, ok := err.(*GrammarError); !ok {
		t.Fatalf("error type = %T, want *GrammarError", err)
	}
}

func TestRunForEnumerateBreak(t *testing.T) {
	src := `吾有一數。曰零。名之曰「甲」。
為是五遍。
	昔之「甲」者今「甲」是矣。
	乃止。
云云。
夫「甲」。書之。`
	got := run(t, src)
	if got != "0\n" {
		t.Fatalf("output = %q, want %q", got, "0\n")
	}
}

func TestRunArrayPushAndSubscript(t *testing.T) {
	src := `吾有一列。名之曰甲。
充甲以一以二以三。
夫甲之長。書之。
夫甲之二。書之。`
	got := run(t, src)
	if got != "3\n2\n" {
		t.Fatalf("output = %q, want %q", got, "3\n2\n")
	}
}

func TestRunArrayLiteralElements(t *testing.T) {
	src := `吾有一列。曰一。曰二。曰三。名之曰「甲」。
夫「甲」之長。書之。
夫「甲」之三。書之。`
	got := run(t, src)
	if got != "3\n3\n" {
		t.Fatalf("output = %q, want %q", got, "3\n3\n")
	}
}

func TestRunObjectLiteralMemberRead(t *testing.T) {
	src := `吾有一物。名之曰「甲」。
其物如是。
	數「性」曰五。
之物也。
夫「甲」之「「性」」。書之。`
	got := run(t, src)
	if got != "5\n" {
		t.Fatalf("output = %q, want %q", got, "5\n")
	}
}

func TestRunAssignDelete(t *testing.T) {
	src := `吾有一列。名之曰「甲」。
充「甲」以一以二以三。
昔之「甲」之二者今不復存矣是矣。
夫「甲」之長。書之。
夫「甲」之二。書之。`
	got := run(t, src)
	if got != "2\n3\n" {
		t.Fatalf("output = %q, want %q", got, "2\n3\n")
	}
}

func TestRunTryCatch(t *testing.T) {
	src := `姑妄行此。
嗚呼「「甲禍」」之禍。
如事不諧。
豈「「甲禍」」之禍歟。
吾有一言。曰「「已捕獲」」。書之。
乃作罷。`
	got := run(t, src)
	if got != "已捕獲\n" {
		t.Fatalf("output = %q, want %q", got, "已捕獲\n")
	}
}

func TestRunTryCatchAll(t *testing.T) {
	src := `姑妄行此。
嗚呼「「甲禍」」之禍。
如事不諧。
不知何禍歟。
吾有一言。曰「「兜底」」。書之。
乃作罷。`
	got := run(t, src)
	if got != "兜底\n" {
		t.Fatalf("output = %q, want %q", got, "兜底\n")
	}
}

func TestRunUncaughtThrowIsRuntimeError(t *testing.T) {
	var buf bytes.Buffer
	err := Run(`嗚呼「「甲禍」」之禍。`, "t.wy", &buf, nil)
	if err == nil {
		t.Fatal("expected an error for an uncaught throw")
	}
	rerr, ok := err.(*RuntimeError)
	if !ok {
		t.Fatalf("error type = %T, want *RuntimeError", err)
	}
	if rerr.Tag != "甲禍" {
		t.Fatalf("Tag = %q, want 甲禍", rerr.Tag)
	}
}

func TestRunGrammarErrorOnBadSyntax(t *testing.T) {
	var buf bytes.Buffer
	err := Run("曰。", "t.wy", &buf, nil)
	if err == nil {
		t.Fatal("expected a grammar error")
	}
	if _, ok := err.(*GrammarError); !ok {
		t.Fatalf("error type = %T, want *GrammarError", err)
	}
}

func TestRunLexErrorOnIllegalChar(t *testing.T) {
	var buf bytes.Buffer
	err := Run("abc", "t.wy", &buf, nil)
	if err == nil {
		t.Fatal("expected a grammar error for an illegal character")
	}
	ge, ok := err.(*GrammarError)
	if !ok {
		t.Fatalf("error type = %T, want *GrammarError", err)
	}
	if !strings.Contains(ge.Message, "文法之禍") {
		t.Fatalf("message = %q, want it to mention 文法之禍", ge.Message)
	}
}

func TestRunTypeNameBuiltin(t *testing.T) {
	got := run(t, "施「之類」於三。書之。")
	if got != "數\n" {
		t.Fatalf("output = %q, want %q", got, "數\n")
	}
}

func TestRunMacroAlias(t *testing.T) {
	src := "或云「「double」」蓋謂「「加倍」」。" + `
吾有一術。名之曰「加倍」。
欲行是術。必先得一數。曰甲。
乃行是術曰。
	加甲以甲。乃得矣。
是謂「加倍」之術也。
施「double」於五。書之。`
	got := run(t, src)
	if got != "10\n" {
		t.Fatalf("output = %q, want %q", got, "10\n")
	}
}
