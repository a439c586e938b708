package numeral

import (
	"math/big"
	"testing"
)

// Cases cover both simple positional digit strings and grouped forms with
// 十/百/千/萬/億 multipliers, plus the myriad-grouped 垓 tier.
func TestDecodeInteger(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"一二三", "123"},
		{"十", "10"},
		{"十二", "12"},
		{"二十一", "21"},
		{"一百零二", "102"},
		{"三千零五", "3005"},
		{"一萬零三", "10003"},
		{"一億二千三百四十五萬六千七百八十九", "123456789"},
		{"一垓", "1" + zeros(20)},
		{"一又二", "3"},
	}
	for _, tt := range tests {
		got, err := Decode(tt.in)
		if err != nil {
			t.Fatalf("Decode(%q) unexpected error: %v", tt.in, err)
		}
		if got.IsFloat {
			t.Fatalf("Decode(%q) = float, want int", tt.in)
		}
		want, _ := new(big.Int).SetString(tt.want, 10)
		if got.Int.Cmp(want) != 0 {
			t.Errorf("Decode(%q) = %s, want %s", tt.in, got.Int.String(), tt.want)
		}
	}
}

func zeros(n int) string {
	out := make([]byte, n)
	for i := range out {
		out[i] = '0'
	}
	return string(out)
}

func TestDecodeFraction(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"一·二三", 1.23},
		{"零·三", 0.3},
		{"分", 0.1},
		{"三分", 0.3},
		{"負三分", -0.3},
		{"一又二分三釐", 1.23},
	}
	for _, tt := range tests {
		got, err := Decode(tt.in)
		if err != nil {
			t.Fatalf("Decode(%q) unexpected error: %v", tt.in, err)
		}
		if !got.IsFloat {
			t.Fatalf("Decode(%q) = int, want float", tt.in)
		}
		if diff := got.Float - tt.want; diff > 1e-9 || diff < -1e-9 {
			t.Errorf("Decode(%q) = %v, want %v", tt.in, got.Float, tt.want)
		}
	}
}

func TestDecodeInvalid(t *testing.T) {
	invalid := []string{
		"負負一",
		"一·二·三",
		"一又",
		"二釐分",
		"·三",
		"三·",
		"一又二又三",
	}
	for _, in := range invalid {
		if _, err := Decode(in); err == nil {
			t.Errorf("Decode(%q): expected error, got none", in)
		}
	}
}
