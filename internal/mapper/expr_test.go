package mapper

import "testing"

func TestParseIntLiterals(t *testing.T) {
	cases := []struct {
		in   string
		want int64
	}{
		{"0", 0},
		{"42", 42},
		{"0x2a", 42},
		{"0b101010", 42},
		{"0o52", 42},
		{"4k", 4000},
		{"4ki", 4096},
		{"2m", 2000000},
		{"1gi", 1 << 30},
		{"-5", -5},
		{"2 + 3 * 4", 14},
		{"(2 + 3) * 4", 20},
		{"4 - 2 ** 3", 8},
		{"3 ** 2 - 1", 3},
		{"2 ** 3 ** 2", 512},
		{"3 << 2 - 1", 6},
		{"3 - 2 << 1", 2},
		{"1 | 2 & 3", 3},
	}
	for _, c := range cases {
		got, err := ParseInt(c.in)
		if err != nil {
			t.Fatalf("ParseInt(%q) error: %v", c.in, err)
		}
		if got != c.want {
			t.Errorf("ParseInt(%q) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestParseIntRejectsVariables(t *testing.T) {
	if _, err := ParseInt("s + 1"); err == nil {
		t.Fatal("expected error referencing a variable in a plain integer literal")
	}
}
