package util

import "testing"

func TestNormalizeDate(t *testing.T) {
	cases := map[string]string{
		"20240105":             "20240105",
		"2024-01-05":           "20240105",
		"2024-01-05T00:00:00Z": "20240105",
		" 20240105 ":           "20240105",
	}
	for in, want := range cases {
		got, ok := NormalizeDate(in)
		if !ok {
			t.Fatalf("NormalizeDate(%q) not ok", in)
		}
		if got != want {
			t.Fatalf("NormalizeDate(%q) = %q, want %q", in, got, want)
		}
	}
	if _, ok := NormalizeDate("not-a-date"); ok {
		t.Fatalf("expected failure for garbage input")
	}
	if _, ok := NormalizeDate(""); ok {
		t.Fatalf("expected failure for empty input")
	}
}

func TestOrderRangeSwapsReversed(t *testing.T) {
	s, e, ok := OrderRange("20240301", "20240105")
	if !ok {
		t.Fatalf("expected ok")
	}
	if s != "20240105" || e != "20240301" {
		t.Fatalf("got range %s..%s", s, e)
	}
}

func TestPadSymbol(t *testing.T) {
	if got := PadSymbol("1"); got != "000001" {
		t.Fatalf("got %q", got)
	}
	if got := PadSymbol("600000"); got != "600000" {
		t.Fatalf("got %q", got)
	}
	if got := PadSymbol("AAPL"); got != "AAPL" {
		t.Fatalf("got %q", got)
	}
}
