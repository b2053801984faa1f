package models

import (
	"math"
	"testing"
)

func TestNewDataRowStartsAbsent(t *testing.T) {
	row := NewDataRow()
	if !math.IsNaN(row.Close) || !math.IsNaN(row.K) || !math.IsNaN(row.Concentration90) {
		t.Fatalf("numeric fields must start as NaN: %+v", row)
	}
	if HasValues(row.Close) {
		t.Fatalf("NaN must read as absent")
	}
	row.Close = 0
	if !HasValues(row.Close) {
		t.Fatalf("zero is a present value")
	}
}

func TestHasValuesMixed(t *testing.T) {
	if HasValues(1, math.NaN(), 3) {
		t.Fatalf("one absent field must fail the check")
	}
	if !HasValues() {
		t.Fatalf("empty argument list is vacuously present")
	}
}

func TestClassifyBoard(t *testing.T) {
	cases := []struct {
		code, name string
		want       BoardType
	}{
		{"600000", "Test Co", BoardNormal},
		{"300750", "Growth Co", BoardGrowth},
		{"600123", "ST Troubled", BoardST},
		{"300123", "ST Growth", BoardGrowth}, // growth code wins over ST name
	}
	for _, tc := range cases {
		if got := ClassifyBoard(tc.code, tc.name); got != tc.want {
			t.Fatalf("ClassifyBoard(%q, %q) = %v, want %v", tc.code, tc.name, got, tc.want)
		}
	}
}

func TestLimitThreshold(t *testing.T) {
	if got := BoardNormal.LimitThreshold(); got != 9.5 {
		t.Fatalf("normal = %v", got)
	}
	if got := BoardGrowth.LimitThreshold(); got != 19.0 {
		t.Fatalf("growth = %v", got)
	}
	if got := BoardST.LimitThreshold(); got != 4.5 {
		t.Fatalf("st = %v", got)
	}
}
