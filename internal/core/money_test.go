package core

import (
	"math"
	"testing"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out Pesos
		ok  bool
	}{
		{"150", 150, true},
		{" 50000 ", 50000, true},
		{"150.4", 150, true},
		{"150,5", 151, true},
		{"0.6", 1, true},
		{"0", 0, false},
		{"0.4", 0, false},
		{"-1", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got, err)
			}
		} else if err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
}

func TestPesosFromFloat(t *testing.T) {
	if p, err := PesosFromFloat(50000); err != nil || p != 50000 {
		t.Fatalf("expected 50000, got %d (%v)", p, err)
	}
	if p, err := PesosFromFloat(12.5); err != nil || p != 13 {
		t.Fatalf("expected 13, got %d (%v)", p, err)
	}
	for _, f := range []float64{0, -3, math.NaN(), math.Inf(1)} {
		if _, err := PesosFromFloat(f); err == nil {
			t.Fatalf("expected error for %v", f)
		}
	}
}

func TestFormatCOP(t *testing.T) {
	cases := map[Pesos]string{
		0:       "$ 0",
		150:     "$ 150",
		1234567: "$ 1.234.567",
	}
	for in, want := range cases {
		if got := FormatCOP(in); got != want {
			t.Errorf("FormatCOP(%d) = %q, want %q", in, got, want)
		}
	}
}
