package core

import "testing"

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"1.0", 100, true},
		{"12.50", 1250, true},
		{"0.01", 1, true},
		{"1.005", 101, true}, // half-up rounding
		{" 2.50 ", 250, true},
		{"$3.25", 325, true},
		{"-1", -100, true},
		{"0", 0, true},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
		{"$", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || got.Cents != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got.Cents, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
		}
	}
}

func TestMoneyUSD(t *testing.T) {
	cases := []struct {
		cents int64
		out   string
	}{
		{0, "$0.00"},
		{1250, "$12.50"},
		{17000, "$170.00"},
		{123456789, "$1,234,567.89"},
		{-399, "$-3.99"},
	}
	for _, tc := range cases {
		if got := (Money{Cents: tc.cents}).USD(); got != tc.out {
			t.Fatalf("%d cents expected %q, got %q", tc.cents, tc.out, got)
		}
	}
}

func TestMoneyUSDAligned(t *testing.T) {
	if got := (Money{Cents: 1250}).USDAligned(10); got != "$     12.50" {
		t.Fatalf("unexpected aligned output %q", got)
	}
}

func TestParseOptionalDecimal(t *testing.T) {
	if d := ParseOptionalDecimal("  "); d.Valid {
		t.Fatalf("blank input should be null")
	}
	if d := ParseOptionalDecimal("x"); d.Valid {
		t.Fatalf("garbage input should be null")
	}
	d := ParseOptionalDecimal("0.0125")
	if !d.Valid || d.Decimal.String() != "0.0125" {
		t.Fatalf("expected 0.0125, got %v", d)
	}
}
