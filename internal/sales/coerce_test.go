package sales

import (
	"math"
	"regexp"
	"testing"
	"time"
)

func TestToNumber(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   any
		want float64
	}{
		{"150,50", 150.50},
		{"1.234,56", 1234.56},
		{"R$ 2.000,00", 2000},
		{"3x", 3},
		{"", 0},
		{"abc", 0},
		{"NaN", 0},
		{"-10,5", -10.5},
		{42.5, 42.5},
		{7, 7},
		{math.NaN(), 0},
		{math.Inf(1), 0},
		{nil, 0},
		{true, 0},
	}
	for _, c := range cases {
		if got := ToNumber(c.in); got != c.want {
			t.Fatalf("ToNumber(%#v) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestToNumber_NeverNaN(t *testing.T) {
	t.Parallel()

	for _, s := range []string{"Infinity", "-", ".", ",", "1e", "e5", "++1", "1,2,3", "١٢٣", "0x1p3"} {
		if got := ToNumber(s); math.IsNaN(got) || math.IsInf(got, 0) {
			t.Fatalf("ToNumber(%q) = %v, want finite", s, got)
		}
	}
}

var canonicalDate = regexp.MustCompile(`^\d{2}/\d{2}/\d{4} \d{2}:\d{2}$`)

func TestFormatDateStandard(t *testing.T) {
	t.Parallel()

	cases := []struct {
		date, time, want string
	}{
		{"01/06/2024", "14:30", "01/06/2024 14:30"},
		{"1/6/2024", "9:5", "01/06/2024 09:05"},
		{"2024-06-01", "", "01/06/2024 00:00"},
		{"2024-06-01 08:15:59", "", "01/06/2024 08:15"},
		{"2024-06-01T23:10:00Z", "", "01/06/2024 23:10"},
		{"15/03/24 10:00", "", "15/03/2024 10:00"},
		{"", "", "01/01/2000 00:00"},
		{"garbage", "xx", "01/01/2000 00:00"},
		{"01/06", "", "01/06/2000 00:00"},
	}
	for _, c := range cases {
		if got := FormatDateStandard(c.date, c.time); got != c.want {
			t.Fatalf("FormatDateStandard(%q, %q) = %q, want %q", c.date, c.time, got, c.want)
		}
	}
}

func TestFormatDateStandard_AlwaysCanonical(t *testing.T) {
	t.Parallel()

	inputs := []string{"", " ", "//", "--", "123/456/7", "2024-13", "aa/bb/cccc", "01/02/2024 99999:1", "T", "2024-01-01T"}
	for _, in := range inputs {
		if got := FormatDateStandard(in, ""); !canonicalDate.MatchString(got) {
			t.Fatalf("FormatDateStandard(%q) = %q, not canonical", in, got)
		}
	}
}

func TestParseDate(t *testing.T) {
	t.Parallel()

	got, ok := ParseDate("01/06/2024 14:30", time.UTC)
	if !ok {
		t.Fatal("expected canonical date to parse")
	}
	want := time.Date(2024, 6, 1, 14, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}

	if _, ok := ParseDate("2024-06-01T14:30:00Z", time.UTC); !ok {
		t.Fatal("expected RFC3339 to parse")
	}
	if _, ok := ParseDate("not a date", time.UTC); ok {
		t.Fatal("expected failure")
	}
}

func TestFormatCurrency(t *testing.T) {
	t.Parallel()

	cases := map[float64]string{
		0:          "R$ 0,00",
		150.5:      "R$ 150,50",
		1234.567:   "R$ 1.234,57",
		1000000:    "R$ 1.000.000,00",
		-12.3:      "-R$ 12,30",
		999.999:    "R$ 1.000,00",
		100000.01:  "R$ 100.000,01",
	}
	for in, want := range cases {
		if got := FormatCurrency(in); got != want {
			t.Fatalf("FormatCurrency(%v) = %q, want %q", in, got, want)
		}
	}
}
