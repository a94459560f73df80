package sales

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ToNumber zamienia wartość z eksportu na liczbę. Kropka to separator tysięcy,
// przecinek dziesiętny ("1.234,56" -> 1234.56). Nigdy nie zwraca NaN.
func ToNumber(v any) float64 {
	var f float64
	switch x := v.(type) {
	case nil:
		return 0
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int64:
		f = float64(x)
	case int32:
		f = float64(x)
	case string:
		s := strings.TrimSpace(x)
		s = strings.TrimSpace(strings.TrimPrefix(s, "R$"))
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
		f = parseLeadingFloat(s)
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// parseLeadingFloat czyta najdłuższy poprawny prefiks liczby ("3x" -> 3).
func parseLeadingFloat(s string) float64 {
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
		digits++
	}
	if end < len(s) && s[end] == '.' {
		end++
		for end < len(s) && s[end] >= '0' && s[end] <= '9' {
			end++
			digits++
		}
	}
	if digits == 0 {
		return 0
	}
	if end < len(s) && (s[end] == 'e' || s[end] == 'E') {
		exp := end + 1
		if exp < len(s) && (s[exp] == '+' || s[exp] == '-') {
			exp++
		}
		start := exp
		for exp < len(s) && s[exp] >= '0' && s[exp] <= '9' {
			exp++
		}
		if exp > start {
			end = exp
		}
	}
	f, err := strconv.ParseFloat(strings.TrimSuffix(s[:end], "."), 64)
	if err != nil {
		return 0
	}
	return f
}

// FormatDateStandard zwraca zawsze "dd/mm/yyyy HH:mm". Akceptuje "dd/mm/yyyy"
// albo "yyyy-mm-dd"; czas może przyjść osobno albo doklejony po spacji.
// Braki uzupełnia na 01/01/2000 00:00.
func FormatDateStandard(dateInput, timeInput string) string {
	d := strings.TrimSpace(dateInput)
	t := strings.TrimSpace(timeInput)

	if t == "" {
		if i := strings.IndexByte(d, ' '); i > 0 {
			d, t = d[:i], strings.TrimSpace(d[i+1:])
		} else if i := strings.IndexByte(d, 'T'); i > 0 && strings.Contains(d, "-") {
			d, t = d[:i], d[i+1:]
		}
	}

	day, month, year := "01", "01", "2000"
	switch {
	case strings.Contains(d, "/"):
		p := strings.Split(d, "/")
		day = datePart(p, 0, 2, day)
		month = datePart(p, 1, 2, month)
		year = yearPart(p, 2, year)
	case strings.Contains(d, "-"):
		p := strings.Split(d, "-")
		year = yearPart(p, 0, year)
		month = datePart(p, 1, 2, month)
		day = datePart(p, 2, 2, day)
	}

	hour, minute := "00", "00"
	if t != "" {
		p := strings.Split(t, ":")
		hour = datePart(p, 0, 2, hour)
		minute = datePart(p, 1, 2, minute)
	}

	return day + "/" + month + "/" + year + " " + hour + ":" + minute
}

func datePart(parts []string, i, width int, def string) string {
	if i >= len(parts) {
		return def
	}
	s := leadingDigits(strings.TrimSpace(parts[i]))
	if s == "" || len(s) > width {
		return def
	}
	for len(s) < width {
		s = "0" + s
	}
	return s
}

func yearPart(parts []string, i int, def string) string {
	if i >= len(parts) {
		return def
	}
	s := leadingDigits(strings.TrimSpace(parts[i]))
	switch len(s) {
	case 4:
		return s
	case 2:
		return "20" + s
	}
	return def
}

func leadingDigits(s string) string {
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	return s[:end]
}

var dateLayouts = []string{
	"02/01/2006 15:04",
	"02/01/2006 15:04:05",
	"02/01/2006",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseDate próbuje formatu kanonicznego, potem ISO. ok=false gdy nic nie pasuje.
func ParseDate(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatCurrency formatuje kwotę jak pt-BR: 1234.5 -> "R$ 1.234,50".
func FormatCurrency(v float64) string {
	d := decimal.NewFromFloat(v).Round(2)
	neg := d.IsNegative()
	s := d.Abs().StringFixed(2)

	intPart, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, frac = s[:i], s[i+1:]
	}

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}

	out := "R$ " + b.String() + "," + frac
	if neg {
		out = "-" + out
	}
	return out
}
