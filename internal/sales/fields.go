package sales

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var quoteStripper = strings.NewReplacer(`"`, "", "\ufeff", "")

// NormalizeText: trim -> lower -> NFD -> bez znaków diakrytycznych.
// "  Código da Maquininha " -> "codigo da maquininha".
func NormalizeText(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	// po zdjęciu akcentów na brzegach mogą zostać spacje
	return strings.TrimSpace(out)
}

func stripQuotes(s string) string {
	return strings.Trim(quoteStripper.Replace(strings.TrimSpace(s)), "'")
}

// cleanKey to postać nagłówka używana do porównań.
func cleanKey(s string) string {
	return NormalizeText(stripQuotes(s))
}

func isBlank(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(x) == ""
	}
	return false
}

// GetValue szuka pola logicznego po liście kandydatów: najpierw dokładnie,
// potem bez cudzysłowów, na końcu po znormalizowanych kluczach.
// Pusta komórka liczy się jak brak, więc kolejni kandydaci mają szansę.
func GetValue(row RawRow, candidates []string, def any) any {
	for _, c := range candidates {
		if v, ok := row.Lookup(c); ok && !isBlank(v) {
			return v
		}
	}

	for _, c := range candidates {
		want := stripQuotes(c)
		for _, cell := range row {
			if stripQuotes(cell.Key) == want && !isBlank(cell.Value) {
				return cell.Value
			}
		}
	}

	wanted := make(map[string]struct{}, len(candidates))
	for _, c := range candidates {
		wanted[cleanKey(c)] = struct{}{}
	}
	for _, cell := range row {
		if _, ok := wanted[cleanKey(cell.Key)]; ok && !isBlank(cell.Value) {
			return cell.Value
		}
	}
	return def
}

// GetString to GetValue z wynikiem jako tekst bez spacji na brzegach.
func GetString(row RawRow, candidates []string, def string) string {
	v := GetValue(row, candidates, nil)
	if v == nil {
		return def
	}
	return toString(v)
}

func toString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	default:
		return strings.TrimSpace(fmt.Sprint(x))
	}
}
