// Package reader zamienia eksporty sprzedaży (CSV, XLSX) na wiersze klucz -> wartość.
package reader

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/Gdev2986/venda-gestao-nexus-sub002/internal/sales"
	"github.com/xuri/excelize/v2"
	"golang.org/x/net/html/charset"
)

var ErrUnsupportedFormat = errors.New("nieobsługiwany format pliku")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Options: puste pola oznaczają autodetekcję.
type Options struct {
	// Charset, np. "windows-1252"; pusty = utf-8 z fallbackiem na windows-1252.
	Charset string `json:"charset,omitempty" yaml:"charset,omitempty"`
	// Delimiter; 0 = zgadnij z linii nagłówka (; , tab).
	Delimiter rune `json:"-" yaml:"-"`
	// Sheet dla XLSX; pusty = pierwszy arkusz.
	Sheet string `json:"sheet,omitempty" yaml:"sheet,omitempty"`
}

// ReadFile wybiera parser po rozszerzeniu.
func ReadFile(path string, opts Options) ([]sales.RawRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".txt":
		return ReadCSV(f, opts)
	case ".xlsx", ".xlsm":
		return ReadXLSX(f, opts)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Base(path))
}

// ReadCSV: pierwszy niepusty rekord to nagłówek, pozostałe to dane.
func ReadCSV(r io.Reader, opts Options) ([]sales.RawRow, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	raw = bytes.TrimPrefix(raw, utf8BOM)

	label := opts.Charset
	if label == "" {
		label = "utf-8"
		if !utf8.Valid(raw) {
			label = "windows-1252"
		}
	}
	dec, err := charset.NewReaderLabel(normalizeCharset(label), bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("charset %q: %w", label, err)
	}
	text, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("dekodowanie %q: %w", label, err)
	}
	text = bytes.TrimPrefix(text, utf8BOM)

	delim := opts.Delimiter
	if delim == 0 {
		delim = SniffDelimiter(firstLine(text))
	}

	cr := csv.NewReader(bytes.NewReader(text))
	cr.Comma = delim
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsowanie CSV: %w", err)
	}
	return toRows(records, nil), nil
}

// ReadXLSX czyta jeden arkusz; pierwszy niepusty wiersz to nagłówek.
func ReadXLSX(r io.Reader, opts Options) ([]sales.RawRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("otwieranie XLSX: %w", err)
	}
	defer f.Close()

	sheet := opts.Sheet
	if sheet == "" {
		list := f.GetSheetList()
		if len(list) == 0 {
			return nil, nil
		}
		sheet = list[0]
	}
	records, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("arkusz %q: %w", sheet, err)
	}
	raw, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("arkusz %q: %w", sheet, err)
	}
	date1904 := false
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		date1904 = *props.Date1904
	}
	typed := func(row, col int) (any, bool) {
		if row >= len(raw) || col >= len(raw[row]) {
			return nil, false
		}
		return xlsxValue(f, sheet, col, row, raw[row][col], date1904)
	}
	return toRows(records, typed), nil
}

// xlsxValue zwraca liczbę dla komórek liczbowych i "dd/mm/yyyy HH:mm" dla dat.
// Tekst zostaje tekstem, bo tylko on podlega regule "1.234,56".
func xlsxValue(f *excelize.File, sheet string, col, row int, raw string, date1904 bool) (any, bool) {
	axis, err := excelize.CoordinatesToCellName(col+1, row+1)
	if err != nil {
		return nil, false
	}
	typ, err := f.GetCellType(sheet, axis)
	if err != nil {
		return nil, false
	}
	switch typ {
	case excelize.CellTypeUnset, excelize.CellTypeNumber:
	default:
		return nil, false
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return nil, false
	}
	if !isDateCell(f, sheet, axis) {
		return n, true
	}
	t, err := excelize.ExcelDateToTime(n, date1904)
	if err != nil {
		return nil, false
	}
	return t.Format("02/01/2006 15:04"), true
}

func isDateCell(f *excelize.File, sheet, axis string) bool {
	idx, err := f.GetCellStyle(sheet, axis)
	if err != nil || idx == 0 {
		return false
	}
	st, err := f.GetStyle(idx)
	if err != nil || st == nil {
		return false
	}
	if st.CustomNumFmt != nil {
		return isDateFormat(*st.CustomNumFmt)
	}
	switch {
	case st.NumFmt >= 14 && st.NumFmt <= 22, st.NumFmt >= 45 && st.NumFmt <= 47:
		return true
	}
	return false
}

// isDateFormat: format z y/d/h poza literałami i [kolorami] traktujemy jako datę.
func isDateFormat(code string) bool {
	var b strings.Builder
	inQuote, inBracket := false, false
	for _, r := range strings.ToLower(code) {
		switch {
		case r == '"':
			inQuote = !inQuote
		case inQuote:
		case r == '[':
			inBracket = true
		case r == ']':
			inBracket = false
		case inBracket:
		default:
			b.WriteRune(r)
		}
	}
	return strings.ContainsAny(b.String(), "ydh")
}


// SniffDelimiter liczy separatory poza cudzysłowami; remis wygrywa ';'.
func SniffDelimiter(line string) rune {
	candidates := []rune{';', ',', '\t'}
	counts := make(map[rune]int, len(candidates))
	inQuotes := false
	for _, c := range line {
		if c == '"' {
			inQuotes = !inQuotes
			continue
		}
		if !inQuotes {
			counts[c]++
		}
	}
	best, bestN := ',', 0
	for _, c := range candidates {
		if counts[c] > bestN {
			best, bestN = c, counts[c]
		}
	}
	return best
}

func firstLine(b []byte) string {
	for len(b) > 0 {
		i := bytes.IndexAny(b, "\r\n")
		line := b
		if i >= 0 {
			line, b = b[:i], b[i+1:]
		} else {
			b = nil
		}
		if len(bytes.TrimSpace(line)) > 0 {
			return string(line)
		}
	}
	return ""
}

// toRows: nagłówki dosłownie (czyszczenie robi sales.GetValue), kolumny bez
// nagłówka pomijane, krótkie rekordy dopełniane pustymi komórkami.
// typed (opcjonalne) podmienia tekst komórki na wartość typowaną.
func toRows(records [][]string, typed func(r, c int) (any, bool)) []sales.RawRow {
	var header []string
	var out []sales.RawRow
	for r, rec := range records {
		if blank(rec) {
			continue
		}
		if header == nil {
			header = rec
			continue
		}
		row := make(sales.RawRow, 0, len(header))
		for i, h := range header {
			if strings.TrimSpace(h) == "" {
				continue
			}
			var v any = ""
			if i < len(rec) {
				v = rec[i]
				if typed != nil && strings.TrimSpace(rec[i]) != "" {
					if tv, ok := typed(r, i); ok {
						v = tv
					}
				}
			}
			row = append(row, sales.Cell{Key: h, Value: v})
		}
		out = append(out, row)
	}
	return out
}

func blank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// normalizeCharset mapuje nietypowe etykiety na nazwy znane charset.NewReaderLabel
func normalizeCharset(cs string) string {
	c := strings.TrimSpace(strings.ToLower(cs))
	switch c {
	case "latin1", "latin-1", "iso8859-1", "iso_8859-1":
		return "iso-8859-1"
	case "cp1252", "windows1252", "win-1252", "ansi":
		return "windows-1252"
	case "utf8":
		return "utf-8"
	default:
		return c
	}
}
