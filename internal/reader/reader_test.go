package reader

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Gdev2986/venda-gestao-nexus-sub002/internal/sales"
	"github.com/xuri/excelize/v2"
)

func cell(t *testing.T, row sales.RawRow, key string) string {
	t.Helper()
	v, ok := row.Lookup(key)
	if !ok {
		t.Fatalf("key %q missing in %v", key, row.Keys())
	}
	s, _ := v.(string)
	return s
}

func TestReadCSV_SemicolonWithBOM(t *testing.T) {
	t.Parallel()

	in := "\ufeffModalidade;Valor da Venda Original;Terminal\r\n" +
		"Débito;150,50;T1\r\n" +
		"\r\n" +
		";;\r\n" +
		"Crédito;\"1.200,00\";T2\r\n"
	rows, err := ReadCSV(strings.NewReader(in), Options{})
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if got := rows[0].Keys()[0]; got != "Modalidade" {
		t.Fatalf("BOM not stripped: %q", got)
	}
	if got := cell(t, rows[1], "Valor da Venda Original"); got != "1.200,00" {
		t.Fatalf("got %q", got)
	}
	if sales.DetectSourceByHeaders(rows) != sales.SourceUnknown {
		t.Fatalf("unexpected source")
	}
}

func TestReadCSV_Windows1252Fallback(t *testing.T) {
	t.Parallel()

	in := []byte("Modalidade,Cart\xe3o\nD\xe9bito,Visa\n")
	rows, err := ReadCSV(bytes.NewReader(in), Options{})
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if got := cell(t, rows[0], "Cartão"); got != "Visa" {
		t.Fatalf("got %q", got)
	}
	if got := cell(t, rows[0], "Modalidade"); got != "Débito" {
		t.Fatalf("got %q", got)
	}
}

func TestReadCSV_ExplicitCharsetLabel(t *testing.T) {
	t.Parallel()

	in := []byte("Tipo\tValor Venda\nCr\xe9dito\t10\n")
	rows, err := ReadCSV(bytes.NewReader(in), Options{Charset: "latin1"})
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if got := cell(t, rows[0], "Tipo"); got != "Crédito" {
		t.Fatalf("got %q", got)
	}
	if sales.DetectSourceByHeaders(rows) != sales.SourceSigma {
		t.Fatalf("tab-delimited Sigma not detected")
	}
}

func TestReadCSV_PadsShortRecords(t *testing.T) {
	t.Parallel()

	rows, err := ReadCSV(strings.NewReader("a;b;c\n1\n"), Options{})
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if len(rows[0]) != 3 || cell(t, rows[0], "c") != "" {
		t.Fatalf("got %v", rows[0])
	}
}

func TestSniffDelimiter(t *testing.T) {
	t.Parallel()

	cases := map[string]rune{
		"a;b;c":             ';',
		"a,b,c":             ',',
		"a\tb\tc":           '\t',
		`"x;y",b,c`:         ',',
		"single":            ',',
		"Valor, Venda;Data": ';',
	}
	for in, want := range cases {
		if got := SniffDelimiter(in); got != want {
			t.Fatalf("SniffDelimiter(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestReadXLSX(t *testing.T) {
	t.Parallel()

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	if err := f.SetSheetRow(sheet, "A1", &[]any{"Forma de Pagamento", "Identificação da Maquininha", "Valor Bruto"}); err != nil {
		t.Fatal(err)
	}
	if err := f.SetSheetRow(sheet, "A2", &[]any{"Pix", "PAG-1", "25,00"}); err != nil {
		t.Fatal(err)
	}
	if err := f.SetSheetRow(sheet, "A3", &[]any{"Débito", "PAG-2"}); err != nil {
		t.Fatal(err)
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatal(err)
	}

	rows, err := ReadXLSX(bytes.NewReader(buf.Bytes()), Options{})
	if err != nil {
		t.Fatalf("ReadXLSX: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows", len(rows))
	}
	if sales.DetectSourceByHeaders(rows) != sales.SourcePagSeguro {
		t.Fatalf("PagSeguro not detected")
	}
	if got := cell(t, rows[1], "Valor Bruto"); got != "" {
		t.Fatalf("short row not padded: %q", got)
	}
}

func TestReadXLSX_TypedCells(t *testing.T) {
	t.Parallel()

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	rows := [][]any{
		{"Forma de Pagamento", "Identificação da Maquininha", "Valor Bruto", "Data da Transação"},
		{"Crédito", "PAG-1", 150.5, time.Date(2024, 3, 15, 14, 30, 0, 0, time.UTC)},
		{"Débito", "PAG-2", 1234.56, time.Date(2024, 12, 1, 9, 5, 0, 0, time.UTC)},
		{"Pix", "PAG-3", "1.234,56", "15/03/2024"},
	}
	for i, r := range rows {
		axis, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(sheet, axis, &r); err != nil {
			t.Fatal(err)
		}
	}
	custom := "dd/mm/yyyy hh:mm"
	style, err := f.NewStyle(&excelize.Style{CustomNumFmt: &custom})
	if err != nil {
		t.Fatal(err)
	}
	if err := f.SetCellValue(sheet, "E1", "Data da Venda"); err != nil {
		t.Fatal(err)
	}
	if err := f.SetCellFloat(sheet, "E2", 45366.5, -1, 64); err != nil {
		t.Fatal(err)
	}
	if err := f.SetCellStyle(sheet, "E2", "E2", style); err != nil {
		t.Fatal(err)
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatal(err)
	}

	parsed, err := ReadXLSX(bytes.NewReader(buf.Bytes()), Options{})
	if err != nil {
		t.Fatalf("ReadXLSX: %v", err)
	}
	if len(parsed) != 3 {
		t.Fatalf("got %d rows, want 3", len(parsed))
	}
	if v, _ := parsed[0].Lookup("Valor Bruto"); v != 150.5 {
		t.Fatalf("got %#v, want float64 150.5", v)
	}
	if got := cell(t, parsed[0], "Data da Transação"); got != "15/03/2024 14:30" {
		t.Fatalf("date cell: got %q", got)
	}
	if got := cell(t, parsed[0], "Data da Venda"); got != "15/03/2024 12:00" {
		t.Fatalf("custom date cell: got %q", got)
	}
	if got := cell(t, parsed[2], "Valor Bruto"); got != "1.234,56" {
		t.Fatalf("text cell: got %q", got)
	}

	src := sales.DetectSourceByHeaders(parsed)
	if src != sales.SourcePagSeguro {
		t.Fatalf("got source %q", src)
	}
	res := sales.NormalizeData(parsed, src)
	if len(res.Data) != 3 {
		t.Fatalf("got %d sales, warnings %v", len(res.Data), res.Warnings)
	}
	wantGross := []float64{150.5, 1234.56, 1234.56}
	for i, w := range wantGross {
		if res.Data[i].GrossAmount != w {
			t.Fatalf("row %d: gross = %v, want %v", i, res.Data[i].GrossAmount, w)
		}
	}
	if got := res.Data[1].TransactionDate; got != "01/12/2024 09:05" {
		t.Fatalf("transaction date = %q", got)
	}
}

func TestIsDateFormat(t *testing.T) {
	t.Parallel()

	cases := map[string]bool{
		"dd/mm/yyyy hh:mm":  true,
		"yyyy-mm-dd":        true,
		"#,##0.00":          false,
		`"R$" #,##0.00`:     false,
		"[Red]#,##0.00":     false,
		`0.00 "dias"`:       false,
		"[$-416]dd/mm/yyyy": true,
	}
	for in, want := range cases {
		if got := isDateFormat(in); got != want {
			t.Fatalf("isDateFormat(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestReadFile_Unsupported(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "vendas.pdf")
	if err := os.WriteFile(path, []byte("%PDF"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadFile(path, Options{}); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("want ErrUnsupportedFormat, got %v", err)
	}
}

func TestReadFile_CSV(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "rede.CSV")
	if err := os.WriteFile(path, []byte("Modalidade;Número de Parcelas\nCrédito;2\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	rows, err := ReadFile(path, Options{})
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if sales.DetectSourceByHeaders(rows) != sales.SourceRedeCartao {
		t.Fatalf("Rede Cartão not detected")
	}
}
