package sales

import (
	"fmt"
	"math"
	"strings"
)

const (
	PaymentCredit = "Cartão de Crédito"
	PaymentDebit  = "Cartão de Débito"
	PaymentPix    = "Pix"

	DefaultStatus = "Aprovada"
)

// NormalizedSale to kanoniczny rekord po normalizacji jednego wiersza.
type NormalizedSale struct {
	ID              string     `json:"id,omitempty"`
	Status          string     `json:"status"`
	PaymentType     string     `json:"payment_type"`
	GrossAmount     float64    `json:"gross_amount"`
	FormattedAmount string     `json:"formatted_amount,omitempty"`
	TransactionDate string     `json:"transaction_date"`
	Installments    int        `json:"installments"`
	Terminal        string     `json:"terminal"`
	Brand           string     `json:"brand"`
	Source          SourceKind `json:"source"`
	// RowIndex to indeks wiersza wejściowego, do ostrzeżeń z dalszych etapów.
	RowIndex int `json:"-"`
}

// Warning nie przerywa importu; RowIndex liczony od 0 w danych (bez nagłówka).
type Warning struct {
	RowIndex int    `json:"rowIndex"`
	Message  string `json:"message"`
}

// Result to wynik normalizacji całego uploadu.
type Result struct {
	Data     []NormalizedSale `json:"data"`
	Warnings []Warning        `json:"warnings"`
}

// rowResult: wynik jednego wiersza; err ustawiony gdy wiersz trzeba pominąć.
type rowResult struct {
	sale     NormalizedSale
	warnings []string
	err      error
}

// CanonicalPaymentType rozpoznaje modalidade po fragmencie tekstu.
func CanonicalPaymentType(modality string) string {
	n := NormalizeText(modality)
	switch {
	case strings.Contains(n, "debito"):
		return PaymentDebit
	case strings.Contains(n, "credito"):
		return PaymentCredit
	case strings.Contains(n, "pix"):
		return PaymentPix
	}
	return strings.TrimSpace(modality)
}

// NormalizeData mapuje każdy wiersz wg tabeli źródła. Błąd w jednym wierszu
// staje się ostrzeżeniem, reszta leci dalej. Kolejność wejścia zachowana.
func NormalizeData(rows []RawRow, source SourceKind) Result {
	return normalizeRows(rows, source, normalizeRow)
}

type rowNormalizer func(RawRow, SourceKind, FieldMap) rowResult

func normalizeRows(rows []RawRow, source SourceKind, fn rowNormalizer) Result {
	fields := FieldsFor(source)
	res := Result{Data: make([]NormalizedSale, 0, len(rows))}

	for i, row := range rows {
		if len(row) == 0 {
			res.Warnings = append(res.Warnings, Warning{RowIndex: i, Message: "wiersz pusty, pominięty"})
			continue
		}

		rr := normalizeRowSafe(fn, row, source, fields)
		for _, msg := range rr.warnings {
			res.Warnings = append(res.Warnings, Warning{RowIndex: i, Message: msg})
		}
		if rr.err != nil {
			res.Warnings = append(res.Warnings, Warning{RowIndex: i, Message: rr.err.Error()})
			continue
		}
		rr.sale.RowIndex = i
		res.Data = append(res.Data, rr.sale)
	}
	return res
}

func normalizeRowSafe(fn rowNormalizer, row RawRow, source SourceKind, fields FieldMap) (rr rowResult) {
	defer func() {
		if p := recover(); p != nil {
			rr = rowResult{err: fmt.Errorf("błąd odczytu wiersza: %v", p)}
		}
	}()
	return fn(row, source, fields)
}

func normalizeRow(row RawRow, source SourceKind, fields FieldMap) rowResult {
	var warnings []string

	status := fields.Text(row, FieldStatus)
	if status == "" {
		status = DefaultStatus
	}

	paymentType := CanonicalPaymentType(fields.Text(row, FieldModality))

	gross := ToNumber(fields.Value(row, FieldGrossAmount))
	if math.IsNaN(gross) || math.IsInf(gross, 0) {
		warnings = append(warnings, "nieprawidłowa kwota, przyjęto 0")
		gross = 0
	}
	if gross < 0 {
		warnings = append(warnings, fmt.Sprintf("ujemna kwota %.2f, przyjęto wartość bezwzględną", gross))
		gross = math.Abs(gross)
	}

	rawDate := fields.Text(row, FieldDate)
	if rawDate == "" {
		warnings = append(warnings, "brak daty sprzedaży, przyjęto 01/01/2000")
	}
	date := FormatDateStandard(rawDate, fields.Text(row, FieldTime))

	installments := 1
	if n := int(ToNumber(fields.Value(row, FieldInstallments))); n > 1 {
		installments = n
	}

	brand := fields.Text(row, FieldBrand)
	if paymentType == PaymentPix {
		installments = 1
		brand = PaymentPix
	}

	return rowResult{
		sale: NormalizedSale{
			Status:          status,
			PaymentType:     paymentType,
			GrossAmount:     gross,
			FormattedAmount: FormatCurrency(gross),
			TransactionDate: date,
			Installments:    installments,
			Terminal:        fields.Text(row, FieldTerminal),
			Brand:           brand,
			Source:          source,
		},
		warnings: warnings,
	}
}
