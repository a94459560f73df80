package sales

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentMethod to wartość zapisywana w bazie (kontrakt ze schematem).
type PaymentMethod string

const (
	MethodCredit PaymentMethod = "CREDIT"
	MethodDebit  PaymentMethod = "DEBIT"
	MethodPix    PaymentMethod = "PIX"

	ProcessingStatusRaw = "RAW"
)

// netFactor: płaska prowizja 3% przy imporcie hurtowym.
// Kalkulator opłat per transakcja liczy inaczej (bloki podatkowe).
var netFactor = decimal.RequireFromString("0.97")

// maxIDRetries ogranicza regenerację identyfikatora przy kolizji.
const maxIDRetries = 16

var ErrIDExhausted = errors.New("nie udało się wygenerować unikalnego identyfikatora")

// MissingMachineError: terminal nie ma machine_id w mapie resolvera.
type MissingMachineError struct {
	Terminal string
}

func (e *MissingMachineError) Error() string {
	return fmt.Sprintf("brak machine_id dla terminala %q", e.Terminal)
}

// InsertRecord to rekord gotowy do zapisu w tabeli sprzedaży.
type InsertRecord struct {
	ID               string        `json:"id"`
	Code             string        `json:"code"`
	Terminal         string        `json:"terminal"`
	Date             time.Time     `json:"date"`
	GrossAmount      float64       `json:"gross_amount"`
	NetAmount        float64       `json:"net_amount"`
	PaymentMethod    PaymentMethod `json:"payment_method"`
	MachineID        string        `json:"machine_id"`
	ProcessingStatus string        `json:"processing_status"`
	Installments     *int          `json:"installments,omitempty"`
	Source           *string       `json:"source,omitempty"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

// MethodFor mapuje payment_type na CREDIT/DEBIT/PIX. Nierozpoznany tekst -> CREDIT.
func MethodFor(paymentType string) PaymentMethod {
	switch CanonicalPaymentType(paymentType) {
	case PaymentDebit:
		return MethodDebit
	case PaymentPix:
		return MethodPix
	}
	return MethodCredit
}

// NetAmount = gross * 0.97.
func NetAmount(gross float64) float64 {
	return decimal.NewFromFloat(gross).Mul(netFactor).InexactFloat64()
}

// RecordBuilder składa InsertRecord z NormalizedSale i mapy terminal -> machine_id.
// Pola funkcyjne można podmienić w testach; zero-value używa uuid i zegara.
type RecordBuilder struct {
	Location *time.Location
	Now      func() time.Time
	NewID    func() string
	NewCode  func(at time.Time) string
}

func (b RecordBuilder) now() time.Time {
	if b.Now != nil {
		return b.Now()
	}
	return time.Now()
}

func (b RecordBuilder) newID() string {
	if b.NewID != nil {
		return b.NewID()
	}
	return uuid.NewString()
}

func (b RecordBuilder) newCode(at time.Time) string {
	if b.NewCode != nil {
		return b.NewCode(at)
	}
	return GenerateCode(at)
}

// GenerateCode: "VND-20240601-1A2B3C4D".
func GenerateCode(at time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:8]
	return "VND-" + at.Format("20060102") + "-" + suffix
}

// BuildInsertRecords to Build z domyślnym RecordBuilder w strefie loc.
func BuildInsertRecords(sales []NormalizedSale, machineIDs map[string]string, loc *time.Location) ([]InsertRecord, []Warning, error) {
	return RecordBuilder{Location: loc}.Build(sales, machineIDs)
}

// Build zwraca rekordy w kolejności wejścia. Sprzedaż bez terminala jest
// pomijana z ostrzeżeniem; terminal bez machine_id to błąd krytyczny.
func (b RecordBuilder) Build(sales []NormalizedSale, machineIDs map[string]string) ([]InsertRecord, []Warning, error) {
	var (
		out      = make([]InsertRecord, 0, len(sales))
		warnings []Warning
		ids      = make(map[string]struct{}, len(sales))
		codes    = make(map[string]struct{}, len(sales))
		now      = b.now()
	)

	for _, s := range sales {
		terminal := strings.TrimSpace(s.Terminal)
		if terminal == "" {
			warnings = append(warnings, Warning{RowIndex: s.RowIndex, Message: "sprzedaż bez terminala, pominięta"})
			continue
		}
		machineID, ok := machineIDs[terminal]
		if !ok || machineID == "" {
			return nil, warnings, &MissingMachineError{Terminal: terminal}
		}

		date, ok := ParseDate(s.TransactionDate, b.Location)
		if !ok {
			warnings = append(warnings, Warning{RowIndex: s.RowIndex, Message: fmt.Sprintf("nieczytelna data %q, przyjęto datę importu", s.TransactionDate)})
			date = now
		}

		id, err := unique(ids, b.newID)
		if err != nil {
			return nil, warnings, err
		}
		code, err := unique(codes, func() string { return b.newCode(date) })
		if err != nil {
			return nil, warnings, err
		}

		rec := InsertRecord{
			ID:               id,
			Code:             code,
			Terminal:         terminal,
			Date:             date,
			GrossAmount:      s.GrossAmount,
			NetAmount:        NetAmount(s.GrossAmount),
			PaymentMethod:    MethodFor(s.PaymentType),
			MachineID:        machineID,
			ProcessingStatus: ProcessingStatusRaw,
			CreatedAt:        now,
			UpdatedAt:        now,
		}
		if s.Installments > 0 {
			n := s.Installments
			rec.Installments = &n
		}
		if s.Source != "" {
			src := string(s.Source)
			rec.Source = &src
		}
		out = append(out, rec)
	}
	return out, warnings, nil
}

func unique(seen map[string]struct{}, gen func() string) (string, error) {
	for i := 0; i < maxIDRetries; i++ {
		v := gen()
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		return v, nil
	}
	return "", ErrIDExhausted
}

// Terminals zwraca unikalne, niepuste terminale w kolejności pierwszego wystąpienia.
func Terminals(sales []NormalizedSale) []string {
	seen := make(map[string]struct{}, len(sales))
	var out []string
	for _, s := range sales {
		t := strings.TrimSpace(s.Terminal)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
