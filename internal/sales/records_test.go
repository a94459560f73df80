package sales

import (
	"errors"
	"testing"
	"time"
)

func fixedBuilder(ids ...string) RecordBuilder {
	i := 0
	return RecordBuilder{
		Location: time.UTC,
		Now:      func() time.Time { return time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC) },
		NewID: func() string {
			id := ids[i%len(ids)]
			i++
			return id
		},
	}
}

func TestBuild_Fields(t *testing.T) {
	t.Parallel()

	sales := []NormalizedSale{{
		PaymentType:     PaymentDebit,
		GrossAmount:     100,
		TransactionDate: "01/06/2024 14:30",
		Installments:    1,
		Terminal:        "T1",
		Source:          SourceRedeCartao,
	}}
	recs, warnings, err := fixedBuilder("id-1").Build(sales, map[string]string{"T1": "m-1"})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings %v", warnings)
	}
	r := recs[0]
	if r.ID != "id-1" || r.MachineID != "m-1" || r.PaymentMethod != MethodDebit {
		t.Fatalf("got %+v", r)
	}
	if r.NetAmount != 97 || r.ProcessingStatus != "RAW" {
		t.Fatalf("net=%v status=%q", r.NetAmount, r.ProcessingStatus)
	}
	if !r.Date.Equal(time.Date(2024, 6, 1, 14, 30, 0, 0, time.UTC)) {
		t.Fatalf("date %v", r.Date)
	}
	if r.Installments == nil || *r.Installments != 1 || r.Source == nil || *r.Source != "Rede Cartão" {
		t.Fatalf("optional fields %+v", r)
	}
	if len(r.Code) != len("VND-20240601-XXXXXXXX") {
		t.Fatalf("code %q", r.Code)
	}
}

func TestBuild_RegeneratesCollidingIDs(t *testing.T) {
	t.Parallel()

	sales := []NormalizedSale{
		{Terminal: "T1", TransactionDate: "01/06/2024 10:00"},
		{Terminal: "T1", TransactionDate: "01/06/2024 11:00"},
	}
	recs, _, err := fixedBuilder("a", "a", "b").Build(sales, map[string]string{"T1": "m"})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if recs[0].ID == recs[1].ID {
		t.Fatalf("ids collide: %q", recs[0].ID)
	}
}

func TestBuild_MissingMachineIsFatal(t *testing.T) {
	t.Parallel()

	sales := []NormalizedSale{{Terminal: "T2", TransactionDate: "01/06/2024 10:00"}}
	_, _, err := fixedBuilder("a").Build(sales, map[string]string{"T1": "m"})
	var missing *MissingMachineError
	if !errors.As(err, &missing) || missing.Terminal != "T2" {
		t.Fatalf("want MissingMachineError for T2, got %v", err)
	}
}

func TestBuild_SkipsEmptyTerminalAndBadDate(t *testing.T) {
	t.Parallel()

	sales := []NormalizedSale{
		{Terminal: "", TransactionDate: "01/06/2024 10:00"},
		{Terminal: "T1", TransactionDate: "???"},
	}
	recs, warnings, err := fixedBuilder("a", "b").Build(sales, map[string]string{"T1": "m"})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(recs) != 1 || len(warnings) != 2 {
		t.Fatalf("recs=%d warnings=%d", len(recs), len(warnings))
	}
	if !recs[0].Date.Equal(time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)) {
		t.Fatalf("fallback date %v", recs[0].Date)
	}
}

func TestBuild_ExhaustedIDs(t *testing.T) {
	t.Parallel()

	sales := []NormalizedSale{{Terminal: "T1"}, {Terminal: "T1"}}
	_, _, err := fixedBuilder("same").Build(sales, map[string]string{"T1": "m"})
	if !errors.Is(err, ErrIDExhausted) {
		t.Fatalf("want ErrIDExhausted, got %v", err)
	}
}

func TestMethodFor(t *testing.T) {
	t.Parallel()

	cases := map[string]PaymentMethod{
		PaymentCredit: MethodCredit,
		PaymentDebit:  MethodDebit,
		PaymentPix:    MethodPix,
		"Voucher":     MethodCredit,
	}
	for in, want := range cases {
		if got := MethodFor(in); got != want {
			t.Fatalf("MethodFor(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNetAmount(t *testing.T) {
	t.Parallel()

	if got := NetAmount(150.5); got != 145.985 {
		t.Fatalf("got %v, want 145.985", got)
	}
}

func TestTerminals(t *testing.T) {
	t.Parallel()

	got := Terminals([]NormalizedSale{{Terminal: " B "}, {Terminal: "A"}, {Terminal: "B"}, {Terminal: ""}})
	if len(got) != 2 || got[0] != "B" || got[1] != "A" {
		t.Fatalf("got %v", got)
	}
}
