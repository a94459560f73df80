package importer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Gdev2986/venda-gestao-nexus-sub002/internal/batch"
	"github.com/Gdev2986/venda-gestao-nexus-sub002/internal/machines"
	"github.com/Gdev2986/venda-gestao-nexus-sub002/internal/sales"
	"github.com/rs/zerolog"
)

var ErrEmptyUpload = errors.New("plik nie zawiera wierszy danych")

// ile ostrzeżeń logujemy na import (reszta tylko w raporcie)
const warnSample = 10

// SalesStore zapisuje jedną paczkę rekordów: cała albo błąd.
type SalesStore interface {
	InsertSales(ctx context.Context, importID uint, recs []sales.InsertRecord) error
}

// TerminalResolver mapuje terminale na machine_id, tworząc brakujące.
type TerminalResolver interface {
	Resolve(ctx context.Context, terminals []string) (machines.Resolution, error)
}

// Report podsumowuje jeden przebieg Pipeline.Run.
type Report struct {
	Source          sales.SourceKind `json:"source"`
	RowsRead        int              `json:"rows_read"`
	Normalized      int              `json:"normalized"`
	Skipped         int              `json:"skipped"`
	Inserted        int              `json:"inserted"`
	MachinesCreated int              `json:"machines_created"`
	Warnings        []sales.Warning  `json:"warnings"`
	Strategy        batch.Config     `json:"strategy"`
	Elapsed         time.Duration    `json:"elapsed"`
}

// Pipeline: detekcja -> normalizacja -> maszyny -> rekordy -> paczki -> zapis.
type Pipeline struct {
	Resolver TerminalResolver
	Store    SalesStore
	Builder  sales.RecordBuilder
	Log      zerolog.Logger

	// opcjonalne; nil = batch.DetermineStrategy / batch.Sleep
	Strategy   func(total int) batch.Config
	Sleep      batch.SleepFunc
	OnProgress batch.ProgressFunc
}

func NewPipeline(resolver TerminalResolver, store SalesStore, loc *time.Location, log zerolog.Logger) *Pipeline {
	return &Pipeline{
		Resolver: resolver,
		Store:    store,
		Builder:  sales.RecordBuilder{Location: loc},
		Log:      log,
	}
}

// Detect zwraca źródło i wynik normalizacji bez zapisu.
func Detect(rows []sales.RawRow) (sales.SourceKind, sales.Result) {
	source := sales.DetectSourceByHeaders(rows)
	return source, sales.NormalizeData(rows, source)
}

// Run wykonuje cały import. Przy błędzie zwraca też częściowy raport:
// paczki zapisane przed błędem zostają w bazie (Inserted).
func (p *Pipeline) Run(ctx context.Context, rows []sales.RawRow, importID uint) (*Report, error) {
	start := time.Now()
	rep := &Report{RowsRead: len(rows)}
	if len(rows) == 0 {
		return rep, ErrEmptyUpload
	}
	log := p.Log.With().Uint("import_id", importID).Logger()

	source, res := Detect(rows)
	rep.Source = source
	rep.Normalized = len(res.Data)
	rep.Warnings = append(rep.Warnings, res.Warnings...)
	log.Info().Str("source", string(source)).Int("rows", len(rows)).Int("normalized", len(res.Data)).Msg("normalizacja OK")

	resolution, err := p.Resolver.Resolve(ctx, sales.Terminals(res.Data))
	if err != nil {
		return p.finish(rep, start), fmt.Errorf("maszyny: %w", err)
	}
	rep.MachinesCreated = len(resolution.Created)

	recs, buildWarnings, err := p.Builder.Build(res.Data, resolution.IDs)
	rep.Warnings = append(rep.Warnings, buildWarnings...)
	if err != nil {
		return p.finish(rep, start), fmt.Errorf("rekordy: %w", err)
	}
	rep.Skipped = len(rows) - len(recs)
	p.logWarnings(log, rep.Warnings)

	if len(recs) == 0 {
		log.Warn().Msg("brak rekordów do zapisu")
		return p.finish(rep, start), nil
	}

	cfg := p.strategy(len(recs))
	rep.Strategy = cfg
	log.Info().
		Str("strategy", string(cfg.Strategy)).
		Int("records", len(recs)).
		Int("batch_size", cfg.BatchSize).
		Float64("eta_min", cfg.EstimatedTimeMinutes).
		Msg("start zapisu")

	ex := batch.NewExecutor[sales.InsertRecord](cfg, log)
	if p.Sleep != nil {
		ex.Sleep = p.Sleep
	}
	ex.OnProgress = func(completed, total, pct int, s batch.Strategy) {
		log.Info().Int("completed", completed).Int("total", total).Int("pct", pct).Str("strategy", string(s)).Msg("postęp")
		if p.OnProgress != nil {
			p.OnProgress(completed, total, pct, s)
		}
	}

	store := func(ctx context.Context, b []sales.InsertRecord) error {
		return p.Store.InsertSales(ctx, importID, b)
	}
	batches := batch.CreateBatches(recs, cfg.BatchSize)
	if cfg.MaxConcurrent > 1 {
		rep.Inserted, err = ex.ProcessParallel(ctx, batches, store)
	} else {
		rep.Inserted, err = ex.ProcessSequentially(ctx, batches, store)
	}
	if err != nil {
		return p.finish(rep, start), fmt.Errorf("zapis sprzedaży: %w", err)
	}

	p.finish(rep, start)
	log.Info().Int("inserted", rep.Inserted).Dur("elapsed", rep.Elapsed).Msg("import OK")
	return rep, nil
}

func (p *Pipeline) strategy(total int) batch.Config {
	if p.Strategy != nil {
		return p.Strategy(total)
	}
	return batch.DetermineStrategy(total)
}

func (p *Pipeline) finish(rep *Report, start time.Time) *Report {
	rep.Elapsed = time.Since(start)
	return rep
}

func (p *Pipeline) logWarnings(log zerolog.Logger, ws []sales.Warning) {
	if len(ws) == 0 {
		return
	}
	for i, w := range ws {
		if i >= warnSample {
			break
		}
		log.Warn().Int("row", w.RowIndex).Msg(w.Message)
	}
	if len(ws) > warnSample {
		log.Warn().Int("more", len(ws)-warnSample).Msg("kolejne ostrzeżenia pominięte w logu")
	}
}
