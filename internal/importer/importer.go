package importer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	conf "github.com/Gdev2986/venda-gestao-nexus-sub002/internal/config"
	"github.com/Gdev2986/venda-gestao-nexus-sub002/internal/db"
	"github.com/Gdev2986/venda-gestao-nexus-sub002/internal/integrations"
	"github.com/Gdev2986/venda-gestao-nexus-sub002/internal/machines"
	"github.com/Gdev2986/venda-gestao-nexus-sub002/internal/reader"
	"github.com/Gdev2986/venda-gestao-nexus-sub002/internal/sales"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

var defaultPatterns = []string{"*.csv", "*.xlsx"}

type Config struct {
	WatchDir string   `json:"watch_dir"` // np. ~/vendas/imports
	PollSec  int      `json:"poll_sec"`  // np. 5-10s w dev
	Patterns []string `json:"patterns"`
	Charset  string   `json:"charset,omitempty"`
}

// Ledger to rejestr plików importu (import_files, import_warnings).
type Ledger interface {
	RegisterFile(ctx context.Context, name, sha string, size int64) (*db.ImportFile, bool, error)
	DeleteImportSales(ctx context.Context, importID uint) (int64, error)
	CompleteImport(ctx context.Context, importID uint, st db.ImportStats) error
	FailImport(ctx context.Context, importID uint, cause error) error
	SaveWarnings(ctx context.Context, importID uint, ws []sales.Warning) error
}

// FileResult: wynik importu jednego pliku. Skipped = plik już był zaimportowany.
type FileResult struct {
	ImportID uint    `json:"import_id"`
	File     string  `json:"file"`
	Skipped  bool    `json:"skipped"`
	Report   *Report `json:"report,omitempty"`
}

type Importer struct {
	log      zerolog.Logger
	cfg      Config
	ledger   Ledger
	pipeline *Pipeline

	mu     sync.Mutex
	cancel context.CancelFunc
}

func New(log zerolog.Logger, cfg Config, ledger Ledger, pipeline *Pipeline) *Importer {
	return &Importer{log: log, cfg: cfg, ledger: ledger, pipeline: pipeline}
}

// NewFromDB składa importer na jednym *gorm.DB: repo, resolver maszyn, pipeline.
func NewFromDB(log zerolog.Logger, cfg *conf.Config, gdb *gorm.DB) (*Importer, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	repo := db.NewRepo(gdb, log)
	pipe := NewPipeline(machines.NewResolver(repo, log), repo, loc, log)
	return New(log, Config{
		WatchDir: cfg.Import.WatchDir,
		PollSec:  cfg.Import.PollSec,
		Patterns: cfg.Import.Patterns,
		Charset:  cfg.Import.Charset,
	}, repo, pipe), nil
}

func (i *Importer) Name() string { return "importer" }

// Start skanuje WatchDir co PollSec do anulowania ctx albo Stop.
func (i *Importer) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	i.mu.Lock()
	i.cancel = cancel
	i.mu.Unlock()
	i.log.Info().Str("integration", i.Name()).Msg("start")

	dir := expandHome(i.cfg.WatchDir)
	if dir == "" {
		return errors.New("importer: brak watch_dir")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("importer: %w", err)
	}

	ticker := time.NewTicker(i.interval())
	defer ticker.Stop()

	// pierwszy przebieg
	i.scanOnce(ctx, dir)

	for {
		select {
		case <-ctx.Done():
			i.log.Info().Str("integration", i.Name()).Msg("stop")
			return nil
		case <-ticker.C:
			i.scanOnce(ctx, dir)
			ticker.Reset(i.interval())
		}
	}
}

func (i *Importer) Stop() {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.cancel != nil {
		i.cancel()
	}
}

func (i *Importer) interval() time.Duration {
	if i.cfg.PollSec <= 0 {
		return 10 * time.Second
	}
	return time.Duration(i.cfg.PollSec) * time.Second
}

func (i *Importer) patterns() []string {
	if len(i.cfg.Patterns) == 0 {
		return defaultPatterns
	}
	return i.cfg.Patterns
}

// Matches: dopasowanie nazwy pliku do wzorców bez rozróżniania wielkości liter.
func (i *Importer) Matches(name string) bool {
	n := strings.ToLower(name)
	for _, p := range i.patterns() {
		if ok, _ := filepath.Match(strings.ToLower(p), n); ok {
			return true
		}
	}
	return false
}

func (i *Importer) scanOnce(ctx context.Context, dir string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		i.log.Error().Err(err).Str("dir", dir).Msg("nie mogę odczytać katalogu")
		return
	}

	for _, e := range entries {
		if ctx.Err() != nil {
			return
		}
		if e.IsDir() || !i.Matches(e.Name()) {
			continue
		}
		full := filepath.Join(dir, e.Name())
		res, err := i.ImportFile(ctx, full, false)
		switch {
		case err != nil:
			i.log.Error().Err(err).Str("file", e.Name()).Uint("import_id", res.ImportID).Msg("błąd przetwarzania pliku")
		case res.Skipped:
			i.log.Debug().Str("file", e.Name()).Msg("plik już był i DONE, pomijam")
		default:
			i.log.Info().Str("file", e.Name()).Uint("import_id", res.ImportID).
				Int("inserted", res.Report.Inserted).Msg("przetworzono OK")
		}
	}
}

// ImportFile rejestruje plik (sha256), czyta go i puszcza przez pipeline.
// Plik już DONE jest pomijany, chyba że force. Plik z błędem jest ponawiany
// po wyczyszczeniu sprzedaży z poprzedniej próby.
func (i *Importer) ImportFile(ctx context.Context, path string, force bool) (FileResult, error) {
	name := filepath.Base(path)
	res := FileResult{File: name}

	fi, err := os.Stat(path)
	if err != nil {
		return res, err
	}
	h, err := fileSHA256(path)
	if err != nil {
		return res, err
	}

	// dedup po sha
	rec, already, err := i.ledger.RegisterFile(ctx, name, h, fi.Size())
	if err != nil {
		return res, fmt.Errorf("rejestracja pliku nieudana: %w", err)
	}
	res.ImportID = rec.ImportID

	if already {
		if rec.Status == db.ImportDone && !force {
			res.Skipped = true
			return res, nil
		}
		i.log.Warn().Str("file", name).Uint("import_id", rec.ImportID).
			Int("status", rec.Status).Msg("plik istnieje, ale nie DONE, ponawiam przetwarzanie")
		n, err := i.ledger.DeleteImportSales(ctx, rec.ImportID)
		if err != nil {
			return res, i.fail(ctx, rec.ImportID, fmt.Errorf("czyszczenie poprzedniej próby: %w", err))
		}
		if n > 0 {
			i.log.Info().Int64("deleted", n).Uint("import_id", rec.ImportID).Msg("usunięto sprzedaż z poprzedniej próby")
		}
	}

	rows, err := reader.ReadFile(path, reader.Options{Charset: i.cfg.Charset})
	if err != nil {
		return res, i.fail(ctx, rec.ImportID, err)
	}

	rep, err := i.pipeline.Run(ctx, rows, rec.ImportID)
	res.Report = rep
	if rep != nil {
		if werr := i.ledger.SaveWarnings(ctx, rec.ImportID, rep.Warnings); werr != nil {
			i.log.Error().Err(werr).Uint("import_id", rec.ImportID).Msg("zapis ostrzeżeń nieudany")
		}
	}
	if err != nil {
		return res, i.fail(ctx, rec.ImportID, err)
	}

	// sukces: status=1, processed_at=now
	st := db.ImportStats{
		Source:          string(rep.Source),
		Strategy:        string(rep.Strategy.Strategy),
		RowsRead:        rep.RowsRead,
		RowsInserted:    rep.Inserted,
		MachinesCreated: rep.MachinesCreated,
		Warnings:        len(rep.Warnings),
	}
	if err := i.ledger.CompleteImport(ctx, rec.ImportID, st); err != nil {
		return res, fmt.Errorf("zapis statusu importu: %w", err)
	}
	return res, nil
}

func (i *Importer) fail(ctx context.Context, importID uint, cause error) error {
	// status zapisujemy nawet gdy ctx anulowany
	if err := i.ledger.FailImport(context.WithoutCancel(ctx), importID, cause); err != nil {
		i.log.Error().Err(err).Uint("import_id", importID).Msg("zapis statusu błędu nieudany")
	}
	return cause
}

func fileSHA256(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func expandHome(p string) string {
	if strings.HasPrefix(p, "~") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}

func factory(log zerolog.Logger, cfg *conf.Config, gdb *gorm.DB) (integrations.Integration, error) {
	return NewFromDB(log, cfg, gdb)
}

func init() {
	integrations.Register("importer", factory)
}
