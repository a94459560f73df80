package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Gdev2986/venda-gestao-nexus-sub002/internal/machines"
	"github.com/Gdev2986/venda-gestao-nexus-sub002/internal/sales"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

const insertChunk = 500

// Repo to warstwa zapisu importu: maszyny, sprzedaż, import_files.
type Repo struct {
	db  *gorm.DB
	log zerolog.Logger
}

func NewRepo(gdb *gorm.DB, log zerolog.Logger) *Repo {
	return &Repo{db: gdb, log: log}
}

var _ machines.Store = (*Repo)(nil)

func (r *Repo) FindMachinesBySerial(ctx context.Context, serials []string) ([]machines.Machine, error) {
	if len(serials) == 0 {
		return nil, nil
	}
	var rows []Machine
	if err := r.db.WithContext(ctx).
		Select("id", "serial_number").
		Where("UPPER(serial_number) IN ?", serials).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]machines.Machine, 0, len(rows))
	for _, m := range rows {
		out = append(out, machines.Machine{ID: m.ID, SerialNumber: m.SerialNumber})
	}
	return out, nil
}

// CreateMachines wstawia wszystko w jednej transakcji; konflikt = błąd, nic nie zostaje.
func (r *Repo) CreateMachines(ctx context.Context, ms []machines.NewMachine) ([]machines.Machine, error) {
	if len(ms) == 0 {
		return nil, nil
	}
	rows := make([]Machine, 0, len(ms))
	for _, m := range ms {
		rows = append(rows, Machine{
			ID:           uuid.NewString(),
			SerialNumber: m.SerialNumber,
			Model:        m.Model,
			Status:       m.Status,
			Notes:        m.Notes,
		})
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(&rows, insertChunk).Error
	})
	if err != nil {
		r.log.Error().Err(err).Int("n", len(rows)).Msg("insert machines failed")
		return nil, err
	}
	out := make([]machines.Machine, 0, len(rows))
	for _, m := range rows {
		out = append(out, machines.Machine{ID: m.ID, SerialNumber: m.SerialNumber})
	}
	return out, nil
}

// InsertSales zapisuje jedną paczkę w transakcji: albo cała, albo błąd.
// importID == 0 oznacza import bez rekordu import_files.
func (r *Repo) InsertSales(ctx context.Context, importID uint, recs []sales.InsertRecord) error {
	if len(recs) == 0 {
		return nil
	}
	var imp *uint
	if importID != 0 {
		imp = &importID
	}
	rows := make([]Sale, 0, len(recs))
	for _, rec := range recs {
		rows = append(rows, Sale{
			ID:               rec.ID,
			Code:             rec.Code,
			Terminal:         rec.Terminal,
			Date:             rec.Date,
			GrossAmount:      rec.GrossAmount,
			NetAmount:        rec.NetAmount,
			PaymentMethod:    string(rec.PaymentMethod),
			MachineID:        rec.MachineID,
			ProcessingStatus: rec.ProcessingStatus,
			Installments:     rec.Installments,
			Source:           rec.Source,
			ImportID:         imp,
			CreatedAt:        rec.CreatedAt,
			UpdatedAt:        rec.UpdatedAt,
		})
	}

	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}
	defer tx.Rollback()

	if err := tx.Create(&rows).Error; err != nil {
		r.log.Error().Err(err).Int("n", len(rows)).Msg("insert sales batch failed")
		return err
	}
	if err := tx.Commit().Error; err != nil {
		r.log.Error().Err(err).Msg("tx commit failed")
		return err
	}
	return nil
}

// DeleteImportSales czyści sprzedaż importu przed ponowieniem (idempotentnie).
func (r *Repo) DeleteImportSales(ctx context.Context, importID uint) (int64, error) {
	res := r.db.WithContext(ctx).Where("import_id = ?", importID).Delete(&Sale{})
	return res.RowsAffected, res.Error
}

// RegisterFile: idempotencja po sha256. already=true gdy plik był już widziany.
func (r *Repo) RegisterFile(ctx context.Context, name, sha string, size int64) (*ImportFile, bool, error) {
	var existing ImportFile
	err := r.db.WithContext(ctx).Where("sha256 = ?", sha).Take(&existing).Error
	if err == nil {
		return &existing, true, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	rec := ImportFile{
		Filename:  name,
		SHA256:    sha,
		SizeBytes: size,
		Status:    ImportPending,
	}
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return nil, false, err
	}
	return &rec, false, nil
}

// ImportStats to liczniki zapisywane przy zakończeniu importu.
type ImportStats struct {
	Source          string
	Strategy        string
	RowsRead        int
	RowsInserted    int
	MachinesCreated int
	Warnings        int
}

func (r *Repo) CompleteImport(ctx context.Context, importID uint, st ImportStats) error {
	now := time.Now()
	return r.db.WithContext(ctx).Model(&ImportFile{}).Where("import_id = ?", importID).
		Updates(map[string]any{
			"status":           ImportDone,
			"last_error":       "",
			"source":           st.Source,
			"strategy":         st.Strategy,
			"rows_read":        st.RowsRead,
			"rows_inserted":    st.RowsInserted,
			"machines_created": st.MachinesCreated,
			"warnings_count":   st.Warnings,
			"processed_at":     now,
		}).Error
}

func (r *Repo) FailImport(ctx context.Context, importID uint, cause error) error {
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	return r.db.WithContext(ctx).Model(&ImportFile{}).Where("import_id = ?", importID).
		Updates(map[string]any{"status": ImportError, "last_error": msg}).Error
}

// SaveWarnings zastępuje ostrzeżenia importu (ponowny import nie dubluje).
func (r *Repo) SaveWarnings(ctx context.Context, importID uint, ws []sales.Warning) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("import_id = ?", importID).Delete(&ImportWarning{}).Error; err != nil {
			return err
		}
		if len(ws) == 0 {
			return nil
		}
		rows := make([]ImportWarning, 0, len(ws))
		for _, w := range ws {
			rows = append(rows, ImportWarning{ImportID: importID, RowIndex: w.RowIndex, Message: w.Message})
		}
		if err := tx.CreateInBatches(&rows, insertChunk).Error; err != nil {
			return fmt.Errorf("zapis ostrzeżeń: %w", err)
		}
		return nil
	})
}

// RecentImports zwraca ostatnie importy, najnowsze pierwsze.
func (r *Repo) RecentImports(ctx context.Context, limit int) ([]ImportFile, error) {
	if limit <= 0 {
		limit = 20
	}
	var out []ImportFile
	err := r.db.WithContext(ctx).Order("import_id DESC").Limit(limit).Find(&out).Error
	return out, err
}

// CountSales pomocniczo dla raportu i testów.
func (r *Repo) CountSales(ctx context.Context, importID uint) (int64, error) {
	var n int64
	q := r.db.WithContext(ctx).Model(&Sale{})
	if importID != 0 {
		q = q.Where("import_id = ?", importID)
	}
	err := q.Count(&n).Error
	return n, err
}
