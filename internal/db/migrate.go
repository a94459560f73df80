package db

import (
	"fmt"
)

// Migrate tworzy/aktualizuje schemat bazy.
// Index idx_sales_machine_date (machine_id, date) pochodzi z tagów modelu Sale.
func (h *Handle) Migrate() error {
	if err := h.DB.AutoMigrate(
		&Machine{},
		&Sale{},
		&ImportFile{},
		&ImportWarning{},
	); err != nil {
		return fmt.Errorf("AutoMigrate error: %w", err)
	}
	return nil
}
