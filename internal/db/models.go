package db

import "time"

// statusy import_files
const (
	ImportPending = 0
	ImportDone    = 1
	ImportError   = 2
)

// machines
type Machine struct {
	ID           string    `gorm:"primaryKey;size:36"`
	SerialNumber string    `gorm:"size:191;uniqueIndex"`
	Model        string    `gorm:"size:191"`
	Status       string    `gorm:"size:32;index"` // STOCK, ACTIVE, ...
	Notes        string    `gorm:"type:text"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}

// sales
type Sale struct {
	ID               string    `gorm:"primaryKey;size:36"`
	Code             string    `gorm:"size:32;uniqueIndex"`
	Terminal         string    `gorm:"size:191;index"`
	Date             time.Time `gorm:"index:idx_sales_machine_date,priority:2"`
	GrossAmount      float64
	NetAmount        float64
	PaymentMethod    string `gorm:"size:8"` // CREDIT/DEBIT/PIX
	MachineID        string `gorm:"size:36;index:idx_sales_machine_date,priority:1"`
	ProcessingStatus string `gorm:"size:16;index"`
	Installments     *int
	Source           *string `gorm:"size:32"`
	ImportID         *uint   `gorm:"index"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// import_files
type ImportFile struct {
	ImportID        uint   `gorm:"primaryKey;column:import_id"`
	Filename        string `gorm:"size:255;index"`
	SHA256          string `gorm:"size:64;uniqueIndex"`
	SizeBytes       int64
	Source          string    `gorm:"size:32"`
	Status          int       `gorm:"index"` // 0=pending, 1=done, 2=error
	LastError       string    `gorm:"type:text"`
	RowsRead        int
	RowsInserted    int
	MachinesCreated int
	WarningsCount   int
	Strategy        string    `gorm:"size:16"`
	ReceivedAt      time.Time `gorm:"autoCreateTime"`
	ProcessedAt     *time.Time
}

// import_warnings
type ImportWarning struct {
	ID       uint `gorm:"primaryKey"`
	ImportID uint `gorm:"index"`
	RowIndex int
	Message  string `gorm:"type:text"`
}
