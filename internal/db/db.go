package db

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	puresqlite "github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverSQLite     = "sqlite"      // cgo, mattn
	DriverSQLitePure = "sqlite-pure" // bez cgo (glebarez)
	DriverMySQL      = "mysql"
	DriverPostgres   = "postgres"
)

// Drivers to lista obsługiwanych wartości database.driver.
var Drivers = []string{DriverSQLite, DriverSQLitePure, DriverMySQL, DriverPostgres}

type Handle struct {
	DB     *gorm.DB
	Driver string
	// Path tylko dla sqlite; dla serwerów pusty
	Path string
}

// Open otwiera bazę dla drivera. Dla sqlite dsn to ścieżka pliku.
func Open(driver, dsn string, verbose bool) (*Handle, error) {
	driver = strings.ToLower(strings.TrimSpace(driver))
	if driver == "" {
		driver = DriverSQLite
	}

	h := &Handle{Driver: driver}
	var dial gorm.Dialector
	switch driver {
	case DriverSQLite, DriverSQLitePure:
		if dsn == "" {
			return nil, fmt.Errorf("db: pusta ścieżka bazy sqlite")
		}
		if !strings.HasPrefix(dsn, "file:") && dsn != ":memory:" {
			_ = os.MkdirAll(filepath.Dir(dsn), 0o755)
			h.Path = dsn
		}
		if driver == DriverSQLite {
			dial = sqlite.Open(dsn)
		} else {
			dial = puresqlite.Open(dsn)
		}
	case DriverMySQL:
		dial = mysql.Open(dsn)
	case DriverPostgres, "postgresql":
		h.Driver = DriverPostgres
		dial = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("db: nieznany driver %q", driver)
	}

	mode := logger.Silent
	if verbose {
		mode = logger.Info // verbose SQL
	}
	gdb, err := gorm.Open(dial, &gorm.Config{Logger: logger.Default.LogMode(mode)})
	if err != nil {
		return nil, fmt.Errorf("db: open %s: %w", driver, err)
	}
	h.DB = gdb
	return h, nil
}

func (h *Handle) Close() error {
	sqlDB, err := h.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
