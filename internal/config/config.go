// internal/config/config.go
package conf

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// zmienne środowiskowe nadpisujące plik
const (
	EnvDBDriver = "VENDAS_DB_DRIVER"
	EnvDBDSN    = "VENDAS_DB_DSN"
	EnvDBPath   = "VENDAS_DB_PATH"
	EnvLogLevel = "VENDAS_LOG_LEVEL"
	EnvWatchDir = "VENDAS_WATCH_DIR"
	EnvTimezone = "VENDAS_TIMEZONE"
	EnvPollSec  = "VENDAS_POLL_SEC"
)

var knownDrivers = []string{"sqlite", "sqlite-pure", "mysql", "postgres"}

// Główny config aplikacji
type Config struct {
	Database         Database `json:"database" yaml:"database"`
	Import           Import   `json:"import" yaml:"import"`
	LogFile          string   `json:"log_file" yaml:"log_file"`
	LogLevel         string   `json:"log_level" yaml:"log_level"` // debug/info/warn/error
	LogConsole       bool     `json:"log_console" yaml:"log_console"`
	HeartbeatSeconds int      `json:"heartbeat_seconds" yaml:"heartbeat_seconds"`
}

type Database struct {
	Driver string `json:"driver" yaml:"driver"` // sqlite | sqlite-pure | mysql | postgres
	DSN    string `json:"dsn,omitempty" yaml:"dsn,omitempty"`
	Path   string `json:"path,omitempty" yaml:"path,omitempty"` // plik dla sqlite
}

type Import struct {
	WatchDir string   `json:"watch_dir" yaml:"watch_dir"` // np. ~/vendas/imports
	PollSec  int      `json:"poll_sec" yaml:"poll_sec"`
	Timezone string   `json:"timezone" yaml:"timezone"` // strefa dat z eksportów
	Patterns []string `json:"patterns" yaml:"patterns"`
	Charset  string   `json:"charset,omitempty" yaml:"charset,omitempty"`
}

// Default: konfiguracja zapisywana przy pierwszym uruchomieniu.
func Default(appDir string) *Config {
	return &Config{
		Database: Database{
			Driver: "sqlite",
			Path:   filepath.Join(appDir, "vendas.db"),
		},
		Import: Import{
			WatchDir: filepath.Join(appDir, "imports"),
			PollSec:  10,
			Timezone: "America/Sao_Paulo",
			Patterns: []string{"*.csv", "*.xlsx"},
		},
		LogFile:          filepath.Join(appDir, "app.log"),
		LogLevel:         "info",
		LogConsole:       true,
		HeartbeatSeconds: 60,
	}
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// LoadOrCreate czyta config; gdy pliku nie ma, zapisuje domyślny i zwraca firstRun=true.
func LoadOrCreate(path string) (*Config, bool, error) {
	// upewnij się, że katalog istnieje
	_ = os.MkdirAll(filepath.Dir(path), 0o755)

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := Default(filepath.Dir(path))
			if err := Save(path, cfg); err != nil {
				return nil, false, fmt.Errorf("błąd zapisu domyślnego configa: %w", err)
			}
			return cfg, true, nil
		}
		return nil, false, fmt.Errorf("błąd otwierania configa: %w", err)
	}

	// brakujące pola zostają z domyślnych
	cfg := Default(filepath.Dir(path))
	if isYAML(path) {
		err = yaml.Unmarshal(data, cfg)
	} else {
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, false, fmt.Errorf("błąd parsowania configa: %w", err)
	}
	return cfg, false, nil
}

func Save(path string, cfg *Config) error {
	_ = os.MkdirAll(filepath.Dir(path), 0o755)

	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(cfg)
	} else {
		data, err = json.MarshalIndent(cfg, "", "  ")
		data = append(data, '\n')
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// ApplyEnv wczytuje .env (jeśli jest) i nadpisuje pola zmiennymi VENDAS_*.
// Zmienne już ustawione w środowisku mają pierwszeństwo przed .env.
func (c *Config) ApplyEnv(envFiles ...string) error {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("błąd wczytywania %s: %w", f, err)
		}
	}

	if v := os.Getenv(EnvDBDriver); v != "" {
		c.Database.Driver = v
	}
	if v := os.Getenv(EnvDBDSN); v != "" {
		c.Database.DSN = v
	}
	if v := os.Getenv(EnvDBPath); v != "" {
		c.Database.Path = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv(EnvWatchDir); v != "" {
		c.Import.WatchDir = v
	}
	if v := os.Getenv(EnvTimezone); v != "" {
		c.Import.Timezone = v
	}
	if v := os.Getenv(EnvPollSec); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvPollSec, err)
		}
		c.Import.PollSec = n
	}
	return nil
}

// Validate sprawdza driver, DSN i strefę czasową.
func (c *Config) Validate() error {
	d := strings.ToLower(c.Database.Driver)
	if d == "" {
		d = "sqlite"
	}
	if !slices.Contains(knownDrivers, d) {
		return fmt.Errorf("nieznany driver bazy %q (dozwolone: %s)", c.Database.Driver, strings.Join(knownDrivers, ", "))
	}
	switch d {
	case "mysql", "postgres":
		if c.Database.DSN == "" {
			return fmt.Errorf("driver %s wymaga database.dsn", d)
		}
	default:
		if c.Database.Path == "" && c.Database.DSN == "" {
			return errors.New("sqlite wymaga database.path")
		}
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// DSN zwraca connection string dla drivera (dla sqlite: ścieżka pliku).
func (c *Config) DSN() string {
	if c.Database.DSN != "" {
		return c.Database.DSN
	}
	return c.Database.Path
}

// Location: strefa czasowa dat z eksportów; pusta = lokalna.
func (c *Config) Location() (*time.Location, error) {
	if c.Import.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Import.Timezone)
	if err != nil {
		return nil, fmt.Errorf("nieprawidłowa strefa czasowa %q: %w", c.Import.Timezone, err)
	}
	return loc, nil
}
