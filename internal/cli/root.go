// Package cli to komendy cobra: import, detect, watch, migrate, imports.
package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	conf "github.com/Gdev2986/venda-gestao-nexus-sub002/internal/config"
	"github.com/Gdev2986/venda-gestao-nexus-sub002/internal/db"
	"github.com/Gdev2986/venda-gestao-nexus-sub002/internal/logs"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

const appName = "vendas-import"

var Version = "1.0.0"

// app trzyma stan jednego wywołania CLI.
type app struct {
	cfgPath string
	envFile string
	verbose bool

	cfg *conf.Config
	log zerolog.Logger
	dbh *db.Handle
}

// NewRootCmd buduje drzewo komend; każde wywołanie dostaje świeży stan.
func NewRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           appName,
		Short:         "Import plików sprzedaży (Rede, PagSeguro, Sigma) do bazy",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load()
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			a.close()
		},
	}
	root.PersistentFlags().StringVar(&a.cfgPath, "config", "", "ścieżka configa (.json/.yaml); domyślnie katalog aplikacji")
	root.PersistentFlags().StringVar(&a.envFile, "env", ".env", "plik .env z nadpisaniami VENDAS_*")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "logi debug + SQL")

	root.AddCommand(
		newImportCmd(a),
		newDetectCmd(a),
		newWatchCmd(a),
		newMigrateCmd(a),
		newImportsCmd(a),
		newVersionCmd(),
	)
	return root
}

// Execute wołane z main.
func Execute() {
	if err := NewRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Błąd:", err)
		os.Exit(1)
	}
}

func (a *app) load() error {
	if a.cfgPath == "" {
		dir, err := appDataDir(appName)
		if err != nil {
			return err
		}
		a.cfgPath = filepath.Join(dir, "config.json")
	}
	cfg, firstRun, err := conf.LoadOrCreate(a.cfgPath)
	if err != nil {
		return err
	}
	if err := cfg.ApplyEnv(a.envFile); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config %s: %w", a.cfgPath, err)
	}
	a.cfg = cfg

	level := cfg.LogLevel
	if a.verbose {
		level = "debug"
	}
	a.log = logs.New(cfg.LogFile, cfg.LogConsole, level)
	if firstRun {
		a.log.Info().Msgf("Utworzono domyślną konfigurację: %s", a.cfgPath)
	}
	return nil
}

// openDB otwiera bazę i migruje schemat; wołane tylko przez komendy z zapisem.
func (a *app) openDB() (*db.Handle, error) {
	if a.dbh != nil {
		return a.dbh, nil
	}
	h, err := db.Open(a.cfg.Database.Driver, a.cfg.DSN(), a.verbose)
	if err != nil {
		return nil, err
	}
	if err := h.Migrate(); err != nil {
		_ = h.Close()
		return nil, fmt.Errorf("DB migrate error: %w", err)
	}
	a.log.Debug().Str("driver", h.Driver).Str("path", h.Path).Msg("DB ready")
	a.dbh = h
	return h, nil
}

func (a *app) close() {
	if a.dbh != nil {
		_ = a.dbh.Close()
		a.dbh = nil
	}
}

func appDataDir(name string) (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	p := filepath.Join(base, name)
	_ = os.MkdirAll(p, 0o755)
	return p, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Wersja",
		// bez configa i logów
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), appName, Version)
		},
	}
}
