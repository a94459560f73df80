package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	conf "github.com/Gdev2986/venda-gestao-nexus-sub002/internal/config"
	_ "github.com/Gdev2986/venda-gestao-nexus-sub002/internal/importer" // rejestracja
	"github.com/Gdev2986/venda-gestao-nexus-sub002/internal/syncer"
	"github.com/spf13/cobra"
)

func newWatchCmd(a *app) *cobra.Command {
	var interactive bool
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Obserwuj import.watch_dir i importuj nowe pliki",
		Long: `Skanuje import.watch_dir co import.poll_sec sekund. SIGHUP przeładowuje config.
Z --interactive czyta komendy z stdin: start | stop | reload | status | paths | quit.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			h, err := a.openDB()
			if err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			s := syncer.New(a.log, a.cfg, h.DB, "importer")
			if err := s.Start(ctx); err != nil {
				return err
			}
			defer s.Stop()
			a.log.Info().Str("dir", a.cfg.Import.WatchDir).Msgf("%s %s: działa", appName, Version)

			hup := make(chan os.Signal, 1)
			signal.Notify(hup, syscall.SIGHUP)
			defer signal.Stop(hup)

			var lines <-chan string
			if interactive {
				lines = readLines(ctx, cmd.InOrStdin())
				fmt.Fprintln(cmd.OutOrStdout(), "Komendy: start | stop | reload | status | paths | quit")
			}

			for {
				select {
				case <-ctx.Done():
					return nil
				case <-hup:
					a.reload(ctx, s)
				case line, ok := <-lines:
					if !ok {
						return nil
					}
					if quit := a.command(ctx, cmd.OutOrStdout(), s, line); quit {
						return nil
					}
				}
			}
		},
	}
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "prosta pętla poleceń na stdin")
	return cmd
}

func (a *app) reload(ctx context.Context, s *syncer.Syncer) error {
	newCfg, _, err := conf.LoadOrCreate(a.cfgPath)
	if err == nil {
		err = newCfg.ApplyEnv(a.envFile)
	}
	if err == nil {
		err = newCfg.Validate()
	}
	if err != nil {
		a.log.Error().Err(err).Msg("Błąd reloadu")
		return err
	}
	a.cfg = newCfg
	if err := s.UpdateConfig(ctx, newCfg); err != nil {
		return err
	}
	a.log.Info().Msg("Konfiguracja przeładowana")
	return nil
}

// command obsługuje jedną linię trybu interaktywnego; true = wyjście.
func (a *app) command(ctx context.Context, out io.Writer, s *syncer.Syncer, line string) bool {
	switch strings.TrimSpace(strings.ToLower(line)) {
	case "start":
		if err := s.Start(ctx); err != nil {
			fmt.Fprintln(out, "Błąd startu:", err)
			return false
		}
		fmt.Fprintln(out, "Start OK")
	case "stop":
		s.Stop()
		fmt.Fprintln(out, "Zatrzymano")
	case "reload":
		if err := a.reload(ctx, s); err != nil {
			fmt.Fprintln(out, "Błąd reloadu:", err)
			return false
		}
		fmt.Fprintln(out, "Konfiguracja przeładowana")
	case "status":
		if s.IsRunning() {
			fmt.Fprintln(out, "Status: DZIAŁA")
		} else {
			fmt.Fprintln(out, "Status: ZATRZYMANY")
		}
	case "paths":
		fmt.Fprintln(out, "Logi:", a.cfg.LogFile)
		fmt.Fprintln(out, "Config:", a.cfgPath)
		fmt.Fprintln(out, "Katalog:", a.cfg.Import.WatchDir)
	case "quit", "exit":
		return true
	case "":
		// enter – ignoruj
	default:
		fmt.Fprintln(out, "Nieznana komenda. Użyj: start | stop | reload | status | paths | quit")
	}
	return false
}

// readLines kończy się na EOF albo po anulowaniu ctx.
func readLines(ctx context.Context, r io.Reader) <-chan string {
	ch := make(chan string)
	go func() {
		defer close(ch)
		sc := bufio.NewScanner(r)
		for sc.Scan() {
			select {
			case ch <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch
}
