// Package machines zapewnia, że każdy terminal z importu ma rekord maszyny.
package machines

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/Gdev2986/venda-gestao-nexus-sub002/internal/batch"
	"github.com/rs/zerolog"
)

const (
	DefaultModel  = "Desconhecido"
	DefaultStatus = "STOCK"
	AutoNote      = "Criada automaticamente na importação de vendas"

	// lookupChunk ogranicza długość listy IN (...) w jednym zapytaniu
	lookupChunk = 500
)

var ErrUnresolvedTerminals = errors.New("terminale bez maszyny")

// UnresolvedTerminalsError: po utworzeniu brakujących dalej czegoś nie ma.
type UnresolvedTerminalsError struct {
	Terminals []string
}

func (e *UnresolvedTerminalsError) Error() string {
	return fmt.Sprintf("%v: %s", ErrUnresolvedTerminals, strings.Join(e.Terminals, ", "))
}

func (e *UnresolvedTerminalsError) Unwrap() error { return ErrUnresolvedTerminals }

type Machine struct {
	ID           string
	SerialNumber string
}

type NewMachine struct {
	SerialNumber string
	Model        string
	Status       string
	Notes        string
}

// Store to warstwa zapisu maszyn. FindMachinesBySerial dostaje klucze z
// SerialKey i porównuje bez względu na wielkość liter. CreateMachines musi
// zwrócić błąd przy naruszeniu ograniczeń zamiast częściowego wyniku.
type Store interface {
	FindMachinesBySerial(ctx context.Context, serials []string) ([]Machine, error)
	CreateMachines(ctx context.Context, machines []NewMachine) ([]Machine, error)
}

type Resolver struct {
	store Store
	log   zerolog.Logger
}

func NewResolver(store Store, log zerolog.Logger) *Resolver {
	return &Resolver{store: store, log: log}
}

// Resolution: mapa terminal -> machine_id i lista terminali utworzonych teraz.
type Resolution struct {
	IDs     map[string]string
	Created []string
}

// EnsureMachinesExist zwraca machine_id dla każdego terminala; brakujące tworzy.
func (r *Resolver) EnsureMachinesExist(ctx context.Context, terminals []string) (map[string]string, error) {
	res, err := r.Resolve(ctx, terminals)
	if err != nil {
		return nil, err
	}
	return res.IDs, nil
}

// Resolve porównuje numery seryjne bez względu na wielkość liter: "t1" i "T1"
// to ta sama maszyna. Nowa maszyna dostaje pisownię z pierwszego wystąpienia,
// a IDs zawiera każdą pisownię z wejścia.
func (r *Resolver) Resolve(ctx context.Context, terminals []string) (Resolution, error) {
	wanted := dedup(terminals)
	res := Resolution{IDs: make(map[string]string, len(wanted))}
	if len(wanted) == 0 {
		return res, nil
	}
	byKey := make(map[string]string, len(wanted))

	// 1) istniejące
	keys := make([]string, len(wanted))
	for i, t := range wanted {
		keys[i] = SerialKey(t)
	}
	for _, chunk := range batch.CreateBatches(keys, lookupChunk) {
		found, err := r.store.FindMachinesBySerial(ctx, chunk)
		if err != nil {
			return Resolution{}, fmt.Errorf("wyszukiwanie maszyn: %w", err)
		}
		for _, m := range found {
			byKey[SerialKey(m.SerialNumber)] = m.ID
		}
	}

	// 2) brakujące
	var missing []NewMachine
	for _, t := range wanted {
		if _, ok := byKey[SerialKey(t)]; !ok {
			missing = append(missing, NewMachine{
				SerialNumber: t,
				Model:        DefaultModel,
				Status:       DefaultStatus,
				Notes:        AutoNote,
			})
		}
	}

	// 3) utwórz
	if len(missing) > 0 {
		created, err := r.store.CreateMachines(ctx, missing)
		if err != nil {
			return Resolution{}, fmt.Errorf("tworzenie maszyn: %w", err)
		}
		for _, m := range created {
			byKey[SerialKey(m.SerialNumber)] = m.ID
			res.Created = append(res.Created, m.SerialNumber)
		}
		r.log.Info().Int("created", len(created)).Int("requested", len(missing)).Msg("utworzono brakujące maszyny")
	}

	// 4) każdy terminal musi mieć id
	var unresolved []string
	for _, t := range terminals {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if id := byKey[SerialKey(t)]; id != "" {
			res.IDs[t] = id
		}
	}
	for _, t := range wanted {
		if byKey[SerialKey(t)] == "" {
			unresolved = append(unresolved, t)
		}
	}
	if len(unresolved) > 0 {
		sort.Strings(unresolved)
		return Resolution{}, &UnresolvedTerminalsError{Terminals: unresolved}
	}

	r.log.Debug().Int("terminals", len(wanted)).Int("created", len(res.Created)).Msg("terminale rozwiązane")
	return res, nil
}

// SerialKey to postać numeru seryjnego do porównań (trim + wielkie litery).
func SerialKey(serial string) string {
	return strings.ToUpper(strings.TrimSpace(serial))
}

// dedup usuwa puste i powtórzenia wg SerialKey, zostawia pierwszą pisownię.
func dedup(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, t := range in {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		k := SerialKey(t)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, t)
	}
	return out
}
