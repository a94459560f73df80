package machines

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

type fakeStore struct {
	existing    map[string]string
	findCalls   int
	createCalls int
	created     []NewMachine
	findErr     error
	createErr   error
	// dropOnCreate symuluje zapis, który "zgubił" rekord
	dropOnCreate string
}

func (f *fakeStore) FindMachinesBySerial(_ context.Context, serials []string) ([]Machine, error) {
	f.findCalls++
	if f.findErr != nil {
		return nil, f.findErr
	}
	var out []Machine
	for _, s := range serials {
		for serial, id := range f.existing {
			if strings.EqualFold(serial, s) {
				out = append(out, Machine{ID: id, SerialNumber: serial})
			}
		}
	}
	return out, nil
}

func (f *fakeStore) CreateMachines(_ context.Context, ms []NewMachine) ([]Machine, error) {
	f.createCalls++
	if f.createErr != nil {
		return nil, f.createErr
	}
	var out []Machine
	for i, m := range ms {
		f.created = append(f.created, m)
		if m.SerialNumber == f.dropOnCreate {
			continue
		}
		out = append(out, Machine{ID: fmt.Sprintf("new-%d", i), SerialNumber: m.SerialNumber})
	}
	return out, nil
}

func TestEnsureMachinesExist_AllExisting(t *testing.T) {
	t.Parallel()

	st := &fakeStore{existing: map[string]string{"T1": "m1", "T2": "m2"}}
	ids, err := NewResolver(st, zerolog.Nop()).EnsureMachinesExist(context.Background(), []string{"T1", "T2", "T1"})
	if err != nil {
		t.Fatalf("EnsureMachinesExist: %v", err)
	}
	if st.createCalls != 0 {
		t.Fatalf("create calls %d, want 0", st.createCalls)
	}
	if ids["T1"] != "m1" || ids["T2"] != "m2" || len(ids) != 2 {
		t.Fatalf("got %v", ids)
	}
}

func TestEnsureMachinesExist_EmptyInput(t *testing.T) {
	t.Parallel()

	st := &fakeStore{}
	ids, err := NewResolver(st, zerolog.Nop()).EnsureMachinesExist(context.Background(), []string{"", "  "})
	if err != nil {
		t.Fatalf("EnsureMachinesExist: %v", err)
	}
	if len(ids) != 0 || st.findCalls != 0 || st.createCalls != 0 {
		t.Fatalf("ids=%v find=%d create=%d", ids, st.findCalls, st.createCalls)
	}
}

func TestResolve_CreatesMissing(t *testing.T) {
	t.Parallel()

	st := &fakeStore{existing: map[string]string{"T1": "m1"}}
	res, err := NewResolver(st, zerolog.Nop()).Resolve(context.Background(), []string{"T1", "T2", "T3"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if st.createCalls != 1 || len(st.created) != 2 {
		t.Fatalf("create calls=%d created=%v", st.createCalls, st.created)
	}
	for _, m := range st.created {
		if m.Status != DefaultStatus || m.Notes != AutoNote || m.Model != DefaultModel {
			t.Fatalf("defaults not applied: %+v", m)
		}
	}
	if len(res.IDs) != 3 || len(res.Created) != 2 {
		t.Fatalf("got %+v", res)
	}
}

func TestResolve_ChunksLookup(t *testing.T) {
	t.Parallel()

	existing := map[string]string{}
	var terminals []string
	for i := 0; i < 1201; i++ {
		s := fmt.Sprintf("T%04d", i)
		existing[s] = "m" + s
		terminals = append(terminals, s)
	}
	st := &fakeStore{existing: existing}
	if _, err := NewResolver(st, zerolog.Nop()).Resolve(context.Background(), terminals); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if st.findCalls != 3 {
		t.Fatalf("find calls %d, want 3", st.findCalls)
	}
}

func TestResolve_UnresolvedIsFatal(t *testing.T) {
	t.Parallel()

	st := &fakeStore{dropOnCreate: "T9"}
	_, err := NewResolver(st, zerolog.Nop()).Resolve(context.Background(), []string{"T8", "T9"})
	var ue *UnresolvedTerminalsError
	if !errors.As(err, &ue) || !errors.Is(err, ErrUnresolvedTerminals) {
		t.Fatalf("want UnresolvedTerminalsError, got %v", err)
	}
	if len(ue.Terminals) != 1 || ue.Terminals[0] != "T9" {
		t.Fatalf("got %v", ue.Terminals)
	}
}

func TestResolve_PropagatesStoreErrors(t *testing.T) {
	t.Parallel()

	boom := errors.New("connection reset")
	st := &fakeStore{findErr: boom}
	if _, err := NewResolver(st, zerolog.Nop()).Resolve(context.Background(), []string{"T1"}); !errors.Is(err, boom) {
		t.Fatalf("want find error, got %v", err)
	}

	st = &fakeStore{createErr: boom}
	if _, err := NewResolver(st, zerolog.Nop()).Resolve(context.Background(), []string{"T1"}); !errors.Is(err, boom) {
		t.Fatalf("want create error, got %v", err)
	}
}

func TestResolve_SerialsIgnoreCase(t *testing.T) {
	t.Parallel()

	st := &fakeStore{existing: map[string]string{"abc-1": "m1"}}
	res, err := NewResolver(st, zerolog.Nop()).Resolve(context.Background(), []string{"ABC-1", "t1", " T1 ", "abc-1"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(st.created) != 1 || st.created[0].SerialNumber != "t1" {
		t.Fatalf("created %+v, want only t1", st.created)
	}
	if res.IDs["ABC-1"] != "m1" || res.IDs["abc-1"] != "m1" {
		t.Fatalf("got %v", res.IDs)
	}
	if res.IDs["t1"] == "" || res.IDs["t1"] != res.IDs["T1"] {
		t.Fatalf("t1/T1 resolved to different machines: %v", res.IDs)
	}
}
