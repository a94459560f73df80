package integrations

import (
	"context"
	"testing"

	conf "github.com/Gdev2986/venda-gestao-nexus-sub002/internal/config"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

type nopIntegration struct{ name string }

func (n nopIntegration) Name() string                { return n.name }
func (n nopIntegration) Start(context.Context) error { return nil }
func (n nopIntegration) Stop()                       {}

func TestRegistry(t *testing.T) {
	mk := func(name string) Factory {
		return func(zerolog.Logger, *conf.Config, *gorm.DB) (Integration, error) {
			return nopIntegration{name}, nil
		}
	}
	Register("test-b", mk("test-b"))
	Register("test-a", mk("test-a"))

	names := Names()
	ia, ib := -1, -1
	for i, n := range names {
		switch n {
		case "test-a":
			ia = i
		case "test-b":
			ib = i
		}
	}
	if ia < 0 || ib < 0 || ia > ib {
		t.Fatalf("got %v", names)
	}

	f, ok := Get("test-a")
	if !ok {
		t.Fatal("test-a not registered")
	}
	in, err := f(zerolog.Nop(), nil, nil)
	if err != nil || in.Name() != "test-a" {
		t.Fatalf("factory: %v %v", in, err)
	}

	defer func() {
		if recover() == nil {
			t.Fatal("want panic on duplicate")
		}
	}()
	Register("test-a", mk("x"))
}
