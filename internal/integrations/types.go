// internal/integrations/types.go
package integrations

import (
	"context"

	conf "github.com/Gdev2986/venda-gestao-nexus-sub002/internal/config"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// Integration to długo działający komponent uruchamiany przez syncer.
type Integration interface {
	Name() string
	Start(ctx context.Context) error // blokuje do ctx.Done (long-running)
	Stop()                           // idempotent
}

// Factory buduje integrację z bieżącej konfiguracji i otwartej bazy.
type Factory func(log zerolog.Logger, cfg *conf.Config, gdb *gorm.DB) (Integration, error)
