// Package factory wires configuration to concrete adapters.
package factory

import (
	"fmt"

	"github.com/echonote/echonote/internal/config"
	"github.com/echonote/echonote/internal/store"
	"github.com/echonote/echonote/internal/store/postgres"
	"github.com/echonote/echonote/internal/store/sqlite"
)

// NewStore selects the storage adapter based on cfg.DBDriver.
func NewStore(cfg *config.Config) (store.Store, error) {
	switch cfg.DBDriver {
	case "sqlite":
		return sqlite.Open(cfg.SQLiteDir)
	case "postgres":
		return postgres.Open(cfg.PostgresDSN)
	default:
		return nil, fmt.Errorf("unknown DB_DRIVER: %s", cfg.DBDriver)
	}
}
