package providers

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/samber/do/v2"

	"github.com/custodylog/custodylog-server/internal/config"
	"github.com/custodylog/custodylog-server/internal/logger"
	"github.com/custodylog/custodylog-server/internal/store"
	"github.com/custodylog/custodylog-server/internal/store/postgres"
	"github.com/custodylog/custodylog-server/internal/store/sqlite"
)

// StoreHandle wraps the record store with shutdown capability.
type StoreHandle struct {
	store.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore provides the record store selected by DB_DRIVER.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	switch cfg.Database.Driver {
	case config.DriverPostgres:
		ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
		defer cancel()

		repo, err := postgres.Open(ctx, cfg.Database.PostgresURL, log.Logger)
		if err != nil {
			return nil, err
		}
		return &StoreHandle{Store: repo}, nil

	case config.DriverSQLite:
		dbPath := filepath.Join(cfg.Storage.DataPath, "custodylog.db")
		db, err := sqlite.Open(dbPath, log.Logger)
		if err != nil {
			return nil, err
		}

		log.Info("Database initialized", "path", dbPath)
		return &StoreHandle{Store: db}, nil

	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
	}
}

// ProvideSlogLogger provides access to the underlying slog.Logger for packages that need it.
func ProvideSlogLogger(i do.Injector) (*slog.Logger, error) {
	log := do.MustInvoke[*logger.Logger](i)
	return log.Logger, nil
}
