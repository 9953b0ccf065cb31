package commands

import (
	"fmt"

	"github.com/wonny/jini/internal/contracts"
	"github.com/wonny/jini/internal/store"
	"github.com/wonny/jini/pkg/config"
	"github.com/wonny/jini/pkg/database"
	"github.com/wonny/jini/pkg/logger"
)

// Store is the full repository surface a command may need. SQLite와
// Postgres 구현 둘 다 전부 만족한다.
type Store interface {
	contracts.TableSource
	contracts.RegionRepository
	contracts.TableSink
	contracts.RawSink
	contracts.StatsReader
}

// openStore connects the configured backend and returns the store plus
// its close function.
func openStore(cfg *config.Config, log *logger.Logger) (Store, func(), error) {
	switch cfg.Store {
	case "sqlite":
		db, err := database.NewSQLite(cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite: %w", err)
		}
		return store.NewSQLite(db.DB, log.Component("store")), func() { db.Close() }, nil

	case "postgres":
		db, err := database.NewPostgres(cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		return store.NewPostgres(db.Pool, log.Component("store")), db.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Store)
	}
}
