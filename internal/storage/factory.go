package storage

import (
	"context"
	"fmt"

	"github.com/yourname/sleepreport/internal"
	"github.com/yourname/sleepreport/internal/config"
)

// Open builds the backend selected by cfg.DBType.
func Open(ctx context.Context, cfg *config.Config, logger internal.Logger) (Store, error) {
	switch cfg.DBType {
	case "file":
		return NewFileStorage(cfg.FileUsers, cfg.FileSleep, logger)
	case "postgres":
		return NewPostgresStorage(ctx, cfg.DBDSN, logger)
	case "sqlite":
		return OpenSQLite(cfg.SQLitePath, logger)
	default:
		return nil, fmt.Errorf("storage: unknown backend %q", cfg.DBType)
	}
}
