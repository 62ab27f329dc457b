package di

import (
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"dividend_backend/internal/feature/history/adapters"
	"dividend_backend/internal/feature/history/usecase"
	"dividend_backend/internal/platform/config"
	"dividend_backend/internal/platform/db"
)

// NewSnapshotRepository creates the history store selected by HISTORY_BACKEND.
// For the db backend it opens the database and migrates the snapshots table;
// the returned *gorm.DB is nil for the file backend.
func NewSnapshotRepository(cfg config.Config) (usecase.SnapshotRepository, *gorm.DB, error) {
	if cfg.HistoryBackend != config.HistoryBackendDB {
		return adapters.NewSnapshotFileRepository(cfg.HistoryDir()), nil, nil
	}

	gdb, err := db.OpenDB(cfg.DB)
	if err != nil {
		return nil, nil, err
	}
	if err := migrateSnapshots(gdb); err != nil {
		return nil, nil, err
	}
	return adapters.NewSnapshotGormRepository(gdb), gdb, nil
}

// migrateSnapshots migrates the snapshots table and closes gdb when the migration fails.
func migrateSnapshots(gdb *gorm.DB) error {
	err := gdb.AutoMigrate(&adapters.SnapshotModel{})
	if err == nil {
		return nil
	}
	if sqlDB, dbErr := gdb.DB(); dbErr == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			slog.Warn("failed to close database after migration error", "error", cerr)
		}
	}
	return fmt.Errorf("migrate snapshots: %w", err)
}
