package utils

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"waitlist-rank-system/models"
)

// SQLitePrefix marks a DATABASE_URL that should be opened with the embedded SQLite driver,
// e.g. "sqlite:waitlist.db" or "sqlite::memory:".
const SQLitePrefix = "sqlite:"

// OpenDatabase opens Postgres, or SQLite when dsn carries SQLitePrefix. SQL logging is only
// enabled at debug level. Driver errors are translated, so unique violations surface as
// gorm.ErrDuplicatedKey.
func OpenDatabase(dsn string, level slog.Level) (*gorm.DB, error) {
	gormCfg := &gorm.Config{Logger: gormlogger.Discard, TranslateError: true}
	if level <= slog.LevelDebug {
		gormCfg.Logger = gormlogger.Default.LogMode(gormlogger.Info)
	}

	if path, ok := strings.CutPrefix(dsn, SQLitePrefix); ok {
		db, err := gorm.Open(sqlite.Open(path), gormCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite %q: %w", path, err)
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		// SQLite has a single writer; one connection also keeps ":memory:" a single database.
		sqlDB.SetMaxOpenConns(1)
		return db, nil
	}

	db, err := gorm.Open(postgres.Open(dsn), gormCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// Migrate creates or updates every waitlist table.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.MigrateModels...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}
