package repo

import (
	"FileVault/internal/config"
	"context"
	"database/sql"
	"embed"
	"fmt"
	"time"

	"github.com/pressly/goose/v3"
	"gorm.io/driver/postgres"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"
)

// SQL-миграции схемы (users, files, logs).
//
//go:embed migrations/*.sql
var migrationsFS embed.FS

// InitDB открывает пул соединений по DSN и применяет миграции.
// DSN вида postgres://... открывает Postgres, всё остальное — файл SQLite.
func InitDB(ctx context.Context, dsn string) (*gorm.DB, error) {
	var (
		dial    gorm.Dialector
		dialect string
	)
	if config.IsPostgresDSN(dsn) {
		dial = postgres.Open(dsn)
		dialect = "postgres"
	} else {
		dial = gormsqlite.Dialector{DriverName: "sqlite", DSN: dsn}
		dialect = "sqlite3"
	}

	db, err := gorm.Open(dial, &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Warn),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	if dialect == "sqlite3" {
		// SQLite не любит конкурентных писателей
		sqlDB.SetMaxOpenConns(1)
	}

	if err := migrate(ctx, sqlDB, dialect); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

func migrate(ctx context.Context, db *sql.DB, dialect string) error {
	goose.SetBaseFS(migrationsFS)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect(dialect); err != nil {
		return err
	}
	return goose.UpContext(ctx, db, "migrations")
}
