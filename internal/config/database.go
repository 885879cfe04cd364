package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"smart_tracker/internal/store"
)

// OpenStore builds the activity store selected by StoreDriver.
func OpenStore(cfg Config) (store.Store, error) {
	if cfg.StoreDriver == DriverMemory {
		return store.NewMemoryStore(), nil
	}

	db, err := OpenDB(cfg)
	if err != nil {
		return nil, err
	}
	return store.NewGormStore(db)
}

// OpenDB opens a gorm connection for the sqlite or postgres driver.
func OpenDB(cfg Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.StoreDriver {
	case DriverSQLite:
		if dir := filepath.Dir(cfg.SQLitePath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create sqlite directory: %w", err)
			}
		}
		dialector = sqlite.Open(cfg.SQLitePath)
	case DriverPostgres:
		dsn, err := PostgresDSN(cfg)
		if err != nil {
			return nil, err
		}
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger: gormlogger.New(logrus.StandardLogger(), gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// PostgresDSN prefers DATABASE_URL (converted to key/value form) and falls
// back to the discrete DB_* settings.
func PostgresDSN(cfg Config) (string, error) {
	if cfg.DatabaseURL != "" {
		dsn, err := pq.ParseURL(cfg.DatabaseURL)
		if err != nil {
			return "", fmt.Errorf("invalid DATABASE_URL: %w", err)
		}
		return dsn, nil
	}

	d := cfg.DB
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		d.Host, d.User, d.Password, d.Name, d.Port, d.SSLMode, d.TimeZone,
	), nil
}
