// database/db.go - Database Connection (SQLite / PostgreSQL / MySQL)
package database

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"mathking/config"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var db *gorm.DB

// InitDB opens the configured database, runs migrations and installs the
// handle returned by GetDB.
func InitDB(cfg config.Config) error {
	dsn := cfg.DatabaseURL
	switch cfg.DBDriver {
	case "mysql":
		dsn = cfg.MySQLDSN
	case "sqlite", "":
		dsn = cfg.SQLitePath
		if err := os.MkdirAll(filepath.Dir(dsn), 0755); err != nil {
			return fmt.Errorf("failed to create sqlite directory: %w", err)
		}
	}

	logLevel := logger.Warn
	if !cfg.IsProduction() {
		logLevel = logger.Info
	}

	conn, err := Open(cfg.DBDriver, dsn, logLevel)
	if err != nil {
		return err
	}

	zap.L().Info("database connected", zap.String("driver", cfg.DBDriver))

	if err := RunMigrations(conn); err != nil {
		return err
	}

	db = conn
	return nil
}

// Open connects to driver ("sqlite", "postgres" or "mysql") and configures the
// connection pool.
func Open(driver, dsn string, logLevel logger.LogLevel) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "postgres":
		dialector = postgres.Open(dsn)
	case "mysql":
		dialector = mysql.Open(dsn)
	case "sqlite", "":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", driver)
	}

	conn, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s database: %w", driver, err)
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	if driver == "sqlite" || driver == "" {
		// SQLite serialises writers; one connection avoids SQLITE_BUSY.
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(100)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	return conn, nil
}

// GetDB returns the database instance
func GetDB() *gorm.DB {
	if db == nil {
		zap.L().Fatal("Database not initialized. Call InitDB() first.")
	}
	return db
}

// CloseDB closes the database connection
func CloseDB() error {
	if db == nil {
		return nil
	}

	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	zap.L().Info("database connection closed")
	return nil
}
