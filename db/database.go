package db

import (
	"admissions_app_go/config"
	"fmt"
	"log"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Initialize opens Turso when a database URL is configured, otherwise a local
// SQLite file in WAL mode.
func Initialize(cfg *config.Config) error {
	var err error

	logLevel := logger.Info
	if cfg.IsProduction() {
		logLevel = logger.Warn
	}
	gormCfg := &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
	}

	if cfg.TursoDatabaseURL != "" {
		dsn := cfg.TursoDatabaseURL
		if cfg.TursoAuthToken != "" {
			dsn += "?authToken=" + cfg.TursoAuthToken
		}
		DB, err = gorm.Open(sqlite.New(sqlite.Config{
			DriverName: "libsql",
			DSN:        dsn,
		}), gormCfg)
		if err != nil {
			return fmt.Errorf("failed to connect to turso: %w", err)
		}
		log.Println("Database connection established (Turso)")
		return nil
	}

	dsn := cfg.DBPath + "?_journal_mode=WAL"
	DB, err = gorm.Open(sqlite.Open(dsn), gormCfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	log.Println("Database connection established (WAL mode enabled)")
	return nil
}

// AutoMigrate runs database migrations for the provided models
func AutoMigrate(models ...interface{}) error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}

	if err := DB.AutoMigrate(models...); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Println("Database migrations completed")
	return nil
}

// Close closes the database connection
func Close() error {
	if DB == nil {
		return nil
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	return sqlDB.Close()
}
