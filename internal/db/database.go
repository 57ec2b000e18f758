package db

import (
	"fmt"
	stlog "log" // GORM's logger.New expects a standard log.Logger
	"time"

	"github.com/rs/zerolog/log" // Use zerolog's global logger
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// DB is the global database connection instance.
var DB *gorm.DB

// InitDB initializes the database connection using the provided DSN.
func InitDB(dsn string) error {
	if dsn == "" {
		return fmt.Errorf("database DSN cannot be empty")
	}

	newLogger := gormlogger.New(
		stlog.New(log.Logger, "", 0), // Route GORM output through zerolog
		gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormLogLevel(),
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	var err error
	DB, err = gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: newLogger,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	log.Info().Msg("Database connection established successfully.")
	return nil
}

// gormLogLevel maps the active zerolog level onto GORM's levels.
func gormLogLevel() gormlogger.LogLevel {
	switch log.Logger.GetLevel().String() {
	case "error", "fatal", "panic":
		return gormlogger.Error
	case "warn":
		return gormlogger.Warn
	default:
		return gormlogger.Info
	}
}

// MigrateDB runs GORM's AutoMigrate for the given models. Call after InitDB.
func MigrateDB(modelsToMigrate ...interface{}) error {
	if DB == nil {
		return fmt.Errorf("database not initialized, call InitDB first")
	}
	if len(modelsToMigrate) == 0 {
		return fmt.Errorf("no models provided for migration")
	}

	if err := DB.AutoMigrate(modelsToMigrate...); err != nil {
		return fmt.Errorf("failed to auto-migrate database: %w", err)
	}

	log.Info().Int("models_migrated", len(modelsToMigrate)).Msg("Database migration completed")
	return nil
}
