package database

import (
	"fmt"
	"log"

	"digitaltwin/config"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// InitDB opens the database connection using environment/config and returns
// the handle. The handle is constructed once at process start and passed into
// the stores; nothing reaches for it through package globals.
func InitDB() (*gorm.DB, error) {
	// Setup logging mode for GORM
	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}

	switch config.AppConfig.DBDriver {
	case "postgres":
		dsn := fmt.Sprintf(
			"host=%s port=%s user=%s password=%s dbname=%s sslmode=require TimeZone=UTC",
			config.AppConfig.DBHost,
			config.AppConfig.DBPort,
			config.AppConfig.DBUser,
			config.AppConfig.DBPassword,
			config.AppConfig.DBName,
		)

		log.Printf("Connecting to PostgreSQL at host=%s port=%s db=%s...",
			config.AppConfig.DBHost,
			config.AppConfig.DBPort,
			config.AppConfig.DBName,
		)

		db, err := gorm.Open(postgres.Open(dsn), gormConfig)
		if err != nil {
			log.Printf("Failed to connect to DB: %v", err)
			return nil, err
		}

		log.Println("PostgreSQL connection successful.")
		return db, nil

	case "sqlite", "sqlite3":
		db, err := gorm.Open(sqlite.Open(config.AppConfig.DBPath), gormConfig)
		if err != nil {
			log.Printf("Failed to connect to SQLite: %v", err)
			return nil, err
		}

		log.Printf("SQLite connection successful at %s", config.AppConfig.DBPath)
		return db, nil
	}

	return nil, fmt.Errorf("unsupported DB driver: %s", config.AppConfig.DBDriver)
}

// CloseDB closes the database connection
func CloseDB(db *gorm.DB) error {
	if db != nil {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}
	return nil
}
