package database

import (
	"fmt"
	"time"

	"tinylink/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// InitPostgres opens the shared connection pool and migrates the links
// table. TranslateError is on so unique-key violations surface as
// gorm.ErrDuplicatedKey instead of driver-specific errors.
func InitPostgres(host string, port int, user, password, dbName, sslMode string) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, password, dbName, sslMode)

	connection, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	sqlDB, err := connection.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(time.Hour)

	// Idempotent: creates the table, the code length bound comes from the
	// column size, target gets its secondary index.
	if err := connection.AutoMigrate(&model.Link{}); err != nil {
		return nil, fmt.Errorf("database migration failed: %w", err)
	}

	return connection, nil
}
