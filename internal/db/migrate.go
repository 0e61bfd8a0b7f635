package db

import (
	"contact_system/internal/domain" // Importing domain models

	"github.com/sirupsen/logrus" // Structured logging

	"gorm.io/gorm" // GORM ORM library
)

// Models lists every entity in dependency order, parents first
func Models() []any {
	return []any{
		&domain.User{},
		&domain.Contact{},
		&domain.Phone{},
		&domain.SecurityQA{},
		&domain.TokenBlacklist{},
	}
}

// AutoMigrate creates tables, missing foreign keys, constraints, columns and indexes
func AutoMigrate(conn *gorm.DB) error {
	for _, model := range Models() {
		if err := conn.AutoMigrate(model); err != nil {
			return err
		}
	}
	return nil
}

// Migrate opens the configured database and performs automatic migration
func Migrate(driver, dsn string) {
	conn, err := Open(driver, dsn, false) // Open a connection to the database
	if err != nil {
		logrus.Fatalf("failed to connect database: %v", err) // Log fatal error if connection fails
	}
	if err := AutoMigrate(conn); err != nil {
		logrus.Fatalf("migration failed: %v", err) // Log fatal error if migration fails
	}
	logrus.Info("Migration completed.") // Log successful migration
}
