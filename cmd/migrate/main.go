package main

import (
	"contact_system/internal/config" // Custom import path (Config)
	"contact_system/internal/db"     // Custom import path (Database)
)

// Main entry point for migration
func main() {
	cfg := config.LoadConfig()            // Load configuration
	db.Migrate(cfg.DBDriver, db.DSN(cfg)) // Create or update every table
}
