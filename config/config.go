package config

import (
	"log"
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

// SystemAdminID is the identity used by background jobs (the form scheduler).
// Resolved at startup from SYSTEM_ADMIN_EMAIL instead of a hardcoded id.
var SystemAdminID uuid.UUID

func Connect() {
	// Load .env file
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	dsn := os.Getenv("DB_DSN")
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Run migrations
	if err := Migrations(DB); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	// Seed the org hierarchy, product catalog and system admin
	if err := RunSeeding(DB); err != nil {
		log.Printf("Warning: seeding encountered issues: %v", err)
	}

	if err := ResolveSystemAdmin(DB); err != nil {
		log.Fatal("Failed to resolve system admin:", err)
	}
}
