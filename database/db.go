package database

import (
	"log"

	"venuebook/config"
	"venuebook/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// DB is the global database handle.
var DB *gorm.DB

// InitDB opens the Postgres connection, runs migrations, and installs the
// booking uniqueness constraint.
func InitDB() {
	db, err := gorm.Open(postgres.Open(config.AppConfig.DatabaseURL), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		log.Fatalf("failed to connect to Postgres: %v", err)
	}

	if err := db.AutoMigrate(
		&models.PricingRule{},
		&models.DateOverride{},
		&models.Booking{},
	); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	// At most one non-cancelled booking per date. The conflict guard
	// pre-checks availability, but this index is the final arbiter.
	if err := db.Exec(
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_bookings_active_date
		 ON bookings (date) WHERE status <> 'cancelled'`,
	).Error; err != nil {
		log.Fatalf("failed to create booking uniqueness index: %v", err)
	}

	DB = db
	log.Println("Connected to Postgres successfully!")
}
