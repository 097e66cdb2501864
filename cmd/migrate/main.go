package main

import (
	"context"
	"log"
	"os"

	"cleaning-booking-be/internal/bootstrap"
	"cleaning-booking-be/internal/model"
	"cleaning-booking-be/internal/repository/unitofwork"
	"cleaning-booking-be/pkg/database"

	"github.com/joho/godotenv"
)

func main() {
	// 1. Load Environment Variables
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(dsn, database.DefaultOptions())
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	log.Println("Step 1: Setting up extensions...")
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto;`).Error; err != nil {
		log.Printf("Warn: Failed to create pgcrypto extension: %v. Continuing...", err)
	}

	log.Println("Step 2: Running AutoMigrate...")
	models := []interface{}{
		&model.ReferralLevel{},
		&model.ReferralUser{},
		&model.Booking{},
		&model.Referral{},
		&model.PromoCode{},
		&model.WebhookEvent{},
	}
	if err := db.AutoMigrate(models...); err != nil {
		log.Fatalf("Error: AutoMigrate failed: %v", err)
	}

	log.Println("Step 3: Creating triggers...")
	postMigrationSQL := []string{
		`CREATE OR REPLACE FUNCTION set_current_timestamp_updated_at() RETURNS trigger LANGUAGE plpgsql AS $$
		DECLARE _new_value TIMESTAMP WITH TIME ZONE;
		BEGIN
		  _new_value := now();
		  IF NEW.updated_at IS DISTINCT FROM _new_value THEN NEW.updated_at = _new_value; END IF;
		  RETURN NEW;
		END; $$;`,
		`DROP TRIGGER IF EXISTS set_bookings_updated_at ON bookings;`,
		`CREATE TRIGGER set_bookings_updated_at BEFORE UPDATE ON bookings FOR EACH ROW EXECUTE FUNCTION set_current_timestamp_updated_at();`,
		`DROP TRIGGER IF EXISTS set_referral_users_updated_at ON referral_users;`,
		`CREATE TRIGGER set_referral_users_updated_at BEFORE UPDATE ON referral_users FOR EACH ROW EXECUTE FUNCTION set_current_timestamp_updated_at();`,
	}
	for _, sql := range postMigrationSQL {
		if err := db.Exec(sql).Error; err != nil {
			log.Printf("Warn: Failed to execute post-migration SQL: %v", err)
		}
	}

	log.Println("Step 4: Seeding referral levels...")
	n, err := bootstrap.SeedLevels(context.Background(), unitofwork.NewRepositoryFactory(db), bootstrap.DefaultLevels())
	if err != nil {
		log.Fatalf("Error: Level seed failed: %v", err)
	}
	log.Printf("Seeded %d levels", n)

	log.Println("✅ Success: Database migration completed successfully via GORM.")
}
