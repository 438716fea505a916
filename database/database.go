// File: /database/database.go
package database

import (
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"motofuel-api/models"
)

func Initialize(databaseURL string, logLevel string) (*gorm.DB, error) {
	gormLevel := logger.Warn
	if logLevel == "debug" {
		gormLevel = logger.Info
	}

	db, err := gorm.Open(mysql.Open(databaseURL), &gorm.Config{
		Logger:                                   logger.Default.LogMode(gormLevel),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	return db, nil
}

func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Motorcycle{},
		&models.TripRecord{},
		&models.TripRoutePoint{},
		&models.TripExpense{},
		&models.FuelLog{},
		&models.MaintenanceRecord{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	addCustomIndexes(db)
	addDatabaseConstraints(db)
	return nil
}

// addCustomIndexes creates indexes AutoMigrate cannot express. MySQL has no
// CREATE INDEX IF NOT EXISTS, so existing ones are skipped via the migrator.
func addCustomIndexes(db *gorm.DB) {
	indexes := []struct {
		table, name, stmt string
	}{
		{"trip_route_points", "idx_route_points_trip_time", "CREATE INDEX idx_route_points_trip_time ON trip_route_points(trip_id, timestamp)"},
		{"trips", "idx_trips_user_created", "CREATE INDEX idx_trips_user_created ON trips(user_id, created_at DESC)"},
		{"fuel_logs", "idx_fuel_logs_moto_date", "CREATE INDEX idx_fuel_logs_moto_date ON fuel_logs(motorcycle_id, date DESC)"},
	}
	for _, idx := range indexes {
		if db.Migrator().HasIndex(idx.table, idx.name) {
			continue
		}
		if err := db.Exec(idx.stmt).Error; err != nil {
			log.WithError(err).WithField("index", idx.name).Warn("Could not create index")
		}
	}
}

func addDatabaseConstraints(db *gorm.DB) {
	checks := map[string]string{
		"ck_trips_distance":         "ALTER TABLE trips ADD CONSTRAINT ck_trips_distance CHECK (actual_distance >= 0 AND duration >= 0 AND reroute_count >= 0)",
		"ck_motorcycles_fuel_level": "ALTER TABLE motorcycles ADD CONSTRAINT ck_motorcycles_fuel_level CHECK (current_fuel_level BETWEEN 0 AND 100)",
		"ck_fuel_logs_liters":       "ALTER TABLE fuel_logs ADD CONSTRAINT ck_fuel_logs_liters CHECK (liters > 0)",
	}
	for name, stmt := range checks {
		if err := db.Exec(stmt).Error; err != nil {
			// Already present on every run after the first.
			log.WithError(err).WithField("constraint", name).Debug("Could not add constraint")
		}
	}
}

// SeedData populates an empty database with a rider and two motorcycles for
// local development.
func SeedData(db *gorm.DB) error {
	var userCount int64
	if err := db.Model(&models.User{}).Count(&userCount).Error; err != nil {
		return err
	}
	if userCount > 0 {
		log.Info("Database already has data, skipping seed")
		return nil
	}

	tank := 8.1
	users := []models.User{
		{ID: "user-1", Name: "John Doe", Handle: "john_doe", Email: "john@example.com"},
		{ID: "user-2", Name: "Jane Smith", Handle: "jane_smith", Email: "jane@example.com", IsAdmin: true},
	}
	motorcycles := []models.Motorcycle{
		{ID: "moto-1", UserID: "user-1", Brand: "Honda", Model: "ADV 160", Year: "2023", TankCapacity: &tank, CurrentFuelLevel: 50},
		{ID: "moto-2", UserID: "user-2", Brand: "Yamaha", Model: "NMAX", Year: "2022", CurrentFuelLevel: 30},
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&users).Error; err != nil {
			return fmt.Errorf("seed users: %w", err)
		}
		if err := tx.Create(&motorcycles).Error; err != nil {
			return fmt.Errorf("seed motorcycles: %w", err)
		}
		log.Info("Database seeded with development riders and motorcycles")
		return nil
	})
}
