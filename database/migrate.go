package database

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yeremiapane/pc-cafe/models"
	"github.com/yeremiapane/pc-cafe/utils"
)

// Migrate creates or updates the four tables. Parents first so the
// orders foreign keys resolve.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Menu{},
		&models.Seat{},
		&models.Order{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	utils.InfoLogger.Println("AutoMigrate completed.")
	return nil
}

// SeedSeats makes sure seats 1..count exist. With reset set every binding
// is cleared, so nobody is seated right after boot.
func SeedSeats(db *gorm.DB, count int, reset bool) error {
	seats := make([]models.Seat, 0, count)
	for n := 1; n <= count; n++ {
		seats = append(seats, models.Seat{Number: uint(n)})
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&seats).Error; err != nil {
			return fmt.Errorf("seed seats: %w", err)
		}
		if reset {
			res := tx.Model(&models.Seat{}).
				Where("user_id IS NOT NULL").
				Updates(models.ReleaseColumns())
			if res.Error != nil {
				return fmt.Errorf("reset seats: %w", res.Error)
			}
			if res.RowsAffected > 0 {
				utils.InfoLogger.Printf("Released %d seat(s) on boot", res.RowsAffected)
			}
		}
		return nil
	})
}
