package db

import (
	"log"

	"github.com/glebarez/sqlite"
	"github.com/miragepark/community-portal/internal/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// InitDB opens the SQLite database and runs migrations.
func InitDB(dbPath string) (*gorm.DB, error) {
	database, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	// Auto-migrate all models
	if err := database.AutoMigrate(
		&models.Profile{},
		&models.Post{},
		&models.PostComment{},
		&models.Question{},
		&models.Roadmap{},
		&models.Session{},
		&models.LinkState{},
	); err != nil {
		return nil, err
	}

	ensureRoadmapRow(database)

	return database, nil
}

// ensureRoadmapRow seeds the single funding-tracker row on first run.
func ensureRoadmapRow(database *gorm.DB) {
	var count int64
	database.Model(&models.Roadmap{}).Count(&count)
	if count == 0 {
		database.Create(&models.Roadmap{CurrentFunding: 0, FundingGoal: 0})
		log.Printf("Seeded roadmap funding row")
	}
}
