package postgres

import (
	"log"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/scraplot/auction-service/internal/config"
	"github.com/scraplot/auction-service/internal/infrastructure/postgres/models"
)

func MustInitDB(cfg *config.AuctionConfig) *gorm.DB {
	dsn := cfg.AuctionDB.Dsn
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to init db: %v\n", err.Error())
	}

	if err := db.AutoMigrate(&models.AuctionModel{}, &models.BidModel{}); err != nil {
		log.Fatalf("failed to run automigrations: %v\n", err.Error())
	}

	return db
}
