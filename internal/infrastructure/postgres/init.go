package postgres

import (
	"log"

	"github.com/carsa-labs/carsa-rewards-service/internal/config"
	"github.com/carsa-labs/carsa-rewards-service/internal/infrastructure/logger"
	"github.com/carsa-labs/carsa-rewards-service/internal/infrastructure/postgres/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func MustInitDB(cfg *config.RewardsConfig) *gorm.DB {
	dsn := cfg.RewardsDB.Dsn
	// TranslateError maps driver unique-violation errors to
	// gorm.ErrDuplicatedKey, which the repositories rely on.
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatalf("failed to init db: %v\n", err.Error())
	}

	db.AutoMigrate(
		&models.MerchantModel{},
		&models.PurchaseModel{},
		&models.TransferModel{},
		&models.RedemptionModel{},
		&models.CustomerMerchantModel{},
		&models.IdempotencyModel{},
		&logger.RecordingFailedEvent{},
	)

	return db
}
