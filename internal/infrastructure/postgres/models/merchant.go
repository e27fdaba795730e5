package models

import "time"

type MerchantModel struct {
	ID                      string `gorm:"primaryKey;type:uuid"`
	WalletAddress           string `gorm:"uniqueIndex:idx_merchant_wallet;not null"`
	Address                 string `gorm:"uniqueIndex:idx_merchant_address;not null"`
	Name                    string `gorm:"not null"`
	Category                string
	CashbackRateBps         uint16 `gorm:"not null"`
	IsActive                bool   `gorm:"not null"`
	TotalTransactions       uint64 `gorm:"not null;default:0"`
	TotalVolume             uint64 `gorm:"not null;default:0"`
	TotalRewardsDistributed uint64 `gorm:"not null;default:0"`
	CreatedAt               time.Time
	UpdatedAt               time.Time
}

func (MerchantModel) TableName() string {
	return "merchants"
}

// CustomerMerchantModel is one row per (customer, merchant) pair,
// upserted with increments on every settlement.
type CustomerMerchantModel struct {
	CustomerWallet string `gorm:"primaryKey"`
	MerchantID     string `gorm:"primaryKey;type:uuid"`
	VisitCount     uint64 `gorm:"not null;default:0"`
	TotalSpent     uint64 `gorm:"not null;default:0"`
	TotalEarned    int64  `gorm:"not null;default:0"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (CustomerMerchantModel) TableName() string {
	return "customer_merchants"
}
