package models

import "time"

// Settlement record rows are append-only. The unique index on the
// derived address is the storage-level guard against recording the same
// on-chain event twice.

type PurchaseModel struct {
	ID              string `gorm:"primaryKey"`
	Address         string `gorm:"uniqueIndex:idx_purchase_address;not null"`
	CustomerWallet  string `gorm:"index:idx_purchase_customer;uniqueIndex:idx_purchase_customer_nonce;not null"`
	MerchantID      string `gorm:"index:idx_purchase_merchant;type:uuid;not null"`
	FiatAmount      uint64 `gorm:"not null"`
	RedeemedUnits   uint64 `gorm:"not null"`
	TotalValue      uint64 `gorm:"not null"`
	RewardUnits     uint64 `gorm:"not null"`
	CashbackRateBps uint16 `gorm:"not null"`
	UsedTokens      bool   `gorm:"not null"`
	Signature       string `gorm:"not null"`
	Nonce           string `gorm:"uniqueIndex:idx_purchase_customer_nonce;not null"`
	Slot            uint64
	BlockTime       time.Time
	CreatedAt       time.Time `gorm:"index:idx_purchase_created_at"`
}

func (PurchaseModel) TableName() string {
	return "purchase_transactions"
}

type TransferModel struct {
	ID              string `gorm:"primaryKey"`
	Address         string `gorm:"uniqueIndex:idx_transfer_address;not null"`
	SenderWallet    string `gorm:"index:idx_transfer_sender;uniqueIndex:idx_transfer_sender_nonce;not null"`
	RecipientWallet string `gorm:"index:idx_transfer_recipient;not null"`
	Units           uint64 `gorm:"not null"`
	Memo            string
	Signature       string `gorm:"not null"`
	Nonce           string `gorm:"uniqueIndex:idx_transfer_sender_nonce;not null"`
	Slot            uint64
	BlockTime       time.Time
	CreatedAt       time.Time
}

func (TransferModel) TableName() string {
	return "token_transfers"
}

type RedemptionModel struct {
	ID              string `gorm:"primaryKey"`
	Address         string `gorm:"uniqueIndex:idx_redemption_address;not null"`
	CustomerWallet  string `gorm:"index:idx_redemption_customer;uniqueIndex:idx_redemption_customer_merchant_nonce;not null"`
	MerchantID      string `gorm:"index:idx_redemption_merchant;uniqueIndex:idx_redemption_customer_merchant_nonce;type:uuid;not null"`
	TokenUnits      uint64 `gorm:"not null"`
	FiatValue       uint64 `gorm:"not null"`
	DiscountRateBps uint16 `gorm:"not null"`
	Signature       string `gorm:"not null"`
	Nonce           string `gorm:"uniqueIndex:idx_redemption_customer_merchant_nonce;not null"`
	Slot            uint64
	BlockTime       time.Time
	CreatedAt       time.Time
}

func (RedemptionModel) TableName() string {
	return "token_redemptions"
}
