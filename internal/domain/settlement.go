package domain

import (
	"context"
	"time"
)

// PurchaseTransaction is the immutable record of a settled purchase.
// Created exactly once per (customer, nonce) pair.
type PurchaseTransaction struct {
	ID              string
	Address         string // deterministic on-chain record identity
	CustomerWallet  string
	MerchantID      string
	FiatAmount      uint64 // minor currency units
	RedeemedUnits   uint64 // smallest credit units
	TotalValue      uint64 // minor currency units
	RewardUnits     uint64 // smallest credit units
	CashbackRateBps uint16 // rate snapshot at time of purchase
	UsedTokens      bool
	Signature       string
	Nonce           string // 32 bytes, lowercase hex
	Slot            uint64
	BlockTime       time.Time
	CreatedAt       time.Time
}

// TokenTransfer records a settled peer-to-peer transfer, keyed by
// (sender, nonce).
type TokenTransfer struct {
	ID              string
	Address         string
	SenderWallet    string
	RecipientWallet string
	Units           uint64
	Memo            string
	Signature       string
	Nonce           string
	Slot            uint64
	BlockTime       time.Time
	CreatedAt       time.Time
}

// TokenRedemption records settled in-store spending, keyed by
// (customer, merchant, nonce).
type TokenRedemption struct {
	ID              string
	Address         string
	CustomerWallet  string
	MerchantID      string
	TokenUnits      uint64
	FiatValue       uint64 // minor currency units
	DiscountRateBps uint16
	Signature       string
	Nonce           string
	Slot            uint64
	BlockTime       time.Time
	CreatedAt       time.Time
}

// SettlementRepository persists ledger-confirmed records. Each Settle*
// call is a single storage transaction covering the domain row, the
// aggregate increments, and the idempotency completion: either all
// occur or none do.
type SettlementRepository interface {
	SettlePurchase(ctx context.Context, purchase *PurchaseTransaction, idempotencyKey string) error
	SettleTransfer(ctx context.Context, transfer *TokenTransfer, idempotencyKey string) error
	SettleRedemption(ctx context.Context, redemption *TokenRedemption, idempotencyKey string) error

	GetPurchaseByID(ctx context.Context, id string) (*PurchaseTransaction, error)
	GetTransferByID(ctx context.Context, id string) (*TokenTransfer, error)
	GetRedemptionByID(ctx context.Context, id string) (*TokenRedemption, error)
}
