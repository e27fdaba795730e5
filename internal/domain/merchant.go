package domain

import (
	"context"
	"time"
)

// Merchant is a participating business. Aggregate totals are mutated by
// every settled purchase and redemption via atomic increments at the
// storage layer, never by read-modify-write in memory.
type Merchant struct {
	ID                      string
	WalletAddress           string
	Address                 string // deterministic on-chain account identity
	Name                    string
	Category                string
	CashbackRateBps         uint16
	IsActive                bool
	TotalTransactions       uint64
	TotalVolume             uint64 // minor currency units
	TotalRewardsDistributed uint64 // smallest credit units
	CreatedAt               time.Time
	UpdatedAt               time.Time
}

// MerchantUpdate carries patch semantics for the two merchant-mutable
// fields. Unset fields are left untouched.
type MerchantUpdate struct {
	CashbackRateBps Patch[uint16]
	IsActive        Patch[bool]
}

// CustomerMerchantStats is the per-relationship aggregate row, updated
// with increment semantics from potentially concurrent settlements.
type CustomerMerchantStats struct {
	CustomerWallet string
	MerchantID     string
	VisitCount     uint64
	TotalSpent     uint64 // minor currency units
	TotalEarned    int64  // smallest credit units, redemptions subtract
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type MerchantRepository interface {
	CreateMerchant(ctx context.Context, merchant *Merchant) error
	GetMerchantByID(ctx context.Context, id string) (*Merchant, error)
	GetMerchantByWallet(ctx context.Context, wallet string) (*Merchant, error)
	UpdateMerchant(ctx context.Context, wallet string, update MerchantUpdate) (*Merchant, error)
	GetCustomerMerchantStats(ctx context.Context, customerWallet, merchantID string) (*CustomerMerchantStats, error)
}

// MerchantCache is a read cache over merchant profiles. A miss returns
// (nil, nil).
type MerchantCache interface {
	GetMerchant(ctx context.Context, wallet string) (*Merchant, error)
	SetMerchant(ctx context.Context, merchant *Merchant) error
	InvalidateMerchant(ctx context.Context, wallet string) error
}
