package merchantdto

import "time"

type MerchantOutput struct {
	ID                      string    `json:"id"`
	WalletAddress           string    `json:"wallet_address"`
	Address                 string    `json:"address"`
	Name                    string    `json:"name"`
	Category                string    `json:"category"`
	CashbackRateBps         uint16    `json:"cashback_rate_bps"`
	IsActive                bool      `json:"is_active"`
	TotalTransactions       uint64    `json:"total_transactions"`
	TotalVolume             uint64    `json:"total_volume"`
	TotalRewardsDistributed uint64    `json:"total_rewards_distributed"`
	CreatedAt               time.Time `json:"created_at"`
}
