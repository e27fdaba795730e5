package recordingdto

import "time"

// PurchaseOutput is returned for both fresh recordings and idempotent
// replays; a replay is byte-identical to the original result apart from
// the Replayed flag.
type PurchaseOutput struct {
	RecordID        string    `json:"record_id"`
	Address         string    `json:"address"`
	TotalValue      uint64    `json:"total_value"`
	RewardUnits     uint64    `json:"reward_units"`
	CashbackRateBps uint16    `json:"cashback_rate_bps"`
	Signature       string    `json:"signature"`
	Slot            uint64    `json:"slot"`
	BlockTime       time.Time `json:"block_time"`
	Replayed        bool      `json:"replayed"`
}

type TransferOutput struct {
	RecordID  string    `json:"record_id"`
	Address   string    `json:"address"`
	Units     uint64    `json:"units"`
	Signature string    `json:"signature"`
	Slot      uint64    `json:"slot"`
	BlockTime time.Time `json:"block_time"`
	Replayed  bool      `json:"replayed"`
}

type RedemptionOutput struct {
	RecordID        string    `json:"record_id"`
	Address         string    `json:"address"`
	TokenUnits      uint64    `json:"token_units"`
	FiatValue       uint64    `json:"fiat_value"`
	DiscountRateBps uint16    `json:"discount_rate_bps"`
	Signature       string    `json:"signature"`
	Slot            uint64    `json:"slot"`
	BlockTime       time.Time `json:"block_time"`
	Replayed        bool      `json:"replayed"`
}
