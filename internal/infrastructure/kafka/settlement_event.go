package publisher

import "encoding/json"

// SettlementEvent is emitted on the reward-events topic after a record
// is durably persisted. Consumers (dashboards, notification senders) get
// at-least-once delivery; RecordID deduplicates.
type SettlementEvent struct {
	Kind        string `json:"kind"` // purchase | transfer | redemption
	RecordID    string `json:"record_id"`
	Address     string `json:"address"`
	Wallet      string `json:"wallet"`
	MerchantID  string `json:"merchant_id,omitempty"`
	Amount      uint64 `json:"amount"`
	RewardUnits uint64 `json:"reward_units,omitempty"`
	Signature   string `json:"signature"`
	Slot        uint64 `json:"slot"`
}

func (e SettlementEvent) Marshal() ([]byte, error) {
	return json.Marshal(e)
}
