package merchantdto

// RegisterMerchantInput carries the fields a merchant supplies on
// registration. Limits mirror the on-chain program: name 1-32 chars,
// category 1-16 chars, rate 0-10000 bps.
type RegisterMerchantInput struct {
	WalletAddress   string `json:"wallet_address"`
	Name            string `json:"name"`
	Category        string `json:"category"`
	CashbackRateBps uint16 `json:"cashback_rate_bps"`
}

// UpdateMerchantInput patches merchant settings. Nil pointer means the
// field is left unchanged; the values are converted to tagged patches at
// the usecase boundary.
type UpdateMerchantInput struct {
	WalletAddress   string  `json:"wallet_address"`
	CashbackRateBps *uint16 `json:"cashback_rate_bps,omitempty"`
	IsActive        *bool   `json:"is_active,omitempty"`
}
