package recordingdto

// RecordPurchaseInput carries the client-asserted inputs of a submitted,
// ledger-confirmed purchase. Amounts are re-derived server-side before
// anything is stored.
type RecordPurchaseInput struct {
	IdempotencyKey string `json:"idempotency_key"` // 32 bytes, lowercase hex
	Signature      string `json:"signature"`
	CustomerWallet string `json:"customer_wallet"`
	MerchantID     string `json:"merchant_id"`
	Nonce          string `json:"nonce"` // 32 bytes, hex
	FiatAmount     uint64 `json:"fiat_amount"`
	RedeemedUnits  uint64 `json:"redeemed_units"`
	// RecordAddress is optional; when set it must match the derived
	// record identity for this (customer, nonce) pair.
	RecordAddress string `json:"record_address,omitempty"`
}

type RecordTransferInput struct {
	IdempotencyKey  string `json:"idempotency_key"`
	Signature       string `json:"signature"`
	SenderWallet    string `json:"sender_wallet"`
	RecipientWallet string `json:"recipient_wallet"`
	Nonce           string `json:"nonce"`
	Units           uint64 `json:"units"`
	Memo            string `json:"memo,omitempty"`
	RecordAddress   string `json:"record_address,omitempty"`
}

type RecordRedemptionInput struct {
	IdempotencyKey  string `json:"idempotency_key"`
	Signature       string `json:"signature"`
	CustomerWallet  string `json:"customer_wallet"`
	MerchantID      string `json:"merchant_id"`
	Nonce           string `json:"nonce"`
	TokenUnits      uint64 `json:"token_units"`
	FiatValue       uint64 `json:"fiat_value"`
	DiscountRateBps uint16 `json:"discount_rate_bps"`
	RecordAddress   string `json:"record_address,omitempty"`
}
