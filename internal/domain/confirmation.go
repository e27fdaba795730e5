package domain

import (
	"context"
	"time"
)

// OnChainConfirmation is the settlement outcome for a signature. Derived
// from ledger queries, never stored.
type OnChainConfirmation struct {
	Signature string
	Slot      uint64
	BlockTime time.Time
	Finalized bool
}

// SignatureStatus is the ledger's view of a submitted signature.
type SignatureStatus struct {
	Slot      uint64
	Confirmed bool
	Finalized bool
	Err       string // non-empty when the program reported an execution error
}

// LedgerClient is the read-only oracle over the settlement ledger.
// A nil status means the ledger has not seen the signature yet.
type LedgerClient interface {
	GetSignatureStatus(ctx context.Context, signature string) (*SignatureStatus, error)
	GetTransactionMeta(ctx context.Context, signature string) (*OnChainConfirmation, error)
}

// ConfirmationWaiter blocks until a signature settles, the ledger reports
// an execution error, or timeout elapses. Cancelling ctx stops polling
// promptly.
type ConfirmationWaiter interface {
	AwaitConfirmation(ctx context.Context, signature string, timeout time.Duration) (*OnChainConfirmation, error)
}

// AddressDeriver predicts the deterministic record identity a submission
// will create, mirroring the ledger program's own addressing scheme.
type AddressDeriver interface {
	MerchantAddress(merchantWallet string) (string, error)
	PurchaseAddress(customerWallet string, nonce [32]byte) (string, error)
	TransferAddress(senderWallet string, nonce [32]byte) (string, error)
	RedemptionAddress(customerWallet, merchantWallet string, nonce [32]byte) (string, error)
}
