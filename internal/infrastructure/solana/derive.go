package solana

import (
	"fmt"

	"github.com/carsa-labs/carsa-rewards-service/internal/domain"
	solanago "github.com/gagliardetto/solana-go"
)

// Seed prefixes of the on-chain program's account derivation scheme.
// These must stay bit-exact with the program and with any client SDK,
// since both sides derive the same record identities independently.
const (
	merchantSeed    = "merchant"
	transactionSeed = "transaction"
	transferSeed    = "transfer"
	redemptionSeed  = "redemption"
)

// Deriver maps (record kind, actor, nonce) to the deterministic account
// identity the ledger program will create. Duplicate submissions with the
// same nonce collide at the ledger layer; the recorder uses the same
// derivation to validate incoming payloads before trusting them.
type Deriver struct {
	programID solanago.PublicKey
}

func NewDeriver(programID string) (*Deriver, error) {
	pk, err := solanago.PublicKeyFromBase58(programID)
	if err != nil {
		return nil, fmt.Errorf("invalid program id %q: %w", programID, err)
	}
	return &Deriver{programID: pk}, nil
}

func (d *Deriver) MerchantAddress(merchantWallet string) (string, error) {
	owner, err := solanago.PublicKeyFromBase58(merchantWallet)
	if err != nil {
		return "", domain.ErrInvalidWalletAddress
	}
	return d.derive([][]byte{[]byte(merchantSeed), owner.Bytes()})
}

func (d *Deriver) PurchaseAddress(customerWallet string, nonce [32]byte) (string, error) {
	customer, err := solanago.PublicKeyFromBase58(customerWallet)
	if err != nil {
		return "", domain.ErrInvalidWalletAddress
	}
	return d.derive([][]byte{[]byte(transactionSeed), customer.Bytes(), nonce[:]})
}

func (d *Deriver) TransferAddress(senderWallet string, nonce [32]byte) (string, error) {
	sender, err := solanago.PublicKeyFromBase58(senderWallet)
	if err != nil {
		return "", domain.ErrInvalidWalletAddress
	}
	return d.derive([][]byte{[]byte(transferSeed), sender.Bytes(), nonce[:]})
}

func (d *Deriver) RedemptionAddress(customerWallet, merchantWallet string, nonce [32]byte) (string, error) {
	customer, err := solanago.PublicKeyFromBase58(customerWallet)
	if err != nil {
		return "", domain.ErrInvalidWalletAddress
	}
	merchant, err := solanago.PublicKeyFromBase58(merchantWallet)
	if err != nil {
		return "", domain.ErrInvalidWalletAddress
	}
	return d.derive([][]byte{[]byte(redemptionSeed), customer.Bytes(), merchant.Bytes(), nonce[:]})
}

func (d *Deriver) derive(seeds [][]byte) (string, error) {
	address, _, err := solanago.FindProgramAddress(seeds, d.programID)
	if err != nil {
		return "", fmt.Errorf("derive program address: %w", err)
	}
	return address.String(), nil
}
