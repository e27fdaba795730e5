package solana

import (
	"testing"

	solanago "github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carsa-labs/carsa-rewards-service/internal/domain"
)

const (
	testProgramID      = "BPFLoaderUpgradeab1e11111111111111111111111"
	testCustomerWallet = "So11111111111111111111111111111111111111112"
	testMerchantWallet = "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"
)

func testDeriver(t *testing.T) *Deriver {
	t.Helper()
	deriver, err := NewDeriver(testProgramID)
	require.NoError(t, err)
	return deriver
}

func TestNewDeriver_InvalidProgramID(t *testing.T) {
	_, err := NewDeriver("not-a-program")
	require.Error(t, err)
}

func TestDeriver_Deterministic(t *testing.T) {
	deriver := testDeriver(t)
	nonce := [32]byte{1, 2, 3}

	first, err := deriver.PurchaseAddress(testCustomerWallet, nonce)
	require.NoError(t, err)
	second, err := deriver.PurchaseAddress(testCustomerWallet, nonce)
	require.NoError(t, err)

	assert.Equal(t, first, second)

	// The derived address is itself a valid public key.
	_, err = solanago.PublicKeyFromBase58(first)
	assert.NoError(t, err)
}

func TestDeriver_NonceChangesAddress(t *testing.T) {
	deriver := testDeriver(t)

	first, err := deriver.PurchaseAddress(testCustomerWallet, [32]byte{1})
	require.NoError(t, err)
	second, err := deriver.PurchaseAddress(testCustomerWallet, [32]byte{2})
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestDeriver_KindsDoNotCollide(t *testing.T) {
	deriver := testDeriver(t)
	nonce := [32]byte{7}

	purchase, err := deriver.PurchaseAddress(testCustomerWallet, nonce)
	require.NoError(t, err)
	transfer, err := deriver.TransferAddress(testCustomerWallet, nonce)
	require.NoError(t, err)
	redemption, err := deriver.RedemptionAddress(testCustomerWallet, testMerchantWallet, nonce)
	require.NoError(t, err)

	assert.NotEqual(t, purchase, transfer)
	assert.NotEqual(t, purchase, redemption)
	assert.NotEqual(t, transfer, redemption)
}

func TestDeriver_MerchantAddress(t *testing.T) {
	deriver := testDeriver(t)

	address, err := deriver.MerchantAddress(testMerchantWallet)
	require.NoError(t, err)
	assert.NotEmpty(t, address)

	other, err := deriver.MerchantAddress(testCustomerWallet)
	require.NoError(t, err)
	assert.NotEqual(t, address, other)
}

func TestDeriver_InvalidWallet(t *testing.T) {
	deriver := testDeriver(t)

	_, err := deriver.MerchantAddress("0OIl")
	assert.ErrorIs(t, err, domain.ErrInvalidWalletAddress)

	_, err = deriver.PurchaseAddress("0OIl", [32]byte{})
	assert.ErrorIs(t, err, domain.ErrInvalidWalletAddress)

	_, err = deriver.RedemptionAddress(testCustomerWallet, "0OIl", [32]byte{})
	assert.ErrorIs(t, err, domain.ErrInvalidWalletAddress)
}
