package solana

import (
	"context"
	"fmt"

	"github.com/carsa-labs/carsa-rewards-service/internal/domain"
	solanago "github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// RPCLedgerClient adapts the Solana JSON-RPC API to the domain's
// read-only ledger oracle.
type RPCLedgerClient struct {
	client *rpc.Client
}

func NewRPCLedgerClient(endpoint string) *RPCLedgerClient {
	return &RPCLedgerClient{client: rpc.New(endpoint)}
}

func (c *RPCLedgerClient) GetSignatureStatus(ctx context.Context, signature string) (*domain.SignatureStatus, error) {
	sig, err := solanago.SignatureFromBase58(signature)
	if err != nil {
		return nil, domain.ErrInvalidSignature
	}

	out, err := c.client.GetSignatureStatuses(ctx, true, sig)
	if err != nil {
		return nil, fmt.Errorf("get signature statuses: %w", err)
	}
	if out == nil || len(out.Value) == 0 || out.Value[0] == nil {
		// Ledger has not seen the signature yet.
		return nil, nil
	}

	value := out.Value[0]
	status := &domain.SignatureStatus{
		Slot:      value.Slot,
		Confirmed: value.ConfirmationStatus == rpc.ConfirmationStatusConfirmed || value.ConfirmationStatus == rpc.ConfirmationStatusFinalized,
		Finalized: value.ConfirmationStatus == rpc.ConfirmationStatusFinalized,
	}
	if value.Err != nil {
		status.Err = fmt.Sprintf("%v", value.Err)
	}
	return status, nil
}

func (c *RPCLedgerClient) GetTransactionMeta(ctx context.Context, signature string) (*domain.OnChainConfirmation, error) {
	sig, err := solanago.SignatureFromBase58(signature)
	if err != nil {
		return nil, domain.ErrInvalidSignature
	}

	out, err := c.client.GetTransaction(ctx, sig, &rpc.GetTransactionOpts{
		Commitment: rpc.CommitmentConfirmed,
	})
	if err != nil {
		return nil, fmt.Errorf("get transaction: %w", err)
	}

	confirmation := &domain.OnChainConfirmation{
		Signature: signature,
		Slot:      out.Slot,
	}
	if out.BlockTime != nil {
		confirmation.BlockTime = out.BlockTime.Time()
	}
	return confirmation, nil
}
