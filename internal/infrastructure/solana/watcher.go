package solana

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/carsa-labs/carsa-rewards-service/internal/domain"
)

const DefaultPollInterval = time.Second

// ConfirmationWatcher polls the ledger for the settlement status of a
// submitted signature. It is a read-only oracle: it never applies side
// effects, and abandoning the wait stops polling promptly.
type ConfirmationWatcher struct {
	client   domain.LedgerClient
	interval time.Duration
}

func NewConfirmationWatcher(client domain.LedgerClient, interval time.Duration) *ConfirmationWatcher {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &ConfirmationWatcher{client: client, interval: interval}
}

// AwaitConfirmation blocks until the signature is confirmed or finalized,
// the ledger reports an execution error (terminal), or timeout elapses
// (retryable ErrNotConfirmed). Transient RPC failures are retried until
// the deadline.
func (w *ConfirmationWatcher) AwaitConfirmation(ctx context.Context, signature string, timeout time.Duration) (*domain.OnChainConfirmation, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		status, err := w.client.GetSignatureStatus(ctx, signature)
		switch {
		case err != nil:
			if errors.Is(err, domain.ErrInvalidSignature) {
				return nil, err
			}
			if ctx.Err() == nil {
				slog.Warn("signature status poll failed", "signature", signature, "error", err.Error())
			}
		case status != nil && status.Err != "":
			return nil, &domain.LedgerRejectedError{Signature: signature, Reason: status.Err}
		case status != nil && status.Confirmed:
			confirmation, err := w.client.GetTransactionMeta(ctx, signature)
			if err == nil {
				confirmation.Finalized = status.Finalized
				return confirmation, nil
			}
			if ctx.Err() == nil {
				slog.Warn("transaction meta fetch failed", "signature", signature, "error", err.Error())
			}
		}

		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return nil, domain.ErrNotConfirmed
			}
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}
