package domain

import (
	"errors"
	"fmt"
)

var (
	// Validation failures. All wrap ErrValidation so callers can reject
	// bad input before any side effect with a single errors.Is check.
	ErrValidation = errors.New("validation failed")

	ErrInvalidCashbackRate     = fmt.Errorf("%w: cashback rate must be between 0 and 10000 basis points", ErrValidation)
	ErrInvalidPurchaseAmount   = fmt.Errorf("%w: purchase must have positive economic value", ErrValidation)
	ErrPurchaseAmountTooLarge  = fmt.Errorf("%w: purchase amount exceeds maximum allowed", ErrValidation)
	ErrInvalidTransferAmount   = fmt.Errorf("%w: transfer amount cannot be zero", ErrValidation)
	ErrTransferAmountTooLarge  = fmt.Errorf("%w: transfer amount exceeds maximum allowed", ErrValidation)
	ErrInvalidRedemptionAmount = fmt.Errorf("%w: redemption amount cannot be zero", ErrValidation)
	ErrSelfTransfer            = fmt.Errorf("%w: cannot transfer to the same wallet", ErrValidation)
	ErrInvalidMemo             = fmt.Errorf("%w: memo exceeds 64 characters", ErrValidation)
	ErrInvalidMerchantName     = fmt.Errorf("%w: merchant name must be 1-32 characters", ErrValidation)
	ErrInvalidMerchantCategory = fmt.Errorf("%w: merchant category must be 1-16 characters", ErrValidation)
	ErrInvalidIdempotencyKey   = fmt.Errorf("%w: idempotency key must be 32 bytes of lowercase hex", ErrValidation)
	ErrInvalidNonce            = fmt.Errorf("%w: nonce must be 32 bytes of hex", ErrValidation)
	ErrInvalidWalletAddress    = fmt.Errorf("%w: wallet address is not a valid base58 public key", ErrValidation)
	ErrInvalidSignature        = fmt.Errorf("%w: settlement signature is not valid base58", ErrValidation)
	ErrRecordAddressMismatch   = fmt.Errorf("%w: supplied record address does not match derived address", ErrValidation)
	ErrArithmeticOverflow      = fmt.Errorf("%w: arithmetic overflow during reward calculation", ErrValidation)

	// ErrNotConfirmed means the ledger did not settle the signature within
	// the configured timeout. Retryable: the key stays reusable.
	ErrNotConfirmed = errors.New("transaction not confirmed within timeout")

	// ErrRequestInFlight means another request holds the same idempotency
	// key in pending state. The caller must not re-run side effects.
	ErrRequestInFlight = errors.New("request with this idempotency key is already in flight")

	ErrMerchantNotFound       = errors.New("merchant not found")
	ErrMerchantNotActive      = errors.New("merchant is not active")
	ErrMerchantExists         = errors.New("merchant already registered for this wallet")
	ErrRecordNotFound         = errors.New("settlement record not found")
	ErrDuplicateRecord        = errors.New("settlement record already exists for this nonce")
	ErrIdempotencyKeyNotFound = errors.New("idempotency key not found")
	ErrIdempotencyConflict    = errors.New("idempotency record changed state concurrently")

	// ErrPersistence is the umbrella for storage faults. Safe to retry once
	// storage recovers; never conflated with a ledger rejection.
	ErrPersistence = errors.New("persistence failure")
)

// LedgerRejectedError reports an execution failure from the ledger program.
// Terminal for the signature it was returned for.
type LedgerRejectedError struct {
	Signature string
	Reason    string
}

func (e *LedgerRejectedError) Error() string {
	return fmt.Sprintf("ledger rejected transaction %s: %s", e.Signature, e.Reason)
}

// IsRetryable reports whether the caller may retry the same recording
// request without a fresh on-chain submission.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrNotConfirmed) || errors.Is(err, ErrPersistence)
}
