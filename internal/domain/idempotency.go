package domain

import (
	"context"
	"time"
)

type IdempotencyStatus string

const (
	IdempotencyPending   IdempotencyStatus = "PENDING"
	IdempotencyCompleted IdempotencyStatus = "COMPLETED"
	IdempotencyFailed    IdempotencyStatus = "FAILED"
)

// IdempotencyRecord guards at-most-once application of a recording
// request. The storage-layer unique constraint on Key, not an in-process
// lock, is what makes the reserve race safe across processes.
type IdempotencyRecord struct {
	Key         string // 32 bytes, lowercase hex
	Status      IdempotencyStatus
	Signature   string
	RecordID    string
	CreatedAt   time.Time
	CompletedAt time.Time
}

type IdempotencyRepository interface {
	// Reserve atomically inserts a pending record for key. If the key
	// already exists the stored record is returned unchanged with
	// alreadyExisted=true; only the first reserver may proceed.
	Reserve(ctx context.Context, key string) (record *IdempotencyRecord, alreadyExisted bool, err error)

	Check(ctx context.Context, key string) (*IdempotencyRecord, error)

	// MarkFailed transitions pending -> failed after a confirmation
	// failure, before any domain row exists.
	MarkFailed(ctx context.Context, key string) error

	// Retake transitions failed -> pending so a fresh attempt may reuse
	// the key after a terminal ledger rejection.
	Retake(ctx context.Context, key string) error
}
