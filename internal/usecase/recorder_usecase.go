package usecase

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/carsa-labs/carsa-rewards-service/internal/domain"
	publisher "github.com/carsa-labs/carsa-rewards-service/internal/infrastructure/kafka"
	"github.com/carsa-labs/carsa-rewards-service/internal/infrastructure/metrics"
	recordingdto "github.com/carsa-labs/carsa-rewards-service/internal/usecase/dto/recording"
	"github.com/gagliardetto/solana-go"
	"github.com/jaevor/go-nanoid"
)

const DefaultConfirmTimeout = 60 * time.Second

// RecorderUsecase reconciles ledger-confirmed events into the relational
// store exactly once. Every Record* call is safe under client retries and
// concurrent duplicates: the idempotency reservation is the authoritative
// duplicate-suppression boundary.
type RecorderUsecase interface {
	RecordPurchase(ctx context.Context, input *recordingdto.RecordPurchaseInput) (*recordingdto.PurchaseOutput, error)
	RecordTransfer(ctx context.Context, input *recordingdto.RecordTransferInput) (*recordingdto.TransferOutput, error)
	RecordRedemption(ctx context.Context, input *recordingdto.RecordRedemptionInput) (*recordingdto.RedemptionOutput, error)
}

type DefaultRecorderUsecase struct {
	IdempotencyRepo domain.IdempotencyRepository
	SettlementRepo  domain.SettlementRepository
	MerchantRepo    domain.MerchantRepository
	Waiter          domain.ConfirmationWaiter
	Deriver         domain.AddressDeriver
	Publisher       domain.PublisherPort
	Cache           domain.MerchantCache
	Metrics         *metrics.RecorderMetrics
	EventsTopic     string
	ConfirmTimeout  time.Duration
}

func NewDefaultRecorderUsecase(
	idempotencyRepo domain.IdempotencyRepository,
	settlementRepo domain.SettlementRepository,
	merchantRepo domain.MerchantRepository,
	waiter domain.ConfirmationWaiter,
	deriver domain.AddressDeriver,
	publisher domain.PublisherPort,
	cache domain.MerchantCache,
	recorderMetrics *metrics.RecorderMetrics,
	eventsTopic string,
	confirmTimeout time.Duration) *DefaultRecorderUsecase {

	if confirmTimeout <= 0 {
		confirmTimeout = DefaultConfirmTimeout
	}
	return &DefaultRecorderUsecase{
		IdempotencyRepo: idempotencyRepo,
		SettlementRepo:  settlementRepo,
		MerchantRepo:    merchantRepo,
		Waiter:          waiter,
		Deriver:         deriver,
		Publisher:       publisher,
		Cache:           cache,
		Metrics:         recorderMetrics,
		EventsTopic:     eventsTopic,
		ConfirmTimeout:  confirmTimeout,
	}
}

// invalidateMerchant drops the cached profile after a settlement changed
// the merchant's aggregates. Best effort; a stale entry ages out via TTL.
func (uc *DefaultRecorderUsecase) invalidateMerchant(ctx context.Context, wallet string) {
	if uc.Cache == nil {
		return
	}
	if err := uc.Cache.InvalidateMerchant(ctx, wallet); err != nil {
		slog.Warn("failed to invalidate merchant cache", "wallet", wallet, "error", err.Error())
	}
}

func (uc *DefaultRecorderUsecase) RecordPurchase(ctx context.Context, input *recordingdto.RecordPurchaseInput) (*recordingdto.PurchaseOutput, error) {
	key, err := parseIdempotencyKey(input.IdempotencyKey)
	if err != nil {
		return nil, err
	}
	nonce, err := parseNonce(input.Nonce)
	if err != nil {
		return nil, err
	}
	if err := validateSignature(input.Signature); err != nil {
		return nil, err
	}
	if err := validateWallet(input.CustomerWallet); err != nil {
		return nil, err
	}

	prior, err := uc.checkReplay(ctx, key, kindPurchase)
	if err != nil {
		return nil, err
	}
	if prior != nil {
		return uc.replayPurchase(ctx, prior)
	}

	merchant, err := uc.MerchantRepo.GetMerchantByID(ctx, input.MerchantID)
	if err != nil {
		return nil, err
	}
	if !merchant.IsActive {
		return nil, domain.ErrMerchantNotActive
	}

	// Recompute the economic outcome from the asserted inputs. The stored
	// reward must match what the ledger paid regardless of anything the
	// client reports.
	breakdown, err := CalculateReward(input.FiatAmount, input.RedeemedUnits, merchant.CashbackRateBps)
	if err != nil {
		return nil, err
	}

	address, err := uc.Deriver.PurchaseAddress(input.CustomerWallet, nonce)
	if err != nil {
		return nil, err
	}
	if input.RecordAddress != "" && input.RecordAddress != address {
		return nil, domain.ErrRecordAddressMismatch
	}

	proceed, replay, err := uc.takeReservation(ctx, key, kindPurchase)
	if err != nil {
		return nil, err
	}
	if !proceed {
		return uc.replayPurchase(ctx, replay)
	}

	confirmation, err := uc.awaitConfirmation(ctx, key, input.Signature, kindPurchase)
	if err != nil {
		return nil, err
	}

	purchase := &domain.PurchaseTransaction{
		ID:              newRecordID(),
		Address:         address,
		CustomerWallet:  input.CustomerWallet,
		MerchantID:      merchant.ID,
		FiatAmount:      input.FiatAmount,
		RedeemedUnits:   input.RedeemedUnits,
		TotalValue:      breakdown.TotalValue,
		RewardUnits:     breakdown.RewardUnits,
		CashbackRateBps: merchant.CashbackRateBps,
		UsedTokens:      input.RedeemedUnits > 0,
		Signature:       input.Signature,
		Nonce:           key64(nonce),
		Slot:            confirmation.Slot,
		BlockTime:       confirmation.BlockTime,
		CreatedAt:       time.Now().UTC(),
	}

	if err := uc.SettlementRepo.SettlePurchase(ctx, purchase, key); err != nil {
		uc.settleFailed(ctx, key, kindPurchase, err)
		return nil, err
	}

	uc.Metrics.RecordSettled(kindPurchase)
	uc.Metrics.RecordRewardDistributed(merchant.ID, breakdown.RewardUnits)
	uc.invalidateMerchant(ctx, merchant.WalletAddress)
	uc.publishEvent(publisher.SettlementEvent{
		Kind:        kindPurchase,
		RecordID:    purchase.ID,
		Address:     purchase.Address,
		Wallet:      purchase.CustomerWallet,
		MerchantID:  purchase.MerchantID,
		Amount:      purchase.TotalValue,
		RewardUnits: purchase.RewardUnits,
		Signature:   purchase.Signature,
		Slot:        purchase.Slot,
	})

	return purchaseOutput(purchase, false), nil
}

func (uc *DefaultRecorderUsecase) RecordTransfer(ctx context.Context, input *recordingdto.RecordTransferInput) (*recordingdto.TransferOutput, error) {
	key, err := parseIdempotencyKey(input.IdempotencyKey)
	if err != nil {
		return nil, err
	}
	nonce, err := parseNonce(input.Nonce)
	if err != nil {
		return nil, err
	}
	if err := validateSignature(input.Signature); err != nil {
		return nil, err
	}
	if err := validateWallet(input.SenderWallet); err != nil {
		return nil, err
	}
	if err := validateWallet(input.RecipientWallet); err != nil {
		return nil, err
	}
	if input.Units == 0 {
		return nil, domain.ErrInvalidTransferAmount
	}
	if input.Units > MaxTransferUnits {
		return nil, domain.ErrTransferAmountTooLarge
	}
	if len(input.Memo) > MaxMemoLen {
		return nil, domain.ErrInvalidMemo
	}
	if input.SenderWallet == input.RecipientWallet {
		return nil, domain.ErrSelfTransfer
	}

	address, err := uc.Deriver.TransferAddress(input.SenderWallet, nonce)
	if err != nil {
		return nil, err
	}
	if input.RecordAddress != "" && input.RecordAddress != address {
		return nil, domain.ErrRecordAddressMismatch
	}

	proceed, replay, err := uc.takeReservation(ctx, key, kindTransfer)
	if err != nil {
		return nil, err
	}
	if !proceed {
		return uc.replayTransfer(ctx, replay)
	}

	confirmation, err := uc.awaitConfirmation(ctx, key, input.Signature, kindTransfer)
	if err != nil {
		return nil, err
	}

	transfer := &domain.TokenTransfer{
		ID:              newRecordID(),
		Address:         address,
		SenderWallet:    input.SenderWallet,
		RecipientWallet: input.RecipientWallet,
		Units:           input.Units,
		Memo:            input.Memo,
		Signature:       input.Signature,
		Nonce:           key64(nonce),
		Slot:            confirmation.Slot,
		BlockTime:       confirmation.BlockTime,
		CreatedAt:       time.Now().UTC(),
	}

	if err := uc.SettlementRepo.SettleTransfer(ctx, transfer, key); err != nil {
		uc.settleFailed(ctx, key, kindTransfer, err)
		return nil, err
	}

	uc.Metrics.RecordSettled(kindTransfer)
	uc.publishEvent(publisher.SettlementEvent{
		Kind:      kindTransfer,
		RecordID:  transfer.ID,
		Address:   transfer.Address,
		Wallet:    transfer.SenderWallet,
		Amount:    transfer.Units,
		Signature: transfer.Signature,
		Slot:      transfer.Slot,
	})

	return transferOutput(transfer, false), nil
}

func (uc *DefaultRecorderUsecase) RecordRedemption(ctx context.Context, input *recordingdto.RecordRedemptionInput) (*recordingdto.RedemptionOutput, error) {
	key, err := parseIdempotencyKey(input.IdempotencyKey)
	if err != nil {
		return nil, err
	}
	nonce, err := parseNonce(input.Nonce)
	if err != nil {
		return nil, err
	}
	if err := validateSignature(input.Signature); err != nil {
		return nil, err
	}
	if err := validateWallet(input.CustomerWallet); err != nil {
		return nil, err
	}
	if input.TokenUnits == 0 || input.FiatValue == 0 {
		return nil, domain.ErrInvalidRedemptionAmount
	}
	if input.DiscountRateBps > MaxCashbackRateBps {
		return nil, domain.ErrInvalidCashbackRate
	}

	prior, err := uc.checkReplay(ctx, key, kindRedemption)
	if err != nil {
		return nil, err
	}
	if prior != nil {
		return uc.replayRedemption(ctx, prior)
	}

	merchant, err := uc.MerchantRepo.GetMerchantByID(ctx, input.MerchantID)
	if err != nil {
		return nil, err
	}
	if !merchant.IsActive {
		return nil, domain.ErrMerchantNotActive
	}

	address, err := uc.Deriver.RedemptionAddress(input.CustomerWallet, merchant.WalletAddress, nonce)
	if err != nil {
		return nil, err
	}
	if input.RecordAddress != "" && input.RecordAddress != address {
		return nil, domain.ErrRecordAddressMismatch
	}

	proceed, replay, err := uc.takeReservation(ctx, key, kindRedemption)
	if err != nil {
		return nil, err
	}
	if !proceed {
		return uc.replayRedemption(ctx, replay)
	}

	confirmation, err := uc.awaitConfirmation(ctx, key, input.Signature, kindRedemption)
	if err != nil {
		return nil, err
	}

	redemption := &domain.TokenRedemption{
		ID:              newRecordID(),
		Address:         address,
		CustomerWallet:  input.CustomerWallet,
		MerchantID:      merchant.ID,
		TokenUnits:      input.TokenUnits,
		FiatValue:       input.FiatValue,
		DiscountRateBps: input.DiscountRateBps,
		Signature:       input.Signature,
		Nonce:           key64(nonce),
		Slot:            confirmation.Slot,
		BlockTime:       confirmation.BlockTime,
		CreatedAt:       time.Now().UTC(),
	}

	if err := uc.SettlementRepo.SettleRedemption(ctx, redemption, key); err != nil {
		uc.settleFailed(ctx, key, kindRedemption, err)
		return nil, err
	}

	uc.Metrics.RecordSettled(kindRedemption)
	uc.invalidateMerchant(ctx, merchant.WalletAddress)
	uc.publishEvent(publisher.SettlementEvent{
		Kind:       kindRedemption,
		RecordID:   redemption.ID,
		Address:    redemption.Address,
		Wallet:     redemption.CustomerWallet,
		MerchantID: redemption.MerchantID,
		Amount:     redemption.FiatValue,
		Signature:  redemption.Signature,
		Slot:       redemption.Slot,
	})

	return redemptionOutput(redemption, false), nil
}

const (
	kindPurchase   = "purchase"
	kindTransfer   = "transfer"
	kindRedemption = "redemption"
)

// takeReservation claims the idempotency key. proceed=false means the key
// already completed and replay holds the prior record; a pending key is a
// concurrent in-flight request and is rejected outright.
func (uc *DefaultRecorderUsecase) takeReservation(ctx context.Context, key, kind string) (proceed bool, replay *domain.IdempotencyRecord, err error) {
	record, alreadyExisted, err := uc.IdempotencyRepo.Reserve(ctx, key)
	if err != nil {
		return false, nil, err
	}
	if !alreadyExisted {
		return true, nil, nil
	}

	switch record.Status {
	case domain.IdempotencyCompleted:
		uc.Metrics.RecordReplay(kind)
		return false, record, nil
	case domain.IdempotencyPending:
		return false, nil, domain.ErrRequestInFlight
	case domain.IdempotencyFailed:
		// A previous attempt failed before persisting anything; the key
		// may be retaken for a fresh attempt.
		if err := uc.IdempotencyRepo.Retake(ctx, key); err != nil {
			return false, nil, err
		}
		return true, nil, nil
	default:
		return false, nil, domain.ErrIdempotencyConflict
	}
}

// checkReplay short-circuits an already-completed key. Runs after the
// input-format checks but before any gating on current merchant state: a
// replay returns the prior result unchanged even if the merchant was
// deactivated after the original recording.
func (uc *DefaultRecorderUsecase) checkReplay(ctx context.Context, key, kind string) (*domain.IdempotencyRecord, error) {
	record, err := uc.IdempotencyRepo.Check(ctx, key)
	if err != nil {
		if errors.Is(err, domain.ErrIdempotencyKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if record.Status != domain.IdempotencyCompleted {
		return nil, nil
	}
	uc.Metrics.RecordReplay(kind)
	return record, nil
}

// settleFailed releases the reservation after a settlement error so the
// key can be retaken once the fault clears. A conflict means another
// request already completed the key; that record stays untouched.
func (uc *DefaultRecorderUsecase) settleFailed(ctx context.Context, key, kind string, err error) {
	uc.Metrics.RecordError(kind, errorType(err))
	if errors.Is(err, domain.ErrIdempotencyConflict) {
		return
	}
	if markErr := uc.IdempotencyRepo.MarkFailed(ctx, key); markErr != nil {
		slog.Error("failed to mark idempotency record failed",
			"key", key, "error", markErr.Error())
	}
}

func (uc *DefaultRecorderUsecase) awaitConfirmation(ctx context.Context, key, signature, kind string) (*domain.OnChainConfirmation, error) {
	started := time.Now()
	confirmation, err := uc.Waiter.AwaitConfirmation(ctx, signature, uc.ConfirmTimeout)
	uc.Metrics.ObserveConfirmationWait(time.Since(started).Seconds())
	if err != nil {
		// No domain row exists yet; mark the reservation failed so the
		// key stays reusable.
		if markErr := uc.IdempotencyRepo.MarkFailed(ctx, key); markErr != nil {
			slog.Error("failed to mark idempotency record failed",
				"key", key, "error", markErr.Error())
		}
		uc.Metrics.RecordError(kind, errorType(err))
		return nil, err
	}
	return confirmation, nil
}

func (uc *DefaultRecorderUsecase) replayPurchase(ctx context.Context, record *domain.IdempotencyRecord) (*recordingdto.PurchaseOutput, error) {
	if record.RecordID == "" {
		return nil, domain.ErrIdempotencyConflict
	}
	purchase, err := uc.SettlementRepo.GetPurchaseByID(ctx, record.RecordID)
	if err != nil {
		return nil, err
	}
	return purchaseOutput(purchase, true), nil
}

func (uc *DefaultRecorderUsecase) replayTransfer(ctx context.Context, record *domain.IdempotencyRecord) (*recordingdto.TransferOutput, error) {
	if record.RecordID == "" {
		return nil, domain.ErrIdempotencyConflict
	}
	transfer, err := uc.SettlementRepo.GetTransferByID(ctx, record.RecordID)
	if err != nil {
		return nil, err
	}
	return transferOutput(transfer, true), nil
}

func (uc *DefaultRecorderUsecase) replayRedemption(ctx context.Context, record *domain.IdempotencyRecord) (*recordingdto.RedemptionOutput, error) {
	if record.RecordID == "" {
		return nil, domain.ErrIdempotencyConflict
	}
	redemption, err := uc.SettlementRepo.GetRedemptionByID(ctx, record.RecordID)
	if err != nil {
		return nil, err
	}
	return redemptionOutput(redemption, true), nil
}

func (uc *DefaultRecorderUsecase) publishEvent(event publisher.SettlementEvent) {
	if uc.Publisher == nil {
		return
	}
	value, err := event.Marshal()
	if err != nil {
		slog.Error("failed to marshal settlement event", "record_id", event.RecordID, "error", err.Error())
		return
	}
	if err := uc.Publisher.Publish(uc.EventsTopic, domain.Message{Key: []byte(event.Wallet), Value: value}); err != nil {
		slog.Error("failed to publish settlement event", "record_id", event.RecordID, "error", err.Error())
	}
}

func purchaseOutput(p *domain.PurchaseTransaction, replayed bool) *recordingdto.PurchaseOutput {
	return &recordingdto.PurchaseOutput{
		RecordID:        p.ID,
		Address:         p.Address,
		TotalValue:      p.TotalValue,
		RewardUnits:     p.RewardUnits,
		CashbackRateBps: p.CashbackRateBps,
		Signature:       p.Signature,
		Slot:            p.Slot,
		BlockTime:       p.BlockTime,
		Replayed:        replayed,
	}
}

func transferOutput(t *domain.TokenTransfer, replayed bool) *recordingdto.TransferOutput {
	return &recordingdto.TransferOutput{
		RecordID:  t.ID,
		Address:   t.Address,
		Units:     t.Units,
		Signature: t.Signature,
		Slot:      t.Slot,
		BlockTime: t.BlockTime,
		Replayed:  replayed,
	}
}

func redemptionOutput(r *domain.TokenRedemption, replayed bool) *recordingdto.RedemptionOutput {
	return &recordingdto.RedemptionOutput{
		RecordID:        r.ID,
		Address:         r.Address,
		TokenUnits:      r.TokenUnits,
		FiatValue:       r.FiatValue,
		DiscountRateBps: r.DiscountRateBps,
		Signature:       r.Signature,
		Slot:            r.Slot,
		BlockTime:       r.BlockTime,
		Replayed:        replayed,
	}
}

func newRecordID() string {
	idGenerator, err := nanoid.Standard(15)
	if err != nil {
		panic(fmt.Sprintf("nanoid generator: %v", err))
	}
	return idGenerator()
}

func parseIdempotencyKey(key string) (string, error) {
	raw, err := hex.DecodeString(key)
	if err != nil || len(raw) != 32 || hex.EncodeToString(raw) != key {
		return "", domain.ErrInvalidIdempotencyKey
	}
	return key, nil
}

func parseNonce(value string) ([32]byte, error) {
	var nonce [32]byte
	raw, err := hex.DecodeString(value)
	if err != nil || len(raw) != 32 {
		return nonce, domain.ErrInvalidNonce
	}
	copy(nonce[:], raw)
	return nonce, nil
}

func key64(nonce [32]byte) string {
	return hex.EncodeToString(nonce[:])
}

func validateSignature(signature string) error {
	if _, err := solana.SignatureFromBase58(signature); err != nil {
		return domain.ErrInvalidSignature
	}
	return nil
}

func validateWallet(wallet string) error {
	if _, err := solana.PublicKeyFromBase58(wallet); err != nil {
		return domain.ErrInvalidWalletAddress
	}
	return nil
}

func errorType(err error) string {
	switch {
	case errors.Is(err, domain.ErrNotConfirmed):
		return "not_confirmed"
	case errors.Is(err, domain.ErrDuplicateRecord):
		return "duplicate_record"
	case errors.Is(err, domain.ErrPersistence):
		return "persistence"
	default:
		var rejected *domain.LedgerRejectedError
		if errors.As(err, &rejected) {
			return "ledger_rejected"
		}
		return "internal"
	}
}
