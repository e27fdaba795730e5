package stream

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/carsa-labs/carsa-rewards-service/internal/domain"
	"github.com/carsa-labs/carsa-rewards-service/internal/infrastructure/logger"
	"github.com/carsa-labs/carsa-rewards-service/internal/usecase"
	merchantdto "github.com/carsa-labs/carsa-rewards-service/internal/usecase/dto/merchant"
	recordingdto "github.com/carsa-labs/carsa-rewards-service/internal/usecase/dto/recording"
)

// Request types accepted on the recording-requests topic.
const (
	TypeRecordPurchase   = "record_purchase"
	TypeRecordTransfer   = "record_transfer"
	TypeRecordRedemption = "record_redemption"
	TypeRegisterMerchant = "register_merchant"
	TypeUpdateMerchant   = "update_merchant"
)

type envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// RecordingHandler consumes recording requests from the message broker
// and dispatches them to the usecases. Failed requests are logged and
// dropped: the at-most-once recording guarantee lives in the idempotency
// layer, so a client that got no event may resubmit the same key safely.
type RecordingHandler struct {
	recorder   usecase.RecorderUsecase
	merchants  usecase.MerchantUsecase
	subscriber domain.SubscriberPort
	audit      logger.RecordingAuditLogger
	topic      string
	groupID    string
}

func NewRecordingHandler(
	recorder usecase.RecorderUsecase,
	merchants usecase.MerchantUsecase,
	subscriber domain.SubscriberPort,
	audit logger.RecordingAuditLogger,
	topic, groupID string) *RecordingHandler {

	return &RecordingHandler{
		recorder:   recorder,
		merchants:  merchants,
		subscriber: subscriber,
		audit:      audit,
		topic:      topic,
		groupID:    groupID,
	}
}

// Run blocks until the context is cancelled or the subscription closes.
func (h *RecordingHandler) Run(ctx context.Context) error {
	messages, err := h.subscriber.Subscribe(ctx, h.topic, h.groupID)
	if err != nil {
		return err
	}

	slog.Info("recording handler started", "topic", h.topic, "group_id", h.groupID)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-messages:
			if !ok {
				return errors.New("recording subscription closed")
			}
			h.handle(ctx, msg)
		}
	}
}

func (h *RecordingHandler) handle(ctx context.Context, msg domain.Message) {
	var env envelope
	if err := json.Unmarshal(msg.Value, &env); err != nil {
		slog.Error("failed to decode recording request", "error", err.Error())
		return
	}

	switch env.Type {
	case TypeRecordPurchase:
		var input recordingdto.RecordPurchaseInput
		if !decode(env, &input) {
			return
		}
		output, err := h.recorder.RecordPurchase(ctx, &input)
		if err != nil {
			h.logFailure(env.Type, input.IdempotencyKey, err)
			return
		}
		slog.Info("purchase recorded",
			"record_id", output.RecordID, "replayed", output.Replayed,
			"reward_units", output.RewardUnits)

	case TypeRecordTransfer:
		var input recordingdto.RecordTransferInput
		if !decode(env, &input) {
			return
		}
		output, err := h.recorder.RecordTransfer(ctx, &input)
		if err != nil {
			h.logFailure(env.Type, input.IdempotencyKey, err)
			return
		}
		slog.Info("transfer recorded",
			"record_id", output.RecordID, "replayed", output.Replayed)

	case TypeRecordRedemption:
		var input recordingdto.RecordRedemptionInput
		if !decode(env, &input) {
			return
		}
		output, err := h.recorder.RecordRedemption(ctx, &input)
		if err != nil {
			h.logFailure(env.Type, input.IdempotencyKey, err)
			return
		}
		slog.Info("redemption recorded",
			"record_id", output.RecordID, "replayed", output.Replayed)

	case TypeRegisterMerchant:
		var input merchantdto.RegisterMerchantInput
		if !decode(env, &input) {
			return
		}
		output, err := h.merchants.RegisterMerchant(ctx, &input)
		if err != nil {
			h.logFailure(env.Type, input.WalletAddress, err)
			return
		}
		slog.Info("merchant registered", "merchant_id", output.ID, "wallet", output.WalletAddress)

	case TypeUpdateMerchant:
		var input merchantdto.UpdateMerchantInput
		if !decode(env, &input) {
			return
		}
		output, err := h.merchants.UpdateMerchant(ctx, &input)
		if err != nil {
			h.logFailure(env.Type, input.WalletAddress, err)
			return
		}
		slog.Info("merchant updated", "merchant_id", output.ID, "wallet", output.WalletAddress)

	default:
		slog.Warn("unknown recording request type", "type", env.Type)
	}
}

func decode(env envelope, target interface{}) bool {
	if err := json.Unmarshal(env.Payload, target); err != nil {
		slog.Error("failed to decode request payload", "type", env.Type, "error", err.Error())
		return false
	}
	return true
}

func (h *RecordingHandler) logFailure(requestType, key string, err error) {
	level := slog.LevelError
	if errors.Is(err, domain.ErrValidation) || errors.Is(err, domain.ErrRequestInFlight) {
		level = slog.LevelWarn
	}
	slog.Log(context.Background(), level, "recording request failed",
		"type", requestType, "key", key,
		"retryable", domain.IsRetryable(err), "error", err.Error())

	if h.audit == nil {
		return
	}
	event := logger.RecordingFailedEvent{
		RequestType:    requestType,
		IdempotencyKey: key,
		Reason:         err.Error(),
		Retryable:      domain.IsRetryable(err),
		Timestamp:      time.Now().UTC(),
	}
	if auditErr := h.audit.LogRecordingFailed(context.Background(), event); auditErr != nil {
		slog.Error("failed to write recording audit event", "error", auditErr.Error())
	}
}
