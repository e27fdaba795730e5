package stream

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carsa-labs/carsa-rewards-service/internal/domain"
	"github.com/carsa-labs/carsa-rewards-service/internal/infrastructure/logger"
	merchantdto "github.com/carsa-labs/carsa-rewards-service/internal/usecase/dto/merchant"
	recordingdto "github.com/carsa-labs/carsa-rewards-service/internal/usecase/dto/recording"
)

type fakeRecorder struct {
	mu          sync.Mutex
	purchases   []*recordingdto.RecordPurchaseInput
	transfers   []*recordingdto.RecordTransferInput
	redemptions []*recordingdto.RecordRedemptionInput
	err         error
}

func (r *fakeRecorder) RecordPurchase(_ context.Context, input *recordingdto.RecordPurchaseInput) (*recordingdto.PurchaseOutput, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	r.purchases = append(r.purchases, input)
	return &recordingdto.PurchaseOutput{RecordID: "rec-1"}, nil
}

func (r *fakeRecorder) RecordTransfer(_ context.Context, input *recordingdto.RecordTransferInput) (*recordingdto.TransferOutput, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	r.transfers = append(r.transfers, input)
	return &recordingdto.TransferOutput{RecordID: "rec-2"}, nil
}

func (r *fakeRecorder) RecordRedemption(_ context.Context, input *recordingdto.RecordRedemptionInput) (*recordingdto.RedemptionOutput, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	r.redemptions = append(r.redemptions, input)
	return &recordingdto.RedemptionOutput{RecordID: "rec-3"}, nil
}

type fakeMerchants struct {
	mu         sync.Mutex
	registered []*merchantdto.RegisterMerchantInput
	updated    []*merchantdto.UpdateMerchantInput
}

func (m *fakeMerchants) RegisterMerchant(_ context.Context, input *merchantdto.RegisterMerchantInput) (*merchantdto.MerchantOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.registered = append(m.registered, input)
	return &merchantdto.MerchantOutput{ID: "m-1", WalletAddress: input.WalletAddress}, nil
}

func (m *fakeMerchants) UpdateMerchant(_ context.Context, input *merchantdto.UpdateMerchantInput) (*merchantdto.MerchantOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updated = append(m.updated, input)
	return &merchantdto.MerchantOutput{ID: "m-1", WalletAddress: input.WalletAddress}, nil
}

func (m *fakeMerchants) GetMerchantByWallet(_ context.Context, wallet string) (*merchantdto.MerchantOutput, error) {
	return &merchantdto.MerchantOutput{ID: "m-1", WalletAddress: wallet}, nil
}

func (m *fakeMerchants) GetMerchantByID(_ context.Context, id string) (*merchantdto.MerchantOutput, error) {
	return &merchantdto.MerchantOutput{ID: id}, nil
}

type fakeSubscriber struct {
	messages chan domain.Message
}

func (s *fakeSubscriber) Subscribe(_ context.Context, _, _ string) (<-chan domain.Message, error) {
	return s.messages, nil
}

type memoryAudit struct {
	mu     sync.Mutex
	events []logger.RecordingFailedEvent
}

func (a *memoryAudit) LogRecordingFailed(_ context.Context, event logger.RecordingFailedEvent) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, event)
	return nil
}

func envelopeMessage(t *testing.T, requestType string, payload interface{}) domain.Message {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	value, err := json.Marshal(envelope{Type: requestType, Payload: raw})
	require.NoError(t, err)
	return domain.Message{Value: value}
}

func runHandler(t *testing.T, recorder *fakeRecorder, merchants *fakeMerchants, audit logger.RecordingAuditLogger, messages ...domain.Message) {
	t.Helper()
	sub := &fakeSubscriber{messages: make(chan domain.Message, len(messages))}
	for _, msg := range messages {
		sub.messages <- msg
	}

	handler := NewRecordingHandler(recorder, merchants, sub, audit, "recording-requests", "rewards-service")

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	err := handler.Run(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRecordingHandler_DispatchesPurchase(t *testing.T) {
	recorder := &fakeRecorder{}
	merchants := &fakeMerchants{}

	input := recordingdto.RecordPurchaseInput{
		IdempotencyKey: "aa",
		CustomerWallet: "wallet-1",
		MerchantID:     "m-1",
		FiatAmount:     100_000,
	}
	runHandler(t, recorder, merchants, nil, envelopeMessage(t, TypeRecordPurchase, input))

	require.Len(t, recorder.purchases, 1)
	assert.Equal(t, uint64(100_000), recorder.purchases[0].FiatAmount)
	assert.Equal(t, "m-1", recorder.purchases[0].MerchantID)
}

func TestRecordingHandler_DispatchesAllTypes(t *testing.T) {
	recorder := &fakeRecorder{}
	merchants := &fakeMerchants{}

	runHandler(t, recorder, merchants, nil,
		envelopeMessage(t, TypeRecordTransfer, recordingdto.RecordTransferInput{Units: 5}),
		envelopeMessage(t, TypeRecordRedemption, recordingdto.RecordRedemptionInput{TokenUnits: 7}),
		envelopeMessage(t, TypeRegisterMerchant, merchantdto.RegisterMerchantInput{WalletAddress: "w-1", Name: "Shop"}),
		envelopeMessage(t, TypeUpdateMerchant, merchantdto.UpdateMerchantInput{WalletAddress: "w-1"}),
	)

	assert.Len(t, recorder.transfers, 1)
	assert.Len(t, recorder.redemptions, 1)
	assert.Len(t, merchants.registered, 1)
	assert.Len(t, merchants.updated, 1)
}

func TestRecordingHandler_UnknownTypeIgnored(t *testing.T) {
	recorder := &fakeRecorder{}
	merchants := &fakeMerchants{}

	runHandler(t, recorder, merchants, nil,
		envelopeMessage(t, "record_refund", recordingdto.RecordPurchaseInput{}),
		domain.Message{Value: []byte("not json")},
	)

	assert.Empty(t, recorder.purchases)
	assert.Empty(t, recorder.transfers)
}

func TestRecordingHandler_FailureGoesToAudit(t *testing.T) {
	recorder := &fakeRecorder{err: domain.ErrNotConfirmed}
	merchants := &fakeMerchants{}
	audit := &memoryAudit{}

	input := recordingdto.RecordPurchaseInput{IdempotencyKey: "deadbeef"}
	runHandler(t, recorder, merchants, audit, envelopeMessage(t, TypeRecordPurchase, input))

	require.Len(t, audit.events, 1)
	assert.Equal(t, TypeRecordPurchase, audit.events[0].RequestType)
	assert.Equal(t, "deadbeef", audit.events[0].IdempotencyKey)
	assert.True(t, audit.events[0].Retryable)
}
