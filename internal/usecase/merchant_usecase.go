package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/carsa-labs/carsa-rewards-service/internal/domain"
	merchantdto "github.com/carsa-labs/carsa-rewards-service/internal/usecase/dto/merchant"
	"github.com/google/uuid"
)

const (
	maxMerchantNameLen     = 32
	maxMerchantCategoryLen = 16
)

type MerchantUsecase interface {
	RegisterMerchant(ctx context.Context, input *merchantdto.RegisterMerchantInput) (*merchantdto.MerchantOutput, error)
	UpdateMerchant(ctx context.Context, input *merchantdto.UpdateMerchantInput) (*merchantdto.MerchantOutput, error)
	GetMerchantByWallet(ctx context.Context, wallet string) (*merchantdto.MerchantOutput, error)
	GetMerchantByID(ctx context.Context, id string) (*merchantdto.MerchantOutput, error)
}

type DefaultMerchantUsecase struct {
	MerchantRepo domain.MerchantRepository
	Cache        domain.MerchantCache
	Deriver      domain.AddressDeriver
}

func NewDefaultMerchantUsecase(
	merchantRepo domain.MerchantRepository,
	cache domain.MerchantCache,
	deriver domain.AddressDeriver) *DefaultMerchantUsecase {

	return &DefaultMerchantUsecase{
		MerchantRepo: merchantRepo,
		Cache:        cache,
		Deriver:      deriver,
	}
}

func (uc *DefaultMerchantUsecase) RegisterMerchant(ctx context.Context, input *merchantdto.RegisterMerchantInput) (*merchantdto.MerchantOutput, error) {
	if len(input.Name) == 0 || len(input.Name) > maxMerchantNameLen {
		return nil, domain.ErrInvalidMerchantName
	}
	if len(input.Category) == 0 || len(input.Category) > maxMerchantCategoryLen {
		return nil, domain.ErrInvalidMerchantCategory
	}
	if input.CashbackRateBps > MaxCashbackRateBps {
		return nil, domain.ErrInvalidCashbackRate
	}
	if err := validateWallet(input.WalletAddress); err != nil {
		return nil, err
	}

	address, err := uc.Deriver.MerchantAddress(input.WalletAddress)
	if err != nil {
		return nil, err
	}

	merchant := &domain.Merchant{
		ID:              uuid.New().String(),
		WalletAddress:   input.WalletAddress,
		Address:         address,
		Name:            input.Name,
		Category:        input.Category,
		CashbackRateBps: input.CashbackRateBps,
		IsActive:        true,
		CreatedAt:       time.Now().UTC(),
		UpdatedAt:       time.Now().UTC(),
	}

	if err := uc.MerchantRepo.CreateMerchant(ctx, merchant); err != nil {
		return nil, err
	}

	return merchantOutput(merchant), nil
}

// UpdateMerchant applies patch semantics: only the fields the merchant
// actually set are touched. Keyed by the owner wallet, matching the
// ledger's owner-only constraint.
func (uc *DefaultMerchantUsecase) UpdateMerchant(ctx context.Context, input *merchantdto.UpdateMerchantInput) (*merchantdto.MerchantOutput, error) {
	update := domain.MerchantUpdate{
		CashbackRateBps: domain.Unchanged[uint16](),
		IsActive:        domain.Unchanged[bool](),
	}
	if input.CashbackRateBps != nil {
		if *input.CashbackRateBps > MaxCashbackRateBps {
			return nil, domain.ErrInvalidCashbackRate
		}
		update.CashbackRateBps = domain.SetTo(*input.CashbackRateBps)
	}
	if input.IsActive != nil {
		update.IsActive = domain.SetTo(*input.IsActive)
	}

	merchant, err := uc.MerchantRepo.UpdateMerchant(ctx, input.WalletAddress, update)
	if err != nil {
		return nil, err
	}

	if uc.Cache != nil {
		if err := uc.Cache.InvalidateMerchant(ctx, input.WalletAddress); err != nil {
			slog.Warn("failed to invalidate merchant cache", "wallet", input.WalletAddress, "error", err.Error())
		}
	}

	return merchantOutput(merchant), nil
}

func (uc *DefaultMerchantUsecase) GetMerchantByWallet(ctx context.Context, wallet string) (*merchantdto.MerchantOutput, error) {
	if uc.Cache != nil {
		cached, err := uc.Cache.GetMerchant(ctx, wallet)
		if err != nil {
			slog.Warn("merchant cache read failed", "wallet", wallet, "error", err.Error())
		} else if cached != nil {
			return merchantOutput(cached), nil
		}
	}

	merchant, err := uc.MerchantRepo.GetMerchantByWallet(ctx, wallet)
	if err != nil {
		return nil, err
	}

	if uc.Cache != nil {
		if err := uc.Cache.SetMerchant(ctx, merchant); err != nil {
			slog.Warn("merchant cache write failed", "wallet", wallet, "error", err.Error())
		}
	}

	return merchantOutput(merchant), nil
}

func (uc *DefaultMerchantUsecase) GetMerchantByID(ctx context.Context, id string) (*merchantdto.MerchantOutput, error) {
	merchant, err := uc.MerchantRepo.GetMerchantByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return merchantOutput(merchant), nil
}

func merchantOutput(m *domain.Merchant) *merchantdto.MerchantOutput {
	return &merchantdto.MerchantOutput{
		ID:                      m.ID,
		WalletAddress:           m.WalletAddress,
		Address:                 m.Address,
		Name:                    m.Name,
		Category:                m.Category,
		CashbackRateBps:         m.CashbackRateBps,
		IsActive:                m.IsActive,
		TotalTransactions:       m.TotalTransactions,
		TotalVolume:             m.TotalVolume,
		TotalRewardsDistributed: m.TotalRewardsDistributed,
		CreatedAt:               m.CreatedAt,
	}
}
