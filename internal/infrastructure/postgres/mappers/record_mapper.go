package mappers

import (
	"github.com/carsa-labs/carsa-rewards-service/internal/domain"
	"github.com/carsa-labs/carsa-rewards-service/internal/infrastructure/postgres/models"
)

func ToGORMPurchase(purchase *domain.PurchaseTransaction) *models.PurchaseModel {
	return &models.PurchaseModel{
		ID:              purchase.ID,
		Address:         purchase.Address,
		CustomerWallet:  purchase.CustomerWallet,
		MerchantID:      purchase.MerchantID,
		FiatAmount:      purchase.FiatAmount,
		RedeemedUnits:   purchase.RedeemedUnits,
		TotalValue:      purchase.TotalValue,
		RewardUnits:     purchase.RewardUnits,
		CashbackRateBps: purchase.CashbackRateBps,
		UsedTokens:      purchase.UsedTokens,
		Signature:       purchase.Signature,
		Nonce:           purchase.Nonce,
		Slot:            purchase.Slot,
		BlockTime:       purchase.BlockTime,
		CreatedAt:       purchase.CreatedAt,
	}
}

func ToDomainPurchase(model *models.PurchaseModel) *domain.PurchaseTransaction {
	return &domain.PurchaseTransaction{
		ID:              model.ID,
		Address:         model.Address,
		CustomerWallet:  model.CustomerWallet,
		MerchantID:      model.MerchantID,
		FiatAmount:      model.FiatAmount,
		RedeemedUnits:   model.RedeemedUnits,
		TotalValue:      model.TotalValue,
		RewardUnits:     model.RewardUnits,
		CashbackRateBps: model.CashbackRateBps,
		UsedTokens:      model.UsedTokens,
		Signature:       model.Signature,
		Nonce:           model.Nonce,
		Slot:            model.Slot,
		BlockTime:       model.BlockTime,
		CreatedAt:       model.CreatedAt,
	}
}

func ToGORMTransfer(transfer *domain.TokenTransfer) *models.TransferModel {
	return &models.TransferModel{
		ID:              transfer.ID,
		Address:         transfer.Address,
		SenderWallet:    transfer.SenderWallet,
		RecipientWallet: transfer.RecipientWallet,
		Units:           transfer.Units,
		Memo:            transfer.Memo,
		Signature:       transfer.Signature,
		Nonce:           transfer.Nonce,
		Slot:            transfer.Slot,
		BlockTime:       transfer.BlockTime,
		CreatedAt:       transfer.CreatedAt,
	}
}

func ToDomainTransfer(model *models.TransferModel) *domain.TokenTransfer {
	return &domain.TokenTransfer{
		ID:              model.ID,
		Address:         model.Address,
		SenderWallet:    model.SenderWallet,
		RecipientWallet: model.RecipientWallet,
		Units:           model.Units,
		Memo:            model.Memo,
		Signature:       model.Signature,
		Nonce:           model.Nonce,
		Slot:            model.Slot,
		BlockTime:       model.BlockTime,
		CreatedAt:       model.CreatedAt,
	}
}

func ToGORMRedemption(redemption *domain.TokenRedemption) *models.RedemptionModel {
	return &models.RedemptionModel{
		ID:              redemption.ID,
		Address:         redemption.Address,
		CustomerWallet:  redemption.CustomerWallet,
		MerchantID:      redemption.MerchantID,
		TokenUnits:      redemption.TokenUnits,
		FiatValue:       redemption.FiatValue,
		DiscountRateBps: redemption.DiscountRateBps,
		Signature:       redemption.Signature,
		Nonce:           redemption.Nonce,
		Slot:            redemption.Slot,
		BlockTime:       redemption.BlockTime,
		CreatedAt:       redemption.CreatedAt,
	}
}

func ToDomainRedemption(model *models.RedemptionModel) *domain.TokenRedemption {
	return &domain.TokenRedemption{
		ID:              model.ID,
		Address:         model.Address,
		CustomerWallet:  model.CustomerWallet,
		MerchantID:      model.MerchantID,
		TokenUnits:      model.TokenUnits,
		FiatValue:       model.FiatValue,
		DiscountRateBps: model.DiscountRateBps,
		Signature:       model.Signature,
		Nonce:           model.Nonce,
		Slot:            model.Slot,
		BlockTime:       model.BlockTime,
		CreatedAt:       model.CreatedAt,
	}
}

func ToDomainIdempotency(model *models.IdempotencyModel) *domain.IdempotencyRecord {
	return &domain.IdempotencyRecord{
		Key:         model.Key,
		Status:      domain.IdempotencyStatus(model.Status),
		Signature:   model.Signature,
		RecordID:    model.RecordID,
		CreatedAt:   model.CreatedAt,
		CompletedAt: model.CompletedAt,
	}
}
