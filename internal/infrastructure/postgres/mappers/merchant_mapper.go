package mappers

import (
	"github.com/carsa-labs/carsa-rewards-service/internal/domain"
	"github.com/carsa-labs/carsa-rewards-service/internal/infrastructure/postgres/models"
)

func ToGORMMerchant(merchant *domain.Merchant) *models.MerchantModel {
	return &models.MerchantModel{
		ID:                      merchant.ID,
		WalletAddress:           merchant.WalletAddress,
		Address:                 merchant.Address,
		Name:                    merchant.Name,
		Category:                merchant.Category,
		CashbackRateBps:         merchant.CashbackRateBps,
		IsActive:                merchant.IsActive,
		TotalTransactions:       merchant.TotalTransactions,
		TotalVolume:             merchant.TotalVolume,
		TotalRewardsDistributed: merchant.TotalRewardsDistributed,
		CreatedAt:               merchant.CreatedAt,
		UpdatedAt:               merchant.UpdatedAt,
	}
}

func ToDomainMerchant(model *models.MerchantModel) *domain.Merchant {
	return &domain.Merchant{
		ID:                      model.ID,
		WalletAddress:           model.WalletAddress,
		Address:                 model.Address,
		Name:                    model.Name,
		Category:                model.Category,
		CashbackRateBps:         model.CashbackRateBps,
		IsActive:                model.IsActive,
		TotalTransactions:       model.TotalTransactions,
		TotalVolume:             model.TotalVolume,
		TotalRewardsDistributed: model.TotalRewardsDistributed,
		CreatedAt:               model.CreatedAt,
		UpdatedAt:               model.UpdatedAt,
	}
}

func ToDomainCustomerMerchantStats(model *models.CustomerMerchantModel) *domain.CustomerMerchantStats {
	return &domain.CustomerMerchantStats{
		CustomerWallet: model.CustomerWallet,
		MerchantID:     model.MerchantID,
		VisitCount:     model.VisitCount,
		TotalSpent:     model.TotalSpent,
		TotalEarned:    model.TotalEarned,
		CreatedAt:      model.CreatedAt,
		UpdatedAt:      model.UpdatedAt,
	}
}
