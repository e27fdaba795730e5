package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/carsa-labs/carsa-rewards-service/internal/domain"
	"github.com/carsa-labs/carsa-rewards-service/internal/infrastructure/postgres/mappers"
	"github.com/carsa-labs/carsa-rewards-service/internal/infrastructure/postgres/models"
)

type DefaultMerchantRepository struct {
	db *gorm.DB
}

func NewDefaultMerchantRepository(db *gorm.DB) *DefaultMerchantRepository {
	return &DefaultMerchantRepository{db: db}
}

func (r *DefaultMerchantRepository) CreateMerchant(ctx context.Context, merchant *domain.Merchant) error {
	model := mappers.ToGORMMerchant(merchant)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrMerchantExists
		}
		return fmt.Errorf("%w: create merchant: %v", domain.ErrPersistence, err)
	}
	return nil
}

func (r *DefaultMerchantRepository) GetMerchantByID(ctx context.Context, id string) (*domain.Merchant, error) {
	var model models.MerchantModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrMerchantNotFound
		}
		return nil, fmt.Errorf("%w: get merchant by id: %v", domain.ErrPersistence, err)
	}
	return mappers.ToDomainMerchant(&model), nil
}

func (r *DefaultMerchantRepository) GetMerchantByWallet(ctx context.Context, wallet string) (*domain.Merchant, error) {
	var model models.MerchantModel
	if err := r.db.WithContext(ctx).First(&model, "wallet_address = ?", wallet).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrMerchantNotFound
		}
		return nil, fmt.Errorf("%w: get merchant by wallet: %v", domain.ErrPersistence, err)
	}
	return mappers.ToDomainMerchant(&model), nil
}

func (r *DefaultMerchantRepository) UpdateMerchant(ctx context.Context, wallet string, update domain.MerchantUpdate) (*domain.Merchant, error) {
	fields := map[string]interface{}{}
	if rate, ok := update.CashbackRateBps.Get(); ok {
		fields["cashback_rate_bps"] = rate
	}
	if active, ok := update.IsActive.Get(); ok {
		fields["is_active"] = active
	}

	if len(fields) > 0 {
		result := r.db.WithContext(ctx).
			Model(&models.MerchantModel{}).
			Where("wallet_address = ?", wallet).
			Updates(fields)
		if result.Error != nil {
			return nil, fmt.Errorf("%w: update merchant: %v", domain.ErrPersistence, result.Error)
		}
		if result.RowsAffected == 0 {
			return nil, domain.ErrMerchantNotFound
		}
	}

	return r.GetMerchantByWallet(ctx, wallet)
}

func (r *DefaultMerchantRepository) GetCustomerMerchantStats(ctx context.Context, customerWallet, merchantID string) (*domain.CustomerMerchantStats, error) {
	var model models.CustomerMerchantModel
	err := r.db.WithContext(ctx).
		First(&model, "customer_wallet = ? AND merchant_id = ?", customerWallet, merchantID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrRecordNotFound
		}
		return nil, fmt.Errorf("%w: get customer merchant stats: %v", domain.ErrPersistence, err)
	}
	return mappers.ToDomainCustomerMerchantStats(&model), nil
}
