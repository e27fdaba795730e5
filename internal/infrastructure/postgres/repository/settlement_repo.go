package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/carsa-labs/carsa-rewards-service/internal/domain"
	"github.com/carsa-labs/carsa-rewards-service/internal/infrastructure/postgres/mappers"
	"github.com/carsa-labs/carsa-rewards-service/internal/infrastructure/postgres/models"
)

// DefaultSettlementRepository persists confirmed records. Every Settle*
// method runs one database transaction covering the record row, the
// aggregate increments and the idempotency completion, so a crash can
// never leave a recorded row without its aggregates or vice versa.
type DefaultSettlementRepository struct {
	db *gorm.DB
}

func NewDefaultSettlementRepository(db *gorm.DB) *DefaultSettlementRepository {
	return &DefaultSettlementRepository{db: db}
}

func (r *DefaultSettlementRepository) SettlePurchase(ctx context.Context, purchase *domain.PurchaseTransaction, idempotencyKey string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(mappers.ToGORMPurchase(purchase)).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return domain.ErrDuplicateRecord
			}
			return fmt.Errorf("insert purchase: %w", err)
		}

		result := tx.Model(&models.MerchantModel{}).
			Where("id = ?", purchase.MerchantID).
			Updates(map[string]interface{}{
				"total_transactions":        gorm.Expr("total_transactions + 1"),
				"total_volume":              gorm.Expr("total_volume + ?", purchase.TotalValue),
				"total_rewards_distributed": gorm.Expr("total_rewards_distributed + ?", purchase.RewardUnits),
			})
		if result.Error != nil {
			return fmt.Errorf("update merchant aggregates: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return domain.ErrMerchantNotFound
		}

		if err := upsertRelation(tx, purchase.CustomerWallet, purchase.MerchantID, relationDelta{
			visits: 1,
			spent:  purchase.TotalValue,
			earned: int64(purchase.RewardUnits),
		}); err != nil {
			return err
		}

		return completeKey(tx, idempotencyKey, purchase.Signature, purchase.ID)
	})
	return settleError(err)
}

func (r *DefaultSettlementRepository) SettleTransfer(ctx context.Context, transfer *domain.TokenTransfer, idempotencyKey string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(mappers.ToGORMTransfer(transfer)).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return domain.ErrDuplicateRecord
			}
			return fmt.Errorf("insert transfer: %w", err)
		}
		// Peer-to-peer transfers touch no merchant aggregates.
		return completeKey(tx, idempotencyKey, transfer.Signature, transfer.ID)
	})
	return settleError(err)
}

func (r *DefaultSettlementRepository) SettleRedemption(ctx context.Context, redemption *domain.TokenRedemption, idempotencyKey string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(mappers.ToGORMRedemption(redemption)).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return domain.ErrDuplicateRecord
			}
			return fmt.Errorf("insert redemption: %w", err)
		}

		// Redemptions count as merchant volume but are not new visits and
		// distribute no rewards.
		result := tx.Model(&models.MerchantModel{}).
			Where("id = ?", redemption.MerchantID).
			Update("total_volume", gorm.Expr("total_volume + ?", redemption.FiatValue))
		if result.Error != nil {
			return fmt.Errorf("update merchant aggregates: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return domain.ErrMerchantNotFound
		}

		if err := upsertRelation(tx, redemption.CustomerWallet, redemption.MerchantID, relationDelta{
			earned: -int64(redemption.TokenUnits),
		}); err != nil {
			return err
		}

		return completeKey(tx, idempotencyKey, redemption.Signature, redemption.ID)
	})
	return settleError(err)
}

func (r *DefaultSettlementRepository) GetPurchaseByID(ctx context.Context, id string) (*domain.PurchaseTransaction, error) {
	var model models.PurchaseModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrRecordNotFound
		}
		return nil, fmt.Errorf("%w: get purchase: %v", domain.ErrPersistence, err)
	}
	return mappers.ToDomainPurchase(&model), nil
}

func (r *DefaultSettlementRepository) GetTransferByID(ctx context.Context, id string) (*domain.TokenTransfer, error) {
	var model models.TransferModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrRecordNotFound
		}
		return nil, fmt.Errorf("%w: get transfer: %v", domain.ErrPersistence, err)
	}
	return mappers.ToDomainTransfer(&model), nil
}

func (r *DefaultSettlementRepository) GetRedemptionByID(ctx context.Context, id string) (*domain.TokenRedemption, error) {
	var model models.RedemptionModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrRecordNotFound
		}
		return nil, fmt.Errorf("%w: get redemption: %v", domain.ErrPersistence, err)
	}
	return mappers.ToDomainRedemption(&model), nil
}

type relationDelta struct {
	visits uint64
	spent  uint64
	earned int64
}

// upsertRelation creates or increments the (customer, merchant) aggregate
// row in place. Increments are expressed in SQL so concurrent settlements
// never lose updates to read-modify-write races.
func upsertRelation(tx *gorm.DB, customerWallet, merchantID string, delta relationDelta) error {
	now := time.Now().UTC()
	model := &models.CustomerMerchantModel{
		CustomerWallet: customerWallet,
		MerchantID:     merchantID,
		VisitCount:     delta.visits,
		TotalSpent:     delta.spent,
		TotalEarned:    delta.earned,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	err := tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "customer_wallet"}, {Name: "merchant_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"visit_count":  gorm.Expr("customer_merchants.visit_count + ?", delta.visits),
			"total_spent":  gorm.Expr("customer_merchants.total_spent + ?", delta.spent),
			"total_earned": gorm.Expr("customer_merchants.total_earned + ?", delta.earned),
			"updated_at":   now,
		}),
	}).Create(model).Error
	if err != nil {
		return fmt.Errorf("upsert customer merchant stats: %w", err)
	}
	return nil
}

// completeKey finishes the reservation inside the settlement transaction.
// The status guard means a key that was concurrently failed or completed
// aborts the whole settlement instead of double-recording.
func completeKey(tx *gorm.DB, key, signature, recordID string) error {
	result := tx.Model(&models.IdempotencyModel{}).
		Where("key = ? AND status = ?", key, string(domain.IdempotencyPending)).
		Updates(map[string]interface{}{
			"status":       string(domain.IdempotencyCompleted),
			"signature":    signature,
			"record_id":    recordID,
			"completed_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return fmt.Errorf("complete idempotency key: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrIdempotencyConflict
	}
	return nil
}

// settleError keeps domain sentinels intact and folds everything else
// into the retryable persistence umbrella.
func settleError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrDuplicateRecord) ||
		errors.Is(err, domain.ErrMerchantNotFound) ||
		errors.Is(err, domain.ErrIdempotencyConflict) {
		return err
	}
	return fmt.Errorf("%w: %v", domain.ErrPersistence, err)
}
