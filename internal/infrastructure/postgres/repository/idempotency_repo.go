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

type DefaultIdempotencyRepository struct {
	db *gorm.DB
}

func NewDefaultIdempotencyRepository(db *gorm.DB) *DefaultIdempotencyRepository {
	return &DefaultIdempotencyRepository{db: db}
}

// Reserve races on the primary key: INSERT ... ON CONFLICT DO NOTHING
// admits exactly one winner per key regardless of how many processes
// try concurrently. Losers get the stored record back unchanged.
func (r *DefaultIdempotencyRepository) Reserve(ctx context.Context, key string) (*domain.IdempotencyRecord, bool, error) {
	model := &models.IdempotencyModel{
		Key:       key,
		Status:    string(domain.IdempotencyPending),
		CreatedAt: time.Now().UTC(),
	}

	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(model)
	if result.Error != nil {
		return nil, false, fmt.Errorf("%w: reserve idempotency key: %v", domain.ErrPersistence, result.Error)
	}
	if result.RowsAffected == 1 {
		return mappers.ToDomainIdempotency(model), false, nil
	}

	existing, err := r.Check(ctx, key)
	if err != nil {
		return nil, false, err
	}
	return existing, true, nil
}

func (r *DefaultIdempotencyRepository) Check(ctx context.Context, key string) (*domain.IdempotencyRecord, error) {
	var model models.IdempotencyModel
	if err := r.db.WithContext(ctx).First(&model, "key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrIdempotencyKeyNotFound
		}
		return nil, fmt.Errorf("%w: check idempotency key: %v", domain.ErrPersistence, err)
	}
	return mappers.ToDomainIdempotency(&model), nil
}

func (r *DefaultIdempotencyRepository) MarkFailed(ctx context.Context, key string) error {
	return r.transition(ctx, key, domain.IdempotencyPending, domain.IdempotencyFailed)
}

func (r *DefaultIdempotencyRepository) Retake(ctx context.Context, key string) error {
	return r.transition(ctx, key, domain.IdempotencyFailed, domain.IdempotencyPending)
}

// transition applies a guarded status change. The WHERE clause on the
// current status makes concurrent transitions lose cleanly instead of
// overwriting each other.
func (r *DefaultIdempotencyRepository) transition(ctx context.Context, key string, from, to domain.IdempotencyStatus) error {
	result := r.db.WithContext(ctx).
		Model(&models.IdempotencyModel{}).
		Where("key = ? AND status = ?", key, string(from)).
		Update("status", string(to))
	if result.Error != nil {
		return fmt.Errorf("%w: transition idempotency key: %v", domain.ErrPersistence, result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrIdempotencyConflict
	}
	return nil
}
