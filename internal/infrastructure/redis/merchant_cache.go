package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/carsa-labs/carsa-rewards-service/internal/config"
	"github.com/carsa-labs/carsa-rewards-service/internal/domain"
)

const defaultMerchantTTL = 5 * time.Minute

// MerchantCache is a cache-aside layer over merchant profiles keyed by
// wallet address. Misses and unreadable entries both report (nil, nil)
// so the caller always falls through to storage.
type MerchantCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewMerchantCache(cfg config.RedisCache) *MerchantCache {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = defaultMerchantTTL
	}
	return &MerchantCache{
		client: redis.NewClient(&redis.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		}),
		ttl: ttl,
	}
}

func (c *MerchantCache) GetMerchant(ctx context.Context, wallet string) (*domain.Merchant, error) {
	payload, err := c.client.Get(ctx, merchantKey(wallet)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("cache get merchant: %w", err)
	}

	var merchant domain.Merchant
	if err := json.Unmarshal(payload, &merchant); err != nil {
		// Stale or corrupted entry, treat as a miss.
		return nil, nil
	}
	return &merchant, nil
}

func (c *MerchantCache) SetMerchant(ctx context.Context, merchant *domain.Merchant) error {
	payload, err := json.Marshal(merchant)
	if err != nil {
		return fmt.Errorf("cache marshal merchant: %w", err)
	}
	if err := c.client.Set(ctx, merchantKey(merchant.WalletAddress), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set merchant: %w", err)
	}
	return nil
}

func (c *MerchantCache) InvalidateMerchant(ctx context.Context, wallet string) error {
	if err := c.client.Del(ctx, merchantKey(wallet)).Err(); err != nil {
		return fmt.Errorf("cache invalidate merchant: %w", err)
	}
	return nil
}

func (c *MerchantCache) Close() error {
	return c.client.Close()
}

func merchantKey(wallet string) string {
	return "merchant:" + wallet
}
