package usecase

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carsa-labs/carsa-rewards-service/internal/domain"
)

func TestCalculateReward_FiatOnly(t *testing.T) {
	breakdown, err := CalculateReward(100_000, 0, 300)
	require.NoError(t, err)

	assert.Equal(t, uint64(0), breakdown.RedeemedValue)
	assert.Equal(t, uint64(100_000), breakdown.TotalValue)
	assert.Equal(t, uint64(3_000), breakdown.RewardValue)
	assert.Equal(t, uint64(3_000_000_000), breakdown.RewardUnits)
}

func TestCalculateReward_WithRedeemedTokens(t *testing.T) {
	breakdown, err := CalculateReward(50_000, 5_000_000_000, 400)
	require.NoError(t, err)

	assert.Equal(t, uint64(5_000), breakdown.RedeemedValue)
	assert.Equal(t, uint64(55_000), breakdown.TotalValue)
	assert.Equal(t, uint64(2_200), breakdown.RewardValue)
	assert.Equal(t, uint64(2_200_000_000), breakdown.RewardUnits)
}

func TestCalculateReward_FractionalTokensDoNotCount(t *testing.T) {
	// 1.5 tokens redeemed: only the whole token converts to value.
	breakdown, err := CalculateReward(10_000, 1_500_000_000, 100)
	require.NoError(t, err)

	assert.Equal(t, uint64(1_000), breakdown.RedeemedValue)
	assert.Equal(t, uint64(11_000), breakdown.TotalValue)
}

func TestCalculateReward_FlooredInCurrencySpace(t *testing.T) {
	// 33 * 100 / 10000 floors to 0 before the unit conversion, so no
	// sub-currency reward leaks through as units.
	breakdown, err := CalculateReward(33, 0, 100)
	require.NoError(t, err)

	assert.Equal(t, uint64(0), breakdown.RewardValue)
	assert.Equal(t, uint64(0), breakdown.RewardUnits)
}

func TestCalculateReward_ZeroRate(t *testing.T) {
	breakdown, err := CalculateReward(100_000, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), breakdown.RewardUnits)
}

func TestCalculateReward_RedeemedOnlyPurchase(t *testing.T) {
	breakdown, err := CalculateReward(0, 2_000_000_000, 500)
	require.NoError(t, err)

	assert.Equal(t, uint64(2_000), breakdown.TotalValue)
	assert.Equal(t, uint64(100), breakdown.RewardValue)
	assert.Equal(t, uint64(100_000_000), breakdown.RewardUnits)
}

func TestCalculateReward_MaxRate(t *testing.T) {
	breakdown, err := CalculateReward(1_000, 0, 10_000)
	require.NoError(t, err)
	assert.Equal(t, uint64(1_000), breakdown.RewardValue)
}

func TestCalculateReward_Validation(t *testing.T) {
	tests := []struct {
		name          string
		fiatAmount    uint64
		redeemedUnits uint64
		rateBps       uint16
		wantErr       error
	}{
		{"rate above denominator", 1_000, 0, 10_001, domain.ErrInvalidCashbackRate},
		{"no economic value", 0, 0, 300, domain.ErrInvalidPurchaseAmount},
		{"fiat above cap", MaxPurchaseAmount + 1, 0, 300, domain.ErrPurchaseAmountTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CalculateReward(tt.fiatAmount, tt.redeemedUnits, tt.rateBps)
			require.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestCalculateReward_RateCheckedBeforeAmounts(t *testing.T) {
	_, err := CalculateReward(0, 0, 10_001)
	require.ErrorIs(t, err, domain.ErrInvalidCashbackRate)
}

func TestCalculateReward_Overflow(t *testing.T) {
	_, err := CalculateReward(MaxPurchaseAmount, math.MaxUint64, 10_000)
	require.ErrorIs(t, err, domain.ErrArithmeticOverflow)
}
