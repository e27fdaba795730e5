package usecase

import (
	"math/bits"

	"github.com/carsa-labs/carsa-rewards-service/internal/domain"
)

// Economic constants of the loyalty program. The credit token has 9
// fractional digits and is pegged at 1 token = 1000 minor currency units,
// so 1 currency unit of reward equals 10^6 smallest credit units.
const (
	UnitsPerToken      uint64 = 1_000_000_000
	FiatPerToken       uint64 = 1_000
	RewardUnitsPerFiat uint64 = 1_000_000
	BpsDenominator     uint64 = 10_000

	MaxCashbackRateBps uint16 = 10_000
	MaxPurchaseAmount  uint64 = 1_000_000_000
	MaxTransferUnits   uint64 = 10_000 * 1_000_000_000
	MaxMemoLen                = 64
)

// RewardBreakdown is the full economic outcome of a purchase.
type RewardBreakdown struct {
	RedeemedValue uint64 // redeemed credits converted to currency value
	TotalValue    uint64 // fiat + redeemed value, minor currency units
	RewardValue   uint64 // currency-denominated reward
	RewardUnits   uint64 // reward in smallest credit units
}

// CalculateReward computes the reward for a purchase. Pure and
// deterministic. The floor is applied in two stages, currency-space first
// and unit conversion second; the stored reward must match what the
// ledger paid, so the order of operations is part of the wire contract
// and must not be rearranged.
func CalculateReward(fiatAmount, redeemedUnits uint64, cashbackRateBps uint16) (*RewardBreakdown, error) {
	if cashbackRateBps > MaxCashbackRateBps {
		return nil, domain.ErrInvalidCashbackRate
	}
	if fiatAmount == 0 && redeemedUnits == 0 {
		return nil, domain.ErrInvalidPurchaseAmount
	}
	if fiatAmount > MaxPurchaseAmount {
		return nil, domain.ErrPurchaseAmountTooLarge
	}

	// Stage 1: whole tokens only count toward currency value.
	redeemedValue, err := checkedMul(redeemedUnits/UnitsPerToken, FiatPerToken)
	if err != nil {
		return nil, err
	}

	totalValue, err := checkedAdd(fiatAmount, redeemedValue)
	if err != nil {
		return nil, err
	}

	// Stage 2: reward floored in currency space, then converted to units.
	scaled, err := checkedMul(totalValue, uint64(cashbackRateBps))
	if err != nil {
		return nil, err
	}
	rewardValue := scaled / BpsDenominator

	rewardUnits, err := checkedMul(rewardValue, RewardUnitsPerFiat)
	if err != nil {
		return nil, err
	}

	return &RewardBreakdown{
		RedeemedValue: redeemedValue,
		TotalValue:    totalValue,
		RewardValue:   rewardValue,
		RewardUnits:   rewardUnits,
	}, nil
}

func checkedMul(a, b uint64) (uint64, error) {
	hi, lo := bits.Mul64(a, b)
	if hi != 0 {
		return 0, domain.ErrArithmeticOverflow
	}
	return lo, nil
}

func checkedAdd(a, b uint64) (uint64, error) {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return 0, domain.ErrArithmeticOverflow
	}
	return sum, nil
}
