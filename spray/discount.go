package spray

import (
	"m77ag-backend/utils"

	"github.com/shopspring/decimal"
)

// DiscountTier applies PercentOff (e.g. 7 for 7%) once acreage reaches MinAcres.
type DiscountTier struct {
	MinAcres   decimal.Decimal `json:"minAcres"`
	PercentOff decimal.Decimal `json:"percentOff"`
}

// ProgramCost is the priced total for an acreage.
type ProgramCost struct {
	Acres          decimal.Decimal `json:"acres"`
	PerAcrePrice   decimal.Decimal `json:"perAcrePrice"`
	BaseTotal      decimal.Decimal `json:"baseTotal"`
	Tier           *DiscountTier   `json:"tier,omitempty"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
	FinalTotal     decimal.Decimal `json:"finalTotal"`
}

// SelectDiscountTier returns the qualifying tier with the highest threshold,
// independent of slice order. Equal thresholds resolve to the larger
// discount. Nil when nothing qualifies.
func SelectDiscountTier(acres decimal.Decimal, tiers []DiscountTier) *DiscountTier {
	var best *DiscountTier
	for i := range tiers {
		t := tiers[i]
		if t.MinAcres.GreaterThan(acres) {
			continue
		}
		if best == nil ||
			t.MinAcres.GreaterThan(best.MinAcres) ||
			(t.MinAcres.Equal(best.MinAcres) && t.PercentOff.GreaterThan(best.PercentOff)) {
			best = &t
		}
	}
	return best
}

// ProgramCostForArea prices acres at perAcre and applies the best tier.
func ProgramCostForArea(acres, perAcre decimal.Decimal, tiers []DiscountTier) (ProgramCost, error) {
	if acres.IsNegative() {
		return ProgramCost{}, ErrInvalidArea
	}
	if perAcre.IsNegative() {
		return ProgramCost{}, ErrInvalidPrice
	}
	hundred := decimal.NewFromInt(100)
	for _, t := range tiers {
		if t.PercentOff.IsNegative() || t.PercentOff.GreaterThan(hundred) {
			return ProgramCost{}, ErrInvalidDiscountTier
		}
	}

	base := acres.Mul(perAcre)
	result := ProgramCost{
		Acres:          acres,
		PerAcrePrice:   perAcre,
		BaseTotal:      base,
		DiscountAmount: decimal.Zero,
		FinalTotal:     base,
	}

	if tier := SelectDiscountTier(acres, tiers); tier != nil {
		result.Tier = tier
		result.DiscountAmount = base.Mul(utils.PercentToFraction(tier.PercentOff))
		result.FinalTotal = base.Sub(result.DiscountAmount)
	}
	return result, nil
}
