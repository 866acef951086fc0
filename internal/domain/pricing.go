package domain

import "github.com/shopspring/decimal"

var (
	BasePrice        = decimal.RequireFromString("0.5")
	DemandMultiplier = decimal.RequireFromString("0.1")
	SupplyPenalty    = decimal.RequireFromString("0.05")
)

// Price computes max(0, BasePrice + demand*DemandMultiplier - supply*SupplyPenalty)
// rounded to cents.
func Price(demand, supply int) decimal.Decimal {
	raw := BasePrice.
		Add(decimal.NewFromInt(int64(demand)).Mul(DemandMultiplier)).
		Sub(decimal.NewFromInt(int64(supply)).Mul(SupplyPenalty))

	if raw.IsNegative() {
		return decimal.Zero
	}

	return raw.Round(2)
}

// FormatPrice renders a price the way it is displayed, e.g. "0.45".
func FormatPrice(p decimal.Decimal) string {
	return p.StringFixed(2)
}
