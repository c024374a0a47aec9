package discounts

import "github.com/shopspring/decimal"

var (
	oneHundred = decimal.NewFromInt(100)
)

// DiscountedUnitPriceCents applies a percentage discount to a unit price in
// cents. Fractional cents are settled with banker's rounding so that repeated
// pricing does not drift in either direction.
func DiscountedUnitPriceCents(listPriceCents int, percent decimal.Decimal) int {
	if percent.IsZero() {
		return listPriceCents
	}
	price := decimal.NewFromInt(int64(listPriceCents))
	multiplier := oneHundred.Sub(percent).Div(oneHundred)
	return int(price.Mul(multiplier).RoundBank(0).IntPart())
}

// TotalCents multiplies a unit price by quantity.
func TotalCents(unitPriceCents, quantity int) int {
	return unitPriceCents * quantity
}
