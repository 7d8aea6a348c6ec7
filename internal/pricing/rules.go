// Package pricing holds the fee-tier table and the pack-type rules applied
// at checkout.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/chowpack/chowpack-engine/internal/cart"
)

// Categories whose presence in a pack makes a size selection mandatory.
var platedCategories = []string{"protein", "carbohydrate"}

// FeePercent returns the service-fee fraction for a subtotal. Tiers are
// inclusive ascending bounds, first match wins.
func FeePercent(subtotal int) decimal.Decimal {
	switch {
	case subtotal <= 999:
		return decimal.NewFromFloat(0.25)
	case subtotal <= 1999:
		return decimal.NewFromFloat(0.10)
	case subtotal <= 2999:
		return decimal.NewFromFloat(0.07)
	case subtotal <= 4999:
		return decimal.NewFromFloat(0.06)
	default:
		return decimal.NewFromFloat(0.05)
	}
}

// ServiceFee is round(subtotal x tier percent), half away from zero.
func ServiceFee(subtotal int) int {
	fee := decimal.NewFromInt(int64(subtotal)).Mul(FeePercent(subtotal))
	return int(fee.Round(0).IntPart())
}

// PriceTable is a vendor's pack surcharge by size.
type PriceTable struct {
	Small int `json:"smallPackPrice"`
	Big   int `json:"bigPackPrice"`
}

// RequiresPackType reports whether checkout must block on a missing size
// selection for the pack. All four conditions must hold: the pack is bound
// to a vendor, a table entry exists for that vendor (failed lookups degrade
// to a zero-priced entry, so the gate survives an outage), the pack holds at
// least one plated-food item, and no size has been picked yet.
func RequiresPackType(pack cart.Pack, hasPriceTable bool) bool {
	if pack.VendorID == "" || !hasPriceTable {
		return false
	}
	if pack.PackType != cart.PackTypeNone {
		return false
	}
	return pack.HasCategory(platedCategories...)
}
