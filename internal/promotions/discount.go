// Package promotions applies vendor promotion percentages to cart packs.
package promotions

import (
	"github.com/shopspring/decimal"

	"github.com/chowpack/chowpack-engine/internal/cart"
)

const statusActive = "active"

// Promotion is one campaign row from the upstream API. Discount is a
// percentage, e.g. 10 for 10% off.
type Promotion struct {
	ID         string  `json:"_id"`
	VendorID   string  `json:"vendorId"`
	VendorName string  `json:"vendorName"`
	Discount   float64 `json:"discount"`
	Status     string  `json:"status"`
}

// VendorDiscount is the accumulated saving for one vendor across its packs.
type VendorDiscount struct {
	VendorName string
	Percent    float64
	Amount     decimal.Decimal
}

// Calculate walks the packs and applies the first active promotion matching
// each pack's vendor, by name or by ID. Savings accumulate per vendor key
// (name, falling back to ID) so multiple packs from one vendor show a single
// line. No stacking: later matches for the same pack are ignored.
func Calculate(packs []cart.Pack, promos []Promotion) map[string]VendorDiscount {
	discounts := map[string]VendorDiscount{}
	for _, pack := range packs {
		if len(pack.Items) == 0 {
			continue
		}
		promo, ok := match(pack, promos)
		if !ok {
			continue
		}
		amount := decimal.NewFromInt(int64(pack.Subtotal())).
			Mul(decimal.NewFromFloat(promo.Discount)).
			Div(decimal.NewFromInt(100))

		key := pack.VendorName
		if key == "" {
			key = pack.VendorID
		}
		entry, exists := discounts[key]
		if !exists {
			entry = VendorDiscount{VendorName: key, Percent: promo.Discount, Amount: decimal.Zero}
		}
		entry.Amount = entry.Amount.Add(amount)
		discounts[key] = entry
	}
	return discounts
}

func match(pack cart.Pack, promos []Promotion) (Promotion, bool) {
	for _, promo := range promos {
		if promo.Status != statusActive {
			continue
		}
		if (promo.VendorName != "" && promo.VendorName == pack.VendorName) ||
			(promo.VendorID != "" && promo.VendorID == pack.VendorID) {
			return promo, true
		}
	}
	return Promotion{}, false
}

// TotalDiscount sums the per-vendor amounts. Summation happens before any
// rounding; the grand total rounds once at the end.
func TotalDiscount(discounts map[string]VendorDiscount) decimal.Decimal {
	total := decimal.Zero
	for _, entry := range discounts {
		total = total.Add(entry.Amount)
	}
	return total
}
