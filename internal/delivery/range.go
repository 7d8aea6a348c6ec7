// Package delivery aggregates vendor delivery-fee bounds into a single range
// the user's adjustable fee is clamped against.
package delivery

// Bounds are one vendor's published delivery-fee limits.
type Bounds struct {
	VendorID string `json:"vendorId"`
	Min      int    `json:"minimumDeliveryFee"`
	Max      int    `json:"maximumDeliveryFee"`
}

// FeeRange is the cart-wide sum of bounds over its distinct vendors.
type FeeRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Range sums the bounds of every referenced vendor. Vendors without a record
// contribute zero to both ends.
func Range(vendorIDs []string, table map[string]Bounds) FeeRange {
	var r FeeRange
	for _, vendorID := range vendorIDs {
		bounds, ok := table[vendorID]
		if !ok {
			continue
		}
		r.Min += bounds.Min
		r.Max += bounds.Max
	}
	return r
}

// Clamp snaps the current fee into the range: below min (including the zero
// starting value) snaps to min, above max snaps to max, in-range values are
// preserved.
func Clamp(current int, r FeeRange) int {
	if current < r.Min {
		return r.Min
	}
	if current > r.Max {
		return r.Max
	}
	return current
}
