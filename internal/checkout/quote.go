package checkout

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/chowpack/chowpack-engine/internal/cart"
	"github.com/chowpack/chowpack-engine/internal/delivery"
	"github.com/chowpack/chowpack-engine/internal/pricing"
	"github.com/chowpack/chowpack-engine/internal/promotions"
)

// DiscountLine is one vendor's accumulated saving, shown on the summary.
type DiscountLine struct {
	VendorName string  `json:"vendorName"`
	Percent    float64 `json:"percent"`
	Amount     float64 `json:"amount"`
}

// Quote is the full derived money breakdown for the current cart. Every
// field is recomputed from the cart state on each call.
type Quote struct {
	TotalAmount    int            `json:"totalAmount"`
	TotalPackPrice int            `json:"totalPackPrice"`
	ServiceFee     int            `json:"serviceFee"`
	DeliveryFee    int            `json:"deliveryFee"`
	DeliveryFeeMin int            `json:"deliveryFeeMin"`
	DeliveryFeeMax int            `json:"deliveryFeeMax"`
	Discounts      []DiscountLine `json:"discounts"`
	TotalDiscount  float64        `json:"totalDiscount"`
	GrandTotal     int            `json:"grandTotal"`

	totalDiscount decimal.Decimal
}

// buildQuote derives the money breakdown. The service-fee tier runs over
// item total plus all surcharges plus already-selected surcharges; the grand
// total subtracts the unrounded discount and rounds once at the end.
func buildQuote(state *cart.State, feeTable map[string]delivery.Bounds, promos []promotions.Promotion) Quote {
	totalAmount := state.TotalAmount()
	totalPackPrice := state.TotalPackPrice()
	feeSubtotal := totalAmount + totalPackPrice + state.SelectedPackPrice()
	serviceFee := pricing.ServiceFee(feeSubtotal)

	feeRange := delivery.Range(state.VendorIDs(), feeTable)
	deliveryFee := delivery.Clamp(state.DeliveryFee, feeRange)

	vendorDiscounts := promotions.Calculate(state.Packs, promos)
	totalDiscount := promotions.TotalDiscount(vendorDiscounts)

	grandTotal := decimal.NewFromInt(int64(totalAmount + totalPackPrice + serviceFee + deliveryFee)).
		Sub(totalDiscount).
		Round(0).
		IntPart()

	return Quote{
		TotalAmount:    totalAmount,
		TotalPackPrice: totalPackPrice,
		ServiceFee:     serviceFee,
		DeliveryFee:    deliveryFee,
		DeliveryFeeMin: feeRange.Min,
		DeliveryFeeMax: feeRange.Max,
		Discounts:      discountLines(vendorDiscounts),
		TotalDiscount:  totalDiscount.InexactFloat64(),
		GrandTotal:     int(grandTotal),
		totalDiscount:  totalDiscount,
	}
}

func discountLines(vendorDiscounts map[string]promotions.VendorDiscount) []DiscountLine {
	lines := make([]DiscountLine, 0, len(vendorDiscounts))
	for _, entry := range vendorDiscounts {
		lines = append(lines, DiscountLine{
			VendorName: entry.VendorName,
			Percent:    entry.Percent,
			Amount:     entry.Amount.InexactFloat64(),
		})
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].VendorName < lines[j].VendorName })
	return lines
}

// orderSubtotal is the discounted item-and-surcharge total sent upstream:
// round(totalAmount + totalPackPrice - totalDiscount).
func (q Quote) orderSubtotal() int {
	return int(decimal.NewFromInt(int64(q.TotalAmount + q.TotalPackPrice)).
		Sub(q.totalDiscount).
		Round(0).
		IntPart())
}
