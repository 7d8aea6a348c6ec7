package promotions

import (
	"testing"

	"github.com/chowpack/chowpack-engine/internal/cart"
)

func packFixture(vendorID, vendorName string, subtotal int) cart.Pack {
	return cart.Pack{
		ID:         "p-" + vendorID,
		VendorID:   vendorID,
		VendorName: vendorName,
		Items:      []cart.Item{{ID: "i-" + vendorID, Price: subtotal, Quantity: 1}},
	}
}

func TestCalculateAccumulatesPerVendor(t *testing.T) {
	t.Parallel()

	packs := []cart.Pack{
		packFixture("v1", "Chop House", 1000),
		{
			ID:         "p-v1b",
			VendorID:   "v1",
			VendorName: "Chop House",
			Items:      []cart.Item{{ID: "i2", Price: 2000, Quantity: 1}},
		},
	}
	promos := []Promotion{{VendorID: "v1", VendorName: "Chop House", Discount: 10, Status: "active"}}

	discounts := Calculate(packs, promos)
	if len(discounts) != 1 {
		t.Fatalf("expected single vendor entry, got %d", len(discounts))
	}
	entry := discounts["Chop House"]
	if got := entry.Amount.InexactFloat64(); got != 300 {
		t.Fatalf("expected 300 accumulated, got %f", got)
	}
	if got := TotalDiscount(discounts).InexactFloat64(); got != 300 {
		t.Fatalf("expected total 300, got %f", got)
	}
}

func TestCalculateMatchesByNameOrID(t *testing.T) {
	t.Parallel()

	packs := []cart.Pack{packFixture("v1", "Chop House", 1000)}

	byName := Calculate(packs, []Promotion{{VendorName: "Chop House", Discount: 20, Status: "active"}})
	if got := TotalDiscount(byName).InexactFloat64(); got != 200 {
		t.Fatalf("name match: expected 200, got %f", got)
	}

	byID := Calculate(packs, []Promotion{{VendorID: "v1", Discount: 5, Status: "active"}})
	if got := TotalDiscount(byID).InexactFloat64(); got != 50 {
		t.Fatalf("id match: expected 50, got %f", got)
	}
}

func TestCalculateFirstActiveMatchOnly(t *testing.T) {
	t.Parallel()

	packs := []cart.Pack{packFixture("v1", "Chop House", 1000)}
	promos := []Promotion{
		{VendorID: "v1", Discount: 50, Status: "expired"},
		{VendorID: "v1", Discount: 10, Status: "active"},
		{VendorID: "v1", Discount: 30, Status: "active"}, // ignored, no stacking
	}

	discounts := Calculate(packs, promos)
	if got := TotalDiscount(discounts).InexactFloat64(); got != 100 {
		t.Fatalf("expected 100 from first active promo, got %f", got)
	}
}

func TestCalculateSkipsEmptyPacksAndUnmatchedVendors(t *testing.T) {
	t.Parallel()

	packs := []cart.Pack{
		{ID: "empty", VendorID: "v1", VendorName: "Chop House"},
		packFixture("v2", "Other Kitchen", 500),
	}
	promos := []Promotion{{VendorID: "v1", Discount: 10, Status: "active"}}

	discounts := Calculate(packs, promos)
	if len(discounts) != 0 {
		t.Fatalf("expected no discounts, got %+v", discounts)
	}
}

func TestVendorKeyFallsBackToID(t *testing.T) {
	t.Parallel()

	packs := []cart.Pack{packFixture("v1", "", 1000)}
	promos := []Promotion{{VendorID: "v1", Discount: 10, Status: "active"}}

	discounts := Calculate(packs, promos)
	if _, ok := discounts["v1"]; !ok {
		t.Fatalf("expected vendor id key, got %+v", discounts)
	}
}
