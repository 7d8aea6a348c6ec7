package checkout

import (
	"testing"

	"github.com/chowpack/chowpack-engine/internal/cart"
	"github.com/chowpack/chowpack-engine/internal/delivery"
	"github.com/chowpack/chowpack-engine/internal/promotions"
)

func stateFixture() *cart.State {
	state := cart.NewState()
	first := state.Packs[0].ID
	state.AddItem(cart.Item{
		ID: "i1", Name: "Jollof Rice", Price: 500, Category: "Carbohydrate",
		VendorID: "v1", VendorName: "Chop House",
	}, first)
	state.UpdateQuantity("i1", first, +1) // 2 x 500

	second := state.AddPack()
	state.AddItem(cart.Item{
		ID: "i2", Name: "Chicken", Price: 1000, Category: "Protein",
		VendorID: "v2", VendorName: "Other Kitchen",
	}, second.ID)
	state.UpdatePackType(first, cart.PackTypeSmall, 300)
	state.UpdatePackType(second.ID, cart.PackTypeBig, 500)
	return state
}

func feeTableFixture() map[string]delivery.Bounds {
	return map[string]delivery.Bounds{
		"v1": {VendorID: "v1", Min: 200, Max: 500},
		"v2": {VendorID: "v2", Min: 100, Max: 300},
	}
}

func TestBuildQuoteBreakdown(t *testing.T) {
	t.Parallel()

	state := stateFixture()
	quote := buildQuote(state, feeTableFixture(), nil)

	if quote.TotalAmount != 2000 {
		t.Fatalf("expected item total 2000, got %d", quote.TotalAmount)
	}
	if quote.TotalPackPrice != 800 {
		t.Fatalf("expected surcharge total 800, got %d", quote.TotalPackPrice)
	}
	// Fee subtotal 2800 falls in the 7% tier.
	if quote.ServiceFee != 196 {
		t.Fatalf("expected service fee 196, got %d", quote.ServiceFee)
	}
	// Zero stored fee snaps to the summed minimum.
	if quote.DeliveryFee != 300 || quote.DeliveryFeeMin != 300 || quote.DeliveryFeeMax != 800 {
		t.Fatalf("unexpected delivery figures %+v", quote)
	}
	if quote.GrandTotal != 2000+800+196+300 {
		t.Fatalf("expected grand total %d, got %d", 2000+800+196+300, quote.GrandTotal)
	}
}

func TestBuildQuoteSelectedSurchargeRaisesFeeTier(t *testing.T) {
	t.Parallel()

	state := cart.NewState()
	state.AddItem(cart.Item{ID: "i1", Price: 900, Quantity: 1, VendorID: "v1"}, state.Packs[0].ID)
	state.UpdatePackType(state.Packs[0].ID, cart.PackTypeSmall, 200)
	state.Packs[0].Selected = true

	// Fee subtotal 900 + 200 + 200 = 1300: the 10% tier, not 25%.
	quote := buildQuote(state, map[string]delivery.Bounds{}, nil)
	if quote.ServiceFee != 130 {
		t.Fatalf("expected service fee 130, got %d", quote.ServiceFee)
	}
}

func TestBuildQuoteAppliesDiscountBeforeRounding(t *testing.T) {
	t.Parallel()

	state := stateFixture()
	promos := []promotions.Promotion{
		{VendorID: "v1", VendorName: "Chop House", Discount: 10, Status: "active"},
	}

	quote := buildQuote(state, feeTableFixture(), promos)
	if quote.TotalDiscount != 100 {
		t.Fatalf("expected discount 100, got %f", quote.TotalDiscount)
	}
	if len(quote.Discounts) != 1 || quote.Discounts[0].VendorName != "Chop House" {
		t.Fatalf("unexpected discount lines %+v", quote.Discounts)
	}
	if quote.GrandTotal != 2000+800+196+300-100 {
		t.Fatalf("unexpected grand total %d", quote.GrandTotal)
	}
	if got := quote.orderSubtotal(); got != 2700 {
		t.Fatalf("expected order subtotal 2700, got %d", got)
	}
}

func TestOrderSubtotalRoundsFractionalDiscount(t *testing.T) {
	t.Parallel()

	state := cart.NewState()
	state.AddItem(cart.Item{
		ID: "i1", Price: 333, Quantity: 1, VendorID: "v1", VendorName: "Chop House",
	}, state.Packs[0].ID)
	promos := []promotions.Promotion{{VendorID: "v1", Discount: 10, Status: "active"}}

	quote := buildQuote(state, map[string]delivery.Bounds{}, promos)
	// 333 - 33.3 = 299.7 rounds to 300.
	if got := quote.orderSubtotal(); got != 300 {
		t.Fatalf("expected 300, got %d", got)
	}
}
