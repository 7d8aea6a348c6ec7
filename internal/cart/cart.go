package cart

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// PackType is the size selection carried by packs that contain plated food.
type PackType string

const (
	PackTypeNone  PackType = ""
	PackTypeSmall PackType = "small"
	PackTypeBig   PackType = "big"
)

func (p PackType) IsValid() bool {
	return p == PackTypeSmall || p == PackTypeBig
}

// Item is a product line inside a pack. Vendor fields are denormalized from
// the owning pack for payload assembly.
type Item struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Price      int    `json:"price"`
	Category   string `json:"category"`
	Image      string `json:"image,omitempty"`
	Quantity   int    `json:"quantity"`
	VendorID   string `json:"vendorId,omitempty"`
	VendorName string `json:"vendorName,omitempty"`
}

// Pack groups items destined for a single vendor. The first item added binds
// the vendor; the binding holds until the pack is emptied.
type Pack struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	VendorID   string   `json:"vendorId,omitempty"`
	VendorName string   `json:"vendorName,omitempty"`
	Items      []Item   `json:"items"`
	PackType   PackType `json:"packType,omitempty"`
	PackPrice  int      `json:"packPrice"`
	Selected   bool     `json:"selected,omitempty"`
}

// Subtotal is the sum of price x quantity over the pack's items, excluding
// the pack-type surcharge.
func (p Pack) Subtotal() int {
	total := 0
	for _, item := range p.Items {
		total += item.Price * item.Quantity
	}
	return total
}

// HasCategory reports whether any item's category matches one of the given
// names, case-insensitively.
func (p Pack) HasCategory(names ...string) bool {
	for _, item := range p.Items {
		category := strings.ToLower(strings.TrimSpace(item.Category))
		if category == "" {
			continue
		}
		for _, name := range names {
			if category == strings.ToLower(name) {
				return true
			}
		}
	}
	return false
}

// State is the session-scoped cart aggregate: the ordered pack collection
// plus the user-adjusted delivery fee point value.
type State struct {
	Packs       []Pack `json:"packs"`
	DeliveryFee int    `json:"deliveryFee"`
}

// NewState returns the starting cart: exactly one empty, vendor-less,
// type-less pack.
func NewState() *State {
	return &State{Packs: []Pack{newPack(1)}}
}

func newPack(n int) Pack {
	return Pack{
		ID:    uuid.NewString(),
		Name:  fmt.Sprintf("Pack %d", n),
		Items: []Item{},
	}
}

// AddResult is the typed outcome of AddItem. The cross-vendor and duplicate
// checks live here so no caller can bypass them.
type AddResult int

const (
	AddOK AddResult = iota
	AddRejectedDifferentVendor
	AddRejectedDuplicate
	AddPackNotFound
)

func (r AddResult) String() string {
	switch r {
	case AddOK:
		return "ok"
	case AddRejectedDifferentVendor:
		return "rejected_different_vendor"
	case AddRejectedDuplicate:
		return "rejected_duplicate"
	case AddPackNotFound:
		return "pack_not_found"
	}
	return "unknown"
}

// AddPack appends a new empty pack and returns it.
func (s *State) AddPack() Pack {
	pack := newPack(len(s.Packs) + 1)
	s.Packs = append(s.Packs, pack)
	return pack
}

// UpdatePackType sets the size selection and its surcharge on the identified
// pack. Unknown pack IDs leave the state unchanged.
func (s *State) UpdatePackType(packID string, packType PackType, price int) bool {
	for i := range s.Packs {
		if s.Packs[i].ID == packID {
			s.Packs[i].PackType = packType
			s.Packs[i].PackPrice = price
			return true
		}
	}
	return false
}

// DeletePack removes the pack entirely. Deleting an unknown ID is a no-op.
func (s *State) DeletePack(packID string) bool {
	for i := range s.Packs {
		if s.Packs[i].ID == packID {
			s.Packs = append(s.Packs[:i], s.Packs[i+1:]...)
			return true
		}
	}
	return false
}

// AddItem appends the item with quantity 1 to the named pack. The first item
// binds the pack's vendor; later adds from a different vendor are rejected,
// as are items already present in the pack.
func (s *State) AddItem(item Item, packID string) AddResult {
	for i := range s.Packs {
		pack := &s.Packs[i]
		if pack.ID != packID {
			continue
		}
		if pack.VendorID != "" && item.VendorID != "" && pack.VendorID != item.VendorID {
			return AddRejectedDifferentVendor
		}
		for _, existing := range pack.Items {
			if existing.ID == item.ID {
				return AddRejectedDuplicate
			}
		}
		if pack.VendorID == "" {
			pack.VendorID = item.VendorID
		}
		if pack.VendorName == "" {
			pack.VendorName = item.VendorName
		}
		item.Quantity = 1
		if item.VendorID == "" {
			item.VendorID = pack.VendorID
		}
		if item.VendorName == "" {
			item.VendorName = pack.VendorName
		}
		pack.Items = append(pack.Items, item)
		return AddOK
	}
	return AddPackNotFound
}

// RemoveItem filters the item out of the named pack. When the last item
// leaves, the vendor binding is released so the pack can be reused.
func (s *State) RemoveItem(itemID, packID string) bool {
	for i := range s.Packs {
		pack := &s.Packs[i]
		if pack.ID != packID {
			continue
		}
		kept := pack.Items[:0]
		removed := false
		for _, item := range pack.Items {
			if item.ID == itemID {
				removed = true
				continue
			}
			kept = append(kept, item)
		}
		pack.Items = kept
		if removed && len(pack.Items) == 0 {
			pack.VendorID = ""
			pack.VendorName = ""
		}
		return removed
	}
	return false
}

// UpdateQuantity adds delta to the item's quantity, flooring at 1. Items
// whose resulting quantity would be non-positive are dropped, though the
// floor means decrementing never reaches that branch; RemoveItem is the way
// an item leaves a pack.
func (s *State) UpdateQuantity(itemID, packID string, delta int) bool {
	for i := range s.Packs {
		pack := &s.Packs[i]
		if pack.ID != packID {
			continue
		}
		found := false
		kept := pack.Items[:0]
		for _, item := range pack.Items {
			if item.ID == itemID {
				found = true
				item.Quantity += delta
				if item.Quantity < 1 {
					item.Quantity = 1
				}
			}
			if item.Quantity > 0 {
				kept = append(kept, item)
			}
		}
		pack.Items = kept
		return found
	}
	return false
}

// TotalAmount is the sum over all packs of price x quantity. Recomputed on
// every call, never cached.
func (s *State) TotalAmount() int {
	total := 0
	for _, pack := range s.Packs {
		total += pack.Subtotal()
	}
	return total
}

// TotalPackPrice sums the pack-type surcharges across all packs.
func (s *State) TotalPackPrice() int {
	total := 0
	for _, pack := range s.Packs {
		total += pack.PackPrice
	}
	return total
}

// SelectedPackPrice sums surcharges of packs flagged as already paid, which
// checkout folds into the fee-tier subtotal.
func (s *State) SelectedPackPrice() int {
	total := 0
	for _, pack := range s.Packs {
		if pack.Selected {
			total += pack.PackPrice
		}
	}
	return total
}

// VendorIDs returns the distinct vendor IDs referenced across all packs, in
// first-seen order.
func (s *State) VendorIDs() []string {
	seen := map[string]struct{}{}
	var ids []string
	for _, pack := range s.Packs {
		if pack.VendorID == "" {
			continue
		}
		if _, ok := seen[pack.VendorID]; ok {
			continue
		}
		seen[pack.VendorID] = struct{}{}
		ids = append(ids, pack.VendorID)
	}
	return ids
}

// HasItems reports whether at least one pack holds at least one item.
func (s *State) HasItems() bool {
	for _, pack := range s.Packs {
		if len(pack.Items) > 0 {
			return true
		}
	}
	return false
}
