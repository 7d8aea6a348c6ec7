// Package orders submits assembled orders to the core API.
package orders

// Item is one product line in the submitted order. Vendor fields fall back
// to the owning pack's vendor and are null when neither is known.
type Item struct {
	Name       string  `json:"name"`
	Price      int     `json:"price"`
	Quantity   int     `json:"quantity"`
	Image      string  `json:"image,omitempty"`
	VendorName *string `json:"vendorName"`
	VendorID   *string `json:"vendorId"`
}

// Pack mirrors the cart pack in the wire shape the core API expects:
// unselected optional fields are explicit nulls, surcharge defaults to 0.
type Pack struct {
	Name       string  `json:"name"`
	VendorName *string `json:"vendorName"`
	VendorID   *string `json:"vendorId"`
	PackType   *string `json:"packType"`
	PackPrice  int     `json:"packPrice"`
	Items      []Item  `json:"items"`
}

// Order is the add-order request body. Subtotal is the discounted item and
// surcharge total; the fee fields ride alongside unrounded.
type Order struct {
	Subtotal     int    `json:"subtotal"`
	ServiceFee   int    `json:"serviceFee"`
	DeliveryFee  int    `json:"deliveryFee"`
	Address      string `json:"Address"`
	PhoneNumber  string `json:"PhoneNumber"`
	University   string `json:"university"`
	VendorNote   string `json:"vendorNote"`
	DeliveryNote string `json:"deliveryNote"`
	Packs        []Pack `json:"packs"`
}

// NullableString maps empty to JSON null, matching the upstream contract.
func NullableString(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
