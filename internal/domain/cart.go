package domain

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// FreeDeliveryThreshold is the subtotal above which delivery is free.
	FreeDeliveryThreshold = decimal.NewFromInt(5000)
	// DeliveryFee is the flat fee charged at or below the threshold.
	DeliveryFee = decimal.NewFromInt(200)
)

// CartItem is a product snapshot taken when it was added, plus a quantity.
type CartItem struct {
	Product
	Quantity int `json:"quantity"`
}

// LineTotal returns price times quantity.
func (i CartItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// MarshalJSON writes the product fields with quantity alongside them.
func (i CartItem) MarshalJSON() ([]byte, error) {
	base, err := json.Marshal(i.Product)
	if err != nil {
		return nil, err
	}
	qty, err := json.Marshal(i.Quantity)
	if err != nil {
		return nil, err
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(base, &m); err != nil {
		return nil, err
	}
	m["quantity"] = qty
	return json.Marshal(m)
}

// UnmarshalJSON reads a flat cart entry.
func (i *CartItem) UnmarshalJSON(data []byte) error {
	var p Product
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	var q struct {
		Quantity int `json:"quantity"`
	}
	if err := json.Unmarshal(data, &q); err != nil {
		return err
	}
	delete(p.Extra, "quantity")
	if len(p.Extra) == 0 {
		p.Extra = nil
	}
	i.Product = p
	i.Quantity = q.Quantity
	return nil
}

// Cart is the ordered list of items, in the order they were first added.
type Cart []CartItem

// Validate checks the stored-form invariants: every quantity at least 1 and
// no product id twice.
func (c Cart) Validate() error {
	seen := make(map[int]struct{}, len(c))
	for idx, item := range c {
		if item.Quantity < 1 {
			return fmt.Errorf("item %d (product %d): quantity %d", idx, item.ID, item.Quantity)
		}
		if _, dup := seen[item.ID]; dup {
			return fmt.Errorf("item %d: duplicate product %d", idx, item.ID)
		}
		seen[item.ID] = struct{}{}
	}
	return nil
}

// FindItemIndex returns the index of the item for productID, or -1.
func (c Cart) FindItemIndex(productID int) int {
	for i := range c {
		if c[i].ID == productID {
			return i
		}
	}
	return -1
}

// ItemCount returns the total quantity across all items.
func (c Cart) ItemCount() int {
	var n int
	for _, item := range c {
		n += item.Quantity
	}
	return n
}

// Clone returns a copy that shares no backing array with c.
func (c Cart) Clone() Cart {
	if c == nil {
		return Cart{}
	}
	out := make(Cart, len(c))
	copy(out, c)
	return out
}

// Totals is the priced summary of a cart.
type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Delivery decimal.Decimal `json:"delivery"`
	Total    decimal.Decimal `json:"total"`
}

func (t Totals) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Subtotal jsonNumber `json:"subtotal"`
		Delivery jsonNumber `json:"delivery"`
		Total    jsonNumber `json:"total"`
	}{jsonNumber(t.Subtotal), jsonNumber(t.Delivery), jsonNumber(t.Total)})
}

// FreeDelivery reports whether no delivery fee applies.
func (t Totals) FreeDelivery() bool {
	return t.Delivery.IsZero()
}

// ComputeTotals prices the given items. Delivery is free strictly above
// FreeDeliveryThreshold. An empty cart keeps the delivery fee but totals 0.
func ComputeTotals(items []CartItem) Totals {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.LineTotal())
	}

	delivery := DeliveryFee
	if subtotal.GreaterThan(FreeDeliveryThreshold) {
		delivery = decimal.Zero
	}

	total := subtotal.Add(delivery)
	if len(items) == 0 {
		total = decimal.Zero
	}

	return Totals{Subtotal: subtotal, Delivery: delivery, Total: total}
}
