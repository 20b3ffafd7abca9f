package domain

import (
	"sort"
	"strings"
	"time"
)

// LineItem is one product entry in a cart. UnitPrice is in cents.
// Variant holds optional attributes (size, color, finish) that
// distinguish otherwise identical products.
type LineItem struct {
	ProductID string            `json:"product_id"`
	Name      string            `json:"name"`
	UnitPrice int64             `json:"unit_price"`
	Quantity  int               `json:"quantity"`
	Variant   map[string]string `json:"variant,omitempty"`
}

// Key identifies a line item by product and variant. Two items with the
// same key are merged on add.
func (li LineItem) Key() string {
	if len(li.Variant) == 0 {
		return li.ProductID
	}

	keys := make([]string, 0, len(li.Variant))
	for k := range li.Variant {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(li.ProductID)
	for _, k := range keys {
		b.WriteByte('|')
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(li.Variant[k])
	}
	return b.String()
}

// LineTotal is unit price times quantity.
func (li LineItem) LineTotal() int64 {
	return li.UnitPrice * int64(li.Quantity)
}

// Cart holds the line items for one shopping session. Items keep
// insertion order; at most one item exists per (product, variant) key.
type Cart struct {
	SessionID string     `json:"session_id"`
	Items     []LineItem `json:"items"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func NewCart(sessionID string) *Cart {
	return &Cart{SessionID: sessionID}
}

// AddItem merges the incoming item into an existing line with the same
// key, or appends a new line.
func (c *Cart) AddItem(item LineItem) {
	key := item.Key()
	for i := range c.Items {
		if c.Items[i].Key() == key {
			c.Items[i].Quantity += item.Quantity
			return
		}
	}
	c.Items = append(c.Items, item)
}

// RemoveItem deletes the line with the given key. Removing an absent key
// is a no-op.
func (c *Cart) RemoveItem(key string) {
	for i := range c.Items {
		if c.Items[i].Key() == key {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			return
		}
	}
}

// UpdateQuantity sets the quantity for the line with the given key.
// Quantities below 1 remove the line instead.
func (c *Cart) UpdateQuantity(key string, quantity int) {
	if quantity < 1 {
		c.RemoveItem(key)
		return
	}
	for i := range c.Items {
		if c.Items[i].Key() == key {
			c.Items[i].Quantity = quantity
			return
		}
	}
}

// Subtotal is recomputed from the items on every call so it cannot
// drift from per-line state.
func (c *Cart) Subtotal() int64 {
	var sum int64
	for _, item := range c.Items {
		sum += item.LineTotal()
	}
	return sum
}

func (c *Cart) Clear() {
	c.Items = nil
}

func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}
