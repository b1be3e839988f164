package cart

import (
	"sort"
	"strings"
)

// CartItem represents one line item in the cart.
// Uniqueness is defined by LineKey (productId + variant attributes):
// the same product in two sizes is two distinct lines.
type CartItem struct {
	LineKey   string            `json:"lineKey"`
	ProductID string            `json:"productId"`
	Name      string            `json:"name"`
	UnitPrice int64             `json:"unitPrice"` // minor currency units (cents)
	Quantity  int               `json:"quantity"`
	ImageRef  string            `json:"imageRef,omitempty"`
	Variant   map[string]string `json:"variant,omitempty"`
}

// LineKey builds the deterministic composite key for (productId, variant).
// Variant attributes are sorted so map iteration order never matters.
// Example: "p-01__size=M".
func LineKey(productID string, variant map[string]string) string {
	pid := strings.TrimSpace(productID)
	if len(variant) == 0 {
		return pid
	}

	keys := make([]string, 0, len(variant))
	for k := range variant {
		if strings.TrimSpace(k) == "" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys)+1)
	parts = append(parts, pid)
	for _, k := range keys {
		parts = append(parts, strings.TrimSpace(k)+"="+strings.TrimSpace(variant[k]))
	}
	return strings.Join(parts, "__")
}

// Cart holds the in-memory line items in insertion order.
// All mutation goes through the owning store; Cart itself is not safe for
// concurrent use.
type Cart struct {
	items []CartItem
}

func New() *Cart {
	return &Cart{items: []CartItem{}}
}

// Add merges by LineKey: an existing line gets its quantity incremented,
// otherwise the item is appended. qty below 1 is treated as 1
// (quantity validation is a UI-boundary concern, never a failure here).
func (c *Cart) Add(item CartItem, qty int) {
	if c == nil {
		return
	}
	if qty < 1 {
		qty = 1
	}

	key := strings.TrimSpace(item.LineKey)
	if key == "" {
		key = LineKey(item.ProductID, item.Variant)
	}
	if key == "" {
		return
	}

	for i := range c.items {
		if c.items[i].LineKey == key {
			c.items[i].Quantity += qty
			return
		}
	}

	item.LineKey = key
	item.Quantity = qty
	item.Variant = cloneVariant(item.Variant)
	c.items = append(c.items, item)
}

// Remove deletes the line entirely. Absent key is a no-op, not an error.
func (c *Cart) Remove(lineKey string) {
	if c == nil {
		return
	}
	key := strings.TrimSpace(lineKey)
	for i := range c.items {
		if c.items[i].LineKey == key {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return
		}
	}
}

// SetQuantity sets the quantity for a line. n below 1 clamps to 1;
// removal is explicit only (Remove). Absent key is a no-op.
func (c *Cart) SetQuantity(lineKey string, n int) {
	if c == nil {
		return
	}
	if n < 1 {
		n = 1
	}
	key := strings.TrimSpace(lineKey)
	for i := range c.items {
		if c.items[i].LineKey == key {
			c.items[i].Quantity = n
			return
		}
	}
}

// Clear empties the cart (checkout completion or explicit clear action).
func (c *Cart) Clear() {
	if c == nil {
		return
	}
	c.items = c.items[:0]
}

// Items returns a copy of the lines in insertion order.
func (c *Cart) Items() []CartItem {
	if c == nil {
		return nil
	}
	out := make([]CartItem, len(c.items))
	copy(out, c.items)
	for i := range out {
		out[i].Variant = cloneVariant(out[i].Variant)
	}
	return out
}

// Total is the derived sum of unitPrice*quantity over all lines,
// computed on demand (never cached).
func (c *Cart) Total() int64 {
	if c == nil {
		return 0
	}
	var total int64
	for i := range c.items {
		total += c.items[i].UnitPrice * int64(c.items[i].Quantity)
	}
	return total
}

func (c *Cart) Len() int {
	if c == nil {
		return 0
	}
	return len(c.items)
}

func cloneVariant(v map[string]string) map[string]string {
	if v == nil {
		return nil
	}
	out := make(map[string]string, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}
