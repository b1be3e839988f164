package cart

import (
	"reflect"
	"testing"
)

func tee() CartItem {
	return CartItem{ProductID: "p-02", Name: "Classic Tee", UnitPrice: 4999}
}

func mug() CartItem {
	return CartItem{ProductID: "p-01", Name: "Enamel Mug", UnitPrice: 2999}
}

func TestLineKey(t *testing.T) {
	tests := []struct {
		name      string
		productID string
		variant   map[string]string
		want      string
	}{
		{name: "no variant", productID: "p-01", variant: nil, want: "p-01"},
		{name: "single attribute", productID: "p-02", variant: map[string]string{"size": "M"}, want: "p-02__size=M"},
		{
			name:      "attributes sorted by key",
			productID: "p-02",
			variant:   map[string]string{"size": "M", "color": "red"},
			want:      "p-02__color=red__size=M",
		},
		{name: "trims whitespace", productID: "  p-03  ", variant: map[string]string{" size ": " L "}, want: "p-03__size=L"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LineKey(tt.productID, tt.variant); got != tt.want {
				t.Errorf("LineKey() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCartAddMergesByLineKey(t *testing.T) {
	c := New()
	c.Add(mug(), 1)
	c.Add(mug(), 2)

	if c.Len() != 1 {
		t.Fatalf("expected 1 line after merging adds, got %d", c.Len())
	}
	if got := c.Items()[0].Quantity; got != 3 {
		t.Errorf("merged quantity = %d, want 3", got)
	}
}

func TestCartAddDistinctVariantsStaySeparate(t *testing.T) {
	c := New()

	small := tee()
	small.Variant = map[string]string{"size": "S"}
	medium := tee()
	medium.Variant = map[string]string{"size": "M"}

	c.Add(small, 1)
	c.Add(medium, 1)

	if c.Len() != 2 {
		t.Fatalf("expected 2 lines for distinct variants, got %d", c.Len())
	}
	keys := []string{c.Items()[0].LineKey, c.Items()[1].LineKey}
	want := []string{"p-02__size=S", "p-02__size=M"}
	if !reflect.DeepEqual(keys, want) {
		t.Errorf("line keys = %v, want %v", keys, want)
	}
}

func TestCartAddClampsQuantity(t *testing.T) {
	for _, qty := range []int{0, -3} {
		c := New()
		c.Add(mug(), qty)
		if got := c.Items()[0].Quantity; got != 1 {
			t.Errorf("Add with qty=%d produced quantity %d, want 1", qty, got)
		}
	}
}

func TestCartSetQuantity(t *testing.T) {
	c := New()
	c.Add(mug(), 2)
	key := c.Items()[0].LineKey

	c.SetQuantity(key, 5)
	if got := c.Items()[0].Quantity; got != 5 {
		t.Errorf("quantity after set = %d, want 5", got)
	}

	// Below 1 clamps; the line stays in the cart.
	c.SetQuantity(key, 0)
	if c.Len() != 1 {
		t.Fatalf("line removed by SetQuantity(0); removal must be explicit")
	}
	if got := c.Items()[0].Quantity; got != 1 {
		t.Errorf("quantity after clamp = %d, want 1", got)
	}

	// Unknown key is a no-op.
	c.SetQuantity("nope", 7)
	if got := c.Items()[0].Quantity; got != 1 {
		t.Errorf("unknown key changed quantity to %d", got)
	}
}

func TestCartRemove(t *testing.T) {
	c := New()
	c.Add(mug(), 1)
	c.Add(tee(), 1)
	key := c.Items()[0].LineKey

	c.Remove(key)
	if c.Len() != 1 {
		t.Fatalf("expected 1 line after remove, got %d", c.Len())
	}

	// Absent key is a no-op, not an error.
	c.Remove("absent")
	if c.Len() != 1 {
		t.Errorf("remove of absent key changed the cart")
	}
}

func TestCartTotal(t *testing.T) {
	c := New()
	c.Add(mug(), 2) // 2999 * 2
	c.Add(tee(), 1) // 4999

	if got := c.Total(); got != 10997 {
		t.Errorf("Total() = %d, want 10997", got)
	}

	c.Clear()
	if got := c.Total(); got != 0 {
		t.Errorf("Total() after clear = %d, want 0", got)
	}
	if c.Len() != 0 {
		t.Errorf("Len() after clear = %d, want 0", c.Len())
	}
}

func TestCartItemsReturnsCopy(t *testing.T) {
	c := New()
	withVariant := tee()
	withVariant.Variant = map[string]string{"size": "M"}
	c.Add(withVariant, 1)

	items := c.Items()
	items[0].Quantity = 99
	items[0].Variant["size"] = "XL"

	fresh := c.Items()[0]
	if fresh.Quantity != 1 {
		t.Errorf("mutating the returned slice leaked into the cart (quantity=%d)", fresh.Quantity)
	}
	if fresh.Variant["size"] != "M" {
		t.Errorf("mutating the returned variant map leaked into the cart (size=%s)", fresh.Variant["size"])
	}
}
