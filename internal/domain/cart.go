package domain

// CartItem represents one line in the customer's cart.
type CartItem struct {
	ID        string
	ProductID int64
	Name      string
	Quantity  int32

	// UnitPriceCents is the unit price including selected modifier
	// surcharges. Line total = UnitPriceCents * Quantity.
	UnitPriceCents int64

	// Modifiers maps a modifier group id to the selected option ids within
	// that group. An item without selections has a nil or empty map.
	Modifiers map[int64][]int64
}

// LineTotalCents returns the total for this line.
func (i CartItem) LineTotalCents() int64 {
	return i.UnitPriceCents * int64(i.Quantity)
}

// Cart holds the items selected for an order.
type Cart struct {
	Items []CartItem
}

// SubtotalCents sums all line totals.
func (c Cart) SubtotalCents() int64 {
	var total int64
	for _, item := range c.Items {
		total += item.LineTotalCents()
	}
	return total
}

// IsEmpty reports whether the cart has no items.
func (c Cart) IsEmpty() bool {
	return len(c.Items) == 0
}
