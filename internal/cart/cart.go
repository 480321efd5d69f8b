package cart

import (
	"github.com/shopspring/decimal"
)

// Item is a single line in a cart. Lines are keyed by the menu item ID:
// no two lines in one cart share an ID.
type Item struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	ImageURL  string          `json:"image_url"`
}

// normalize corrects malformed input instead of rejecting it: a quantity
// below one becomes one, a negative price becomes zero.
func (i Item) normalize() Item {
	if i.Quantity < 1 {
		i.Quantity = 1
	}
	if i.UnitPrice.IsNegative() {
		i.UnitPrice = decimal.Zero
	}
	return i
}

// State is a cart snapshot. Items keep insertion order. Total is recomputed
// from the lines after every transition, never adjusted incrementally.
type State struct {
	Items []Item          `json:"items"`
	Total decimal.Decimal `json:"total"`
}

// NewState returns an empty cart.
func NewState() State {
	return State{Items: []Item{}, Total: decimal.Zero}
}

// Add appends the item, or increments the quantity of the existing line with
// the same ID. It never fails.
func (s State) Add(item Item) State {
	item = item.normalize()

	items := make([]Item, 0, len(s.Items)+1)
	merged := false
	for _, existing := range s.Items {
		if existing.ID == item.ID {
			existing.Quantity += item.Quantity
			merged = true
		}
		items = append(items, existing)
	}
	if !merged {
		items = append(items, item)
	}

	return State{Items: items, Total: sum(items)}
}

// Remove drops the line with the given ID regardless of its quantity.
// An absent ID is a no-op, not an error.
func (s State) Remove(id string) State {
	items := make([]Item, 0, len(s.Items))
	for _, item := range s.Items {
		if item.ID != id {
			items = append(items, item)
		}
	}
	return State{Items: items, Total: sum(items)}
}

// SetQuantity overwrites the quantity of the line with the given ID.
// A quantity of zero or less drops the line, same as Remove.
func (s State) SetQuantity(id string, quantity int) State {
	items := make([]Item, 0, len(s.Items))
	for _, item := range s.Items {
		if item.ID == id {
			item.Quantity = quantity
		}
		if item.Quantity > 0 {
			items = append(items, item)
		}
	}
	return State{Items: items, Total: sum(items)}
}

// Clear returns the empty cart regardless of prior contents.
func (s State) Clear() State {
	return NewState()
}

func sum(items []Item) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}
