// Package pricing derives the checkout totals from a cart subtotal. The tax
// rate and delivery fee are configuration, shared by the cart display and the
// checkout so the two can never disagree.
package pricing

import "github.com/shopspring/decimal"

const (
	DefaultTaxRate     = "0.085"
	DefaultDeliveryFee = "2.99"
)

type Breakdown struct {
	Subtotal    decimal.Decimal
	Tax         decimal.Decimal
	DeliveryFee decimal.Decimal
	GrandTotal  decimal.Decimal
}

type Calculator struct {
	taxRate     decimal.Decimal
	deliveryFee decimal.Decimal
}

func NewCalculator(taxRate, deliveryFee decimal.Decimal) *Calculator {
	return &Calculator{taxRate: taxRate, deliveryFee: deliveryFee}
}

func Default() *Calculator {
	return NewCalculator(
		decimal.RequireFromString(DefaultTaxRate),
		decimal.RequireFromString(DefaultDeliveryFee),
	)
}

// Quote computes the full price breakdown. Values stay unrounded here;
// rounding to cents happens only when a value is rendered for display.
func (c *Calculator) Quote(subtotal decimal.Decimal) Breakdown {
	tax := subtotal.Mul(c.taxRate)
	return Breakdown{
		Subtotal:    subtotal,
		Tax:         tax,
		DeliveryFee: c.deliveryFee,
		GrandTotal:  subtotal.Add(tax).Add(c.deliveryFee),
	}
}
