// Package checkout evaluates a cart against a selected coupon and assembles
// the totals shown to the customer. Everything here is pure computation,
// recomputed from scratch on every cart, coupon, or address change; the only
// I/O happens in Service, which loads the inputs.
package checkout

import "github.com/shopspring/decimal"

// CartItem is one line of the cart snapshot handed in by the cart
// collaborator.
type CartItem struct {
	Price    decimal.Decimal
	Quantity int
	WeightKg decimal.Decimal
}

// Cart is the ordered snapshot of the customer's cart.
type Cart struct {
	Items []CartItem
}

// Subtotal is the sum of price times quantity across all items.
func (c Cart) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, item := range c.Items {
		qty := decimal.NewFromInt(int64(item.Quantity))
		sum = sum.Add(item.Price.Mul(qty))
	}
	return sum
}

// TotalWeightKg is the sum of weight times quantity across all items.
func (c Cart) TotalWeightKg() decimal.Decimal {
	sum := decimal.Zero
	for _, item := range c.Items {
		qty := decimal.NewFromInt(int64(item.Quantity))
		sum = sum.Add(item.WeightKg.Mul(qty))
	}
	return sum
}
