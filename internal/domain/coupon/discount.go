package coupon

import (
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

var zero = decimal.Zero

// Breakdown holds the two discount components a coupon can produce.
// ItemDiscount reduces the item subtotal, ShippingDiscount reduces the
// shipping fee. Both are always non-negative and ItemDiscount never exceeds
// the subtotal it was computed from.
type Breakdown struct {
	ItemDiscount     decimal.Decimal
	ShippingDiscount decimal.Decimal
}

// ApplyDiscount computes the discount an eligible coupon yields against the
// given cart subtotal and shipping fee. A nil shippingFee means the fee is
// not yet known (no shipping rule for the province); a fee that is unknown
// cannot be discounted.
//
// The switch over DiscountType is exhaustive; an unknown type is an error,
// never a silent zero.
func ApplyDiscount(c *Coupon, subtotal decimal.Decimal, shippingFee *decimal.Decimal) (Breakdown, error) {
	switch c.Type {
	case DiscountPercentage:
		raw := subtotal.Mul(c.Discount).Div(hundred)
		if cap := c.Conditions.MaxCap; cap != nil {
			raw = decimal.Min(raw, *cap)
		}
		return Breakdown{
			ItemDiscount:     clampNonNegative(decimal.Min(raw, subtotal)).Round(2),
			ShippingDiscount: zero,
		}, nil

	case DiscountFixed:
		return Breakdown{
			ItemDiscount:     clampNonNegative(decimal.Min(c.Discount, subtotal)).Round(2),
			ShippingDiscount: zero,
		}, nil

	case DiscountFreeShipping:
		fee := zero
		if shippingFee != nil {
			fee = *shippingFee
		}
		return Breakdown{
			ItemDiscount:     zero,
			ShippingDiscount: clampNonNegative(fee).Round(2),
		}, nil

	default:
		return Breakdown{ItemDiscount: zero, ShippingDiscount: zero},
			errors.Errorf("unsupported discount type: %q", c.Type)
	}
}

// clampNonNegative floors negative values at zero.
func clampNonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return zero
	}
	return d
}
