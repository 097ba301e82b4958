package checkout

import (
	"github.com/shopspring/decimal"

	"github.com/mireven/shopfront/internal/domain/coupon"
)

// Quote holds every figure shown to the customer at checkout. When a coupon
// is selected but ineligible, Blocked is true, BlockingError carries the
// reason, and the discounts are zero while the selection is kept; the
// proceed action must stay disabled until the customer clears or changes it.
type Quote struct {
	Subtotal decimal.Decimal

	// ShippingFee is nil when the province has no shipping rule; the total
	// then excludes shipping and the UI must not present it as free.
	ShippingFee *decimal.Decimal

	ItemDiscount     decimal.Decimal
	ShippingDiscount decimal.Decimal

	FinalShipping decimal.Decimal
	FinalTotal    decimal.Decimal

	Blocked       bool
	BlockingError *EligibilityError
}

// Assemble combines the pricing figures into the final shipping and total.
// Pure; recomputed on any change to the cart, selection, or province.
func Assemble(subtotal decimal.Decimal, shippingFee *decimal.Decimal, b coupon.Breakdown, eligErr *EligibilityError) Quote {
	fee := decimal.Zero
	if shippingFee != nil {
		fee = *shippingFee
	}

	finalShipping := fee.Sub(b.ShippingDiscount)
	if finalShipping.IsNegative() {
		finalShipping = decimal.Zero
	}

	finalTotal := subtotal.Sub(b.ItemDiscount).Add(finalShipping)
	if finalTotal.IsNegative() {
		finalTotal = decimal.Zero
	}

	return Quote{
		Subtotal:         subtotal.Round(2),
		ShippingFee:      shippingFee,
		ItemDiscount:     b.ItemDiscount,
		ShippingDiscount: b.ShippingDiscount,
		FinalShipping:    finalShipping.Round(2),
		FinalTotal:       finalTotal.Round(2),
		Blocked:          eligErr != nil,
		BlockingError:    eligErr,
	}
}
