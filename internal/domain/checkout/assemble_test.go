package checkout

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mireven/shopfront/internal/domain/coupon"
)

func TestAssemble(t *testing.T) {
	tests := []struct {
		name         string
		subtotal     string
		shippingFee  *decimal.Decimal
		breakdown    coupon.Breakdown
		wantShipping string
		wantTotal    string
	}{
		{
			name:         "no coupon with shipping",
			subtotal:     "300",
			shippingFee:  decPtr("80"),
			wantShipping: "80",
			wantTotal:    "380",
		},
		{
			name:         "free shipping zeroes the fee",
			subtotal:     "300",
			shippingFee:  decPtr("80"),
			breakdown:    coupon.Breakdown{ItemDiscount: decimal.Zero, ShippingDiscount: dec("80")},
			wantShipping: "0",
			wantTotal:    "300",
		},
		{
			name:         "item discount reduces the total",
			subtotal:     "1000",
			shippingFee:  decPtr("50"),
			breakdown:    coupon.Breakdown{ItemDiscount: dec("50"), ShippingDiscount: decimal.Zero},
			wantShipping: "50",
			wantTotal:    "1000",
		},
		{
			name:         "unknown province excludes shipping",
			subtotal:     "200",
			shippingFee:  nil,
			wantShipping: "0",
			wantTotal:    "200",
		},
		{
			name:         "shipping discount never drives the fee negative",
			subtotal:     "100",
			shippingFee:  decPtr("40"),
			breakdown:    coupon.Breakdown{ItemDiscount: decimal.Zero, ShippingDiscount: dec("60")},
			wantShipping: "0",
			wantTotal:    "100",
		},
		{
			name:         "full discount floors total at zero",
			subtotal:     "100",
			shippingFee:  nil,
			breakdown:    coupon.Breakdown{ItemDiscount: dec("100"), ShippingDiscount: decimal.Zero},
			wantShipping: "0",
			wantTotal:    "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Assemble(dec(tt.subtotal), tt.shippingFee, tt.breakdown, nil)

			assert.False(t, got.Blocked)
			assert.Nil(t, got.BlockingError)
			assert.True(t, dec(tt.wantShipping).Equal(got.FinalShipping),
				"final shipping: expected %s, got %s", tt.wantShipping, got.FinalShipping)
			assert.True(t, dec(tt.wantTotal).Equal(got.FinalTotal),
				"final total: expected %s, got %s", tt.wantTotal, got.FinalTotal)

			if tt.shippingFee == nil {
				assert.Nil(t, got.ShippingFee)
			} else {
				require.NotNil(t, got.ShippingFee)
				assert.True(t, tt.shippingFee.Equal(*got.ShippingFee))
			}
		})
	}
}

func TestAssembleBlocked(t *testing.T) {
	eligErr := &EligibilityError{
		Reason:  ReasonMinSpendNotMet,
		Message: "requires minimum spend of 500.00",
	}

	got := Assemble(dec("300"), decPtr("80"), coupon.Breakdown{}, eligErr)

	assert.True(t, got.Blocked)
	require.NotNil(t, got.BlockingError)
	assert.Equal(t, ReasonMinSpendNotMet, got.BlockingError.Reason)

	// A blocked quote keeps the undiscounted figures.
	assert.True(t, dec("80").Equal(got.FinalShipping))
	assert.True(t, dec("380").Equal(got.FinalTotal))
	assert.True(t, got.ItemDiscount.IsZero())
	assert.True(t, got.ShippingDiscount.IsZero())
}
