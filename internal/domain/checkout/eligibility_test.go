package checkout

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mireven/shopfront/internal/domain/claim"
	"github.com/mireven/shopfront/internal/domain/coupon"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

var evalNow = time.Date(2025, 7, 10, 12, 0, 0, 0, time.UTC)

func eligibleCoupon() *coupon.Coupon {
	return &coupon.Coupon{
		ID:                  "c-1",
		Label:               "Welcome",
		Type:                coupon.DiscountPercentage,
		Discount:            dec("10"),
		CampaignStart:       evalNow.AddDate(0, 0, -5),
		CampaignEnd:         evalNow.AddDate(0, 0, 5),
		ValidAfterClaimDays: 7,
		Active:              true,
		AssignTo:            coupon.AudienceEveryone,
		UsageLimitPerUser:   2,
	}
}

func activeClaim() *claim.Claim {
	return &claim.Claim{
		CouponID:   "c-1",
		CustomerID: "u-1",
		ClaimedAt:  evalNow.AddDate(0, 0, -2),
		ExpiresAt:  evalNow.AddDate(0, 0, 5),
		UsageCount: 0,
		UsageLimit: 2,
	}
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(in *EvalInput)
		wantReason Reason
	}{
		{
			name:   "eligible",
			mutate: func(in *EvalInput) {},
		},
		{
			name: "campaign ended but claim still valid",
			mutate: func(in *EvalInput) {
				in.Coupon.CampaignEnd = evalNow.AddDate(0, 0, -1)
			},
		},
		{
			name:       "not claimed",
			mutate:     func(in *EvalInput) { in.Claim = nil },
			wantReason: ReasonNotClaimed,
		},
		{
			name:       "coupon disabled",
			mutate:     func(in *EvalInput) { in.Coupon.Active = false },
			wantReason: ReasonInactive,
		},
		{
			name: "claim expired",
			mutate: func(in *EvalInput) {
				in.Claim.ExpiresAt = evalNow.AddDate(0, 0, -1)
			},
			wantReason: ReasonClaimExpired,
		},
		{
			name: "usage exhausted",
			mutate: func(in *EvalInput) {
				in.Claim.UsageCount = in.Claim.UsageLimit
			},
			wantReason: ReasonUsageExhausted,
		},
		{
			name: "minimum spend not met",
			mutate: func(in *EvalInput) {
				in.Coupon.Conditions.MinSpend = dec("500")
				in.Subtotal = dec("499.99")
			},
			wantReason: ReasonMinSpendNotMet,
		},
		{
			name: "minimum spend met exactly",
			mutate: func(in *EvalInput) {
				in.Coupon.Conditions.MinSpend = dec("500")
				in.Subtotal = dec("500")
			},
		},
		{
			name: "not in assigned audience",
			mutate: func(in *EvalInput) {
				in.Coupon.AssignTo = coupon.AudienceSpecific
				in.Coupon.AssignedUsers = []string{"u-2"}
			},
			wantReason: ReasonNotAssigned,
		},
		{
			name: "in assigned audience",
			mutate: func(in *EvalInput) {
				in.Coupon.AssignTo = coupon.AudienceSpecific
				in.Coupon.AssignedUsers = []string{"u-2", "u-1"}
			},
		},
		{
			name: "first order only with returning buyer",
			mutate: func(in *EvalInput) {
				in.Coupon.Conditions.FirstTimeBuyer = true
				in.FirstTimeBuyer = false
			},
			wantReason: ReasonFirstOrderOnly,
		},
		{
			name: "first order only with first-time buyer",
			mutate: func(in *EvalInput) {
				in.Coupon.Conditions.FirstTimeBuyer = true
				in.FirstTimeBuyer = true
			},
		},
		{
			name: "inactive reported before expired claim",
			mutate: func(in *EvalInput) {
				in.Coupon.Active = false
				in.Claim.ExpiresAt = evalNow.AddDate(0, 0, -1)
			},
			wantReason: ReasonInactive,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := EvalInput{
				Coupon:     eligibleCoupon(),
				Claim:      activeClaim(),
				Subtotal:   dec("1000"),
				CustomerID: "u-1",
				Now:        evalNow,
			}
			tt.mutate(&in)

			got := Evaluate(in)
			if tt.wantReason == "" {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.wantReason, got.Reason)
			assert.NotEmpty(t, got.Message)
		})
	}
}

func TestEvaluateMinSpendMessage(t *testing.T) {
	in := EvalInput{
		Coupon:     eligibleCoupon(),
		Claim:      activeClaim(),
		Subtotal:   dec("100"),
		CustomerID: "u-1",
		Now:        evalNow,
	}
	in.Coupon.Conditions.MinSpend = dec("250")

	got := Evaluate(in)
	require.NotNil(t, got)
	assert.Equal(t, "requires minimum spend of 250.00", got.Message)
}
