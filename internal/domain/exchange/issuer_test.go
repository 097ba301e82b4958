package exchange

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mireven/shopfront/internal/domain/claim"
	"github.com/mireven/shopfront/internal/domain/coupon"
)

type recordingCouponRepo struct {
	coupon.Repository

	created *coupon.Coupon
}

func (r *recordingCouponRepo) Create(_ context.Context, c *coupon.Coupon) error {
	r.created = c
	return nil
}

type recordingClaimRepo struct {
	claim.Repository

	created *claim.Claim
}

func (r *recordingClaimRepo) Create(_ context.Context, c *claim.Claim) error {
	r.created = c
	return nil
}

func TestIssue(t *testing.T) {
	now := time.Date(2025, 7, 10, 12, 0, 0, 0, time.UTC)
	coupons := &recordingCouponRepo{}
	claims := &recordingClaimRepo{}

	issuer := NewIssuer(coupons, claims)
	issuer.now = func() time.Time { return now }

	c, err := issuer.Issue(context.Background(), "u-1", decimal.RequireFromString("149.50"))
	require.NoError(t, err)

	require.NotNil(t, coupons.created)
	assert.Equal(t, c.ID, coupons.created.ID)
	assert.NotEmpty(t, c.ID)
	assert.Equal(t, "Exchange credit 149.50", c.Label)
	assert.Equal(t, coupon.DiscountFixed, c.Type)
	assert.True(t, decimal.RequireFromString("149.50").Equal(c.Discount))
	assert.True(t, c.Active)
	assert.True(t, c.AutoIssued)
	assert.Equal(t, coupon.AudienceSpecific, c.AssignTo)
	assert.Equal(t, []string{"u-1"}, c.AssignedUsers)
	assert.Equal(t, 1, c.UsageLimitPerUser)
	assert.Equal(t, now, c.CampaignStart)
	assert.True(t, c.CampaignEnd.After(now.AddDate(0, 0, 1)))

	require.NotNil(t, claims.created)
	assert.Equal(t, c.ID, claims.created.CouponID)
	assert.Equal(t, "u-1", claims.created.CustomerID)
	assert.Equal(t, now, claims.created.ClaimedAt)
	assert.Equal(t, now.AddDate(0, 0, 1), claims.created.ExpiresAt)
	assert.Equal(t, 1, claims.created.UsageLimit)
}

func TestIssueInvalidAmount(t *testing.T) {
	issuer := NewIssuer(&recordingCouponRepo{}, &recordingClaimRepo{})

	for _, amount := range []string{"0", "-10"} {
		_, err := issuer.Issue(context.Background(), "u-1", decimal.RequireFromString(amount))
		assert.ErrorIs(t, err, ErrInvalidAmount)
	}
}

func TestIssuedCouponPassesAuthoringRules(t *testing.T) {
	coupons := &recordingCouponRepo{}
	issuer := NewIssuer(coupons, &recordingClaimRepo{})

	c, err := issuer.Issue(context.Background(), "u-1", decimal.NewFromInt(20))
	require.NoError(t, err)
	require.NoError(t, coupon.ValidateDefinition(c))
}
