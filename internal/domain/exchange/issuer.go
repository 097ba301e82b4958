// Package exchange mints compensation coupons from approved return
// requests. The approval workflow itself lives outside this service; it
// calls in once a return-as-coupon request is granted.
package exchange

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mireven/shopfront/internal/domain/claim"
	"github.com/mireven/shopfront/internal/domain/coupon"
)

// ErrInvalidAmount is returned when the approved return total is not a
// positive amount.
var ErrInvalidAmount = errors.New("exchange amount must be positive")

// campaignGrace is how long an exchange coupon stays claim-able on paper.
// The coupon is issued directly into the claimed state, so this mostly
// satisfies the campaign-window invariant shared with manual coupons.
const campaignGrace = 30 * 24 * time.Hour

// Issuer mints single-customer fixed coupons for approved returns. Issued
// coupons obey every invariant of manually authored ones and arrive with
// the claim already created, since they represent compensation already owed.
type Issuer struct {
	coupons coupon.Repository
	claims  claim.Repository
	now     func() time.Time
}

// NewIssuer creates an Issuer backed by the given repositories.
func NewIssuer(coupons coupon.Repository, claims claim.Repository) *Issuer {
	return &Issuer{coupons: coupons, claims: claims, now: time.Now}
}

// Issue creates the coupon and its claim for the customer. The returned
// coupon is auto-issued: immutable through the admin edit path, toggleable
// only.
func (i *Issuer) Issue(ctx context.Context, customerID string, amount decimal.Decimal) (*coupon.Coupon, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	now := i.now()
	c := &coupon.Coupon{
		ID:       uuid.New().String(),
		Label:    "Exchange credit " + amount.StringFixed(2),
		Type:     coupon.DiscountFixed,
		Discount: amount,
		Conditions: coupon.Conditions{
			MinSpend: decimal.Zero,
		},
		CampaignStart:       now,
		CampaignEnd:         now.Add(campaignGrace),
		ValidAfterClaimDays: 1,
		Active:              true,
		AssignTo:            coupon.AudienceSpecific,
		AssignedUsers:       []string{customerID},
		UsageLimitPerUser:   1,
		AutoIssued:          true,
	}

	if err := coupon.ValidateDefinition(c); err != nil {
		return nil, errors.Wrap(err, "validate exchange coupon")
	}

	if err := i.coupons.Create(ctx, c); err != nil {
		return nil, errors.Wrap(err, "create exchange coupon")
	}

	cl := &claim.Claim{
		CouponID:   c.ID,
		CustomerID: customerID,
		ClaimedAt:  now,
		ExpiresAt:  now.AddDate(0, 0, c.ValidAfterClaimDays),
		UsageCount: 0,
		UsageLimit: c.UsageLimitPerUser,
	}
	if err := i.claims.Create(ctx, cl); err != nil {
		return nil, errors.Wrap(err, "create exchange claim")
	}

	return c, nil
}
