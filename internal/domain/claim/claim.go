// Package claim records which customer has taken which coupon and governs
// the claiming rules. A claim starts the coupon's per-customer usability
// clock, independent of the campaign window.
package claim

import (
	"context"
	"time"

	"github.com/go-faster/errors"

	"github.com/mireven/shopfront/internal/domain/coupon"
)

var (
	// ErrAlreadyClaimed is returned when a (coupon, customer) claim already
	// exists. Claiming is idempotent-safe, not repeatable.
	ErrAlreadyClaimed = errors.New("coupon already claimed")
	// ErrNotAssigned is returned when the coupon's audience excludes the
	// customer.
	ErrNotAssigned = errors.New("coupon not assigned to this customer")
	// ErrNotActive is returned when the coupon is disabled.
	ErrNotActive = errors.New("coupon is not active")
	// ErrOutsideCampaignWindow is returned when claiming before the campaign
	// starts or after it ends.
	ErrOutsideCampaignWindow = errors.New("outside campaign window")
	// ErrNotFound is returned when no claim exists for a (coupon, customer)
	// pair.
	ErrNotFound = errors.New("claim not found")
	// ErrUsageExhausted is returned when an increment would exceed the
	// per-customer usage limit. It signals a lost race with another session;
	// the caller reconciles via the change feed.
	ErrUsageExhausted = errors.New("claim usage exhausted")
)

// Claim is one customer's hold on one coupon.
type Claim struct {
	CouponID   string
	CustomerID string
	ClaimedAt  time.Time
	// ExpiresAt is ClaimedAt plus the coupon's ValidAfterClaimDays.
	ExpiresAt time.Time
	// UsageCount never exceeds the coupon's UsageLimitPerUser; the backing
	// store enforces this with a guarded update.
	UsageCount int
	UsageLimit int
}

// Expired reports whether the claim window has elapsed.
func (c *Claim) Expired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}

// Exhausted reports whether the claim has no uses left.
func (c *Claim) Exhausted() bool {
	return c.UsageCount >= c.UsageLimit
}

// Repository provides persistence for claims. Uniqueness of
// (coupon, customer) and the usage-limit guard are enforced here, not by
// callers.
type Repository interface {
	// Create inserts a claim, returning ErrAlreadyClaimed if one exists for
	// the pair.
	Create(ctx context.Context, c *Claim) error
	// Get returns the claim for the pair, or ErrNotFound.
	Get(ctx context.Context, couponID, customerID string) (*Claim, error)
	// ListByCustomer returns the customer's claims with their coupons.
	ListByCustomer(ctx context.Context, customerID string) ([]Claimed, error)
	// IncrementUsage bumps the usage counter, returning ErrUsageExhausted
	// when the claim has no uses left.
	IncrementUsage(ctx context.Context, couponID, customerID string) error
}

// Claimed pairs a claim with its coupon for listing.
type Claimed struct {
	Coupon coupon.Coupon
	Claim  Claim
}
