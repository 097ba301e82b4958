package claim

import (
	"context"
	"time"

	"github.com/go-faster/errors"

	"github.com/mireven/shopfront/internal/domain/coupon"
)

// Service applies the claiming rules and records claims. The repository is
// the authority: a concurrent claim from another session surfaces here as
// ErrAlreadyClaimed and the caller must reconcile, not retry.
type Service struct {
	coupons coupon.Repository
	claims  Repository
	now     func() time.Time
}

// NewService creates a claim Service backed by the given repositories.
func NewService(coupons coupon.Repository, claims Repository) *Service {
	return &Service{coupons: coupons, claims: claims, now: time.Now}
}

// Claim records that the customer takes the coupon. The checks run in
// order: audience, active flag, campaign window, then the duplicate-claim
// guard on insert.
func (s *Service) Claim(ctx context.Context, couponID, customerID string) (*Claim, error) {
	c, err := s.coupons.GetByID(ctx, couponID)
	if err != nil {
		if errors.Is(err, coupon.ErrNotFound) {
			return nil, coupon.ErrNotFound
		}
		return nil, errors.Wrap(err, "lookup coupon")
	}

	if !c.AssignedTo(customerID) {
		return nil, ErrNotAssigned
	}
	if !c.Active {
		return nil, ErrNotActive
	}

	now := s.now()
	if !c.InCampaignWindow(now) {
		return nil, ErrOutsideCampaignWindow
	}

	cl := &Claim{
		CouponID:   couponID,
		CustomerID: customerID,
		ClaimedAt:  now,
		ExpiresAt:  now.AddDate(0, 0, c.ValidAfterClaimDays),
		UsageCount: 0,
		UsageLimit: c.UsageLimitPerUser,
	}

	if err := s.claims.Create(ctx, cl); err != nil {
		if errors.Is(err, ErrAlreadyClaimed) {
			return nil, ErrAlreadyClaimed
		}
		return nil, errors.Wrap(err, "create claim")
	}

	return cl, nil
}

// ListClaimed returns the customer's claimed coupons with their claims.
func (s *Service) ListClaimed(ctx context.Context, customerID string) ([]Claimed, error) {
	claimed, err := s.claims.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, errors.Wrap(err, "list claims")
	}
	return claimed, nil
}

// RecordUsage increments both the per-customer claim counter and the
// coupon's aggregate counter after an order is finalized. The claim counter
// is the guarded one; the aggregate is advisory and bumped best-effort
// after the guard passes.
func (s *Service) RecordUsage(ctx context.Context, couponID, customerID string) error {
	if err := s.claims.IncrementUsage(ctx, couponID, customerID); err != nil {
		if errors.Is(err, ErrUsageExhausted) || errors.Is(err, ErrNotFound) {
			return err
		}
		return errors.Wrap(err, "increment claim usage")
	}
	if err := s.coupons.IncrementUsage(ctx, couponID); err != nil {
		return errors.Wrap(err, "increment coupon usage")
	}
	return nil
}
