package checkout

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/mireven/shopfront/internal/domain/claim"
	"github.com/mireven/shopfront/internal/domain/coupon"
	"github.com/mireven/shopfront/internal/domain/shipping"
)

// Sentinel errors for checkout evaluation input.
var (
	ErrEmptyCart       = errors.New("cart items required")
	ErrInvalidQuantity = errors.New("quantity must be greater than 0")
)

// EvaluateRequest is one checkout evaluation: a cart snapshot, the currently
// selected coupon (optional), and the destination province (optional).
// FirstTimeBuyer comes from the session layer; how "first-time" is decided
// is not this engine's business.
type EvaluateRequest struct {
	CustomerID     string
	Cart           Cart
	CouponID       string
	Province       string
	FirstTimeBuyer bool
}

// Service loads the inputs for a checkout evaluation and runs the pure
// pipeline: shipping quote, eligibility, discount, assembly.
type Service struct {
	coupons coupon.Repository
	claims  claim.Repository
	rates   shipping.RateTable
	now     func() time.Time
}

// NewService creates a checkout Service with the required collaborators.
func NewService(
	coupons coupon.Repository,
	claims claim.Repository,
	rates shipping.RateTable,
) *Service {
	return &Service{
		coupons: coupons,
		claims:  claims,
		rates:   rates,
		now:     time.Now,
	}
}

// Evaluate computes the quote for the request. An ineligible selected coupon
// is not an error: the quote comes back blocked with the reason attached,
// discounts zeroed, so the caller can show the customer why and keep the
// selection. Errors are reserved for invalid input and infrastructure
// failures.
func (s *Service) Evaluate(ctx context.Context, req EvaluateRequest) (*Quote, error) {
	if len(req.Cart.Items) == 0 {
		return nil, ErrEmptyCart
	}
	for _, item := range req.Cart.Items {
		if item.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
	}

	subtotal := req.Cart.Subtotal()
	shippingFee, err := s.quoteShipping(ctx, req.Province, req.Cart.TotalWeightKg())
	if err != nil {
		return nil, err
	}

	if req.CouponID == "" {
		q := Assemble(subtotal, shippingFee, coupon.Breakdown{}, nil)
		return &q, nil
	}

	c, err := s.coupons.GetByID(ctx, req.CouponID)
	if err != nil {
		if errors.Is(err, coupon.ErrNotFound) {
			return nil, coupon.ErrNotFound
		}
		return nil, errors.Wrap(err, "lookup coupon")
	}

	cl, err := s.claims.Get(ctx, req.CouponID, req.CustomerID)
	if err != nil && !errors.Is(err, claim.ErrNotFound) {
		return nil, errors.Wrap(err, "lookup claim")
	}

	eligErr := Evaluate(EvalInput{
		Coupon:         c,
		Claim:          cl,
		Subtotal:       subtotal,
		CustomerID:     req.CustomerID,
		FirstTimeBuyer: req.FirstTimeBuyer,
		Now:            s.now(),
	})
	if eligErr != nil {
		q := Assemble(subtotal, shippingFee, coupon.Breakdown{}, eligErr)
		return &q, nil
	}

	breakdown, err := coupon.ApplyDiscount(c, subtotal, shippingFee)
	if err != nil {
		return nil, errors.Wrap(err, "apply discount")
	}

	q := Assemble(subtotal, shippingFee, breakdown, nil)
	return &q, nil
}

// quoteShipping returns the shipping fee, or nil when the province is empty
// or has no rule.
func (s *Service) quoteShipping(ctx context.Context, province string, weightKg decimal.Decimal) (*decimal.Decimal, error) {
	if province == "" {
		return nil, nil
	}
	rule, err := s.rates.RuleFor(ctx, province)
	if err != nil {
		if errors.Is(err, shipping.ErrNoRule) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "lookup shipping rule")
	}
	fee := shipping.Quote(rule, weightKg)
	return &fee, nil
}
