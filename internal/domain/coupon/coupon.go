package coupon

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// DiscountType enumerates the supported coupon discount strategies.
type DiscountType string

const (
	// DiscountPercentage applies a percentage-based discount to the subtotal.
	DiscountPercentage DiscountType = "percentage"
	// DiscountFixed applies a fixed monetary discount capped at the subtotal.
	DiscountFixed DiscountType = "fixed"
	// DiscountFreeShipping waives the shipping fee for the order.
	DiscountFreeShipping DiscountType = "free_shipping"
)

// Audience enumerates who may see and claim a coupon.
type Audience string

const (
	// AudienceEveryone makes the coupon visible to all customers.
	AudienceEveryone Audience = "everyone"
	// AudienceSpecific restricts the coupon to an explicit customer list.
	AudienceSpecific Audience = "specific"
)

// ErrNotFound is returned when a requested coupon does not exist.
var ErrNotFound = errors.New("coupon not found")

// ErrAutoIssuedImmutable is returned when the admin edit path attempts to
// modify a coupon minted by the exchange workflow. Such coupons may only be
// toggled active/inactive.
var ErrAutoIssuedImmutable = errors.New("auto-issued coupons cannot be edited")

// Conditions holds the eligibility constraints attached to a coupon.
type Conditions struct {
	// MinSpend is the minimum cart subtotal required to apply the coupon.
	MinSpend decimal.Decimal
	// FirstTimeBuyer restricts the coupon to customers with no prior orders.
	// Whether a customer qualifies is decided by an external predicate; the
	// engine never derives it.
	FirstTimeBuyer bool
	// MaxCap bounds the computed discount for percentage coupons.
	// Nil means uncapped. Meaningless for other types.
	MaxCap *decimal.Decimal
}

// Coupon is a discount rule definition authored by an admin or minted by the
// exchange workflow.
type Coupon struct {
	ID    string
	Label string
	Type  DiscountType

	// Discount is the percentage (1-100) or fixed amount, depending on Type.
	// Zero for free_shipping coupons.
	Discount decimal.Decimal

	Conditions Conditions

	// CampaignStart and CampaignEnd bound when the coupon may be claimed.
	// CampaignEnd is always at least one day after CampaignStart.
	CampaignStart time.Time
	CampaignEnd   time.Time

	// ValidAfterClaimDays is how long a claim stays usable, in days.
	ValidAfterClaimDays int

	Active bool

	AssignTo      Audience
	AssignedUsers []string

	UsageLimitPerUser int

	// CurrentUsage is an aggregate redemption counter kept for admin
	// reporting. The per-customer claim row is authoritative for limits.
	CurrentUsage int

	// AutoIssued marks coupons minted by the exchange workflow. They are
	// immutable through the admin edit path.
	AutoIssued bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// AssignedTo reports whether the coupon's audience includes the customer.
func (c *Coupon) AssignedTo(customerID string) bool {
	if c.AssignTo != AudienceSpecific {
		return true
	}
	for _, id := range c.AssignedUsers {
		if id == customerID {
			return true
		}
	}
	return false
}

// InCampaignWindow reports whether now falls inside the claimable window.
func (c *Coupon) InCampaignWindow(now time.Time) bool {
	return !now.Before(c.CampaignStart) && !now.After(c.CampaignEnd)
}

// Repository provides persistence for coupon definitions.
type Repository interface {
	GetByID(ctx context.Context, id string) (*Coupon, error)
	Create(ctx context.Context, c *Coupon) error
	Update(ctx context.Context, c *Coupon) error
	SetActive(ctx context.Context, id string, active bool) (*Coupon, error)
	Delete(ctx context.Context, id string) error

	// ListAvailable returns coupons a customer could still claim: active,
	// inside the campaign window, audience-eligible, and without an existing
	// claim by this customer. An empty customerID lists the anonymous view
	// (everyone-audience coupons only).
	ListAvailable(ctx context.Context, customerID string, now time.Time) ([]Coupon, error)

	// IncrementUsage bumps the aggregate redemption counter.
	IncrementUsage(ctx context.Context, id string) error
}
