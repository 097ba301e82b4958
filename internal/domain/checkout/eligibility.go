package checkout

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mireven/shopfront/internal/domain/claim"
	"github.com/mireven/shopfront/internal/domain/coupon"
)

// Reason identifies why a selected coupon cannot be applied.
type Reason string

const (
	ReasonNotClaimed     Reason = "not_claimed"
	ReasonInactive       Reason = "inactive"
	ReasonClaimExpired   Reason = "claim_expired"
	ReasonUsageExhausted Reason = "usage_exhausted"
	ReasonMinSpendNotMet Reason = "min_spend_not_met"
	ReasonNotAssigned    Reason = "not_assigned"
	ReasonFirstOrderOnly Reason = "first_order_only"
)

// EligibilityError carries the typed reason and a customer-facing message.
// It blocks checkout but never destroys the coupon selection; the customer
// can adjust the cart or pick another coupon.
type EligibilityError struct {
	Reason  Reason
	Message string
}

func (e *EligibilityError) Error() string {
	return e.Message
}

// EvalInput is everything eligibility evaluation needs. FirstTimeBuyer is
// supplied by the caller from an external predicate; the evaluator never
// derives it.
type EvalInput struct {
	Coupon         *coupon.Coupon
	Claim          *claim.Claim
	Subtotal       decimal.Decimal
	CustomerID     string
	FirstTimeBuyer bool
	Now            time.Time
}

// Evaluate runs the eligibility checks in order, short-circuiting on the
// first failure. It returns nil when the coupon may be applied.
//
// The claim window, not the campaign window, governs usability here: a
// claimed coupon stays usable until its own expiry even if the campaign has
// since ended.
func Evaluate(in EvalInput) *EligibilityError {
	c := in.Coupon

	if in.Claim == nil {
		return &EligibilityError{
			Reason:  ReasonNotClaimed,
			Message: "coupon has not been claimed",
		}
	}

	if !c.Active {
		return &EligibilityError{
			Reason:  ReasonInactive,
			Message: "coupon is no longer active",
		}
	}

	if in.Now.Before(in.Claim.ClaimedAt) || in.Claim.Expired(in.Now) {
		return &EligibilityError{
			Reason:  ReasonClaimExpired,
			Message: "coupon claim has expired",
		}
	}

	if in.Claim.Exhausted() {
		return &EligibilityError{
			Reason:  ReasonUsageExhausted,
			Message: "coupon has already been used",
		}
	}

	if in.Subtotal.LessThan(c.Conditions.MinSpend) {
		return &EligibilityError{
			Reason:  ReasonMinSpendNotMet,
			Message: fmt.Sprintf("requires minimum spend of %s", c.Conditions.MinSpend.StringFixed(2)),
		}
	}

	if !c.AssignedTo(in.CustomerID) {
		return &EligibilityError{
			Reason:  ReasonNotAssigned,
			Message: "coupon is not available for this customer",
		}
	}

	if c.Conditions.FirstTimeBuyer && !in.FirstTimeBuyer {
		return &EligibilityError{
			Reason:  ReasonFirstOrderOnly,
			Message: "coupon is for first-time buyers only",
		}
	}

	return nil
}
