package coupon

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)
)

// minCampaignSpan is the shortest allowed campaign window.
const minCampaignSpan = 24 * time.Hour

// FieldError describes a single invalid field on a coupon definition.
type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError aggregates every invalid field found on a coupon
// definition. A definition with a non-nil ValidationError is never
// persisted, not even partially.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Error()
	}
	return "invalid coupon definition: " + strings.Join(msgs, "; ")
}

// ValidateDefinition checks a coupon definition against the authoring rules.
// It returns a *ValidationError listing every violated field, or nil when
// the definition is storable.
func ValidateDefinition(c *Coupon) error {
	var fields []FieldError
	add := func(field, message string) {
		fields = append(fields, FieldError{Field: field, Message: message})
	}

	if strings.TrimSpace(c.Label) == "" {
		add("label", "required")
	}

	switch c.Type {
	case DiscountPercentage:
		if c.Discount.LessThan(one) || c.Discount.GreaterThan(hundred) {
			add("discount", "percentage must be between 1 and 100")
		}
		if c.Conditions.MaxCap != nil && c.Conditions.MaxCap.IsNegative() {
			add("conditions.maxCap", "must not be negative")
		}
	case DiscountFixed:
		if c.Discount.IsNegative() {
			add("discount", "fixed amount must not be negative")
		}
	case DiscountFreeShipping:
		if !c.Discount.IsZero() {
			add("discount", "must be empty for free shipping coupons")
		}
	default:
		add("type", fmt.Sprintf("unknown discount type %q", c.Type))
	}

	if c.Conditions.MinSpend.IsNegative() {
		add("conditions.minSpend", "must not be negative")
	}

	if c.CampaignEnd.Before(c.CampaignStart.Add(minCampaignSpan)) {
		add("campaignEnd", "must be at least one day after campaignStart")
	}

	if c.ValidAfterClaimDays < 1 {
		add("validAfterClaimDays", "must be at least 1")
	}
	if c.UsageLimitPerUser < 1 {
		add("usageLimitPerUser", "must be at least 1")
	}

	switch c.AssignTo {
	case AudienceEveryone:
	case AudienceSpecific:
		if len(c.AssignedUsers) == 0 {
			add("assignedUsers", "required for a specific audience")
		}
	default:
		add("assignTo", fmt.Sprintf("unknown audience %q", c.AssignTo))
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}
