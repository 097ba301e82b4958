// Package shipping derives shipping fees from the province rate table.
package shipping

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNoRule is returned when a province has no shipping rule. Checkout must
// treat the fee as unknown rather than assume a default.
var ErrNoRule = errors.New("no shipping rule for province")

// Rule holds the fee parameters for one province. Reference data, immutable
// at runtime.
type Rule struct {
	Province string
	BaseFee  decimal.Decimal
	PerKg    decimal.Decimal
}

// RateTable looks up the shipping rule for a province.
type RateTable interface {
	RuleFor(ctx context.Context, province string) (*Rule, error)
}

var oneKg = decimal.NewFromInt(1)

// BillableWeight rounds the cart weight up to the next whole kilogram, with
// a one-kilogram minimum.
func BillableWeight(totalWeightKg decimal.Decimal) decimal.Decimal {
	kg := totalWeightKg.Ceil()
	if kg.LessThan(oneKg) {
		return oneKg
	}
	return kg
}

// Quote computes the shipping fee for the given rule and cart weight:
// baseFee + perKg * billableWeight.
func Quote(rule *Rule, totalWeightKg decimal.Decimal) decimal.Decimal {
	return rule.BaseFee.Add(rule.PerKg.Mul(BillableWeight(totalWeightKg))).Round(2)
}
