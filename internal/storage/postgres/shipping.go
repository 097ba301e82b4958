package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mireven/shopfront/internal/domain/shipping"
)

const getShippingRuleSQL = `SELECT province, base_fee, per_kg FROM shipping_rules WHERE province = $1`

var _ shipping.RateTable = (*ShippingRateTable)(nil)

// ShippingRateTable implements shipping.RateTable backed by the
// shipping_rules reference table.
type ShippingRateTable struct {
	pool *pgxpool.Pool
}

// NewShippingRateTable returns a ShippingRateTable that uses the given pool.
func NewShippingRateTable(pool *pgxpool.Pool) *ShippingRateTable {
	return &ShippingRateTable{pool: pool}
}

// RuleFor returns the rule for the province, or shipping.ErrNoRule.
func (t *ShippingRateTable) RuleFor(ctx context.Context, province string) (*shipping.Rule, error) {
	var rule shipping.Rule
	err := t.pool.QueryRow(ctx, getShippingRuleSQL, province).Scan(
		&rule.Province, &rule.BaseFee, &rule.PerKg,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shipping.ErrNoRule
		}
		return nil, fmt.Errorf("finding shipping rule for %q: %w", province, err)
	}
	return &rule, nil
}
