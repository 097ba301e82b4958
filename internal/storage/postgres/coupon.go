package postgres

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/mireven/shopfront/internal/domain/coupon"
)

const couponColumns = `id, label, discount_type, discount, min_spend, first_time_buyer,
	max_cap, campaign_start, campaign_end, valid_after_claim_days, active,
	assign_to, assigned_users, usage_limit_per_user, current_usage, auto_issued,
	created_at, updated_at`

const (
	getCouponSQL = `SELECT ` + couponColumns + ` FROM coupons WHERE id = $1`

	insertCouponSQL = `INSERT INTO coupons (id, label, discount_type, discount, min_spend,
		first_time_buyer, max_cap, campaign_start, campaign_end, valid_after_claim_days,
		active, assign_to, assigned_users, usage_limit_per_user, auto_issued)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

	updateCouponSQL = `UPDATE coupons SET label = $2, discount_type = $3, discount = $4,
		min_spend = $5, first_time_buyer = $6, max_cap = $7, campaign_start = $8,
		campaign_end = $9, valid_after_claim_days = $10, active = $11, assign_to = $12,
		assigned_users = $13, usage_limit_per_user = $14, updated_at = now()
		WHERE id = $1 AND auto_issued = FALSE`

	setCouponActiveSQL = `UPDATE coupons SET active = $2, updated_at = now() WHERE id = $1
		RETURNING ` + couponColumns

	deleteCouponSQL = `DELETE FROM coupons WHERE id = $1`

	listAvailableSQL = `SELECT ` + couponColumns + ` FROM coupons
		WHERE active = TRUE
		  AND $2 BETWEEN campaign_start AND campaign_end
		  AND (assign_to = 'everyone' OR $1 = ANY(assigned_users))
		  AND NOT EXISTS (
			SELECT 1 FROM claims WHERE claims.coupon_id = coupons.id AND claims.customer_id = $1
		  )
		ORDER BY campaign_end, id`

	listAvailableAnonSQL = `SELECT ` + couponColumns + ` FROM coupons
		WHERE active = TRUE
		  AND $1 BETWEEN campaign_start AND campaign_end
		  AND assign_to = 'everyone'
		ORDER BY campaign_end, id`

	incrementCouponUsageSQL = `UPDATE coupons SET current_usage = current_usage + 1,
		updated_at = now() WHERE id = $1`

	allCouponIDsSQL = `SELECT id FROM coupons`
)

// Bloom filter sizing for the known-id cache. The filter only needs to
// cover the coupon table, which stays small; false positives just cost a
// query.
const (
	bloomCapacity = 1_000_000
	bloomFPR      = 0.001
)

var _ coupon.Repository = (*CouponRepository)(nil)

// CouponRepository implements coupon.Repository backed by PostgreSQL.
//
// It keeps a bloom filter of known coupon ids as a negative-lookup cache:
// reconciliation traffic after a change-feed event often asks for ids that
// were just deleted or never existed, and those lookups short-circuit
// without touching the database. Deletes cannot leave the filter, so a
// deleted id degrades to a regular query.
type CouponRepository struct {
	pool *pgxpool.Pool

	mu     sync.Mutex
	known  *bloom.BloomFilter
	warmed bool
}

// NewCouponRepository returns a CouponRepository that uses the given pool.
func NewCouponRepository(pool *pgxpool.Pool) *CouponRepository {
	return &CouponRepository{
		pool:  pool,
		known: bloom.NewWithEstimates(bloomCapacity, bloomFPR),
	}
}

// Warm seeds the known-id filter from the coupons table. Until it runs the
// filter is bypassed.
func (r *CouponRepository) Warm(ctx context.Context) error {
	rows, err := r.pool.Query(ctx, allCouponIDsSQL)
	if err != nil {
		return fmt.Errorf("loading coupon ids: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return fmt.Errorf("loading coupon ids: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range ids {
		r.known.AddString(id)
	}
	r.warmed = true
	return nil
}

// mightExist reports whether the id could be in the table. Always true
// before Warm has completed.
func (r *CouponRepository) mightExist(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.warmed {
		return true
	}
	return r.known.TestString(id)
}

func (r *CouponRepository) remember(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.known.AddString(id)
}

// GetByID returns the coupon, or coupon.ErrNotFound.
func (r *CouponRepository) GetByID(ctx context.Context, id string) (*coupon.Coupon, error) {
	if !r.mightExist(id) {
		return nil, coupon.ErrNotFound
	}

	rows, err := r.pool.Query(ctx, getCouponSQL, id)
	if err != nil {
		return nil, fmt.Errorf("finding coupon %q: %w", id, err)
	}
	c, err := pgx.CollectExactlyOneRow(rows, scanCoupon)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, coupon.ErrNotFound
		}
		return nil, fmt.Errorf("finding coupon %q: %w", id, err)
	}
	return &c, nil
}

// Create inserts a new coupon definition.
func (r *CouponRepository) Create(ctx context.Context, c *coupon.Coupon) error {
	_, err := r.pool.Exec(ctx, insertCouponSQL,
		c.ID, c.Label, string(c.Type), c.Discount, c.Conditions.MinSpend,
		c.Conditions.FirstTimeBuyer, maxCapParam(c), c.CampaignStart, c.CampaignEnd,
		c.ValidAfterClaimDays, c.Active, string(c.AssignTo), c.AssignedUsers,
		c.UsageLimitPerUser, c.AutoIssued,
	)
	if err != nil {
		return fmt.Errorf("creating coupon %q: %w", c.ID, err)
	}
	r.remember(c.ID)
	return nil
}

// Update rewrites an admin-authored coupon. Auto-issued coupons are excluded
// by the statement itself; an update that matches no row reports either
// not-found or the immutability error depending on which applies.
func (r *CouponRepository) Update(ctx context.Context, c *coupon.Coupon) error {
	tag, err := r.pool.Exec(ctx, updateCouponSQL,
		c.ID, c.Label, string(c.Type), c.Discount, c.Conditions.MinSpend,
		c.Conditions.FirstTimeBuyer, maxCapParam(c), c.CampaignStart, c.CampaignEnd,
		c.ValidAfterClaimDays, c.Active, string(c.AssignTo), c.AssignedUsers,
		c.UsageLimitPerUser,
	)
	if err != nil {
		return fmt.Errorf("updating coupon %q: %w", c.ID, err)
	}
	if tag.RowsAffected() == 0 {
		if _, err := r.GetByID(ctx, c.ID); err != nil {
			return err
		}
		return coupon.ErrAutoIssuedImmutable
	}
	return nil
}

// SetActive toggles a coupon (auto-issued ones included) and returns the
// updated row.
func (r *CouponRepository) SetActive(ctx context.Context, id string, active bool) (*coupon.Coupon, error) {
	rows, err := r.pool.Query(ctx, setCouponActiveSQL, id, active)
	if err != nil {
		return nil, fmt.Errorf("toggling coupon %q: %w", id, err)
	}
	c, err := pgx.CollectExactlyOneRow(rows, scanCoupon)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, coupon.ErrNotFound
		}
		return nil, fmt.Errorf("toggling coupon %q: %w", id, err)
	}
	return &c, nil
}

// Delete removes a coupon and, via cascade, its claims.
func (r *CouponRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, deleteCouponSQL, id)
	if err != nil {
		return fmt.Errorf("deleting coupon %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return coupon.ErrNotFound
	}
	return nil
}

// ListAvailable returns coupons the customer could still claim.
func (r *CouponRepository) ListAvailable(ctx context.Context, customerID string, now time.Time) ([]coupon.Coupon, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if customerID == "" {
		rows, err = r.pool.Query(ctx, listAvailableAnonSQL, now)
	} else {
		rows, err = r.pool.Query(ctx, listAvailableSQL, customerID, now)
	}
	if err != nil {
		return nil, fmt.Errorf("listing available coupons: %w", err)
	}
	coupons, err := pgx.CollectRows(rows, scanCoupon)
	if err != nil {
		return nil, fmt.Errorf("listing available coupons: %w", err)
	}
	return coupons, nil
}

// IncrementUsage bumps the aggregate redemption counter.
func (r *CouponRepository) IncrementUsage(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, incrementCouponUsageSQL, id)
	if err != nil {
		return fmt.Errorf("incrementing usage for coupon %q: %w", id, err)
	}
	return nil
}

func maxCapParam(c *coupon.Coupon) decimal.NullDecimal {
	if c.Conditions.MaxCap == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *c.Conditions.MaxCap, Valid: true}
}

func scanCoupon(row pgx.CollectableRow) (coupon.Coupon, error) {
	var (
		c            coupon.Coupon
		discountType string
		assignTo     string
		maxCap       decimal.NullDecimal
	)
	err := row.Scan(
		&c.ID, &c.Label, &discountType, &c.Discount, &c.Conditions.MinSpend,
		&c.Conditions.FirstTimeBuyer, &maxCap, &c.CampaignStart, &c.CampaignEnd,
		&c.ValidAfterClaimDays, &c.Active, &assignTo, &c.AssignedUsers,
		&c.UsageLimitPerUser, &c.CurrentUsage, &c.AutoIssued,
		&c.CreatedAt, &c.UpdatedAt,
	)
	c.Type = coupon.DiscountType(discountType)
	c.AssignTo = coupon.Audience(assignTo)
	if maxCap.Valid {
		c.Conditions.MaxCap = &maxCap.Decimal
	}
	return c, err
}
