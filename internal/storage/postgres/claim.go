package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/mireven/shopfront/internal/domain/claim"
	"github.com/mireven/shopfront/internal/domain/coupon"
)

const (
	insertClaimSQL = `INSERT INTO claims (coupon_id, customer_id, claimed_at, expires_at, usage_count, usage_limit)
		VALUES ($1, $2, $3, $4, $5, $6)`

	getClaimSQL = `SELECT coupon_id, customer_id, claimed_at, expires_at, usage_count, usage_limit
		FROM claims WHERE coupon_id = $1 AND customer_id = $2`

	listClaimedSQL = `SELECT ` + couponColumns + `,
		cl.coupon_id, cl.customer_id, cl.claimed_at, cl.expires_at, cl.usage_count, cl.usage_limit
		FROM claims cl JOIN coupons ON coupons.id = cl.coupon_id
		WHERE cl.customer_id = $1
		ORDER BY cl.claimed_at DESC`

	incrementClaimUsageSQL = `UPDATE claims SET usage_count = usage_count + 1
		WHERE coupon_id = $1 AND customer_id = $2 AND usage_count < usage_limit`
)

// uniqueViolation is the PostgreSQL error code for duplicate keys.
const uniqueViolation = "23505"

var _ claim.Repository = (*ClaimRepository)(nil)

// ClaimRepository implements claim.Repository backed by PostgreSQL. The
// primary key on (coupon_id, customer_id) gives claims their at-most-once
// semantics; concurrent claims from two sessions resolve to exactly one
// inserted row and one ErrAlreadyClaimed.
type ClaimRepository struct {
	pool *pgxpool.Pool
}

// NewClaimRepository returns a ClaimRepository that uses the given pool.
func NewClaimRepository(pool *pgxpool.Pool) *ClaimRepository {
	return &ClaimRepository{pool: pool}
}

// Create inserts a claim, mapping duplicate-key violations to
// claim.ErrAlreadyClaimed.
func (r *ClaimRepository) Create(ctx context.Context, cl *claim.Claim) error {
	_, err := r.pool.Exec(ctx, insertClaimSQL,
		cl.CouponID, cl.CustomerID, cl.ClaimedAt, cl.ExpiresAt, cl.UsageCount, cl.UsageLimit,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return claim.ErrAlreadyClaimed
		}
		return fmt.Errorf("creating claim for coupon %q: %w", cl.CouponID, err)
	}
	return nil
}

// Get returns the claim for the (coupon, customer) pair.
func (r *ClaimRepository) Get(ctx context.Context, couponID, customerID string) (*claim.Claim, error) {
	rows, err := r.pool.Query(ctx, getClaimSQL, couponID, customerID)
	if err != nil {
		return nil, fmt.Errorf("finding claim for coupon %q: %w", couponID, err)
	}
	cl, err := pgx.CollectExactlyOneRow(rows, scanClaim)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, claim.ErrNotFound
		}
		return nil, fmt.Errorf("finding claim for coupon %q: %w", couponID, err)
	}
	return &cl, nil
}

// ListByCustomer returns the customer's claims joined with their coupons.
func (r *ClaimRepository) ListByCustomer(ctx context.Context, customerID string) ([]claim.Claimed, error) {
	rows, err := r.pool.Query(ctx, listClaimedSQL, customerID)
	if err != nil {
		return nil, fmt.Errorf("listing claims for customer %q: %w", customerID, err)
	}
	claimed, err := pgx.CollectRows(rows, scanClaimed)
	if err != nil {
		return nil, fmt.Errorf("listing claims for customer %q: %w", customerID, err)
	}
	return claimed, nil
}

// IncrementUsage bumps the usage counter with the limit guard in the WHERE
// clause. Zero rows affected means either no claim or no uses left.
func (r *ClaimRepository) IncrementUsage(ctx context.Context, couponID, customerID string) error {
	tag, err := r.pool.Exec(ctx, incrementClaimUsageSQL, couponID, customerID)
	if err != nil {
		return fmt.Errorf("incrementing usage for coupon %q: %w", couponID, err)
	}
	if tag.RowsAffected() == 0 {
		if _, err := r.Get(ctx, couponID, customerID); err != nil {
			return err
		}
		return claim.ErrUsageExhausted
	}
	return nil
}

func scanClaim(row pgx.CollectableRow) (claim.Claim, error) {
	var cl claim.Claim
	err := row.Scan(
		&cl.CouponID, &cl.CustomerID, &cl.ClaimedAt, &cl.ExpiresAt,
		&cl.UsageCount, &cl.UsageLimit,
	)
	return cl, err
}

func scanClaimed(row pgx.CollectableRow) (claim.Claimed, error) {
	var (
		cd           claim.Claimed
		discountType string
		assignTo     string
		maxCap       decimal.NullDecimal
	)
	err := row.Scan(
		&cd.Coupon.ID, &cd.Coupon.Label, &discountType, &cd.Coupon.Discount,
		&cd.Coupon.Conditions.MinSpend, &cd.Coupon.Conditions.FirstTimeBuyer,
		&maxCap, &cd.Coupon.CampaignStart, &cd.Coupon.CampaignEnd,
		&cd.Coupon.ValidAfterClaimDays, &cd.Coupon.Active, &assignTo,
		&cd.Coupon.AssignedUsers, &cd.Coupon.UsageLimitPerUser,
		&cd.Coupon.CurrentUsage, &cd.Coupon.AutoIssued,
		&cd.Coupon.CreatedAt, &cd.Coupon.UpdatedAt,
		&cd.Claim.CouponID, &cd.Claim.CustomerID, &cd.Claim.ClaimedAt,
		&cd.Claim.ExpiresAt, &cd.Claim.UsageCount, &cd.Claim.UsageLimit,
	)
	cd.Coupon.Type = coupon.DiscountType(discountType)
	cd.Coupon.AssignTo = coupon.Audience(assignTo)
	if maxCap.Valid {
		cd.Coupon.Conditions.MaxCap = &maxCap.Decimal
	}
	return cd, err
}
