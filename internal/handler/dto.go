package handler

import (
	"time"

	"github.com/mireven/shopfront/internal/domain/claim"
	"github.com/mireven/shopfront/internal/domain/coupon"
)

type conditionsResponse struct {
	MinSpend       float64  `json:"minSpend"`
	FirstTimeBuyer bool     `json:"firstTimeBuyer"`
	MaxCap         *float64 `json:"maxCap,omitempty"`
}

type couponResponse struct {
	ID                  string             `json:"id"`
	Label               string             `json:"label"`
	Type                string             `json:"type"`
	Discount            float64            `json:"discount"`
	Conditions          conditionsResponse `json:"conditions"`
	CampaignStart       time.Time          `json:"campaignStart"`
	CampaignEnd         time.Time          `json:"campaignEnd"`
	ValidAfterClaimDays int                `json:"validAfterClaimDays"`
	Active              bool               `json:"active"`
	AssignTo            string             `json:"assignTo"`
	AssignedUsers       []string           `json:"assignedUsers,omitempty"`
	UsageLimitPerUser   int                `json:"usageLimitPerUser"`
	CurrentUsage        int                `json:"currentUsage"`
	AutoIssued          bool               `json:"autoIssued"`
}

type claimResponse struct {
	CouponID   string    `json:"couponId"`
	CustomerID string    `json:"customerId"`
	ClaimedAt  time.Time `json:"claimedAt"`
	ExpiresAt  time.Time `json:"expiresAt"`
	UsageCount int       `json:"usageCount"`
	UsageLimit int       `json:"usageLimit"`
}

type claimedCouponResponse struct {
	Coupon couponResponse `json:"coupon"`
	Claim  claimResponse  `json:"claim"`
}

func toCouponResponse(c *coupon.Coupon) couponResponse {
	resp := couponResponse{
		ID:       c.ID,
		Label:    c.Label,
		Type:     string(c.Type),
		Discount: c.Discount.InexactFloat64(),
		Conditions: conditionsResponse{
			MinSpend:       c.Conditions.MinSpend.InexactFloat64(),
			FirstTimeBuyer: c.Conditions.FirstTimeBuyer,
		},
		CampaignStart:       c.CampaignStart,
		CampaignEnd:         c.CampaignEnd,
		ValidAfterClaimDays: c.ValidAfterClaimDays,
		Active:              c.Active,
		AssignTo:            string(c.AssignTo),
		AssignedUsers:       c.AssignedUsers,
		UsageLimitPerUser:   c.UsageLimitPerUser,
		CurrentUsage:        c.CurrentUsage,
		AutoIssued:          c.AutoIssued,
	}
	if cap := c.Conditions.MaxCap; cap != nil {
		v := cap.InexactFloat64()
		resp.Conditions.MaxCap = &v
	}
	return resp
}

func toClaimResponse(cl *claim.Claim) claimResponse {
	return claimResponse{
		CouponID:   cl.CouponID,
		CustomerID: cl.CustomerID,
		ClaimedAt:  cl.ClaimedAt,
		ExpiresAt:  cl.ExpiresAt,
		UsageCount: cl.UsageCount,
		UsageLimit: cl.UsageLimit,
	}
}
