package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mireven/shopfront/internal/domain/coupon"
	"github.com/mireven/shopfront/internal/domain/exchange"
	"github.com/mireven/shopfront/internal/notify"
)

// Manual coupons always use a one-day claim window and a single use per
// customer.
const (
	manualValidAfterClaimDays = 1
	manualUsageLimitPerUser   = 1
)

type conditionsRequest struct {
	MinSpend       decimal.Decimal  `json:"minSpend"`
	FirstTimeBuyer bool             `json:"firstTimeBuyer"`
	MaxCap         *decimal.Decimal `json:"maxCap,omitempty"`
}

type couponRequest struct {
	Label         string            `json:"label"`
	Type          string            `json:"type"`
	Discount      decimal.Decimal   `json:"discount"`
	Conditions    conditionsRequest `json:"conditions"`
	CampaignStart time.Time         `json:"campaignStart"`
	CampaignEnd   time.Time         `json:"campaignEnd"`
	Active        bool              `json:"active"`
	AssignTo      string            `json:"assignTo"`
	AssignedUsers []string          `json:"assignedUsers,omitempty"`
}

func (req *couponRequest) toDomain(id string) *coupon.Coupon {
	return &coupon.Coupon{
		ID:       id,
		Label:    req.Label,
		Type:     coupon.DiscountType(req.Type),
		Discount: req.Discount,
		Conditions: coupon.Conditions{
			MinSpend:       req.Conditions.MinSpend,
			FirstTimeBuyer: req.Conditions.FirstTimeBuyer,
			MaxCap:         req.Conditions.MaxCap,
		},
		CampaignStart:       req.CampaignStart,
		CampaignEnd:         req.CampaignEnd,
		ValidAfterClaimDays: manualValidAfterClaimDays,
		Active:              req.Active,
		AssignTo:            coupon.Audience(req.AssignTo),
		AssignedUsers:       req.AssignedUsers,
		UsageLimitPerUser:   manualUsageLimitPerUser,
	}
}

type fieldErrorResponse struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type validationErrorResponse struct {
	Code    int                  `json:"code"`
	Message string               `json:"message"`
	Fields  []fieldErrorResponse `json:"fields"`
}

// respondValidationError renders every invalid field so the authoring form
// can annotate them. Nothing was persisted.
func respondValidationError(w http.ResponseWriter, r *http.Request, verr *coupon.ValidationError) {
	fields := make([]fieldErrorResponse, len(verr.Fields))
	for i, f := range verr.Fields {
		fields[i] = fieldErrorResponse{Field: f.Field, Message: f.Message}
	}
	respondJSON(w, r, http.StatusBadRequest, validationErrorResponse{
		Code:    http.StatusBadRequest,
		Message: "invalid coupon definition",
		Fields:  fields,
	})
}

// CreateCoupon validates and stores a new admin-authored coupon.
func (h *Handler) CreateCoupon(w http.ResponseWriter, r *http.Request) {
	var req couponRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	c := req.toDomain(uuid.New().String())
	if err := coupon.ValidateDefinition(c); err != nil {
		var verr *coupon.ValidationError
		if errors.As(err, &verr) {
			respondValidationError(w, r, verr)
			return
		}
		respondInternal(w, r, err)
		return
	}

	if err := h.coupons.Create(r.Context(), c); err != nil {
		respondInternal(w, r, err)
		return
	}

	h.hub.Publish(notify.Event{Action: notify.ActionCreated, Coupon: *c})
	respondJSON(w, r, http.StatusCreated, toCouponResponse(c))
}

// UpdateCoupon rewrites an existing coupon. Auto-issued coupons are
// rejected; they may only be toggled.
func (h *Handler) UpdateCoupon(w http.ResponseWriter, r *http.Request) {
	couponID := chi.URLParam(r, "couponID")

	var req couponRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	c := req.toDomain(couponID)
	if err := coupon.ValidateDefinition(c); err != nil {
		var verr *coupon.ValidationError
		if errors.As(err, &verr) {
			respondValidationError(w, r, verr)
			return
		}
		respondInternal(w, r, err)
		return
	}

	if err := h.coupons.Update(r.Context(), c); err != nil {
		switch {
		case errors.Is(err, coupon.ErrNotFound):
			respondError(w, r, http.StatusNotFound, "coupon not found")
		case errors.Is(err, coupon.ErrAutoIssuedImmutable):
			respondError(w, r, http.StatusConflict, "auto-issued coupons cannot be edited")
		default:
			respondInternal(w, r, err)
		}
		return
	}

	h.hub.Publish(notify.Event{Action: notify.ActionUpdated, Coupon: *c})
	respondJSON(w, r, http.StatusOK, toCouponResponse(c))
}

type toggleRequest struct {
	Active bool `json:"active"`
}

// ToggleCoupon flips the active flag. This is the only admin mutation
// allowed on auto-issued coupons.
func (h *Handler) ToggleCoupon(w http.ResponseWriter, r *http.Request) {
	couponID := chi.URLParam(r, "couponID")

	var req toggleRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	c, err := h.coupons.SetActive(r.Context(), couponID, req.Active)
	if err != nil {
		if errors.Is(err, coupon.ErrNotFound) {
			respondError(w, r, http.StatusNotFound, "coupon not found")
			return
		}
		respondInternal(w, r, err)
		return
	}

	h.hub.Publish(notify.Event{Action: notify.ActionToggled, Coupon: *c})
	respondJSON(w, r, http.StatusOK, toCouponResponse(c))
}

// DeleteCoupon removes a coupon and its claims.
func (h *Handler) DeleteCoupon(w http.ResponseWriter, r *http.Request) {
	couponID := chi.URLParam(r, "couponID")

	c, err := h.coupons.GetByID(r.Context(), couponID)
	if err != nil {
		if errors.Is(err, coupon.ErrNotFound) {
			respondError(w, r, http.StatusNotFound, "coupon not found")
			return
		}
		respondInternal(w, r, err)
		return
	}

	if err := h.coupons.Delete(r.Context(), couponID); err != nil {
		if errors.Is(err, coupon.ErrNotFound) {
			respondError(w, r, http.StatusNotFound, "coupon not found")
			return
		}
		respondInternal(w, r, err)
		return
	}

	h.hub.Publish(notify.Event{Action: notify.ActionDeleted, Coupon: *c})
	w.WriteHeader(http.StatusNoContent)
}

type issueExchangeRequest struct {
	CustomerID string          `json:"customerId"`
	Amount     decimal.Decimal `json:"amount"`
}

// IssueExchangeCoupon mints a customer-scoped fixed coupon for an approved
// return, issued directly into the claimed state.
func (h *Handler) IssueExchangeCoupon(w http.ResponseWriter, r *http.Request) {
	var req issueExchangeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.CustomerID == "" {
		respondError(w, r, http.StatusBadRequest, "customer id required")
		return
	}

	c, err := h.issuer.Issue(r.Context(), req.CustomerID, req.Amount)
	if err != nil {
		if errors.Is(err, exchange.ErrInvalidAmount) {
			respondError(w, r, http.StatusUnprocessableEntity, "amount must be positive")
			return
		}
		respondInternal(w, r, err)
		return
	}

	h.hub.Publish(notify.Event{Action: notify.ActionCreated, Coupon: *c})
	respondJSON(w, r, http.StatusCreated, toCouponResponse(c))
}
