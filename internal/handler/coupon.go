package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"

	"github.com/mireven/shopfront/internal/domain/claim"
	"github.com/mireven/shopfront/internal/domain/coupon"
)

// ListAvailableCoupons returns the coupons a customer could still claim.
// Without a customerId query parameter it returns the anonymous view.
func (h *Handler) ListAvailableCoupons(w http.ResponseWriter, r *http.Request) {
	customerID := r.URL.Query().Get("customerId")

	coupons, err := h.coupons.ListAvailable(r.Context(), customerID, h.now())
	if err != nil {
		respondInternal(w, r, err)
		return
	}

	resp := make([]couponResponse, len(coupons))
	for i := range coupons {
		resp[i] = toCouponResponse(&coupons[i])
	}
	respondJSON(w, r, http.StatusOK, resp)
}

// ListClaimedCoupons returns the customer's claimed coupons with their
// claims.
func (h *Handler) ListClaimedCoupons(w http.ResponseWriter, r *http.Request) {
	customerID := chi.URLParam(r, "customerID")
	if customerID == "" {
		respondError(w, r, http.StatusBadRequest, "customer id required")
		return
	}

	claimed, err := h.claims.ListClaimed(r.Context(), customerID)
	if err != nil {
		respondInternal(w, r, err)
		return
	}

	resp := make([]claimedCouponResponse, len(claimed))
	for i := range claimed {
		resp[i] = claimedCouponResponse{
			Coupon: toCouponResponse(&claimed[i].Coupon),
			Claim:  toClaimResponse(&claimed[i].Claim),
		}
	}
	respondJSON(w, r, http.StatusOK, resp)
}

type claimRequest struct {
	CustomerID string `json:"customerId"`
}

// ClaimCoupon records a claim for the customer. The store is authoritative:
// a duplicate claim from another session comes back 409 and the client must
// reconcile its optimistic state.
func (h *Handler) ClaimCoupon(w http.ResponseWriter, r *http.Request) {
	couponID := chi.URLParam(r, "couponID")

	var req claimRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.CustomerID == "" {
		respondError(w, r, http.StatusBadRequest, "customer id required")
		return
	}

	cl, err := h.claims.Claim(r.Context(), couponID, req.CustomerID)
	if err != nil {
		h.mapClaimError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusCreated, toClaimResponse(cl))
}

// mapClaimError converts claiming failures to HTTP statuses.
func (h *Handler) mapClaimError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, coupon.ErrNotFound):
		respondError(w, r, http.StatusNotFound, "coupon not found")
	case errors.Is(err, claim.ErrAlreadyClaimed):
		respondError(w, r, http.StatusConflict, "coupon already claimed")
	case errors.Is(err, claim.ErrNotAssigned):
		respondError(w, r, http.StatusForbidden, "coupon not available for this customer")
	case errors.Is(err, claim.ErrNotActive):
		respondError(w, r, http.StatusUnprocessableEntity, "coupon is not active")
	case errors.Is(err, claim.ErrOutsideCampaignWindow):
		respondError(w, r, http.StatusUnprocessableEntity, "coupon campaign is not running")
	default:
		respondInternal(w, r, err)
	}
}
