package handler

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/mireven/shopfront/internal/domain/checkout"
	"github.com/mireven/shopfront/internal/domain/coupon"
)

type cartItemRequest struct {
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
	WeightKg decimal.Decimal `json:"weightKg"`
}

type evaluateRequest struct {
	CustomerID     string            `json:"customerId"`
	Items          []cartItemRequest `json:"items"`
	CouponID       string            `json:"couponId,omitempty"`
	Province       string            `json:"province,omitempty"`
	FirstTimeBuyer bool              `json:"firstTimeBuyer,omitempty"`
}

type evaluateResponse struct {
	Subtotal         float64  `json:"subtotal"`
	ShippingFee      *float64 `json:"shippingFee"`
	ItemDiscount     float64  `json:"itemDiscount"`
	ShippingDiscount float64  `json:"shippingDiscount"`
	FinalShipping    float64  `json:"finalShipping"`
	FinalTotal       float64  `json:"finalTotal"`
	Blocked          bool     `json:"blocked"`
	BlockingReason   string   `json:"blockingReason,omitempty"`
	BlockingMessage  string   `json:"blockingMessage,omitempty"`
}

// EvaluateCheckout computes the checkout quote for a cart, selected coupon,
// and province. An ineligible coupon still yields 200: the quote comes back
// blocked with the reason, and the proceed action stays disabled client-side.
func (h *Handler) EvaluateCheckout(w http.ResponseWriter, r *http.Request) {
	var req evaluateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	items := make([]checkout.CartItem, len(req.Items))
	for i, item := range req.Items {
		items[i] = checkout.CartItem{
			Price:    item.Price,
			Quantity: item.Quantity,
			WeightKg: item.WeightKg,
		}
	}

	quote, err := h.checkout.Evaluate(r.Context(), checkout.EvaluateRequest{
		CustomerID:     req.CustomerID,
		Cart:           checkout.Cart{Items: items},
		CouponID:       req.CouponID,
		Province:       req.Province,
		FirstTimeBuyer: req.FirstTimeBuyer,
	})
	if err != nil {
		switch {
		case errors.Is(err, checkout.ErrEmptyCart):
			respondError(w, r, http.StatusBadRequest, "cart items required")
		case errors.Is(err, checkout.ErrInvalidQuantity):
			respondError(w, r, http.StatusUnprocessableEntity, "quantity must be greater than 0")
		case errors.Is(err, coupon.ErrNotFound):
			respondError(w, r, http.StatusNotFound, "coupon not found")
		default:
			respondInternal(w, r, err)
		}
		return
	}

	resp := evaluateResponse{
		Subtotal:         quote.Subtotal.InexactFloat64(),
		ItemDiscount:     quote.ItemDiscount.InexactFloat64(),
		ShippingDiscount: quote.ShippingDiscount.InexactFloat64(),
		FinalShipping:    quote.FinalShipping.InexactFloat64(),
		FinalTotal:       quote.FinalTotal.InexactFloat64(),
		Blocked:          quote.Blocked,
	}
	if quote.ShippingFee != nil {
		fee := quote.ShippingFee.InexactFloat64()
		resp.ShippingFee = &fee
	}
	if quote.BlockingError != nil {
		resp.BlockingReason = string(quote.BlockingError.Reason)
		resp.BlockingMessage = quote.BlockingError.Message
	}
	respondJSON(w, r, http.StatusOK, resp)
}
