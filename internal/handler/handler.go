// Package handler exposes the voucher core over HTTP: public claim and
// checkout endpoints, admin coupon authoring, and the coupon-change feed.
package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mireven/shopfront/internal/domain/checkout"
	"github.com/mireven/shopfront/internal/domain/claim"
	"github.com/mireven/shopfront/internal/domain/coupon"
	"github.com/mireven/shopfront/internal/domain/exchange"
	"github.com/mireven/shopfront/internal/notify"
)

// Handler routes HTTP requests to the domain services.
type Handler struct {
	coupons  coupon.Repository
	claims   *claim.Service
	checkout *checkout.Service
	issuer   *exchange.Issuer
	hub      *notify.Hub
	now      func() time.Time
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(
	coupons coupon.Repository,
	claims *claim.Service,
	checkoutSvc *checkout.Service,
	issuer *exchange.Issuer,
	hub *notify.Hub,
) *Handler {
	return &Handler{
		coupons:  coupons,
		claims:   claims,
		checkout: checkoutSvc,
		issuer:   issuer,
		hub:      hub,
		now:      time.Now,
	}
}

// Routes builds the API router. Admin routes sit behind the API key
// middleware; everything else trusts the session layer for customer ids.
func (h *Handler) Routes(security *Security) http.Handler {
	r := chi.NewRouter()

	r.Route("/api", func(r chi.Router) {
		r.Get("/coupons", h.ListAvailableCoupons)
		r.Post("/coupons/{couponID}/claims", h.ClaimCoupon)
		r.Get("/customers/{customerID}/claims", h.ListClaimedCoupons)
		r.Post("/checkout/evaluate", h.EvaluateCheckout)
		r.Get("/coupon-events", h.CouponEvents)

		r.Route("/admin", func(r chi.Router) {
			r.Use(security.RequireAPIKey)
			r.Post("/coupons", h.CreateCoupon)
			r.Put("/coupons/{couponID}", h.UpdateCoupon)
			r.Post("/coupons/{couponID}/toggle", h.ToggleCoupon)
			r.Delete("/coupons/{couponID}", h.DeleteCoupon)
			r.Post("/exchange-coupons", h.IssueExchangeCoupon)
		})
	})

	return r
}
