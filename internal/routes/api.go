package routes

import (
	"github.com/agilizaapp/web-menu-sub000/internal/router"
)

// RegisterAPIRoutes registers the checkout and payment JSON endpoints.
// Order-creating payment routes take extra middleware (stricter rate limits).
func RegisterAPIRoutes(r *router.Router, deps APIDeps, orderCreation ...router.Middleware) {
	// Checkout state machine
	r.Get("/api/checkout", deps.Checkout.State)
	r.Post("/api/checkout/begin", deps.Checkout.Begin)
	r.Post("/api/checkout/phone", deps.Checkout.Phone)
	r.Post("/api/checkout/register", deps.Checkout.Register)
	r.Post("/api/checkout/logout", deps.Checkout.Logout)
	r.Post("/api/checkout/delivery-type", deps.Checkout.DeliveryType)
	r.Post("/api/checkout/address", deps.Checkout.Address)
	r.Post("/api/checkout/postal-code", deps.Checkout.PostalCode)
	r.Post("/api/checkout/quote", deps.Checkout.Quote)
	r.Post("/api/checkout/payment-method", deps.Checkout.PaymentMethod)
	r.Post("/api/checkout/confirm", deps.Checkout.Confirm)
	r.Post("/api/checkout/back", deps.Checkout.Back)

	// Payment session
	r.Post("/api/payment/start", deps.Payment.Start, orderCreation...)
	r.Get("/api/payment/pix", deps.Payment.PixStatus)
	r.Post("/api/payment/pix/renew", deps.Payment.PixRenew)
	r.Post("/api/payment/pix/confirm", deps.Payment.PixConfirm)
	r.Post("/api/payment/card/confirm", deps.Payment.CardConfirm, orderCreation...)
	r.Post("/api/payment/teardown", deps.Payment.Teardown)
}

// RegisterHealthRoutes registers liveness and readiness probes.
func RegisterHealthRoutes(r *router.Router, deps APIDeps) {
	r.Get("/health", deps.Health.Live)
	r.Get("/ready", deps.Health.Ready)
}
