package routes

import (
	"github.com/agilizaapp/web-menu-sub000/internal/handler"
)

// APIDeps contains dependencies for the checkout and payment API routes
type APIDeps struct {
	Checkout *handler.CheckoutHandler
	Payment  *handler.PaymentHandler
	Health   *handler.HealthHandler
}
