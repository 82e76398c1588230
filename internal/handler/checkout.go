package handler

import (
	"net/http"

	"github.com/agilizaapp/web-menu-sub000/internal/domain"
	"github.com/agilizaapp/web-menu-sub000/internal/middleware"
	"github.com/agilizaapp/web-menu-sub000/internal/service"
)

// CheckoutHandler exposes the checkout orchestrator over JSON endpoints. All
// endpoints operate on the state machine bound to the caller's session key.
type CheckoutHandler struct {
	manager     *service.Manager
	pickupLabel string
}

// NewCheckoutHandler creates a checkout handler.
func NewCheckoutHandler(manager *service.Manager, pickupLabel string) *CheckoutHandler {
	return &CheckoutHandler{manager: manager, pickupLabel: pickupLabel}
}

// addressPayload mirrors domain.Address on the wire.
type addressPayload struct {
	Street         string `json:"street"`
	Number         string `json:"number"`
	Neighborhood   string `json:"neighborhood"`
	PostalCode     string `json:"postal_code"`
	Complement     string `json:"complement,omitempty"`
	DistanceMeters *int   `json:"distance_meters,omitempty"`
}

func toAddressPayload(addr *domain.Address) *addressPayload {
	if addr == nil {
		return nil
	}
	return &addressPayload{
		Street:         addr.Street,
		Number:         addr.Number,
		Neighborhood:   addr.Neighborhood,
		PostalCode:     addr.PostalCode,
		Complement:     addr.Complement,
		DistanceMeters: addr.DistanceMeters,
	}
}

// checkoutState is the snapshot returned by every checkout endpoint so the
// client can re-render after each action.
type checkoutState struct {
	Step           service.Step          `json:"step"`
	Phase          service.RegisterPhase `json:"phase,omitempty"`
	LookupInFlight bool                  `json:"lookup_in_flight"`
	Warnings       []string              `json:"warnings,omitempty"`

	Customer struct {
		Name          string          `json:"name,omitempty"`
		Phone         string          `json:"phone,omitempty"`
		Authenticated bool            `json:"authenticated"`
		Address       *addressPayload `json:"address,omitempty"`
	} `json:"customer"`

	Selection struct {
		DeliveryType     domain.DeliveryType  `json:"delivery_type,omitempty"`
		PaymentMethod    domain.PaymentMethod `json:"payment_method,omitempty"`
		PickupLabel      string               `json:"pickup_label,omitempty"`
		Address          *addressPayload      `json:"address,omitempty"`
		DeliveryFeeCents *int64               `json:"delivery_fee_cents,omitempty"`
		DistanceMeters   *int                 `json:"distance_meters,omitempty"`
	} `json:"selection"`
}

func (h *CheckoutHandler) snapshot(checkout *service.Checkout) checkoutState {
	session := checkout.Session()
	selection := checkout.Selection()

	var state checkoutState
	state.Step = checkout.Step()
	if state.Step == service.StepRegister {
		state.Phase = checkout.Phase()
	}
	state.LookupInFlight = checkout.LookupInFlight()
	state.Warnings = checkout.Warnings()

	state.Customer.Name = session.Name
	state.Customer.Phone = session.Phone
	state.Customer.Authenticated = session.Authenticated
	state.Customer.Address = toAddressPayload(session.Address)

	state.Selection.DeliveryType = selection.DeliveryType
	state.Selection.PaymentMethod = selection.PaymentMethod
	state.Selection.PickupLabel = selection.PickupLabel
	state.Selection.Address = toAddressPayload(selection.Address)
	state.Selection.DeliveryFeeCents = selection.DeliveryFeeCents
	state.Selection.DistanceMeters = selection.DistanceMeters

	return state
}

func (h *CheckoutHandler) checkout(r *http.Request) *service.Checkout {
	return h.manager.Checkout(middleware.GetSessionKey(r.Context()))
}

// Begin handles POST /api/checkout/begin
func (h *CheckoutHandler) Begin(w http.ResponseWriter, r *http.Request) {
	checkout := h.checkout(r)
	if _, err := checkout.Begin(r.Context()); err != nil {
		RespondError(w, r, err)
		return
	}
	RespondJSON(w, http.StatusOK, h.snapshot(checkout))
}

// State handles GET /api/checkout
func (h *CheckoutHandler) State(w http.ResponseWriter, r *http.Request) {
	RespondJSON(w, http.StatusOK, h.snapshot(h.checkout(r)))
}

// Phone handles POST /api/checkout/phone. The customer lookup is debounced
// and runs in the background; the client polls State for the outcome.
func (h *CheckoutHandler) Phone(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Phone string `json:"phone"`
	}
	if err := DecodeJSON(r, &req); err != nil {
		RespondError(w, r, err)
		return
	}

	checkout := h.checkout(r)
	if err := checkout.EnterPhone(req.Phone); err != nil {
		RespondError(w, r, err)
		return
	}
	RespondJSON(w, http.StatusAccepted, h.snapshot(checkout))
}

// Register handles POST /api/checkout/register
func (h *CheckoutHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name      string `json:"name"`
		BirthDate string `json:"birth_date"`
	}
	if err := DecodeJSON(r, &req); err != nil {
		RespondError(w, r, err)
		return
	}

	checkout := h.checkout(r)
	if err := checkout.CompleteRegistration(req.Name, req.BirthDate); err != nil {
		RespondError(w, r, err)
		return
	}
	RespondJSON(w, http.StatusOK, h.snapshot(checkout))
}

// Logout handles POST /api/checkout/logout ("Não é você?")
func (h *CheckoutHandler) Logout(w http.ResponseWriter, r *http.Request) {
	key := middleware.GetSessionKey(r.Context())
	checkout := h.manager.Checkout(key)
	if err := checkout.Logout(r.Context()); err != nil {
		RespondError(w, r, err)
		return
	}
	h.manager.EndPayment(key)
	RespondJSON(w, http.StatusOK, h.snapshot(checkout))
}

// DeliveryType handles POST /api/checkout/delivery-type
func (h *CheckoutHandler) DeliveryType(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Type domain.DeliveryType `json:"type"`
	}
	if err := DecodeJSON(r, &req); err != nil {
		RespondError(w, r, err)
		return
	}
	if req.Type != domain.DeliveryTypeDelivery && req.Type != domain.DeliveryTypePickup {
		RespondError(w, r, domain.Invalid("checkout.delivery_type", "Type must be delivery or pickup"))
		return
	}

	checkout := h.checkout(r)
	if err := checkout.SetDeliveryType(req.Type, h.pickupLabel); err != nil {
		RespondError(w, r, err)
		return
	}
	RespondJSON(w, http.StatusOK, h.snapshot(checkout))
}

// Address handles POST /api/checkout/address
func (h *CheckoutHandler) Address(w http.ResponseWriter, r *http.Request) {
	var req addressPayload
	if err := DecodeJSON(r, &req); err != nil {
		RespondError(w, r, err)
		return
	}

	checkout := h.checkout(r)
	err := checkout.SetAddress(domain.Address{
		Street:       req.Street,
		Number:       req.Number,
		Neighborhood: req.Neighborhood,
		PostalCode:   req.PostalCode,
		Complement:   req.Complement,
	})
	if err != nil {
		RespondError(w, r, err)
		return
	}
	RespondJSON(w, http.StatusOK, h.snapshot(checkout))
}

// PostalCode handles POST /api/checkout/postal-code. The directory lookup is
// debounced and non-blocking; results land in the next State snapshot.
func (h *CheckoutHandler) PostalCode(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code string `json:"code"`
	}
	if err := DecodeJSON(r, &req); err != nil {
		RespondError(w, r, err)
		return
	}

	checkout := h.checkout(r)
	if err := checkout.EnterPostalCode(req.Code); err != nil {
		RespondError(w, r, err)
		return
	}
	RespondJSON(w, http.StatusAccepted, h.snapshot(checkout))
}

// Quote handles POST /api/checkout/quote
func (h *CheckoutHandler) Quote(w http.ResponseWriter, r *http.Request) {
	checkout := h.checkout(r)
	fee, err := checkout.QuoteDeliveryFee(r.Context())
	if err != nil {
		RespondError(w, r, err)
		return
	}

	state := h.snapshot(checkout)
	RespondJSON(w, http.StatusOK, struct {
		FeeCents int64 `json:"fee_cents"`
		checkoutState
	}{fee, state})
}

// PaymentMethod handles POST /api/checkout/payment-method
func (h *CheckoutHandler) PaymentMethod(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Method domain.PaymentMethod `json:"method"`
	}
	if err := DecodeJSON(r, &req); err != nil {
		RespondError(w, r, err)
		return
	}
	if req.Method != domain.PaymentMethodPix && req.Method != domain.PaymentMethodCard {
		RespondError(w, r, domain.Invalid("checkout.payment_method", "Method must be pix or card"))
		return
	}

	checkout := h.checkout(r)
	if err := checkout.SetPaymentMethod(req.Method); err != nil {
		RespondError(w, r, err)
		return
	}
	RespondJSON(w, http.StatusOK, h.snapshot(checkout))
}

// Confirm handles POST /api/checkout/confirm
func (h *CheckoutHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	checkout := h.checkout(r)
	if err := checkout.ConfirmCheckout(); err != nil {
		RespondError(w, r, err)
		return
	}
	RespondJSON(w, http.StatusOK, h.snapshot(checkout))
}

// Back handles POST /api/checkout/back. Leaving the payment step tears the
// payment session down; an order creation already in flight still completes.
func (h *CheckoutHandler) Back(w http.ResponseWriter, r *http.Request) {
	key := middleware.GetSessionKey(r.Context())
	checkout := h.manager.Checkout(key)

	wasPayment := checkout.Step() == service.StepPayment
	if err := checkout.Back(); err != nil {
		RespondError(w, r, err)
		return
	}
	if wasPayment {
		h.manager.EndPayment(key)
	}
	RespondJSON(w, http.StatusOK, h.snapshot(checkout))
}
