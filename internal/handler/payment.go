package handler

import (
	"net/http"
	"time"

	"github.com/agilizaapp/web-menu-sub000/internal/domain"
	"github.com/agilizaapp/web-menu-sub000/internal/middleware"
	"github.com/agilizaapp/web-menu-sub000/internal/service"
)

// PaymentHandler exposes the payment session over JSON endpoints. The cart
// is submitted by the client when the payment step opens; everything else
// (customer, selection) comes from the confirmed checkout.
type PaymentHandler struct {
	manager *service.Manager
}

// NewPaymentHandler creates a payment handler.
func NewPaymentHandler(manager *service.Manager) *PaymentHandler {
	return &PaymentHandler{manager: manager}
}

type cartItemPayload struct {
	ID             string            `json:"id"`
	ProductID      int64             `json:"product_id"`
	Name           string            `json:"name"`
	Quantity       int32             `json:"quantity"`
	UnitPriceCents int64             `json:"unit_price_cents"`
	Modifiers      map[int64][]int64 `json:"modifiers,omitempty"`
}

type cartPayload struct {
	Items []cartItemPayload `json:"items"`
}

func (c cartPayload) toDomain() domain.Cart {
	cart := domain.Cart{Items: make([]domain.CartItem, 0, len(c.Items))}
	for _, item := range c.Items {
		cart.Items = append(cart.Items, domain.CartItem{
			ID:             item.ID,
			ProductID:      item.ProductID,
			Name:           item.Name,
			Quantity:       item.Quantity,
			UnitPriceCents: item.UnitPriceCents,
			Modifiers:      item.Modifiers,
		})
	}
	return cart
}

// orderPayload is the wire form of a created order draft.
type orderPayload struct {
	ID            string `json:"id"`
	APIOrderID    int64  `json:"api_order_id"`
	PaymentMethod string `json:"payment_method"`
	TotalCents    int64  `json:"total_cents"`
	Status        string `json:"status"`
	PixCode       string `json:"pix_code,omitempty"`
}

func toOrderPayload(draft *domain.OrderDraft) *orderPayload {
	if draft == nil {
		return nil
	}
	return &orderPayload{
		ID:            draft.ID,
		APIOrderID:    draft.APIOrderID,
		PaymentMethod: string(draft.PaymentMethod),
		TotalCents:    draft.TotalCents,
		Status:        draft.Status,
		PixCode:       draft.PixCode,
	}
}

// Start handles POST /api/payment/start. For PIX the order is created
// immediately and the countdown begins; for card the session just opens and
// creation waits for the explicit confirm. Repeating the request reuses the
// existing session and never creates a second order.
func (h *PaymentHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Cart cartPayload `json:"cart"`
	}
	if err := DecodeJSON(r, &req); err != nil {
		RespondError(w, r, err)
		return
	}

	key := middleware.GetSessionKey(r.Context())
	payment, err := h.manager.StartPayment(key, req.Cart.toDomain())
	if err != nil {
		RespondError(w, r, err)
		return
	}

	checkout := h.manager.Checkout(key)
	method := checkout.Selection().PaymentMethod

	resp := struct {
		Method           string        `json:"method"`
		Order            *orderPayload `json:"order,omitempty"`
		PixRemainingSecs int64         `json:"pix_remaining_seconds,omitempty"`
	}{Method: string(method)}

	if method == domain.PaymentMethodPix {
		draft, err := payment.StartPix(r.Context())
		if err != nil {
			RespondError(w, r, err)
			return
		}
		resp.Order = toOrderPayload(draft)
		resp.PixRemainingSecs = int64(payment.PixRemaining() / time.Second)
	} else {
		resp.Order = toOrderPayload(payment.Order())
	}

	RespondJSON(w, http.StatusOK, resp)
}

// PixStatus handles GET /api/payment/pix
func (h *PaymentHandler) PixStatus(w http.ResponseWriter, r *http.Request) {
	payment, err := h.manager.Payment(middleware.GetSessionKey(r.Context()))
	if err != nil {
		RespondError(w, r, err)
		return
	}

	resp := struct {
		Code             string `json:"code,omitempty"`
		Expired          bool   `json:"expired"`
		RemainingSeconds int64  `json:"remaining_seconds"`
	}{
		Expired:          payment.PixExpired(),
		RemainingSeconds: int64(payment.PixRemaining() / time.Second),
	}

	code, err := payment.PixCode()
	if err == nil {
		resp.Code = code
	} else if !domain.IsCode(err, domain.EPAYMENT) {
		// Expiry is reported through the expired flag; anything else is a
		// real error.
		RespondError(w, r, err)
		return
	}

	RespondJSON(w, http.StatusOK, resp)
}

// PixRenew handles POST /api/payment/pix/renew. The countdown restarts; the
// code is the one already attached to the backend order.
func (h *PaymentHandler) PixRenew(w http.ResponseWriter, r *http.Request) {
	payment, err := h.manager.Payment(middleware.GetSessionKey(r.Context()))
	if err != nil {
		RespondError(w, r, err)
		return
	}
	if err := payment.RenewCountdown(); err != nil {
		RespondError(w, r, err)
		return
	}

	RespondJSON(w, http.StatusOK, struct {
		RemainingSeconds int64 `json:"remaining_seconds"`
	}{int64(payment.PixRemaining() / time.Second)})
}

// PixConfirm handles POST /api/payment/pix/confirm ("já paguei").
func (h *PaymentHandler) PixConfirm(w http.ResponseWriter, r *http.Request) {
	key := middleware.GetSessionKey(r.Context())
	payment, err := h.manager.Payment(key)
	if err != nil {
		RespondError(w, r, err)
		return
	}
	if err := payment.ConfirmPaid(r.Context()); err != nil {
		RespondError(w, r, err)
		return
	}

	order := toOrderPayload(payment.Order())
	h.manager.EndCheckout(key)
	RespondJSON(w, http.StatusOK, struct {
		Order *orderPayload `json:"order"`
	}{order})
}

// CardConfirm handles POST /api/payment/card/confirm.
func (h *PaymentHandler) CardConfirm(w http.ResponseWriter, r *http.Request) {
	key := middleware.GetSessionKey(r.Context())
	payment, err := h.manager.Payment(key)
	if err != nil {
		RespondError(w, r, err)
		return
	}

	draft, err := payment.ConfirmCard(r.Context())
	if err != nil {
		RespondError(w, r, err)
		return
	}
	if draft == nil {
		// A creation call is already in flight; the client should retry
		// shortly.
		RespondJSON(w, http.StatusAccepted, struct {
			Pending bool `json:"pending"`
		}{true})
		return
	}

	order := toOrderPayload(draft)
	h.manager.EndCheckout(key)
	RespondJSON(w, http.StatusOK, struct {
		Order *orderPayload `json:"order"`
	}{order})
}

// Teardown handles POST /api/payment/teardown, invoked when the payment view
// closes without completing. The countdown stops; an order creation already
// in flight is not cancelled.
func (h *PaymentHandler) Teardown(w http.ResponseWriter, r *http.Request) {
	h.manager.EndPayment(middleware.GetSessionKey(r.Context()))
	RespondJSON(w, http.StatusNoContent, nil)
}
