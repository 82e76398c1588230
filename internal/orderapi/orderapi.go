// Package orderapi talks to the upstream ordering backend: customer lookup by
// phone and idempotent order creation (which also issues PIX codes).
package orderapi

import (
	"context"

	"github.com/agilizaapp/web-menu-sub000/internal/domain"
)

// Client defines the interface for the ordering backend collaborator.
type Client interface {
	// CustomerByPhone looks up an existing customer by sanitized phone.
	// Returns ErrCustomerNotFound when the phone is unknown.
	CustomerByPhone(ctx context.Context, phone string) (*Customer, error)

	// CreateOrder submits an order. When sessionToken is non-empty it is
	// attached as the authorization value. The response carries a (possibly
	// refreshed) session token and, for PIX orders, the copy-and-paste code.
	CreateOrder(ctx context.Context, payload OrderPayload, sessionToken string) (*OrderResult, error)
}

// Customer is the lookup result for a known phone number.
// Address fields may arrive masked (redacted) before full confirmation.
type Customer struct {
	Name    string
	Phone   string
	Address *domain.Address
}

// OrderResult is the response to a successful order creation.
type OrderResult struct {
	OrderID int64
	Token   string
	Pix     *PixInfo
}

// PixInfo carries the provider-issued PIX payment code.
type PixInfo struct {
	CopyAndPaste string
}

// ErrCustomerNotFound indicates no customer exists for the phone. Expected
// and non-fatal: the caller proceeds with explicit registration.
var ErrCustomerNotFound = domain.Errorf(domain.ENOTFOUND, "orderapi.customer_by_phone", "customer not found")

// =============================================================================
// Wire payload
// =============================================================================

// OrderPayload is the wire shape for order creation.
type OrderPayload struct {
	Customer PayloadCustomer `json:"customer"`
	Order    PayloadOrder    `json:"order"`
}

// PayloadCustomer identifies the ordering customer.
// Address is attached only for delivery orders with an object address.
type PayloadCustomer struct {
	Phone     string          `json:"phone"`
	Name      string          `json:"name"`
	BirthDate string          `json:"birthdate,omitempty"`
	Address   *PayloadAddress `json:"address,omitempty"`
}

// PayloadAddress is the wire shape of a delivery address.
type PayloadAddress struct {
	Street       string `json:"street"`
	Number       string `json:"number"`
	Neighborhood string `json:"neighborhood"`
	PostalCode   string `json:"postal_code"`
	Complement   string `json:"complement,omitempty"`
}

// PayloadOrder carries the order lines and checkout choices.
type PayloadOrder struct {
	Items         []PayloadItem `json:"items"`
	PaymentMethod string        `json:"payment_method"`
	Delivery      bool          `json:"delivery"`
}

// PayloadItem is one order line. Modifiers must be nil (field omitted) for a
// line without selections: the server treats an empty list and an absent
// field as different states.
type PayloadItem struct {
	ProductID int64             `json:"product_id"`
	Quantity  int32             `json:"quantity"`
	Modifiers []PayloadModifier `json:"modifiers,omitempty"`
}

// PayloadModifier is one selected (group, option) pair.
type PayloadModifier struct {
	ModifierID int64 `json:"modifier_id"`
	OptionID   int64 `json:"option_id"`
}
