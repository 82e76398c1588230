package domain

// DeliveryType selects how the order reaches the customer.
type DeliveryType string

const (
	DeliveryTypeDelivery DeliveryType = "delivery"
	DeliveryTypePickup   DeliveryType = "pickup"
)

// PaymentMethod selects how the order is paid.
type PaymentMethod string

const (
	PaymentMethodPix  PaymentMethod = "pix"
	PaymentMethodCard PaymentMethod = "card"
)

// CheckoutSelection captures the confirmed checkout choices. It is built by
// the orchestrator once address and payment method are confirmed and consumed
// exactly once by the payload builder.
type CheckoutSelection struct {
	DeliveryType  DeliveryType
	PaymentMethod PaymentMethod

	// Address is set for delivery orders. For pickup orders it stays nil and
	// PickupLabel carries the restaurant's own location string for display.
	Address     *Address
	PickupLabel string

	DeliveryFeeCents *int64
	DistanceMeters   *int
}
