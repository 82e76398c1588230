package service

import (
	"strings"
	"unicode/utf8"

	"github.com/agilizaapp/web-menu-sub000/internal/domain"
	"github.com/agilizaapp/web-menu-sub000/internal/orderapi"
	"github.com/agilizaapp/web-menu-sub000/internal/postal"
)

// CountryCallingCode is prefixed to phones that arrive without it.
const CountryCallingCode = "55"

// MobileDigits is the digit count of a complete Brazilian mobile number
// without the country code (area code + 9 digits).
const MobileDigits = 11

// minPhoneDigits is the minimum digit count of a normalized phone:
// country code + area code + number.
const minPhoneDigits = 12

// PayloadBuilder converts cart, customer and checkout selections into the
// wire payload for order creation, and validates the payload before
// submission. Both operations are pure.
type PayloadBuilder struct{}

// NewPayloadBuilder creates a PayloadBuilder.
func NewPayloadBuilder() *PayloadBuilder {
	return &PayloadBuilder{}
}

// NormalizePhone strips all non-digit characters and prefixes the country
// calling code when absent. A phone carrying a mask marker passes through
// unchanged; the server resolves it against the session token.
func NormalizePhone(raw string) string {
	if domain.IsMasked(raw) {
		return raw
	}
	digits := domain.DigitsOnly(raw)
	if digits == "" {
		return ""
	}
	// A local number is at most area code + 9 digits; anything longer
	// already carries the country code. Length decides, not the prefix: a
	// local number may legitimately start with the calling-code digits.
	if len(digits) <= MobileDigits {
		return CountryCallingCode + digits
	}
	return digits
}

// Build assembles the wire payload from the confirmed checkout state.
func (b *PayloadBuilder) Build(customer *domain.CustomerSession, selection domain.CheckoutSelection, cart domain.Cart) orderapi.OrderPayload {
	items := make([]orderapi.PayloadItem, 0, len(cart.Items))
	for _, line := range cart.Items {
		item := orderapi.PayloadItem{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
		}
		// An item with no selections omits the modifiers field entirely;
		// the server treats an absent field and an empty list as different
		// states.
		for modifierID, optionIDs := range line.Modifiers {
			for _, optionID := range optionIDs {
				item.Modifiers = append(item.Modifiers, orderapi.PayloadModifier{
					ModifierID: modifierID,
					OptionID:   optionID,
				})
			}
		}
		items = append(items, item)
	}

	payload := orderapi.OrderPayload{
		Customer: orderapi.PayloadCustomer{
			Phone:     NormalizePhone(customer.Phone),
			Name:      customer.Name,
			BirthDate: customer.BirthDate,
		},
		Order: orderapi.PayloadOrder{
			Items:         items,
			PaymentMethod: string(selection.PaymentMethod),
			Delivery:      selection.DeliveryType == domain.DeliveryTypeDelivery,
		},
	}

	// The address rides along only for delivery with an object address; the
	// restaurant's own pickup label is display-only and never sent.
	if selection.DeliveryType == domain.DeliveryTypeDelivery && selection.Address != nil {
		payload.Customer.Address = &orderapi.PayloadAddress{
			Street:       selection.Address.Street,
			Number:       selection.Address.Number,
			Neighborhood: selection.Address.Neighborhood,
			PostalCode:   selection.Address.PostalCode,
			Complement:   selection.Address.Complement,
		}
	}

	return payload
}

// Validate checks the payload before submission. All failing fields are
// collected into one ValidationError; a nil return means the payload is
// valid. No I/O is performed.
func (b *PayloadBuilder) Validate(payload orderapi.OrderPayload) error {
	var err error

	err = validatePhone(err, payload.Customer.Phone)
	err = validateName(err, payload.Customer.Name)
	if payload.Customer.Address != nil {
		err = validateAddressFields(err, payload.Customer.Address)
	}
	err = validateItems(err, payload.Order.Items)

	if err != nil {
		if ve, ok := err.(*domain.ValidationError); ok {
			ve.Op = "payload.validate"
		}
		return err
	}
	return nil
}

// ValidateAddress runs only the address field rules, used by the checkout
// step before the full payload exists. Rules are skipped per-field when the
// value is masked.
func (b *PayloadBuilder) ValidateAddress(addr *domain.Address) error {
	if addr == nil {
		return domain.NewValidationError("checkout.validate_address", "address", "Delivery address is required")
	}
	wire := &orderapi.PayloadAddress{
		Street:       addr.Street,
		Number:       addr.Number,
		Neighborhood: addr.Neighborhood,
		PostalCode:   addr.PostalCode,
	}
	if err := validateAddressFields(nil, wire); err != nil {
		if ve, ok := err.(*domain.ValidationError); ok {
			ve.Op = "checkout.validate_address"
		}
		return err
	}
	return nil
}

func validatePhone(err error, phone string) error {
	if phone == "" {
		return domain.AddFieldError(err, "phone", "Phone is required")
	}
	if domain.IsMasked(phone) {
		return err
	}
	if len(domain.DigitsOnly(NormalizePhone(phone))) < minPhoneDigits {
		return domain.AddFieldError(err, "phone", "Phone must include area code and number")
	}
	return err
}

func validateName(err error, name string) error {
	if strings.TrimSpace(name) == "" {
		return domain.AddFieldError(err, "name", "Name is required")
	}
	if utf8.RuneCountInString(strings.TrimSpace(name)) < 3 {
		return domain.AddFieldError(err, "name", "Name must have at least 3 characters")
	}
	return err
}

func validateAddressFields(err error, addr *orderapi.PayloadAddress) error {
	if !domain.IsMasked(addr.Street) && utf8.RuneCountInString(strings.TrimSpace(addr.Street)) < 3 {
		err = domain.AddFieldError(err, "street", "Street must have at least 3 characters")
	}
	if !domain.IsMasked(addr.Number) && strings.TrimSpace(addr.Number) == "" {
		err = domain.AddFieldError(err, "number", "Number is required")
	}
	if !domain.IsMasked(addr.Neighborhood) && utf8.RuneCountInString(strings.TrimSpace(addr.Neighborhood)) < 3 {
		err = domain.AddFieldError(err, "neighborhood", "Neighborhood must have at least 3 characters")
	}
	if !domain.IsMasked(addr.PostalCode) && len(domain.NormalizePostalCode(addr.PostalCode)) != postal.PostalCodeLength {
		err = domain.AddFieldError(err, "postal_code", "Postal code must have 8 digits")
	}
	return err
}

func validateItems(err error, items []orderapi.PayloadItem) error {
	if len(items) == 0 {
		return domain.AddFieldError(err, "cart", "Cart is empty")
	}
	for _, item := range items {
		if item.ProductID <= 0 {
			err = domain.AddFieldError(err, "cart", "Cart has an item without a valid product")
		}
		if item.Quantity < 1 {
			err = domain.AddFieldError(err, "cart", "Cart has an item with an invalid quantity")
		}
	}
	return err
}
