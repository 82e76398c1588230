package service_test

import (
	"encoding/json"
	"testing"

	"github.com/agilizaapp/web-menu-sub000/internal/domain"
	"github.com/agilizaapp/web-menu-sub000/internal/orderapi"
	"github.com/agilizaapp/web-menu-sub000/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"formatted mobile", "(67) 99999-9999", "5567999999999"},
		{"bare mobile", "67999999999", "5567999999999"},
		{"already with country code", "5567999999999", "5567999999999"},
		{"masked passes through unchanged", "(67) 9****-**99", "(67) 9****-**99"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, service.NormalizePhone(tt.raw))
		})
	}
}

func deliverySelection(addr *domain.Address) domain.CheckoutSelection {
	return domain.CheckoutSelection{
		DeliveryType:  domain.DeliveryTypeDelivery,
		PaymentMethod: domain.PaymentMethodPix,
		Address:       addr,
	}
}

func TestBuildOmitsModifiersForPlainItems(t *testing.T) {
	builder := service.NewPayloadBuilder()

	cart := domain.Cart{Items: []domain.CartItem{
		{ProductID: 1, Quantity: 2, Modifiers: map[int64][]int64{}},
		{ProductID: 3, Quantity: 1, Modifiers: map[int64][]int64{7: {70, 71}}},
	}}

	customer := &domain.CustomerSession{Name: "Maria", Phone: "67999999999"}
	payload := builder.Build(customer, deliverySelection(&domain.Address{Street: "Rua A", Number: "1", Neighborhood: "Centro", PostalCode: "79600000"}), cart)

	require.Len(t, payload.Order.Items, 2)
	assert.Nil(t, payload.Order.Items[0].Modifiers)
	assert.Len(t, payload.Order.Items[1].Modifiers, 2)

	// The wire encoding must drop the key entirely, not send [].
	wire, err := json.Marshal(payload)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(wire, &decoded))
	items := decoded["order"].(map[string]any)["items"].([]any)
	assert.NotContains(t, items[0].(map[string]any), "modifiers")
	assert.Contains(t, items[1].(map[string]any), "modifiers")
}

func TestBuildPickupNeverAttachesAddress(t *testing.T) {
	builder := service.NewPayloadBuilder()
	customer := &domain.CustomerSession{
		Name:    "Maria",
		Phone:   "67999999999",
		Address: &domain.Address{Street: "Rua A", Number: "1", Neighborhood: "Centro", PostalCode: "79600000"},
	}
	cart := domain.Cart{Items: []domain.CartItem{{ProductID: 1, Quantity: 1}}}

	payload := builder.Build(customer, domain.CheckoutSelection{
		DeliveryType:  domain.DeliveryTypePickup,
		PaymentMethod: domain.PaymentMethodCard,
		PickupLabel:   "Restaurante Central, Campo Grande",
	}, cart)

	assert.Nil(t, payload.Customer.Address)
	assert.False(t, payload.Order.Delivery)
	assert.Equal(t, "card", payload.Order.PaymentMethod)
}

func TestBuildNormalizesPhoneAndKeepsBirthDate(t *testing.T) {
	builder := service.NewPayloadBuilder()
	customer := &domain.CustomerSession{Name: "Maria", Phone: "(67) 99999-9999", BirthDate: "1990-04-12"}
	cart := domain.Cart{Items: []domain.CartItem{{ProductID: 1, Quantity: 1}}}

	payload := builder.Build(customer, deliverySelection(&domain.Address{Street: "Rua A", Number: "1", Neighborhood: "Centro", PostalCode: "79600000"}), cart)

	assert.Equal(t, "5567999999999", payload.Customer.Phone)
	assert.Equal(t, "1990-04-12", payload.Customer.BirthDate)
	require.NotNil(t, payload.Customer.Address)
	assert.True(t, payload.Order.Delivery)
}

func validPayload() orderapi.OrderPayload {
	return orderapi.OrderPayload{
		Customer: orderapi.PayloadCustomer{
			Phone: "5567999999999",
			Name:  "Maria",
			Address: &orderapi.PayloadAddress{
				Street:       "Rua das Flores",
				Number:       "120",
				Neighborhood: "Centro",
				PostalCode:   "79600-000",
			},
		},
		Order: orderapi.PayloadOrder{
			Items:         []orderapi.PayloadItem{{ProductID: 1, Quantity: 1}},
			PaymentMethod: "pix",
			Delivery:      true,
		},
	}
}

func TestValidateAcceptsValidPayload(t *testing.T) {
	builder := service.NewPayloadBuilder()
	assert.NoError(t, builder.Validate(validPayload()))
}

func TestValidateCollectsAllErrors(t *testing.T) {
	builder := service.NewPayloadBuilder()

	payload := validPayload()
	payload.Customer.Phone = ""
	payload.Customer.Name = "Jo"
	payload.Customer.Address.Street = "Av"
	payload.Customer.Address.Number = ""
	payload.Order.Items = nil

	err := builder.Validate(payload)
	require.Error(t, err)

	fields := domain.GetValidationFields(err)
	require.NotNil(t, fields)
	assert.Contains(t, fields, "phone")
	assert.Contains(t, fields, "name")
	assert.Contains(t, fields, "street")
	assert.Contains(t, fields, "number")
	assert.Contains(t, fields, "cart")
}

func TestValidatePostalCodeDigitCount(t *testing.T) {
	builder := service.NewPayloadBuilder()

	for _, code := range []string{"7960000", "796000000", "", "7960-00"} {
		payload := validPayload()
		payload.Customer.Address.PostalCode = code
		err := builder.Validate(payload)
		require.Error(t, err, "code %q", code)
		assert.Contains(t, domain.GetValidationFields(err), "postal_code")
	}

	// Formatted 8-digit codes pass.
	payload := validPayload()
	payload.Customer.Address.PostalCode = "79600-000"
	assert.NoError(t, builder.Validate(payload))
}

func TestValidateSkipsMaskedFields(t *testing.T) {
	builder := service.NewPayloadBuilder()

	payload := validPayload()
	payload.Customer.Phone = "(67) 9****-**99"
	payload.Customer.Address.Number = "1*"
	payload.Customer.Address.PostalCode = "796..."
	assert.NoError(t, builder.Validate(payload))
}

func TestValidateRejectsShortPhone(t *testing.T) {
	builder := service.NewPayloadBuilder()

	payload := validPayload()
	payload.Customer.Phone = "679999"
	err := builder.Validate(payload)
	require.Error(t, err)
	assert.Contains(t, domain.GetValidationFields(err), "phone")
}

func TestValidateRejectsBadItems(t *testing.T) {
	builder := service.NewPayloadBuilder()

	payload := validPayload()
	payload.Order.Items = []orderapi.PayloadItem{
		{ProductID: 0, Quantity: 1},
		{ProductID: 2, Quantity: 0},
	}
	err := builder.Validate(payload)
	require.Error(t, err)
	assert.Contains(t, domain.GetValidationFields(err), "cart")
}
