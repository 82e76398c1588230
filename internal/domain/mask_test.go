package domain_test

import (
	"testing"

	"github.com/agilizaapp/web-menu-sub000/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestIsMasked(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{"plain street", "Rua das Flores", false},
		{"empty", "", false},
		{"star marker", "12*", true},
		{"star in the middle", "Rua A*B", true},
		{"ellipsis marker", "Rua das Fl...", true},
		{"single dots are fine", "Av. Brasil", false},
		{"two dots are fine", "R.. Brasil", false},
		{"masked phone", "(67) 9****-**99", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.IsMasked(tt.text))
		})
	}
}

func TestAddressAnyFieldMasked(t *testing.T) {
	addr := &domain.Address{
		Street:       "Rua A",
		Number:       "12*",
		Neighborhood: "Centro",
		PostalCode:   "79600000",
	}
	assert.True(t, addr.AnyFieldMasked())

	addr.Number = "12"
	assert.False(t, addr.AnyFieldMasked())

	var nilAddr *domain.Address
	assert.False(t, nilAddr.AnyFieldMasked())
}

func TestAddressFormat(t *testing.T) {
	addr := &domain.Address{
		Street:       "Rua das Flores",
		Number:       "120",
		Neighborhood: "Centro",
		PostalCode:   "79600-000",
	}
	assert.Equal(t, "Rua das Flores, 120, Centro, 79600-000", addr.Format())

	assert.Equal(t, "", (*domain.Address)(nil).Format())
}

func TestNormalizePostalCode(t *testing.T) {
	assert.Equal(t, "79600000", domain.NormalizePostalCode("79600-000"))
	assert.Equal(t, "79600000", domain.NormalizePostalCode("79.600 000"))
	assert.Equal(t, "", domain.NormalizePostalCode("abc"))
}
