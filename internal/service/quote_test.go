package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/agilizaapp/web-menu-sub000/internal/delivery"
	"github.com/agilizaapp/web-menu-sub000/internal/domain"
	"github.com/agilizaapp/web-menu-sub000/internal/geocode"
	"github.com/agilizaapp/web-menu-sub000/internal/service"
	"github.com/stretchr/testify/assert"
)

// mockResolver implements service.DistanceResolver for testing.
type mockResolver struct {
	distance *geocode.Distance
	err      error
	calls    int
}

func (m *mockResolver) Between(ctx context.Context, origin, destination string) (*geocode.Distance, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.distance, nil
}

func testTiers() delivery.Table {
	return delivery.Table{
		{DistanceMeters: 0, FeeCents: 500},
		{DistanceMeters: 3000, FeeCents: 700},
		{DistanceMeters: 5000, FeeCents: 1000},
	}
}

func intPtr(v int) *int { return &v }

func TestQuotePrefersCustomerRecordDistance(t *testing.T) {
	resolver := &mockResolver{distance: &geocode.Distance{Meters: 9999}}
	quoter := service.NewFeeQuoter(testTiers(), resolver, service.PickupLocation{Label: "Restaurante Central"}, nil)

	addr := &domain.Address{
		Street: "Rua A", Number: "1", Neighborhood: "Centro", PostalCode: "79600000",
		DistanceMeters: intPtr(3000),
	}
	quote := quoter.Quote(context.Background(), addr)

	assert.Equal(t, int64(700), quote.FeeCents)
	assert.Equal(t, 3000, quote.DistanceMeters)
	assert.Equal(t, delivery.SourceCustomerRecord, quote.Source)
	assert.False(t, quote.Approximate)
	assert.Zero(t, resolver.calls, "a known distance must not trigger geocoding")
}

func TestQuoteUsesPickupRecordDistance(t *testing.T) {
	resolver := &mockResolver{}
	quoter := service.NewFeeQuoter(testTiers(), resolver, service.PickupLocation{
		Label:          "Restaurante Central",
		DistanceMeters: intPtr(5000),
	}, nil)

	addr := &domain.Address{Street: "Rua A", Number: "1", Neighborhood: "Centro", PostalCode: "79600000"}
	quote := quoter.Quote(context.Background(), addr)

	assert.Equal(t, int64(1000), quote.FeeCents)
	assert.Equal(t, delivery.SourcePickupRecord, quote.Source)
	assert.Zero(t, resolver.calls)
}

func TestQuoteGeocodesWhenNoRecordedDistance(t *testing.T) {
	resolver := &mockResolver{distance: &geocode.Distance{Meters: 2999}}
	quoter := service.NewFeeQuoter(testTiers(), resolver, service.PickupLocation{Label: "Restaurante Central"}, nil)

	addr := &domain.Address{Street: "Rua A", Number: "1", Neighborhood: "Centro", PostalCode: "79600000"}
	quote := quoter.Quote(context.Background(), addr)

	assert.Equal(t, int64(500), quote.FeeCents)
	assert.Equal(t, delivery.SourceGeocoding, quote.Source)
	assert.Equal(t, 1, resolver.calls)
}

func TestQuoteMaskedAddressFallsBackWithoutGeocoding(t *testing.T) {
	resolver := &mockResolver{distance: &geocode.Distance{Meters: 100}}
	quoter := service.NewFeeQuoter(testTiers(), resolver, service.PickupLocation{Label: "Restaurante Central"}, nil)

	addr := &domain.Address{Street: "Rua A", Number: "12*", Neighborhood: "Centro", PostalCode: "79600000"}
	quote := quoter.Quote(context.Background(), addr)

	assert.Equal(t, int64(500), quote.FeeCents, "fallback is the minimum tier value")
	assert.Equal(t, delivery.SourceFallback, quote.Source)
	assert.True(t, quote.Approximate)
	assert.NotEmpty(t, quote.Warning)
	assert.Zero(t, resolver.calls, "masked input must not reach the geocoder")
}

func TestQuoteGeocodingFailureFallsBack(t *testing.T) {
	resolver := &mockResolver{err: errors.New("provider down")}
	quoter := service.NewFeeQuoter(testTiers(), resolver, service.PickupLocation{Label: "Restaurante Central"}, nil)

	addr := &domain.Address{Street: "Rua A", Number: "1", Neighborhood: "Centro", PostalCode: "79600000"}
	quote := quoter.Quote(context.Background(), addr)

	assert.Equal(t, int64(500), quote.FeeCents)
	assert.Equal(t, delivery.SourceFallback, quote.Source)
	assert.True(t, quote.Approximate)
}

func TestQuoteApproximateGeocodingKeepsWarning(t *testing.T) {
	resolver := &mockResolver{distance: &geocode.Distance{Meters: 4000, Approximate: true}}
	quoter := service.NewFeeQuoter(testTiers(), resolver, service.PickupLocation{Label: "Restaurante Central"}, nil)

	addr := &domain.Address{Street: "Rua A", Number: "1", Neighborhood: "Centro", PostalCode: "79600000"}
	quote := quoter.Quote(context.Background(), addr)

	assert.Equal(t, int64(700), quote.FeeCents)
	assert.True(t, quote.Approximate)
	assert.NotEmpty(t, quote.Warning)
}
