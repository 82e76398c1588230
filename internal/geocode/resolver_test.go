package geocode_test

import (
	"context"
	"testing"

	"github.com/agilizaapp/web-menu-sub000/internal/geocode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDistanceResolverBetween(t *testing.T) {
	provider := &geocode.MockProvider{
		LocateFunc: func(ctx context.Context, query string) (*geocode.Coordinates, error) {
			switch query {
			case "Restaurante Central, Campo Grande":
				return &geocode.Coordinates{Lat: -20.4697, Lon: -54.6201}, nil
			case "Rua das Flores, 120, Centro, 79600-000":
				return &geocode.Coordinates{Lat: -20.4600, Lon: -54.6180}, nil
			}
			return nil, geocode.ErrNoMatch
		},
	}

	resolver := geocode.NewDistanceResolver(provider, "Campo Grande, MS, Brasil", nil)

	dist, err := resolver.Between(context.Background(),
		"Restaurante Central, Campo Grande",
		"Rua das Flores, 120, Centro, 79600-000",
	)
	require.NoError(t, err)

	assert.False(t, dist.Approximate)
	assert.Greater(t, dist.Meters, 900)
	assert.Less(t, dist.Meters, 1300)
	assert.Greater(t, dist.TravelTime.Seconds(), 0.0)

	// Origin first, destination second, strictly sequential.
	require.Len(t, provider.Calls, 2)
	assert.Equal(t, "Restaurante Central, Campo Grande", provider.Calls[0])
	assert.Equal(t, "Rua das Flores, 120, Centro, 79600-000", provider.Calls[1])
}

func TestDistanceResolverMaskedFailsBeforeNetwork(t *testing.T) {
	provider := &geocode.MockProvider{}
	resolver := geocode.NewDistanceResolver(provider, "Campo Grande, MS, Brasil", nil)

	_, err := resolver.Between(context.Background(),
		"Restaurante Central",
		"Rua A, 12*, Centro",
	)
	assert.ErrorIs(t, err, geocode.ErrMaskedAddress)
	assert.Empty(t, provider.Calls, "no network call may be issued for masked input")

	_, err = resolver.Between(context.Background(), "Rua das Fl...", "Rua B, 10")
	assert.ErrorIs(t, err, geocode.ErrMaskedAddress)
	assert.Empty(t, provider.Calls)
}

func TestDistanceResolverFallsBackToLocality(t *testing.T) {
	provider := &geocode.MockProvider{
		LocateFunc: func(ctx context.Context, query string) (*geocode.Coordinates, error) {
			switch query {
			case "Restaurante Central":
				return &geocode.Coordinates{Lat: -20.4697, Lon: -54.6201}, nil
			case "Campo Grande, MS, Brasil":
				return &geocode.Coordinates{Lat: -20.4640, Lon: -54.6160}, nil
			}
			return nil, geocode.ErrNoMatch
		},
	}

	resolver := geocode.NewDistanceResolver(provider, "Campo Grande, MS, Brasil", nil)

	dist, err := resolver.Between(context.Background(), "Restaurante Central", "Rua Inexistente, 999")
	require.NoError(t, err)

	assert.True(t, dist.Approximate, "locality match must be flagged as reduced precision")
	assert.Equal(t, []string{"Restaurante Central", "Rua Inexistente, 999", "Campo Grande, MS, Brasil"}, provider.Calls)
}

func TestDistanceResolverNoMatchAnywhere(t *testing.T) {
	provider := &geocode.MockProvider{}
	resolver := geocode.NewDistanceResolver(provider, "", nil)

	_, err := resolver.Between(context.Background(), "nowhere", "also nowhere")
	assert.ErrorIs(t, err, geocode.ErrNoMatch)
}
