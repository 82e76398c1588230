package geocode

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/agilizaapp/web-menu-sub000/internal/domain"
)

// Distance is the result of resolving two addresses and measuring between
// them.
type Distance struct {
	Meters     int
	TravelTime time.Duration

	// Approximate is set when at least one address only matched in its
	// reduced "city, state, country" form.
	Approximate bool
}

// DistanceResolver resolves two free-text addresses to coordinates and
// computes the distance between them. The two provider lookups are issued
// strictly in sequence; the provider enforces its own rate-limit spacing.
type DistanceResolver struct {
	provider Provider
	logger   *slog.Logger

	// locality is the reduced "city, state, country" form used as a second
	// attempt when the full address has no match. Accepting the locality
	// match trades precision for availability, flagged via Approximate.
	locality string
}

// NewDistanceResolver creates a DistanceResolver.
func NewDistanceResolver(provider Provider, locality string, logger *slog.Logger) *DistanceResolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &DistanceResolver{
		provider: provider,
		locality: locality,
		logger:   logger,
	}
}

// Between resolves origin and destination and returns the great-circle
// distance in whole meters plus an indicative travel time.
//
// If either address is masked the resolver fails fast with ErrMaskedAddress
// before any network call.
func (r *DistanceResolver) Between(ctx context.Context, origin, destination string) (*Distance, error) {
	if domain.IsMasked(origin) || domain.IsMasked(destination) {
		return nil, ErrMaskedAddress
	}

	from, fromApprox, err := r.locate(ctx, origin)
	if err != nil {
		return nil, fmt.Errorf("failed to geocode origin: %w", err)
	}

	to, toApprox, err := r.locate(ctx, destination)
	if err != nil {
		return nil, fmt.Errorf("failed to geocode destination: %w", err)
	}

	meters := Haversine(*from, *to)

	return &Distance{
		Meters:      meters,
		TravelTime:  TravelTime(meters),
		Approximate: fromApprox || toApprox,
	}, nil
}

// locate runs the two-tier lookup for one address: the full formatted query
// first, then the reduced locality form.
func (r *DistanceResolver) locate(ctx context.Context, query string) (*Coordinates, bool, error) {
	coords, err := r.provider.Locate(ctx, query)
	if err == nil {
		return coords, false, nil
	}
	if !errors.Is(err, ErrNoMatch) {
		return nil, false, err
	}

	if r.locality == "" {
		return nil, false, err
	}

	r.logger.Warn("address had no exact geocoding match, retrying with locality",
		slog.String("query", query),
		slog.String("locality", r.locality),
	)

	coords, err = r.provider.Locate(ctx, r.locality)
	if err != nil {
		return nil, false, err
	}
	return coords, true, nil
}
