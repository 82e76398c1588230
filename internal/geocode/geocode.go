// Package geocode resolves free-text addresses to coordinates and computes
// the road-less great-circle distance between them.
package geocode

import (
	"context"

	"github.com/agilizaapp/web-menu-sub000/internal/domain"
)

// Provider defines the interface for a geocoding collaborator.
// Implementations can use Nominatim, Google, Mapbox, etc.
type Provider interface {
	// Locate resolves a free-text address to coordinates.
	// Returns ErrNoMatch when the provider has no result for the query.
	Locate(ctx context.Context, query string) (*Coordinates, error)
}

// Coordinates is a geographic point.
type Coordinates struct {
	Lat float64
	Lon float64
}

// Geocoding errors.
var (
	// ErrNoMatch indicates the provider returned no result for the query.
	ErrNoMatch = domain.Errorf(domain.ENOTFOUND, "geocode.locate", "no match for address")

	// ErrMaskedAddress indicates a redacted address reached the distance
	// resolver. Masked input must fail before any network call.
	ErrMaskedAddress = domain.Errorf(domain.EINVALID, "geocode.distance", "address contains masked fields and cannot be geocoded")
)
