package service

import (
	"context"
	"log/slog"

	"github.com/agilizaapp/web-menu-sub000/internal/delivery"
	"github.com/agilizaapp/web-menu-sub000/internal/domain"
	"github.com/agilizaapp/web-menu-sub000/internal/geocode"
)

// DistanceResolver resolves two free-text addresses and measures between
// them. Implemented by geocode.DistanceResolver.
type DistanceResolver interface {
	Between(ctx context.Context, origin, destination string) (*geocode.Distance, error)
}

// PickupLocation describes the restaurant's own location: the display label
// used for pickup orders and as the geocoding origin, plus an optional
// precomputed distance to the serviced area recorded by the admin backend.
type PickupLocation struct {
	Label          string
	DistanceMeters *int
}

// FeeQuoter prices the delivery fee for an address. Distance signals are
// tried in strict priority order; pricing degrades to the cheapest tier
// instead of ever blocking checkout.
type FeeQuoter struct {
	tiers    delivery.Table
	resolver DistanceResolver
	pickup   PickupLocation
	logger   *slog.Logger
}

// NewFeeQuoter creates a FeeQuoter.
func NewFeeQuoter(tiers delivery.Table, resolver DistanceResolver, pickup PickupLocation, logger *slog.Logger) *FeeQuoter {
	if logger == nil {
		logger = slog.Default()
	}
	return &FeeQuoter{
		tiers:    tiers,
		resolver: resolver,
		pickup:   pickup,
		logger:   logger,
	}
}

// Quote prices the delivery fee for addr. The distance source priority is:
//
//  1. distance stored on the customer/delivery address record,
//  2. distance stored on the restaurant's pickup-location record,
//  3. live geocoding of (pickup label, formatted address), only when
//     neither operand is masked,
//  4. fallback to the cheapest tier with a non-fatal warning.
//
// Quote never fails: distance-resolution problems degrade to the fallback.
func (q *FeeQuoter) Quote(ctx context.Context, addr *domain.Address) delivery.Quote {
	if addr.HasKnownDistance() {
		meters := *addr.DistanceMeters
		return delivery.Quote{
			FeeCents:       q.tiers.FeeFor(meters),
			DistanceMeters: meters,
			Source:         delivery.SourceCustomerRecord,
		}
	}

	if q.pickup.DistanceMeters != nil && *q.pickup.DistanceMeters > 0 {
		meters := *q.pickup.DistanceMeters
		return delivery.Quote{
			FeeCents:       q.tiers.FeeFor(meters),
			DistanceMeters: meters,
			Source:         delivery.SourcePickupRecord,
		}
	}

	formatted := addr.Format()
	if addr.AnyFieldMasked() || domain.IsMasked(q.pickup.Label) || q.resolver == nil || formatted == "" {
		return q.fallback("address unavailable for distance calculation")
	}

	dist, err := q.resolver.Between(ctx, q.pickup.Label, formatted)
	if err != nil {
		q.logger.Warn("geocoding failed, falling back to minimum delivery fee",
			slog.String("address", formatted),
			slog.Any("error", err),
		)
		return q.fallback("could not locate the address")
	}

	return delivery.Quote{
		FeeCents:       q.tiers.FeeFor(dist.Meters),
		DistanceMeters: dist.Meters,
		Source:         delivery.SourceGeocoding,
		Approximate:    dist.Approximate,
		Warning:        approximateWarning(dist.Approximate),
	}
}

func (q *FeeQuoter) fallback(reason string) delivery.Quote {
	q.logger.Info("delivery fee fallback applied", slog.String("reason", reason))
	return delivery.Quote{
		FeeCents:    q.tiers.FallbackFee(),
		Source:      delivery.SourceFallback,
		Approximate: true,
		Warning:     "Delivery fee is approximate and may be adjusted on confirmation",
	}
}

func approximateWarning(approximate bool) string {
	if approximate {
		return "Delivery fee is approximate and may be adjusted on confirmation"
	}
	return ""
}
