// Package delivery computes distance-tiered delivery fees.
package delivery

import "sort"

// Tier defines one band of the delivery-fee schedule. DistanceMeters is the
// inclusive lower bound of the band; the band extends up to (but excluding)
// the next tier's lower bound, and the highest tier is unbounded above.
type Tier struct {
	DistanceMeters int
	FeeCents       int64
}

// Table is a delivery-fee schedule. Tiers may arrive in any order; lookups
// always sort a copy ascending by distance first.
type Table []Tier

// sorted returns a copy of the table sorted ascending by distance.
func (t Table) sorted() Table {
	out := make(Table, len(t))
	copy(out, t)
	sort.Slice(out, func(i, j int) bool {
		return out[i].DistanceMeters < out[j].DistanceMeters
	})
	return out
}

// FeeFor selects the fee for the given distance. Bands are left-closed,
// right-open: a distance exactly on a boundary falls into the higher tier.
// An empty table yields 0.
func (t Table) FeeFor(distanceMeters int) int64 {
	if len(t) == 0 {
		return 0
	}

	tiers := t.sorted()
	fee := tiers[0].FeeCents
	for _, tier := range tiers {
		if tier.DistanceMeters <= distanceMeters {
			fee = tier.FeeCents
		}
	}
	return fee
}

// FallbackFee returns the minimum fee across all tiers. It is applied when
// the distance cannot be determined (masked address, geocoding failure, no
// distance signal): checkout must never block on pricing uncertainty, so the
// engine degrades to the cheapest tier and the caller surfaces a warning.
// An empty table yields 0.
func (t Table) FallbackFee() int64 {
	if len(t) == 0 {
		return 0
	}

	min := t[0].FeeCents
	for _, tier := range t[1:] {
		if tier.FeeCents < min {
			min = tier.FeeCents
		}
	}
	return min
}

// QuoteSource records which distance signal priced a quote.
type QuoteSource string

const (
	SourceCustomerRecord QuoteSource = "customer_record"
	SourcePickupRecord   QuoteSource = "pickup_record"
	SourceGeocoding      QuoteSource = "geocoding"
	SourceFallback       QuoteSource = "fallback"
)

// Quote is a priced delivery-fee result.
type Quote struct {
	FeeCents       int64
	DistanceMeters int
	Source         QuoteSource

	// Approximate is set when the fee was priced without a reliable distance
	// (fallback) or from a reduced-precision geocoding match. The user is
	// warned that the fee may be approximate; checkout is not blocked.
	Approximate bool
	Warning     string
}
