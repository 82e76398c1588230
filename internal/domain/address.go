package domain

import (
	"fmt"
	"strings"
)

// Address represents a customer delivery address.
// Any field may hold a masked (redacted) value; see IsMasked.
type Address struct {
	Street       string
	Number       string
	Neighborhood string
	PostalCode   string
	Complement   string

	// DistanceMeters is an optional distance from the restaurant, previously
	// computed server-side and stored on the customer record. When present and
	// positive it is authoritative and must be preferred over recomputation.
	DistanceMeters *int
}

// HasKnownDistance reports whether the address carries a usable precomputed
// distance.
func (a *Address) HasKnownDistance() bool {
	return a != nil && a.DistanceMeters != nil && *a.DistanceMeters > 0
}

// AnyFieldMasked reports whether any address field that would participate in
// geocoding contains a mask marker.
func (a *Address) AnyFieldMasked() bool {
	if a == nil {
		return false
	}
	for _, f := range []string{a.Street, a.Number, a.Neighborhood, a.PostalCode} {
		if IsMasked(f) {
			return true
		}
	}
	return false
}

// Format renders the address as a single free-text line suitable for
// geocoding or display.
func (a *Address) Format() string {
	if a == nil {
		return ""
	}
	parts := make([]string, 0, 4)
	if a.Street != "" {
		if a.Number != "" {
			parts = append(parts, fmt.Sprintf("%s, %s", a.Street, a.Number))
		} else {
			parts = append(parts, a.Street)
		}
	}
	if a.Neighborhood != "" {
		parts = append(parts, a.Neighborhood)
	}
	if a.PostalCode != "" {
		parts = append(parts, a.PostalCode)
	}
	return strings.Join(parts, ", ")
}

// NormalizePostalCode strips formatting (dashes, dots, spaces) from a postal
// code, keeping digits only.
func NormalizePostalCode(code string) string {
	return DigitsOnly(code)
}

// DigitsOnly strips every non-digit character from s.
func DigitsOnly(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
