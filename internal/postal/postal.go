// Package postal looks up street and neighborhood data for Brazilian postal
// codes (CEP).
package postal

import (
	"context"

	"github.com/agilizaapp/web-menu-sub000/internal/domain"
)

// Directory defines the interface for a postal-code lookup collaborator.
type Directory interface {
	// Lookup resolves an 8-digit postal code to address data.
	// Returns ErrNotFound when the directory has no entry for the code.
	Lookup(ctx context.Context, code string) (*Entry, error)
}

// Entry is the address data held by the directory for one postal code.
type Entry struct {
	Street       string
	Neighborhood string
	City         string
	State        string
}

// PostalCodeLength is the digit count of a complete Brazilian CEP.
const PostalCodeLength = 8

// ErrNotFound indicates the directory has no entry for the code. Callers
// treat this as a non-blocking warning: the user proceeds with manual entry.
var ErrNotFound = domain.Errorf(domain.ENOTFOUND, "postal.lookup", "postal code not found")

// ErrInvalidCode indicates the code is not 8 digits after normalization.
var ErrInvalidCode = domain.Errorf(domain.EINVALID, "postal.lookup", "postal code must have 8 digits")

// Fill copies directory data into the address, but only into fields that are
// currently empty. User-entered values are never overwritten.
func (e *Entry) Fill(addr *domain.Address) {
	if e == nil || addr == nil {
		return
	}
	if addr.Street == "" {
		addr.Street = e.Street
	}
	if addr.Neighborhood == "" {
		addr.Neighborhood = e.Neighborhood
	}
}
