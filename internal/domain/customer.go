package domain

import "time"

// SessionTokenTTL is how long a customer token remains valid client-side.
// Tokens are long-lived; the upstream API may refresh them on order creation.
const SessionTokenTTL = 365 * 24 * time.Hour

// CustomerSession is the single shared mutable resource across checkout and
// payment. The token is attached to every outgoing order-API request. It is
// only updated by a successful order creation (refresh) or cleared by an
// explicit logout, never optimistically.
type CustomerSession struct {
	Token         string
	Name          string
	Phone         string
	BirthDate     string
	Address       *Address
	Authenticated bool
}

// CanSkipRegistration reports whether the session identifies a known customer
// well enough to start checkout directly.
func (s *CustomerSession) CanSkipRegistration() bool {
	return s != nil && s.Authenticated && s.Name != "" && s.Phone != ""
}

// MergeAddress merges a saved address into the session, preferring
// already-known distance data over the incoming record.
func (s *CustomerSession) MergeAddress(addr *Address) {
	if addr == nil {
		return
	}
	if s.Address != nil && s.Address.HasKnownDistance() && !addr.HasKnownDistance() {
		addr.DistanceMeters = s.Address.DistanceMeters
	}
	s.Address = addr
}
