package geocode

import "context"

// MockProvider is a test implementation of Provider.
type MockProvider struct {
	LocateFunc func(ctx context.Context, query string) (*Coordinates, error)

	// Calls records every query passed to Locate.
	Calls []string
}

// Locate delegates to the configured function.
func (m *MockProvider) Locate(ctx context.Context, query string) (*Coordinates, error) {
	m.Calls = append(m.Calls, query)
	if m.LocateFunc != nil {
		return m.LocateFunc(ctx, query)
	}
	return nil, ErrNoMatch
}
