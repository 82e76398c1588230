package postal

import "context"

// MockDirectory is a test implementation of Directory.
type MockDirectory struct {
	LookupFunc func(ctx context.Context, code string) (*Entry, error)

	// Calls records every code passed to Lookup.
	Calls []string
}

// Lookup delegates to the configured function.
func (m *MockDirectory) Lookup(ctx context.Context, code string) (*Entry, error) {
	m.Calls = append(m.Calls, code)
	if m.LookupFunc != nil {
		return m.LookupFunc(ctx, code)
	}
	return nil, ErrNotFound
}
