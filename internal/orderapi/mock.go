package orderapi

import (
	"context"
	"sync"
)

// MockClient is a test implementation of Client.
type MockClient struct {
	CustomerByPhoneFunc func(ctx context.Context, phone string) (*Customer, error)
	CreateOrderFunc     func(ctx context.Context, payload OrderPayload, sessionToken string) (*OrderResult, error)

	mu               sync.Mutex
	LookupCalls      []string
	CreateOrderCalls []OrderPayload
	LastSessionToken string
}

// Compile-time check that MockClient implements Client.
var _ Client = (*MockClient)(nil)

// CustomerByPhone delegates to the configured function.
func (m *MockClient) CustomerByPhone(ctx context.Context, phone string) (*Customer, error) {
	m.mu.Lock()
	m.LookupCalls = append(m.LookupCalls, phone)
	m.mu.Unlock()
	if m.CustomerByPhoneFunc != nil {
		return m.CustomerByPhoneFunc(ctx, phone)
	}
	return nil, ErrCustomerNotFound
}

// CreateOrder delegates to the configured function.
func (m *MockClient) CreateOrder(ctx context.Context, payload OrderPayload, sessionToken string) (*OrderResult, error) {
	m.mu.Lock()
	m.CreateOrderCalls = append(m.CreateOrderCalls, payload)
	m.LastSessionToken = sessionToken
	m.mu.Unlock()
	if m.CreateOrderFunc != nil {
		return m.CreateOrderFunc(ctx, payload, sessionToken)
	}
	return &OrderResult{OrderID: 1, Token: "token"}, nil
}

// CreateOrderCount returns how many order creations were attempted.
func (m *MockClient) CreateOrderCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.CreateOrderCalls)
}
