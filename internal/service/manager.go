package service

import (
	"log/slog"
	"sync"
	"time"

	"github.com/agilizaapp/web-menu-sub000/internal/domain"
	"github.com/agilizaapp/web-menu-sub000/internal/orderapi"
	"github.com/agilizaapp/web-menu-sub000/internal/postal"
)

// ManagerConfig wires the collaborators shared by every checkout.
type ManagerConfig struct {
	Sessions *SessionService
	Client   orderapi.Client
	Postal   postal.Directory
	Quoter   *FeeQuoter
	Builder  *PayloadBuilder
	Orders   OrderStore

	LookupDebounce time.Duration
	PixCountdown   time.Duration

	Logger *slog.Logger
}

// Manager tracks one Checkout orchestrator and at most one PaymentSession per
// session key, so repeated HTTP requests from the same device land on the
// same state machine.
type Manager struct {
	mu  sync.Mutex
	cfg ManagerConfig

	checkouts map[string]*Checkout
	payments  map[string]*PaymentSession
}

// NewManager creates an empty manager.
func NewManager(cfg ManagerConfig) *Manager {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Manager{
		cfg:       cfg,
		checkouts: make(map[string]*Checkout),
		payments:  make(map[string]*PaymentSession),
	}
}

// Checkout returns the orchestrator for a session key, creating it on first
// use.
func (m *Manager) Checkout(key string) *Checkout {
	m.mu.Lock()
	defer m.mu.Unlock()

	if c, ok := m.checkouts[key]; ok {
		return c
	}

	c := NewCheckout(CheckoutConfig{
		SessionKey:     key,
		Sessions:       m.cfg.Sessions,
		Client:         m.cfg.Client,
		Postal:         m.cfg.Postal,
		Quoter:         m.cfg.Quoter,
		Builder:        m.cfg.Builder,
		LookupDebounce: m.cfg.LookupDebounce,
		Logger:         m.cfg.Logger,
	})
	m.checkouts[key] = c
	return c
}

// StartPayment creates the payment session for a checkout that reached the
// payment step, carrying the confirmed selection and the submitted cart. A
// session already open for the key is reused, so a repeated request cannot
// spawn a second order-creation path.
func (m *Manager) StartPayment(key string, cart domain.Cart) (*PaymentSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if p, ok := m.payments[key]; ok {
		return p, nil
	}

	checkout, ok := m.checkouts[key]
	if !ok {
		return nil, ErrInvalidStep
	}
	if checkout.Step() != StepPayment {
		return nil, ErrInvalidStep
	}

	customer := checkout.Session()
	p := NewPaymentSession(PaymentSessionConfig{
		SessionKey:   key,
		Sessions:     m.cfg.Sessions,
		Client:       m.cfg.Client,
		Builder:      m.cfg.Builder,
		Orders:       m.cfg.Orders,
		Customer:     &customer,
		Selection:    checkout.Selection(),
		Cart:         cart,
		PixCountdown: m.cfg.PixCountdown,
		Logger:       m.cfg.Logger,
	})
	m.payments[key] = p
	return p, nil
}

// Payment returns the open payment session for a key.
func (m *Manager) Payment(key string) (*PaymentSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.payments[key]
	if !ok {
		return nil, ErrNoActiveOrder
	}
	return p, nil
}

// EndPayment tears the payment session down, e.g. after the order is
// finalized or the customer navigated back to checkout.
func (m *Manager) EndPayment(key string) {
	m.mu.Lock()
	p, ok := m.payments[key]
	delete(m.payments, key)
	m.mu.Unlock()

	if ok {
		p.Teardown()
	}
}

// EndCheckout drops the whole per-device state, payment session included.
func (m *Manager) EndCheckout(key string) {
	m.mu.Lock()
	c, hasCheckout := m.checkouts[key]
	p, hasPayment := m.payments[key]
	delete(m.checkouts, key)
	delete(m.payments, key)
	m.mu.Unlock()

	if hasPayment {
		p.Teardown()
	}
	if hasCheckout {
		c.Close()
	}
}

// Close releases every tracked state machine.
func (m *Manager) Close() {
	m.mu.Lock()
	checkouts := m.checkouts
	payments := m.payments
	m.checkouts = make(map[string]*Checkout)
	m.payments = make(map[string]*PaymentSession)
	m.mu.Unlock()

	for _, p := range payments {
		p.Teardown()
	}
	for _, c := range checkouts {
		c.Close()
	}
}
