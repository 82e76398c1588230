package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/agilizaapp/web-menu-sub000/internal/domain"
	"github.com/agilizaapp/web-menu-sub000/internal/orderapi"
	"github.com/agilizaapp/web-menu-sub000/internal/timer"
	"github.com/google/uuid"
)

// DefaultPixCountdown is the PIX payment window shown to the customer.
const DefaultPixCountdown = 300 * time.Second

// OrderStore persists locally tracked orders.
type OrderStore interface {
	// Save stores a newly created order draft.
	Save(ctx context.Context, draft *domain.OrderDraft) error

	// UpdateStatus transitions a stored order's status.
	UpdateStatus(ctx context.Context, id, status string) error
}

// PaymentSessionConfig wires a PaymentSession's collaborators.
type PaymentSessionConfig struct {
	SessionKey string
	Sessions   *SessionService
	Client     orderapi.Client
	Builder    *PayloadBuilder
	Orders     OrderStore

	Customer  *domain.CustomerSession
	Selection domain.CheckoutSelection
	Cart      domain.Cart

	// PixCountdown overrides DefaultPixCountdown when positive.
	PixCountdown time.Duration

	// TickInterval overrides the one-second countdown tick (used by tests).
	TickInterval time.Duration

	// OnOrderCreated is invoked with the local order id once the order is
	// finalized and the caller should route to order-status tracking.
	OnOrderCreated func(orderID string)

	Logger *slog.Logger
}

// PaymentSession drives the PIX and card payment paths. Both funnel into a
// single idempotent order-creation call: PIX creates the order once at
// session start, card defers creation to an explicit confirm.
type PaymentSession struct {
	mu sync.Mutex

	sessionKey string
	sessions   *SessionService
	client     orderapi.Client
	builder    *PayloadBuilder
	orders     OrderStore
	logger     *slog.Logger

	customer  *domain.CustomerSession
	selection domain.CheckoutSelection
	cart      domain.Cart

	state     domain.OrderCreationState
	draft     *domain.OrderDraft
	countdown *timer.Countdown
	notify    func(orderID string)
}

// NewPaymentSession creates a payment session for a confirmed checkout.
func NewPaymentSession(cfg PaymentSessionConfig) *PaymentSession {
	pixWindow := cfg.PixCountdown
	if pixWindow <= 0 {
		pixWindow = DefaultPixCountdown
	}
	tick := cfg.TickInterval
	if tick <= 0 {
		tick = time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &PaymentSession{
		sessionKey: cfg.SessionKey,
		sessions:   cfg.Sessions,
		client:     cfg.Client,
		builder:    cfg.Builder,
		orders:     cfg.Orders,
		logger:     logger,
		customer:   cfg.Customer,
		selection:  cfg.Selection,
		cart:       cfg.Cart,
		state:      domain.CreationNotStarted,
		countdown:  timer.NewCountdown(pixWindow, timer.WithInterval(tick)),
		notify:     cfg.OnOrderCreated,
	}
}

// State returns the order-creation state.
func (p *PaymentSession) State() domain.OrderCreationState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Order returns the created order draft, or nil.
func (p *PaymentSession) Order() *domain.OrderDraft {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.draft == nil {
		return nil
	}
	out := *p.draft
	return &out
}

// =============================================================================
// PIX path
// =============================================================================

// StartPix creates the order and requests the PIX code. The order is created
// exactly once: the in-flight flag is set synchronously before the creation
// call begins, so a duplicate invocation (double mount, re-render) is a
// silent no-op returning the existing draft. A failed attempt may be retried.
func (p *PaymentSession) StartPix(ctx context.Context) (*domain.OrderDraft, error) {
	p.mu.Lock()
	switch p.state {
	case domain.CreationInFlight, domain.CreationDone:
		draft := p.draft
		p.mu.Unlock()
		return draft, nil
	}
	p.state = domain.CreationInFlight
	p.mu.Unlock()

	draft, err := p.createOrder(ctx, domain.PaymentMethodPix)

	p.mu.Lock()
	defer p.mu.Unlock()
	if err != nil {
		p.state = domain.CreationFailed
		return nil, err
	}

	p.state = domain.CreationDone
	p.draft = draft
	p.countdown.Start()
	return draft, nil
}

// PixCode returns the copy-and-paste code for the copy action. After the
// countdown expires the action is disabled until RenewCountdown.
func (p *PaymentSession) PixCode() (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.draft == nil || p.draft.PixCode == "" {
		return "", ErrPixNotStarted
	}
	if p.countdown.Expired() {
		return "", ErrPixExpired
	}
	return p.draft.PixCode, nil
}

// PixRemaining returns the time left on the countdown.
func (p *PaymentSession) PixRemaining() time.Duration {
	return p.countdown.Remaining()
}

// PixExpired reports whether the countdown ran out.
func (p *PaymentSession) PixExpired() bool {
	return p.countdown.Expired()
}

// RenewCountdown re-enables the payment actions after expiry. The raw code
// is never regenerated: the backend order already exists and a new code
// would desynchronize it. Only the countdown restarts.
func (p *PaymentSession) RenewCountdown() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.draft == nil || p.draft.PixCode == "" {
		return ErrPixNotStarted
	}
	p.countdown.Reset()
	return nil
}

// ConfirmPaid is the customer's manual "I already paid" assertion. It
// finalizes the local order as pending confirmation and routes to
// order-status tracking; it does not verify payment server-side.
func (p *PaymentSession) ConfirmPaid(ctx context.Context) error {
	p.mu.Lock()
	if p.draft == nil {
		p.mu.Unlock()
		return ErrNoActiveOrder
	}
	p.draft.Status = domain.OrderStatusPendingConfirmation
	draftID := p.draft.ID
	p.countdown.Stop()
	p.mu.Unlock()

	if err := p.orders.UpdateStatus(ctx, draftID, domain.OrderStatusPendingConfirmation); err != nil {
		p.logger.Error("failed to update local order status",
			slog.String("order_id", draftID),
			slog.Any("error", err))
	}

	if p.notify != nil {
		p.notify(draftID)
	}
	return nil
}

// =============================================================================
// Card path
// =============================================================================

// ConfirmCard creates the order for pay-on-delivery card payment. Creation
// is deferred until this explicit confirmation; invoking it again after a
// successful creation is a silent no-op returning the existing draft.
func (p *PaymentSession) ConfirmCard(ctx context.Context) (*domain.OrderDraft, error) {
	p.mu.Lock()
	if p.draft != nil {
		draft := p.draft
		p.mu.Unlock()
		return draft, nil
	}
	if p.state == domain.CreationInFlight {
		p.mu.Unlock()
		return nil, nil
	}
	p.state = domain.CreationInFlight
	p.mu.Unlock()

	draft, err := p.createOrder(ctx, domain.PaymentMethodCard)

	p.mu.Lock()
	if err != nil {
		p.state = domain.CreationFailed
		p.mu.Unlock()
		return nil, err
	}
	p.state = domain.CreationDone
	p.draft = draft
	p.mu.Unlock()

	if p.notify != nil {
		p.notify(draft.ID)
	}
	return draft, nil
}

// =============================================================================
// Shared order creation
// =============================================================================

// createOrder builds and validates the payload, calls the ordering backend,
// refreshes the session token and stores the order locally. Validation
// failures abort before any network call with all collected errors.
func (p *PaymentSession) createOrder(ctx context.Context, method domain.PaymentMethod) (*domain.OrderDraft, error) {
	selection := p.selection
	selection.PaymentMethod = method

	payload := p.builder.Build(p.customer, selection, p.cart)
	if err := p.builder.Validate(payload); err != nil {
		return nil, err
	}

	result, err := p.client.CreateOrder(ctx, payload, p.customer.Token)
	if err != nil {
		p.logger.Warn("order creation failed",
			slog.String("session_key", p.sessionKey),
			slog.Any("error", err))
		return nil, err
	}

	// Token refresh only on success; the session token is never updated
	// optimistically.
	if err := p.sessions.RefreshToken(ctx, p.sessionKey, p.customer, result.Token); err != nil {
		p.logger.Error("failed to persist refreshed session token",
			slog.String("session_key", p.sessionKey),
			slog.Any("error", err))
	}

	total := p.cart.SubtotalCents()
	if selection.DeliveryFeeCents != nil {
		total += *selection.DeliveryFeeCents
	}

	draft := &domain.OrderDraft{
		ID:            uuid.New().String(),
		APIOrderID:    result.OrderID,
		APIToken:      result.Token,
		PaymentMethod: method,
		TotalCents:    total,
		Status:        domain.OrderStatusCreated,
		CreatedAt:     time.Now(),
	}
	if result.Pix != nil {
		draft.PixCode = result.Pix.CopyAndPaste
	}

	if err := p.orders.Save(ctx, draft); err != nil {
		p.logger.Error("failed to store order locally",
			slog.String("order_id", draft.ID),
			slog.Any("error", err))
	}

	return draft, nil
}

// Teardown stops the countdown when the payment step unmounts. It does not
// cancel an order creation already in flight.
func (p *PaymentSession) Teardown() {
	p.countdown.Stop()
}

// MemoryOrderStore is an in-memory OrderStore.
type MemoryOrderStore struct {
	mu     sync.RWMutex
	orders map[string]domain.OrderDraft
}

// NewMemoryOrderStore creates an empty in-memory order store.
func NewMemoryOrderStore() *MemoryOrderStore {
	return &MemoryOrderStore{orders: make(map[string]domain.OrderDraft)}
}

// Save stores an order draft copy.
func (m *MemoryOrderStore) Save(ctx context.Context, draft *domain.OrderDraft) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders[draft.ID] = *draft
	return nil
}

// UpdateStatus transitions a stored order's status.
func (m *MemoryOrderStore) UpdateStatus(ctx context.Context, id, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	order, ok := m.orders[id]
	if !ok {
		return ErrOrderNotFound
	}
	order.Status = status
	m.orders[id] = order
	return nil
}

// Get retrieves a stored order copy (used by tests and handlers).
func (m *MemoryOrderStore) Get(id string) (*domain.OrderDraft, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	order, ok := m.orders[id]
	if !ok {
		return nil, false
	}
	return &order, true
}
