package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/agilizaapp/web-menu-sub000/internal/domain"
	"github.com/agilizaapp/web-menu-sub000/internal/orderapi"
	"github.com/agilizaapp/web-menu-sub000/internal/postal"
	"github.com/agilizaapp/web-menu-sub000/internal/schedule"
)

// Step identifies a checkout state-machine state.
type Step string

const (
	StepRegister Step = "register"
	StepCheckout Step = "checkout"
	StepPayment  Step = "payment"
)

// RegisterPhase distinguishes the two registration sub-steps.
type RegisterPhase int

const (
	// PhasePhone is the phone-entry sub-step.
	PhasePhone RegisterPhase = iota + 1
	// PhaseDetails is the name/birth-date sub-step for a new customer.
	PhaseDetails
)

// DefaultLookupDebounce is how long phone and postal input settles before a
// lookup fires.
const DefaultLookupDebounce = 500 * time.Millisecond

// CheckoutConfig wires a Checkout's collaborators.
type CheckoutConfig struct {
	SessionKey string
	Sessions   *SessionService
	Client     orderapi.Client
	Postal     postal.Directory
	Quoter     *FeeQuoter
	Builder    *PayloadBuilder

	// LookupDebounce overrides DefaultLookupDebounce when positive.
	LookupDebounce time.Duration

	// OnStep is invoked after every step transition (optional).
	OnStep func(step Step)

	Logger *slog.Logger
}

// Checkout sequences registration, address/payment selection and payment
// confirmation for one customer session. All methods are safe for concurrent
// use; debounced lookups complete on background goroutines.
type Checkout struct {
	mu sync.Mutex

	sessionKey string
	sessions   *SessionService
	client     orderapi.Client
	postal     postal.Directory
	quoter     *FeeQuoter
	builder    *PayloadBuilder
	debounce   *schedule.Debouncer
	onStep     func(step Step)
	logger     *slog.Logger

	step        Step
	phase       RegisterPhase
	initialized bool

	session   *domain.CustomerSession
	selection domain.CheckoutSelection

	pendingPhone   string
	lookupInFlight bool
	warnings       []string
}

// NewCheckout creates the orchestrator for one customer session.
func NewCheckout(cfg CheckoutConfig) *Checkout {
	debounceDelay := cfg.LookupDebounce
	if debounceDelay <= 0 {
		debounceDelay = DefaultLookupDebounce
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Checkout{
		sessionKey: cfg.SessionKey,
		sessions:   cfg.Sessions,
		client:     cfg.Client,
		postal:     cfg.Postal,
		quoter:     cfg.Quoter,
		builder:    cfg.Builder,
		debounce:   schedule.NewDebouncer(debounceDelay),
		onStep:     cfg.OnStep,
		logger:     logger,
		step:       StepRegister,
		phase:      PhasePhone,
		session:    &domain.CustomerSession{},
	}
}

// Begin loads the persisted session and decides the initial step: a valid
// authenticated session with name and phone skips registration. The decision
// is evaluated once; calling Begin again while the machine is in payment is
// a no-op, so an authentication-state change during payment cannot bounce
// the user backward.
func (c *Checkout) Begin(ctx context.Context) (Step, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.initialized {
		return c.step, nil
	}

	session, err := c.sessions.Load(ctx, c.sessionKey)
	if err != nil {
		return "", err
	}
	c.session = session
	c.initialized = true

	if session.CanSkipRegistration() {
		c.setStepLocked(StepCheckout)
	} else {
		c.setStepLocked(StepRegister)
		c.phase = PhasePhone
	}
	return c.step, nil
}

// Step returns the current state.
func (c *Checkout) Step() Step {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.step
}

// Phase returns the current registration sub-step.
func (c *Checkout) Phase() RegisterPhase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// Session returns a copy of the current customer session.
func (c *Checkout) Session() domain.CustomerSession {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return domain.CustomerSession{}
	}
	return *c.session
}

// Selection returns a copy of the current checkout selection.
func (c *Checkout) Selection() domain.CheckoutSelection {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selection
}

// Warnings drains accumulated non-fatal warnings.
func (c *Checkout) Warnings() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.warnings
	c.warnings = nil
	return out
}

// =============================================================================
// Registration
// =============================================================================

// EnterPhone records a phone-number edit. Once the number reaches the full
// mobile digit count a customer lookup is scheduled (debounced; never
// repeated for an unchanged normalized number). A match short-circuits to
// checkout; not-found advances to the details sub-step.
func (c *Checkout) EnterPhone(raw string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.step != StepRegister {
		return ErrInvalidStep
	}

	digits := domain.DigitsOnly(raw)
	c.pendingPhone = digits

	if len(digits) != MobileDigits {
		c.debounce.Cancel("customer-lookup")
		return nil
	}

	normalized := NormalizePhone(digits)
	c.debounce.Schedule("customer-lookup", normalized, func() {
		c.lookupCustomer(normalized)
	})
	return nil
}

// LookupInFlight reports whether a customer lookup is running; dependent
// actions stay disabled while true.
func (c *Checkout) LookupInFlight() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lookupInFlight
}

// lookupCustomer runs on the debouncer goroutine after input settles.
func (c *Checkout) lookupCustomer(normalizedPhone string) {
	c.mu.Lock()
	if c.step != StepRegister {
		c.mu.Unlock()
		return
	}
	c.lookupInFlight = true
	c.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	customer, err := c.client.CustomerByPhone(ctx, normalizedPhone)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.lookupInFlight = false

	if c.step != StepRegister {
		// The user already moved on; discard the stale result.
		return
	}

	switch {
	case err == nil:
		c.session.Name = customer.Name
		c.session.Phone = customer.Phone
		c.session.Authenticated = true
		c.session.MergeAddress(customer.Address)
		c.saveSessionLocked()
		c.setStepLocked(StepCheckout)
		c.logger.Info("existing customer matched by phone",
			slog.String("session_key", c.sessionKey))

	case errors.Is(err, orderapi.ErrCustomerNotFound):
		c.phase = PhaseDetails

	default:
		// Transport failure: warn and let the user register manually.
		c.warnings = append(c.warnings, "Could not check your phone number; please fill in your details")
		c.phase = PhaseDetails
		c.logger.Warn("customer lookup failed",
			slog.String("session_key", c.sessionKey),
			slog.Any("error", err))
	}
}

// CompleteRegistration finishes the details sub-step for a new customer and
// advances to checkout.
func (c *Checkout) CompleteRegistration(name, birthDate string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.step != StepRegister {
		return ErrInvalidStep
	}
	if len(c.pendingPhone) != MobileDigits {
		return ErrPhoneIncomplete
	}

	if err := validateName(nil, name); err != nil {
		return err
	}

	c.session.Name = name
	c.session.Phone = NormalizePhone(c.pendingPhone)
	c.session.BirthDate = birthDate
	c.saveSessionLocked()
	c.setStepLocked(StepCheckout)
	return nil
}

// Logout clears the customer session and restarts at registration.
func (c *Checkout) Logout(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.sessions.Logout(ctx, c.sessionKey); err != nil {
		return err
	}

	c.session = &domain.CustomerSession{}
	c.selection = domain.CheckoutSelection{}
	c.pendingPhone = ""
	c.debounce.Forget("customer-lookup")
	c.setStepLocked(StepRegister)
	c.phase = PhasePhone
	return nil
}

// =============================================================================
// Checkout step
// =============================================================================

// SetDeliveryType selects delivery or pickup. Pickup fixes the address to
// the restaurant's own location label.
func (c *Checkout) SetDeliveryType(dt domain.DeliveryType, pickupLabel string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.step != StepCheckout {
		return ErrInvalidStep
	}

	c.selection.DeliveryType = dt
	if dt == domain.DeliveryTypePickup {
		c.selection.Address = nil
		c.selection.PickupLabel = pickupLabel
		c.selection.DeliveryFeeCents = nil
		c.selection.DistanceMeters = nil
	} else {
		c.selection.PickupLabel = ""
		if c.selection.Address == nil && c.session.Address != nil {
			addr := *c.session.Address
			c.selection.Address = &addr
		}
	}
	return nil
}

// SetAddress replaces the delivery address under edit.
func (c *Checkout) SetAddress(addr domain.Address) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.step != StepCheckout {
		return ErrInvalidStep
	}

	// A re-typed address invalidates any previously quoted fee.
	c.selection.Address = &addr
	c.selection.DeliveryFeeCents = nil
	c.selection.DistanceMeters = nil
	return nil
}

// EnterPostalCode schedules a debounced directory lookup for the code and
// fills street/neighborhood into currently empty address fields. Lookup
// problems surface as warnings, never as blocking errors.
func (c *Checkout) EnterPostalCode(code string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.step != StepCheckout {
		return ErrInvalidStep
	}

	normalized := domain.NormalizePostalCode(code)
	if len(normalized) != postal.PostalCodeLength {
		c.debounce.Cancel("postal-lookup")
		return nil
	}

	c.debounce.Schedule("postal-lookup", normalized, func() {
		c.fillFromPostal(normalized)
	})
	return nil
}

// fillFromPostal runs on the debouncer goroutine after input settles.
func (c *Checkout) fillFromPostal(code string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	entry, err := c.postal.Lookup(ctx, code)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.step != StepCheckout {
		return
	}

	if err != nil {
		if errors.Is(err, postal.ErrNotFound) {
			c.warnings = append(c.warnings, "Postal code not found; please fill in the address")
		} else {
			c.warnings = append(c.warnings, "Could not look up the postal code")
			c.logger.Warn("postal lookup failed", slog.String("code", code), slog.Any("error", err))
		}
		return
	}

	if c.selection.Address == nil {
		c.selection.Address = &domain.Address{}
	}
	c.selection.Address.PostalCode = code
	entry.Fill(c.selection.Address)
}

// QuoteDeliveryFee prices the delivery fee for the current address and
// stores it in the selection. Never blocks checkout: distance-resolution
// failures degrade to the cheapest tier with a warning.
func (c *Checkout) QuoteDeliveryFee(ctx context.Context) (int64, error) {
	c.mu.Lock()
	if c.step != StepCheckout {
		c.mu.Unlock()
		return 0, ErrInvalidStep
	}
	if c.selection.DeliveryType != domain.DeliveryTypeDelivery {
		c.mu.Unlock()
		return 0, domain.Invalid("checkout.quote_fee", "Delivery fee applies to delivery orders only")
	}
	addr := c.selection.Address
	c.mu.Unlock()

	// Geocoding happens outside the lock; it can wait on the provider's
	// rate-limit spacing.
	quote := c.quoter.Quote(ctx, addr)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.selection.DeliveryFeeCents = &quote.FeeCents
	if quote.DistanceMeters > 0 {
		meters := quote.DistanceMeters
		c.selection.DistanceMeters = &meters
	}
	if quote.Warning != "" {
		c.warnings = append(c.warnings, quote.Warning)
	}
	return quote.FeeCents, nil
}

// SetPaymentMethod selects PIX or card.
func (c *Checkout) SetPaymentMethod(pm domain.PaymentMethod) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.step != StepCheckout {
		return ErrInvalidStep
	}
	c.selection.PaymentMethod = pm
	return nil
}

// ConfirmCheckout validates the confirmed choices and advances to payment.
// Address field validation is skipped for pickup orders.
func (c *Checkout) ConfirmCheckout() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.step != StepCheckout {
		return ErrInvalidStep
	}
	if c.selection.DeliveryType == "" {
		return domain.Invalid("checkout.confirm", "Choose delivery or pickup")
	}
	if c.selection.PaymentMethod == "" {
		return domain.Invalid("checkout.confirm", "Choose a payment method")
	}

	if c.selection.DeliveryType == domain.DeliveryTypeDelivery {
		if err := c.builder.ValidateAddress(c.selection.Address); err != nil {
			return err
		}
	}

	c.setStepLocked(StepPayment)
	return nil
}

// =============================================================================
// Back navigation
// =============================================================================

// Back reverses one step. Reversing clears the downstream step's captured
// data so nothing stale carries over; an order-creation call already in
// flight is not cancelled.
func (c *Checkout) Back() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.step {
	case StepPayment:
		c.setStepLocked(StepCheckout)
		return nil
	case StepCheckout:
		c.selection = domain.CheckoutSelection{}
		c.setStepLocked(StepRegister)
		c.phase = PhasePhone
		return nil
	default:
		return ErrInvalidStep
	}
}

// Close releases the orchestrator's scheduled tasks.
func (c *Checkout) Close() {
	c.debounce.Close()
}

// =============================================================================
// internal
// =============================================================================

func (c *Checkout) setStepLocked(step Step) {
	if c.step == step {
		return
	}
	c.step = step
	if c.onStep != nil {
		go c.onStep(step)
	}
}

func (c *Checkout) saveSessionLocked() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := c.sessions.Save(ctx, c.sessionKey, c.session); err != nil {
		c.logger.Error("failed to persist customer session",
			slog.String("session_key", c.sessionKey),
			slog.Any("error", err))
	}
}
