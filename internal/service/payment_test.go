package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/agilizaapp/web-menu-sub000/internal/domain"
	"github.com/agilizaapp/web-menu-sub000/internal/orderapi"
	"github.com/agilizaapp/web-menu-sub000/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pixResult(code string) *orderapi.OrderResult {
	return &orderapi.OrderResult{
		OrderID: 4821,
		Token:   "fresh-token",
		Pix:     &orderapi.PixInfo{CopyAndPaste: code},
	}
}

func validCustomer() *domain.CustomerSession {
	return &domain.CustomerSession{
		Token: "old-token", Name: "Maria", Phone: "5567999999999", Authenticated: true,
	}
}

func validCart() domain.Cart {
	return domain.Cart{Items: []domain.CartItem{
		{ID: "li-1", ProductID: 10, Name: "Burger", Quantity: 2, UnitPriceCents: 2500},
	}}
}

func pickupSelection(method domain.PaymentMethod) domain.CheckoutSelection {
	return domain.CheckoutSelection{
		DeliveryType:  domain.DeliveryTypePickup,
		PaymentMethod: method,
		PickupLabel:   "Restaurante Central",
	}
}

type paymentFixture struct {
	session *service.PaymentSession
	client  *orderapi.MockClient
	store   *service.SessionService
	orders  *service.MemoryOrderStore
	created []string
	mu      sync.Mutex
}

func (f *paymentFixture) createdOrders() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.created...)
}

func newPaymentFixture(t *testing.T, client *orderapi.MockClient, selection domain.CheckoutSelection, countdown time.Duration) *paymentFixture {
	t.Helper()

	sessionStore := service.NewMemorySessionStore()
	customer := validCustomer()
	require.NoError(t, sessionStore.Save(context.Background(), "sess-1", customer))

	f := &paymentFixture{
		client: client,
		store:  service.NewSessionService(sessionStore, nil),
		orders: service.NewMemoryOrderStore(),
	}
	f.session = service.NewPaymentSession(service.PaymentSessionConfig{
		SessionKey:   "sess-1",
		Sessions:     f.store,
		Client:       client,
		Builder:      service.NewPayloadBuilder(),
		Orders:       f.orders,
		Customer:     customer,
		Selection:    selection,
		Cart:         validCart(),
		PixCountdown: countdown,
		TickInterval: time.Millisecond,
		OnOrderCreated: func(orderID string) {
			f.mu.Lock()
			f.created = append(f.created, orderID)
			f.mu.Unlock()
		},
	})
	t.Cleanup(f.session.Teardown)
	return f
}

func TestStartPixCreatesOrderOnce(t *testing.T) {
	client := &orderapi.MockClient{
		CreateOrderFunc: func(ctx context.Context, payload orderapi.OrderPayload, sessionToken string) (*orderapi.OrderResult, error) {
			return pixResult("000201brcode"), nil
		},
	}
	f := newPaymentFixture(t, client, pickupSelection(domain.PaymentMethodPix), time.Minute)

	first, err := f.session.StartPix(context.Background())
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, "000201brcode", first.PixCode)
	assert.Equal(t, int64(4821), first.APIOrderID)
	assert.Equal(t, domain.CreationDone, f.session.State())

	// A duplicate start from a double mount reuses the created order.
	second, err := f.session.StartPix(context.Background())
	require.NoError(t, err)
	require.NotNil(t, second)
	assert.Equal(t, first.ID, second.ID)

	assert.Equal(t, 1, client.CreateOrderCount())
}

func TestStartPixConcurrentCallsMakeOneNetworkCall(t *testing.T) {
	release := make(chan struct{})
	client := &orderapi.MockClient{
		CreateOrderFunc: func(ctx context.Context, payload orderapi.OrderPayload, sessionToken string) (*orderapi.OrderResult, error) {
			<-release
			return pixResult("000201brcode"), nil
		},
	}
	f := newPaymentFixture(t, client, pickupSelection(domain.PaymentMethodPix), time.Minute)

	var wg sync.WaitGroup
	wg.Add(2)
	for range 2 {
		go func() {
			defer wg.Done()
			_, _ = f.session.StartPix(context.Background())
		}()
	}
	time.Sleep(10 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, 1, client.CreateOrderCount())
	assert.Equal(t, domain.CreationDone, f.session.State())
}

func TestStartPixFailureIsRetryable(t *testing.T) {
	calls := 0
	client := &orderapi.MockClient{
		CreateOrderFunc: func(ctx context.Context, payload orderapi.OrderPayload, sessionToken string) (*orderapi.OrderResult, error) {
			calls++
			if calls == 1 {
				return nil, domain.Unavailable(nil, "orderapi.create", "upstream timeout")
			}
			return pixResult("000201brcode"), nil
		},
	}
	f := newPaymentFixture(t, client, pickupSelection(domain.PaymentMethodPix), time.Minute)

	_, err := f.session.StartPix(context.Background())
	require.Error(t, err)
	assert.Equal(t, domain.CreationFailed, f.session.State())
	assert.Nil(t, f.session.Order())

	draft, err := f.session.StartPix(context.Background())
	require.NoError(t, err)
	require.NotNil(t, draft)
	assert.Equal(t, domain.CreationDone, f.session.State())
	assert.Equal(t, 2, client.CreateOrderCount())
}

func TestValidationAbortsBeforeNetwork(t *testing.T) {
	client := &orderapi.MockClient{}
	selection := domain.CheckoutSelection{
		DeliveryType:  domain.DeliveryTypeDelivery,
		PaymentMethod: domain.PaymentMethodPix,
		Address:       &domain.Address{Street: "X"},
	}
	f := newPaymentFixture(t, client, selection, time.Minute)

	_, err := f.session.StartPix(context.Background())
	require.Error(t, err)
	assert.True(t, domain.IsValidationError(err))
	assert.Zero(t, client.CreateOrderCount(), "invalid payload must never reach the network")
	assert.Equal(t, domain.CreationFailed, f.session.State())
}

func TestPixCodeAndCountdown(t *testing.T) {
	client := &orderapi.MockClient{
		CreateOrderFunc: func(ctx context.Context, payload orderapi.OrderPayload, sessionToken string) (*orderapi.OrderResult, error) {
			return pixResult("000201brcode"), nil
		},
	}
	f := newPaymentFixture(t, client, pickupSelection(domain.PaymentMethodPix), 30*time.Millisecond)

	_, err := f.session.PixCode()
	assert.ErrorIs(t, err, service.ErrPixNotStarted)

	_, err = f.session.StartPix(context.Background())
	require.NoError(t, err)

	code, err := f.session.PixCode()
	require.NoError(t, err)
	assert.Equal(t, "000201brcode", code)
	assert.Greater(t, f.session.PixRemaining(), time.Duration(0))

	require.Eventually(t, f.session.PixExpired, time.Second, time.Millisecond)
	_, err = f.session.PixCode()
	assert.ErrorIs(t, err, service.ErrPixExpired)
}

func TestRenewCountdownKeepsSameCode(t *testing.T) {
	client := &orderapi.MockClient{
		CreateOrderFunc: func(ctx context.Context, payload orderapi.OrderPayload, sessionToken string) (*orderapi.OrderResult, error) {
			return pixResult("000201brcode"), nil
		},
	}
	f := newPaymentFixture(t, client, pickupSelection(domain.PaymentMethodPix), 20*time.Millisecond)

	_, err := f.session.StartPix(context.Background())
	require.NoError(t, err)
	require.Eventually(t, f.session.PixExpired, time.Second, time.Millisecond)

	require.NoError(t, f.session.RenewCountdown())
	assert.False(t, f.session.PixExpired())

	code, err := f.session.PixCode()
	require.NoError(t, err)
	assert.Equal(t, "000201brcode", code, "renewal must not regenerate the code")
	assert.Equal(t, 1, client.CreateOrderCount(), "renewal must not recreate the order")
}

func TestRenewCountdownWithoutOrder(t *testing.T) {
	f := newPaymentFixture(t, &orderapi.MockClient{}, pickupSelection(domain.PaymentMethodPix), time.Minute)
	assert.ErrorIs(t, f.session.RenewCountdown(), service.ErrPixNotStarted)
}

func TestConfirmPaidFinalizesOrder(t *testing.T) {
	client := &orderapi.MockClient{
		CreateOrderFunc: func(ctx context.Context, payload orderapi.OrderPayload, sessionToken string) (*orderapi.OrderResult, error) {
			return pixResult("000201brcode"), nil
		},
	}
	f := newPaymentFixture(t, client, pickupSelection(domain.PaymentMethodPix), time.Minute)

	err := f.session.ConfirmPaid(context.Background())
	assert.ErrorIs(t, err, service.ErrNoActiveOrder)

	draft, err := f.session.StartPix(context.Background())
	require.NoError(t, err)

	require.NoError(t, f.session.ConfirmPaid(context.Background()))

	stored, ok := f.orders.Get(draft.ID)
	require.True(t, ok)
	assert.Equal(t, domain.OrderStatusPendingConfirmation, stored.Status)
	assert.Equal(t, []string{draft.ID}, f.createdOrders())
}

func TestConfirmCardIsIdempotent(t *testing.T) {
	client := &orderapi.MockClient{
		CreateOrderFunc: func(ctx context.Context, payload orderapi.OrderPayload, sessionToken string) (*orderapi.OrderResult, error) {
			return &orderapi.OrderResult{OrderID: 9001, Token: "fresh-token"}, nil
		},
	}
	f := newPaymentFixture(t, client, pickupSelection(domain.PaymentMethodCard), time.Minute)

	first, err := f.session.ConfirmCard(context.Background())
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, domain.PaymentMethodCard, first.PaymentMethod)
	assert.Empty(t, first.PixCode)

	second, err := f.session.ConfirmCard(context.Background())
	require.NoError(t, err)
	require.NotNil(t, second)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, client.CreateOrderCount())
	assert.Equal(t, []string{first.ID}, f.createdOrders())
}

func TestOrderTotalIncludesDeliveryFee(t *testing.T) {
	client := &orderapi.MockClient{
		CreateOrderFunc: func(ctx context.Context, payload orderapi.OrderPayload, sessionToken string) (*orderapi.OrderResult, error) {
			return pixResult("000201brcode"), nil
		},
	}
	fee := int64(700)
	selection := domain.CheckoutSelection{
		DeliveryType:  domain.DeliveryTypeDelivery,
		PaymentMethod: domain.PaymentMethodPix,
		Address: &domain.Address{
			Street: "Rua das Flores", Number: "12", Neighborhood: "Centro", PostalCode: "79600000",
		},
		DeliveryFeeCents: &fee,
	}
	f := newPaymentFixture(t, client, selection, time.Minute)

	draft, err := f.session.StartPix(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(5700), draft.TotalCents, "2x2500 items plus 700 fee")
}

func TestTokenRefreshedOnlyOnSuccess(t *testing.T) {
	client := &orderapi.MockClient{
		CreateOrderFunc: func(ctx context.Context, payload orderapi.OrderPayload, sessionToken string) (*orderapi.OrderResult, error) {
			return nil, domain.Unavailable(nil, "orderapi.create", "upstream timeout")
		},
	}
	f := newPaymentFixture(t, client, pickupSelection(domain.PaymentMethodPix), time.Minute)

	_, err := f.session.StartPix(context.Background())
	require.Error(t, err)

	session, err := f.store.Load(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.Equal(t, "old-token", session.Token, "token must not change on a failed creation")
}

func TestTokenRefreshedOnSuccessfulCreation(t *testing.T) {
	var seenToken string
	client := &orderapi.MockClient{
		CreateOrderFunc: func(ctx context.Context, payload orderapi.OrderPayload, sessionToken string) (*orderapi.OrderResult, error) {
			seenToken = sessionToken
			return pixResult("000201brcode"), nil
		},
	}
	f := newPaymentFixture(t, client, pickupSelection(domain.PaymentMethodPix), time.Minute)

	_, err := f.session.StartPix(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "old-token", seenToken, "creation authenticates with the pre-refresh token")

	session, err := f.store.Load(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.Equal(t, "fresh-token", session.Token)
}
