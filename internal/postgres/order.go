package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/agilizaapp/web-menu-sub000/internal/domain"
	"github.com/agilizaapp/web-menu-sub000/internal/service"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// OrderStore implements service.OrderStore using PostgreSQL. It keeps a
// local record of orders created through the ordering backend so the app can
// track and display them independently of the upstream.
type OrderStore struct {
	pool         *pgxpool.Pool
	restaurantID int64
}

// Compile-time check that OrderStore implements service.OrderStore.
var _ service.OrderStore = (*OrderStore)(nil)

// NewOrderStore creates an order store scoped to one restaurant.
func NewOrderStore(pool *pgxpool.Pool, restaurantID int64) *OrderStore {
	return &OrderStore{pool: pool, restaurantID: restaurantID}
}

// Save stores a newly created order draft.
func (s *OrderStore) Save(ctx context.Context, draft *domain.OrderDraft) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO orders (
			id, restaurant_id, api_order_id, api_token, pix_code,
			payment_method, total_cents, status, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		draft.ID, s.restaurantID, draft.APIOrderID,
		textOrNull(draft.APIToken), textOrNull(draft.PixCode),
		string(draft.PaymentMethod), draft.TotalCents, draft.Status, draft.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save order: %w", err)
	}
	return nil
}

// UpdateStatus transitions a stored order's status.
func (s *OrderStore) UpdateStatus(ctx context.Context, id, status string) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE orders SET status = $3
		WHERE restaurant_id = $1 AND id = $2`,
		s.restaurantID, id, status,
	)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return service.ErrOrderNotFound
	}
	return nil
}

// Get retrieves a stored order.
func (s *OrderStore) Get(ctx context.Context, id string) (*domain.OrderDraft, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, api_order_id, api_token, pix_code, payment_method,
		       total_cents, status, created_at
		FROM orders
		WHERE restaurant_id = $1 AND id = $2`,
		s.restaurantID, id,
	)

	var (
		draft         domain.OrderDraft
		apiToken      pgtype.Text
		pixCode       pgtype.Text
		paymentMethod string
	)
	err := row.Scan(&draft.ID, &draft.APIOrderID, &apiToken, &pixCode,
		&paymentMethod, &draft.TotalCents, &draft.Status, &draft.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, service.ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to load order: %w", err)
	}

	draft.APIToken = apiToken.String
	draft.PixCode = pixCode.String
	draft.PaymentMethod = domain.PaymentMethod(paymentMethod)
	return &draft, nil
}
