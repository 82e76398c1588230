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

// SessionStore implements service.SessionStore using PostgreSQL.
type SessionStore struct {
	pool         *pgxpool.Pool
	restaurantID int64
}

// Compile-time check that SessionStore implements service.SessionStore.
var _ service.SessionStore = (*SessionStore)(nil)

// NewSessionStore creates a session store scoped to one restaurant.
func NewSessionStore(pool *pgxpool.Pool, restaurantID int64) *SessionStore {
	return &SessionStore{pool: pool, restaurantID: restaurantID}
}

// Load retrieves a customer session by its device key.
func (s *SessionStore) Load(ctx context.Context, key string) (*domain.CustomerSession, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT token, name, phone, birth_date, authenticated,
		       street, number, neighborhood, postal_code, complement, distance_meters
		FROM customer_sessions
		WHERE restaurant_id = $1 AND session_key = $2`,
		s.restaurantID, key,
	)

	var (
		session        domain.CustomerSession
		token          pgtype.Text
		birthDate      pgtype.Text
		street         pgtype.Text
		number         pgtype.Text
		neighborhood   pgtype.Text
		postalCode     pgtype.Text
		complement     pgtype.Text
		distanceMeters pgtype.Int4
	)
	err := row.Scan(&token, &session.Name, &session.Phone, &birthDate, &session.Authenticated,
		&street, &number, &neighborhood, &postalCode, &complement, &distanceMeters)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, service.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to load customer session: %w", err)
	}

	session.Token = token.String
	session.BirthDate = birthDate.String

	// An address exists when at least one field was stored.
	if street.Valid || number.Valid || neighborhood.Valid || postalCode.Valid || distanceMeters.Valid {
		addr := &domain.Address{
			Street:       street.String,
			Number:       number.String,
			Neighborhood: neighborhood.String,
			PostalCode:   postalCode.String,
			Complement:   complement.String,
		}
		if distanceMeters.Valid {
			meters := int(distanceMeters.Int32)
			addr.DistanceMeters = &meters
		}
		session.Address = addr
	}

	return &session, nil
}

// Save upserts the customer session for a device key.
func (s *SessionStore) Save(ctx context.Context, key string, session *domain.CustomerSession) error {
	var (
		street         pgtype.Text
		number         pgtype.Text
		neighborhood   pgtype.Text
		postalCode     pgtype.Text
		complement     pgtype.Text
		distanceMeters pgtype.Int4
	)
	if addr := session.Address; addr != nil {
		street = textOrNull(addr.Street)
		number = textOrNull(addr.Number)
		neighborhood = textOrNull(addr.Neighborhood)
		postalCode = textOrNull(addr.PostalCode)
		complement = textOrNull(addr.Complement)
		if addr.DistanceMeters != nil {
			distanceMeters = pgtype.Int4{Int32: int32(*addr.DistanceMeters), Valid: true}
		}
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO customer_sessions (
			restaurant_id, session_key, token, name, phone, birth_date, authenticated,
			street, number, neighborhood, postal_code, complement, distance_meters, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, now())
		ON CONFLICT (restaurant_id, session_key) DO UPDATE SET
			token = EXCLUDED.token,
			name = EXCLUDED.name,
			phone = EXCLUDED.phone,
			birth_date = EXCLUDED.birth_date,
			authenticated = EXCLUDED.authenticated,
			street = EXCLUDED.street,
			number = EXCLUDED.number,
			neighborhood = EXCLUDED.neighborhood,
			postal_code = EXCLUDED.postal_code,
			complement = EXCLUDED.complement,
			distance_meters = EXCLUDED.distance_meters,
			updated_at = now()`,
		s.restaurantID, key,
		textOrNull(session.Token), session.Name, session.Phone,
		textOrNull(session.BirthDate), session.Authenticated,
		street, number, neighborhood, postalCode, complement, distanceMeters,
	)
	if err != nil {
		return fmt.Errorf("failed to save customer session: %w", err)
	}
	return nil
}

// Delete removes a customer session.
func (s *SessionStore) Delete(ctx context.Context, key string) error {
	_, err := s.pool.Exec(ctx, `
		DELETE FROM customer_sessions
		WHERE restaurant_id = $1 AND session_key = $2`,
		s.restaurantID, key,
	)
	if err != nil {
		return fmt.Errorf("failed to delete customer session: %w", err)
	}
	return nil
}
