package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/agilizaapp/web-menu-sub000/internal/domain"
)

// SessionStore persists customer sessions keyed by a client-held key.
// Persistence is an explicit load-on-start / save-on-mutate boundary, never
// an ambient global.
type SessionStore interface {
	// Load retrieves a session. Returns ErrSessionNotFound when absent.
	Load(ctx context.Context, key string) (*domain.CustomerSession, error)

	// Save stores (or replaces) a session.
	Save(ctx context.Context, key string, session *domain.CustomerSession) error

	// Delete removes a session.
	Delete(ctx context.Context, key string) error
}

// SessionService wraps a SessionStore with the checkout session policy:
// the token is only refreshed by a successful order creation and only cleared
// by explicit logout.
type SessionService struct {
	store  SessionStore
	logger *slog.Logger
}

// NewSessionService creates a SessionService.
func NewSessionService(store SessionStore, logger *slog.Logger) *SessionService {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionService{store: store, logger: logger}
}

// Load retrieves the session for key, or a fresh anonymous session when none
// is persisted.
func (s *SessionService) Load(ctx context.Context, key string) (*domain.CustomerSession, error) {
	session, err := s.store.Load(ctx, key)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return &domain.CustomerSession{}, nil
		}
		return nil, err
	}
	return session, nil
}

// Save persists the session after a mutation.
func (s *SessionService) Save(ctx context.Context, key string, session *domain.CustomerSession) error {
	return s.store.Save(ctx, key, session)
}

// RefreshToken stores the server-issued token after a successful order
// creation and marks the session authenticated.
func (s *SessionService) RefreshToken(ctx context.Context, key string, session *domain.CustomerSession, token string) error {
	if token == "" {
		return nil
	}
	session.Token = token
	session.Authenticated = true
	return s.store.Save(ctx, key, session)
}

// Logout clears the persisted session ("Não é você?").
func (s *SessionService) Logout(ctx context.Context, key string) error {
	if err := s.store.Delete(ctx, key); err != nil && !errors.Is(err, ErrSessionNotFound) {
		return err
	}
	s.logger.Info("customer session cleared", slog.String("session_key", key))
	return nil
}

// =============================================================================
// In-memory store (tests and single-process development)
// =============================================================================

// MemorySessionStore is an in-memory SessionStore.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]domain.CustomerSession
}

// NewMemorySessionStore creates an empty in-memory session store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]domain.CustomerSession)}
}

// Load retrieves a session copy.
func (m *MemorySessionStore) Load(ctx context.Context, key string) (*domain.CustomerSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, ok := m.sessions[key]
	if !ok {
		return nil, ErrSessionNotFound
	}
	out := session
	return &out, nil
}

// Save stores a session copy.
func (m *MemorySessionStore) Save(ctx context.Context, key string, session *domain.CustomerSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[key] = *session
	return nil
}

// Delete removes a session.
func (m *MemorySessionStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, key)
	return nil
}
