package identity

import (
	"context"
	"strings"
	"sync"
)

// MemoryStore is an in-process Store used when no database is configured.
type MemoryStore struct {
	mu      sync.RWMutex
	byID    map[string]Account
	byEmail map[string]string
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:    make(map[string]Account),
		byEmail: make(map[string]string),
	}
}

// CreateAccount inserts a, failing with ConflictError when the email is taken.
func (s *MemoryStore) CreateAccount(ctx context.Context, a Account) error {
	const op = "identity.MemoryStore.CreateAccount"
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(a.ID) == "" || a.EmailNorm == "" {
		return invalid(op, "missing id or email")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.byEmail[a.EmailNorm]; taken {
		return ConflictError{Op: op, Field: "email"}
	}
	if _, taken := s.byID[a.ID]; taken {
		return ConflictError{Op: op, Field: "id"}
	}
	s.byID[a.ID] = a
	s.byEmail[a.EmailNorm] = a.ID
	return nil
}

// AccountByEmail looks up an account by normalized email.
func (s *MemoryStore) AccountByEmail(ctx context.Context, emailNorm string) (Account, error) {
	if err := ctx.Err(); err != nil {
		return Account{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[emailNorm]
	if !ok {
		return Account{}, NotFoundError{Op: "identity.MemoryStore.AccountByEmail", Resource: "account"}
	}
	return s.byID[id], nil
}

// AccountByID looks up an account by id.
func (s *MemoryStore) AccountByID(ctx context.Context, id string) (Account, error) {
	if err := ctx.Err(); err != nil {
		return Account{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.byID[id]
	if !ok {
		return Account{}, NotFoundError{Op: "identity.MemoryStore.AccountByID", Resource: "account"}
	}
	return a, nil
}
