package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
)

var (
	ErrNotFound   = errors.New("session not found")
	ErrNilSession = errors.New("session is nil")
)

// Store is the persistence contract used by the orchestrator.
type Store interface {
	Load(ctx context.Context, customerID string) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, customerID string) error
}

// MemoryStore keeps sessions in process memory. It is the default backend
// and the test double; clones on both read and write so callers never share
// mutable state with the store.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*Session)}
}

func (m *MemoryStore) Load(ctx context.Context, customerID string) (*Session, error) {
	customerID = strings.TrimSpace(customerID)
	if customerID == "" {
		return nil, ErrNotFound
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[customerID]
	if !ok {
		return nil, ErrNotFound
	}
	return s.Clone(), nil
}

func (m *MemoryStore) Save(ctx context.Context, s *Session) error {
	if s == nil {
		return ErrNilSession
	}
	if strings.TrimSpace(s.CustomerID) == "" {
		return errors.New("session customer id is empty")
	}
	if s.Version <= 0 {
		s.Version = 1
	}
	if s.UpdatedAt.IsZero() {
		s.UpdatedAt = time.Now().UTC()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.CustomerID] = s.Clone()
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, customerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, strings.TrimSpace(customerID))
	return nil
}
