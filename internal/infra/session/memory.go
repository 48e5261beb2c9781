package session

import (
	"context"
	"time"

	"github.com/boddenberg/wallet-console-go/internal/domain"
	"github.com/boddenberg/wallet-console-go/internal/infra/cache"
	"github.com/boddenberg/wallet-console-go/internal/port"
)

// MemoryStore keeps sessions in process. Sessions are lost on restart.
type MemoryStore struct {
	items *cache.InMemory[*domain.Session]
	now   func() time.Time
}

var _ port.SessionStore = (*MemoryStore)(nil)

// NewMemoryStore creates a store whose entries live at most ttl.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{items: cache.New[*domain.Session](ttl), now: time.Now}
}

// Save stores s until its expiry.
func (m *MemoryStore) Save(_ context.Context, s *domain.Session) error {
	cp := *s
	m.items.SetWithTTL(s.ID, &cp, s.ExpiresAt.Sub(m.now()))
	return nil
}

// Get returns a copy of the session, or nil if it is unknown or expired.
func (m *MemoryStore) Get(_ context.Context, id string) (*domain.Session, error) {
	s, ok := m.items.Get(id)
	if !ok || s.Expired(m.now()) {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

// Delete forgets the session.
func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.items.Delete(id)
	return nil
}

// Close stops the background cleanup.
func (m *MemoryStore) Close() error {
	m.items.Close()
	return nil
}
