package port

import (
	"context"

	"github.com/boddenberg/wallet-console-go/internal/domain"
)

// SessionStore persists operator sessions between requests.
// Get returns (nil, nil) for an unknown or expired session.
type SessionStore interface {
	Save(ctx context.Context, s *domain.Session) error
	Get(ctx context.Context, id string) (*domain.Session, error)
	Delete(ctx context.Context, id string) error
}
