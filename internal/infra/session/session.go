// Package session keeps operator sessions: where they are stored (memory or
// Redis), how they are handed to the browser (a signed token) and how they
// travel through a request (context).
package session

import (
	"context"

	"github.com/boddenberg/wallet-console-go/internal/domain"
)

type ctxKey struct{}

// WithSession returns a copy of ctx carrying s.
func WithSession(ctx context.Context, s *domain.Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the session placed by the route guard, or nil.
func FromContext(ctx context.Context) *domain.Session {
	s, _ := ctx.Value(ctxKey{}).(*domain.Session)
	return s
}
