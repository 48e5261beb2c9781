// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the service and
// screen layers from the concrete gateway and session backends.
package port

import (
	"context"
	"net/url"
	"time"
)

// Caller is the remote API gateway contract: one call per invocation, with
// failures reported as *domain.APIError.
type Caller interface {
	Call(ctx context.Context, method, path string, body, out any) error
	PostForm(ctx context.Context, path string, values url.Values, out any) error
}

// Cache provides generic caching with TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	SetWithTTL(key string, value T, ttl time.Duration)
	Delete(key string)
}
