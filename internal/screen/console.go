package screen

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Loader is implemented by screens that fetch data when mounted.
type Loader interface {
	Load(ctx context.Context) error
}

// Console is the set of screens mounted for one operator session. Screens
// are mounted lazily on first use; Mount replaces a screen with a fresh
// instance, so completions still running against the old one are inert.
type Console struct {
	mu      sync.Mutex
	deps    Deps
	screens map[string]Screen
}

// NewConsole creates an empty console.
func NewConsole(deps Deps) *Console {
	return &Console{deps: deps, screens: make(map[string]Screen, len(Names))}
}

// ErrUnknownScreen is returned for a screen name not in Names.
type ErrUnknownScreen struct {
	Name string
}

func (e *ErrUnknownScreen) Error() string {
	return fmt.Sprintf("unknown screen %q", e.Name)
}

func (c *Console) build(name string) (Screen, error) {
	switch name {
	case NameCustomer:
		return NewCustomer(c.deps), nil
	case NameBankAccount:
		return NewBankAccount(c.deps), nil
	case NameBeneficiary:
		return NewBeneficiary(c.deps), nil
	case NameBillPayment:
		return NewBillPayment(c.deps), nil
	case NameTransaction:
		return NewTransaction(c.deps), nil
	case NameWallet:
		return NewWallet(c.deps), nil
	default:
		return nil, &ErrUnknownScreen{Name: name}
	}
}

// Mount navigates to a screen: any previous instance and its state are
// discarded, and the new one loads its initial data.
func (c *Console) Mount(ctx context.Context, name string) (Screen, error) {
	s, err := c.build(name)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.screens[name] = s
	c.mu.Unlock()

	c.load(ctx, s)
	return s, nil
}

// Screen returns the mounted screen, mounting it on first use.
func (c *Console) Screen(ctx context.Context, name string) (Screen, error) {
	c.mu.Lock()
	s, ok := c.screens[name]
	c.mu.Unlock()
	if ok {
		return s, nil
	}
	return c.Mount(ctx, name)
}

// load runs the initial fetch. Its outcome is already on the screen's
// notifications, so the error is only logged.
func (c *Console) load(ctx context.Context, s Screen) {
	l, ok := s.(Loader)
	if !ok {
		return
	}
	if err := l.Load(ctx); err != nil {
		c.deps.Logger.Debug("screen load failed", zap.String("screen", s.Name()), zap.Error(err))
	}
}

// Get returns the named screen as its concrete type.
func Get[T Screen](ctx context.Context, c *Console, name string) (T, error) {
	var zero T
	s, err := c.Screen(ctx, name)
	if err != nil {
		return zero, err
	}
	t, ok := s.(T)
	if !ok {
		return zero, &ErrUnknownScreen{Name: name}
	}
	return t, nil
}
