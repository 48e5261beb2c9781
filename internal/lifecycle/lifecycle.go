// Package lifecycle tracks the request state of every user-triggerable
// action on a screen: Idle -> Pending -> (Succeeded | Failed) -> Idle.
//
// An action cannot be re-triggered while Pending. Terminal states revert to
// Idle only when the action is triggered again; there is no timer.
package lifecycle

import (
	"errors"
	"sort"
	"sync"
)

// ErrBusy is returned by Begin while the same action is still Pending.
var ErrBusy = errors.New("action already in progress")

// State of one action.
type State int

const (
	Idle State = iota
	Pending
	Succeeded
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Pending:
		return "pending"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// MarshalText renders the state by name in JSON snapshots.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Action is the state machine of one (screen, action) pair.
type Action struct {
	mu      sync.Mutex
	name    string
	state   State
	payload any
	err     error
}

// Name returns the action name.
func (a *Action) Name() string { return a.name }

// Begin enters Pending. From a terminal state it passes through Idle first.
func (a *Action) Begin() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state == Pending {
		return ErrBusy
	}
	a.state = Idle
	a.payload, a.err = nil, nil
	a.state = Pending
	return nil
}

// Succeed records the response payload.
func (a *Action) Succeed(payload any) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.state = Succeeded
	a.payload, a.err = payload, nil
}

// Fail records the error.
func (a *Action) Fail(err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.state = Failed
	a.payload, a.err = nil, err
}

// State returns the current state.
func (a *Action) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Result returns the payload of the last success and the error of the last
// failure.
func (a *Action) Result() (any, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.payload, a.err
}

// Run executes fn under the single-flight guard of a and records its
// outcome. It returns ErrBusy without calling fn when a is Pending.
func Run[T any](a *Action, fn func() (T, error)) (T, error) {
	if err := a.Begin(); err != nil {
		var zero T
		return zero, err
	}
	v, err := fn()
	if err != nil {
		a.Fail(err)
		return v, err
	}
	a.Succeed(v)
	return v, nil
}

// Controller owns the actions of one screen. Actions are independent: a
// pending "add" does not block a "get".
type Controller struct {
	mu      sync.Mutex
	actions map[string]*Action
}

// NewController registers the given action names up front so they show up
// in snapshots before first use.
func NewController(names ...string) *Controller {
	c := &Controller{actions: make(map[string]*Action, len(names))}
	for _, n := range names {
		c.actions[n] = &Action{name: n}
	}
	return c
}

// Action returns the named action, creating it on first use.
func (c *Controller) Action(name string) *Action {
	c.mu.Lock()
	defer c.mu.Unlock()
	a, ok := c.actions[name]
	if !ok {
		a = &Action{name: name}
		c.actions[name] = a
	}
	return a
}

// Names lists the registered actions in sorted order.
func (c *Controller) Names() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	names := make([]string, 0, len(c.actions))
	for n := range c.actions {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Busy reports, per action, whether its trigger must be disabled.
func (c *Controller) Busy() map[string]bool {
	out := make(map[string]bool)
	for _, n := range c.Names() {
		out[n] = c.Action(n).State() == Pending
	}
	return out
}

// States reports the state of every action.
func (c *Controller) States() map[string]State {
	out := make(map[string]State)
	for _, n := range c.Names() {
		out[n] = c.Action(n).State()
	}
	return out
}
