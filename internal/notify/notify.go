// Package notify holds the transient error/success messages of one screen.
//
// A screen shows at most one error and one success message. Setting either
// starts (or restarts) a single timer; when it fires both slots clear
// together, whichever slot armed it.
package notify

import (
	"sync"
	"time"
)

// DefaultDelay is how long a message stays visible.
const DefaultDelay = 5 * time.Second

// Kinds reported to the OnSet hook.
const (
	KindError   = "error"
	KindSuccess = "success"
)

// Timer is the part of *time.Timer the manager uses.
type Timer interface {
	Stop() bool
}

// Clock abstracts time so expiry can be driven by tests.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func (systemClock) AfterFunc(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }

// SystemClock is the wall clock.
var SystemClock Clock = systemClock{}

// Notice is one visible message.
type Notice struct {
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// Snapshot is the visible state of both slots.
type Snapshot struct {
	Error   *Notice `json:"error,omitempty"`
	Success *Notice `json:"success,omitempty"`
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock replaces the wall clock.
func WithClock(c Clock) Option {
	return func(m *Manager) { m.clock = c }
}

// WithDelay sets the expiry delay. Non-positive values keep the default.
func WithDelay(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.delay = d
		}
	}
}

// OnSet registers a hook called with KindError or KindSuccess every time a
// message is shown.
func OnSet(fn func(kind string)) Option {
	return func(m *Manager) { m.onSet = fn }
}

// Manager owns the two slots of one screen. Safe for concurrent use.
type Manager struct {
	mu      sync.Mutex
	clock   Clock
	delay   time.Duration
	onSet   func(kind string)
	err     *Notice
	success *Notice
	timer   Timer
	gen     uint64
}

// New creates an empty Manager.
func New(opts ...Option) *Manager {
	m := &Manager{clock: SystemClock, delay: DefaultDelay}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Error shows msg in the error slot. A newer outcome supersedes the
// previous one, so any success message is cleared.
func (m *Manager) Error(msg string) {
	m.set(KindError, msg)
}

// Success shows msg in the success slot and clears any error message.
func (m *Manager) Success(msg string) {
	m.set(KindSuccess, msg)
}

func (m *Manager) set(kind, msg string) {
	m.mu.Lock()
	n := &Notice{Message: msg, At: m.clock.Now()}
	if kind == KindError {
		m.err, m.success = n, nil
	} else {
		m.success, m.err = n, nil
	}
	m.restartLocked()
	hook := m.onSet
	m.mu.Unlock()

	if hook != nil {
		hook(kind)
	}
}

func (m *Manager) restartLocked() {
	if m.timer != nil {
		m.timer.Stop()
	}
	m.gen++
	gen := m.gen
	m.timer = m.clock.AfterFunc(m.delay, func() { m.expire(gen) })
}

// expire ignores a timer that was superseded but fired before Stop took.
func (m *Manager) expire(gen uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if gen != m.gen {
		return
	}
	m.err, m.success = nil, nil
	m.timer = nil
}

// Clear empties both slots and cancels the timer.
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	m.gen++
	m.err, m.success = nil, nil
}

// Snapshot returns copies of the visible messages.
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	var s Snapshot
	if m.err != nil {
		n := *m.err
		s.Error = &n
	}
	if m.success != nil {
		n := *m.success
		s.Success = &n
	}
	return s
}
