// Package servicetest provides an in-memory port.Caller that answers from
// canned replies and records every call it receives.
package servicetest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"sync"

	"github.com/boddenberg/wallet-console-go/internal/domain"
	"github.com/boddenberg/wallet-console-go/internal/port"
)

// Call is one recorded request.
type Call struct {
	Method string
	Path   string
	Body   json.RawMessage
	Form   url.Values
}

type reply struct {
	body string
	err  error
}

// Caller answers "METHOD path" with the reply registered via On or Fail.
// Unregistered routes answer a 404 NotFound.
type Caller struct {
	mu     sync.Mutex
	routes map[string]reply
	calls  []Call

	// Hook, when set, runs before the reply is returned.
	Hook func(method, path string)
}

var _ port.Caller = (*Caller)(nil)

// NewCaller creates an empty Caller.
func NewCaller() *Caller {
	return &Caller{routes: make(map[string]reply)}
}

// On registers a JSON reply body. Use a quoted JSON string for text bodies.
func (c *Caller) On(method, path, body string) *Caller {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.routes[method+" "+path] = reply{body: body}
	return c
}

// Fail registers an error reply.
func (c *Caller) Fail(method, path string, err error) *Caller {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.routes[method+" "+path] = reply{err: err}
	return c
}

// Call implements port.Caller.
func (c *Caller) Call(_ context.Context, method, path string, body, out any) error {
	var raw json.RawMessage
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		raw = b
	}
	return c.answer(Call{Method: method, Path: path, Body: raw}, out)
}

// PostForm implements port.Caller.
func (c *Caller) PostForm(_ context.Context, path string, values url.Values, out any) error {
	return c.answer(Call{Method: http.MethodPost, Path: path, Form: values}, out)
}

func (c *Caller) answer(call Call, out any) error {
	c.mu.Lock()
	c.calls = append(c.calls, call)
	r, ok := c.routes[call.Method+" "+call.Path]
	hook := c.Hook
	c.mu.Unlock()

	if hook != nil {
		hook(call.Method, call.Path)
	}
	if !ok {
		return &domain.APIError{Kind: domain.KindNotFound, Status: http.StatusNotFound}
	}
	if r.err != nil {
		return r.err
	}
	if out == nil || r.body == "" {
		return nil
	}
	return json.Unmarshal([]byte(r.body), out)
}

// Calls returns a copy of the recorded calls.
func (c *Caller) Calls() []Call {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Call(nil), c.calls...)
}

// Count returns how many calls matched method and path.
func (c *Caller) Count(method, path string) int {
	n := 0
	for _, call := range c.Calls() {
		if call.Method == method && call.Path == path {
			n++
		}
	}
	return n
}

// Reset forgets recorded calls, keeping the routes.
func (c *Caller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = nil
}

// Rejected builds the error the gateway returns for a non-2xx answer.
func Rejected(status int, msg string) error {
	return &domain.APIError{Kind: domain.KindRejected, Status: status, Message: msg}
}

// Unreachable builds the error the gateway returns when the backend is down.
func Unreachable() error {
	return &domain.APIError{Kind: domain.KindNetwork, Err: errUnreachable}
}

var errUnreachable = &url.Error{Op: "Post", URL: "http://backend", Err: context.DeadlineExceeded}
