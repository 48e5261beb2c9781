// Package service provides the use-case layer of the console: typed calls
// against every wallet backend endpoint, the existence probes that gate
// dependent creates, and the wallet transfer workflow.
package service

import (
	"context"
	"encoding/json"
	"net/url"
	"time"

	"github.com/boddenberg/wallet-console-go/internal/domain"
	"github.com/boddenberg/wallet-console-go/internal/infra/observability"
	"github.com/boddenberg/wallet-console-go/internal/port"

	"github.com/tidwall/gjson"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var backendTracer = otel.Tracer("service/backend")

// Backend exposes the wallet backend REST contract as typed operations.
// It holds no state besides its collaborators and is shared by all sessions.
type Backend struct {
	caller  port.Caller
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewBackend creates a new Backend over the given gateway.
func NewBackend(caller port.Caller, metrics *observability.Metrics, logger *zap.Logger) *Backend {
	return &Backend{caller: caller, metrics: metrics, logger: logger}
}

// call issues one gateway call and records its latency and failure kind.
func (b *Backend) call(ctx context.Context, op, method, path string, body, out any) error {
	ctx, span := backendTracer.Start(ctx, "Backend."+op)
	defer span.End()
	span.SetAttributes(attribute.String("backend.operation", op))

	start := time.Now()
	err := b.caller.Call(ctx, method, path, body, out)
	b.metrics.RecordBackendCall(op, time.Since(start))

	if err != nil {
		kind := domain.KindOf(err).String()
		b.metrics.IncrBackendError(kind)
		span.SetAttributes(attribute.String("error.kind", kind))
		return err
	}
	return nil
}

func (b *Backend) postForm(ctx context.Context, op, path string, values url.Values, out any) error {
	ctx, span := backendTracer.Start(ctx, "Backend."+op)
	defer span.End()

	start := time.Now()
	err := b.caller.PostForm(ctx, path, values, out)
	b.metrics.RecordBackendCall(op, time.Since(start))

	if err != nil {
		b.metrics.IncrBackendError(domain.KindOf(err).String())
		return err
	}
	return nil
}

// send issues a mutation whose response may echo the stored record or just
// acknowledge it. The record is nil when the backend did not return one.
func send[T any](ctx context.Context, b *Backend, op, method, path string, body any) (*T, error) {
	var raw json.RawMessage
	if err := b.call(ctx, op, method, path, body, &raw); err != nil {
		return nil, err
	}
	return record[T](raw), nil
}

func record[T any](raw json.RawMessage) *T {
	if !gjson.ValidBytes(raw) || !gjson.ParseBytes(raw).IsObject() {
		return nil
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil
	}
	return &v
}

// ack decodes a mutation acknowledgement.
func (b *Backend) ack(ctx context.Context, op, method, path string, body any) (string, error) {
	var resp domain.MessageResponse
	if err := b.call(ctx, op, method, path, body, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

func seg(s string) string {
	return url.PathEscape(s)
}
