// Package client is the single gateway to the wallet backend. Every screen
// reaches the backend through one Gateway configured at startup.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/boddenberg/wallet-console-go/internal/domain"
	"github.com/boddenberg/wallet-console-go/internal/infra/resilience"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"
	"github.com/tidwall/gjson"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("client")

const (
	contentJSON = "application/json"
	contentForm = "application/x-www-form-urlencoded"
)

// Gateway issues calls against the backend base URL. Its configuration is
// fixed at construction and shared by every session.
type Gateway struct {
	httpClient *http.Client
	baseURL    string
	cb         *gobreaker.CircuitBreaker
	bulkhead   *resilience.Bulkhead
	cfg        resilience.Config
	logger     *zap.Logger
}

// NewGateway creates a Gateway. The breaker only counts transport failures
// and 5xx responses; a 4xx is the backend answering, not the backend failing.
func NewGateway(httpClient *http.Client, baseURL string, cfg resilience.Config, logger *zap.Logger) *Gateway {
	return &Gateway{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		cb:         resilience.NewCircuitBreaker("wallet-backend", breakerSuccess),
		bulkhead:   resilience.NewBulkhead(cfg.MaxConcurrency),
		cfg:        cfg,
		logger:     logger,
	}
}

// Call sends body as JSON (when non-nil) and decodes a 2xx response into out
// (when non-nil). Backend and transport failures are *domain.APIError.
func (g *Gateway) Call(ctx context.Context, method, path string, body, out any) error {
	var payload []byte
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		payload = b
	}
	return g.do(ctx, method, path, contentJSON, payload, out)
}

// PostForm posts form-encoded values, as the auth endpoints expect.
func (g *Gateway) PostForm(ctx context.Context, path string, values url.Values, out any) error {
	return g.do(ctx, http.MethodPost, path, contentForm, []byte(values.Encode()), out)
}

func (g *Gateway) do(ctx context.Context, method, path, contentType string, payload []byte, out any) error {
	ctx, span := tracer.Start(ctx, "Gateway."+method, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(
		attribute.String("http.method", method),
		attribute.String("backend.path", path),
	)

	attempt := func() error {
		if err := g.bulkhead.Acquire(ctx); err != nil {
			return &domain.APIError{Kind: domain.KindNetwork, Err: err}
		}
		defer g.bulkhead.Release()

		_, err := g.cb.Execute(func() (any, error) {
			return nil, g.roundTrip(ctx, method, path, contentType, payload, out)
		})
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return &domain.APIError{Kind: domain.KindNetwork, Err: err}
		}
		return err
	}

	var err error
	if method == http.MethodGet {
		err = resilience.RetryWithBackoff(ctx, g.cfg, isNetworkError, attempt)
	} else {
		// Mutations are sent exactly once; a lost response must not turn
		// into a second debit.
		err = attempt()
	}

	if err != nil {
		var apiErr *domain.APIError
		if !errors.As(err, &apiErr) {
			apiErr = &domain.APIError{Kind: domain.KindNetwork, Err: err}
			err = apiErr
		}
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.String("error.kind", apiErr.Kind.String()))
		return err
	}
	return nil
}

func (g *Gateway) roundTrip(ctx context.Context, method, path, contentType string, payload []byte, out any) error {
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, reqBody)
	if err != nil {
		return &domain.APIError{Kind: domain.KindNetwork, Err: err}
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", contentJSON)
	req.Header.Set("X-Request-ID", uuid.NewString())
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := g.httpClient.Do(req)
	if err != nil {
		g.logger.Error("backend: request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return &domain.APIError{Kind: domain.KindNetwork, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &domain.APIError{Kind: domain.KindNetwork, Err: fmt.Errorf("read response body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		kind := domain.KindRejected
		if resp.StatusCode == http.StatusNotFound {
			kind = domain.KindNotFound
		}
		g.logger.Warn("backend: non-2xx response",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(body)),
		)
		return &domain.APIError{Kind: kind, Status: resp.StatusCode, Message: extractMessage(body)}
	}

	g.logger.Debug("backend: request OK",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
	)

	if err := decodeBody(body, out); err != nil {
		return &domain.APIError{Kind: domain.KindRejected, Status: resp.StatusCode, Err: err}
	}
	return nil
}

// decodeBody decodes JSON into out. A plain-text body is treated as a JSON
// string, so *string targets and types that accept a JSON string get it.
func decodeBody(body []byte, out any) error {
	trimmed := bytes.TrimSpace(body)
	if out == nil || len(trimmed) == 0 {
		return nil
	}

	if !json.Valid(trimmed) {
		quoted, err := json.Marshal(string(trimmed))
		if err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		trimmed = quoted
	}
	if err := json.Unmarshal(trimmed, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// extractMessage prefers the backend's "error" field, then "message", then
// a bare string or text body.
func extractMessage(body []byte) string {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return ""
	}
	if !gjson.ValidBytes(trimmed) {
		return string(trimmed)
	}

	r := gjson.ParseBytes(trimmed)
	switch r.Type {
	case gjson.String:
		return r.String()
	case gjson.JSON:
		for _, field := range []string{"error", "message"} {
			if v := r.Get(field); v.Exists() && v.Type == gjson.String && v.String() != "" {
				return v.String()
			}
		}
	}
	return ""
}

func isNetworkError(err error) bool {
	var apiErr *domain.APIError
	return errors.As(err, &apiErr) && apiErr.Kind == domain.KindNetwork
}

func breakerSuccess(err error) bool {
	var apiErr *domain.APIError
	if err == nil {
		return true
	}
	if errors.As(err, &apiErr) && apiErr.Kind != domain.KindNetwork {
		return apiErr.Status < 500
	}
	return false
}
