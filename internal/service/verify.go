package service

import (
	"context"
	"net/http"
	"strings"
	"sync"

	"github.com/boddenberg/wallet-console-go/internal/domain"
	"github.com/boddenberg/wallet-console-go/internal/infra/observability"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var verifyTracer = otel.Tracer("service/verify")

// Entity names a resource that can be probed by natural key.
type Entity string

const (
	EntityCustomer    Entity = "Customer"
	EntityWallet      Entity = "Wallet"
	EntityBankAccount Entity = "BankAccount"
)

// Ref is a reference a dependent record carries to another entity.
type Ref struct {
	Entity Entity
	Key    string
}

// Verifier probes referenced entities before dependent creates.
type Verifier struct {
	backend *Backend
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewVerifier creates a new Verifier.
func NewVerifier(backend *Backend, metrics *observability.Metrics, logger *zap.Logger) *Verifier {
	return &Verifier{backend: backend, metrics: metrics, logger: logger}
}

// Exists reports whether the entity is known to the backend. Absence and
// every failure are reported as false; the error itself is only logged.
func (v *Verifier) Exists(ctx context.Context, e Entity, key string) bool {
	ctx, span := verifyTracer.Start(ctx, "Verifier.Exists")
	defer span.End()
	span.SetAttributes(attribute.String("entity", string(e)))

	key = strings.TrimSpace(key)
	if key == "" {
		return false
	}

	var err error
	switch e {
	case EntityCustomer:
		var env domain.CustomerEnvelope
		err = v.backend.call(ctx, "probe.customer", http.MethodGet, "/customers/"+seg(key), nil, &env)
		if err == nil && env.Customer == nil {
			v.metrics.IncrProbe(string(e), false)
			return false
		}
	case EntityWallet:
		err = v.backend.call(ctx, "probe.wallet", http.MethodGet, "/wallets/"+seg(key), nil, nil)
	case EntityBankAccount:
		err = v.backend.call(ctx, "probe.bank_account", http.MethodGet, "/bankaccounts/account/"+seg(key), nil, nil)
	default:
		v.logger.Warn("probe: unknown entity", zap.String("entity", string(e)))
		return false
	}

	exists := err == nil
	if err != nil {
		v.logger.Debug("probe: entity not confirmed",
			zap.String("entity", string(e)),
			zap.String("key", key),
			zap.Error(err),
		)
	}
	v.metrics.IncrProbe(string(e), exists)
	span.SetAttributes(attribute.Bool("exists", exists))
	return exists
}

// CreateDependent probes every ref concurrently and runs create only when
// all of them exist. Otherwise it returns *domain.ErrReferenceMissing for
// the first missing ref, in the order given, and create is never called.
func (v *Verifier) CreateDependent(ctx context.Context, refs []Ref, create func(context.Context) error) error {
	found := make([]bool, len(refs))

	var wg sync.WaitGroup
	for i, ref := range refs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			found[i] = v.Exists(ctx, ref.Entity, ref.Key)
		}()
	}
	wg.Wait()

	for i, ok := range found {
		if !ok {
			return &domain.ErrReferenceMissing{Resource: string(refs[i].Entity), Key: refs[i].Key}
		}
	}
	return create(ctx)
}
