package service_test

import (
	"testing"

	"github.com/boddenberg/wallet-console-go/internal/infra/observability"
	"github.com/boddenberg/wallet-console-go/internal/service"
	"github.com/boddenberg/wallet-console-go/internal/service/servicetest"

	"go.uber.org/zap"
)

type fixture struct {
	caller    *servicetest.Caller
	metrics   *observability.Metrics
	backend   *service.Backend
	verifier  *service.Verifier
	transfers *service.Transfers
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	caller := servicetest.NewCaller()
	metrics := observability.NewMetrics()
	logger := zap.NewNop()
	backend := service.NewBackend(caller, metrics, logger)
	return &fixture{
		caller:    caller,
		metrics:   metrics,
		backend:   backend,
		verifier:  service.NewVerifier(backend, metrics, logger),
		transfers: service.NewTransfers(backend, metrics, logger),
	}
}
