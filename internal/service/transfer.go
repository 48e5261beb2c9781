package service

import (
	"context"
	"strings"

	"github.com/boddenberg/wallet-console-go/internal/domain"
	"github.com/boddenberg/wallet-console-go/internal/infra/observability"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

var transferTracer = otel.Tracer("service/transfer")

const invalidTransfer = "Invalid transfer details"

// Transfers runs wallet-to-wallet transfers. The backend debits and
// credits atomically; a transfer is one call, never split, never retried.
type Transfers struct {
	backend *Backend
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewTransfers creates a new transfer orchestrator.
func NewTransfers(backend *Backend, metrics *observability.Metrics, logger *zap.Logger) *Transfers {
	return &Transfers{backend: backend, metrics: metrics, logger: logger}
}

// Validate checks the transfer form without touching the backend.
func (t *Transfers) Validate(fromMobile, toMobile, amount string) (domain.TransferIntent, error) {
	from := strings.TrimSpace(fromMobile)
	to := strings.TrimSpace(toMobile)
	if from == "" {
		return domain.TransferIntent{}, &domain.ErrValidation{Field: "fromMobile", Message: invalidTransfer}
	}
	if to == "" {
		return domain.TransferIntent{}, &domain.ErrValidation{Field: "toMobile", Message: invalidTransfer}
	}
	amt, err := domain.ParsePositiveAmount("amount", amount)
	if err != nil {
		return domain.TransferIntent{}, &domain.ErrValidation{Field: "amount", Message: invalidTransfer}
	}
	return domain.TransferIntent{FromMobile: from, ToMobile: to, Amount: amt}, nil
}

// Transfer validates the intent locally, then issues exactly one
// POST /wallets/transfer. Invalid input fails with *domain.ErrValidation
// and no call. Backend failures are returned unchanged, message included.
func (t *Transfers) Transfer(ctx context.Context, fromMobile, toMobile, amount string) (*domain.TransferReceipt, error) {
	ctx, span := transferTracer.Start(ctx, "Transfers.Transfer")
	defer span.End()

	intent, err := t.Validate(fromMobile, toMobile, amount)
	if err != nil {
		t.metrics.IncrTransfer("invalid")
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.String("transfer.amount", intent.Amount.String()))

	receipt, err := t.backend.transfer(ctx, intent)
	if err != nil {
		t.metrics.IncrTransfer("failure")
		t.logger.Warn("transfer: rejected",
			zap.String("from", intent.FromMobile),
			zap.String("to", intent.ToMobile),
			zap.Error(err),
		)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	t.metrics.IncrTransfer("success")
	t.logger.Info("transfer: completed",
		zap.String("from", intent.FromMobile),
		zap.String("to", intent.ToMobile),
		zap.String("amount", intent.Amount.String()),
	)
	return receipt, nil
}
