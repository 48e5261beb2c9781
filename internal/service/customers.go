package service

import (
	"context"
	"net/http"

	"github.com/boddenberg/wallet-console-go/internal/domain"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ============================================================
// Customers
// ============================================================

// CreateCustomer: POST /customers/create
func (b *Backend) CreateCustomer(ctx context.Context, c domain.Customer) (string, error) {
	return b.ack(ctx, "customer.create", http.MethodPost, "/customers/create", c)
}

// UpdateCustomer: PUT /customers/update
func (b *Backend) UpdateCustomer(ctx context.Context, c domain.Customer) (string, error) {
	return b.ack(ctx, "customer.update", http.MethodPut, "/customers/update", c)
}

// GetCustomer: GET /customers/{mobile}. A 2xx envelope without a customer
// is reported as NotFound.
func (b *Backend) GetCustomer(ctx context.Context, mobile string) (*domain.Customer, error) {
	var env domain.CustomerEnvelope
	if err := b.call(ctx, "customer.get", http.MethodGet, "/customers/"+seg(mobile), nil, &env); err != nil {
		return nil, err
	}
	if env.Customer == nil {
		return nil, &domain.APIError{Kind: domain.KindNotFound, Status: http.StatusOK, Message: env.Message}
	}
	return env.Customer, nil
}

// DeleteCustomer: DELETE /customers/{mobile}
func (b *Backend) DeleteCustomer(ctx context.Context, mobile string) (string, error) {
	return b.ack(ctx, "customer.delete", http.MethodDelete, "/customers/"+seg(mobile), nil)
}

// CustomerOverview fetches the customer together with its wallet, bank
// accounts, beneficiaries and bills, concurrently. Only the customer lookup
// is mandatory; a section the backend reports as absent or rejects is left
// empty. Network failures fail the whole overview.
func (b *Backend) CustomerOverview(ctx context.Context, mobile string) (*domain.CustomerOverview, error) {
	ctx, span := backendTracer.Start(ctx, "Backend.CustomerOverview")
	defer span.End()

	ov := &domain.CustomerOverview{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		c, err := b.GetCustomer(gctx, mobile)
		if err != nil {
			return err
		}
		ov.Customer = c
		return nil
	})
	g.Go(func() error {
		w, err := b.GetWallet(gctx, mobile)
		ov.Wallet = w
		return b.optional("wallet", err)
	})
	g.Go(func() error {
		accts, err := b.ListBankAccounts(gctx, mobile)
		ov.BankAccounts = accts
		return b.optional("bank_accounts", err)
	})
	g.Go(func() error {
		bens, err := b.ListBeneficiaries(gctx, mobile)
		ov.Beneficiaries = bens
		return b.optional("beneficiaries", err)
	})
	g.Go(func() error {
		bills, err := b.ListBillPayments(gctx, mobile)
		ov.BillPayments = bills
		return b.optional("bill_payments", err)
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if ov.BankAccounts == nil {
		ov.BankAccounts = []domain.BankAccount{}
	}
	if ov.Beneficiaries == nil {
		ov.Beneficiaries = []domain.Beneficiary{}
	}
	if ov.BillPayments == nil {
		ov.BillPayments = []domain.BillPayment{}
	}
	return ov, nil
}

func (b *Backend) optional(section string, err error) error {
	if err == nil {
		return nil
	}
	switch domain.KindOf(err) {
	case domain.KindNotFound, domain.KindRejected:
		b.logger.Debug("overview: section unavailable",
			zap.String("section", section),
			zap.Error(err),
		)
		return nil
	default:
		return err
	}
}
