package service

import (
	"context"
	"net/http"

	"github.com/boddenberg/wallet-console-go/internal/domain"
)

// AddBankAccount: POST /bankaccounts/add. Callers gate this on the
// customer existing; see Verifier.CreateDependent.
func (b *Backend) AddBankAccount(ctx context.Context, a domain.BankAccount) (*domain.BankAccount, error) {
	return send[domain.BankAccount](ctx, b, "bank_account.add", http.MethodPost, "/bankaccounts/add", a)
}

// ListBankAccounts: GET /bankaccounts/{mobile}
func (b *Backend) ListBankAccounts(ctx context.Context, mobile string) ([]domain.BankAccount, error) {
	var out []domain.BankAccount
	if err := b.call(ctx, "bank_account.list", http.MethodGet, "/bankaccounts/"+seg(mobile), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetBankAccount: GET /bankaccounts/account/{accountNumber}
func (b *Backend) GetBankAccount(ctx context.Context, accountNumber string) (*domain.BankAccount, error) {
	var out domain.BankAccount
	if err := b.call(ctx, "bank_account.get", http.MethodGet, "/bankaccounts/account/"+seg(accountNumber), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteBankAccount: DELETE /bankaccounts/{accountNumber}
func (b *Backend) DeleteBankAccount(ctx context.Context, accountNumber string) (string, error) {
	return b.ack(ctx, "bank_account.delete", http.MethodDelete, "/bankaccounts/"+seg(accountNumber), nil)
}
