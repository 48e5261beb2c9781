package service

import (
	"context"
	"net/http"
	"strconv"

	"github.com/boddenberg/wallet-console-go/internal/domain"
)

// AddTransaction: POST /transactions/add
func (b *Backend) AddTransaction(ctx context.Context, tx domain.Transaction) (*domain.Transaction, error) {
	return send[domain.Transaction](ctx, b, "transaction.add", http.MethodPost, "/transactions/add", tx)
}

// ListTransactions: GET /transactions/all
func (b *Backend) ListTransactions(ctx context.Context) ([]domain.Transaction, error) {
	var out []domain.Transaction
	if err := b.call(ctx, "transaction.list_all", http.MethodGet, "/transactions/all", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetTransaction: GET /transactions/{id}
func (b *Backend) GetTransaction(ctx context.Context, id int64) (*domain.Transaction, error) {
	var out domain.Transaction
	if err := b.call(ctx, "transaction.get", http.MethodGet, "/transactions/"+strconv.FormatInt(id, 10), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListWalletTransactions: GET /transactions/wallet/{walletId}
func (b *Backend) ListWalletTransactions(ctx context.Context, walletID int64) ([]domain.Transaction, error) {
	var out []domain.Transaction
	path := "/transactions/wallet/" + strconv.FormatInt(walletID, 10)
	if err := b.call(ctx, "transaction.list_by_wallet", http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
