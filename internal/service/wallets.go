package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/boddenberg/wallet-console-go/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"
)

// CreateWallet: POST /wallets/add
func (b *Backend) CreateWallet(ctx context.Context, req domain.CreateWalletRequest) (*domain.Wallet, error) {
	return send[domain.Wallet](ctx, b, "wallet.create", http.MethodPost, "/wallets/add", req)
}

// GetWallet: GET /wallets/{mobile}
func (b *Backend) GetWallet(ctx context.Context, mobile string) (*domain.Wallet, error) {
	var out domain.Wallet
	if err := b.call(ctx, "wallet.get", http.MethodGet, "/wallets/"+seg(mobile), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateWalletBalance: PUT /wallets/{mobile}/balance?amount=N. The balance
// is set, not adjusted. The result is nil when the backend only acknowledges.
func (b *Backend) UpdateWalletBalance(ctx context.Context, mobile string, amount decimal.Decimal) (*domain.Wallet, error) {
	q := url.Values{"amount": {amount.String()}}
	path := "/wallets/" + seg(mobile) + "/balance?" + q.Encode()
	return send[domain.Wallet](ctx, b, "wallet.update_balance", http.MethodPut, path, nil)
}

// DeleteWallet: DELETE /wallets/{mobile}
func (b *Backend) DeleteWallet(ctx context.Context, mobile string) (string, error) {
	return b.ack(ctx, "wallet.delete", http.MethodDelete, "/wallets/"+seg(mobile), nil)
}

// transfer: POST /wallets/transfer. Only the Transfers orchestrator calls it.
// Any 2xx means the backend moved the funds, whatever the body looks like.
func (b *Backend) transfer(ctx context.Context, intent domain.TransferIntent) (*domain.TransferReceipt, error) {
	var raw json.RawMessage
	if err := b.call(ctx, "wallet.transfer", http.MethodPost, "/wallets/transfer", intent, &raw); err != nil {
		return nil, err
	}
	return receipt(raw), nil
}

// receipt keeps what can be read from a transfer acknowledgement: a string
// message, and wallet projections that parse as wallets. The rest is ignored.
func receipt(raw json.RawMessage) *domain.TransferReceipt {
	r := &domain.TransferReceipt{}
	if !gjson.ValidBytes(raw) {
		return r
	}

	body := gjson.ParseBytes(raw)
	switch {
	case body.Type == gjson.String:
		r.Message = body.String()
	case body.IsObject():
		if msg := body.Get("message"); msg.Type == gjson.String {
			r.Message = msg.String()
		}
		r.FromWallet = record[domain.Wallet](json.RawMessage(body.Get("fromWallet").Raw))
		r.ToWallet = record[domain.Wallet](json.RawMessage(body.Get("toWallet").Raw))
	}
	return r
}
