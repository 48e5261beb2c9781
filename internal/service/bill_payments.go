package service

import (
	"context"
	"net/http"
	"strconv"

	"github.com/boddenberg/wallet-console-go/internal/domain"
)

// AddBillPayment: POST /billpayments/add
func (b *Backend) AddBillPayment(ctx context.Context, bill domain.BillPayment) (*domain.BillPayment, error) {
	return send[domain.BillPayment](ctx, b, "bill_payment.add", http.MethodPost, "/billpayments/add", bill)
}

// ListBillPayments: GET /billpayments/customer/{mobile}
func (b *Backend) ListBillPayments(ctx context.Context, customerMobile string) ([]domain.BillPayment, error) {
	var out []domain.BillPayment
	if err := b.call(ctx, "bill_payment.list", http.MethodGet, "/billpayments/customer/"+seg(customerMobile), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetBillPayment: GET /billpayments/{id}
func (b *Backend) GetBillPayment(ctx context.Context, id int64) (*domain.BillPayment, error) {
	var out domain.BillPayment
	if err := b.call(ctx, "bill_payment.get", http.MethodGet, "/billpayments/"+strconv.FormatInt(id, 10), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteBillPayment: DELETE /billpayments/{id}
func (b *Backend) DeleteBillPayment(ctx context.Context, id int64) (string, error) {
	return b.ack(ctx, "bill_payment.delete", http.MethodDelete, "/billpayments/"+strconv.FormatInt(id, 10), nil)
}
