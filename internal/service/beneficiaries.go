package service

import (
	"context"
	"net/http"
	"strconv"

	"github.com/boddenberg/wallet-console-go/internal/domain"
)

// AddBeneficiary: POST /beneficiaries/add
func (b *Backend) AddBeneficiary(ctx context.Context, ben domain.Beneficiary) (*domain.Beneficiary, error) {
	return send[domain.Beneficiary](ctx, b, "beneficiary.add", http.MethodPost, "/beneficiaries/add", ben)
}

// GetBeneficiaryByMobile: GET /beneficiaries/mobile/{mobile}
func (b *Backend) GetBeneficiaryByMobile(ctx context.Context, mobile string) (*domain.Beneficiary, error) {
	var out domain.Beneficiary
	if err := b.call(ctx, "beneficiary.get", http.MethodGet, "/beneficiaries/mobile/"+seg(mobile), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListBeneficiaries: GET /beneficiaries/customer/{mobile}
func (b *Backend) ListBeneficiaries(ctx context.Context, customerMobile string) ([]domain.Beneficiary, error) {
	var out []domain.Beneficiary
	if err := b.call(ctx, "beneficiary.list", http.MethodGet, "/beneficiaries/customer/"+seg(customerMobile), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteBeneficiary: DELETE /beneficiaries/{id}
func (b *Backend) DeleteBeneficiary(ctx context.Context, id int64) (string, error) {
	return b.ack(ctx, "beneficiary.delete", http.MethodDelete, "/beneficiaries/"+strconv.FormatInt(id, 10), nil)
}
