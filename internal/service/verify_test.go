package service_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/boddenberg/wallet-console-go/internal/domain"
	"github.com/boddenberg/wallet-console-go/internal/service"
	"github.com/boddenberg/wallet-console-go/internal/service/servicetest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifier_Exists(t *testing.T) {
	f := newFixture(t)
	f.caller.
		On(http.MethodGet, "/customers/111", `{"customer":{"name":"Ana","mobileNumber":"111"}}`).
		On(http.MethodGet, "/customers/222", `{"message":"not here"}`).
		Fail(http.MethodGet, "/customers/333", servicetest.Unreachable()).
		On(http.MethodGet, "/wallets/111", `{"walletId":1,"balance":0}`).
		On(http.MethodGet, "/bankaccounts/account/A1", `{"accountNumber":"A1"}`)

	ctx := context.Background()
	tests := []struct {
		entity service.Entity
		key    string
		want   bool
	}{
		{service.EntityCustomer, "111", true},
		{service.EntityCustomer, "222", false},
		{service.EntityCustomer, "333", false},
		{service.EntityCustomer, "9999999999", false},
		{service.EntityWallet, "111", true},
		{service.EntityWallet, "222", false},
		{service.EntityBankAccount, "A1", true},
		{service.EntityBankAccount, "A2", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, f.verifier.Exists(ctx, tt.entity, tt.key), "%s %s", tt.entity, tt.key)
	}
}

func TestVerifier_ExistsBlankKeyIssuesNoCall(t *testing.T) {
	f := newFixture(t)

	assert.False(t, f.verifier.Exists(context.Background(), service.EntityCustomer, "  "))
	assert.Empty(t, f.caller.Calls())
}

func TestVerifier_CreateDependentMissingReference(t *testing.T) {
	f := newFixture(t)

	created := false
	err := f.verifier.CreateDependent(context.Background(),
		[]service.Ref{{Entity: service.EntityCustomer, Key: "9999999999"}},
		func(ctx context.Context) error {
			created = true
			return nil
		})

	var missing *domain.ErrReferenceMissing
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "Customer", missing.Resource)
	assert.Equal(t, "9999999999", missing.Key)
	assert.Equal(t, domain.KindReferenceMissing, domain.KindOf(err))
	assert.False(t, created)
	assert.Equal(t, "Customer does not exist", domain.UserMessage(err, "fallback"))
}

func TestVerifier_CreateDependentReportsFirstMissingInOrder(t *testing.T) {
	f := newFixture(t)
	f.caller.On(http.MethodGet, "/customers/111", `{"customer":{"mobileNumber":"111"}}`)

	err := f.verifier.CreateDependent(context.Background(),
		[]service.Ref{
			{Entity: service.EntityCustomer, Key: "111"},
			{Entity: service.EntityWallet, Key: "111"},
			{Entity: service.EntityBankAccount, Key: "A9"},
		},
		func(ctx context.Context) error { return nil })

	var missing *domain.ErrReferenceMissing
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "Wallet", missing.Resource)
}

func TestVerifier_CreateDependentProceeds(t *testing.T) {
	f := newFixture(t)
	f.caller.On(http.MethodGet, "/customers/111", `{"customer":{"mobileNumber":"111"}}`)

	boom := errors.New("create failed")
	err := f.verifier.CreateDependent(context.Background(),
		[]service.Ref{{Entity: service.EntityCustomer, Key: "111"}},
		func(ctx context.Context) error { return boom })

	assert.ErrorIs(t, err, boom)
}
