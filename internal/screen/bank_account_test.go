package screen_test

import (
	"net/http"
	"testing"

	"github.com/boddenberg/wallet-console-go/internal/domain"
	"github.com/boddenberg/wallet-console-go/internal/screen"
	"github.com/boddenberg/wallet-console-go/internal/service/servicetest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBankAccount_AddForUnknownCustomerIsReferenceMissing(t *testing.T) {
	f := newFixture(t)
	f.caller.Fail(http.MethodGet, "/customers/9999999999", servicetest.Rejected(http.StatusNotFound, "Customer not found"))
	s := screen.NewBankAccount(f.deps)

	form := screen.BankAccountForm{AccountNumber: "ACC-1", AccountHolderName: "Ana", Balance: "10", MobileNumber: "9999999999"}
	s.SetForm(form)
	err := s.Add(f.ctx)

	assert.Equal(t, domain.KindReferenceMissing, domain.KindOf(err))
	assert.Zero(t, f.caller.Count(http.MethodPost, "/bankaccounts/add"))

	snap := s.Snapshot().(screen.BankAccountSnapshot)
	assert.Equal(t, form, snap.Form, "failure keeps the form")
	require.NotNil(t, snap.CustomerExists)
	assert.False(t, *snap.CustomerExists)

	errMsg, okMsg := notices(t, s)
	assert.Equal(t, "Customer does not exist", errMsg)
	assert.Empty(t, okMsg)
	assert.Equal(t, float64(1), f.notificationCount())
}

func TestBankAccount_AddVerifiedCustomer(t *testing.T) {
	f := newFixture(t)
	f.caller.
		On(http.MethodGet, "/customers/111", `{"customer":{"mobileNumber":"111"}}`).
		On(http.MethodPost, "/bankaccounts/add", `{"accountNumber":"ACC-1"}`)
	s := screen.NewBankAccount(f.deps)

	s.SetForm(screen.BankAccountForm{AccountNumber: "ACC-1", AccountHolderName: "Ana", MobileNumber: "111", CustomerMobile: "111"})
	require.NoError(t, s.Add(f.ctx))

	calls := f.caller.Calls()
	require.Len(t, calls, 2)
	assert.JSONEq(t,
		`{"accountNumber":"ACC-1","accountHolderName":"Ana","balance":0,"customer":{"mobileNumber":"111"}}`,
		string(calls[1].Body))

	snap := s.Snapshot().(screen.BankAccountSnapshot)
	assert.Equal(t, screen.BankAccountForm{CustomerMobile: "111"}, snap.Form, "add clears only its own fields")
	_, okMsg := notices(t, s)
	assert.Equal(t, "Bank account added successfully!", okMsg)
}

func TestBankAccount_AddRequiresFields(t *testing.T) {
	f := newFixture(t)
	s := screen.NewBankAccount(f.deps)
	s.SetForm(screen.BankAccountForm{AccountNumber: "ACC-1"})

	err := s.Add(f.ctx)

	assert.Equal(t, domain.KindInvalidInput, domain.KindOf(err))
	requireNoCalls(t, f.caller)
	errMsg, _ := notices(t, s)
	assert.Equal(t, "Please fill all required fields", errMsg)
}

func TestBankAccount_BackendRejectionKeepsForm(t *testing.T) {
	f := newFixture(t)
	f.caller.
		On(http.MethodGet, "/customers/111", `{"customer":{"mobileNumber":"111"}}`).
		Fail(http.MethodPost, "/bankaccounts/add", servicetest.Rejected(http.StatusConflict, "Account already exists"))
	s := screen.NewBankAccount(f.deps)
	form := screen.BankAccountForm{AccountNumber: "ACC-1", AccountHolderName: "Ana", MobileNumber: "111"}
	s.SetForm(form)

	require.Error(t, s.Add(f.ctx))

	assert.Equal(t, form, s.Snapshot().(screen.BankAccountSnapshot).Form)
	errMsg, _ := notices(t, s)
	assert.Equal(t, "Account already exists", errMsg)
}

func TestBankAccount_ListGetDelete(t *testing.T) {
	f := newFixture(t)
	f.caller.
		On(http.MethodGet, "/bankaccounts/111", `[{"accountNumber":"A1"},{"accountNumber":"A2"}]`).
		On(http.MethodGet, "/bankaccounts/account/A1", `{"accountNumber":"A1","accountHolderName":"Ana"}`).
		On(http.MethodDelete, "/bankaccounts/A1", `"Account deleted successfully"`)
	s := screen.NewBankAccount(f.deps)

	s.SetForm(screen.BankAccountForm{CustomerMobile: "111", SearchAccountNumber: "A1", DeleteAccountNumber: "A1"})
	require.NoError(t, s.List(f.ctx))
	require.NoError(t, s.Get(f.ctx))

	snap := s.Snapshot().(screen.BankAccountSnapshot)
	assert.Len(t, snap.Accounts, 2)
	require.NotNil(t, snap.Account)

	require.NoError(t, s.Delete(f.ctx, screen.Confirmed(true)))

	snap = s.Snapshot().(screen.BankAccountSnapshot)
	assert.Len(t, snap.Accounts, 1)
	assert.Nil(t, snap.Account)
	assert.Empty(t, snap.Form.DeleteAccountNumber)
}

func TestBankAccount_ListWithoutMobile(t *testing.T) {
	f := newFixture(t)
	s := screen.NewBankAccount(f.deps)

	require.Error(t, s.List(f.ctx))
	requireNoCalls(t, f.caller)
	errMsg, _ := notices(t, s)
	assert.Equal(t, "Please enter a mobile number", errMsg)
}
