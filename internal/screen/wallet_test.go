package screen_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/boddenberg/wallet-console-go/internal/domain"
	"github.com/boddenberg/wallet-console-go/internal/screen"
	"github.com/boddenberg/wallet-console-go/internal/service/servicetest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWallet_TransferSuccessResetsFormWithoutFurtherCalls(t *testing.T) {
	f := newFixture(t)
	f.caller.On(http.MethodPost, "/wallets/transfer", `{"message":"Transfer successful"}`)
	w := screen.NewWallet(f.deps)

	w.SetTransferForm(screen.TransferForm{FromMobile: "111", ToMobile: "222", Amount: "50"})
	require.NoError(t, w.Transfer(f.ctx))

	snap := w.Snapshot().(screen.WalletSnapshot)
	assert.Equal(t, screen.TransferForm{}, snap.Transfer)

	errMsg, okMsg := notices(t, w)
	assert.Empty(t, errMsg)
	assert.Equal(t, "Transfer successful", okMsg)

	calls := f.caller.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "/wallets/transfer", calls[0].Path)
	assert.Equal(t, float64(1), f.notificationCount())
}

func TestWallet_TransferSucceedsWhateverTheReceiptShape(t *testing.T) {
	bodies := map[string]string{
		"boolean":          `true`,
		"ledger entries":   `[{"transactionId":1},{"transactionId":2}]`,
		"wallet as mobile": `{"fromWallet":"111","toWallet":"222"}`,
		"string wallet id": `{"fromWallet":{"walletId":"W-1"}}`,
	}

	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t)
			f.caller.
				On(http.MethodGet, "/wallets/111", `{"walletId":1,"balance":100,"customer":{"mobileNumber":"111"}}`).
				On(http.MethodPost, "/wallets/transfer", body)
			w := screen.NewWallet(f.deps)

			w.SetForm(screen.WalletForm{MobileNumber: "111"})
			require.NoError(t, w.Get(f.ctx))

			w.SetTransferForm(screen.TransferForm{FromMobile: "111", ToMobile: "222", Amount: "25"})
			require.NoError(t, w.Transfer(f.ctx))

			snap := w.Snapshot().(screen.WalletSnapshot)
			assert.Equal(t, screen.TransferForm{}, snap.Transfer)
			// No usable projection: the stale wallet is dropped, not recomputed.
			assert.Nil(t, snap.Wallet)

			errMsg, okMsg := notices(t, w)
			assert.Empty(t, errMsg)
			assert.Equal(t, "Transfer completed successfully!", okMsg)
			assert.Equal(t, 1, f.caller.Count(http.MethodPost, "/wallets/transfer"))
		})
	}
}

func TestWallet_TransferInvalidKeepsFormAndIssuesNoCall(t *testing.T) {
	f := newFixture(t)
	w := screen.NewWallet(f.deps)

	form := screen.TransferForm{FromMobile: "111", ToMobile: "222", Amount: "-1"}
	w.SetTransferForm(form)
	err := w.Transfer(f.ctx)

	assert.Equal(t, domain.KindInvalidInput, domain.KindOf(err))
	requireNoCalls(t, f.caller)
	assert.Equal(t, form, w.Snapshot().(screen.WalletSnapshot).Transfer)
	errMsg, _ := notices(t, w)
	assert.Equal(t, "Invalid transfer details", errMsg)
}

func TestWallet_TransferRejectedShowsBackendMessage(t *testing.T) {
	f := newFixture(t)
	f.caller.Fail(http.MethodPost, "/wallets/transfer", servicetest.Rejected(http.StatusBadRequest, "Insufficient balance"))
	w := screen.NewWallet(f.deps)

	form := screen.TransferForm{FromMobile: "111", ToMobile: "222", Amount: "5000"}
	w.SetTransferForm(form)
	require.Error(t, w.Transfer(f.ctx))

	errMsg, okMsg := notices(t, w)
	assert.Equal(t, "Insufficient balance", errMsg)
	assert.Empty(t, okMsg)
	assert.Equal(t, form, w.Snapshot().(screen.WalletSnapshot).Transfer)
	assert.Equal(t, 1, f.caller.Count(http.MethodPost, "/wallets/transfer"))
}

func TestWallet_TransferReplacesDisplayedPartyWallet(t *testing.T) {
	f := newFixture(t)
	f.caller.
		On(http.MethodGet, "/wallets/111", `{"walletId":1,"balance":100,"customer":{"mobileNumber":"111"}}`).
		On(http.MethodPost, "/wallets/transfer",
			`{"message":"ok","fromWallet":{"walletId":1,"balance":50},"toWallet":{"walletId":2,"balance":50}}`)
	w := screen.NewWallet(f.deps)

	w.SetForm(screen.WalletForm{MobileNumber: "111"})
	require.NoError(t, w.Get(f.ctx))

	w.SetTransferForm(screen.TransferForm{FromMobile: "111", ToMobile: "222", Amount: "50"})
	require.NoError(t, w.Transfer(f.ctx))

	snap := w.Snapshot().(screen.WalletSnapshot)
	require.NotNil(t, snap.Wallet)
	assert.Equal(t, "50", snap.Wallet.Balance.String())
}

func TestWallet_TransferDropsDisplayedWalletWithoutProjection(t *testing.T) {
	f := newFixture(t)
	f.caller.
		On(http.MethodGet, "/wallets/222", `{"walletId":2,"balance":10}`).
		On(http.MethodPost, "/wallets/transfer", `"Transfer successful"`)
	w := screen.NewWallet(f.deps)

	w.SetForm(screen.WalletForm{MobileNumber: "222"})
	require.NoError(t, w.Get(f.ctx))

	w.SetTransferForm(screen.TransferForm{FromMobile: "111", ToMobile: "222", Amount: "5"})
	require.NoError(t, w.Transfer(f.ctx))

	assert.Nil(t, w.Snapshot().(screen.WalletSnapshot).Wallet)
}

func TestWallet_TransferKeepsUnrelatedWallet(t *testing.T) {
	f := newFixture(t)
	f.caller.
		On(http.MethodGet, "/wallets/333", `{"walletId":3,"balance":10}`).
		On(http.MethodPost, "/wallets/transfer", `"ok"`)
	w := screen.NewWallet(f.deps)

	w.SetForm(screen.WalletForm{MobileNumber: "333"})
	require.NoError(t, w.Get(f.ctx))
	w.SetTransferForm(screen.TransferForm{FromMobile: "111", ToMobile: "222", Amount: "5"})
	require.NoError(t, w.Transfer(f.ctx))

	snap := w.Snapshot().(screen.WalletSnapshot)
	require.NotNil(t, snap.Wallet)
	assert.Equal(t, int64(3), snap.Wallet.WalletID)
}

func TestWallet_DeleteWithoutConfirmationIssuesNoCall(t *testing.T) {
	for name, c := range map[string]screen.Confirmer{
		"nil":      nil,
		"declined": screen.Confirmed(false),
	} {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t)
			w := screen.NewWallet(f.deps)
			w.SetForm(screen.WalletForm{MobileNumber: "111"})

			err := w.Delete(f.ctx, c)

			assert.ErrorIs(t, err, screen.ErrNotConfirmed)
			assert.Zero(t, f.caller.Count(http.MethodDelete, "/wallets/111"))
			requireNoCalls(t, f.caller)
			assert.Zero(t, f.notificationCount())
			assert.Equal(t, "111", w.Snapshot().(screen.WalletSnapshot).Form.MobileNumber)
		})
	}
}

func TestWallet_DeleteConfirmed(t *testing.T) {
	f := newFixture(t)
	f.caller.
		On(http.MethodGet, "/wallets/111", `{"walletId":1,"balance":5}`).
		On(http.MethodDelete, "/wallets/111", `"Wallet deleted"`)
	w := screen.NewWallet(f.deps)
	w.SetForm(screen.WalletForm{MobileNumber: "111"})
	require.NoError(t, w.Get(f.ctx))

	var prompt string
	err := w.Delete(f.ctx, screen.ConfirmFunc(func(_ context.Context, p string) bool {
		prompt = p
		return true
	}))
	require.NoError(t, err)

	assert.NotEmpty(t, prompt)
	snap := w.Snapshot().(screen.WalletSnapshot)
	assert.Nil(t, snap.Wallet)
	assert.Equal(t, screen.WalletForm{}, snap.Form)
	_, okMsg := notices(t, w)
	assert.Equal(t, "Wallet deleted", okMsg)
}

func TestWallet_CreateRequiresCustomer(t *testing.T) {
	f := newFixture(t)
	w := screen.NewWallet(f.deps)
	form := screen.WalletForm{MobileNumber: "9999999999", Balance: "100"}
	w.SetForm(form)

	err := w.Create(f.ctx)

	assert.Equal(t, domain.KindReferenceMissing, domain.KindOf(err))
	assert.Zero(t, f.caller.Count(http.MethodPost, "/wallets/add"))
	assert.Equal(t, form, w.Snapshot().(screen.WalletSnapshot).Form)
	errMsg, _ := notices(t, w)
	assert.Equal(t, "Customer does not exist", errMsg)
}

func TestWallet_CreateDisplaysBackendWallet(t *testing.T) {
	f := newFixture(t)
	f.caller.
		On(http.MethodGet, "/customers/111", `{"customer":{"mobileNumber":"111"}}`).
		On(http.MethodPost, "/wallets/add", `{"walletId":4,"balance":100,"customer":{"mobileNumber":"111"}}`)
	w := screen.NewWallet(f.deps)
	w.SetForm(screen.WalletForm{MobileNumber: "111", Balance: "100"})

	require.NoError(t, w.Create(f.ctx))

	snap := w.Snapshot().(screen.WalletSnapshot)
	require.NotNil(t, snap.Wallet)
	assert.Equal(t, int64(4), snap.Wallet.WalletID)
	assert.Equal(t, screen.WalletForm{}, snap.Form)
	_, okMsg := notices(t, w)
	assert.Equal(t, "Wallet created successfully!", okMsg)
}

func TestWallet_CreateRejectsNegativeBalance(t *testing.T) {
	f := newFixture(t)
	w := screen.NewWallet(f.deps)
	w.SetForm(screen.WalletForm{MobileNumber: "111", Balance: "-3"})

	err := w.Create(f.ctx)

	assert.Equal(t, domain.KindInvalidInput, domain.KindOf(err))
	requireNoCalls(t, f.caller)
	errMsg, _ := notices(t, w)
	assert.Equal(t, "Enter a valid positive balance", errMsg)
}

func TestWallet_UpdateBalanceUsesResponse(t *testing.T) {
	f := newFixture(t)
	f.caller.On(http.MethodPut, "/wallets/111/balance?amount=75", `{"walletId":1,"balance":75}`)
	w := screen.NewWallet(f.deps)
	w.SetForm(screen.WalletForm{MobileNumber: "111", Balance: "75"})

	require.NoError(t, w.UpdateBalance(f.ctx))

	snap := w.Snapshot().(screen.WalletSnapshot)
	require.NotNil(t, snap.Wallet)
	assert.Equal(t, "75", snap.Wallet.Balance.String())
	assert.Equal(t, "111", snap.Form.MobileNumber, "update keeps the form")
}

func TestWallet_GetFailureDropsDisplay(t *testing.T) {
	f := newFixture(t)
	f.caller.On(http.MethodGet, "/wallets/111", `{"walletId":1,"balance":5}`)
	w := screen.NewWallet(f.deps)

	w.SetForm(screen.WalletForm{MobileNumber: "111"})
	require.NoError(t, w.Get(f.ctx))
	w.SetForm(screen.WalletForm{MobileNumber: "404"})
	err := w.Get(f.ctx)

	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
	assert.Nil(t, w.Snapshot().(screen.WalletSnapshot).Wallet)
	errMsg, _ := notices(t, w)
	assert.Equal(t, "Wallet not found", errMsg)
}

func TestWallet_TransferIsSingleFlight(t *testing.T) {
	f := newFixture(t)
	f.caller.On(http.MethodPost, "/wallets/transfer", `"ok"`)
	entered := make(chan struct{})
	release := make(chan struct{})
	f.caller.Hook = func(method, path string) {
		if path == "/wallets/transfer" {
			close(entered)
			<-release
		}
	}
	w := screen.NewWallet(f.deps)
	w.SetTransferForm(screen.TransferForm{FromMobile: "111", ToMobile: "222", Amount: "1"})

	done := make(chan error)
	go func() { done <- w.Transfer(f.ctx) }()
	<-entered

	assert.True(t, w.Snapshot().(screen.WalletSnapshot).Busy[screen.ActTransfer])
	assert.ErrorIs(t, w.Transfer(f.ctx), screen.ErrBusy)

	// Other actions on the same screen are not blocked.
	w.SetForm(screen.WalletForm{MobileNumber: "404"})
	err := w.Get(f.ctx)
	assert.False(t, errors.Is(err, screen.ErrBusy))

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, 1, f.caller.Count(http.MethodPost, "/wallets/transfer"))
	assert.False(t, w.Snapshot().(screen.WalletSnapshot).Busy[screen.ActTransfer])
}

func TestWallet_NotificationExpires(t *testing.T) {
	f := newFixture(t)
	w := screen.NewWallet(f.deps)

	require.Error(t, w.Get(f.ctx)) // blank mobile
	errMsg, _ := notices(t, w)
	assert.Equal(t, "Mobile number is required", errMsg)

	f.clock.Advance(5 * time.Second)
	errMsg, okMsg := notices(t, w)
	assert.Empty(t, errMsg)
	assert.Empty(t, okMsg)
}
