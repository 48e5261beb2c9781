package screen

import (
	"context"
	"strings"

	"github.com/boddenberg/wallet-console-go/internal/domain"
	"github.com/boddenberg/wallet-console-go/internal/service"
)

// WalletForm is the wallet operations form.
type WalletForm struct {
	MobileNumber string `json:"mobileNumber"`
	Balance      string `json:"balance"`
}

// TransferForm is the fund transfer form.
type TransferForm struct {
	FromMobile string `json:"fromMobile"`
	ToMobile   string `json:"toMobile"`
	Amount     string `json:"amount"`
}

// WalletSnapshot is the rendered state of the wallet screen.
type WalletSnapshot struct {
	Status
	Form     WalletForm     `json:"form"`
	Transfer TransferForm   `json:"transfer"`
	Wallet   *domain.Wallet `json:"wallet,omitempty"`
}

// Wallet manages wallets and runs transfers. The displayed wallet is always
// a backend projection; balances are never computed locally.
type Wallet struct {
	base
	backend   *service.Backend
	verifier  *service.Verifier
	transfers *service.Transfers

	form     WalletForm
	transfer TransferForm
	wallet   *domain.Wallet
	// walletMobile is the mobile the displayed wallet was loaded for.
	walletMobile string
}

// NewWallet mounts a fresh wallet screen.
func NewWallet(deps Deps) *Wallet {
	s := &Wallet{backend: deps.Backend, verifier: deps.Verifier, transfers: deps.Transfers}
	s.init(NameWallet, deps, ActCreate, ActGet, ActUpdateBalance, ActDelete, ActTransfer)
	return s
}

// SetForm replaces the wallet form.
func (s *Wallet) SetForm(f WalletForm) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.form = f
}

// SetTransferForm replaces the transfer form.
func (s *Wallet) SetTransferForm(f TransferForm) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transfer = f
}

func (s *Wallet) forms() (WalletForm, TransferForm) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.form, s.transfer
}

// Snapshot implements Screen.
func (s *Wallet) Snapshot() any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return WalletSnapshot{Status: s.status(), Form: s.form, Transfer: s.transfer, Wallet: s.wallet}
}

func (s *Wallet) display(mobile string, w *domain.Wallet) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wallet = w
	s.walletMobile = mobile
	if w == nil {
		s.walletMobile = ""
	}
}

func requireMobile(f WalletForm) (string, error) {
	mobile := strings.TrimSpace(f.MobileNumber)
	if mobile == "" {
		return "", &domain.ErrValidation{Field: "mobileNumber", Message: "Mobile number is required"}
	}
	return mobile, nil
}

// Create verifies the owning customer, then POST /wallets/add.
func (s *Wallet) Create(ctx context.Context) error {
	form, _ := s.forms()
	return s.perform(ActCreate, "Wallet created successfully!", "Failed to create wallet", func() (string, error) {
		mobile, err := requireMobile(form)
		if err != nil {
			return "", err
		}
		balance, err := domain.ParseNonNegativeAmount("balance", form.Balance, false)
		if err != nil {
			return "", err
		}

		var created *domain.Wallet
		refs := []service.Ref{{Entity: service.EntityCustomer, Key: mobile}}
		err = s.verifier.CreateDependent(ctx, refs, func(ctx context.Context) error {
			var err error
			created, err = s.backend.CreateWallet(ctx, domain.CreateWalletRequest{MobileNumber: mobile, InitialBalance: balance})
			return err
		})
		if err != nil {
			return "", err
		}

		s.display(mobile, created)
		s.mu.Lock()
		s.form = WalletForm{}
		s.mu.Unlock()
		return "", nil
	})
}

// Get: GET /wallets/{mobile}. A failed lookup drops the displayed wallet.
func (s *Wallet) Get(ctx context.Context) error {
	form, _ := s.forms()
	return s.perform(ActGet, "Wallet found!", "Wallet not found", func() (string, error) {
		mobile, err := requireMobile(form)
		if err != nil {
			return "", err
		}
		w, err := s.backend.GetWallet(ctx, mobile)
		s.display(mobile, w)
		return "", err
	})
}

// UpdateBalance: PUT /wallets/{mobile}/balance. The displayed wallet is
// replaced by the response, or dropped when the backend only acknowledges.
func (s *Wallet) UpdateBalance(ctx context.Context) error {
	form, _ := s.forms()
	return s.perform(ActUpdateBalance, "Balance updated successfully!", "Failed to update balance", func() (string, error) {
		mobile, err := requireMobile(form)
		if err != nil {
			return "", err
		}
		amount, err := domain.ParseNonNegativeAmount("balance", form.Balance, false)
		if err != nil {
			return "", err
		}
		w, err := s.backend.UpdateWalletBalance(ctx, mobile, amount)
		if err != nil {
			return "", err
		}
		s.display(mobile, w)
		return "", nil
	})
}

// Delete: DELETE /wallets/{mobile}, after confirmation.
func (s *Wallet) Delete(ctx context.Context, c Confirmer) error {
	form, _ := s.forms()
	return s.perform(ActDelete, "Wallet deleted successfully!", "Failed to delete wallet", func() (string, error) {
		mobile, err := requireMobile(form)
		if err != nil {
			return "", err
		}
		if err := confirm(ctx, c, "Are you sure you want to delete this wallet?"); err != nil {
			return "", err
		}
		msg, err := s.backend.DeleteWallet(ctx, mobile)
		if err != nil {
			return "", err
		}
		s.display("", nil)
		s.mu.Lock()
		s.form = WalletForm{}
		s.mu.Unlock()
		return msg, nil
	})
}

// Transfer moves funds with one backend call. On success the transfer form
// is cleared and a displayed wallet of either party is replaced by the
// receipt's projection or dropped. No further call is issued.
func (s *Wallet) Transfer(ctx context.Context) error {
	_, tf := s.forms()
	return s.perform(ActTransfer, "Transfer completed successfully!", "Transfer failed", func() (string, error) {
		receipt, err := s.transfers.Transfer(ctx, tf.FromMobile, tf.ToMobile, tf.Amount)
		if err != nil {
			return "", err
		}

		s.mu.Lock()
		s.transfer = TransferForm{}
		s.reconcileLocked(strings.TrimSpace(tf.FromMobile), strings.TrimSpace(tf.ToMobile), receipt)
		s.mu.Unlock()
		return receipt.Message, nil
	})
}

func (s *Wallet) reconcileLocked(from, to string, receipt *domain.TransferReceipt) {
	if s.wallet == nil {
		return
	}
	owner := s.walletMobile
	if owner == "" {
		owner = s.wallet.OwnerMobile()
	}

	var replacement *domain.Wallet
	switch {
	case owner == from || sameWallet(s.wallet, receipt.FromWallet):
		replacement = receipt.FromWallet
	case owner == to || sameWallet(s.wallet, receipt.ToWallet):
		replacement = receipt.ToWallet
	default:
		return
	}

	s.wallet = replacement
	if replacement == nil {
		s.walletMobile = ""
	}
}

func sameWallet(a, b *domain.Wallet) bool {
	return a != nil && b != nil && a.WalletID != 0 && a.WalletID == b.WalletID
}
