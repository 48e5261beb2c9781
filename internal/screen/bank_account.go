package screen

import (
	"context"
	"strings"

	"github.com/boddenberg/wallet-console-go/internal/domain"
	"github.com/boddenberg/wallet-console-go/internal/service"
)

// BankAccountForm holds the add record and the keys of the other actions.
type BankAccountForm struct {
	AccountNumber       string `json:"accountNumber"`
	AccountHolderName   string `json:"accountHolderName"`
	Balance             string `json:"balance"`
	MobileNumber        string `json:"mobileNumber"`
	CustomerMobile      string `json:"customerMobile"`
	SearchAccountNumber string `json:"searchAccountNumber"`
	DeleteAccountNumber string `json:"deleteAccountNumber"`
}

// BankAccountSnapshot is the rendered state of the bank account screen.
type BankAccountSnapshot struct {
	Status
	Form     BankAccountForm      `json:"form"`
	Accounts []domain.BankAccount `json:"accounts"`
	Account  *domain.BankAccount  `json:"account,omitempty"`
	// CustomerExists is the result of the last probe, nil before any add.
	CustomerExists *bool `json:"customerExists,omitempty"`
}

// BankAccount manages bank accounts. Adds are gated on the customer.
type BankAccount struct {
	base
	backend  *service.Backend
	verifier *service.Verifier

	form           BankAccountForm
	accounts       []domain.BankAccount
	account        *domain.BankAccount
	customerExists *bool
}

// NewBankAccount mounts a fresh bank account screen.
func NewBankAccount(deps Deps) *BankAccount {
	s := &BankAccount{backend: deps.Backend, verifier: deps.Verifier}
	s.init(NameBankAccount, deps, ActAdd, ActList, ActGet, ActDelete)
	return s
}

// SetForm replaces the whole form.
func (s *BankAccount) SetForm(f BankAccountForm) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.form = f
}

func (s *BankAccount) snapshotForm() BankAccountForm {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.form
}

// Snapshot implements Screen.
func (s *BankAccount) Snapshot() any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return BankAccountSnapshot{
		Status:         s.status(),
		Form:           s.form,
		Accounts:       nonNil(s.accounts),
		Account:        s.account,
		CustomerExists: s.customerExists,
	}
}

// Add verifies the owning customer, then POST /bankaccounts/add.
func (s *BankAccount) Add(ctx context.Context) error {
	form := s.snapshotForm()
	return s.perform(ActAdd, "Bank account added successfully!", "Failed to add account.", func() (string, error) {
		if err := domain.RequireFields(
			domain.Field{Name: "accountNumber", Value: form.AccountNumber},
			domain.Field{Name: "accountHolderName", Value: form.AccountHolderName},
			domain.Field{Name: "mobileNumber", Value: form.MobileNumber},
		); err != nil {
			return "", err
		}
		balance, err := domain.ParseNonNegativeAmount("balance", form.Balance, true)
		if err != nil {
			return "", err
		}
		mobile := strings.TrimSpace(form.MobileNumber)
		acct := domain.BankAccount{
			AccountNumber:     strings.TrimSpace(form.AccountNumber),
			AccountHolderName: strings.TrimSpace(form.AccountHolderName),
			Balance:           balance,
			Customer:          &domain.CustomerRef{MobileNumber: mobile},
		}

		refs := []service.Ref{{Entity: service.EntityCustomer, Key: mobile}}
		err = s.verifier.CreateDependent(ctx, refs, func(ctx context.Context) error {
			s.setCustomerExists(true)
			_, err := s.backend.AddBankAccount(ctx, acct)
			return err
		})
		if domain.KindOf(err) == domain.KindReferenceMissing {
			s.setCustomerExists(false)
		}
		if err != nil {
			return "", err
		}

		s.mu.Lock()
		s.form.AccountNumber, s.form.AccountHolderName, s.form.Balance, s.form.MobileNumber = "", "", "", ""
		s.mu.Unlock()
		return "", nil
	})
}

func (s *BankAccount) setCustomerExists(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.customerExists = &v
}

// List: GET /bankaccounts/{mobile}
func (s *BankAccount) List(ctx context.Context) error {
	form := s.snapshotForm()
	return s.perform(ActList, "Accounts loaded", "No accounts found for this customer", func() (string, error) {
		if strings.TrimSpace(form.CustomerMobile) == "" {
			return "", &domain.ErrValidation{Field: "customerMobile", Message: "Please enter a mobile number"}
		}
		accts, err := s.backend.ListBankAccounts(ctx, strings.TrimSpace(form.CustomerMobile))
		if err != nil {
			return "", err
		}
		s.mu.Lock()
		s.accounts = accts
		s.mu.Unlock()
		return "", nil
	})
}

// Get: GET /bankaccounts/account/{accountNumber}
func (s *BankAccount) Get(ctx context.Context) error {
	form := s.snapshotForm()
	return s.perform(ActGet, "Account found", "Account not found", func() (string, error) {
		if strings.TrimSpace(form.SearchAccountNumber) == "" {
			return "", &domain.ErrValidation{Field: "searchAccountNumber", Message: "Please enter an account number"}
		}
		acct, err := s.backend.GetBankAccount(ctx, strings.TrimSpace(form.SearchAccountNumber))
		s.mu.Lock()
		s.account = acct
		s.mu.Unlock()
		return "", err
	})
}

// Delete: DELETE /bankaccounts/{accountNumber}, after confirmation.
func (s *BankAccount) Delete(ctx context.Context, c Confirmer) error {
	form := s.snapshotForm()
	return s.perform(ActDelete, "Account deleted successfully", "Failed to delete account", func() (string, error) {
		number := strings.TrimSpace(form.DeleteAccountNumber)
		if number == "" {
			return "", &domain.ErrValidation{Field: "deleteAccountNumber", Message: "Please enter an account number"}
		}
		if err := confirm(ctx, c, "Delete bank account "+number+"?"); err != nil {
			return "", err
		}
		msg, err := s.backend.DeleteBankAccount(ctx, number)
		if err != nil {
			return "", err
		}

		s.mu.Lock()
		s.form.DeleteAccountNumber = ""
		s.accounts = removeWhere(s.accounts, func(a domain.BankAccount) bool { return a.AccountNumber == number })
		if s.account != nil && s.account.AccountNumber == number {
			s.account = nil
		}
		s.mu.Unlock()
		return msg, nil
	})
}

func nonNil[T any](v []T) []T {
	if v == nil {
		return []T{}
	}
	return v
}

func removeWhere[T any](v []T, match func(T) bool) []T {
	out := v[:0:0]
	for _, x := range v {
		if !match(x) {
			out = append(out, x)
		}
	}
	return out
}
