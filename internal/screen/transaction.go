package screen

import (
	"context"
	"strings"

	"github.com/boddenberg/wallet-console-go/internal/domain"
	"github.com/boddenberg/wallet-console-go/internal/service"

	"go.uber.org/zap"
)

// TransactionForm holds the add record and the lookup keys.
type TransactionForm struct {
	TransactionType string `json:"transactionType"`
	Amount          string `json:"amount"`
	Description     string `json:"description"`
	WalletID        string `json:"walletId"`
	TransactionID   string `json:"transactionId"`
	FilterWalletID  string `json:"filterWalletId"`
}

// TransactionSnapshot is the rendered state of the transaction screen.
type TransactionSnapshot struct {
	Status
	Form               TransactionForm      `json:"form"`
	Transactions       []domain.Transaction `json:"transactions"`
	Transaction        *domain.Transaction  `json:"transaction,omitempty"`
	WalletTransactions []domain.Transaction `json:"walletTransactions"`
}

// Transaction records and browses transactions. The backend has no wallet
// lookup by id, so adds are not probed.
type Transaction struct {
	base
	backend *service.Backend

	form               TransactionForm
	transactions       []domain.Transaction
	transaction        *domain.Transaction
	walletTransactions []domain.Transaction
}

// NewTransaction mounts a fresh transaction screen. Call Load to fetch the
// full list, as mounting through a Console does.
func NewTransaction(deps Deps) *Transaction {
	s := &Transaction{backend: deps.Backend}
	s.init(NameTransaction, deps, ActAdd, ActListAll, ActGet, ActListByWallet)
	return s
}

// SetForm replaces the whole form.
func (s *Transaction) SetForm(f TransactionForm) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.form = f
}

func (s *Transaction) snapshotForm() TransactionForm {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.form
}

// Snapshot implements Screen.
func (s *Transaction) Snapshot() any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return TransactionSnapshot{
		Status:             s.status(),
		Form:               s.form,
		Transactions:       nonNil(s.transactions),
		Transaction:        s.transaction,
		WalletTransactions: nonNil(s.walletTransactions),
	}
}

// Load fetches every transaction; it runs on mount.
func (s *Transaction) Load(ctx context.Context) error {
	return s.ListAll(ctx)
}

// Add: POST /transactions/add, then refreshes the full list. The refresh
// does not notify; a failed refresh keeps the previous list.
func (s *Transaction) Add(ctx context.Context) error {
	form := s.snapshotForm()
	err := s.perform(ActAdd, "Transaction added successfully", "Failed to add transaction", func() (string, error) {
		if err := domain.RequireFields(
			domain.Field{Name: "transactionType", Value: form.TransactionType},
			domain.Field{Name: "amount", Value: form.Amount},
			domain.Field{Name: "walletId", Value: form.WalletID},
		); err != nil {
			return "", err
		}
		txType := strings.ToUpper(strings.TrimSpace(form.TransactionType))
		if txType != domain.TransactionCredit && txType != domain.TransactionDebit {
			return "", &domain.ErrValidation{Field: "transactionType", Message: "Transaction type must be CREDIT or DEBIT"}
		}
		amount, err := domain.ParsePositiveAmount("amount", form.Amount)
		if err != nil {
			return "", err
		}
		walletID, err := domain.ParseID("walletId", form.WalletID)
		if err != nil {
			return "", err
		}

		_, err = s.backend.AddTransaction(ctx, domain.Transaction{
			TransactionType: txType,
			Amount:          amount,
			Description:     strings.TrimSpace(form.Description),
			Wallet:          &domain.WalletRef{WalletID: walletID},
		})
		if err != nil {
			return "", err
		}

		s.mu.Lock()
		s.form.TransactionType, s.form.Amount, s.form.Description, s.form.WalletID = "", "", "", ""
		s.mu.Unlock()
		return "", nil
	})
	if err != nil {
		return err
	}

	txs, rerr := s.backend.ListTransactions(ctx)
	if rerr != nil {
		s.logger.Warn("refresh after add failed", zap.Error(rerr))
		return nil
	}
	s.mu.Lock()
	s.transactions = txs
	s.mu.Unlock()
	return nil
}

// ListAll: GET /transactions/all
func (s *Transaction) ListAll(ctx context.Context) error {
	return s.perform(ActListAll, "Transactions loaded", "Failed to fetch all transactions", func() (string, error) {
		txs, err := s.backend.ListTransactions(ctx)
		if err != nil {
			return "", err
		}
		s.mu.Lock()
		s.transactions = txs
		s.mu.Unlock()
		return "", nil
	})
}

// Get: GET /transactions/{id}
func (s *Transaction) Get(ctx context.Context) error {
	form := s.snapshotForm()
	return s.perform(ActGet, "Transaction found", "Transaction not found", func() (string, error) {
		id, err := domain.ParseID("transactionId", form.TransactionID)
		if err != nil {
			return "", err
		}
		tx, err := s.backend.GetTransaction(ctx, id)
		s.mu.Lock()
		s.transaction = tx
		s.mu.Unlock()
		return "", err
	})
}

// ListByWallet: GET /transactions/wallet/{walletId}
func (s *Transaction) ListByWallet(ctx context.Context) error {
	form := s.snapshotForm()
	return s.perform(ActListByWallet, "Wallet transactions loaded", "Failed to fetch wallet transactions", func() (string, error) {
		id, err := domain.ParseID("filterWalletId", form.FilterWalletID)
		if err != nil {
			return "", err
		}
		txs, err := s.backend.ListWalletTransactions(ctx, id)
		if err != nil {
			return "", err
		}
		s.mu.Lock()
		s.walletTransactions = txs
		s.mu.Unlock()
		return "", nil
	})
}
