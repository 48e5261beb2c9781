// Package domain defines the wallet backend resources as the console sees
// them. Every value here is a transient projection of a backend record: the
// backend owns durability, and the console only mirrors the latest response.
package domain

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// The backend expects JSON numbers for monetary fields.
	decimal.MarshalJSONWithoutQuotes = true
}

// ============================================================
// References
// ============================================================

// CustomerRef addresses a customer by its natural key.
type CustomerRef struct {
	MobileNumber string `json:"mobileNumber"`
}

// WalletRef addresses a wallet by its backend-assigned id.
type WalletRef struct {
	WalletID int64 `json:"walletId"`
}

// ============================================================
// Customer
// ============================================================

// Customer is identified by mobile number. Password is write-only: it is
// sent on create/update and never rendered.
type Customer struct {
	Name         string  `json:"name"`
	MobileNumber string  `json:"mobileNumber"`
	Password     string  `json:"password,omitempty"`
	Wallet       *Wallet `json:"wallet,omitempty"`
}

// CustomerEnvelope is the shape returned by GET /customers/{mobile}.
type CustomerEnvelope struct {
	Customer *Customer `json:"customer"`
	Message  string    `json:"message,omitempty"`
}

// MessageResponse is the acknowledgement of a create, update or delete.
// The backend answers either {"message": ...} or a bare string.
type MessageResponse struct {
	Message string `json:"message"`
}

// UnmarshalJSON accepts an object with a message field or a bare string.
// Any other JSON value yields an empty message.
func (m *MessageResponse) UnmarshalJSON(b []byte) error {
	if len(b) == 0 {
		return nil
	}
	switch b[0] {
	case '"':
		return json.Unmarshal(b, &m.Message)
	case '{':
		type message MessageResponse
		var v message
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*m = MessageResponse(v)
	}
	return nil
}

// CustomerOverview aggregates everything the backend knows about one customer.
type CustomerOverview struct {
	Customer      *Customer     `json:"customer"`
	Wallet        *Wallet       `json:"wallet,omitempty"`
	BankAccounts  []BankAccount `json:"bankAccounts"`
	Beneficiaries []Beneficiary `json:"beneficiaries"`
	BillPayments  []BillPayment `json:"billPayments"`
}

// ============================================================
// Wallet
// ============================================================

// Wallet balances are backend-authoritative; the console never derives one.
type Wallet struct {
	WalletID int64           `json:"walletId"`
	Balance  decimal.Decimal `json:"balance"`
	Customer *CustomerRef    `json:"customer,omitempty"`
}

// OwnerMobile returns the owning customer's mobile number, if known.
func (w *Wallet) OwnerMobile() string {
	if w == nil || w.Customer == nil {
		return ""
	}
	return w.Customer.MobileNumber
}

// CreateWalletRequest is the body of POST /wallets/add.
type CreateWalletRequest struct {
	MobileNumber   string          `json:"mobileNumber"`
	InitialBalance decimal.Decimal `json:"initialBalance"`
}

// ============================================================
// Bank account
// ============================================================

// BankAccount is identified by account number.
type BankAccount struct {
	AccountNumber     string          `json:"accountNumber"`
	AccountHolderName string          `json:"accountHolderName"`
	Balance           decimal.Decimal `json:"balance"`
	Customer          *CustomerRef    `json:"customer,omitempty"`
}

// ============================================================
// Beneficiary
// ============================================================

// Beneficiary links a wallet to the customer that owns the beneficiary list.
type Beneficiary struct {
	BeneficiaryID int64        `json:"beneficiaryId,omitempty"`
	Name          string       `json:"name"`
	MobileNumber  string       `json:"mobileNumber"`
	Wallet        *WalletRef   `json:"wallet,omitempty"`
	Customer      *CustomerRef `json:"customer,omitempty"`
}

// ============================================================
// Bill payment
// ============================================================

// BillPayment is a bill registered against a customer.
type BillPayment struct {
	BillID   int64           `json:"billId,omitempty"`
	Name     string          `json:"name"`
	Amount   decimal.Decimal `json:"amount"`
	BillType string          `json:"billType"`
	Customer *CustomerRef    `json:"customer,omitempty"`
}

// ============================================================
// Transaction
// ============================================================

// Transaction types accepted by the backend.
const (
	TransactionCredit = "CREDIT"
	TransactionDebit  = "DEBIT"
)

// Transaction is immutable once created.
type Transaction struct {
	TransactionID   int64           `json:"transactionId,omitempty"`
	TransactionType string          `json:"transactionType"`
	Amount          decimal.Decimal `json:"amount"`
	Description     string          `json:"description"`
	TransactionDate *Timestamp      `json:"transactionDate,omitempty"`
	Wallet          *WalletRef      `json:"wallet,omitempty"`
}

// Timestamp accepts RFC 3339 as well as the zone-less local date-times
// the backend emits.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// UnmarshalJSON parses the first matching layout. null leaves t unchanged.
func (t *Timestamp) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	var lastErr error
	for _, layout := range timestampLayouts {
		parsed, err := time.Parse(layout, s)
		if err == nil {
			t.Time = parsed
			return nil
		}
		lastErr = err
	}
	return lastErr
}

// ============================================================
// Transfer
// ============================================================

// TransferIntent lives for the duration of one transfer request only.
type TransferIntent struct {
	FromMobile string          `json:"fromMobile"`
	ToMobile   string          `json:"toMobile"`
	Amount     decimal.Decimal `json:"amount"`
}

// TransferReceipt is whatever the backend acknowledged the transfer with.
// FromWallet/ToWallet are set only when the backend returns them.
type TransferReceipt struct {
	Message    string  `json:"message,omitempty"`
	FromWallet *Wallet `json:"fromWallet,omitempty"`
	ToWallet   *Wallet `json:"toWallet,omitempty"`
}

// UnmarshalJSON accepts either a receipt object or a bare acknowledgement string.
func (r *TransferReceipt) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		return json.Unmarshal(b, &r.Message)
	}
	type receipt TransferReceipt
	var v receipt
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*r = TransferReceipt(v)
	return nil
}

// ============================================================
// Auth
// ============================================================

// Credentials are posted form-encoded to /auth/login and /auth/register.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
