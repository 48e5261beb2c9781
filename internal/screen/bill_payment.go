package screen

import (
	"context"
	"strings"

	"github.com/boddenberg/wallet-console-go/internal/domain"
	"github.com/boddenberg/wallet-console-go/internal/service"
)

// BillPaymentForm holds the add record and the keys of the other actions.
type BillPaymentForm struct {
	TargetMobile string `json:"targetMobile"`
	Name         string `json:"name"`
	Amount       string `json:"amount"`
	BillType     string `json:"billType"`
	Mobile       string `json:"mobile"`
	BillID       string `json:"billId"`
	DeleteID     string `json:"deleteId"`
}

// BillPaymentSnapshot is the rendered state of the bill payment screen.
type BillPaymentSnapshot struct {
	Status
	Form  BillPaymentForm      `json:"form"`
	Bills []domain.BillPayment `json:"bills"`
	Bill  *domain.BillPayment  `json:"bill,omitempty"`
}

// BillPayment manages bills. Adds are gated on the customer.
type BillPayment struct {
	base
	backend  *service.Backend
	verifier *service.Verifier

	form  BillPaymentForm
	bills []domain.BillPayment
	bill  *domain.BillPayment
}

// NewBillPayment mounts a fresh bill payment screen.
func NewBillPayment(deps Deps) *BillPayment {
	s := &BillPayment{backend: deps.Backend, verifier: deps.Verifier}
	s.init(NameBillPayment, deps, ActAdd, ActList, ActGet, ActDelete)
	return s
}

// SetForm replaces the whole form.
func (s *BillPayment) SetForm(f BillPaymentForm) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.form = f
}

func (s *BillPayment) snapshotForm() BillPaymentForm {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.form
}

// Snapshot implements Screen.
func (s *BillPayment) Snapshot() any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return BillPaymentSnapshot{Status: s.status(), Form: s.form, Bills: nonNil(s.bills), Bill: s.bill}
}

// Add verifies the customer, then POST /billpayments/add.
func (s *BillPayment) Add(ctx context.Context) error {
	form := s.snapshotForm()
	return s.perform(ActAdd, "Bill added successfully", "Failed to add bill. Please check the details.", func() (string, error) {
		if err := domain.RequireFields(
			domain.Field{Name: "targetMobile", Value: form.TargetMobile},
			domain.Field{Name: "name", Value: form.Name},
			domain.Field{Name: "amount", Value: form.Amount},
			domain.Field{Name: "billType", Value: form.BillType},
		); err != nil {
			return "", err
		}
		amount, err := domain.ParsePositiveAmount("amount", form.Amount)
		if err != nil {
			return "", err
		}
		mobile := strings.TrimSpace(form.TargetMobile)
		bill := domain.BillPayment{
			Name:     strings.TrimSpace(form.Name),
			Amount:   amount,
			BillType: strings.TrimSpace(form.BillType),
			Customer: &domain.CustomerRef{MobileNumber: mobile},
		}

		refs := []service.Ref{{Entity: service.EntityCustomer, Key: mobile}}
		err = s.verifier.CreateDependent(ctx, refs, func(ctx context.Context) error {
			_, err := s.backend.AddBillPayment(ctx, bill)
			return err
		})
		if err != nil {
			return "", err
		}

		s.mu.Lock()
		s.form.TargetMobile, s.form.Name, s.form.Amount, s.form.BillType = "", "", "", ""
		s.mu.Unlock()
		return "", nil
	})
}

// List: GET /billpayments/customer/{mobile}
func (s *BillPayment) List(ctx context.Context) error {
	form := s.snapshotForm()
	return s.perform(ActList, "Bills loaded", "Failed to fetch bills by mobile.", func() (string, error) {
		if err := domain.RequireFields(domain.Field{Name: "mobile", Value: form.Mobile}); err != nil {
			return "", err
		}
		bills, err := s.backend.ListBillPayments(ctx, strings.TrimSpace(form.Mobile))
		if err != nil {
			return "", err
		}
		s.mu.Lock()
		s.bills = bills
		s.mu.Unlock()
		return "", nil
	})
}

// Get: GET /billpayments/{id}
func (s *BillPayment) Get(ctx context.Context) error {
	form := s.snapshotForm()
	return s.perform(ActGet, "Bill found", "Bill not found.", func() (string, error) {
		id, err := domain.ParseID("billId", form.BillID)
		if err != nil {
			return "", err
		}
		bill, err := s.backend.GetBillPayment(ctx, id)
		s.mu.Lock()
		s.bill = bill
		s.mu.Unlock()
		return "", err
	})
}

// Delete: DELETE /billpayments/{id}, after confirmation.
func (s *BillPayment) Delete(ctx context.Context, c Confirmer) error {
	form := s.snapshotForm()
	return s.perform(ActDelete, "Bill deleted successfully", "Failed to delete bill. Please check the Bill ID.", func() (string, error) {
		if err := domain.RequireFields(domain.Field{Name: "deleteId", Value: form.DeleteID}); err != nil {
			return "", err
		}
		id, err := domain.ParseID("deleteId", form.DeleteID)
		if err != nil {
			return "", err
		}
		if err := confirm(ctx, c, "Delete bill?"); err != nil {
			return "", err
		}
		msg, err := s.backend.DeleteBillPayment(ctx, id)
		if err != nil {
			return "", err
		}

		s.mu.Lock()
		s.form.DeleteID = ""
		s.bills = removeWhere(s.bills, func(b domain.BillPayment) bool { return b.BillID == id })
		if s.bill != nil && s.bill.BillID == id {
			s.bill = nil
		}
		s.mu.Unlock()
		return msg, nil
	})
}
