package screen

import (
	"context"
	"strings"

	"github.com/boddenberg/wallet-console-go/internal/domain"
	"github.com/boddenberg/wallet-console-go/internal/service"
)

// BeneficiaryForm holds the add record and the keys of the other actions.
type BeneficiaryForm struct {
	Name                 string `json:"name"`
	MobileNumber         string `json:"mobileNumber"`
	WalletID             string `json:"walletId"`
	CustomerMobileNumber string `json:"customerMobileNumber"`
	SearchMobile         string `json:"searchMobile"`
	CustomerMobile       string `json:"customerMobile"`
	DeleteID             string `json:"deleteId"`
}

// BeneficiarySnapshot is the rendered state of the beneficiary screen.
type BeneficiarySnapshot struct {
	Status
	Form          BeneficiaryForm      `json:"form"`
	Beneficiary   *domain.Beneficiary  `json:"beneficiary,omitempty"`
	Beneficiaries []domain.Beneficiary `json:"beneficiaries"`
}

// Beneficiary manages beneficiaries. Adds are gated on the owning customer.
type Beneficiary struct {
	base
	backend  *service.Backend
	verifier *service.Verifier

	form          BeneficiaryForm
	beneficiary   *domain.Beneficiary
	beneficiaries []domain.Beneficiary
}

// NewBeneficiary mounts a fresh beneficiary screen.
func NewBeneficiary(deps Deps) *Beneficiary {
	s := &Beneficiary{backend: deps.Backend, verifier: deps.Verifier}
	s.init(NameBeneficiary, deps, ActAdd, ActGet, ActList, ActDelete)
	return s
}

// SetForm replaces the whole form.
func (s *Beneficiary) SetForm(f BeneficiaryForm) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.form = f
}

func (s *Beneficiary) snapshotForm() BeneficiaryForm {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.form
}

// Snapshot implements Screen.
func (s *Beneficiary) Snapshot() any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return BeneficiarySnapshot{
		Status:        s.status(),
		Form:          s.form,
		Beneficiary:   s.beneficiary,
		Beneficiaries: nonNil(s.beneficiaries),
	}
}

// Add verifies the owning customer, then POST /beneficiaries/add.
func (s *Beneficiary) Add(ctx context.Context) error {
	form := s.snapshotForm()
	return s.perform(ActAdd, "Beneficiary added", "Failed to add beneficiary", func() (string, error) {
		if err := domain.RequireFields(
			domain.Field{Name: "name", Value: form.Name},
			domain.Field{Name: "mobileNumber", Value: form.MobileNumber},
			domain.Field{Name: "walletId", Value: form.WalletID},
			domain.Field{Name: "customerMobileNumber", Value: form.CustomerMobileNumber},
		); err != nil {
			return "", err
		}
		walletID, err := domain.ParseID("walletId", form.WalletID)
		if err != nil {
			return "", err
		}
		owner := strings.TrimSpace(form.CustomerMobileNumber)
		ben := domain.Beneficiary{
			Name:         strings.TrimSpace(form.Name),
			MobileNumber: strings.TrimSpace(form.MobileNumber),
			Wallet:       &domain.WalletRef{WalletID: walletID},
			Customer:     &domain.CustomerRef{MobileNumber: owner},
		}

		var added *domain.Beneficiary
		refs := []service.Ref{{Entity: service.EntityCustomer, Key: owner}}
		err = s.verifier.CreateDependent(ctx, refs, func(ctx context.Context) error {
			var err error
			added, err = s.backend.AddBeneficiary(ctx, ben)
			return err
		})
		if err != nil {
			return "", err
		}

		name := ben.Name
		if added != nil && added.Name != "" {
			name = added.Name
		}
		s.mu.Lock()
		s.form.Name, s.form.MobileNumber, s.form.WalletID, s.form.CustomerMobileNumber = "", "", "", ""
		s.mu.Unlock()
		return "Beneficiary added: " + name, nil
	})
}

// Get: GET /beneficiaries/mobile/{mobile}
func (s *Beneficiary) Get(ctx context.Context) error {
	form := s.snapshotForm()
	return s.perform(ActGet, "Beneficiary found", "Beneficiary not found", func() (string, error) {
		if err := domain.RequireFields(domain.Field{Name: "searchMobile", Value: form.SearchMobile}); err != nil {
			return "", err
		}
		ben, err := s.backend.GetBeneficiaryByMobile(ctx, strings.TrimSpace(form.SearchMobile))
		s.mu.Lock()
		s.beneficiary = ben
		s.mu.Unlock()
		return "", err
	})
}

// List: GET /beneficiaries/customer/{mobile}
func (s *Beneficiary) List(ctx context.Context) error {
	form := s.snapshotForm()
	return s.perform(ActList, "Beneficiaries loaded", "No beneficiaries found", func() (string, error) {
		if err := domain.RequireFields(domain.Field{Name: "customerMobile", Value: form.CustomerMobile}); err != nil {
			return "", err
		}
		bens, err := s.backend.ListBeneficiaries(ctx, strings.TrimSpace(form.CustomerMobile))
		if err != nil {
			return "", err
		}
		s.mu.Lock()
		s.beneficiaries = bens
		s.mu.Unlock()
		return "", nil
	})
}

// Delete: DELETE /beneficiaries/{id}, after confirmation.
func (s *Beneficiary) Delete(ctx context.Context, c Confirmer) error {
	form := s.snapshotForm()
	return s.perform(ActDelete, "Beneficiary deleted successfully", "Delete failed", func() (string, error) {
		if err := domain.RequireFields(domain.Field{Name: "deleteId", Value: form.DeleteID}); err != nil {
			return "", err
		}
		id, err := domain.ParseID("deleteId", form.DeleteID)
		if err != nil {
			return "", err
		}
		if err := confirm(ctx, c, "Delete beneficiary?"); err != nil {
			return "", err
		}
		msg, err := s.backend.DeleteBeneficiary(ctx, id)
		if err != nil {
			return "", err
		}

		s.mu.Lock()
		s.form.DeleteID = ""
		s.beneficiaries = removeWhere(s.beneficiaries, func(b domain.Beneficiary) bool { return b.BeneficiaryID == id })
		if s.beneficiary != nil && s.beneficiary.BeneficiaryID == id {
			s.beneficiary = nil
		}
		s.mu.Unlock()
		return msg, nil
	})
}
