package screen

import (
	"context"
	"strings"

	"github.com/boddenberg/wallet-console-go/internal/domain"
	"github.com/boddenberg/wallet-console-go/internal/service"
)

// CustomerForm is the create/update record plus the lookup key used by
// get, delete and overview.
type CustomerForm struct {
	Name         string `json:"name"`
	MobileNumber string `json:"mobileNumber"`
	Password     string `json:"password"`
	SearchMobile string `json:"searchMobile"`
}

// CustomerSnapshot is the rendered state of the customer screen.
type CustomerSnapshot struct {
	Status
	Form     CustomerForm             `json:"form"`
	Customer *domain.Customer         `json:"customer,omitempty"`
	Overview *domain.CustomerOverview `json:"overview,omitempty"`
}

// Customer manages customers.
type Customer struct {
	base
	backend *service.Backend

	form     CustomerForm
	customer *domain.Customer
	overview *domain.CustomerOverview
}

// NewCustomer mounts a fresh customer screen.
func NewCustomer(deps Deps) *Customer {
	s := &Customer{backend: deps.Backend}
	s.init(NameCustomer, deps, ActCreate, ActUpdate, ActGet, ActDelete, ActOverview)
	return s
}

// SetForm replaces the whole form.
func (s *Customer) SetForm(f CustomerForm) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.form = f
}

func (s *Customer) snapshotForm() CustomerForm {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.form
}

// Snapshot implements Screen. The password is never rendered.
func (s *Customer) Snapshot() any {
	s.mu.Lock()
	defer s.mu.Unlock()
	form := s.form
	form.Password = ""
	return CustomerSnapshot{Status: s.status(), Form: form, Customer: s.customer, Overview: s.overview}
}

func (f CustomerForm) record() (domain.Customer, error) {
	if err := domain.RequireFields(
		domain.Field{Name: "name", Value: f.Name},
		domain.Field{Name: "mobileNumber", Value: f.MobileNumber},
		domain.Field{Name: "password", Value: f.Password},
	); err != nil {
		return domain.Customer{}, err
	}
	return domain.Customer{
		Name:         strings.TrimSpace(f.Name),
		MobileNumber: strings.TrimSpace(f.MobileNumber),
		Password:     f.Password,
	}, nil
}

func (f CustomerForm) searchKey() (string, error) {
	if err := domain.RequireFields(domain.Field{Name: "searchMobile", Value: f.SearchMobile}); err != nil {
		return "", err
	}
	return strings.TrimSpace(f.SearchMobile), nil
}

// Create: POST /customers/create. Clears the record fields on success.
func (s *Customer) Create(ctx context.Context) error {
	form := s.snapshotForm()
	return s.perform(ActCreate, "Customer created successfully", "Creation failed", func() (string, error) {
		c, err := form.record()
		if err != nil {
			return "", err
		}
		msg, err := s.backend.CreateCustomer(ctx, c)
		if err != nil {
			return "", err
		}
		s.clearRecord()
		return msg, nil
	})
}

// Update: PUT /customers/update.
func (s *Customer) Update(ctx context.Context) error {
	form := s.snapshotForm()
	return s.perform(ActUpdate, "Customer updated successfully", "Update failed", func() (string, error) {
		c, err := form.record()
		if err != nil {
			return "", err
		}
		msg, err := s.backend.UpdateCustomer(ctx, c)
		if err != nil {
			return "", err
		}
		s.clearRecord()
		return msg, nil
	})
}

func (s *Customer) clearRecord() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.form = CustomerForm{SearchMobile: s.form.SearchMobile}
}

// Get: GET /customers/{mobile}. A failed lookup drops the displayed customer.
func (s *Customer) Get(ctx context.Context) error {
	form := s.snapshotForm()
	return s.perform(ActGet, "Customer found", "Customer not found", func() (string, error) {
		mobile, err := form.searchKey()
		if err != nil {
			return "", err
		}
		c, err := s.backend.GetCustomer(ctx, mobile)

		s.mu.Lock()
		s.customer = c
		s.mu.Unlock()

		return "", err
	})
}

// Overview loads the customer with everything attached to it.
func (s *Customer) Overview(ctx context.Context) error {
	form := s.snapshotForm()
	return s.perform(ActOverview, "Customer overview loaded", "Customer not found", func() (string, error) {
		mobile, err := form.searchKey()
		if err != nil {
			return "", err
		}
		ov, err := s.backend.CustomerOverview(ctx, mobile)

		s.mu.Lock()
		s.overview = ov
		if ov != nil {
			s.customer = ov.Customer
		}
		s.mu.Unlock()

		return "", err
	})
}

// Delete: DELETE /customers/{mobile}, after confirmation.
func (s *Customer) Delete(ctx context.Context, c Confirmer) error {
	form := s.snapshotForm()
	return s.perform(ActDelete, "Customer deleted successfully", "Deletion failed", func() (string, error) {
		mobile, err := form.searchKey()
		if err != nil {
			return "", err
		}
		if err := confirm(ctx, c, "Delete customer "+mobile+"?"); err != nil {
			return "", err
		}
		msg, err := s.backend.DeleteCustomer(ctx, mobile)
		if err != nil {
			return "", err
		}

		s.mu.Lock()
		s.form = CustomerForm{}
		if s.customer != nil && s.customer.MobileNumber == mobile {
			s.customer = nil
		}
		if s.overview != nil && s.overview.Customer != nil && s.overview.Customer.MobileNumber == mobile {
			s.overview = nil
		}
		s.mu.Unlock()
		return msg, nil
	})
}
