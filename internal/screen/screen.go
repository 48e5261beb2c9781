// Package screen holds the per-session screen controllers of the console.
// Each screen owns a form, the projections it last received from the
// backend, one lifecycle action per trigger and a notification manager.
package screen

import (
	"context"
	"errors"
	"sync"

	"github.com/boddenberg/wallet-console-go/internal/domain"
	"github.com/boddenberg/wallet-console-go/internal/infra/observability"
	"github.com/boddenberg/wallet-console-go/internal/lifecycle"
	"github.com/boddenberg/wallet-console-go/internal/notify"
	"github.com/boddenberg/wallet-console-go/internal/service"

	"go.uber.org/zap"
)

// Screen names.
const (
	NameCustomer    = "customer"
	NameBankAccount = "bank-account"
	NameBeneficiary = "beneficiary"
	NameBillPayment = "bill-payment"
	NameTransaction = "transaction"
	NameWallet      = "wallet"
)

// Names lists every screen in navigation order.
var Names = []string{NameCustomer, NameBankAccount, NameBeneficiary, NameBillPayment, NameTransaction, NameWallet}

// Action names shared across screens.
const (
	ActCreate        = "create"
	ActUpdate        = "update"
	ActAdd           = "add"
	ActGet           = "get"
	ActList          = "list"
	ActListAll       = "list-all"
	ActListByWallet  = "list-by-wallet"
	ActDelete        = "delete"
	ActOverview      = "overview"
	ActUpdateBalance = "update-balance"
	ActTransfer      = "transfer"
)

// ErrNotConfirmed is returned by a delete the operator did not confirm.
// No call is issued and no notification is shown.
var ErrNotConfirmed = errors.New("delete not confirmed")

// ErrBusy is returned when the same action is already in flight.
var ErrBusy = lifecycle.ErrBusy

// Confirmer gates destructive actions.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, prompt string) bool

func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) bool { return f(ctx, prompt) }

// Confirmed is a Confirmer with a fixed answer, as carried by an API request.
func Confirmed(ok bool) Confirmer {
	return ConfirmFunc(func(context.Context, string) bool { return ok })
}

// Deps are the shared collaborators every screen is built from.
type Deps struct {
	Backend   *service.Backend
	Verifier  *service.Verifier
	Transfers *service.Transfers
	Metrics   *observability.Metrics
	Logger    *zap.Logger
	// Notify configures each screen's notification manager (clock, delay).
	Notify []notify.Option
}

// Screen is what the console mounts.
type Screen interface {
	Name() string
	Snapshot() any
}

// Status is the part of every snapshot that is not screen specific.
type Status struct {
	Screen  string                     `json:"screen"`
	Notices notify.Snapshot            `json:"notices"`
	Busy    map[string]bool            `json:"busy"`
	States  map[string]lifecycle.State `json:"states"`
}

// base is embedded by every screen. mu guards the embedding screen's form
// and display state and is never held across a backend call.
type base struct {
	name    string
	mu      sync.Mutex
	actions *lifecycle.Controller
	notices *notify.Manager
	metrics *observability.Metrics
	logger  *zap.Logger
}

func (b *base) init(name string, deps Deps, actions ...string) {
	opts := append([]notify.Option{
		notify.OnSet(func(kind string) { deps.Metrics.IncrNotification(kind) }),
	}, deps.Notify...)

	b.name = name
	b.actions = lifecycle.NewController(actions...)
	b.notices = notify.New(opts...)
	b.metrics = deps.Metrics
	b.logger = deps.Logger.With(zap.String("screen", name))
}

// Name returns the screen name.
func (b *base) Name() string { return b.name }

// Notices exposes the notification manager.
func (b *base) Notices() *notify.Manager { return b.notices }

// Actions exposes the lifecycle controller.
func (b *base) Actions() *lifecycle.Controller { return b.actions }

func (b *base) status() Status {
	return Status{
		Screen:  b.name,
		Notices: b.notices.Snapshot(),
		Busy:    b.actions.Busy(),
		States:  b.actions.States(),
	}
}

// perform runs fn as the named action. fn returns the backend's success
// message, possibly empty. Exactly one notification is shown per outcome:
// the success message or successFallback, the error's user message or
// errFallback. A busy action or an unconfirmed delete shows none.
func (b *base) perform(action, successFallback, errFallback string, fn func() (string, error)) error {
	msg, err := lifecycle.Run(b.actions.Action(action), fn)

	switch {
	case errors.Is(err, lifecycle.ErrBusy):
		b.metrics.IncrAction(b.name, action, "busy")
		return err
	case errors.Is(err, ErrNotConfirmed):
		b.metrics.IncrAction(b.name, action, "cancelled")
		return err
	case err != nil:
		b.metrics.IncrAction(b.name, action, "failure")
		b.logger.Info("action failed",
			zap.String("action", action),
			zap.String("kind", domain.KindOf(err).String()),
			zap.Error(err),
		)
		b.notices.Error(domain.UserMessage(err, errFallback))
		return err
	}

	b.metrics.IncrAction(b.name, action, "success")
	if msg == "" {
		msg = successFallback
	}
	b.notices.Success(msg)
	return nil
}

// confirm asks c, treating a nil Confirmer as "no".
func confirm(ctx context.Context, c Confirmer, prompt string) error {
	if c == nil || !c.Confirm(ctx, prompt) {
		return ErrNotConfirmed
	}
	return nil
}
