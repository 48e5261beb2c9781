package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/boddenberg/wallet-console-go/internal/domain"
	"github.com/boddenberg/wallet-console-go/internal/infra/session"
	"github.com/boddenberg/wallet-console-go/internal/screen"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Screens
// ============================================================

// screenActions lists the actions each screen accepts.
var screenActions = map[string][]string{
	screen.NameCustomer:    {screen.ActCreate, screen.ActUpdate, screen.ActGet, screen.ActDelete, screen.ActOverview},
	screen.NameBankAccount: {screen.ActAdd, screen.ActList, screen.ActGet, screen.ActDelete},
	screen.NameBeneficiary: {screen.ActAdd, screen.ActGet, screen.ActList, screen.ActDelete},
	screen.NameBillPayment: {screen.ActAdd, screen.ActList, screen.ActGet, screen.ActDelete},
	screen.NameTransaction: {screen.ActAdd, screen.ActListAll, screen.ActGet, screen.ActListByWallet},
	screen.NameWallet:      {screen.ActCreate, screen.ActGet, screen.ActUpdateBalance, screen.ActDelete, screen.ActTransfer},
}

func knownAction(name, action string) bool {
	for _, a := range screenActions[name] {
		if a == action {
			return true
		}
	}
	return false
}

// actionRequest is the body of an action. A nil Form keeps the form the
// screen already holds; Confirmed answers the prompt of a delete.
type actionRequest[F any] struct {
	Form      *F   `json:"form"`
	Confirmed bool `json:"confirmed"`
}

// walletRequest adds the transfer form the wallet screen also carries.
type walletRequest struct {
	actionRequest[screen.WalletForm]
	Transfer *screen.TransferForm `json:"transfer"`
}

var errEmptyBody = errors.New("empty body")

func decodeAction(body []byte, v any) error {
	if len(bytes.TrimSpace(body)) == 0 {
		return errEmptyBody
	}
	return json.Unmarshal(body, v)
}

// decodeForm decodes an actionRequest and applies its form with set.
func decodeForm[F any](body []byte, set func(F)) (bool, error) {
	var req actionRequest[F]
	if err := decodeAction(body, &req); err != nil {
		if errors.Is(err, errEmptyBody) {
			return false, nil
		}
		return false, err
	}
	if req.Form != nil {
		set(*req.Form)
	}
	return req.Confirmed, nil
}

func (g *gate) consoleFor(ctx context.Context) *screen.Console {
	return g.console(session.FromContext(ctx))
}

func (g *gate) snapshot(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	name := chi.URLParam(r, "screen")

	s, err := g.consoleFor(ctx).Screen(ctx, name)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, screenResponse{Snapshot: s.Snapshot()})
}

func (g *gate) mount(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracer.Start(r.Context(), "POST /v1/screens/{screen}/mount")
	defer span.End()

	name := chi.URLParam(r, "screen")
	span.SetAttributes(attribute.String("screen", name))

	s, err := g.consoleFor(ctx).Mount(ctx, name)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, screenResponse{Snapshot: s.Snapshot()})
}

func (g *gate) act(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracer.Start(r.Context(), "POST /v1/screens/{screen}/{action}")
	defer span.End()

	name := chi.URLParam(r, "screen")
	action := chi.URLParam(r, "action")
	span.SetAttributes(attribute.String("screen", name), attribute.String("action", action))

	if _, ok := screenActions[name]; !ok {
		writeError(w, http.StatusNotFound, (&screen.ErrUnknownScreen{Name: name}).Error())
		return
	}
	if !knownAction(name, action) {
		writeError(w, http.StatusNotFound, "unknown action "+action+" on screen "+name)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s, err := g.consoleFor(ctx).Screen(ctx, name)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	err = dispatch(ctx, s, action, body)
	// Backend decode failures arrive wrapped in *domain.APIError and keep
	// their screen status; only the request body's own errors are a 400.
	var apiErr *domain.APIError
	var syntax *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if !errors.As(err, &apiErr) && (errors.As(err, &syntax) || errors.As(err, &typeErr)) {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err != nil {
		g.logger.Debug("screen action failed",
			zap.String("screen", name),
			zap.String("action", action),
			zap.String("kind", domain.KindOf(err).String()),
			zap.Error(err),
		)
		handleScreenError(w, s, err, g.logger)
		return
	}
	writeJSON(w, http.StatusOK, screenResponse{Snapshot: s.Snapshot()})
}

// dispatch applies the request's form to s and runs the action.
func dispatch(ctx context.Context, s screen.Screen, action string, body []byte) error {
	switch sc := s.(type) {
	case *screen.Customer:
		confirmed, err := decodeForm(body, sc.SetForm)
		if err != nil {
			return err
		}
		switch action {
		case screen.ActCreate:
			return sc.Create(ctx)
		case screen.ActUpdate:
			return sc.Update(ctx)
		case screen.ActGet:
			return sc.Get(ctx)
		case screen.ActOverview:
			return sc.Overview(ctx)
		case screen.ActDelete:
			return sc.Delete(ctx, screen.Confirmed(confirmed))
		}

	case *screen.BankAccount:
		confirmed, err := decodeForm(body, sc.SetForm)
		if err != nil {
			return err
		}
		switch action {
		case screen.ActAdd:
			return sc.Add(ctx)
		case screen.ActList:
			return sc.List(ctx)
		case screen.ActGet:
			return sc.Get(ctx)
		case screen.ActDelete:
			return sc.Delete(ctx, screen.Confirmed(confirmed))
		}

	case *screen.Beneficiary:
		confirmed, err := decodeForm(body, sc.SetForm)
		if err != nil {
			return err
		}
		switch action {
		case screen.ActAdd:
			return sc.Add(ctx)
		case screen.ActGet:
			return sc.Get(ctx)
		case screen.ActList:
			return sc.List(ctx)
		case screen.ActDelete:
			return sc.Delete(ctx, screen.Confirmed(confirmed))
		}

	case *screen.BillPayment:
		confirmed, err := decodeForm(body, sc.SetForm)
		if err != nil {
			return err
		}
		switch action {
		case screen.ActAdd:
			return sc.Add(ctx)
		case screen.ActList:
			return sc.List(ctx)
		case screen.ActGet:
			return sc.Get(ctx)
		case screen.ActDelete:
			return sc.Delete(ctx, screen.Confirmed(confirmed))
		}

	case *screen.Transaction:
		if _, err := decodeForm(body, sc.SetForm); err != nil {
			return err
		}
		switch action {
		case screen.ActAdd:
			return sc.Add(ctx)
		case screen.ActListAll:
			return sc.ListAll(ctx)
		case screen.ActGet:
			return sc.Get(ctx)
		case screen.ActListByWallet:
			return sc.ListByWallet(ctx)
		}

	case *screen.Wallet:
		var req walletRequest
		if err := decodeAction(body, &req); err != nil && !errors.Is(err, errEmptyBody) {
			return err
		}
		if req.Form != nil {
			sc.SetForm(*req.Form)
		}
		if req.Transfer != nil {
			sc.SetTransferForm(*req.Transfer)
		}
		switch action {
		case screen.ActCreate:
			return sc.Create(ctx)
		case screen.ActGet:
			return sc.Get(ctx)
		case screen.ActUpdateBalance:
			return sc.UpdateBalance(ctx)
		case screen.ActDelete:
			return sc.Delete(ctx, screen.Confirmed(req.Confirmed))
		case screen.ActTransfer:
			return sc.Transfer(ctx)
		}
	}
	return &screen.ErrUnknownScreen{Name: s.Name()}
}
