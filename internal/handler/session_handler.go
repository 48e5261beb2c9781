package handler

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/boddenberg/wallet-console-go/internal/domain"
	"github.com/boddenberg/wallet-console-go/internal/infra/observability"
	"github.com/boddenberg/wallet-console-go/internal/infra/session"
	"github.com/boddenberg/wallet-console-go/internal/port"
	"github.com/boddenberg/wallet-console-go/internal/screen"
	"github.com/boddenberg/wallet-console-go/internal/service"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Session gate
// ============================================================

// gate owns the session routes and every route behind the guard.
type gate struct {
	mu       sync.Mutex
	backend  *service.Backend
	screens  screen.Deps
	store    port.SessionStore
	tokens   *session.Tokens
	consoles port.Cache[*screen.Console]
	ttl      time.Duration
	metrics  *observability.Metrics
	logger   *zap.Logger
	now      func() time.Time
}

func newGate(opts Options) *gate {
	return &gate{
		backend:  opts.Screens.Backend,
		screens:  opts.Screens,
		store:    opts.Store,
		tokens:   opts.Tokens,
		consoles: opts.Consoles,
		ttl:      opts.SessionTTL,
		metrics:  opts.Metrics,
		logger:   opts.Logger,
		now:      time.Now,
	}
}

type loginResponse struct {
	Token     string    `json:"token"`
	Username  string    `json:"username"`
	ExpiresAt time.Time `json:"expiresAt"`
	Message   string    `json:"message,omitempty"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func decodeCredentials(r *http.Request) (domain.Credentials, error) {
	var creds domain.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		return creds, &domain.ErrValidation{Field: "body", Message: "invalid request body"}
	}
	creds.Username = strings.TrimSpace(creds.Username)
	if creds.Username == "" || creds.Password == "" {
		return creds, &domain.ErrValidation{Field: "username", Message: "Username and password are required"}
	}
	return creds, nil
}

func (g *gate) login(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracer.Start(r.Context(), "POST /v1/session/login")
	defer span.End()

	creds, err := decodeCredentials(r)
	if err != nil {
		handleAuthError(w, err, "Login failed", g.logger)
		return
	}
	span.SetAttributes(attribute.String("username", creds.Username))

	msg, err := g.backend.Login(ctx, creds)
	if err != nil {
		g.logger.Info("login refused", zap.String("username", creds.Username), zap.Error(err))
		handleAuthError(w, err, "Invalid username or password", g.logger)
		return
	}

	now := g.now()
	s := &domain.Session{
		ID:        uuid.NewString(),
		Username:  creds.Username,
		CreatedAt: now,
		ExpiresAt: now.Add(g.ttl),
	}
	if err := g.store.Save(ctx, s); err != nil {
		g.logger.Error("login: save session", zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, "Session store unavailable")
		return
	}
	token, err := g.tokens.Issue(s)
	if err != nil {
		g.logger.Error("login: issue token", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	g.console(s)

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  s.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	g.logger.Info("session opened", zap.String("username", s.Username), zap.String("session_id", s.ID))

	writeJSON(w, http.StatusOK, loginResponse{
		Token:     token,
		Username:  s.Username,
		ExpiresAt: s.ExpiresAt,
		Message:   msg,
	})
}

func (g *gate) register(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracer.Start(r.Context(), "POST /v1/session/register")
	defer span.End()

	creds, err := decodeCredentials(r)
	if err != nil {
		handleAuthError(w, err, "Registration failed", g.logger)
		return
	}

	msg, err := g.backend.Register(ctx, creds)
	if err != nil {
		handleAuthError(w, err, "Registration failed", g.logger)
		return
	}
	if msg == "" {
		msg = "Registration successful"
	}
	writeJSON(w, http.StatusCreated, messageResponse{Message: msg})
}

func (g *gate) logout(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracer.Start(r.Context(), "POST /v1/session/logout")
	defer span.End()

	s := session.FromContext(ctx)
	if err := g.store.Delete(ctx, s.ID); err != nil {
		g.logger.Error("logout: delete session", zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, "Session store unavailable")
		return
	}
	if _, ok := g.consoles.Get(s.ID); ok {
		g.consoles.Delete(s.ID)
		g.metrics.SessionClosed()
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	g.logger.Info("session closed", zap.String("username", s.Username), zap.String("session_id", s.ID))
	w.WriteHeader(http.StatusNoContent)
}

// console returns the session's console, creating it on first use. A
// session restored from Redis after a restart starts with a fresh console.
func (g *gate) console(s *domain.Session) *screen.Console {
	g.mu.Lock()
	defer g.mu.Unlock()

	if c, ok := g.consoles.Get(s.ID); ok {
		return c
	}
	c := screen.NewConsole(g.screens)
	g.consoles.SetWithTTL(s.ID, c, s.ExpiresAt.Sub(g.now()))
	g.metrics.SessionOpened()
	return c
}
