package handler

import (
	"net/http"
	"strings"

	"github.com/boddenberg/wallet-console-go/internal/infra/session"

	"go.uber.org/zap"
)

// sessionCookie carries the session token for browser clients.
const sessionCookie = "console_session"

// bearerToken reads the token from the Authorization header, falling back
// to the session cookie.
func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		parts := strings.SplitN(h, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	if c, err := r.Cookie(sessionCookie); err == nil {
		return c.Value
	}
	return ""
}

// guard admits requests carrying a valid token for a live session and puts
// the session in the request context.
func (g *gate) guard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			g.logger.Warn("auth: missing token",
				zap.String("path", r.URL.Path),
				zap.String("remote_addr", r.RemoteAddr),
			)
			writeError(w, http.StatusUnauthorized, "Please log in")
			return
		}

		claims, err := g.tokens.Parse(token)
		if err != nil {
			g.logger.Warn("auth: invalid or expired token",
				zap.String("path", r.URL.Path),
				zap.String("remote_addr", r.RemoteAddr),
				zap.Error(err),
			)
			writeError(w, http.StatusUnauthorized, "Session expired, please log in again")
			return
		}

		s, err := g.store.Get(r.Context(), claims.ID)
		if err != nil {
			g.logger.Error("auth: session lookup failed", zap.Error(err))
			writeError(w, http.StatusServiceUnavailable, "Session store unavailable")
			return
		}
		if s == nil {
			writeError(w, http.StatusUnauthorized, "Session expired, please log in again")
			return
		}

		next.ServeHTTP(w, r.WithContext(session.WithSession(r.Context(), s)))
	})
}
