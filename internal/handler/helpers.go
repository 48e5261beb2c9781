package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/boddenberg/wallet-console-go/internal/domain"
	"github.com/boddenberg/wallet-console-go/internal/screen"

	"go.uber.org/zap"
)

// ============================================================
// Shared helper functions
// ============================================================

type errorResponse struct {
	Error string `json:"error"`
}

// screenResponse is the body of every screen route. Error is set only for
// a failed action; the operator-facing text is in the snapshot's notices.
type screenResponse struct {
	Snapshot any    `json:"snapshot"`
	Error    string `json:"error,omitempty"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// statusFor maps an action outcome to an HTTP status.
func statusFor(err error) int {
	if errors.Is(err, screen.ErrBusy) || errors.Is(err, screen.ErrNotConfirmed) {
		return http.StatusConflict
	}
	switch domain.KindOf(err) {
	case domain.KindInvalidInput:
		return http.StatusBadRequest
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindReferenceMissing:
		return http.StatusUnprocessableEntity
	case domain.KindRejected:
		return http.StatusBadGateway
	case domain.KindNetwork:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// handleScreenError writes the snapshot of s along with the failure.
func handleScreenError(w http.ResponseWriter, s screen.Screen, err error, logger *zap.Logger) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Error("unhandled screen error", zap.String("screen", s.Name()), zap.Error(err))
	}
	writeJSON(w, status, screenResponse{Snapshot: s.Snapshot(), Error: err.Error()})
}

// handleAuthError maps a failed login or register. A backend refusal is
// the credentials being wrong, not the console failing.
func handleAuthError(w http.ResponseWriter, err error, fallback string, logger *zap.Logger) {
	msg := domain.UserMessage(err, fallback)
	switch domain.KindOf(err) {
	case domain.KindInvalidInput:
		writeError(w, http.StatusBadRequest, msg)
	case domain.KindRejected, domain.KindNotFound:
		writeError(w, http.StatusUnauthorized, msg)
	case domain.KindNetwork:
		logger.Warn("auth: backend unreachable", zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, msg)
	default:
		logger.Error("auth: unhandled error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
