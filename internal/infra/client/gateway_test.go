package client_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/boddenberg/wallet-console-go/internal/domain"
	"github.com/boddenberg/wallet-console-go/internal/infra/client"
	"github.com/boddenberg/wallet-console-go/internal/infra/resilience"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newGateway(t *testing.T, baseURL string, cfg resilience.Config) *client.Gateway {
	t.Helper()
	if cfg.MaxConcurrency == 0 {
		cfg.MaxConcurrency = 4
	}
	return client.NewGateway(&http.Client{Timeout: 2 * time.Second}, baseURL, cfg, zap.NewNop())
}

func asAPIError(t *testing.T, err error) *domain.APIError {
	t.Helper()
	var apiErr *domain.APIError
	require.True(t, errors.As(err, &apiErr), "expected *domain.APIError, got %T: %v", err, err)
	return apiErr
}

func TestGateway_CallDecodesJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/wallets/111", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"walletId":7,"balance":150.25,"customer":{"mobileNumber":"111"}}`))
	}))
	defer srv.Close()

	var wallet domain.Wallet
	err := newGateway(t, srv.URL, resilience.Config{}).Call(context.Background(), http.MethodGet, "/wallets/111", nil, &wallet)
	require.NoError(t, err)

	assert.Equal(t, int64(7), wallet.WalletID)
	assert.True(t, wallet.Balance.Equal(decimal.RequireFromString("150.25")))
	assert.Equal(t, "111", wallet.OwnerMobile())
}

func TestGateway_CallSendsJSONBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var got map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		assert.Equal(t, "111", got["fromMobile"])
		assert.Equal(t, float64(50), got["amount"])
		w.Write([]byte(`"Transfer successful"`))
	}))
	defer srv.Close()

	var receipt domain.TransferReceipt
	intent := domain.TransferIntent{FromMobile: "111", ToMobile: "222", Amount: decimal.NewFromInt(50)}
	err := newGateway(t, srv.URL, resilience.Config{}).Call(context.Background(), http.MethodPost, "/wallets/transfer", intent, &receipt)
	require.NoError(t, err)
	assert.Equal(t, "Transfer successful", receipt.Message)
}

func TestGateway_PlainTextBodyDecodesIntoString(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("Account deleted successfully"))
	}))
	defer srv.Close()

	var msg string
	err := newGateway(t, srv.URL, resilience.Config{}).Call(context.Background(), http.MethodDelete, "/bankaccounts/42", nil, &msg)
	require.NoError(t, err)
	assert.Equal(t, "Account deleted successfully", msg)
}

func TestGateway_PostFormEncodesValues(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "admin", r.PostForm.Get("username"))
		w.Write([]byte("Login successful"))
	}))
	defer srv.Close()

	var msg string
	values := url.Values{"username": {"admin"}, "password": {"secret"}}
	err := newGateway(t, srv.URL, resilience.Config{}).PostForm(context.Background(), "/auth/login", values, &msg)
	require.NoError(t, err)
	assert.Equal(t, "Login successful", msg)
}

func TestGateway_ErrorClassification(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantKind    domain.ErrorKind
		wantMessage string
	}{
		{"error field", http.StatusBadRequest, `{"error":"Insufficient balance"}`, domain.KindRejected, "Insufficient balance"},
		{"message field", http.StatusConflict, `{"message":"Account already exists"}`, domain.KindRejected, "Account already exists"},
		{"plain text", http.StatusBadRequest, `Customer not found`, domain.KindRejected, "Customer not found"},
		{"json string", http.StatusBadRequest, `"Wallet missing"`, domain.KindRejected, "Wallet missing"},
		{"empty body", http.StatusInternalServerError, ``, domain.KindRejected, ""},
		{"not found", http.StatusNotFound, `{"message":"No customer"}`, domain.KindNotFound, "No customer"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			err := newGateway(t, srv.URL, resilience.Config{}).Call(context.Background(), http.MethodPost, "/x", map[string]string{}, nil)
			apiErr := asAPIError(t, err)
			assert.Equal(t, tt.wantKind, apiErr.Kind)
			assert.Equal(t, tt.status, apiErr.Status)
			assert.Equal(t, tt.wantMessage, apiErr.Message)
		})
	}
}

func TestGateway_NetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	baseURL := srv.URL
	srv.Close()

	err := newGateway(t, baseURL, resilience.Config{}).Call(context.Background(), http.MethodGet, "/customers/1", nil, nil)
	apiErr := asAPIError(t, err)
	assert.Equal(t, domain.KindNetwork, apiErr.Kind)
	assert.Zero(t, apiErr.Status)
}

func TestGateway_RetriesReadsOnNetworkFailureOnly(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	cfg := resilience.Config{MaxRetries: 3, InitialBackoff: time.Millisecond}
	err := newGateway(t, srv.URL, cfg).Call(context.Background(), http.MethodGet, "/customers/1", nil, nil)
	assert.Equal(t, domain.KindNotFound, asAPIError(t, err).Kind)
	assert.Equal(t, int32(1), calls.Load(), "a backend answer must not be retried")
}

func TestGateway_NeverRetriesMutations(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		// Drop the connection to simulate a lost response.
		hj, ok := w.(http.Hijacker)
		require.True(t, ok)
		conn, _, err := hj.Hijack()
		require.NoError(t, err)
		conn.Close()
	}))
	defer srv.Close()

	cfg := resilience.Config{MaxRetries: 3, InitialBackoff: time.Millisecond}
	err := newGateway(t, srv.URL, cfg).Call(context.Background(), http.MethodPost, "/wallets/transfer", map[string]string{}, nil)
	assert.Equal(t, domain.KindNetwork, asAPIError(t, err).Kind)
	assert.Equal(t, int32(1), calls.Load())
}

func TestGateway_RetriesReadsAfterLostResponse(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			hj, _ := w.(http.Hijacker)
			conn, _, _ := hj.Hijack()
			conn.Close()
			return
		}
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	cfg := resilience.Config{MaxRetries: 2, InitialBackoff: time.Millisecond}
	var out []domain.Transaction
	err := newGateway(t, srv.URL, cfg).Call(context.Background(), http.MethodGet, "/transactions/all", nil, &out)
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}
