package service

import (
	"context"
	"net/url"

	"github.com/boddenberg/wallet-console-go/internal/domain"
)

// Login: POST /auth/login (form-encoded). Returns the backend's
// acknowledgement text.
func (b *Backend) Login(ctx context.Context, creds domain.Credentials) (string, error) {
	return b.authForm(ctx, "auth.login", "/auth/login", creds)
}

// Register: POST /auth/register (form-encoded).
func (b *Backend) Register(ctx context.Context, creds domain.Credentials) (string, error) {
	return b.authForm(ctx, "auth.register", "/auth/register", creds)
}

func (b *Backend) authForm(ctx context.Context, op, path string, creds domain.Credentials) (string, error) {
	values := url.Values{
		"username": {creds.Username},
		"password": {creds.Password},
	}
	var resp domain.MessageResponse
	if err := b.postForm(ctx, op, path, values, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}
