package session

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"github.com/boddenberg/wallet-console-go/internal/domain"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/hkdf"
)

const tokenIssuer = "wallet-console"

var hkdfInfo = []byte("console session token v1")

// ErrInvalidToken is returned for a token that is malformed, tampered with
// or expired.
var ErrInvalidToken = errors.New("invalid session token")

// Claims identify the session a token was issued for.
type Claims struct {
	jwt.RegisteredClaims
}

// Tokens signs and verifies session tokens (HS256). The signing key is
// derived from the configured secret rather than used as-is.
type Tokens struct {
	key []byte
}

// NewTokens derives the signing key from secret.
func NewTokens(secret string) (*Tokens, error) {
	if secret == "" {
		return nil, errors.New("session secret is required")
	}
	key := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, hkdfInfo), key); err != nil {
		return nil, fmt.Errorf("derive session key: %w", err)
	}
	return &Tokens{key: key}, nil
}

// Issue signs a token for s, valid until the session expires.
func (t *Tokens) Issue(s *domain.Session) (string, error) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        s.ID,
			Subject:   s.Username,
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(s.CreatedAt),
			ExpiresAt: jwt.NewNumericDate(s.ExpiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.key)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// Parse verifies the token and returns its claims.
func (t *Tokens) Parse(token string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(tok *jwt.Token) (any, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", tok.Header["alg"])
		}
		return t.key, nil
	}, jwt.WithIssuer(tokenIssuer), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.ID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
