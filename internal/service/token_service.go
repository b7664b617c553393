package service

import (
	"fmt"
	"time"

	"ngo-donation-ledger/internal/core/domain"
	"ngo-donation-ledger/internal/core/ports"

	"github.com/golang-jwt/jwt/v5"
)

// TokenServiceImpl implements ports.TokenService with HMAC-signed JWTs.
// The subject claim carries the caller identity.
type TokenServiceImpl struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

// NewTokenService creates a new TokenServiceImpl.
func NewTokenService(secret, issuer string, ttl time.Duration) *TokenServiceImpl {
	return &TokenServiceImpl{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
	}
}

// Generate issues a signed token for the identity and returns it with its
// expiry time.
func (s *TokenServiceImpl) Generate(identity domain.Identity) (string, time.Time, error) {
	now := time.Now().UTC()
	expiry := now.Add(s.ttl)

	claims := jwt.RegisteredClaims{
		Subject:   identity.String(),
		Issuer:    s.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiry),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiry, nil
}

// Validate parses and verifies the token and returns its claims.
func (s *TokenServiceImpl) Validate(tokenString string) (*ports.TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithIssuer(s.issuer), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return nil, fmt.Errorf("missing subject claim")
	}
	return &ports.TokenClaims{Identity: domain.Identity(claims.Subject)}, nil
}
