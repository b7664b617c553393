package service

import (
	"testing"
	"time"

	"ngo-donation-ledger/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenService_GenerateAndValidate(t *testing.T) {
	s := NewTokenService("test-secret", "ngo-donation-ledger", time.Hour)

	token, expiry, err := s.Generate("id_abc")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiry, 5*time.Second)

	claims, err := s.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, domain.Identity("id_abc"), claims.Identity)
}

func TestTokenService_Validate_WrongSecret(t *testing.T) {
	s1 := NewTokenService("secret-one", "ngo-donation-ledger", time.Hour)
	s2 := NewTokenService("secret-two", "ngo-donation-ledger", time.Hour)

	token, _, err := s1.Generate("id_abc")
	require.NoError(t, err)

	_, err = s2.Validate(token)
	assert.Error(t, err)
}

func TestTokenService_Validate_Expired(t *testing.T) {
	s := NewTokenService("test-secret", "ngo-donation-ledger", -time.Minute)

	token, _, err := s.Generate("id_abc")
	require.NoError(t, err)

	_, err = s.Validate(token)
	assert.Error(t, err)
}

func TestTokenService_Validate_Garbage(t *testing.T) {
	s := NewTokenService("test-secret", "ngo-donation-ledger", time.Hour)

	_, err := s.Validate("not.a.jwt")
	assert.Error(t, err)
}
