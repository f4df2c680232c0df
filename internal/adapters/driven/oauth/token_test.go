package oauth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/gemauth/internal/core/domain"
)

func TestToToken(t *testing.T) {
	tok := ToToken(domain.Credential{
		AccessToken:  "ya29.a",
		RefreshToken: "1//r",
		TokenType:    "Bearer",
		ExpiresAt:    "1717000000",
		Scope:        "openid email",
	})

	assert.Equal(t, "ya29.a", tok.AccessToken)
	assert.Equal(t, "1//r", tok.RefreshToken)
	assert.Equal(t, "Bearer", tok.TokenType)
	assert.True(t, time.Unix(1717000000, 0).Equal(tok.Expiry))
	assert.Equal(t, "openid email", tok.Extra("scope"))
	assert.False(t, tok.Valid(), "expiry in the past")
}

func TestToToken_NoExpiry(t *testing.T) {
	tok := ToToken(domain.Credential{AccessToken: "ya29.a", ExpiresAt: "soon"})

	assert.True(t, tok.Expiry.IsZero())
	assert.True(t, tok.Valid())
	assert.Nil(t, tok.Extra("scope"))
}
