package domain

import (
	"encoding/json"
	"math"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeCredential_ExpiresAt(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected string
	}{
		{name: "Fractional float is truncated", input: 1700000000.9, expected: "1700000000"},
		{name: "Whole float", input: float64(1700000000), expected: "1700000000"},
		{name: "Negative fraction truncates toward zero", input: -1.7, expected: "-1"},
		{name: "Small negative fraction renders zero", input: -0.4, expected: "0"},
		{name: "Padded string is trimmed", input: "  1700000001  ", expected: "1700000001"},
		{name: "Non-numeric string is kept", input: " 2025-01-01T00:00:00Z ", expected: "2025-01-01T00:00:00Z"},
		{name: "Whitespace string is absent", input: "   ", expected: ""},
		{name: "NaN is absent", input: math.NaN(), expected: ""},
		{name: "Positive infinity is absent", input: math.Inf(1), expected: ""},
		{name: "Negative infinity is absent", input: math.Inf(-1), expected: ""},
		{name: "Integer json.Number", input: json.Number("1700000002"), expected: "1700000002"},
		{name: "Fractional json.Number", input: json.Number("1700000003.99"), expected: "1700000003"},
		{name: "Int64", input: int64(42), expected: "42"},
		{name: "Int", input: 7, expected: "7"},
		{name: "Int8", input: int8(-8), expected: "-8"},
		{name: "Int16", input: int16(1600), expected: "1600"},
		{name: "Uint", input: uint(9), expected: "9"},
		{name: "Uint8", input: uint8(255), expected: "255"},
		{name: "Uint16", input: uint16(65535), expected: "65535"},
		{name: "Uint32", input: uint32(1700000000), expected: "1700000000"},
		{name: "Uint64", input: uint64(1700000000), expected: "1700000000"},
		{name: "Float32", input: float32(2.5), expected: "2"},
		{name: "Bool is absent", input: true, expected: ""},
		{name: "Nil is absent", input: nil, expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeCredential(TokenPayload{FieldExpiresAt: tt.input})
			assert.Equal(t, tt.expected, got.ExpiresAt)
		})
	}
}

func TestNormalizeCredential_MissingExpiresAt(t *testing.T) {
	got := NormalizeCredential(TokenPayload{FieldAccessToken: "ya29.abc"})
	assert.Empty(t, got.ExpiresAt)
}

func TestNormalizeCredential_CopiesFields(t *testing.T) {
	payload := TokenPayload{
		FieldAccessToken:  "ya29.access",
		FieldRefreshToken: "1//refresh",
		FieldTokenType:    "Bearer",
		FieldScope:        "https://www.googleapis.com/auth/cloud-platform",
		FieldProjectID:    "my-project-123",
		FieldExpiresAt:    json.Number("1700000000"),
		"id_token":        "ignored",
	}

	got := NormalizeCredential(payload)

	assert.Equal(t, Credential{
		AccessToken:  "ya29.access",
		RefreshToken: "1//refresh",
		TokenType:    "Bearer",
		Scope:        "https://www.googleapis.com/auth/cloud-platform",
		ProjectID:    "my-project-123",
		ExpiresAt:    "1700000000",
	}, got)
}

func TestNormalizeCredential_AbsentFieldsStayAbsent(t *testing.T) {
	got := NormalizeCredential(TokenPayload{FieldAccessToken: "only-access"})

	data, err := json.Marshal(got)
	assert.NoError(t, err)
	assert.JSONEq(t, `{"access_token":"only-access"}`, string(data))
}

func TestNormalizeCredential_KeepsEmptyAndNonStringFields(t *testing.T) {
	payload := TokenPayload{
		FieldAccessToken:  "ya29.access",
		FieldRefreshToken: "",
		FieldTokenType:    nil,
		FieldScope:        []any{"a", "b"},
		FieldProjectID:    float64(12345),
	}

	got := NormalizeCredential(payload)

	assert.Equal(t, "ya29.access", got.AccessToken)
	assert.Empty(t, got.RefreshToken)
	assert.Empty(t, got.ProjectID)
	for _, name := range CopiedFields() {
		assert.True(t, got.IsPresent(name), name)
	}
	assert.False(t, got.IsPresent(FieldExpiresAt))

	data, err := json.Marshal(got)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"access_token": "ya29.access",
		"refresh_token": "",
		"token_type": null,
		"scope": ["a", "b"],
		"project_id": 12345
	}`, string(data))
}

func TestNormalizeCredential_UnencodableFieldIsAbsent(t *testing.T) {
	got := NormalizeCredential(TokenPayload{FieldScope: math.NaN()})

	assert.False(t, got.IsPresent(FieldScope))
	assert.Equal(t, Credential{}, got)
}

func TestCredential_JSONRoundTripKeepsVerbatimFields(t *testing.T) {
	original := NormalizeCredential(TokenPayload{
		FieldAccessToken: "ya29.access",
		FieldProjectID:   "",
		FieldScope:       map[string]any{"read": true},
		FieldExpiresAt:   float64(1700000000),
	})

	data, err := json.Marshal(original)
	require.NoError(t, err)

	var decoded Credential
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, original, decoded)
	assert.True(t, decoded.IsPresent(FieldProjectID))
	assert.Equal(t, "1700000000", decoded.ExpiresAt)
}

func TestCredential_UnmarshalIgnoresUnknownFields(t *testing.T) {
	var c Credential
	require.NoError(t, json.Unmarshal([]byte(`{"access_token":"a","id_token":"x","expires_at":null}`), &c))

	assert.Equal(t, Credential{AccessToken: "a"}, c)
}

func TestNormalizeCredential_EmptyPayload(t *testing.T) {
	assert.Equal(t, Credential{}, NormalizeCredential(TokenPayload{}))
	assert.Equal(t, Credential{}, NormalizeCredential(nil))
}

func TestNormalizeCredential_DoesNotMutatePayload(t *testing.T) {
	payload := TokenPayload{FieldExpiresAt: "  99  ", "extra": 1}
	_ = NormalizeCredential(payload)
	assert.Equal(t, "  99  ", payload[FieldExpiresAt])
	assert.Equal(t, 1, payload["extra"])
}

func TestCredential_ExpiryTime(t *testing.T) {
	c := Credential{ExpiresAt: "1700000000"}
	expiry, ok := c.ExpiryTime()
	assert.True(t, ok)
	assert.Equal(t, int64(1700000000), expiry.Unix())

	_, ok = Credential{ExpiresAt: "soon"}.ExpiryTime()
	assert.False(t, ok)

	_, ok = Credential{}.ExpiryTime()
	assert.False(t, ok)
}

func TestCredential_IsExpired(t *testing.T) {
	past := strconv.FormatInt(time.Now().Add(-time.Hour).Unix(), 10)
	future := strconv.FormatInt(time.Now().Add(time.Hour).Unix(), 10)

	assert.True(t, Credential{ExpiresAt: past}.IsExpired())
	assert.False(t, Credential{ExpiresAt: future}.IsExpired())
	assert.False(t, Credential{}.IsExpired(), "unknown expiry should not be expired")
}

func TestCredential_HasRefreshToken(t *testing.T) {
	assert.True(t, Credential{RefreshToken: "r"}.HasRefreshToken())
	assert.False(t, Credential{}.HasRefreshToken())
}
