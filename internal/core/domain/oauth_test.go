package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthorizationRequest_OmitsNilProxyID(t *testing.T) {
	data, err := json.Marshal(AuthorizationRequest{RedirectURI: "https://app.example/cb"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"redirect_uri":"https://app.example/cb"}`, string(data))
}

func TestAuthorizationRequest_IncludesProxyID(t *testing.T) {
	id := int64(12)
	data, err := json.Marshal(AuthorizationRequest{RedirectURI: "https://app.example/cb", ProxyID: &id})
	require.NoError(t, err)
	assert.JSONEq(t, `{"redirect_uri":"https://app.example/cb","proxy_id":12}`, string(data))
}

func TestExchangeRequest_WireShape(t *testing.T) {
	data, err := json.Marshal(ExchangeRequest{
		SessionID:   "sess-1",
		State:       "st-1",
		Code:        "4/0Ab",
		RedirectURI: "https://app.example/cb",
	})
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"session_id":"sess-1","state":"st-1","code":"4/0Ab","redirect_uri":"https://app.example/cb"}`,
		string(data))
}

func TestProxyIDOrNil(t *testing.T) {
	zero := int64(0)
	seven := int64(7)

	assert.Nil(t, ProxyIDOrNil(nil))
	assert.Nil(t, ProxyIDOrNil(&zero))
	require.NotNil(t, ProxyIDOrNil(&seven))
	assert.Equal(t, int64(7), *ProxyIDOrNil(&seven))
}

func TestTokenPayload_String(t *testing.T) {
	p := TokenPayload{"a": "x", "b": 3}

	v, ok := p.String("a")
	assert.True(t, ok)
	assert.Equal(t, "x", v)

	_, ok = p.String("b")
	assert.False(t, ok)

	_, ok = p.String("missing")
	assert.False(t, ok)

	assert.True(t, p.Has("b"))
	assert.False(t, p.Has("missing"))
}
