package domain

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// Token payload field names.
const (
	FieldAccessToken  = "access_token"
	FieldRefreshToken = "refresh_token"
	FieldTokenType    = "token_type"
	FieldScope        = "scope"
	FieldExpiresAt    = "expires_at"
	FieldProjectID    = "project_id"
)

// Credential is the fixed-shape record derived from a TokenPayload.
type Credential struct {
	AccessToken  string `json:"access_token,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
	TokenType    string `json:"token_type,omitempty"`
	// ExpiresAt is epoch seconds rendered as a decimal string, or the
	// backend's own trimmed string when it sent one.
	ExpiresAt string `json:"expires_at,omitempty"`
	Scope     string `json:"scope,omitempty"`
	ProjectID string `json:"project_id,omitempty"`

	// Verbatim holds copied fields that were present in the payload but
	// empty or not strings, encoded as the backend sent them. The typed
	// field of such an entry stays empty.
	Verbatim map[string]json.RawMessage `json:"-"`
}

// copiedFields are the payload fields a Credential carries unchanged.
var copiedFields = []string{
	FieldAccessToken,
	FieldRefreshToken,
	FieldTokenType,
	FieldScope,
	FieldProjectID,
}

// CopiedFields returns the names of the fields NormalizeCredential copies
// through without reshaping.
func CopiedFields() []string {
	return append([]string(nil), copiedFields...)
}

// NormalizeCredential reshapes a raw token payload into a Credential.
// It performs no I/O and never fails.
func NormalizeCredential(payload TokenPayload) Credential {
	var c Credential
	for _, name := range copiedFields {
		v, ok := payload[name]
		if !ok {
			continue
		}
		if str, isString := v.(string); isString && str != "" {
			*c.field(name) = str
			continue
		}
		raw, err := json.Marshal(v)
		if err != nil {
			// unencodable values (NaN, channels) count as absent
			continue
		}
		c.setVerbatim(name, raw)
	}
	c.ExpiresAt = normalizeExpiresAt(payload[FieldExpiresAt])
	return c
}

func (c *Credential) field(name string) *string {
	switch name {
	case FieldAccessToken:
		return &c.AccessToken
	case FieldRefreshToken:
		return &c.RefreshToken
	case FieldTokenType:
		return &c.TokenType
	case FieldScope:
		return &c.Scope
	case FieldProjectID:
		return &c.ProjectID
	case FieldExpiresAt:
		return &c.ExpiresAt
	}
	return nil
}

func (c *Credential) setVerbatim(name string, raw json.RawMessage) {
	if c.Verbatim == nil {
		c.Verbatim = make(map[string]json.RawMessage)
	}
	c.Verbatim[name] = raw
}

// credentialJSON has Credential's fields without its methods.
type credentialJSON Credential

// MarshalJSON emits the typed fields and then any verbatim ones.
func (c Credential) MarshalJSON() ([]byte, error) {
	if len(c.Verbatim) == 0 {
		return json.Marshal(credentialJSON(c))
	}
	typed, err := json.Marshal(credentialJSON(c))
	if err != nil {
		return nil, err
	}
	out := make(map[string]json.RawMessage, len(copiedFields)+1)
	if err := json.Unmarshal(typed, &out); err != nil {
		return nil, err
	}
	for name, raw := range c.Verbatim {
		if _, set := out[name]; !set && c.field(name) != nil {
			out[name] = raw
		}
	}
	return json.Marshal(out)
}

// UnmarshalJSON restores both typed and verbatim fields.
func (c *Credential) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	*c = Credential{}
	for name, raw := range fields {
		dst := c.field(name)
		if dst == nil {
			continue
		}
		var str string
		if err := json.Unmarshal(raw, &str); err == nil && str != "" {
			*dst = str
			continue
		}
		if name == FieldExpiresAt {
			// normalized expiries are always strings
			continue
		}
		c.setVerbatim(name, append(json.RawMessage(nil), raw...))
	}
	return nil
}

// IsPresent reports whether the named field appears in the credential,
// either as a non-empty string or verbatim.
func (c Credential) IsPresent(name string) bool {
	if _, ok := c.Verbatim[name]; ok {
		return true
	}
	dst := c.field(name)
	return dst != nil && *dst != ""
}

// normalizeExpiresAt renders numeric epochs as truncated integer strings
// and trims string values. Anything else yields "".
func normalizeExpiresAt(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return strconv.FormatInt(i, 10)
		}
		f, err := t.Float64()
		if err != nil {
			return ""
		}
		return formatEpoch(f)
	case float64:
		return formatEpoch(t)
	case float32:
		return formatEpoch(float64(t))
	case int:
		return strconv.FormatInt(int64(t), 10)
	case int8:
		return strconv.FormatInt(int64(t), 10)
	case int16:
		return strconv.FormatInt(int64(t), 10)
	case int32:
		return strconv.FormatInt(int64(t), 10)
	case int64:
		return strconv.FormatInt(t, 10)
	case uint:
		return strconv.FormatUint(uint64(t), 10)
	case uint8:
		return strconv.FormatUint(uint64(t), 10)
	case uint16:
		return strconv.FormatUint(uint64(t), 10)
	case uint32:
		return strconv.FormatUint(uint64(t), 10)
	case uint64:
		return strconv.FormatUint(t, 10)
	default:
		return ""
	}
}

func formatEpoch(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return ""
	}
	f = math.Trunc(f)
	if f == 0 {
		// avoid "-0"
		return "0"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// ExpiryTime parses ExpiresAt as epoch seconds.
// The second result is false when ExpiresAt is empty or not an integer.
func (c Credential) ExpiryTime() (time.Time, bool) {
	if c.ExpiresAt == "" {
		return time.Time{}, false
	}
	secs, err := strconv.ParseInt(c.ExpiresAt, 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.Unix(secs, 0), true
}

// IsExpired returns true if the expiry is known and has passed.
func (c Credential) IsExpired() bool {
	expiry, ok := c.ExpiryTime()
	if !ok {
		return false
	}
	return time.Now().After(expiry)
}

// HasRefreshToken returns true if a refresh token is available.
func (c Credential) HasRefreshToken() bool {
	return c.RefreshToken != ""
}
