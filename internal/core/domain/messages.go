package domain

// MessageKey identifies a user-facing message in the localization catalog.
// Each failure path of the OAuth flow maps to exactly one key.
type MessageKey string

// Message keys for the Gemini OAuth flow.
const (
	MsgMissingRedirectURI    MessageKey = "admin.accounts.oauth.gemini.missingRedirectUri"
	MsgFailedToGenerateURL   MessageKey = "admin.accounts.oauth.gemini.failedToGenerateUrl"
	MsgMissingExchangeParams MessageKey = "admin.accounts.oauth.gemini.missingExchangeParams"
	MsgFailedToExchangeCode  MessageKey = "admin.accounts.oauth.gemini.failedToExchangeCode"
)

// MessageKeys returns every message key the flow can emit.
func MessageKeys() []MessageKey {
	return []MessageKey{
		MsgMissingRedirectURI,
		MsgFailedToGenerateURL,
		MsgMissingExchangeParams,
		MsgFailedToExchangeCode,
	}
}
