// Package messages defines Bubbletea message types for the TUI.
package messages

import (
	"github.com/custodia-labs/gemauth/internal/core/domain"
)

// FlowStarted is sent when StartFlow returns.
type FlowStarted struct {
	OK    bool
	State domain.FlowState
}

// FlowFinished is sent when FinishFlow returns. Payload is nil on failure.
type FlowFinished struct {
	Payload domain.TokenPayload
	Err     string
}

// CredentialSaved is sent after the normalized credential was stored.
type CredentialSaved struct {
	ID  string
	Err error
}

// BrowserOpened is sent after trying to open the authorization URL.
type BrowserOpened struct {
	Err error
}
