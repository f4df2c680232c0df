package mcp

import (
	"github.com/custodia-labs/gemauth/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
type Ports struct {
	// NewFlow creates an independent flow controller per tool call.
	NewFlow driving.OAuthFlowFactory

	// Credentials manages locally stored credentials. Optional.
	Credentials driving.CredentialsService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.NewFlow == nil {
		return ErrMissingFlowFactory
	}
	return nil
}
