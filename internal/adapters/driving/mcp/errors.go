// Package mcp provides an MCP (Model Context Protocol) server adapter for gemauth.
// It lets AI assistants drive the Gemini OAuth flow against the admin backend.
package mcp

import "errors"

// ErrMissingFlowFactory is returned when no flow factory is provided.
var ErrMissingFlowFactory = errors.New("mcp: oauth flow factory is required")
