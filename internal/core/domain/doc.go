// Package domain defines the core business entities for gemauth.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - AuthorizationRequest / AuthorizationURL: the first leg of the Gemini OAuth flow
//   - ExchangeRequest / TokenPayload: the code exchange and its open token map
//   - Credential: the normalized token record shown to and stored by the admin
//   - FlowState: the transient state owned by the flow controller
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
