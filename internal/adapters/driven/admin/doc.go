// Package admin is the HTTP client for the admin backend's Gemini OAuth
// endpoints. It implements driven.GeminiOAuthBackend as pure transport:
// requests are sent as given, responses are decoded and returned unmodified,
// and failures surface as errors without retries.
package admin
