// Package tui provides the interactive terminal login for gemauth.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"strings"

	"github.com/custodia-labs/gemauth/internal/core/ports/driving"
)

// Ports aggregates the driving ports the login view needs.
type Ports struct {
	// Flow drives the authorization-code exchange.
	Flow driving.OAuthFlow

	// Credentials stores the result. Optional; when nil nothing is saved.
	Credentials driving.CredentialsService
}

// Options configure a single login.
type Options struct {
	RedirectURI string
	ProxyID     *int64
	Label       string
	// OpenBrowser launches a URL; nil disables the ctrl+o binding.
	OpenBrowser func(url string) error
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Flow == nil {
		return ErrMissingFlow
	}
	return nil
}

func (o Options) validate() error {
	if strings.TrimSpace(o.RedirectURI) == "" {
		return ErrMissingRedirectURI
	}
	return nil
}
