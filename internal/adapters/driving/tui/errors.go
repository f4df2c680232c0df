package tui

import (
	"errors"
	"fmt"

	"github.com/custodia-labs/gemauth/internal/core/domain"
)

// ErrMissingFlow is returned when no flow controller is provided.
var ErrMissingFlow = errors.New("tui: oauth flow is required")

// ErrMissingRedirectURI is returned when the login has no redirect URI.
var ErrMissingRedirectURI = fmt.Errorf("tui: %w", domain.ErrMissingRedirectURI)
