package main

import (
	"context"
	"errors"
	"path/filepath"
	"sync/atomic"

	"github.com/custodia-labs/gemauth/internal/adapters/driven/admin"
	"github.com/custodia-labs/gemauth/internal/adapters/driven/config/file"
	"github.com/custodia-labs/gemauth/internal/adapters/driven/i18n"
	"github.com/custodia-labs/gemauth/internal/adapters/driven/oauth"
	"github.com/custodia-labs/gemauth/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/gemauth/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/gemauth/internal/adapters/driving/cli"
	driverOAuth "github.com/custodia-labs/gemauth/internal/adapters/driving/oauth"
	"github.com/custodia-labs/gemauth/internal/core/domain"
	"github.com/custodia-labs/gemauth/internal/core/ports/driven"
	"github.com/custodia-labs/gemauth/internal/core/ports/driving"
	"github.com/custodia-labs/gemauth/internal/core/services"
	"github.com/custodia-labs/gemauth/internal/logger"
)

// switchBackend forwards to the current admin client. Reload swaps the
// client, so flows created earlier pick up the new configuration.
type switchBackend struct {
	current atomic.Pointer[admin.Client]
}

func (b *switchBackend) RequestAuthorizationURL(
	ctx context.Context, req domain.AuthorizationRequest,
) (*domain.AuthorizationURL, error) {
	c := b.current.Load()
	if c == nil {
		return nil, domain.ErrBackendNotConfigured
	}
	return c.RequestAuthorizationURL(ctx, req)
}

func (b *switchBackend) ExchangeAuthorizationCode(
	ctx context.Context, req domain.ExchangeRequest,
) (domain.TokenPayload, error) {
	c := b.current.Load()
	if c == nil {
		return nil, domain.ErrBackendNotConfigured
	}
	return c.ExchangeAuthorizationCode(ctx, req)
}

// set installs a client for settings, or clears it when no backend is configured.
func (b *switchBackend) set(s domain.BackendSettings) error {
	client, err := admin.NewClient(admin.ConfigFromSettings(s))
	if errors.Is(err, domain.ErrBackendNotConfigured) {
		b.current.Store(nil)
		return nil
	}
	if err != nil {
		return err
	}
	b.current.Store(client)
	return nil
}

// resolverHolder swaps the message resolver when ui.language changes.
type resolverHolder struct {
	current atomic.Pointer[i18n.Resolver]
}

func (h *resolverHolder) resolve(key domain.MessageKey) string {
	return h.current.Load().Resolve(key)
}

func bootstrap(opts cli.GlobalOptions) (*cli.Services, error) {
	var (
		config  driven.ConfigStore
		creds   driven.CredentialsStore
		watch   func(context.Context, func()) error
		closeFn func() error
	)

	if opts.Ephemeral {
		config = memory.NewConfigStore(nil)
		creds = memory.NewCredentialsStore()
	} else {
		dir := opts.ConfigDir
		if dir == "" {
			var err error
			if dir, err = file.DefaultDir(); err != nil {
				return nil, err
			}
		}

		fileStore, err := file.NewConfigStore(dir)
		if err != nil {
			return nil, err
		}
		store, err := sqlite.NewStore(filepath.Join(dir, "data"))
		if err != nil {
			return nil, err
		}
		logger.Debug("credentials database: %s", store.Path())

		config = fileStore
		creds = store.CredentialsStore()
		watch = fileStore.Watch
		closeFn = store.Close
	}

	return wire(opts, config, creds, watch, closeFn)
}

// wire builds services over the given stores.
func wire(
	opts cli.GlobalOptions,
	config driven.ConfigStore,
	creds driven.CredentialsStore,
	watch func(context.Context, func()) error,
	closeFn func() error,
) (*cli.Services, error) {
	backend := &switchBackend{}
	messages := &resolverHolder{}

	load := func() (domain.Settings, error) {
		settings, err := file.LoadSettings(config)
		if err != nil {
			return domain.Settings{}, err
		}
		if opts.BaseURL != "" {
			settings.Backend.BaseURL = opts.BaseURL
		}
		if err := backend.set(settings.Backend); err != nil {
			return domain.Settings{}, err
		}
		messages.current.Store(i18n.NewResolver(settings.UI.Language))
		return settings, nil
	}

	settings, err := load()
	if err != nil {
		if closeFn != nil {
			_ = closeFn()
		}
		return nil, err
	}

	s := &cli.Services{
		NewFlow: func() driving.OAuthFlow {
			flow := services.NewOAuthFlow(backend, messages.resolve)
			flow.SetNotifier(func(msg string) {
				logger.Debug("gemini oauth: %s", msg)
			})
			return flow
		},
		Credentials: services.NewCredentialsService(creds, oauth.NewInspector("", nil)),
		Config:      config,
		Settings:    settings,
		Watch:       watch,
		OpenBrowser: driverOAuth.OpenBrowser,
		Close:       closeFn,
	}

	s.Reload = func() error {
		if err := config.Load(); err != nil {
			return err
		}
		settings, err := load()
		if err != nil {
			return err
		}
		s.Settings = settings
		return nil
	}

	return s, nil
}
