// Copyright (c) 2025 devdevman
// Licensed under the MIT License. See LICENSE file in the project root for details.

package auth

import (
	"context"

	"github.com/pterm/pterm"

	"devdevman/cli/internal/config"
	"devdevman/cli/internal/graph"
	"devdevman/cli/internal/httperrors"
	"devdevman/cli/internal/identity"
	"devdevman/cli/internal/keychain"
	"devdevman/cli/internal/logging"
	"devdevman/cli/internal/processing"
	"devdevman/cli/internal/session"
)

// Client is the identity capability the Service needs: the session store's
// contract plus token acquisition for the token command.
type Client interface {
	session.IdentityClient
	AcquireToken(ctx context.Context, scopes []string, username string) (identity.Token, error)
}

// ProfileSource reads the signed-in user's directory profile.
type ProfileSource interface {
	Me(ctx context.Context, accessToken string) (graph.Profile, error)
}

// DeviceRegistry is the processing API surface used by the tenant and device
// commands.
type DeviceRegistry interface {
	Tenants(ctx context.Context, accessToken string) ([]processing.Tenant, error)
	Tenant(ctx context.Context, accessToken, tenant string) (processing.Tenant, error)
	Devices(ctx context.Context, accessToken, tenant string) ([]processing.DeviceSummary, error)
	Device(ctx context.Context, accessToken, tenant, device string) (processing.DeviceRegistration, error)
	UpdateDevice(ctx context.Context, accessToken, tenant, device string, reg processing.DeviceRegistration) (processing.DeviceRegistration, error)
}

// Service centralizes authentication-related operations for the commands: it owns
// the session store for one CLI invocation and keeps the keychain snapshot in sync.
type Service struct {
	cfg    config.Config
	client Client
	graph  ProfileSource
	device DeviceRegistry
	store  *session.Store
	logger *pterm.Logger
	unsub  func()
}

// NewService validates cfg and constructs a Service backed by MSAL.
func NewService(cfg config.Config, logger *pterm.Logger) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	client, err := identity.NewFromConfig(cfg, logger)
	if err != nil {
		return nil, err
	}
	return NewServiceWithClient(cfg, client, logger, nil), nil
}

// NewServiceWithClient constructs a Service around an existing client. A nil
// notifier uses the store's default welcome message.
func NewServiceWithClient(cfg config.Config, client Client, logger *pterm.Logger, notifier session.Notifier) *Service {
	if logger == nil {
		logger = logging.Discard()
	}
	store := session.NewStore(client, session.Options{
		Scopes:           cfg.Auth.Scopes,
		RedirectURI:      cfg.Auth.RedirectURI,
		HardRemoteLogout: cfg.HardRemoteLogout,
		Logger:           logger,
		Notifier:         notifier,
	})
	s := &Service{
		cfg:    cfg,
		client: client,
		graph:  graph.New(cfg.GraphURL, logger),
		device: processing.New(cfg.Processing.URL, cfg.Processing.Environment, logger),
		store:  store,
		logger: logger,
	}
	s.unsub = store.Subscribe(Persister(logger))
	return s
}

// Store exposes the session store so commands can subscribe to it.
func (s *Service) Store() *session.Store {
	return s.store
}

// Login runs the interactive sign-in.
func (s *Service) Login(ctx context.Context) session.Outcome {
	return s.store.Login(ctx)
}

// Logout signs out locally and, when configured, remotely.
func (s *Service) Logout(ctx context.Context) {
	s.store.Logout(ctx)
}

// WhoAmI returns the persisted snapshot together with the accounts held in the
// identity cache. A cache error is logged and yields no accounts.
func (s *Service) WhoAmI(ctx context.Context) (State, []session.Account, error) {
	st, err := Load()
	if err != nil {
		return st, nil, err
	}
	accounts, err := s.client.CachedAccounts(ctx)
	if err != nil {
		s.logger.Warn("could not list cached accounts", s.logger.Args("error", logging.Mask(err.Error())))
		return st, nil, nil
	}
	return st, accounts, nil
}

// Accounts lists the accounts held in the identity cache.
func (s *Service) Accounts(ctx context.Context) ([]session.Account, error) {
	return s.client.CachedAccounts(ctx)
}

// Token returns an access token for scopes, defaulting to the configured scopes.
// An empty username prefers the account from the persisted snapshot.
func (s *Service) Token(ctx context.Context, scopes []string, username string) (identity.Token, error) {
	if len(scopes) == 0 {
		scopes = s.cfg.Auth.Scopes
	}
	if username == "" {
		if st, err := Load(); err == nil && st.LoggedIn {
			username = st.Username
		}
	}
	return s.client.AcquireToken(ctx, scopes, username)
}

// Purge removes the token cache and the session snapshot from the keychain.
// The identity library forgets every account on the next invocation.
func (s *Service) Purge() error {
	km, err := keychain.GetManager()
	if err != nil {
		return err
	}
	return km.ClearAll()
}

// Profile fetches the current user's Graph profile with a token for the
// default login scopes.
func (s *Service) Profile(ctx context.Context) (graph.Profile, error) {
	tok, err := s.Token(ctx, config.DefaultScopes, "")
	if err != nil {
		return graph.Profile{}, err
	}
	return s.graph.Me(ctx, tok.AccessToken)
}

// GraphHost names the host of the configured Graph endpoint.
func (s *Service) GraphHost() string {
	return httperrors.ExtractHostFromURL(s.cfg.GraphURL)
}

// processingToken returns the bearer token for the processing API. Without
// dedicated scopes the published session's token is used when there is one.
func (s *Service) processingToken(ctx context.Context) (string, error) {
	scopes := s.cfg.Processing.Scopes
	if len(scopes) == 0 {
		if cur := s.store.Current(); cur != nil {
			return cur.AccessToken, nil
		}
		scopes = s.cfg.Auth.Scopes
	}
	tok, err := s.Token(ctx, scopes, "")
	if err != nil {
		return "", err
	}
	return tok.AccessToken, nil
}

// Tenants lists the tenants of the configured processing environment.
func (s *Service) Tenants(ctx context.Context) ([]processing.Tenant, error) {
	tok, err := s.processingToken(ctx)
	if err != nil {
		return nil, err
	}
	return s.device.Tenants(ctx, tok)
}

// Tenant returns one tenant.
func (s *Service) Tenant(ctx context.Context, tenant string) (processing.Tenant, error) {
	tok, err := s.processingToken(ctx)
	if err != nil {
		return processing.Tenant{}, err
	}
	return s.device.Tenant(ctx, tok, tenant)
}

// Devices lists a tenant's devices.
func (s *Service) Devices(ctx context.Context, tenant string) ([]processing.DeviceSummary, error) {
	tok, err := s.processingToken(ctx)
	if err != nil {
		return nil, err
	}
	return s.device.Devices(ctx, tok, tenant)
}

// Device returns one device registration.
func (s *Service) Device(ctx context.Context, tenant, device string) (processing.DeviceRegistration, error) {
	tok, err := s.processingToken(ctx)
	if err != nil {
		return processing.DeviceRegistration{}, err
	}
	return s.device.Device(ctx, tok, tenant, device)
}

// UpdateDevice reads the registration, applies edit and writes it back.
func (s *Service) UpdateDevice(ctx context.Context, tenant, device string, edit func(*processing.DeviceRegistration)) (processing.DeviceRegistration, error) {
	tok, err := s.processingToken(ctx)
	if err != nil {
		return processing.DeviceRegistration{}, err
	}
	reg, err := s.device.Device(ctx, tok, tenant, device)
	if err != nil {
		return processing.DeviceRegistration{}, err
	}
	if reg.Meta == nil {
		reg.Meta = map[string]string{}
	}
	edit(&reg)
	return s.device.UpdateDevice(ctx, tok, tenant, device, reg)
}

// ProcessingHost names the host of the processing API.
func (s *Service) ProcessingHost() string {
	return httperrors.ExtractHostFromURL(s.cfg.Processing.URL)
}

// AuthorityHost names the host of the configured authority for error messages.
func (s *Service) AuthorityHost() string {
	return httperrors.ExtractHostFromURL(s.cfg.Auth.Authority)
}

// Close detaches the snapshot persister from the store.
func (s *Service) Close() {
	if s.unsub != nil {
		s.unsub()
	}
}
