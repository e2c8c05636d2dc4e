// Copyright (c) 2025 devdevman
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package identity implements session.IdentityClient on top of the Microsoft
// Authentication Library public client. Token exchange, caching and refresh are
// left to the library; this package maps its results onto session types and
// handles the browser side of sign-out.
package identity

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/AzureAD/microsoft-authentication-library-for-go/apps/cache"
	"github.com/AzureAD/microsoft-authentication-library-for-go/apps/public"
	"github.com/pkg/browser"
	"github.com/pterm/pterm"

	"devdevman/cli/internal/config"
	clierrors "devdevman/cli/internal/errors"
	"devdevman/cli/internal/httperrors"
	"devdevman/cli/internal/logging"
	"devdevman/cli/internal/session"
)

// publicClient is the subset of public.Client used by Client.
type publicClient interface {
	AcquireTokenInteractive(ctx context.Context, scopes []string, opts ...public.AcquireInteractiveOption) (public.AuthResult, error)
	AcquireTokenSilent(ctx context.Context, scopes []string, opts ...public.AcquireSilentOption) (public.AuthResult, error)
	Accounts(ctx context.Context) ([]public.Account, error)
	RemoveAccount(ctx context.Context, account public.Account) error
}

// Client talks to Entra ID through MSAL. It satisfies session.IdentityClient.
type Client struct {
	pca         publicClient
	authority   string
	redirectURI string
	logger      *pterm.Logger
	// openURL shows the user a URL; it opens the system browser by default.
	openURL func(string) error
}

var _ session.IdentityClient = (*Client)(nil)

// New builds a Client from the auth configuration. A nil tokenCache keeps tokens
// in process memory only.
func New(cfg config.Auth, tokenCache cache.ExportReplace, logger *pterm.Logger) (*Client, error) {
	opts := []public.Option{public.WithAuthority(cfg.Authority)}
	if tokenCache != nil {
		opts = append(opts, public.WithCache(tokenCache))
	}
	pca, err := public.New(cfg.ClientID, opts...)
	if err != nil {
		return nil, clierrors.Wrap(clierrors.ConfigInvalid, "create public client", err)
	}
	return newClient(pca, cfg, logger), nil
}

func newClient(pca publicClient, cfg config.Auth, logger *pterm.Logger) *Client {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Client{
		pca:         pca,
		authority:   strings.TrimRight(cfg.Authority, "/"),
		redirectURI: cfg.RedirectURI,
		logger:      logger,
		openURL:     openInBrowser,
	}
}

// openInBrowser prints the URL so it can be opened by hand, then tries the
// system browser.
func openInBrowser(u string) error {
	pterm.Println("Open this link to continue:")
	pterm.Println(u)
	pterm.Println()
	return browser.OpenURL(u)
}

// SignInInteractive runs the authorization code flow in the browser. A result
// without an access token is reported as no result.
func (c *Client) SignInInteractive(ctx context.Context, scopes []string) (*session.SignInResult, error) {
	c.logger.Debug("starting interactive sign-in", c.logger.Args("scopes", scopes))
	res, err := c.pca.AcquireTokenInteractive(ctx, scopes,
		public.WithRedirectURI(c.redirectURI),
		public.WithOpenURL(c.openURL),
	)
	if err != nil {
		return nil, err
	}
	if res.AccessToken == "" {
		c.logger.Debug("interactive sign-in returned no token")
		return nil, nil
	}
	return &session.SignInResult{
		Account:       projectResultAccount(res),
		AccessToken:   res.AccessToken,
		IdentityToken: res.IDToken.RawToken,
	}, nil
}

func projectResultAccount(res public.AuthResult) session.Account {
	a := projectAccount(res.Account)
	if a.DisplayName == "" {
		a.DisplayName = res.IDToken.Name
	}
	if a.Username == "" {
		a.Username = res.IDToken.PreferredUsername
	}
	return a
}

func projectAccount(a public.Account) session.Account {
	return session.Account{Username: a.PreferredUsername, DisplayName: a.Name}
}

// CachedAccounts lists the accounts in the MSAL cache.
func (c *Client) CachedAccounts(ctx context.Context) ([]session.Account, error) {
	accounts, err := c.pca.Accounts(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]session.Account, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, projectAccount(a))
	}
	return out, nil
}

// SignOutInteractive removes the account (every account when req.Account is nil)
// from the cache and opens the authority's logout page so the browser session
// ends as well.
func (c *Client) SignOutInteractive(ctx context.Context, req session.SignOutRequest) error {
	accounts, err := c.pca.Accounts(ctx)
	if err != nil {
		return fmt.Errorf("list accounts: %w", err)
	}

	var errs []error
	hint := ""
	for _, a := range accounts {
		if req.Account != nil && !strings.EqualFold(a.PreferredUsername, req.Account.Username) {
			continue
		}
		if err := c.pca.RemoveAccount(ctx, a); err != nil {
			errs = append(errs, fmt.Errorf("remove %s: %w", a.PreferredUsername, err))
			continue
		}
		hint = a.PreferredUsername
		c.logger.Debug("removed cached account", c.logger.Args("username", a.PreferredUsername))
	}
	if req.Account != nil {
		hint = req.Account.Username
	}

	redirect := req.RedirectURI
	if redirect == "" {
		redirect = c.redirectURI
	}
	if err := c.openURL(LogoutURL(c.authority, redirect, hint)); err != nil {
		errs = append(errs, fmt.Errorf("open logout page: %w", err))
	}
	return errors.Join(errs...)
}

// LogoutURL returns the authority's front-channel logout endpoint.
func LogoutURL(authority, postLogoutRedirect, logoutHint string) string {
	q := url.Values{}
	if postLogoutRedirect != "" {
		q.Set("post_logout_redirect_uri", postLogoutRedirect)
	}
	if logoutHint != "" {
		q.Set("logout_hint", logoutHint)
	}
	u := strings.TrimRight(authority, "/") + "/oauth2/v2.0/logout"
	if enc := q.Encode(); enc != "" {
		u += "?" + enc
	}
	return u
}

// Token is an access token obtained outside the interactive sign-in.
type Token struct {
	Username      string
	AccessToken   string
	IdentityToken string
	ExpiresOn     time.Time
}

// AcquireToken returns a token for scopes from the cache, refreshing through the
// library when needed. When no cached account can serve the request it falls
// back to the interactive flow; a silent failure caused by the network or the
// server is returned instead. An empty username picks the first cached account.
func (c *Client) AcquireToken(ctx context.Context, scopes []string, username string) (Token, error) {
	accounts, err := c.pca.Accounts(ctx)
	if err != nil {
		return Token{}, fmt.Errorf("list accounts: %w", err)
	}

	for _, a := range accounts {
		if username != "" && !strings.EqualFold(a.PreferredUsername, username) {
			continue
		}
		res, err := c.pca.AcquireTokenSilent(ctx, scopes, public.WithSilentAccount(a))
		if err == nil {
			return tokenFrom(res), nil
		}
		if !needsInteraction(ctx, err) {
			c.logger.Error("silent token acquisition failed",
				c.logger.Args("username", a.PreferredUsername, "error", logging.Mask(err.Error())))
			return Token{}, fmt.Errorf("acquire token silently: %w", err)
		}
		c.logger.Warn("silent token acquisition failed; acquiring token interactively",
			c.logger.Args("username", a.PreferredUsername, "error", logging.Mask(err.Error())))
		break
	}

	res, err := c.pca.AcquireTokenInteractive(ctx, scopes,
		public.WithRedirectURI(c.redirectURI),
		public.WithOpenURL(c.openURL),
	)
	if err != nil {
		return Token{}, clierrors.Wrap(clierrors.InteractiveFlowFailed, "acquire token", err)
	}
	return tokenFrom(res), nil
}

// needsInteraction reports whether a silent failure can be resolved by signing in
// again. Network and server failures, and a cancelled context, cannot.
func needsInteraction(ctx context.Context, err error) bool {
	if ctx.Err() != nil || errors.Is(err, context.Canceled) {
		return false
	}
	return httperrors.Classify(err) == httperrors.Other
}

func tokenFrom(res public.AuthResult) Token {
	return Token{
		Username:      projectResultAccount(res).Username,
		AccessToken:   res.AccessToken,
		IdentityToken: res.IDToken.RawToken,
		ExpiresOn:     res.ExpiresOn,
	}
}
