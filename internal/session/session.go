// Copyright (c) 2025 devdevman
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package session owns the "current user" of the CLI.
//
// A Store holds a single published value, either nil (no session) or a fully
// populated UserSession, and pushes every change to its subscribers. Signing in
// and out is delegated to an IdentityClient; the store only projects the
// client's results onto a UserSession and publishes them.
package session

import (
	"context"
	"strings"

	clierrors "devdevman/cli/internal/errors"
)

// UserSession is the minimal projection of an authenticated identity.
// Values are never modified after construction.
type UserSession struct {
	Username      string `json:"username"`
	DisplayName   string `json:"display_name"`
	AccessToken   string `json:"-"`
	IdentityToken string `json:"-"`
}

// Complete reports whether every field is populated.
func (u *UserSession) Complete() bool {
	return u != nil &&
		u.Username != "" &&
		u.DisplayName != "" &&
		u.AccessToken != "" &&
		u.IdentityToken != ""
}

func (u *UserSession) clone() *UserSession {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}

// Account is an identity known to the provider's account cache.
type Account struct {
	Username    string
	DisplayName string
}

// SignInResult is what an interactive sign-in returns on success.
type SignInResult struct {
	Account       Account
	AccessToken   string
	IdentityToken string
}

// Session projects r onto a UserSession. The display name falls back to the
// username; any other missing field is an error so that partial sessions are
// never published.
func (r SignInResult) Session() (*UserSession, error) {
	u := &UserSession{
		Username:      strings.TrimSpace(r.Account.Username),
		DisplayName:   strings.TrimSpace(r.Account.DisplayName),
		AccessToken:   r.AccessToken,
		IdentityToken: r.IdentityToken,
	}
	if u.DisplayName == "" {
		u.DisplayName = u.Username
	}
	var missing []string
	if u.Username == "" {
		missing = append(missing, "username")
	}
	if u.AccessToken == "" {
		missing = append(missing, "access token")
	}
	if u.IdentityToken == "" {
		missing = append(missing, "identity token")
	}
	if len(missing) > 0 {
		return nil, clierrors.New(clierrors.InteractiveFlowFailed,
			"sign-in result is missing "+strings.Join(missing, ", "))
	}
	return u, nil
}

// SignOutRequest describes a remote sign-out. A nil Account signs out every
// cached account.
type SignOutRequest struct {
	Account     *Account
	RedirectURI string
}

// IdentityClient is the identity provider capability the store depends on.
type IdentityClient interface {
	// SignInInteractive runs an interactive sign-in for scopes. A nil result with a
	// nil error means the provider produced no direct result and the account cache
	// should be consulted instead.
	SignInInteractive(ctx context.Context, scopes []string) (*SignInResult, error)
	// SignOutInteractive ends the provider-side session.
	SignOutInteractive(ctx context.Context, req SignOutRequest) error
	// CachedAccounts lists the accounts held in the provider's cache.
	CachedAccounts(ctx context.Context) ([]Account, error)
}
