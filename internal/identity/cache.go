// Copyright (c) 2025 devdevman
// Licensed under the MIT License. See LICENSE file in the project root for details.

package identity

import (
	"context"
	"fmt"

	"github.com/AzureAD/microsoft-authentication-library-for-go/apps/cache"
	"github.com/pterm/pterm"

	"devdevman/cli/internal/config"
	"devdevman/cli/internal/keychain"
	"devdevman/cli/internal/logging"
)

// TokenStore persists the serialized MSAL cache.
type TokenStore interface {
	LoadTokenCache() ([]byte, error)
	SaveTokenCache(data []byte) error
}

// KeychainCache adapts a TokenStore to MSAL's cache.ExportReplace so tokens survive
// between CLI invocations.
type KeychainCache struct {
	store  TokenStore
	logger *pterm.Logger
}

var _ cache.ExportReplace = (*KeychainCache)(nil)

// NewKeychainCache returns a cache accessor backed by store.
func NewKeychainCache(store TokenStore, logger *pterm.Logger) *KeychainCache {
	if logger == nil {
		logger = logging.Discard()
	}
	return &KeychainCache{store: store, logger: logger}
}

// Replace loads the persisted cache into MSAL's in-memory cache.
func (k *KeychainCache) Replace(ctx context.Context, u cache.Unmarshaler, hints cache.ReplaceHints) error {
	data, err := k.store.LoadTokenCache()
	if err != nil {
		return fmt.Errorf("load token cache: %w", err)
	}
	if len(data) == 0 {
		return nil
	}
	if err := u.Unmarshal(data); err != nil {
		return fmt.Errorf("decode token cache: %w", err)
	}
	k.logger.Trace("token cache loaded", k.logger.Args("bytes", len(data)))
	return nil
}

// Export writes MSAL's in-memory cache to the store.
func (k *KeychainCache) Export(ctx context.Context, m cache.Marshaler, hints cache.ExportHints) error {
	data, err := m.Marshal()
	if err != nil {
		return fmt.Errorf("encode token cache: %w", err)
	}
	if err := k.store.SaveTokenCache(data); err != nil {
		return fmt.Errorf("save token cache: %w", err)
	}
	k.logger.Trace("token cache saved", k.logger.Args("bytes", len(data)))
	return nil
}

// NewFromConfig builds a Client whose token cache follows cfg.CacheLocation.
func NewFromConfig(cfg config.Config, logger *pterm.Logger) (*Client, error) {
	var tc cache.ExportReplace
	if cfg.CacheLocation == config.CacheKeychain {
		km, err := keychain.GetManager()
		if err != nil {
			return nil, err
		}
		tc = NewKeychainCache(km, logger)
	}
	return New(cfg.Auth, tc, logger)
}
