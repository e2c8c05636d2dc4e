// Copyright (c) 2025 devdevman
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package keychain provides centralized, thread-safe keychain operations for devdevman.
// This module manages all interactions with the OS keychain/credential store,
// providing a unified interface for storing and retrieving the identity library's
// serialized token cache and the last published session snapshot.
//
// Native stores (macOS Keychain, Windows Credential Manager, Secret Service, KWallet,
// pass) are preferred. Hosts without any of them fall back to an encrypted file store
// under the XDG state dir, unlocked with DEVDEVMAN_KEYRING_PASSWORD.
package keychain

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"github.com/99designs/keyring"

	clierrors "devdevman/cli/internal/errors"
	"devdevman/cli/internal/xdg"
)

// Global keychain manager instance
var (
	globalManager *Manager
	mu            sync.Mutex
)

// Manager provides centralized, thread-safe operations for the OS keychain.
type Manager struct {
	mu   sync.RWMutex
	ring keyring.Keyring
}

// ServiceName identifies our keychain/credential store namespace.
const ServiceName = "devdevman"

// PasswordEnv unlocks the file backend when no native store is present.
const PasswordEnv = "DEVDEVMAN_KEYRING_PASSWORD"

// Keys used for storing secrets in the OS keychain.
const (
	KeyTokenCache = "msal_token_cache"
	KeySession    = "session_snapshot"
)

// NewManager creates a new keychain manager with the OS keyring initialized.
func NewManager() (*Manager, error) {
	ring, err := openRing()
	if err != nil {
		return nil, clierrors.Wrap(clierrors.StorageUnavailable, "open keychain", err)
	}
	return NewManagerWithRing(ring), nil
}

// NewManagerWithRing wraps an already opened keyring, e.g. keyring.NewArrayKeyring in tests.
func NewManagerWithRing(ring keyring.Keyring) *Manager {
	return &Manager{ring: ring}
}

// GetManager returns the global keychain manager instance.
// If not initialized, it will be created on first call.
// If initialization fails, it will retry on subsequent calls.
func GetManager() (*Manager, error) {
	mu.Lock()
	defer mu.Unlock()

	if globalManager != nil {
		return globalManager, nil
	}

	m, err := NewManager()
	if err != nil {
		return nil, err
	}
	globalManager = m
	return globalManager, nil
}

// Use installs m as the global manager. Passing nil resets it.
func Use(m *Manager) {
	mu.Lock()
	defer mu.Unlock()
	globalManager = m
}

// openRing opens the OS keyring, preferring native platform backends.
func openRing() (keyring.Keyring, error) {
	cfg := keyring.Config{
		ServiceName: ServiceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.WinCredBackend,
			keyring.SecretServiceBackend,
			keyring.KWalletBackend,
			keyring.PassBackend,
		},
		KeychainTrustApplication: true,
		WinCredPrefix:            ServiceName,
		PassPrefix:               ServiceName,
		LibSecretCollectionName:  ServiceName,
		KWalletAppID:             ServiceName,
		KWalletFolder:            ServiceName,
	}

	if pw := os.Getenv(PasswordEnv); pw != "" {
		dir, err := xdg.StateDir()
		if err != nil {
			return nil, err
		}
		cfg.AllowedBackends = append(cfg.AllowedBackends, keyring.FileBackend)
		cfg.FileDir = dir
		cfg.FilePasswordFunc = keyring.FixedStringPrompt(pw)
	}

	ring, err := keyring.Open(cfg)
	if err != nil {
		if errors.Is(err, keyring.ErrNoAvailImpl) {
			return nil, errors.New("no secure storage available; set " + PasswordEnv + " to use an encrypted file store")
		}
		return nil, err
	}
	return ring, nil
}

func (m *Manager) load(key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	it, err := m.ring.Get(key)
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return it.Data, nil
}

func (m *Manager) save(key, label string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.ring.Set(keyring.Item{Key: key, Label: label, Data: data})
}

func (m *Manager) remove(keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var errs []error
	for _, k := range keys {
		if err := m.ring.Remove(k); err != nil && !isNotFound(err) {
			errs = append(errs, fmt.Errorf("remove %s: %w", k, err))
		}
	}
	return errors.Join(errs...)
}

// isNotFound covers native backends, which report keyring.ErrKeyNotFound, and
// the file backend, which returns the os error for a missing item file.
func isNotFound(err error) bool {
	return errors.Is(err, keyring.ErrKeyNotFound) || errors.Is(err, fs.ErrNotExist)
}

// SaveTokenCache stores the identity library's serialized token cache.
// This method is thread-safe.
func (m *Manager) SaveTokenCache(data []byte) error {
	return m.save(KeyTokenCache, "devdevman token cache", data)
}

// LoadTokenCache retrieves the serialized token cache. A missing entry yields nil, nil.
// This method is thread-safe.
func (m *Manager) LoadTokenCache() ([]byte, error) {
	return m.load(KeyTokenCache)
}

// ClearTokenCache removes the token cache from the keychain.
func (m *Manager) ClearTokenCache() error {
	return m.remove(KeyTokenCache)
}

// SaveSession stores the serialized session snapshot.
// This method is thread-safe.
func (m *Manager) SaveSession(data []byte) error {
	return m.save(KeySession, "devdevman session", data)
}

// LoadSession retrieves the serialized session snapshot. A missing entry yields nil, nil.
// This method is thread-safe.
func (m *Manager) LoadSession() ([]byte, error) {
	return m.load(KeySession)
}

// ClearSession removes the session snapshot from the keychain.
func (m *Manager) ClearSession() error {
	return m.remove(KeySession)
}

// ClearAll removes all devdevman secrets from the keychain.
// This method is thread-safe and should be used with caution.
func (m *Manager) ClearAll() error {
	return m.remove(KeyTokenCache, KeySession)
}
