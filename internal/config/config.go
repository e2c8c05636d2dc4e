// Copyright (c) 2025 devdevman
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package config loads and stores CLI configuration in the XDG config dir.
// Only non-secret settings are kept here; tokens go to the OS keychain.
// Values from the file can be overridden with DEVDEVMAN_* environment variables.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"

	clierrors "devdevman/cli/internal/errors"
	"devdevman/cli/internal/xdg"
)

// Token cache locations.
const (
	CacheKeychain = "keychain"
	CacheMemory   = "memory"
)

// Defaults registered for the devdevman app in Entra ID.
const (
	DefaultClientID    = "a2e4c97f-dfe8-4945-9e6a-aa5973cea657"
	DefaultAuthority   = "https://login.microsoftonline.com/db8e2ba9-95c1-4fbb-b558-6bf8bb1d2981"
	DefaultRedirectURI = "http://localhost:5000"
	DefaultGraphURL    = "https://graph.microsoft.com/v1.0"
)

// Defaults for the device processing API.
const (
	DefaultProcessingURL         = "https://processing.dev.struxurewarecloud.com/api/processing"
	DefaultProcessingEnvironment = "8fa5c77f-5c2c-4a81-929b-92efe8f876f0"
)

// DefaultScopes are requested on interactive sign-in. OIDC scopes are added by the
// identity library.
var DefaultScopes = []string{"User.Read"}

// Config holds non-sensitive CLI settings.
type Config struct {
	Auth             Auth       `json:"auth"`
	CacheLocation    string     `json:"cache_location" env:"DEVDEVMAN_CACHE_LOCATION"`
	HardRemoteLogout bool       `json:"hard_remote_logout" env:"DEVDEVMAN_HARD_REMOTE_LOGOUT"`
	LogLevel         string     `json:"log_level" env:"DEVDEVMAN_LOG_LEVEL"`
	LogFormat        string     `json:"log_format" env:"DEVDEVMAN_LOG_FORMAT"`
	GraphURL         string     `json:"graph_url" env:"DEVDEVMAN_GRAPH_URL"`
	Processing       Processing `json:"processing"`
}

// Processing locates the device processing API. Empty Scopes reuse the login
// token.
type Processing struct {
	URL         string   `json:"url" env:"DEVDEVMAN_PROCESSING_URL"`
	Environment string   `json:"environment" env:"DEVDEVMAN_PROCESSING_ENVIRONMENT"`
	Scopes      []string `json:"scopes,omitempty" env:"DEVDEVMAN_PROCESSING_SCOPES" envSeparator:","`
}

// Auth is passed through unchanged to the identity client.
type Auth struct {
	ClientID    string   `json:"client_id" env:"DEVDEVMAN_CLIENT_ID"`
	Authority   string   `json:"authority" env:"DEVDEVMAN_AUTHORITY"`
	RedirectURI string   `json:"redirect_uri" env:"DEVDEVMAN_REDIRECT_URI"`
	Scopes      []string `json:"scopes" env:"DEVDEVMAN_SCOPES" envSeparator:","`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Auth: Auth{
			ClientID:    DefaultClientID,
			Authority:   DefaultAuthority,
			RedirectURI: DefaultRedirectURI,
			Scopes:      append([]string(nil), DefaultScopes...),
		},
		CacheLocation: CacheKeychain,
		LogLevel:      "info",
		LogFormat:     "console",
		GraphURL:      DefaultGraphURL,
		Processing: Processing{
			URL:         DefaultProcessingURL,
			Environment: DefaultProcessingEnvironment,
		},
	}
}

// Path returns the path to the config file.
func Path() (string, error) {
	dir, err := xdg.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads configuration from the XDG config dir; a missing file yields defaults.
// Environment overrides are applied last.
func Load() (Config, error) {
	p, err := Path()
	if err != nil {
		return Config{}, err
	}
	return LoadFrom(p)
}

// LoadFrom reads configuration from p. Fields absent from the file keep their defaults.
func LoadFrom(p string) (Config, error) {
	c := Default()
	data, err := os.ReadFile(p)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return c, err
	default:
		if err := json.Unmarshal(data, &c); err != nil {
			return c, clierrors.Wrap(clierrors.ConfigInvalid, "parse "+p, err)
		}
	}
	if err := env.Parse(&c); err != nil {
		return c, clierrors.Wrap(clierrors.ConfigInvalid, "parse environment", err)
	}
	c.normalize()
	return c, nil
}

// Save writes configuration with 0600 permissions.
func Save(c Config) error {
	p, err := Path()
	if err != nil {
		return err
	}
	return SaveTo(p, c)
}

// SaveTo writes c to p with 0600 permissions.
func SaveTo(p string, c Config) error {
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(p, b, 0o600)
}

func (c *Config) normalize() {
	c.CacheLocation = strings.ToLower(strings.TrimSpace(c.CacheLocation))
	if c.CacheLocation == "" {
		c.CacheLocation = CacheKeychain
	}
	c.Auth.Scopes = trimScopes(c.Auth.Scopes)
	c.Processing.Scopes = trimScopes(c.Processing.Scopes)
	c.Processing.URL = strings.TrimRight(strings.TrimSpace(c.Processing.URL), "/")
	c.Processing.Environment = strings.TrimSpace(c.Processing.Environment)
	c.Auth.Authority = strings.TrimRight(strings.TrimSpace(c.Auth.Authority), "/")
	c.GraphURL = strings.TrimRight(strings.TrimSpace(c.GraphURL), "/")
	if c.GraphURL == "" {
		c.GraphURL = DefaultGraphURL
	}
}

func trimScopes(in []string) []string {
	out := in[:0]
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Validate reports the first problem that would stop the identity client from working.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Auth.ClientID) == "" {
		return clierrors.New(clierrors.ConfigInvalid, "auth.client_id is required")
	}
	if err := checkURL("auth.authority", c.Auth.Authority, true); err != nil {
		return err
	}
	if err := checkURL("auth.redirect_uri", c.Auth.RedirectURI, false); err != nil {
		return err
	}
	if err := checkURL("graph_url", c.GraphURL, true); err != nil {
		return err
	}
	if err := checkURL("processing.url", c.Processing.URL, true); err != nil {
		return err
	}
	if c.Processing.Environment == "" {
		return clierrors.New(clierrors.ConfigInvalid, "processing.environment is required")
	}
	if len(c.Auth.Scopes) == 0 {
		return clierrors.New(clierrors.ConfigInvalid, "auth.scopes must not be empty")
	}
	switch c.CacheLocation {
	case CacheKeychain, CacheMemory:
	default:
		return clierrors.New(clierrors.ConfigInvalid,
			fmt.Sprintf("cache_location %q is not one of %s, %s", c.CacheLocation, CacheKeychain, CacheMemory))
	}
	return nil
}

// checkURL requires http(s) with a host; when httpsOnly is set plain http is
// accepted for loopback hosts only.
func checkURL(field, raw string, httpsOnly bool) error {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return clierrors.New(clierrors.ConfigInvalid, fmt.Sprintf("%s %q is not an absolute URL", field, raw))
	}
	switch u.Scheme {
	case "https":
		return nil
	case "http":
		if !httpsOnly || isLoopback(u.Hostname()) {
			return nil
		}
		return clierrors.New(clierrors.ConfigInvalid, fmt.Sprintf("%s must use https", field))
	default:
		return clierrors.New(clierrors.ConfigInvalid, fmt.Sprintf("%s has unsupported scheme %q", field, u.Scheme))
	}
}

func isLoopback(host string) bool {
	return host == "localhost" || host == "127.0.0.1" || host == "::1"
}
