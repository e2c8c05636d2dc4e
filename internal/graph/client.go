// Copyright (c) 2025 devdevman
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package graph provides a small REST client for the Microsoft Graph API.
// Only the signed-in user's profile is read; the access token comes from the
// identity client.
package graph

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pterm/pterm"

	"devdevman/cli/internal/logging"
)

// ErrUnauthorized is returned when Graph rejects the access token.
var ErrUnauthorized = errors.New("unauthorized")

// Profile is the subset of the Graph user resource shown by the CLI.
type Profile struct {
	ID                string   `json:"id"`
	DisplayName       string   `json:"displayName"`
	UserPrincipalName string   `json:"userPrincipalName"`
	Mail              string   `json:"mail"`
	JobTitle          string   `json:"jobTitle"`
	OfficeLocation    string   `json:"officeLocation"`
	BusinessPhones    []string `json:"businessPhones"`
}

// Client calls Graph endpoints relative to baseURL.
type Client struct {
	// baseURL includes the API version, e.g. "https://graph.microsoft.com/v1.0"
	baseURL string
	client  *http.Client
	logger  *pterm.Logger
}

// New creates a Graph client with a 10-second request timeout.
func New(baseURL string, logger *pterm.Logger) *Client {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
		logger:  logger,
	}
}

// Me calls GET /me with the bearer token.
func (c *Client) Me(ctx context.Context, accessToken string) (Profile, error) {
	var p Profile
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/me", nil)
	if err != nil {
		return p, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+accessToken)

	c.logger.Debug("calling graph", c.logger.Args("url", req.URL.String()))
	resp, err := c.client.Do(req)
	if err != nil {
		return p, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		if resp.StatusCode == http.StatusUnauthorized {
			return p, ErrUnauthorized
		}
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return p, fmt.Errorf("get /me failed: %d %s", resp.StatusCode, logging.Mask(strings.TrimSpace(string(b))))
	}
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return p, fmt.Errorf("decode /me: %w", err)
	}
	return p, nil
}
