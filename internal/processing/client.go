// Copyright (c) 2025 devdevman
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package processing is a REST client for the device processing API: the
// tenants of a processing environment and the devices registered to them.
// Requests carry the signed-in user's bearer token.
package processing

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/pterm/pterm"

	"devdevman/cli/internal/logging"
)

var (
	// ErrUnauthorized is returned when the API rejects the access token.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNotFound is returned for an unknown tenant or device.
	ErrNotFound = errors.New("not found")
)

// Tenant holds the device owner for a tenant in an environment.
type Tenant struct {
	TenantName    string `json:"tenant,omitempty"`
	Environment   string `json:"environment"`
	DeviceOwnerID string `json:"deviceOwner"`
}

// DeviceMetaSummary holds the metadata fields shown in device lists.
type DeviceMetaSummary struct {
	Environment  string `json:"environment"`
	Manufacturer string `json:"manufacturer"`
	Model        string `json:"modelNumber"`
	Serial       string `json:"serialNumber"`
}

// DeviceSummary is a device as returned by the list endpoint.
type DeviceSummary struct {
	DeviceID    string            `json:"deviceId"`
	DeviceType  string            `json:"deviceType"`
	Tenant      string            `json:"tenant"`
	DeviceOwner string            `json:"deviceOwner"`
	Meta        DeviceMetaSummary `json:"metadata"`
}

// DeviceRegistration is a single device with all of its metadata.
type DeviceRegistration struct {
	DeviceID    string            `json:"deviceId"`
	DeviceType  string            `json:"deviceType"`
	Tenant      string            `json:"tenant"`
	DeviceOwner string            `json:"deviceOwner"`
	Meta        map[string]string `json:"metadata"`
}

// Client calls the processing API for one environment.
type Client struct {
	// baseURL ends before the resource path, e.g. ".../api/processing"
	baseURL     string
	environment string
	client      *http.Client
	logger      *pterm.Logger
}

// New creates a client with a 10-second request timeout.
func New(baseURL, environment string, logger *pterm.Logger) *Client {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		environment: environment,
		client:      &http.Client{Timeout: 10 * time.Second},
		logger:      logger,
	}
}

// Tenants lists the environment's tenants ordered by environment, then name.
func (c *Client) Tenants(ctx context.Context, accessToken string) ([]Tenant, error) {
	var tenants []Tenant
	if err := c.do(ctx, http.MethodGet, accessToken, nil, &tenants, "environment", c.environment, "tenant"); err != nil {
		return nil, err
	}
	sort.SliceStable(tenants, func(i, j int) bool {
		if tenants[i].Environment == tenants[j].Environment {
			return tenants[i].TenantName < tenants[j].TenantName
		}
		return tenants[i].Environment < tenants[j].Environment
	})
	return tenants, nil
}

// Tenant returns one tenant of the environment.
func (c *Client) Tenant(ctx context.Context, accessToken, tenant string) (Tenant, error) {
	var t Tenant
	err := c.do(ctx, http.MethodGet, accessToken, nil, &t, "environment", c.environment, "tenant", tenant)
	return t, err
}

// Devices lists the devices registered to tenant ordered by device id.
func (c *Client) Devices(ctx context.Context, accessToken, tenant string) ([]DeviceSummary, error) {
	var devices []DeviceSummary
	if err := c.do(ctx, http.MethodGet, accessToken, nil, &devices, "metadata", tenant, "device"); err != nil {
		return nil, err
	}
	sort.SliceStable(devices, func(i, j int) bool {
		return devices[i].DeviceID < devices[j].DeviceID
	})
	return devices, nil
}

// Device returns one device registration.
func (c *Client) Device(ctx context.Context, accessToken, tenant, device string) (DeviceRegistration, error) {
	var d DeviceRegistration
	err := c.do(ctx, http.MethodGet, accessToken, nil, &d, "metadata", tenant, "device", device)
	return d, err
}

// UpdateDevice replaces a device registration and returns the stored result.
func (c *Client) UpdateDevice(ctx context.Context, accessToken, tenant, device string, reg DeviceRegistration) (DeviceRegistration, error) {
	var out DeviceRegistration
	err := c.do(ctx, http.MethodPut, accessToken, reg, &out, "environment", c.environment, "tenant", tenant, "device", device)
	return out, err
}

// do sends a JSON request to the path built from escaped segments and decodes
// the response into out.
func (c *Client) do(ctx context.Context, method, accessToken string, in, out any, segments ...string) error {
	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = url.PathEscape(s)
	}
	u := c.baseURL + "/" + strings.Join(escaped, "/")

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+accessToken)
	if in != nil {
		req.Header.Set("Content-Type", "application/json; charset=utf-8")
	}

	c.logger.Debug("calling processing api", c.logger.Args("method", method, "url", u))
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	case http.StatusNotFound:
		return fmt.Errorf("%s %s: %w", method, strings.Join(segments, "/"), ErrNotFound)
	default:
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%s %s failed: %d %s", method, strings.Join(segments, "/"),
			resp.StatusCode, logging.Mask(strings.TrimSpace(string(b))))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", strings.Join(segments, "/"), err)
	}
	return nil
}
