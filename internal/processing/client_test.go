package processing

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
)

const testEnv = "env-1"

// request is what the test server saw.
type request struct {
	method, path, auth, contentType string
	body                            []byte
}

func newServer(t *testing.T, status int, response string) (*Client, *request) {
	t.Helper()
	var got request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.method = r.Method
		got.path = r.URL.EscapedPath()
		got.auth = r.Header.Get("Authorization")
		got.contentType = r.Header.Get("Content-Type")
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Errorf("read body: %v", err)
		}
		got.body = body
		w.WriteHeader(status)
		w.Write([]byte(response))
	}))
	t.Cleanup(srv.Close)
	return New(srv.URL+"/api/processing/", testEnv, nil), &got
}

func TestTenantsSortedByEnvironmentThenName(t *testing.T) {
	c, got := newServer(t, http.StatusOK, `[
		{"tenant":"zeta","environment":"prod","deviceOwner":"o1"},
		{"tenant":"beta","environment":"dev","deviceOwner":"o2"},
		{"tenant":"alpha","environment":"prod","deviceOwner":"o3"},
		{"environment":"dev","deviceOwner":"o4"}
	]`)

	tenants, err := c.Tenants(context.Background(), "tok1")
	if err != nil {
		t.Fatalf("Tenants() error = %v", err)
	}
	var order []string
	for _, tn := range tenants {
		order = append(order, tn.Environment+"/"+tn.TenantName)
	}
	want := []string{"dev/", "dev/beta", "prod/alpha", "prod/zeta"}
	if !reflect.DeepEqual(order, want) {
		t.Errorf("Tenants() order = %v, want %v", order, want)
	}
	if got.path != "/api/processing/environment/env-1/tenant" {
		t.Errorf("path = %q", got.path)
	}
	if got.auth != "Bearer tok1" {
		t.Errorf("Authorization = %q, want Bearer tok1", got.auth)
	}
}

func TestTenant(t *testing.T) {
	c, got := newServer(t, http.StatusOK, `{"tenant":"acme","environment":"dev","deviceOwner":"owner-1"}`)

	tn, err := c.Tenant(context.Background(), "tok1", "acme")
	if err != nil {
		t.Fatalf("Tenant() error = %v", err)
	}
	want := Tenant{TenantName: "acme", Environment: "dev", DeviceOwnerID: "owner-1"}
	if tn != want {
		t.Errorf("Tenant() = %+v, want %+v", tn, want)
	}
	if got.path != "/api/processing/environment/env-1/tenant/acme" {
		t.Errorf("path = %q", got.path)
	}
}

func TestDevicesSortedByID(t *testing.T) {
	c, got := newServer(t, http.StatusOK, `[
		{"deviceId":"d2","deviceType":"meter","metadata":{"manufacturer":"SE","modelNumber":"PM8000"}},
		{"deviceId":"d1","deviceType":"gateway","metadata":{"serialNumber":"S-1"}}
	]`)

	devices, err := c.Devices(context.Background(), "tok1", "acme")
	if err != nil {
		t.Fatalf("Devices() error = %v", err)
	}
	if len(devices) != 2 || devices[0].DeviceID != "d1" || devices[1].DeviceID != "d2" {
		t.Fatalf("Devices() = %+v, want d1, d2", devices)
	}
	if devices[1].Meta.Model != "PM8000" || devices[0].Meta.Serial != "S-1" {
		t.Errorf("metadata not decoded: %+v", devices)
	}
	if got.path != "/api/processing/metadata/acme/device" {
		t.Errorf("path = %q", got.path)
	}
}

func TestDevice(t *testing.T) {
	c, got := newServer(t, http.StatusOK, `{"deviceId":"d1","tenant":"acme","metadata":{"room":"B12"}}`)

	d, err := c.Device(context.Background(), "tok1", "acme", "d1")
	if err != nil {
		t.Fatalf("Device() error = %v", err)
	}
	if d.DeviceID != "d1" || d.Meta["room"] != "B12" {
		t.Errorf("Device() = %+v", d)
	}
	if got.path != "/api/processing/metadata/acme/device/d1" {
		t.Errorf("path = %q", got.path)
	}
}

func TestUpdateDevice(t *testing.T) {
	c, got := newServer(t, http.StatusOK, `{"deviceId":"d1","deviceType":"meter","metadata":{"room":"C3"}}`)
	reg := DeviceRegistration{DeviceID: "d1", DeviceType: "meter", Meta: map[string]string{"room": "C3"}}

	out, err := c.UpdateDevice(context.Background(), "tok1", "acme", "d1", reg)
	if err != nil {
		t.Fatalf("UpdateDevice() error = %v", err)
	}
	if got.method != http.MethodPut {
		t.Errorf("method = %s, want PUT", got.method)
	}
	if got.path != "/api/processing/environment/env-1/tenant/acme/device/d1" {
		t.Errorf("path = %q", got.path)
	}
	if !strings.HasPrefix(got.contentType, "application/json") {
		t.Errorf("Content-Type = %q", got.contentType)
	}
	var sent DeviceRegistration
	if err := json.Unmarshal(got.body, &sent); err != nil {
		t.Fatalf("request body %q: %v", got.body, err)
	}
	if !reflect.DeepEqual(sent, reg) {
		t.Errorf("sent %+v, want %+v", sent, reg)
	}
	if out.Meta["room"] != "C3" {
		t.Errorf("UpdateDevice() = %+v", out)
	}
}

func TestPathSegmentsAreEscaped(t *testing.T) {
	c, got := newServer(t, http.StatusOK, `{}`)

	if _, err := c.Device(context.Background(), "tok1", "acme/../x", "d 1"); err != nil {
		t.Fatalf("Device() error = %v", err)
	}
	if got.path != "/api/processing/metadata/acme%2F..%2Fx/device/d%201" {
		t.Errorf("path = %q", got.path)
	}
}

func TestErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
		wantMsg string
	}{
		{name: "unauthorized", status: http.StatusUnauthorized, wantErr: ErrUnauthorized},
		{name: "forbidden", status: http.StatusForbidden, wantErr: ErrUnauthorized},
		{name: "not found", status: http.StatusNotFound, wantErr: ErrNotFound},
		{name: "server error", status: http.StatusBadGateway, body: "upstream down", wantMsg: "502 upstream down"},
		{name: "bad json", status: http.StatusOK, body: "[", wantMsg: "decode"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newServer(t, tt.status, tt.body)

			_, err := c.Tenants(context.Background(), "tok1")
			if err == nil {
				t.Fatal("Tenants() error = nil, want error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Tenants() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantMsg != "" && !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("Tenants() error = %q, want it to contain %q", err, tt.wantMsg)
			}
		})
	}
}
