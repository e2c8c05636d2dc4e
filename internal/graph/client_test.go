package graph

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestMe(t *testing.T) {
	var gotAuth, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"42","displayName":"Alice A","userPrincipalName":"alice@example.com","businessPhones":["+1 555"]}`))
	}))
	defer srv.Close()

	p, err := New(srv.URL+"/v1.0/", nil).Me(context.Background(), "tok1")
	if err != nil {
		t.Fatalf("Me() error = %v", err)
	}
	if gotAuth != "Bearer tok1" {
		t.Errorf("Authorization = %q, want %q", gotAuth, "Bearer tok1")
	}
	if gotPath != "/v1.0/me" {
		t.Errorf("path = %q, want /v1.0/me", gotPath)
	}
	if p.DisplayName != "Alice A" || p.UserPrincipalName != "alice@example.com" || len(p.BusinessPhones) != 1 {
		t.Errorf("Me() = %+v", p)
	}
}

func TestMeErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
		wantMsg string
	}{
		{name: "unauthorized", status: http.StatusUnauthorized, wantErr: ErrUnauthorized},
		{name: "server error", status: http.StatusServiceUnavailable, body: "try later", wantMsg: "503 try later"},
		{name: "bad json", status: http.StatusOK, body: "{", wantMsg: "decode /me"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := New(srv.URL, nil).Me(context.Background(), "tok1")
			if err == nil {
				t.Fatal("Me() error = nil, want error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Me() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantMsg != "" && !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("Me() error = %q, want it to contain %q", err, tt.wantMsg)
			}
		})
	}
}
