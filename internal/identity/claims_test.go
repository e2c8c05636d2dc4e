package identity

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func signedIDToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-key"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return tok
}

func TestClaims(t *testing.T) {
	exp := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	raw := signedIDToken(t, jwt.MapClaims{
		"name":               "Alice A",
		"preferred_username": "alice@example.com",
		"tid":                "db8e2ba9-95c1-4fbb-b558-6bf8bb1d2981",
		"iss":                "https://login.microsoftonline.com/db8e2ba9-95c1-4fbb-b558-6bf8bb1d2981/v2.0",
		"exp":                exp.Unix(),
	})

	got, err := Claims(raw)
	if err != nil {
		t.Fatalf("Claims() error = %v", err)
	}
	if got.Name != "Alice A" || got.PreferredUsername != "alice@example.com" {
		t.Errorf("Claims() names = %q/%q", got.Name, got.PreferredUsername)
	}
	if got.TenantID != "db8e2ba9-95c1-4fbb-b558-6bf8bb1d2981" {
		t.Errorf("TenantID = %q", got.TenantID)
	}
	if !got.ExpiresAt.Equal(exp) {
		t.Errorf("ExpiresAt = %v, want %v", got.ExpiresAt, exp)
	}
}

func TestClaimsRejectsGarbage(t *testing.T) {
	if _, err := Claims("not-a-jwt"); err == nil {
		t.Errorf("Claims() error = nil, want error")
	}
}
