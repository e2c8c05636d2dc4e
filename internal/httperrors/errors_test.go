package httperrors

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Category
	}{
		{"deadline", fmt.Errorf("post token: %w", context.DeadlineExceeded), Timeout},
		{"dns", &net.DNSError{Err: "no such host", Name: "login.microsoftonline.com"}, DNS},
		{"refused", &net.OpError{Op: "dial", Net: "tcp", Err: syscall.ECONNREFUSED}, ConnectionRefused},
		{"tls", errors.New("x509: certificate signed by unknown authority"), TLS},
		{"server", errors.New("http call(https://login.microsoftonline.com): 503 Service Unavailable"), Server},
		{"other", errors.New("AADSTS65001: consent required"), Other},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.err); got != tt.want {
				t.Errorf("Classify() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFormatNetworkError(t *testing.T) {
	if FormatNetworkError(nil, "acquiring a token", "host") != nil {
		t.Errorf("FormatNetworkError(nil) != nil")
	}
	cause := errors.New("AADSTS50076: mfa required")
	err := FormatNetworkError(cause, "acquiring a token", "login.microsoftonline.com")
	if !errors.Is(err, cause) {
		t.Errorf("FormatNetworkError() lost the cause: %v", err)
	}
}

func TestExtractHostFromURL(t *testing.T) {
	if got := ExtractHostFromURL("https://login.microsoftonline.com/tenant"); got != "login.microsoftonline.com" {
		t.Errorf("ExtractHostFromURL() = %q", got)
	}
	if got := ExtractHostFromURL("::"); got != "server" {
		t.Errorf("ExtractHostFromURL(invalid) = %q, want server", got)
	}
}
