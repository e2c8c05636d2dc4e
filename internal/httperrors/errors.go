// Copyright (c) 2025 devdevman
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package httperrors turns network failures from the identity provider into
// user-friendly messages.
package httperrors

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"regexp"
	"strings"
	"syscall"

	"github.com/pterm/pterm"
)

// Category classifies a network failure.
type Category string

const (
	Timeout           Category = "timeout"
	DNS               Category = "dns"
	ConnectionRefused Category = "connection_refused"
	TLS               Category = "tls"
	Server            Category = "server"
	Other             Category = "other"
)

// Classify inspects err and returns its category.
func Classify(err error) Category {
	switch {
	case isTimeoutError(err):
		return Timeout
	case isDNSError(err):
		return DNS
	case isConnectionRefusedError(err):
		return ConnectionRefused
	case isSSLError(err):
		return TLS
	case isServerError(err.Error()):
		return Server
	default:
		return Other
	}
}

// FormatNetworkError prints troubleshooting hints for err and returns it wrapped.
// action describes what was being done ("acquiring a token"); host names the
// server that was contacted.
func FormatNetworkError(err error, action, host string) error {
	if err == nil {
		return nil
	}
	cat := Classify(err)
	if cat != Other {
		showHints(cat, action, host)
	}
	return fmt.Errorf("%s: %w", action, err)
}

func isTimeoutError(err error) bool {
	errStr := strings.ToLower(err.Error())
	if strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "deadline exceeded") {
		return true
	}

	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func isDNSError(err error) bool {
	var dnsErr *net.DNSError
	return errors.As(err, &dnsErr)
}

func isConnectionRefusedError(err error) bool {
	if errors.Is(err, syscall.ECONNREFUSED) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "connection refused")
}

func isSSLError(err error) bool {
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "tls") ||
		strings.Contains(errStr, "x509") ||
		strings.Contains(errStr, "certificate")
}

var reServerStatus = regexp.MustCompile(`(?i)\b(50[0234])\b|internal server error|bad gateway|service unavailable`)

// isServerError checks if the error indicates a server-side problem (5xx errors).
// Status codes must stand alone so AADSTS error codes do not match.
func isServerError(errStr string) bool {
	return reServerStatus.MatchString(errStr)
}

func showHints(cat Category, action, host string) {
	var title string
	var hints []string
	switch cat {
	case Timeout:
		title = fmt.Sprintf("⏱️  Connection timeout while %s", action)
		hints = []string{"Slow internet connection", "A proxy or firewall is delaying the request"}
	case DNS:
		title = fmt.Sprintf("🌐 Cannot resolve %s while %s", host, action)
		hints = []string{"Your internet connection is working", "DNS settings are correct"}
	case ConnectionRefused:
		title = fmt.Sprintf("🚫 Connection refused by %s while %s", host, action)
		hints = []string{"The authority URL in your config is correct", "No firewall blocks the connection"}
	case TLS:
		title = fmt.Sprintf("🔒 Secure connection to %s failed while %s", host, action)
		hints = []string{"Your system date and time are correct", "No proxy intercepts HTTPS traffic"}
	case Server:
		title = fmt.Sprintf("⚠️  %s reported a server error while %s", host, action)
		hints = []string{"Try again in a few minutes"}
	}

	pterm.Println(title)
	pterm.Println()
	pterm.Println("Please check:")
	for _, h := range hints {
		pterm.Printfln("  • %s", h)
	}
	pterm.Println()
}

// ExtractHostFromURL extracts the hostname from a URL for error messages.
func ExtractHostFromURL(urlStr string) string {
	u, err := url.Parse(urlStr)
	if err != nil || u.Host == "" {
		return "server"
	}
	return u.Host
}
