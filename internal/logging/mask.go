// Copyright (c) 2025 devdevman
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package logging provides the CLI logger and utilities for secure logging and error
// presentation. It includes functions for masking sensitive information in log messages
// and formatting errors for user-friendly display while protecting credentials and secrets.
//
// The package helps ensure that access tokens, identity tokens and client secrets
// are not accidentally exposed in logs or error messages shown to users.
package logging

import (
	"regexp"
	"strings"
)

var (
	reJWT    = regexp.MustCompile(`eyJ[A-Za-z0-9_-]*\.[A-Za-z0-9_-]+\.[A-Za-z0-9_-]*`)
	reToken  = regexp.MustCompile(`(?i)((?:access_|id_|refresh_)?token=|bearer\s+)([A-Za-z0-9._~+/=-]+)`)
	reSecret = regexp.MustCompile(`(?i)(client_secret=|password=)([^\s;&]+)`)
	reCode   = regexp.MustCompile(`(?i)([?&]code=)([^\s&]+)`)
)

// Mask replaces sensitive values in the input string with "*".
// Bare JWTs are replaced entirely since their payload carries personal claims.
func Mask(s string) string {
	out := s
	out = reToken.ReplaceAllString(out, "$1***")
	out = reJWT.ReplaceAllString(out, "***")
	out = reSecret.ReplaceAllString(out, "$1***")
	out = reCode.ReplaceAllString(out, "$1***")
	for _, k := range []string{"DEVDEVMAN_KEYRING_PASSWORD", "ACCESS_TOKEN"} {
		out = strings.ReplaceAll(out, k+"=", k+"=***")
	}
	return out
}

// MaskToken keeps a short prefix of a token so it can be recognised in output
// without being reusable.
func MaskToken(token string) string {
	if len(token) <= 8 {
		return "***"
	}
	return token[:6] + "…" + "***"
}

// PresentError renders err for the terminal with secrets masked. A non-empty
// action is prefixed, e.g. "logout: ...".
func PresentError(action string, err error) string {
	if err == nil {
		return ""
	}
	msg := Mask(err.Error())
	if action == "" {
		return msg
	}
	return action + ": " + msg
}
