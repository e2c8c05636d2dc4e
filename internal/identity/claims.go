// Copyright (c) 2025 devdevman
// Licensed under the MIT License. See LICENSE file in the project root for details.

package identity

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// IDClaims are the identity token claims shown by the token command.
type IDClaims struct {
	Name              string
	PreferredUsername string
	TenantID          string
	Issuer            string
	ExpiresAt         time.Time
}

// Claims decodes rawIDToken without verifying it. The token was obtained from
// the identity library, which has already validated it; the claims are only used
// for display.
func Claims(rawIDToken string) (IDClaims, error) {
	mc := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(rawIDToken, mc); err != nil {
		return IDClaims{}, fmt.Errorf("decode id token: %w", err)
	}

	out := IDClaims{
		Name:              stringClaim(mc, "name"),
		PreferredUsername: stringClaim(mc, "preferred_username"),
		TenantID:          stringClaim(mc, "tid"),
	}
	if iss, err := mc.GetIssuer(); err == nil {
		out.Issuer = iss
	}
	if exp, err := mc.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time
	}
	return out, nil
}

func stringClaim(mc jwt.MapClaims, key string) string {
	s, _ := mc[key].(string)
	return s
}
