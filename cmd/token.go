// Copyright (c) 2025 devdevman
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"devdevman/cli/internal/httperrors"
	"devdevman/cli/internal/identity"
	"devdevman/cli/internal/logging"
)

var (
	tokenScopes  []string
	tokenAccount string
	tokenRaw     bool
)

// tokenCmd prints an access token for the signed-in account.
var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Print an access token for the current account",
	Long: `The token command returns an access token from the token cache, refreshing it when
needed. If no cached account can serve the request the browser sign-in is started.

By default the token is masked and a summary of the identity token is shown. Use
--raw to print only the token, e.g. for 'curl -H "Authorization: Bearer $(devdevman token --raw)"'.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newService(nil)
		if err != nil {
			return err
		}
		defer svc.Close()

		tok, err := svc.Token(cmd.Context(), tokenScopes, tokenAccount)
		if err != nil {
			return httperrors.FormatNetworkError(err, "acquiring a token", svc.AuthorityHost())
		}
		if tokenRaw {
			fmt.Println(tok.AccessToken)
			return nil
		}

		data := pterm.TableData{
			{"Account", tok.Username},
			{"Access token", logging.MaskToken(tok.AccessToken)},
			{"Expires", formatExpiry(tok.ExpiresOn)},
		}
		if tok.IdentityToken != "" {
			if claims, err := identity.Claims(tok.IdentityToken); err == nil {
				data = append(data,
					[]string{"Name", claims.Name},
					[]string{"Tenant", claims.TenantID},
					[]string{"Issuer", claims.Issuer},
				)
			}
		}
		return pterm.DefaultTable.WithData(data).Render()
	},
}

func formatExpiry(t time.Time) string {
	if t.IsZero() {
		return "unknown"
	}
	return fmt.Sprintf("%s (in %s)", t.Local().Format("15:04:05"), time.Until(t).Round(time.Second))
}

func init() {
	rootCmd.AddCommand(tokenCmd)
	tokenCmd.Flags().StringSliceVar(&tokenScopes, "scope", nil, "Scopes to request (defaults to the configured login scopes)")
	tokenCmd.Flags().StringVar(&tokenAccount, "account", "", "Cached account to use (defaults to the current user)")
	tokenCmd.Flags().BoolVar(&tokenRaw, "raw", false, "Print only the unmasked access token")
}
