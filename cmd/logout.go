// Copyright (c) 2025 devdevman
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"devdevman/cli/internal/config"
	"devdevman/cli/internal/logging"
)

var (
	hardLogout  bool
	purgeLogout bool
)

// logoutCmd ends the current session.
var logoutCmd = &cobra.Command{
	Use:     "logout",
	Aliases: []string{"signout"},
	Short:   "End the current session",
	Long: `The logout command clears the current session. It always succeeds locally.

With --hard (or hard_remote_logout in the config file) it also removes the account
from the token cache and opens the Entra ID logout page, which ends the browser
session for other applications too. Failures of that step are reported but do not
undo the local logout.

With --purge the token cache and session snapshot are also deleted from the
OS keychain.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newService(func(c *config.Config) {
			if cmd.Flags().Changed("hard") {
				c.HardRemoteLogout = hardLogout
			}
		})
		if err != nil {
			return err
		}
		defer svc.Close()

		svc.Logout(cmd.Context())
		if purgeLogout {
			if err := svc.Purge(); err != nil {
				pterm.Warning.Printfln("Could not clear the keychain: %s", logging.Mask(err.Error()))
			}
		}

		pterm.Println("✅ Logged out")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(logoutCmd)
	logoutCmd.Flags().BoolVar(&hardLogout, "hard", false, "Also sign out of Entra ID in the browser")
	logoutCmd.Flags().BoolVar(&purgeLogout, "purge", false, "Delete cached tokens from the OS keychain")
}
