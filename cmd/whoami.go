// Copyright (c) 2025 devdevman
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// whoamiCmd represents the whoami command for displaying current authentication state.
var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show current authenticated account",
	Long: `The whoami command displays the account of the last successful login together with
the accounts held in the token cache. It does not contact Entra ID.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newService(nil)
		if err != nil {
			return err
		}
		defer svc.Close()

		st, accounts, err := svc.WhoAmI(cmd.Context())
		if err != nil || !st.LoggedIn {
			notLoggedIn()
			return nil
		}

		pterm.Printfln("👤 Current user: %s (%s)", st.DisplayName, st.Username)
		if !st.UpdatedAt.IsZero() {
			pterm.Printfln("   Signed in at %s", st.UpdatedAt.Local().Format("2006-01-02 15:04"))
		}
		if len(accounts) > 1 {
			pterm.Printfln("   %d accounts are cached; see 'devdevman accounts'", len(accounts))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(whoamiCmd)
}
