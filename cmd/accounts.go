// Copyright (c) 2025 devdevman
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// accountsCmd lists the accounts in the token cache.
var accountsCmd = &cobra.Command{
	Use:   "accounts",
	Short: "List accounts in the token cache",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newService(nil)
		if err != nil {
			return err
		}
		defer svc.Close()

		accounts, err := svc.Accounts(cmd.Context())
		if err != nil {
			return err
		}
		if len(accounts) == 0 {
			notLoggedIn()
			return nil
		}

		data := pterm.TableData{{"Username", "Name"}}
		for _, a := range accounts {
			data = append(data, []string{a.Username, a.DisplayName})
		}
		return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	},
}

func init() {
	rootCmd.AddCommand(accountsCmd)
}
